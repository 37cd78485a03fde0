package career

import "github.com/google/uuid"

type CreatedEvent struct {
	Result *Career
}

type UpdatedEvent struct {
	Result *Career
}

type DeletedEvent struct {
	ID uuid.UUID
}
