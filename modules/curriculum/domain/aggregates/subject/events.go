package subject

import "github.com/google/uuid"

type CreatedEvent struct {
	Result *Subject
}

type UpdatedEvent struct {
	Result *Subject
}

type DeletedEvent struct {
	ID uuid.UUID
}
