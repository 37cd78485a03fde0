package importsession

import "github.com/google/uuid"

// CreatedEvent fires after phase one loads a range into a new session.
type CreatedEvent struct {
	Token    uuid.UUID
	TargetID string
	RowCount int
}

// CompletedEvent fires after the batch commit finishes.
type CompletedEvent struct {
	Token    uuid.UUID
	TargetID string
	Imported int
	Skipped  int
	Failed   int
}

// CancelledEvent fires when a session is discarded without committing.
type CancelledEvent struct {
	Token    uuid.UUID
	TargetID string
}
