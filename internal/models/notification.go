package models

import "time"

// Notification is an in-app message created when a moderation decision
// resolves a user's record. Mutated only by the recipient marking it read.
type Notification struct {
	ID        string       `db:"id" json:"id"`
	UserID    string       `db:"user_id" json:"user_id"`
	Kind      RecordKind   `db:"kind" json:"kind"`
	RecordID  string       `db:"record_id" json:"record_id"`
	Status    RecordStatus `db:"status" json:"status"`
	Message   string       `db:"message" json:"message"`
	Read      bool         `db:"read" json:"read"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
}
