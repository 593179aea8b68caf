package models

import "time"

// RetractedPlaceholder replaces the content of a message deleted for
// everyone. Once set the message accepts no further edits.
const RetractedPlaceholder = "This message was deleted"

// MaxMessageLength caps message content length in characters.
const MaxMessageLength = 4000

// Message represents a chat message. Hidden-for state lives in the
// message_visibility table and never appears on the canonical record.
type Message struct {
	ID            int        `db:"id" json:"id"`
	RoomID        int        `db:"room_id" json:"room_id"`
	SenderID      int        `db:"sender_id" json:"sender_id"`
	Content       string     `db:"content" json:"content"`
	IsEdited      bool       `db:"is_edited" json:"is_edited"`
	EditedAt      *time.Time `db:"edited_at" json:"edited_at,omitempty"`
	DeletedForAll bool       `db:"deleted_for_all" json:"deleted_for_all"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
}
