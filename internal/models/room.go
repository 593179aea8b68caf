package models

import "time"

// Room represents a private conversation between exactly two users. The
// participant pair is stored in ascending id order so each unordered pair
// maps to at most one row.
type Room struct {
	ID        int       `db:"id" json:"id"`
	User1ID   int       `db:"user1_id" json:"user1_id"`
	User2ID   int       `db:"user2_id" json:"user2_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// HasParticipant reports whether the user belongs to the room.
func (r Room) HasParticipant(userID int) bool {
	return r.User1ID == userID || r.User2ID == userID
}

// OtherParticipant returns the participant that is not the given user.
func (r Room) OtherParticipant(userID int) int {
	if r.User1ID == userID {
		return r.User2ID
	}
	return r.User1ID
}
