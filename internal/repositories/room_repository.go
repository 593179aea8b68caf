package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"docuchat-service/internal/models"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrSelfRoom     = errors.New("cannot open a room with yourself")
)

// RoomRepository abstracts room persistence.
type RoomRepository interface {
	GetOrCreateRoom(ctx context.Context, userID int, otherID int) (models.Room, error)
	GetRoom(ctx context.Context, roomID int) (models.Room, error)
	IsParticipant(ctx context.Context, roomID int, userID int) (bool, error)
}

// RoomRepo is a sqlx implementation of RoomRepository.
type RoomRepo struct {
	db *sqlx.DB
}

// NewRoomRepo constructs a RoomRepo.
func NewRoomRepo(db *sqlx.DB) *RoomRepo {
	return &RoomRepo{db: db}
}

const roomColumns = `id, user1_id, user2_id, created_at`

// canonicalPair orders two participant ids ascending so every unordered
// pair has one canonical storage form.
func canonicalPair(a, b int) (int, int) {
	if a > b {
		return b, a
	}
	return a, b
}

// GetOrCreateRoom returns the room between the two users, creating it on
// first contact. A lost creation race resolves as a lookup: the unique
// constraint on the pair rejects the duplicate and the winner's row is
// re-read.
func (r *RoomRepo) GetOrCreateRoom(ctx context.Context, userID int, otherID int) (models.Room, error) {
	if userID == otherID {
		return models.Room{}, ErrSelfRoom
	}
	user1, user2 := canonicalPair(userID, otherID)

	var room models.Room
	err := r.db.GetContext(ctx, &room, `SELECT `+roomColumns+` FROM rooms WHERE user1_id=$1 AND user2_id=$2`, user1, user2)
	if err == nil {
		return room, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.Room{}, err
	}

	err = r.db.QueryRowxContext(ctx,
		`INSERT INTO rooms (user1_id, user2_id) VALUES ($1, $2)
         ON CONFLICT (user1_id, user2_id) DO NOTHING RETURNING `+roomColumns,
		user1, user2).StructScan(&room)
	if errors.Is(err, sql.ErrNoRows) {
		// A concurrent request created the room first.
		err = r.db.GetContext(ctx, &room, `SELECT `+roomColumns+` FROM rooms WHERE user1_id=$1 AND user2_id=$2`, user1, user2)
	}
	if err != nil {
		return models.Room{}, err
	}
	return room, nil
}

// GetRoom fetches a room by id.
func (r *RoomRepo) GetRoom(ctx context.Context, roomID int) (models.Room, error) {
	var room models.Room
	err := r.db.GetContext(ctx, &room, `SELECT `+roomColumns+` FROM rooms WHERE id=$1`, roomID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Room{}, ErrRoomNotFound
	}
	return room, err
}

// IsParticipant checks whether a user belongs to the room.
func (r *RoomRepo) IsParticipant(ctx context.Context, roomID int, userID int) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM rooms WHERE id=$1 AND (user1_id=$2 OR user2_id=$2))`, roomID, userID)
	return exists, err
}
