package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"docuchat-service/internal/models"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already taken")
)

const uniqueViolation = "23505"

// UserRepository abstracts account persistence.
type UserRepository interface {
	CreateUser(ctx context.Context, username, email, passwordHash, role, answer1, answer2 string) (models.User, error)
	GetByID(ctx context.Context, userID int) (models.User, error)
	GetByUsername(ctx context.Context, username string) (models.User, error)
	ListOthers(ctx context.Context, userID int) ([]models.PublicUser, error)
	UsernamesByID(ctx context.Context, ids []int) (map[int]string, error)
	UpdatePassword(ctx context.Context, userID int, passwordHash string) error
	SetSecurityAnswers(ctx context.Context, userID int, answer1, answer2 string) error
}

// UserRepo is a sqlx implementation of UserRepository.
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo constructs a UserRepo.
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

const userColumns = `id, username, email, password_hash, role, security_answer_1, security_answer_2, created_at`

// CreateUser inserts a new account. Username uniqueness is enforced
// case-insensitively by the storage layer.
func (r *UserRepo) CreateUser(ctx context.Context, username, email, passwordHash, role, answer1, answer2 string) (models.User, error) {
	var user models.User
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO users (username, email, password_hash, role, security_answer_1, security_answer_2)
         VALUES ($1, $2, $3, $4, $5, $6) RETURNING `+userColumns,
		username, email, passwordHash, role, answer1, answer2).StructScan(&user)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return models.User{}, ErrUsernameTaken
		}
		return models.User{}, err
	}
	return user, nil
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, userID int) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id=$1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// GetByUsername fetches a user by username, case-insensitively.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE LOWER(username)=LOWER($1)`, username)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// ListOthers returns every user except the given one.
func (r *UserRepo) ListOthers(ctx context.Context, userID int) ([]models.PublicUser, error) {
	var users []models.PublicUser
	err := r.db.SelectContext(ctx, &users, `SELECT id, username FROM users WHERE id<>$1 ORDER BY username ASC`, userID)
	return users, err
}

// UsernamesByID resolves usernames for a set of user ids.
func (r *UserRepo) UsernamesByID(ctx context.Context, ids []int) (map[int]string, error) {
	names := make(map[int]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	query, args, err := sqlx.In(`SELECT id, username FROM users WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	query = r.db.Rebind(query)

	var users []models.PublicUser
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, err
	}
	for _, u := range users {
		names[u.ID] = u.Username
	}
	return names, nil
}

// UpdatePassword replaces the stored password hash.
func (r *UserRepo) UpdatePassword(ctx context.Context, userID int, passwordHash string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET password_hash=$2 WHERE id=$1`, userID, passwordHash)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrUserNotFound
	}
	return nil
}

// SetSecurityAnswers stores the normalized recovery answers.
func (r *UserRepo) SetSecurityAnswers(ctx context.Context, userID int, answer1, answer2 string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET security_answer_1=$2, security_answer_2=$3 WHERE id=$1`, userID, answer1, answer2)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrUserNotFound
	}
	return nil
}
