package db

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Connect initializes the database connection and runs migrations.
func Connect(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return db, nil
}

func runMigrations(db *sqlx.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id SERIAL PRIMARY KEY,
            username TEXT NOT NULL,
            email TEXT NOT NULL DEFAULT '',
            password_hash TEXT NOT NULL,
            role TEXT NOT NULL DEFAULT 'user',
            security_answer_1 TEXT,
            security_answer_2 TEXT,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		`CREATE UNIQUE INDEX IF NOT EXISTS users_username_lower_idx ON users (LOWER(username));`,
		`CREATE TABLE IF NOT EXISTS rooms (
            id SERIAL PRIMARY KEY,
            user1_id INT NOT NULL REFERENCES users(id),
            user2_id INT NOT NULL REFERENCES users(id),
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            UNIQUE(user1_id, user2_id)
        );`,
		`CREATE TABLE IF NOT EXISTS messages (
            id SERIAL PRIMARY KEY,
            room_id INT NOT NULL REFERENCES rooms(id) ON DELETE CASCADE,
            sender_id INT NOT NULL REFERENCES users(id),
            content TEXT NOT NULL,
            is_edited BOOLEAN NOT NULL DEFAULT FALSE,
            edited_at TIMESTAMPTZ,
            deleted_for_all BOOLEAN NOT NULL DEFAULT FALSE,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		`CREATE INDEX IF NOT EXISTS messages_room_created_idx ON messages (room_id, created_at, id);`,
		`CREATE TABLE IF NOT EXISTS message_visibility (
            message_id INT NOT NULL REFERENCES messages(id) ON DELETE CASCADE,
            user_id INT NOT NULL REFERENCES users(id),
            PRIMARY KEY(message_id, user_id)
        );`,
		`CREATE TABLE IF NOT EXISTS ocr_documents (
            id SERIAL PRIMARY KEY,
            file_name TEXT NOT NULL UNIQUE,
            status TEXT NOT NULL DEFAULT 'pending',
            pdf_url TEXT NOT NULL DEFAULT '',
            txt_url TEXT NOT NULL DEFAULT '',
            docx_url TEXT NOT NULL DEFAULT '',
            pdf_size BIGINT NOT NULL DEFAULT 0,
            txt_size BIGINT NOT NULL DEFAULT 0,
            docx_size BIGINT NOT NULL DEFAULT 0,
            processing_time_ms BIGINT,
            uploaded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}
	log.Println("database migrations applied")
	return nil
}
