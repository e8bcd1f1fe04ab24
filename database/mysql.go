package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Connect opens the MySQL pool and verifies it with a ping.
func Connect(ctx context.Context, dsn string, logger *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}

	logger.Info("database connected")
	return db, nil
}

// Tables are created with a binary collation on the unique columns so
// email and username uniqueness is exact.
var tables = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id                    VARCHAR(36) PRIMARY KEY,
		email                 VARCHAR(255) COLLATE utf8mb4_bin NOT NULL,
		username              VARCHAR(200) COLLATE utf8mb4_bin NOT NULL,
		password              VARCHAR(255) NOT NULL,
		first_name            VARCHAR(30) NOT NULL DEFAULT '',
		last_name             VARCHAR(30) NOT NULL DEFAULT '',
		phone_number          VARCHAR(20) NOT NULL DEFAULT '',
		phone_number_verified BOOLEAN NOT NULL DEFAULT FALSE,
		is_email_verified     BOOLEAN NOT NULL DEFAULT FALSE,
		is_active             BOOLEAN NOT NULL DEFAULT TRUE,
		is_admin              BOOLEAN NOT NULL DEFAULT FALSE,
		is_staff              BOOLEAN NOT NULL DEFAULT FALSE,
		is_superuser          BOOLEAN NOT NULL DEFAULT FALSE,
		date_joined           DATETIME(6) NOT NULL,
		last_login            DATETIME(6) NULL,
		created_at            DATETIME(6) NOT NULL,
		updated_at            DATETIME(6) NOT NULL,
		UNIQUE KEY uk_users_email (email),
		UNIQUE KEY uk_users_username (username)
	) DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS friend_requests (
		id          VARCHAR(36) PRIMARY KEY,
		sender_id   VARCHAR(36) NOT NULL,
		receiver_id VARCHAR(36) NOT NULL,
		status      ENUM('sent', 'pending', 'accepted', 'rejected') NOT NULL DEFAULT 'pending',
		created_at  DATETIME(6) NOT NULL,
		updated_at  DATETIME(6) NOT NULL,
		UNIQUE KEY uk_friend_requests_pair (sender_id, receiver_id),
		INDEX idx_receiver_status (receiver_id, status),
		INDEX idx_sender_created (sender_id, created_at),
		CONSTRAINT fk_friend_requests_sender FOREIGN KEY (sender_id) REFERENCES users (id) ON DELETE CASCADE,
		CONSTRAINT fk_friend_requests_receiver FOREIGN KEY (receiver_id) REFERENCES users (id) ON DELETE CASCADE
	) DEFAULT CHARSET=utf8mb4`,
}

func CreateTables(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	for _, table := range tables {
		if _, err := db.ExecContext(ctx, table); err != nil {
			return fmt.Errorf("create tables: %w", err)
		}
	}

	logger.Info("database tables ready")
	return nil
}
