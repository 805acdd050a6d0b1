package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

func OpenDB(dsn string) (*pgxpool.Pool, error) {
	// Parse the connection string into a pgxpool.Config
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		fmt.Printf("Error parsing DSN: %v\n", err)
		return nil, err
	}

	config.MaxConns = 20
	config.MaxConnIdleTime = 20 * time.Second
	config.MinConns = 2

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		fmt.Printf("Unable to create connection pool: %v\n", err)
		return nil, err
	}

	// Test the connection
	err = pool.Ping(context.Background())
	if err != nil {
		return nil, err
	}

	return pool, nil
}

// InitSchema creates the tasks table if it does not exist yet.
func InitSchema(db *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stmt := `CREATE TABLE IF NOT EXISTS tasks (
		id SERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL,
		task TEXT NOT NULL,
		due_time TIME NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending'
	);`
	if _, err := db.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("error creating tasks table: %w", err)
	}
	return nil
}
