package database

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Ping verifies the database connection is alive and responsive.
// Called by health check endpoints to confirm database availability.
func (db *PostgresDB) Ping(ctx context.Context) error {
	if db.Pool == nil {
		return fmt.Errorf("database pool is not initialized")
	}

	// Dedicated timeout so a stuck database cannot hang the caller
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.Pool.Ping(pingCtx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return nil
}

// Close shuts down the connection pool. Safe to call multiple times,
// subsequent calls are a no-op.
func (db *PostgresDB) Close() error {
	if db.Pool == nil {
		log.Println("[DATABASE] Pool is already closed or was never initialized")
		return nil
	}

	log.Println("[DATABASE] Closing database connection pool...")

	// Pool.Close waits for acquired connections to be released before
	// terminating them.
	db.Pool.Close()
	db.Pool = nil

	log.Println("[DATABASE] Connection pool closed successfully")
	return nil
}
