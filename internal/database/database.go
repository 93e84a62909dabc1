// Package database opens the SQL pool that serves option override rows.
// The driver is go-sql-driver/mysql, which also works with MariaDB and
// TiDB.
//
// Public entry point:
//
//	Open(ctx, dsn)   – small pool, pinged before return.
//
// The overrides are read once at startup, so the pool is kept tiny.
// Callers should Close() the returned *sqlx.DB after loading.
package database

import (
	"context"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

// Open returns a *sqlx.DB with two connections, one idle, and a five-minute
// connection lifetime.  It pings before returning so bootstrap fails fast.
func Open(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open overrides db: %w", err)
	}

	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping overrides db: %w", err)
	}
	return db, nil
}
