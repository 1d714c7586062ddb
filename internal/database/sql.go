package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"go-admin/internal/config"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"go.uber.org/fx"
)

// SQLPools are the relational connections available to SQL-backed modules.
// A nil pool means the DSN was not configured.
type SQLPools struct {
	Postgres *sql.DB
	MySQL    *sql.DB
}

// Pool returns the pool for a dialect name ("postgres" or "mysql").
func (p *SQLPools) Pool(dialect string) (*sql.DB, error) {
	if p == nil {
		return nil, fmt.Errorf("%s is not configured", dialect)
	}
	var db *sql.DB
	switch dialect {
	case "postgres":
		db = p.Postgres
	case "mysql":
		db = p.MySQL
	default:
		return nil, fmt.Errorf("unknown sql dialect %q", dialect)
	}
	if db == nil {
		return nil, fmt.Errorf("%s is not configured", dialect)
	}
	return db, nil
}

// NewSQLPools opens every configured pool and closes them on shutdown.
func NewSQLPools(lc fx.Lifecycle, cfg *config.Config) (*SQLPools, error) {
	pools := &SQLPools{}

	var err error
	if cfg.PostgresDSN != "" {
		if pools.Postgres, err = openPool("postgres", cfg.PostgresDSN); err != nil {
			return nil, err
		}
	}
	if cfg.MySQLDSN != "" {
		if pools.MySQL, err = openPool("mysql", cfg.MySQLDSN); err != nil {
			if pools.Postgres != nil {
				pools.Postgres.Close()
			}
			return nil, err
		}
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			for _, db := range []*sql.DB{pools.Postgres, pools.MySQL} {
				if db != nil {
					db.Close()
				}
			}
			return nil
		},
	})

	return pools, nil
}

func openPool(driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", driver, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s: %w", driver, err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	log.Printf("Connected to %s!", driver)
	return db, nil
}
