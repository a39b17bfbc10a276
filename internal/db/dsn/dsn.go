// Package dsn provides Data Source Name construction utilities for database connections.
package dsn

import (
	"fmt"
	"strings"

	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/config"
)

const sqliteMemory = ":memory:"

// Create builds the Data Source Name for the configured gorm engine.
func Create(cfg *config.Config) string {
	switch cfg.DB.GormEngine {
	case config.EnginePostgres:
		return postgres(&cfg.DB)
	case config.EngineSQLite:
		return sqlite(&cfg.DB)
	default:
		return mysql(&cfg.DB)
	}
}

func mysql(db *config.DB) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
		db.User,
		db.Password,
		db.Host,
		db.Port,
		db.Name,
		db.Extras,
	)
}

// postgres uses the key/value form, Extras holds further pairs like "sslmode=disable TimeZone=UTC".
func postgres(db *config.DB) string {
	out := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s",
		db.Host,
		db.Port,
		db.User,
		db.Password,
		db.Name,
	)

	if extras := strings.TrimSpace(db.Extras); extras != "" {
		out += " " + extras
	}

	return out
}

func sqlite(db *config.DB) string {
	name := db.Name
	if name == "" {
		name = sqliteMemory
	}

	if db.Extras == "" {
		return name
	}

	return name + "?" + db.Extras
}
