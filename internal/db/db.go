// db.go
package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

var remoteSchemes = []string{"libsql://", "https://", "http://", "wss://", "ws://"}

// Open connects to a hosted libsql database, or to a local SQLite file when
// url is a file path, "file:" URI or ":memory:".
func Open(ctx context.Context, url, authToken string) (*sql.DB, error) {
	driver, dsn := driverFor(url, authToken)

	database, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s db: %w", driver, err)
	}

	database.SetMaxOpenConns(25)
	database.SetMaxIdleConns(25)
	database.SetConnMaxLifetime(5 * time.Minute)

	// every new connection to an in-memory database would see an empty schema
	if isMemory(url) {
		database.SetMaxOpenConns(1)
		database.SetConnMaxLifetime(0)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := database.PingContext(pingCtx); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return database, nil
}

// IsRemote reports whether url points at a hosted libsql server rather than a
// local SQLite file.
func IsRemote(url string) bool {
	for _, scheme := range remoteSchemes {
		if strings.HasPrefix(url, scheme) {
			return true
		}
	}
	return false
}

func driverFor(url, authToken string) (driver, dsn string) {
	if !IsRemote(url) {
		return "sqlite", url
	}
	if authToken == "" {
		return "libsql", url
	}
	return "libsql", fmt.Sprintf("%s?authToken=%s", url, authToken)
}

func isMemory(url string) bool {
	return url == ":memory:" || strings.Contains(url, "mode=memory")
}
