package database

import (
	"context"
	"strings"
)

const badgerScheme = "badger://"

// Open connects to the store named by databaseURL. A badger:// URL opens an
// embedded Badger directory, anything else is handed to Postgres.
func Open(ctx context.Context, databaseURL string) (Database, error) {
	if strings.HasPrefix(databaseURL, badgerScheme) {
		return NewBadgerDB(strings.TrimPrefix(databaseURL, badgerScheme))
	}
	return NewPostgresDB(ctx, databaseURL)
}
