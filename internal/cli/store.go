package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/config"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/storage"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/storage/postgres"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/storage/sqlite"
)

// IsPostgres reports whether conn looks like a PostgreSQL connection string rather
// than a SQLite file path.
func IsPostgres(conn string) bool {
	return strings.HasPrefix(conn, "postgres://") ||
		strings.HasPrefix(conn, "postgresql://") ||
		strings.Contains(conn, "host=")
}

// OpenStore builds the provider for conn without connecting. PostgreSQL strings that
// carry a password are refused; use .pgpass, PGPASSWORD or the keyring instead.
func OpenStore(conn string) (storage.Provider, error) {
	if IsPostgres(conn) {
		if ok, err := postgres.ValidateConnString(conn); !ok {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, fmt.Errorf("connection string contains embedded credentials; use 'habitus keyring set', .pgpass or PGPASSWORD instead")
			}
			return nil, err
		}
		return postgres.New(conn), nil
	}
	return sqlite.NewStore(config.ExpandHome(conn)), nil
}
