package gradestore

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	devenv "jecna-client/dev/env"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

// Config points to either a local sqlite file or a remote libsql database.
type Config struct {
	// File may start with "<dev_state>" to place the database in dev/.state.
	File      string `json:"file"`
	Url       string `json:"url"`
	AuthToken string `json:"auth_token"`
}

func (config Config) OpenDB() (*sql.DB, error) {
	if config.Url != "" {
		return openLibsql(config.Url, config.AuthToken)
	}
	if config.File == "" {
		return nil, errors.New("neither a database file nor url was specified")
	}
	path := config.File
	if path != ":memory:" {
		resolved, err := devenv.ResolvePath(path)
		if err != nil {
			return nil, err
		}
		path = resolved
	}
	return openSqlite(path)
}

// OpenDB opens a database from a single url, libsql:// and https:// urls go
// to a remote libsql server and anything else is treated as a sqlite file.
func OpenDB(dburl string) (*sql.DB, error) {
	if strings.HasPrefix(dburl, "libsql://") || strings.HasPrefix(dburl, "https://") {
		return openLibsql(dburl, "")
	}
	return openSqlite(strings.TrimPrefix(dburl, "file:"))
}

func openLibsql(dburl, authToken string) (*sql.DB, error) {
	if authToken == "" {
		return sql.Open("libsql", dburl)
	}
	values := url.Values{}
	values.Add("authToken", authToken)
	return sql.Open("libsql", dburl+"?"+values.Encode())
}

func wrapOpenDB(err error) error {
	return fmt.Errorf("open db: %w", err)
}

func openSqlite(path string) (*sql.DB, error) {
	if path != ":memory:" {
		err := os.MkdirAll(filepath.Dir(path), 0777)
		if err != nil {
			return nil, wrapOpenDB(err)
		}
	}

	database, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, wrapOpenDB(err)
	}

	// sqlite only allows a single writer, an in-memory database also lives
	// and dies with its connection
	database.SetMaxOpenConns(1)
	_, err = database.Exec("PRAGMA journal_mode=WAL")
	if err != nil {
		database.Close()
		return nil, wrapOpenDB(err)
	}
	return database, nil
}
