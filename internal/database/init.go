package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

type Database struct {
	dbName      string
	MysqlClient *sql.DB
}

func NewDatabase(client *sql.DB, dbName string) (*Database, error) {
	if dbName == "" {
		return nil, fmt.Errorf("database name is empty")
	}

	return &Database{
		dbName:      dbName,
		MysqlClient: client,
	}, nil
}

func (d *Database) CreateDatabase(ctx context.Context) error {
	createDatabase := "CREATE DATABASE IF NOT EXISTS `" + d.dbName + "`"

	if _, err := d.MysqlClient.ExecContext(ctx, createDatabase); err != nil {
		return fmt.Errorf("failed to create db %s: %w", d.dbName, err)
	}

	return nil
}

// Migrate runs every .sql file under dir in name order. Each file holds a
// single idempotent statement.
func (d *Database) Migrate(ctx context.Context, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read migrations: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		files = append(files, e.Name())
	}
	sort.Strings(files)

	for _, name := range files {
		c, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return err
		}

		if _, err := d.MysqlClient.ExecContext(ctx, string(c)); err != nil {
			return fmt.Errorf("migration %s: %w", name, err)
		}
	}

	return nil
}
