package adapter

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/go-sql-driver/mysql"
	db "github.com/iqbalbaharum/transitive-swap-router/internal/database"
)

var (
	Database  *db.Database
	mySQLOnce sync.Once
)

// InitMySQLClient creates dbName on the server behind dsn, reconnects with it
// selected and applies the migrations found in migrationsDir.
func InitMySQLClient(ctx context.Context, dsn string, dbName string, migrationsDir string) error {
	if dsn == "" {
		return errors.New("MySQL DSN is empty")
	}

	var initError error

	mySQLOnce.Do(func() {
		cfg, err := mysql.ParseDSN(dsn)
		if err != nil {
			initError = fmt.Errorf("invalid MySQL DSN: %w", err)
			return
		}

		cfg.DBName = ""
		bootstrap, err := open(ctx, cfg)
		if err != nil {
			initError = err
			return
		}
		defer bootstrap.Close()

		boot, err := db.NewDatabase(bootstrap, dbName)
		if err != nil {
			initError = err
			return
		}

		if err := boot.CreateDatabase(ctx); err != nil {
			initError = err
			return
		}

		cfg.DBName = dbName
		client, err := open(ctx, cfg)
		if err != nil {
			initError = err
			return
		}

		database, err := db.NewDatabase(client, dbName)
		if err != nil {
			initError = err
			return
		}

		if err := database.Migrate(ctx, migrationsDir); err != nil {
			client.Close()
			initError = err
			return
		}

		Database = database
	})

	return initError
}

func open(ctx context.Context, cfg *mysql.Config) (*sql.DB, error) {
	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MySQL: %w", err)
	}

	client := sql.OpenDB(connector)
	if err := client.PingContext(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	return client, nil
}

func GetMySQLClient() (*sql.DB, error) {
	if Database == nil {
		return nil, errors.New("MySQL client is not initialized. call InitMySQLClient first")
	}

	return Database.MysqlClient, nil
}
