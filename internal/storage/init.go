package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"net"
	"time"

	"github.com/fatali-fataliyev/expense_tracker/internal/config"
	"github.com/fatali-fataliyev/expense_tracker/logging"
	"github.com/go-sql-driver/mysql"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

const (
	connectAttempts = 15
	connectDelay    = 3 * time.Second
)

// Init makes sure the configured database exists, connects to it and brings
// the schema up to date.
func Init(ctx context.Context, dbConf config.DatabaseConfig) (*sql.DB, error) {
	finalConf, err := mysqlConfig(dbConf)
	if err != nil {
		return nil, err
	}

	adminConf := finalConf.Clone()
	adminConf.DBName = ""

	logging.Logger.Info("Connecting to MySQL server for initialization...")
	adminDb, err := sql.Open("mysql", adminConf.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open admin mysql handle: %w", err)
	}
	defer adminDb.Close()

	if err := waitForDatabase(ctx, adminDb); err != nil {
		return nil, err
	}

	if err := ensureDatabase(ctx, adminDb, finalConf.DBName); err != nil {
		return nil, err
	}

	logging.Logger.Info("Connecting to database...")
	db, err := sql.Open("mysql", finalConf.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database handle: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	logging.Logger.Info("Connected to database successfully")
	logging.Logger.Info("Running migrations...")

	if err := RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

func mysqlConfig(dbConf config.DatabaseConfig) (*mysql.Config, error) {
	if dbConf.FullDSN != "" {
		cfg, err := mysql.ParseDSN(dbConf.FullDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to parse FULL_DSN: %w", err)
		}
		cfg.ParseTime = true
		return cfg, nil
	}

	if dbConf.Host == "" || dbConf.User == "" {
		return nil, fmt.Errorf("missing required DB environment variables")
	}

	cfg := mysql.NewConfig()
	cfg.User = dbConf.User
	cfg.Passwd = dbConf.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(dbConf.Host, dbConf.Port)
	cfg.DBName = dbConf.Name
	cfg.ParseTime = true
	return cfg, nil
}

func waitForDatabase(ctx context.Context, db *sql.DB) error {
	for i := 0; i < connectAttempts; i++ {
		if err := db.PingContext(ctx); err == nil {
			return nil
		}
		logging.Logger.Warnf("Database not ready, retrying... (%d/%d)", i+1, connectAttempts)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(connectDelay):
		}
	}
	return fmt.Errorf("database unreachable after multiple attempts")
}

func ensureDatabase(ctx context.Context, adminDb *sql.DB, dbname string) error {
	var existing string
	query := "SELECT SCHEMA_NAME FROM INFORMATION_SCHEMA.SCHEMATA WHERE SCHEMA_NAME = ?"
	err := adminDb.QueryRowContext(ctx, query, dbname).Scan(&existing)
	if err == nil {
		return nil
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("failed to check database existence: %w", err)
	}

	logging.Logger.Infof("Database '%s' does not exist, creating...", dbname)
	createDbSql := fmt.Sprintf("CREATE DATABASE `%s` CHARACTER SET utf8mb4 COLLATE utf8mb4_general_ci;", dbname)
	if _, err := adminDb.ExecContext(ctx, createDbSql); err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	return nil
}

// RunMigrations applies the embedded goose migrations that are not yet
// recorded in the goose version table.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(logging.Logger)

	if err := goose.SetDialect("mysql"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return err
	}

	logging.Logger.Info("all migrations applied successfully")
	return nil
}
