package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/jwalitptl/clinic-data/internal/config"
	"github.com/jwalitptl/clinic-data/internal/model"
	"github.com/jwalitptl/clinic-data/pkg/logger"
	"github.com/jwalitptl/clinic-data/pkg/metrics"
)

// DefaultCommandTimeout bounds raw queries when no timeout is configured
const DefaultCommandTimeout = 30 * time.Second

// Options tune a DB independently of the dialect
type Options struct {
	Logger         *logger.Logger
	Metrics        *metrics.Metrics
	CommandTimeout time.Duration
	SlowThreshold  time.Duration
	SQLLogLevel    string
	AuditLog       bool
	// MaxPageSize caps the page size of paged reads; zero means no cap
	MaxPageSize int
	// Now is the clock used to stamp audit fields. Defaults to time.Now in UTC.
	Now func() time.Time
}

// OptionsFromConfig maps the loaded config onto Options
func OptionsFromConfig(cfg *config.Config, log *logger.Logger, m *metrics.Metrics) Options {
	return Options{
		Logger:         log,
		Metrics:        m,
		CommandTimeout: cfg.Database.CommandTimeout,
		SlowThreshold:  cfg.Database.SlowThreshold,
		SQLLogLevel:    cfg.Log.SQL,
		AuditLog:       cfg.Database.AuditLog,
		MaxPageSize:    cfg.Paging.MaxPageSize,
	}
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = logger.Nop()
	}
	if o.CommandTimeout <= 0 {
		o.CommandTimeout = DefaultCommandTimeout
	}
	if o.Now == nil {
		o.Now = func() time.Time { return time.Now().UTC() }
	}
	return o
}

// DB owns the connection pool and the configured gorm instance
type DB struct {
	gorm *gorm.DB
	opts Options
	log  *logger.Logger
}

// Open connects to postgres through lib/pq. The *sql.DB pool is handed to
// gorm, and raw queries reuse the same pool through the session.
func Open(ctx context.Context, cfg config.DatabaseConfig, opts Options) (*DB, error) {
	if cfg.Driver != "" && cfg.Driver != "postgres" {
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	sqlDB, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db, err := OpenDialector(postgres.New(postgres.Config{Conn: sqlDB}), opts)
	if err != nil {
		sqlDB.Close()
		return nil, err
	}

	db.log.Info("connected to database", "host", cfg.Host, "name", cfg.Name)
	return db, nil
}

// OpenDialector builds a DB on any gorm dialector and installs the status
// filter and metrics callbacks.
func OpenDialector(dialector gorm.Dialector, opts Options) (*DB, error) {
	opts = opts.withDefaults()

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger:  logger.NewGormLogger(opts.Logger, opts.SlowThreshold).LogMode(sqlLogLevel(opts.SQLLogLevel)),
		NowFunc: opts.Now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm: %w", err)
	}

	if err := RegisterStatusFilter(gdb); err != nil {
		return nil, fmt.Errorf("failed to register status filter: %w", err)
	}
	if opts.Metrics != nil {
		if err := opts.Metrics.Register(gdb); err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
	}

	return &DB{gorm: gdb, opts: opts, log: opts.Logger}, nil
}

func sqlLogLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info", "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}

// Gorm returns the root gorm handle, outside any session transaction
func (d *DB) Gorm() *gorm.DB {
	return d.gorm
}

// Dialect is the gorm dialector name, e.g. "postgres" or "sqlite"
func (d *DB) Dialect() string {
	return d.gorm.Dialector.Name()
}

// NewSession starts a fresh unit of work
func (d *DB) NewSession() *Session {
	return newSession(d)
}

// Migrate creates or updates every table, foreign key and index
func (d *DB) Migrate(ctx context.Context) error {
	if err := d.gorm.WithContext(ctx).AutoMigrate(model.Models()...); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	d.log.Info("database migrated", "tables", len(model.Models()))
	return nil
}

// Ping checks the pool and refreshes the connection gauge
func (d *DB) Ping(ctx context.Context) error {
	sqlDB, err := d.gorm.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	if d.opts.Metrics != nil {
		d.opts.Metrics.DatabaseConnections.Set(float64(sqlDB.Stats().OpenConnections))
	}
	return nil
}

// Close releases the pool
func (d *DB) Close() error {
	sqlDB, err := d.gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
