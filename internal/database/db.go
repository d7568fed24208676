package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Baaaki/message-board/internal/config"
	"github.com/Baaaki/message-board/internal/models"
	"github.com/Baaaki/message-board/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Connect opens the store named by cfg.DatabaseURL.
// postgres:// and postgresql:// URLs use PostgreSQL, sqlite://<path> uses SQLite.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	level := gormlogger.Warn
	if cfg.IsProduction() {
		level = gormlogger.Error
	}

	db, err := Open(dialector, level)
	if err != nil {
		return nil, err
	}

	logger.Log.Info("Database connected",
		zap.String("dialect", dialector.Name()),
	)
	return db, nil
}

// Open wraps gorm.Open with the settings every connection needs.
// TranslateError turns unique violations into gorm.ErrDuplicatedKey; all
// timestamps are UTC so insertion order sorts the same on every dialect.
func Open(dialector gorm.Dialector, level gormlogger.LogLevel) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(level),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	return db, nil
}

// SQLiteDSN enables foreign keys, which SQLite leaves off by default.
func SQLiteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on"
}

func dialectorFor(url string) (gorm.Dialector, error) {
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return postgres.Open(url), nil
	case strings.HasPrefix(url, "sqlite://"):
		path := strings.TrimPrefix(url, "sqlite://")
		if path == "" {
			return nil, fmt.Errorf("sqlite url %q has no path", url)
		}
		return sqlite.Open(SQLiteDSN(path)), nil
	default:
		return nil, fmt.Errorf("unsupported DATABASE_URL scheme: %q", url)
	}
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Account{}, &models.Message{}); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	logger.Log.Info("Database migration completed")
	return nil
}

// Ping checks the underlying connection pool.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
