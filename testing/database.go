// Package testing provides test utilities and database setup for repository and flow tests
package testing

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	gotesting "testing"
	"time"

	"github.com/amirphl/masuk10/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbCounter atomic.Int64

// TestDB represents a test database instance
type TestDB struct {
	DB   *gorm.DB
	Name string
}

// SetupTestDB opens a private in-memory SQLite database and migrates every model
func SetupTestDB() (*TestDB, error) {
	name := fmt.Sprintf("masuk10_test_%d_%d", time.Now().UnixNano(), dbCounter.Add(1))
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open test database %s: %w", name, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB for %s: %w", name, err)
	}
	// every connection must see the same in-memory database
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate test database %s: %w", name, err)
	}

	return &TestDB{DB: db, Name: name}, nil
}

// TeardownTestDB closes the connection, which drops the in-memory database
func (tdb *TestDB) TeardownTestDB() error {
	if tdb.DB == nil {
		return nil
	}
	sqlDB, err := tdb.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ClearAllTables removes all data from tables while preserving structure
func (tdb *TestDB) ClearAllTables() error {
	// children first
	tables := []string{
		"short_link_clicks",
		"short_links",
		"theme_customizations",
		"themes",
		"landing_contents",
		"media",
		"users",
	}

	for _, table := range tables {
		if err := tdb.DB.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
			return fmt.Errorf("failed to clear table %s: %w", table, err)
		}
	}

	return nil
}

// TestWithDB is a helper function that sets up a test database, runs the test function, and cleans up
func TestWithDB(testFunc func(*TestDB) error) error {
	testDB, err := SetupTestDB()
	if err != nil {
		return fmt.Errorf("failed to setup test database: %w", err)
	}
	defer func() {
		if cleanupErr := testDB.TeardownTestDB(); cleanupErr != nil {
			log.Printf("Warning: failed to cleanup test database: %v", cleanupErr)
		}
	}()

	return testFunc(testDB)
}

// MustSetupTestDB is SetupTestDB for a single test, closed on cleanup
func MustSetupTestDB(t gotesting.TB) *TestDB {
	t.Helper()
	testDB, err := SetupTestDB()
	if err != nil {
		t.Fatalf("setup test database: %v", err)
	}
	t.Cleanup(func() {
		if err := testDB.TeardownTestDB(); err != nil {
			t.Logf("teardown test database: %v", err)
		}
	})
	return testDB
}

// CreateTestContext creates a context for testing
func CreateTestContext() context.Context {
	return context.Background()
}
