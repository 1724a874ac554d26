// Package integration runs the ledger against a real PostgreSQL started with testcontainers.
package integration

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fabrictrade/backend/internal/infrastructure/logger"
	"github.com/fabrictrade/backend/internal/infrastructure/migration"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// TestDB is the package's migrated database, emptied for the calling test
type TestDB struct {
	DB    *gorm.DB
	SqlDB *sql.DB
}

// one container serves every test in the package; see TestMain
var shared struct {
	once      sync.Once
	container *tcpostgres.PostgresContainer
	dsn       string
	err       error
}

func startPostgres() {
	ctx := context.Background()
	c, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("fabrictrade_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute)),
	)
	if err != nil {
		shared.err = fmt.Errorf("start postgres: %w", err)
		return
	}
	shared.container = c
	shared.dsn, shared.err = c.ConnectionString(ctx, "sslmode=disable")
	if shared.err != nil {
		return
	}

	db, err := sql.Open("postgres", shared.dsn)
	if err != nil {
		shared.err = err
		return
	}
	defer db.Close()
	m, err := migration.New(db, zap.NewNop())
	if err != nil {
		shared.err = err
		return
	}
	shared.err = m.Up()
}

func stopPostgres() {
	if shared.container != nil {
		_ = shared.container.Terminate(context.Background())
	}
}

// NewTestDB connects to the shared container and truncates every table the
// migrations created, so each test starts from an empty ledger.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()
	if testing.Short() {
		t.Skip("integration tests need docker")
	}
	shared.once.Do(startPostgres)
	require.NoError(t, shared.err)

	var sqlLog gormlogger.Interface = gormlogger.Discard
	if os.Getenv("TEST_DB_DEBUG") != "" {
		sqlLog = logger.NewGormLogger(zaptest.NewLogger(t), gormlogger.Info, 0)
	}
	db, err := gorm.Open(gormpostgres.Open(shared.dsn), &gorm.Config{Logger: sqlLog, TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(10)
	t.Cleanup(func() { _ = sqlDB.Close() })

	var tables []string
	require.NoError(t, db.Raw(`SELECT tablename FROM pg_tables
		WHERE schemaname = 'public' AND tablename <> 'schema_migrations'`).Scan(&tables).Error)
	if len(tables) > 0 {
		require.NoError(t, db.Exec("TRUNCATE "+strings.Join(tables, ", ")+" CASCADE").Error)
	}
	return &TestDB{DB: db, SqlDB: sqlDB}
}
