package database

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/osse101/PullBot_Go/internal/testing/leaktest"
	"github.com/osse101/PullBot_Go/migrations"
)

var testDBConnString string

func TestMain(m *testing.M) {
	flag.Parse()

	terminate := func() {}
	if !testing.Short() {
		testDBConnString, terminate = startPostgres(context.Background())
	}

	code := m.Run()
	terminate()
	os.Exit(code)
}

// startPostgres returns an empty connection string when Docker is missing
func startPostgres(ctx context.Context) (connStr string, terminate func()) {
	terminate = func() {}
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("WARNING: postgres container panicked: %v\n", r)
		}
	}()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("pullbot_test"),
		postgres.WithUsername("pullbot"),
		postgres.WithPassword("pullbot"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		fmt.Printf("WARNING: failed to start postgres container: %v\n", err)
		return "", terminate
	}

	connStr, err = container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		fmt.Printf("WARNING: failed to read connection string: %v\n", err)
		_ = container.Terminate(ctx)
		return "", terminate
	}
	return connStr, func() {
		if err := container.Terminate(ctx); err != nil {
			fmt.Printf("failed to terminate container: %v\n", err)
		}
	}
}

func openPool(t *testing.T, maxConns int) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	if testDBConnString == "" {
		t.Skip("Skipping integration test: database not available")
	}
	pool, err := NewPool(testDBConnString, maxConns, time.Minute, 5*time.Minute)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func TestNewPool_RejectsBadConnString(t *testing.T) {
	_, err := NewPool("postgres://%zz", 5, time.Minute, time.Minute)

	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgFailedToParseConnString)
}

func TestPool_ReleasesConnections(t *testing.T) {
	pool := openPool(t, 5)
	ctx := context.Background()

	queries := []struct {
		sql     string
		wantErr bool
	}{
		{"SELECT 1", false},
		{"SELECT * FROM no_such_table", true},
	}

	for _, q := range queries {
		for i := 0; i < 10; i++ {
			conn, err := pool.Acquire(ctx)
			require.NoError(t, err)

			var n int
			err = conn.QueryRow(ctx, q.sql).Scan(&n)
			conn.Release()
			assert.Equal(t, q.wantErr, err != nil, q.sql)
		}
	}

	assert.Equal(t, int32(0), pool.Stat().AcquiredConns())
}

func TestPool_MaxConnsEnforced(t *testing.T) {
	const maxConns = 3
	pool := openPool(t, maxConns)
	ctx := context.Background()

	held := make([]*pgxpool.Conn, 0, maxConns)
	for i := 0; i < maxConns; i++ {
		conn, err := pool.Acquire(ctx)
		require.NoError(t, err)
		held = append(held, conn)
	}
	assert.Equal(t, int32(maxConns), pool.Stat().AcquiredConns())

	short, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	_, err := pool.Acquire(short)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	held[0].Release()
	conn, err := pool.Acquire(ctx)
	require.NoError(t, err)
	conn.Release()

	for _, c := range held[1:] {
		c.Release()
	}
}

func TestPool_ConcurrentAccess(t *testing.T) {
	pool := openPool(t, 10)
	checker := leaktest.NewGoroutineChecker(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			var got int
			if err := pool.QueryRow(context.Background(), "SELECT $1::int", id).Scan(&got); err != nil {
				t.Errorf("query %d: %v", id, err)
				return
			}
			if got != id {
				t.Errorf("query %d returned %d", id, got)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(0), pool.Stat().AcquiredConns())
	// pgxpool keeps a health-check goroutine per pool
	checker.Check(2)
}

func TestMigrate_Idempotent(t *testing.T) {
	pool := openPool(t, 5)
	ctx := context.Background()

	require.NoError(t, Migrate(ctx, pool, migrations.FS))
	require.NoError(t, Migrate(ctx, pool, migrations.FS))

	var tables int
	err := pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM information_schema.tables
		WHERE table_schema = 'public'
		  AND table_name IN ('allowances', 'named_grants', 'grant_claims', 'inventory_stacks',
		                     'progression', 'progression_awards', 'milestones', 'audit_log', 'events')`).Scan(&tables)
	require.NoError(t, err)
	assert.Equal(t, 9, tables)
}
