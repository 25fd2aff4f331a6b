package inventory

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopd/internal/postgres"
)

// These tests exercise the real atomic SQL and need a database. Point
// TEST_POSTGRES_DSN at a migrated instance to run them.
func testLedger(t *testing.T) *Ledger {
	t.Helper()
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}
	pool, err := postgres.Connect(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return &Ledger{DB: pool}
}

func seedProduct(t *testing.T, l *Ledger, stock int) string {
	t.Helper()
	id := uuid.NewString()
	_, err := l.DB.Exec(context.Background(), `
		INSERT INTO products (id, name, price, stock) VALUES ($1, $2, 9.99, $3)`,
		id, "ledger-test", stock)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = l.DB.Exec(context.Background(), `DELETE FROM products WHERE id=$1`, id)
	})
	return id
}

func TestReserveAndRelease(t *testing.T) {
	l := testLedger(t)
	ctx := context.Background()
	id := seedProduct(t, l, 5)

	ok, err := l.Reserve(ctx, id, 3)
	require.NoError(t, err)
	assert.True(t, ok)

	// Only 2 left, a request for 3 must be refused without mutating.
	ok, err = l.Reserve(ctx, id, 3)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, l.Release(ctx, id, 3))

	ok, err = l.Reserve(ctx, id, 5)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestReserveUnknownProduct(t *testing.T) {
	l := testLedger(t)
	ok, err := l.Reserve(context.Background(), uuid.NewString(), 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

// With one unit left and many concurrent reservations, exactly one wins.
func TestReserveContention(t *testing.T) {
	l := testLedger(t)
	ctx := context.Background()
	id := seedProduct(t, l, 1)

	const attempts = 16
	var wg sync.WaitGroup
	wins := make(chan bool, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := l.Reserve(ctx, id, 1)
			assert.NoError(t, err)
			wins <- ok
		}()
	}
	wg.Wait()
	close(wins)

	won := 0
	for ok := range wins {
		if ok {
			won++
		}
	}
	assert.Equal(t, 1, won)
}

func TestCountAvailable(t *testing.T) {
	l := testLedger(t)
	ctx := context.Background()

	before, err := l.CountAvailable(ctx)
	require.NoError(t, err)

	seedProduct(t, l, 3)
	after, err := l.CountAvailable(ctx)
	require.NoError(t, err)
	assert.Equal(t, before+1, after)
}
