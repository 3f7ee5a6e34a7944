package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/owwn/internal/cache"
	"github.com/mmynk/owwn/internal/metrics"
	"github.com/mmynk/owwn/internal/middleware"
	"github.com/mmynk/owwn/internal/models"
	"github.com/mmynk/owwn/internal/storage/sqlite"
	"github.com/mmynk/owwn/pkg/api/apiconnect"
	"github.com/mmynk/owwn/pkg/logging"
)

// testUserHeader carries the caller's user ID in tests instead of a JWT.
const testUserHeader = "X-Test-User"

type testEnv struct {
	store   *sqlite.SQLiteStore
	metrics *metrics.Metrics
	groups  apiconnect.GroupServiceClient
	ledger  apiconnect.LedgerServiceClient
	users   map[string]*models.User
}

func discardLogger() *slog.Logger {
	return logging.New(io.Discard, slog.LevelError)
}

func newTestStore(t *testing.T) *sqlite.SQLiteStore {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// testAuth trusts testUserHeader as the authenticated caller.
func testAuth() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if id := req.Header().Get(testUserHeader); id != "" {
				ctx = middleware.WithUser(ctx, id)
			}
			return next(ctx, req)
		}
	}
}

// setupTestServer serves GroupService and LedgerService over httptest with
// users alice, bob, carol and dave already registered.
func setupTestServer(t *testing.T, balances cache.BalanceCache) *testEnv {
	t.Helper()

	store := newTestStore(t)
	m := metrics.New(prometheus.NewRegistry())
	logger := discardLogger()

	opts := connect.WithInterceptors(testAuth())
	groupPath, groupHandler := apiconnect.NewGroupServiceHandler(NewGroupService(store, balances, logger), opts)
	ledgerPath, ledgerHandler := apiconnect.NewLedgerServiceHandler(NewLedgerService(store, balances, m, logger), opts)

	mux := http.NewServeMux()
	mux.Handle(groupPath, groupHandler)
	mux.Handle(ledgerPath, ledgerHandler)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return &testEnv{
		store:   store,
		metrics: m,
		groups:  apiconnect.NewGroupServiceClient(server.Client(), server.URL),
		ledger:  apiconnect.NewLedgerServiceClient(server.Client(), server.URL),
		users:   seedUsers(t, store, "alice", "bob", "carol", "dave"),
	}
}

func seedUsers(t *testing.T, store *sqlite.SQLiteStore, names ...string) map[string]*models.User {
	t.Helper()
	users := make(map[string]*models.User, len(names))
	for _, name := range names {
		u := models.NewUser(name+"@example.com", name, "hash")
		if err := store.CreateUser(context.Background(), u); err != nil {
			t.Fatalf("CreateUser(%s) failed: %v", name, err)
		}
		users[name] = u
	}
	return users
}

// id returns the user ID of a seeded user.
func (e *testEnv) id(name string) string {
	return e.users[name].ID
}

// as builds a request made by the named user.
func as[T any](e *testEnv, name string, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	if name != "" {
		req.Header().Set(testUserHeader, e.id(name))
	}
	return req
}

func requireCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	require.Error(t, err)
	var ce *connect.Error
	require.True(t, errors.As(err, &ce), "expected connect error, got %v", err)
	require.Equal(t, want, ce.Code(), "error: %v", err)
}

func int64p(v int64) *int64 { return &v }

func float64p(v float64) *float64 { return &v }
