package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/mmynk/owwn/internal/cache"
	"github.com/mmynk/owwn/internal/calculator"
	"github.com/mmynk/owwn/internal/metrics"
	"github.com/mmynk/owwn/internal/middleware"
	"github.com/mmynk/owwn/internal/models"
	"github.com/mmynk/owwn/pkg/api"
)

type cachedLedger struct {
	svc     *LedgerService
	cache   *cache.MockBalanceCache
	metrics *metrics.Metrics
	group   *models.Group
	users   map[string]*models.User
}

// newCachedLedger wires a LedgerService to a mock cache over a real store
// holding one group of alice (admin) and bob.
func newCachedLedger(t *testing.T) *cachedLedger {
	t.Helper()
	ctrl := gomock.NewController(t)

	store := newTestStore(t)
	users := seedUsers(t, store, "alice", "bob")
	group := &models.Group{Name: "Trip", Currency: "USD", CurrencySymbol: "$", CreatedBy: users["alice"].ID}
	members := []*models.Member{
		{UserID: users["alice"].ID, Role: models.RoleAdmin},
		{UserID: users["bob"].ID, Role: models.RoleMember},
	}
	require.NoError(t, store.CreateGroup(context.Background(), group, members))

	mock := cache.NewMockBalanceCache(ctrl)
	m := metrics.New(prometheus.NewRegistry())
	return &cachedLedger{
		svc:     NewLedgerService(store, mock, m, discardLogger()),
		cache:   mock,
		metrics: m,
		group:   group,
		users:   users,
	}
}

func (c *cachedLedger) ctx(name string) context.Context {
	return middleware.WithUser(context.Background(), c.users[name].ID)
}

func TestGetGroupBalances_CacheHit(t *testing.T) {
	c := newCachedLedger(t)
	alice, bob := c.users["alice"].ID, c.users["bob"].ID

	cached := &calculator.Report{
		Balances: []calculator.MemberBalance{
			{UserID: alice, NetBalance: 400, TotalPaid: 800, TotalOwed: 400},
			{UserID: bob, NetBalance: -400, TotalOwed: 400},
		},
		Suggestions: []calculator.Transfer{{From: bob, To: alice, Amount: 400}},
	}
	c.cache.EXPECT().Get(gomock.Any(), c.group.ID).Return(cached, int64(2), nil)

	resp, err := c.svc.GetGroupBalances(c.ctx("bob"), connect.NewRequest(&api.GetGroupBalancesRequest{GroupID: c.group.ID}))
	require.NoError(t, err)

	require.Len(t, resp.Msg.Balances, 2)
	assert.Equal(t, int64(400), resp.Msg.Balances[0].Balance)
	assert.Equal(t, "alice", resp.Msg.Balances[0].DisplayName)
	assert.Equal(t, "$4.00", resp.Msg.Balances[0].Display)
	require.Len(t, resp.Msg.Suggestions, 1)
	assert.Equal(t, bob, resp.Msg.Suggestions[0].From)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.BalanceComputations.WithLabelValues(metrics.SourceCache)))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.metrics.BalanceComputations.WithLabelValues(metrics.SourceComputed)))
}

func TestGetGroupBalances_CacheMissStores(t *testing.T) {
	c := newCachedLedger(t)
	alice, bob := c.users["alice"].ID, c.users["bob"].ID

	c.cache.EXPECT().Invalidate(gomock.Any(), c.group.ID).Return(nil)
	_, err := c.svc.CreateExpense(c.ctx("alice"), connect.NewRequest(&api.CreateExpenseRequest{
		GroupID:     c.group.ID,
		Description: "Taxi",
		Amount:      800,
		PaidBy:      alice,
		SplitType:   "equal",
		Splits:      []*api.SplitInput{{UserID: alice}, {UserID: bob}},
	}))
	require.NoError(t, err)

	var stored *calculator.Report
	gomock.InOrder(
		c.cache.EXPECT().Get(gomock.Any(), c.group.ID).Return(nil, int64(1), nil),
		c.cache.EXPECT().Set(gomock.Any(), c.group.ID, int64(1), gomock.Any()).DoAndReturn(
			func(_ context.Context, _ string, _ int64, r *calculator.Report) error {
				stored = r
				return nil
			}),
	)

	resp, err := c.svc.GetGroupBalances(c.ctx("alice"), connect.NewRequest(&api.GetGroupBalancesRequest{GroupID: c.group.ID}))
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, []calculator.Transfer{{From: bob, To: alice, Amount: 400}}, stored.Suggestions)
	assert.Equal(t, int64(400), resp.Msg.Balances[0].Balance)
}

func TestGetGroupBalances_CacheFailuresDegrade(t *testing.T) {
	c := newCachedLedger(t)

	// A failed read leaves no generation to tag a report with, so nothing
	// is stored.
	c.cache.EXPECT().Get(gomock.Any(), c.group.ID).Return(nil, int64(0), errors.New("connection refused"))

	resp, err := c.svc.GetGroupBalances(c.ctx("alice"), connect.NewRequest(&api.GetGroupBalancesRequest{GroupID: c.group.ID}))
	require.NoError(t, err)
	require.Len(t, resp.Msg.Balances, 2)
	assert.Zero(t, resp.Msg.Balances[0].Balance)
	assert.Empty(t, resp.Msg.Suggestions)

	c.cache.EXPECT().Get(gomock.Any(), c.group.ID).Return(nil, int64(0), nil)
	c.cache.EXPECT().Set(gomock.Any(), c.group.ID, int64(0), gomock.Any()).Return(errors.New("connection refused"))

	_, err = c.svc.GetGroupBalances(c.ctx("alice"), connect.NewRequest(&api.GetGroupBalancesRequest{GroupID: c.group.ID}))
	require.NoError(t, err)
}

// memoryCache keeps generations and tagged reports in maps, following the
// same rules as cache.RedisCache.
type memoryCache struct {
	mu      sync.Mutex
	gens    map[string]int64
	reports map[string]taggedReport

	// beforeSet, when set, runs once before the next report is stored.
	beforeSet func()
}

type taggedReport struct {
	gen    int64
	report *calculator.Report
}

func newMemoryCache() *memoryCache {
	return &memoryCache{gens: map[string]int64{}, reports: map[string]taggedReport{}}
}

func (c *memoryCache) Get(_ context.Context, groupID string) (*calculator.Report, int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	gen := c.gens[groupID]
	if e, ok := c.reports[groupID]; ok && e.gen == gen {
		return e.report, gen, nil
	}
	return nil, gen, nil
}

func (c *memoryCache) Set(_ context.Context, groupID string, gen int64, report *calculator.Report) error {
	c.mu.Lock()
	hook := c.beforeSet
	c.beforeSet = nil
	c.mu.Unlock()
	if hook != nil {
		hook()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.reports[groupID] = taggedReport{gen: gen, report: report}
	return nil
}

func (c *memoryCache) Invalidate(_ context.Context, groupID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[groupID]++
	return nil
}

func TestGetGroupBalances_ExpenseDuringRecompute(t *testing.T) {
	balances := newMemoryCache()
	env := setupTestServer(t, balances)
	ctx := context.Background()
	group := createGroup(t, env, "alice", "bob")
	alice, bob := env.id("alice"), env.id("bob")

	// The expense commits after the ledger was read and before the report
	// computed from it reaches the cache.
	var writeErr error
	balances.beforeSet = func() {
		_, writeErr = env.ledger.CreateExpense(ctx, as(env, "alice", &api.CreateExpenseRequest{
			GroupID:     group.ID,
			Description: "Dinner",
			Amount:      1000,
			PaidBy:      alice,
			SplitType:   "equal",
			Splits:      []*api.SplitInput{{UserID: alice}, {UserID: bob}},
		}))
	}

	request := &api.GetGroupBalancesRequest{GroupID: group.ID}
	before, err := env.ledger.GetGroupBalances(ctx, as(env, "alice", request))
	require.NoError(t, err)
	require.NoError(t, writeErr)
	for _, b := range before.Msg.Balances {
		assert.Zero(t, b.Balance)
	}

	for i := 0; i < 2; i++ {
		resp, err := env.ledger.GetGroupBalances(ctx, as(env, "bob", request))
		require.NoError(t, err)
		got := map[string]int64{}
		for _, b := range resp.Msg.Balances {
			got[b.UserID] = b.Balance
		}
		assert.Equal(t, int64(500), got[alice])
		assert.Equal(t, int64(-500), got[bob])
		require.Len(t, resp.Msg.Suggestions, 1)
		assert.Equal(t, bob, resp.Msg.Suggestions[0].From)
		assert.Equal(t, alice, resp.Msg.Suggestions[0].To)
		assert.Equal(t, int64(500), resp.Msg.Suggestions[0].Amount)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(env.metrics.BalanceComputations.WithLabelValues(metrics.SourceComputed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.BalanceComputations.WithLabelValues(metrics.SourceCache)))
}

func TestLedgerMutationsInvalidate(t *testing.T) {
	c := newCachedLedger(t)
	alice, bob := c.users["alice"].ID, c.users["bob"].ID

	// Create expense, create settlement, delete both.
	c.cache.EXPECT().Invalidate(gomock.Any(), c.group.ID).Return(nil).Times(4)

	expense, err := c.svc.CreateExpense(c.ctx("bob"), connect.NewRequest(&api.CreateExpenseRequest{
		GroupID:     c.group.ID,
		Description: "Lunch",
		Amount:      1200,
		PaidBy:      bob,
		SplitType:   "equal",
		Splits:      []*api.SplitInput{{UserID: alice}, {UserID: bob}},
	}))
	require.NoError(t, err)

	settlement, err := c.svc.CreateSettlement(c.ctx("alice"), connect.NewRequest(&api.CreateSettlementRequest{
		GroupID:    c.group.ID,
		FromUserID: alice,
		ToUserID:   bob,
		Amount:     600,
	}))
	require.NoError(t, err)

	_, err = c.svc.DeleteSettlement(c.ctx("bob"), connect.NewRequest(&api.DeleteSettlementRequest{SettlementID: settlement.Msg.Settlement.ID}))
	require.NoError(t, err)

	_, err = c.svc.DeleteExpense(c.ctx("bob"), connect.NewRequest(&api.DeleteExpenseRequest{ExpenseID: expense.Msg.Expense.ID}))
	require.NoError(t, err)
}

func TestLedgerInvalidateFailureDoesNotFail(t *testing.T) {
	c := newCachedLedger(t)
	alice := c.users["alice"].ID

	c.cache.EXPECT().Invalidate(gomock.Any(), c.group.ID).Return(errors.New("timeout"))

	_, err := c.svc.CreateSettlement(c.ctx("alice"), connect.NewRequest(&api.CreateSettlementRequest{
		GroupID:    c.group.ID,
		FromUserID: c.users["bob"].ID,
		ToUserID:   alice,
		Amount:     100,
	}))
	require.NoError(t, err)
}

func TestRejectedExpenseLeavesCacheAlone(t *testing.T) {
	c := newCachedLedger(t)

	// No expectations: a rejected write must not touch the cache.
	_, err := c.svc.CreateExpense(c.ctx("alice"), connect.NewRequest(&api.CreateExpenseRequest{
		GroupID:     c.group.ID,
		Description: "Lunch",
		Amount:      1200,
		PaidBy:      c.users["alice"].ID,
		SplitType:   "equal",
		Splits:      []*api.SplitInput{{UserID: "stranger"}},
	}))
	require.Error(t, err)
	assert.Equal(t, connect.CodeFailedPrecondition, connect.CodeOf(err))
}
