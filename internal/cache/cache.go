// Package cache stores computed balance reports per group.
//
// A cached report must always equal a fresh computation from the ledger.
// Every write to a group's expenses, settlements or members advances the
// group's generation, and a report is only served while the generation it
// was computed under is still current. Callers treat cache failures as misses.
package cache

//go:generate mockgen -source=cache.go -destination=cache_mock.go -package=cache

import (
	"context"

	"github.com/mmynk/owwn/internal/calculator"
)

// BalanceCache caches balance reports keyed by group ID.
type BalanceCache interface {
	// Get returns the cached report and the group's current generation. The
	// report is nil on a miss. Read the generation before loading the ledger
	// and hand it back to Set.
	Get(ctx context.Context, groupID string) (*calculator.Report, int64, error)

	// Set stores a report computed under generation gen. A report stored for
	// a superseded generation is never served.
	Set(ctx context.Context, groupID string, gen int64, report *calculator.Report) error

	// Invalidate advances the group's generation.
	Invalidate(ctx context.Context, groupID string) error
}

// Noop is a BalanceCache that never stores anything.
type Noop struct{}

var _ BalanceCache = Noop{}

func (Noop) Get(context.Context, string) (*calculator.Report, int64, error) { return nil, 0, nil }
func (Noop) Set(context.Context, string, int64, *calculator.Report) error   { return nil }
func (Noop) Invalidate(context.Context, string) error                       { return nil }
