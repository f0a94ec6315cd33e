// Package service orchestrates the page registry: creation, the
// update-approval pipeline, treasury payouts, and reactions. Every
// mutating operation is serialized behind one mutex and either fully
// completes or leaves state exactly as before the call.
package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/folioworks/folio/internal/payout"
	"github.com/folioworks/folio/internal/registry/format"
	"github.com/folioworks/folio/internal/storage"
	"github.com/folioworks/folio/internal/telemetry"
)

// Stores groups the storage interfaces the registry depends on.
type Stores struct {
	Page     storage.PageStore
	Request  storage.RequestStore
	Reaction storage.ReactionStore
}

// Registry implements the public page registry operations.
type Registry struct {
	// mu serializes mutating operations so each one runs to completion
	// with no interleaving, matching the registry's atomic-per-operation
	// execution model.
	mu        sync.Mutex
	stores    Stores
	checker   format.Checker
	transfers payout.Transferrer
	emitter   *telemetry.Emitter
	clock     func() time.Time
}

// Option configures a Registry.
type Option func(*Registry)

// WithClock overrides the registry clock.
func WithClock(clock func() time.Time) Option {
	return func(r *Registry) {
		if clock != nil {
			r.clock = clock
		}
	}
}

// WithFormatChecker overrides the content-format predicates.
func WithFormatChecker(checker format.Checker) Option {
	return func(r *Registry) {
		if checker != nil {
			r.checker = checker
		}
	}
}

// WithTransferrer sets the external payout collaborator.
func WithTransferrer(transfers payout.Transferrer) Option {
	return func(r *Registry) {
		r.transfers = transfers
	}
}

// WithTelemetry sets the telemetry emitter.
func WithTelemetry(emitter *telemetry.Emitter) Option {
	return func(r *Registry) {
		r.emitter = emitter
	}
}

// New creates a Registry with default dependencies: the shipped format
// rules, an in-memory bank, and no telemetry.
func New(stores Stores, opts ...Option) *Registry {
	registry := &Registry{
		stores:    stores,
		checker:   format.DefaultRules(),
		transfers: payout.NewBank(),
		clock:     time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(registry)
		}
	}
	return registry
}

// emit records a telemetry event. Telemetry is a side channel: emission
// failures are logged and never fail the operation that produced them.
func (r *Registry) emit(ctx context.Context, evt storage.TelemetryEvent) {
	if err := r.emitter.Emit(ctx, evt); err != nil {
		log.Printf("emit telemetry %s: %v", evt.Name, err)
	}
}
