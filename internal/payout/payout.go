// Package payout models the external value transfer the registry performs
// when fees leave a page treasury. The registry only depends on the
// Transferrer interface; the in-memory bank is the default collaborator
// for local runs and tests.
package payout

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/folioworks/folio/internal/registry/domain"
)

// ErrTransferRejected indicates a recipient refused the transfer.
var ErrTransferRejected = errors.New("transfer rejected")

// Transferrer sends a batch of payouts to their principals. The batch is
// atomic: a non-nil error means no value moved for any payout.
type Transferrer interface {
	Transfer(ctx context.Context, payouts []domain.Payout) error
}

// Bank is an in-memory account book crediting transfers per principal.
type Bank struct {
	mu       sync.RWMutex
	balances map[string]uint64
	rejected map[string]bool
}

// NewBank creates an empty bank.
func NewBank() *Bank {
	return &Bank{
		balances: map[string]uint64{},
		rejected: map[string]bool{},
	}
}

// Transfer credits each payout's principal. The batch is checked before
// any account is credited so a rejection leaves every balance untouched.
func (b *Bank) Transfer(ctx context.Context, payouts []domain.Payout) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, payout := range payouts {
		if payout.Principal == "" {
			return fmt.Errorf("payout principal is required")
		}
		if b.rejected[payout.Principal] {
			return fmt.Errorf("transfer to %s: %w", payout.Principal, ErrTransferRejected)
		}
	}
	for _, payout := range payouts {
		b.balances[payout.Principal] += payout.Amount
	}
	return nil
}

// BalanceOf returns the principal's credited balance.
func (b *Bank) BalanceOf(principal string) uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.balances[principal]
}

// Reject marks a principal as refusing transfers. Used to exercise the
// registry's rollback path.
func (b *Bank) Reject(principal string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rejected[principal] = true
}
