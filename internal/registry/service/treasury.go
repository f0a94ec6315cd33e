package service

import (
	"context"
	"fmt"
	"strconv"

	apperrors "github.com/folioworks/folio/internal/platform/errors"
	"github.com/folioworks/folio/internal/registry/domain"
	"github.com/folioworks/folio/internal/storage"
	"github.com/folioworks/folio/internal/telemetry"
)

// WithdrawFees pays the page's accumulated fees out to its owners
// according to the ownership policy. The treasury is zeroed before the
// transfer; a failed transfer restores the prior page state so the
// caller can retry.
func (r *Registry) WithdrawFees(ctx context.Context, pageID uint64, caller string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := requireCaller(caller); err != nil {
		return err
	}
	page, err := r.loadPage(ctx, pageID)
	if err != nil {
		return err
	}

	if page.Balance == 0 {
		return apperrors.WithMetadata(apperrors.CodeTreasuryEmpty, "page treasury is empty", map[string]string{
			"PageID": strconv.FormatUint(pageID, 10),
		})
	}
	if page.Policy.Kind == domain.PolicyKindPermissionless {
		return apperrors.New(apperrors.CodeTreasuryNotWithdrawable, "permissionless treasuries are distributed, not withdrawn")
	}
	if !page.Policy.IsAuthorized(caller) {
		return errUnauthorized(caller)
	}

	prior := page.Clone()
	shares, remainder := page.Policy.PayoutShares(page.Balance)
	page.Balance = 0
	page.UpdatedAt = r.clock().UTC()

	if err := r.stores.Page.PutPage(ctx, page); err != nil {
		return fmt.Errorf("persist withdrawal: %w", err)
	}
	if err := r.transfers.Transfer(ctx, nonZero(shares)); err != nil {
		if restoreErr := r.stores.Page.PutPage(ctx, prior); restoreErr != nil {
			return fmt.Errorf("restore treasury after failed transfer: %w", restoreErr)
		}
		return apperrors.Wrap(apperrors.CodeTransferFailed, "fee payout failed", err)
	}

	r.emit(ctx, storage.TelemetryEvent{
		Name:      telemetry.EventFeesWithdrawn,
		PageID:    pageID,
		Principal: caller,
		Amount:    prior.Balance,
		Attributes: map[string]string{
			"owners":    strconv.Itoa(len(shares)),
			"remainder": strconv.FormatUint(remainder, 10),
		},
	})
	return nil
}

// DistributeTreasury sends a permissionless page's entire treasury to
// one participant chosen by a deterministic but weakly seeded draw. Any
// caller may trigger the distribution.
func (r *Registry) DistributeTreasury(ctx context.Context, pageID uint64, caller string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := requireCaller(caller); err != nil {
		return "", err
	}
	page, err := r.loadPage(ctx, pageID)
	if err != nil {
		return "", err
	}

	if page.Policy.Kind != domain.PolicyKindPermissionless {
		return "", apperrors.New(apperrors.CodeTreasuryNotDistributable, "only permissionless treasuries are distributed")
	}
	if page.Balance == 0 {
		return "", apperrors.WithMetadata(apperrors.CodeTreasuryEmpty, "page treasury is empty", map[string]string{
			"PageID": strconv.FormatUint(pageID, 10),
		})
	}
	if len(page.Participants) == 0 {
		return "", apperrors.New(apperrors.CodeParticipantLedgerEmpty, "page has no recorded participants")
	}

	now := r.clock().UTC()
	winner := page.Participants[domain.DrawParticipant(len(page.Participants), caller, page.Balance, now)]

	prior := page.Clone()
	amount := page.Balance
	page.Balance = 0
	page.UpdatedAt = now

	if err := r.stores.Page.PutPage(ctx, page); err != nil {
		return "", fmt.Errorf("persist distribution: %w", err)
	}
	if err := r.transfers.Transfer(ctx, []domain.Payout{{Principal: winner, Amount: amount}}); err != nil {
		if restoreErr := r.stores.Page.PutPage(ctx, prior); restoreErr != nil {
			return "", fmt.Errorf("restore treasury after failed transfer: %w", restoreErr)
		}
		return "", apperrors.Wrap(apperrors.CodeTransferFailed, "distribution payout failed", err)
	}

	r.emit(ctx, storage.TelemetryEvent{
		Name:      telemetry.EventTreasuryDistributed,
		PageID:    pageID,
		Principal: winner,
		Amount:    amount,
		Attributes: map[string]string{
			"caller":       caller,
			"participants": strconv.Itoa(len(page.Participants)),
		},
	})
	return winner, nil
}

func nonZero(shares []domain.Payout) []domain.Payout {
	out := shares[:0:0]
	for _, share := range shares {
		if share.Amount > 0 {
			out = append(out, share)
		}
	}
	return out
}
