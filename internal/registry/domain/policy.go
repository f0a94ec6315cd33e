package domain

import "strings"

// PolicyKind describes who may authorize changes to a page.
type PolicyKind int

const (
	// PolicyKindUnspecified represents an invalid policy kind value.
	PolicyKindUnspecified PolicyKind = iota
	// PolicyKindSingle indicates exactly one owning principal.
	PolicyKindSingle
	// PolicyKindMultiSig indicates a fixed owner set with an approval threshold.
	PolicyKindMultiSig
	// PolicyKindPermissionless indicates every principal is implicitly authorized.
	PolicyKindPermissionless
)

// String returns the lowercase wire name of the policy kind.
func (k PolicyKind) String() string {
	switch k {
	case PolicyKindSingle:
		return "single"
	case PolicyKindMultiSig:
		return "multisig"
	case PolicyKindPermissionless:
		return "permissionless"
	default:
		return "unspecified"
	}
}

// ParsePolicyKind maps a wire name back to a policy kind.
func ParsePolicyKind(value string) PolicyKind {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "single":
		return PolicyKindSingle
	case "multisig":
		return PolicyKindMultiSig
	case "permissionless":
		return PolicyKindPermissionless
	default:
		return PolicyKindUnspecified
	}
}

// Policy is the ownership policy governing a page: the kind, the
// authorized owner set, and (for multisig) the approval threshold.
type Policy struct {
	Kind      PolicyKind
	Owners    []string
	Threshold int
}

// Payout is one principal's slice of a treasury disbursement.
type Payout struct {
	Principal string
	Amount    uint64
}

// NewPolicy validates an owners/threshold combination against the kind's
// constraints and returns a normalized policy. Owner addresses are trimmed;
// a blank owner address fails validation. Duplicate owners are allowed by
// the configuration but approvals are deduplicated per principal, so a
// duplicated address still carries a single vote.
func NewPolicy(kind PolicyKind, owners []string, threshold int) (Policy, error) {
	normalized := make([]string, 0, len(owners))
	for _, owner := range owners {
		owner = strings.TrimSpace(owner)
		if owner == "" {
			return Policy{}, ErrPolicyInvalidConfig
		}
		normalized = append(normalized, owner)
	}

	switch kind {
	case PolicyKindSingle:
		if len(normalized) != 1 || threshold != 1 {
			return Policy{}, ErrPolicyInvalidConfig
		}
	case PolicyKindMultiSig:
		if len(normalized) == 0 || threshold < 1 || threshold > len(normalized) {
			return Policy{}, ErrPolicyInvalidConfig
		}
	case PolicyKindPermissionless:
		if len(normalized) != 0 || threshold != 0 {
			return Policy{}, ErrPolicyInvalidConfig
		}
	default:
		return Policy{}, ErrPolicyInvalidKind
	}

	return Policy{Kind: kind, Owners: normalized, Threshold: threshold}, nil
}

// IsAuthorized reports whether the principal may approve updates under
// this policy. Permissionless pages authorize everyone.
func (p Policy) IsAuthorized(principal string) bool {
	switch p.Kind {
	case PolicyKindSingle, PolicyKindMultiSig:
		for _, owner := range p.Owners {
			if owner == principal {
				return true
			}
		}
		return false
	case PolicyKindPermissionless:
		return true
	default:
		return false
	}
}

// RequiredApprovals returns the number of distinct approvals that execute
// an update request. Permissionless pages execute immediately and return 0.
func (p Policy) RequiredApprovals() int {
	switch p.Kind {
	case PolicyKindSingle:
		return 1
	case PolicyKindMultiSig:
		return p.Threshold
	default:
		return 0
	}
}

// PayoutShares splits a treasury balance into per-owner payouts.
// Single pays the sole owner the full balance. MultiSig pays every owner
// balance/ownerCount; the integer-division remainder is returned separately
// and deliberately paid to no one. Permissionless returns no payouts:
// its funds leave only via distribution.
func (p Policy) PayoutShares(balance uint64) ([]Payout, uint64) {
	switch p.Kind {
	case PolicyKindSingle:
		return []Payout{{Principal: p.Owners[0], Amount: balance}}, 0
	case PolicyKindMultiSig:
		share := balance / uint64(len(p.Owners))
		payouts := make([]Payout, 0, len(p.Owners))
		for _, owner := range p.Owners {
			payouts = append(payouts, Payout{Principal: owner, Amount: share})
		}
		return payouts, balance % uint64(len(p.Owners))
	default:
		return nil, balance
	}
}

// Transition replaces this policy with next. Only single-owner pages may
// change policy; multisig and permissionless are terminal. The next
// configuration is re-validated and fully replaces the owner and
// threshold state.
func (p Policy) Transition(kind PolicyKind, owners []string, threshold int) (Policy, error) {
	if p.Kind != PolicyKindSingle {
		return Policy{}, ErrPolicyTransitionNotAllowed
	}
	return NewPolicy(kind, owners, threshold)
}

// Clone returns a deep copy of the policy.
func (p Policy) Clone() Policy {
	cloned := p
	if p.Owners != nil {
		cloned.Owners = append([]string(nil), p.Owners...)
	}
	return cloned
}
