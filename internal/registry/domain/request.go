package domain

import "time"

// UpdateFields carries the proposed new field values of an update request.
// Each field is independently optional; an empty string means "leave as is".
type UpdateFields struct {
	Name      string
	Thumbnail string
	Content   string
}

// Empty reports whether no field is proposed.
func (f UpdateFields) Empty() bool {
	return f.Name == "" && f.Thumbnail == "" && f.Content == ""
}

// UpdateRequest is one proposed change to a page, identified by a per-page
// sequence number starting at 0. Pending requests accumulate approvals
// until the policy threshold executes them; executed requests are
// immutable. Permissionless submissions persist an already-executed
// request for the audit trail.
type UpdateRequest struct {
	PageID    uint64
	Seq       uint64
	Fields    UpdateFields
	Submitter string
	Approvals int
	// Voters records which principals have approved, deduplicated by address.
	Voters     map[string]bool
	Executed   bool
	CreatedAt  time.Time
	ExecutedAt *time.Time
}

// NewUpdateRequest creates a pending update request.
func NewUpdateRequest(pageID, seq uint64, fields UpdateFields, submitter string, at time.Time) UpdateRequest {
	return UpdateRequest{
		PageID:    pageID,
		Seq:       seq,
		Fields:    fields,
		Submitter: submitter,
		Voters:    map[string]bool{},
		CreatedAt: at.UTC(),
	}
}

// NewExecutedRequest creates the already-executed record a permissionless
// submission leaves behind.
func NewExecutedRequest(pageID, seq uint64, fields UpdateFields, submitter string, at time.Time) UpdateRequest {
	request := NewUpdateRequest(pageID, seq, fields, submitter, at)
	request.MarkExecuted(at)
	return request
}

// RecordApproval registers one principal's approval vote. A principal
// votes at most once per request; a repeat vote fails without mutation.
func (r *UpdateRequest) RecordApproval(principal string) error {
	if r.Executed {
		return ErrRequestAlreadyExecuted
	}
	if r.Voters[principal] {
		return ErrApprovalDuplicate
	}
	if r.Voters == nil {
		r.Voters = map[string]bool{}
	}
	r.Voters[principal] = true
	r.Approvals++
	return nil
}

// MarkExecuted flips the executed flag. The flag is monotonic: execution
// happens at most once per request.
func (r *UpdateRequest) MarkExecuted(at time.Time) {
	executedAt := at.UTC()
	r.Executed = true
	r.ExecutedAt = &executedAt
}

// Clone returns a deep copy of the update request.
func (r UpdateRequest) Clone() UpdateRequest {
	cloned := r
	if r.Voters != nil {
		cloned.Voters = make(map[string]bool, len(r.Voters))
		for principal, voted := range r.Voters {
			cloned.Voters[principal] = voted
		}
	}
	if r.ExecutedAt != nil {
		executedAt := *r.ExecutedAt
		cloned.ExecutedAt = &executedAt
	}
	return cloned
}
