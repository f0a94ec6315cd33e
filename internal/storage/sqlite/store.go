// Package sqlite provides a SQLite-backed registry storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/folioworks/folio/internal/platform/storage/sqlitemigrate"
	"github.com/folioworks/folio/internal/registry/domain"
	"github.com/folioworks/folio/internal/storage"
	"github.com/folioworks/folio/internal/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store persists registry state in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a registry SQLite store at the provided path and applies
// embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL&_pragma=foreign_keys(ON)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := ensureForeignKeysEnabled(sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	store := &Store{sqlDB: sqlDB}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

// Close closes the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func ensureForeignKeysEnabled(db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("sqlite db is required")
	}
	var enabled int
	if err := db.QueryRow("PRAGMA foreign_keys").Scan(&enabled); err != nil {
		return fmt.Errorf("check sqlite foreign key pragma: %w", err)
	}
	if enabled != 1 {
		return fmt.Errorf("sqlite foreign keys are disabled")
	}
	return nil
}

// CreatePage inserts one page record and returns its assigned id.
// SQLite's AUTOINCREMENT keeps ids strictly increasing and never reused,
// so a failed insert burns no id.
func (s *Store) CreatePage(ctx context.Context, page domain.Page) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin page create: %w", err)
	}
	rollbackWith := func(cause error) error {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return fmt.Errorf("%w: rollback page create: %v", cause, rollbackErr)
		}
		return cause
	}

	result, err := tx.ExecContext(ctx, `
INSERT INTO pages (
  name, thumbnail, content, immutable, update_fee,
  policy_kind, policy_threshold, balance, next_request_seq,
  like_count, dislike_count, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		page.Name,
		page.Thumbnail,
		page.Content,
		boolToInt(page.Immutable),
		int64(page.UpdateFee),
		int(page.Policy.Kind),
		page.Policy.Threshold,
		int64(page.Balance),
		int64(page.NextRequestSeq),
		int64(page.LikeCount),
		int64(page.DislikeCount),
		toMillis(page.CreatedAt),
		toMillis(page.UpdatedAt),
	)
	if err != nil {
		return 0, rollbackWith(fmt.Errorf("insert page: %w", err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, rollbackWith(fmt.Errorf("read page id: %w", err))
	}

	if err := replacePrincipals(ctx, tx, "page_owners", uint64(id), page.Policy.Owners); err != nil {
		return 0, rollbackWith(err)
	}
	if err := replacePrincipals(ctx, tx, "page_participants", uint64(id), page.Participants); err != nil {
		return 0, rollbackWith(err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit page create: %w", err)
	}
	return uint64(id), nil
}

// PutPage replaces one page record by id.
func (s *Store) PutPage(ctx context.Context, page domain.Page) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin page write: %w", err)
	}
	rollbackWith := func(cause error) error {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return fmt.Errorf("%w: rollback page write: %v", cause, rollbackErr)
		}
		return cause
	}

	if err := putPageExec(ctx, tx, page); err != nil {
		return rollbackWith(err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit page write: %w", err)
	}
	return nil
}

func putPageExec(ctx context.Context, tx *sql.Tx, page domain.Page) error {
	result, err := tx.ExecContext(ctx, `
UPDATE pages SET
  name = ?, thumbnail = ?, content = ?, immutable = ?, update_fee = ?,
  policy_kind = ?, policy_threshold = ?, balance = ?, next_request_seq = ?,
  like_count = ?, dislike_count = ?, created_at = ?, updated_at = ?
WHERE id = ?`,
		page.Name,
		page.Thumbnail,
		page.Content,
		boolToInt(page.Immutable),
		int64(page.UpdateFee),
		int(page.Policy.Kind),
		page.Policy.Threshold,
		int64(page.Balance),
		int64(page.NextRequestSeq),
		int64(page.LikeCount),
		int64(page.DislikeCount),
		toMillis(page.CreatedAt),
		toMillis(page.UpdatedAt),
		int64(page.ID),
	)
	if err != nil {
		return fmt.Errorf("update page %d: %w", page.ID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check page update: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	if err := replacePrincipals(ctx, tx, "page_owners", page.ID, page.Policy.Owners); err != nil {
		return err
	}
	return replacePrincipals(ctx, tx, "page_participants", page.ID, page.Participants)
}

func replacePrincipals(ctx context.Context, tx *sql.Tx, table string, pageID uint64, principals []string) error {
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE page_id = ?", table), int64(pageID)); err != nil {
		return fmt.Errorf("clear %s: %w", table, err)
	}
	for position, principal := range principals {
		if _, err := tx.ExecContext(ctx,
			fmt.Sprintf("INSERT INTO %s (page_id, position, principal) VALUES (?, ?, ?)", table),
			int64(pageID), position, principal,
		); err != nil {
			return fmt.Errorf("insert %s row: %w", table, err)
		}
	}
	return nil
}

// GetPage loads one page record by id.
func (s *Store) GetPage(ctx context.Context, id uint64) (domain.Page, error) {
	if err := ctx.Err(); err != nil {
		return domain.Page{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.Page{}, fmt.Errorf("storage is not configured")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, name, thumbnail, content, immutable, update_fee,
       policy_kind, policy_threshold, balance, next_request_seq,
       like_count, dislike_count, created_at, updated_at
FROM pages WHERE id = ?`, int64(id))

	var page domain.Page
	var pageID, updateFee, balance, nextSeq, likes, dislikes, createdAt, updatedAt int64
	var immutable, policyKind, policyThreshold int
	if err := row.Scan(
		&pageID, &page.Name, &page.Thumbnail, &page.Content, &immutable, &updateFee,
		&policyKind, &policyThreshold, &balance, &nextSeq,
		&likes, &dislikes, &createdAt, &updatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Page{}, storage.ErrNotFound
		}
		return domain.Page{}, fmt.Errorf("get page %d: %w", id, err)
	}

	page.ID = uint64(pageID)
	page.Immutable = immutable != 0
	page.UpdateFee = uint64(updateFee)
	page.Policy.Kind = domain.PolicyKind(policyKind)
	page.Policy.Threshold = policyThreshold
	page.Balance = uint64(balance)
	page.NextRequestSeq = uint64(nextSeq)
	page.LikeCount = uint64(likes)
	page.DislikeCount = uint64(dislikes)
	page.CreatedAt = fromMillis(createdAt)
	page.UpdatedAt = fromMillis(updatedAt)

	owners, err := s.listPrincipals(ctx, "page_owners", id)
	if err != nil {
		return domain.Page{}, err
	}
	page.Policy.Owners = owners

	participants, err := s.listPrincipals(ctx, "page_participants", id)
	if err != nil {
		return domain.Page{}, err
	}
	page.Participants = participants
	return page, nil
}

func (s *Store) listPrincipals(ctx context.Context, table string, pageID uint64) ([]string, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		fmt.Sprintf("SELECT principal FROM %s WHERE page_id = ? ORDER BY position", table),
		int64(pageID),
	)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	var principals []string
	for rows.Next() {
		var principal string
		if err := rows.Scan(&principal); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", table, err)
		}
		principals = append(principals, principal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", table, err)
	}
	return principals, nil
}

// CountPages returns the number of pages ever created.
func (s *Store) CountPages(ctx context.Context) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	var count int64
	if err := s.sqlDB.QueryRowContext(ctx, "SELECT COUNT(*) FROM pages").Scan(&count); err != nil {
		return 0, fmt.Errorf("count pages: %w", err)
	}
	return uint64(count), nil
}

// PutPageWithRequest atomically persists a page mutation together with
// the update request it produced or consumed.
func (s *Store) PutPageWithRequest(ctx context.Context, page domain.Page, request domain.UpdateRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if request.PageID != page.ID {
		return fmt.Errorf("request page id %d does not match page %d", request.PageID, page.ID)
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin page/request write: %w", err)
	}
	rollbackWith := func(cause error) error {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return fmt.Errorf("%w: rollback page/request write: %v", cause, rollbackErr)
		}
		return cause
	}

	if err := putPageExec(ctx, tx, page); err != nil {
		return rollbackWith(err)
	}
	if err := putRequestExec(ctx, tx, request); err != nil {
		return rollbackWith(err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit page/request write: %w", err)
	}
	return nil
}

func putRequestExec(ctx context.Context, tx *sql.Tx, request domain.UpdateRequest) error {
	var executedAt any
	if request.ExecutedAt != nil {
		executedAt = toMillis(*request.ExecutedAt)
	}
	if _, err := tx.ExecContext(ctx, `
INSERT INTO update_requests (page_id, seq, name, thumbnail, content, submitter, approvals, executed, created_at, executed_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (page_id, seq) DO UPDATE SET
  approvals = excluded.approvals,
  executed = excluded.executed,
  executed_at = excluded.executed_at`,
		int64(request.PageID),
		int64(request.Seq),
		request.Fields.Name,
		request.Fields.Thumbnail,
		request.Fields.Content,
		request.Submitter,
		request.Approvals,
		boolToInt(request.Executed),
		toMillis(request.CreatedAt),
		executedAt,
	); err != nil {
		return fmt.Errorf("upsert request %d/%d: %w", request.PageID, request.Seq, err)
	}

	for principal := range request.Voters {
		if _, err := tx.ExecContext(ctx, `
INSERT OR IGNORE INTO request_voters (page_id, seq, principal) VALUES (?, ?, ?)`,
			int64(request.PageID), int64(request.Seq), principal,
		); err != nil {
			return fmt.Errorf("insert voter row: %w", err)
		}
	}
	return nil
}

// GetRequest loads one update request by page and sequence.
func (s *Store) GetRequest(ctx context.Context, pageID, seq uint64) (domain.UpdateRequest, error) {
	if err := ctx.Err(); err != nil {
		return domain.UpdateRequest{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.UpdateRequest{}, fmt.Errorf("storage is not configured")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT page_id, seq, name, thumbnail, content, submitter, approvals, executed, created_at, executed_at
FROM update_requests WHERE page_id = ? AND seq = ?`, int64(pageID), int64(seq))

	request, err := scanRequest(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.UpdateRequest{}, storage.ErrNotFound
		}
		return domain.UpdateRequest{}, fmt.Errorf("get request %d/%d: %w", pageID, seq, err)
	}

	if err := s.loadVoters(ctx, &request); err != nil {
		return domain.UpdateRequest{}, err
	}
	return request, nil
}

// ListRequests lists a page's update requests in sequence order.
func (s *Store) ListRequests(ctx context.Context, pageID uint64) ([]domain.UpdateRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT page_id, seq, name, thumbnail, content, submitter, approvals, executed, created_at, executed_at
FROM update_requests WHERE page_id = ? ORDER BY seq`, int64(pageID))
	if err != nil {
		return nil, fmt.Errorf("list requests for page %d: %w", pageID, err)
	}
	defer func() { _ = rows.Close() }()

	var requests []domain.UpdateRequest
	for rows.Next() {
		request, err := scanRequest(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan request row: %w", err)
		}
		requests = append(requests, request)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate requests: %w", err)
	}

	for i := range requests {
		if err := s.loadVoters(ctx, &requests[i]); err != nil {
			return nil, err
		}
	}
	return requests, nil
}

func scanRequest(scan func(...any) error) (domain.UpdateRequest, error) {
	var request domain.UpdateRequest
	var pageID, seq, createdAt int64
	var executed int
	var executedAt sql.NullInt64
	if err := scan(
		&pageID, &seq,
		&request.Fields.Name, &request.Fields.Thumbnail, &request.Fields.Content,
		&request.Submitter, &request.Approvals, &executed, &createdAt, &executedAt,
	); err != nil {
		return domain.UpdateRequest{}, err
	}
	request.PageID = uint64(pageID)
	request.Seq = uint64(seq)
	request.Executed = executed != 0
	request.CreatedAt = fromMillis(createdAt)
	if executedAt.Valid {
		at := fromMillis(executedAt.Int64)
		request.ExecutedAt = &at
	}
	request.Voters = map[string]bool{}
	return request, nil
}

func (s *Store) loadVoters(ctx context.Context, request *domain.UpdateRequest) error {
	rows, err := s.sqlDB.QueryContext(ctx,
		"SELECT principal FROM request_voters WHERE page_id = ? AND seq = ?",
		int64(request.PageID), int64(request.Seq),
	)
	if err != nil {
		return fmt.Errorf("list voters: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var principal string
		if err := rows.Scan(&principal); err != nil {
			return fmt.Errorf("scan voter row: %w", err)
		}
		request.Voters[principal] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate voters: %w", err)
	}
	return nil
}

// GetReaction loads one principal's reaction record for a page.
func (s *Store) GetReaction(ctx context.Context, pageID uint64, principal string) (domain.Reaction, error) {
	if err := ctx.Err(); err != nil {
		return domain.Reaction{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.Reaction{}, fmt.Errorf("storage is not configured")
	}

	row := s.sqlDB.QueryRowContext(ctx,
		"SELECT page_id, principal, liked, disliked FROM reactions WHERE page_id = ? AND principal = ?",
		int64(pageID), principal,
	)
	var reaction domain.Reaction
	var id int64
	var liked, disliked int
	if err := row.Scan(&id, &reaction.Principal, &liked, &disliked); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Reaction{}, storage.ErrNotFound
		}
		return domain.Reaction{}, fmt.Errorf("get reaction: %w", err)
	}
	reaction.PageID = uint64(id)
	reaction.Liked = liked != 0
	reaction.Disliked = disliked != 0
	return reaction, nil
}

// PutPageWithReaction atomically persists the reaction flip with the
// page counter move it caused.
func (s *Store) PutPageWithReaction(ctx context.Context, page domain.Page, reaction domain.Reaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if reaction.PageID != page.ID {
		return fmt.Errorf("reaction page id %d does not match page %d", reaction.PageID, page.ID)
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin page/reaction write: %w", err)
	}
	rollbackWith := func(cause error) error {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return fmt.Errorf("%w: rollback page/reaction write: %v", cause, rollbackErr)
		}
		return cause
	}

	if err := putPageExec(ctx, tx, page); err != nil {
		return rollbackWith(err)
	}
	if _, err := tx.ExecContext(ctx, `
INSERT INTO reactions (page_id, principal, liked, disliked) VALUES (?, ?, ?, ?)
ON CONFLICT (page_id, principal) DO UPDATE SET
  liked = excluded.liked,
  disliked = excluded.disliked`,
		int64(reaction.PageID), reaction.Principal, boolToInt(reaction.Liked), boolToInt(reaction.Disliked),
	); err != nil {
		return rollbackWith(fmt.Errorf("upsert reaction: %w", err))
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit page/reaction write: %w", err)
	}
	return nil
}

// AppendTelemetryEvent persists one telemetry event.
func (s *Store) AppendTelemetryEvent(ctx context.Context, evt storage.TelemetryEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	attributes := evt.Attributes
	if attributes == nil {
		attributes = map[string]string{}
	}
	attributesJSON, err := json.Marshal(attributes)
	if err != nil {
		return fmt.Errorf("encode telemetry attributes: %w", err)
	}

	if _, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO telemetry_events (timestamp, name, severity, page_id, principal, amount, attributes_json)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		toMillis(evt.Timestamp),
		evt.Name,
		evt.Severity,
		int64(evt.PageID),
		evt.Principal,
		int64(evt.Amount),
		string(attributesJSON),
	); err != nil {
		return fmt.Errorf("insert telemetry event: %w", err)
	}
	return nil
}

// ListTelemetryEvents lists a page's telemetry events in append order.
func (s *Store) ListTelemetryEvents(ctx context.Context, pageID uint64) ([]storage.TelemetryEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, timestamp, name, severity, page_id, principal, amount, attributes_json
FROM telemetry_events WHERE page_id = ? ORDER BY id`, int64(pageID))
	if err != nil {
		return nil, fmt.Errorf("list telemetry events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []storage.TelemetryEvent
	for rows.Next() {
		var evt storage.TelemetryEvent
		var timestamp, eventPageID, amount int64
		var attributesJSON string
		if err := rows.Scan(&evt.ID, &timestamp, &evt.Name, &evt.Severity, &eventPageID, &evt.Principal, &amount, &attributesJSON); err != nil {
			return nil, fmt.Errorf("scan telemetry row: %w", err)
		}
		evt.Timestamp = fromMillis(timestamp)
		evt.PageID = uint64(eventPageID)
		evt.Amount = uint64(amount)
		if err := json.Unmarshal([]byte(attributesJSON), &evt.Attributes); err != nil {
			return nil, fmt.Errorf("decode telemetry attributes: %w", err)
		}
		events = append(events, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate telemetry events: %w", err)
	}
	return events, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
