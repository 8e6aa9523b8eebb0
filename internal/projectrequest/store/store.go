package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/enerjios/enerjios/internal/projectrequest"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectRequestColumns = `
	r.id, r.name, r.email, r.phone, r.city, r.source, r.status,
	r.assigned_engineer, r.created_at, r.updated_at
`

// Expected column order: see selectRequestColumns.
func scanRequest(s scanner) (*projectrequest.ProjectRequest, error) {
	var r projectrequest.ProjectRequest

	var statusStr string

	if err := s.Scan(
		&r.ID, &r.Name, &r.Email, &r.Phone, &r.City, &r.Source, &statusStr,
		&r.AssignedEngineer, &r.CreatedAt, &r.UpdatedAt,
	); err != nil {
		return nil, err
	}

	r.Status = projectrequest.Status(statusStr)

	return &r, nil
}

const insertRequestQuery = `
	INSERT INTO project_requests (name, email, phone, city, source, status, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, NOW())
	RETURNING id, created_at
`

const insertHistoryQuery = `
	INSERT INTO status_history (request_id, status, note, actor_id, created_at)
	VALUES ($1, $2, $3, $4, NOW())
	RETURNING id, created_at
`

// CreateRequest inserts the request and its initial OPEN history entry in
// one transaction, so the audit trail starts at intake.
func (s *Store) CreateRequest(ctx context.Context, r *projectrequest.ProjectRequest, actorID *uuid.UUID) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	err = dbTx.QueryRowContext(ctx, insertRequestQuery,
		r.Name, r.Email, r.Phone, r.City, r.Source, r.Status,
	).Scan(&r.ID, &r.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating project request: %w", err)
	}

	var entry projectrequest.HistoryEntry
	if err := dbTx.QueryRowContext(ctx, insertHistoryQuery,
		r.ID, r.Status, r.Status.Label(), actorID,
	).Scan(&entry.ID, &entry.CreatedAt); err != nil {
		return fmt.Errorf("creating initial history entry: %w", err)
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing project request: %w", err)
	}

	return nil
}

func (s *Store) GetRequest(ctx context.Context, id uuid.UUID) (*projectrequest.ProjectRequest, error) {
	query := `SELECT ` + selectRequestColumns + ` FROM project_requests r WHERE r.id = $1`

	r, err := scanRequest(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, projectrequest.ErrNotFound
		}

		return nil, fmt.Errorf("getting project request: %w", err)
	}

	return r, nil
}

func (s *Store) ListRequests(ctx context.Context, filter projectrequest.ListFilter) ([]*projectrequest.ProjectRequest, error) {
	query := `SELECT ` + selectRequestColumns + ` FROM project_requests r WHERE TRUE`

	var args []any

	argIdx := 1

	if filter.Status != nil {
		query += fmt.Sprintf(" AND r.status = $%d", argIdx)

		args = append(args, *filter.Status)
		argIdx++
	}

	if filter.Engineer != nil {
		query += fmt.Sprintf(" AND r.assigned_engineer = $%d", argIdx)

		args = append(args, *filter.Engineer)
		argIdx++
	}

	if filter.Search != nil {
		query += fmt.Sprintf(" AND (r.name ILIKE '%%' || $%d || '%%' OR r.email ILIKE '%%' || $%d || '%%' OR r.phone ILIKE '%%' || $%d || '%%')", argIdx, argIdx, argIdx)

		args = append(args, *filter.Search)
		argIdx++
	}

	query += " ORDER BY r.created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing project requests: %w", err)
	}
	defer rows.Close()

	var reqs []*projectrequest.ProjectRequest

	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning project request: %w", err)
		}

		reqs = append(reqs, r)
	}

	return reqs, rows.Err()
}

func (s *Store) AssignEngineer(ctx context.Context, id, engineerID uuid.UUID) error {
	query := `
		UPDATE project_requests
		SET assigned_engineer = $1, updated_at = NOW()
		WHERE id = $2
	`

	res, err := s.db.ExecContext(ctx, query, engineerID, id)
	if err != nil {
		return fmt.Errorf("assigning engineer: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return projectrequest.ErrNotFound
	}

	return nil
}

// Transition locks the request row, re-checks the move against the
// committed status and applies the update together with the history
// append. A reader never sees one without the other.
func (s *Store) Transition(ctx context.Context, id uuid.UUID, target projectrequest.Status, actorID *uuid.UUID, note string) (*projectrequest.ProjectRequest, *projectrequest.HistoryEntry, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("beginning transition tx: %w", err)
	}
	defer dbTx.Rollback()

	var currentStr string
	if err := dbTx.QueryRowContext(ctx,
		`SELECT status FROM project_requests WHERE id = $1 FOR UPDATE`, id,
	).Scan(&currentStr); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, projectrequest.ErrNotFound
		}

		return nil, nil, fmt.Errorf("locking project request: %w", err)
	}

	current := projectrequest.Status(currentStr)
	if !projectrequest.CanTransition(current, target) {
		return nil, nil, &projectrequest.InvalidTransitionError{From: current, To: target}
	}

	r, err := scanRequest(dbTx.QueryRowContext(ctx, `
		UPDATE project_requests r
		SET status = $1, updated_at = NOW()
		WHERE r.id = $2
		RETURNING `+selectRequestColumns, target, id))
	if err != nil {
		return nil, nil, fmt.Errorf("updating status: %w", err)
	}

	entry := &projectrequest.HistoryEntry{
		RequestID: id,
		Status:    target,
		Note:      note,
		ActorID:   actorID,
	}
	if err := dbTx.QueryRowContext(ctx, insertHistoryQuery,
		id, target, note, actorID,
	).Scan(&entry.ID, &entry.CreatedAt); err != nil {
		return nil, nil, fmt.Errorf("appending history entry: %w", err)
	}

	if err := dbTx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("committing transition: %w", err)
	}

	return r, entry, nil
}

func (s *Store) ListHistory(ctx context.Context, requestID uuid.UUID) ([]*projectrequest.HistoryEntry, error) {
	query := `
		SELECT id, request_id, status, note, actor_id, created_at
		FROM status_history
		WHERE request_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, requestID)
	if err != nil {
		return nil, fmt.Errorf("listing status history: %w", err)
	}
	defer rows.Close()

	var entries []*projectrequest.HistoryEntry

	for rows.Next() {
		var e projectrequest.HistoryEntry

		var statusStr string

		if err := rows.Scan(&e.ID, &e.RequestID, &statusStr, &e.Note, &e.ActorID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning history entry: %w", err)
		}

		e.Status = projectrequest.Status(statusStr)
		entries = append(entries, &e)
	}

	return entries, rows.Err()
}

func (s *Store) AddNote(ctx context.Context, n *projectrequest.Note) error {
	query := `
		INSERT INTO request_notes (request_id, actor_id, body, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query, n.RequestID, n.ActorID, n.Body).Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		return fmt.Errorf("adding note: %w", err)
	}

	return nil
}

func (s *Store) ListNotes(ctx context.Context, requestID uuid.UUID) ([]*projectrequest.Note, error) {
	query := `
		SELECT id, request_id, actor_id, body, created_at
		FROM request_notes
		WHERE request_id = $1
		ORDER BY created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, requestID)
	if err != nil {
		return nil, fmt.Errorf("listing notes: %w", err)
	}
	defer rows.Close()

	var notes []*projectrequest.Note

	for rows.Next() {
		var n projectrequest.Note
		if err := rows.Scan(&n.ID, &n.RequestID, &n.ActorID, &n.Body, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning note: %w", err)
		}

		notes = append(notes, &n)
	}

	return notes, rows.Err()
}

type importTx struct {
	tx *sql.Tx
}

func (s *Store) BeginImport(ctx context.Context) (projectrequest.ImportTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning import tx: %w", err)
	}

	// Serialize concurrent lead imports; duplicate detection reads the
	// whole table slice it is about to write into.
	if _, err := dbTx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", leadImportLockKey); err != nil {
		dbTx.Rollback()
		return nil, fmt.Errorf("acquiring import lock: %w", err)
	}

	return &importTx{tx: dbTx}, nil
}

const leadImportLockKey = int64(0x1ead1ead)

func (itx *importTx) Commit() error   { return itx.tx.Commit() }
func (itx *importTx) Rollback() error { return itx.tx.Rollback() }

func (itx *importTx) FindExisting(ctx context.Context, params []projectrequest.CreateParams) ([]*projectrequest.ProjectRequest, error) {
	if len(params) == 0 {
		return nil, nil
	}

	emails := make([]string, 0, len(params))
	phones := make([]string, 0, len(params))

	for _, p := range params {
		if p.Email != "" {
			emails = append(emails, p.Email)
		}

		if p.Phone != "" {
			phones = append(phones, p.Phone)
		}
	}

	query := `SELECT ` + selectRequestColumns + `
		FROM project_requests r
		WHERE r.email = ANY($1) OR r.phone = ANY($2)`

	rows, err := itx.tx.QueryContext(ctx, query, emails, phones)
	if err != nil {
		return nil, fmt.Errorf("finding existing requests: %w", err)
	}
	defer rows.Close()

	var reqs []*projectrequest.ProjectRequest

	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning project request: %w", err)
		}

		reqs = append(reqs, r)
	}

	return reqs, rows.Err()
}

func (itx *importTx) CreateRequests(ctx context.Context, reqs []*projectrequest.ProjectRequest) error {
	for _, r := range reqs {
		err := itx.tx.QueryRowContext(ctx, insertRequestQuery,
			r.Name, r.Email, r.Phone, r.City, r.Source, r.Status,
		).Scan(&r.ID, &r.CreatedAt)
		if err != nil {
			return fmt.Errorf("creating project request: %w", err)
		}

		if _, err := itx.tx.ExecContext(ctx,
			`INSERT INTO status_history (request_id, status, note, actor_id, created_at)
			 VALUES ($1, $2, $3, NULL, NOW())`,
			r.ID, r.Status, r.Status.Label(),
		); err != nil {
			return fmt.Errorf("creating initial history entry: %w", err)
		}
	}

	return nil
}
