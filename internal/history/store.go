// Package history keeps an audit log of processed translation requests in
// SQLite.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/ganttagent/internal/agent"
	"github.com/alexanderramin/ganttagent/internal/dateexpr"
	"github.com/alexanderramin/ganttagent/internal/db"
	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when no entry matches an id or id prefix.
	ErrNotFound = errors.New("history entry not found")
	// ErrAmbiguousID is returned when an id prefix matches several entries.
	ErrAmbiguousID = errors.New("history id prefix is ambiguous")
)

// createdAtLayout is fixed-width UTC so created_at sorts chronologically as
// text. time.RFC3339Nano trims trailing zeros and would not.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z"

// Entry is one stored translation.
type Entry struct {
	ID                     string
	CreatedAt              time.Time
	ReferenceDate          string
	Message                string
	Success                bool
	FailureKind            agent.FailureKind
	NeedsClarification     bool
	RequiresConfirmation   bool
	ResponseMessage        string
	ClarificationQuestions []string
	Model                  string
	RawReply               string
	DroppedActions         int
	LatencyMs              int64
	Actions                []agent.Action
}

// Store persists translations. It implements agent.Recorder.
type Store struct {
	db  *sql.DB
	uow db.UnitOfWork
	now func() time.Time
}

var _ agent.Recorder = (*Store)(nil)

// NewStore creates a Store on an opened database.
func NewStore(database *sql.DB) *Store {
	return &Store{
		db:  database,
		uow: db.NewSQLiteUnitOfWork(database),
		now: time.Now,
	}
}

// Record stores t and its actions in one transaction.
func (s *Store) Record(ctx context.Context, t agent.Translation) error {
	id := uuid.New().String()
	questions, err := json.Marshal(nonNil(t.Result.ClarificationQuestions))
	if err != nil {
		return fmt.Errorf("encoding clarification questions: %w", err)
	}

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO translations (
				id, created_at, reference_date, message, success, failure_kind,
				needs_clarification, requires_confirmation, response_message, questions_json,
				model, raw_reply, dropped_actions, latency_ms)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id,
			s.now().UTC().Format(createdAtLayout),
			t.ReferenceDate.Format(dateexpr.Layout),
			t.Message,
			boolToInt(t.Result.Success),
			string(t.FailureKind),
			boolToInt(t.Result.NeedsClarification),
			boolToInt(t.Result.RequiresConfirmation),
			t.Result.Message,
			string(questions),
			t.Model,
			t.RawReply,
			t.Dropped,
			t.LatencyMs,
		)
		if err != nil {
			return fmt.Errorf("inserting translation: %w", err)
		}

		for i, a := range t.Result.Actions {
			params, err := json.Marshal(a.Params)
			if err != nil {
				return fmt.Errorf("encoding params of action %d: %w", i, err)
			}
			if a.Params == nil {
				params = []byte("{}")
			}
			_, err = tx.ExecContext(ctx, `INSERT INTO translation_actions
					(translation_id, seq, type, params_json, description, requires_confirmation)
				VALUES (?, ?, ?, ?, ?, ?)`,
				id, i, a.Type, string(params), a.Description, boolToInt(a.RequiresConfirmation))
			if err != nil {
				return fmt.Errorf("inserting action %d: %w", i, err)
			}
		}
		return nil
	})
}

const entryColumns = `id, created_at, reference_date, message, success, failure_kind,
	needs_clarification, requires_confirmation, response_message, questions_json,
	model, raw_reply, dropped_actions, latency_ms`

// List returns up to limit entries, newest first. A non-positive limit
// returns every entry.
func (s *Store) List(ctx context.Context, limit int) ([]*Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM translations ORDER BY created_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing translations: %w", err)
	}
	entries, err := scanEntries(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}

	// Actions load after the row cursor closes; the in-memory pool has a
	// single connection.
	for _, e := range entries {
		if e.Actions, err = s.loadActions(ctx, e.ID); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

// Get returns the entry whose id equals or starts with idPrefix.
func (s *Store) Get(ctx context.Context, idPrefix string) (*Entry, error) {
	idPrefix = strings.TrimSpace(idPrefix)
	if idPrefix == "" {
		return nil, fmt.Errorf("empty id: %w", ErrNotFound)
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM translations WHERE substr(id, 1, ?) = ? LIMIT 2`,
		len(idPrefix), idPrefix)
	if err != nil {
		return nil, fmt.Errorf("looking up translation: %w", err)
	}
	entries, err := scanEntries(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}

	switch len(entries) {
	case 0:
		return nil, fmt.Errorf("translation %s: %w", idPrefix, ErrNotFound)
	case 1:
	default:
		return nil, fmt.Errorf("translation %s: %w", idPrefix, ErrAmbiguousID)
	}

	e := entries[0]
	if e.Actions, err = s.loadActions(ctx, e.ID); err != nil {
		return nil, err
	}
	return e, nil
}

// Prune deletes all but the newest keep entries and returns how many rows
// were removed.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM translations WHERE id NOT IN (
		SELECT id FROM translations ORDER BY created_at DESC, rowid DESC LIMIT ?)`, keep)
	if err != nil {
		return 0, fmt.Errorf("pruning translations: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting pruned translations: %w", err)
	}
	return n, nil
}

func (s *Store) loadActions(ctx context.Context, id string) ([]agent.Action, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT type, params_json, description, requires_confirmation
		FROM translation_actions WHERE translation_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("loading actions: %w", err)
	}
	defer rows.Close()

	actions := []agent.Action{}
	for rows.Next() {
		var (
			a          agent.Action
			paramsJSON string
			confirm    int
		)
		if err := rows.Scan(&a.Type, &paramsJSON, &a.Description, &confirm); err != nil {
			return nil, fmt.Errorf("scanning action row: %w", err)
		}
		if err := json.Unmarshal([]byte(paramsJSON), &a.Params); err != nil {
			return nil, fmt.Errorf("decoding params of %s action: %w", a.Type, err)
		}
		a.RequiresConfirmation = confirm != 0
		actions = append(actions, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating actions: %w", err)
	}
	return actions, nil
}

func scanEntries(rows *sql.Rows) ([]*Entry, error) {
	var entries []*Entry
	for rows.Next() {
		var (
			e                                 Entry
			createdAt, failureKind, questions string
			success, clarify, confirm         int
		)
		err := rows.Scan(
			&e.ID, &createdAt, &e.ReferenceDate, &e.Message, &success, &failureKind,
			&clarify, &confirm, &e.ResponseMessage, &questions,
			&e.Model, &e.RawReply, &e.DroppedActions, &e.LatencyMs,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning translation row: %w", err)
		}
		if e.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("parsing created_at %q: %w", createdAt, err)
		}
		if err := json.Unmarshal([]byte(questions), &e.ClarificationQuestions); err != nil {
			return nil, fmt.Errorf("decoding clarification questions: %w", err)
		}
		e.Success = success != 0
		e.NeedsClarification = clarify != 0
		e.RequiresConfirmation = confirm != 0
		e.FailureKind = agent.FailureKind(failureKind)
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating translations: %w", err)
	}
	return entries, nil
}

// Result rebuilds the wire result stored for e.
func (e *Entry) Result() agent.Result {
	return agent.Result{
		Success:                e.Success,
		Message:                e.ResponseMessage,
		Actions:                e.Actions,
		NeedsClarification:     e.NeedsClarification,
		ClarificationQuestions: nonNil(e.ClarificationQuestions),
		RequiresConfirmation:   e.RequiresConfirmation,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
