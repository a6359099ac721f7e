package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"forge-build-publisher/db"
	"forge-build-publisher/internal/forge"
)

type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

var ErrNotFound = errors.New("run not found")

type Run struct {
	ID           string  `db:"id" json:"id"`
	ItemID       string  `db:"item_id" json:"item_id"`
	BuildFile    string  `db:"build_file" json:"build_file"`
	Channel      string  `db:"channel" json:"channel"`
	Status       Status  `db:"status" json:"status"`
	FailureKind  *string `db:"failure_kind" json:"failure_kind"`
	Error        *string `db:"error" json:"error"`
	StartedAtMs  int64   `db:"started_at_ms" json:"started_at_ms"`
	FinishedAtMs *int64  `db:"finished_at_ms" json:"finished_at_ms"`
}

type StartInput struct {
	ItemID    string `validate:"required"`
	BuildFile string `validate:"required"`
	Channel   string `validate:"required"`
}

// Store records publish runs. With a nil db every write is skipped and reads
// return db.ErrHistoryDisabled.
type Store struct {
	db       *sqlx.DB
	logger   *zap.SugaredLogger
	validate *validator.Validate
	now      func() time.Time
}

type NewStoreParams struct {
	fx.In

	DB     *sqlx.DB `name:"history" optional:"true"`
	Logger *zap.SugaredLogger
}

func NewStore(p NewStoreParams) *Store {
	return &Store{
		db:       p.DB,
		logger:   p.Logger,
		validate: validator.New(),
		now:      time.Now,
	}
}

func (s *Store) Enabled() bool { return s.db != nil }

const runColumns = `id, item_id, build_file, channel, status, failure_kind, error, started_at_ms, finished_at_ms`

func (s *Store) Start(ctx context.Context, in StartInput) (Run, error) {
	if err := s.validate.Struct(in); err != nil {
		return Run{}, fmt.Errorf("invalid run: %w", err)
	}

	run := Run{
		ID:          uuid.NewString(),
		ItemID:      in.ItemID,
		BuildFile:   in.BuildFile,
		Channel:     in.Channel,
		Status:      StatusRunning,
		StartedAtMs: s.now().UnixMilli(),
	}
	if !s.Enabled() {
		return run, nil
	}

	q := s.db.Rebind(`INSERT INTO publish_runs (id, item_id, build_file, channel, status, started_at_ms) VALUES (?, ?, ?, ?, ?, ?)`)
	if _, err := s.db.ExecContext(ctx, q, run.ID, run.ItemID, run.BuildFile, run.Channel, string(run.Status), run.StartedAtMs); err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}
	s.logger.Debugw("history_run_started", "run_id", run.ID, "item_id", run.ItemID)
	return run, nil
}

// Finish marks the run succeeded when runErr is nil, failed otherwise.
func (s *Store) Finish(ctx context.Context, id string, runErr error) (Run, error) {
	if !s.Enabled() {
		return Run{}, db.ErrHistoryDisabled
	}

	status := StatusSucceeded
	var kind, msg *string
	if runErr != nil {
		status = StatusFailed
		m := runErr.Error()
		msg = &m
		if k := forge.KindOf(runErr); k != "" {
			ks := string(k)
			kind = &ks
		}
	}
	finished := s.now().UnixMilli()

	return db.Tx[Run](ctx, s.db, func(tx *sqlx.Tx) (Run, error) {
		q := tx.Rebind(`UPDATE publish_runs SET status = ?, failure_kind = ?, error = ?, finished_at_ms = ? WHERE id = ?`)
		res, err := tx.ExecContext(ctx, q, string(status), nullable(kind), nullable(msg), finished, id)
		if err != nil {
			return Run{}, fmt.Errorf("update run: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return Run{}, ErrNotFound
		}

		var run Run
		if err := tx.GetContext(ctx, &run, tx.Rebind(`SELECT `+runColumns+` FROM publish_runs WHERE id = ?`), id); err != nil {
			return Run{}, fmt.Errorf("reload run: %w", err)
		}
		return run, nil
	})
}

func (s *Store) Get(ctx context.Context, id string) (Run, error) {
	if !s.Enabled() {
		return Run{}, db.ErrHistoryDisabled
	}
	var run Run
	err := s.db.GetContext(ctx, &run, s.db.Rebind(`SELECT `+runColumns+` FROM publish_runs WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNotFound
	}
	if err != nil {
		return Run{}, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

type ListFilter struct {
	ItemID string
	Limit  int
}

// List returns the newest runs first.
func (s *Store) List(ctx context.Context, f ListFilter) ([]Run, error) {
	if !s.Enabled() {
		return nil, db.ErrHistoryDisabled
	}
	limit := f.Limit
	switch {
	case limit <= 0:
		limit = defaultListLimit
	case limit > maxListLimit:
		limit = maxListLimit
	}

	query := `SELECT ` + runColumns + ` FROM publish_runs`
	args := []any{}
	if f.ItemID != "" {
		query += ` WHERE item_id = ?`
		args = append(args, f.ItemID)
	}
	query += ` ORDER BY started_at_ms DESC, id DESC LIMIT ?`
	args = append(args, limit)

	runs := []Run{}
	if err := s.db.SelectContext(ctx, &runs, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
