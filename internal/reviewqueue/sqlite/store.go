// Package sqlite provides a SQLite-backed review queue. Unlike the JSON file
// store it is safe for concurrent writers: duplicate detection is a partial
// unique index and every transition is a conditional UPDATE.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/vibethink-edu/vibethink-orchestrator-main-sub004/internal/model"
	"github.com/vibethink-edu/vibethink-orchestrator-main-sub004/internal/reviewqueue"
	"github.com/vibethink-edu/vibethink-orchestrator-main-sub004/internal/reviewqueue/sqlite/migrations"
	"github.com/vibethink-edu/vibethink-orchestrator-main-sub004/internal/validate"
)

var _ reviewqueue.Store = (*Store)(nil)

// Store provides SQLite-backed review queue persistence.
type Store struct {
	sqlDB  *sql.DB
	now    func() time.Time
	newID  func() string
	logger *slog.Logger
}

// Option configures a Store
type Option func(*Store)

// WithClock overrides the time source used for reviewedAt
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides item id generation
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// Open opens a review queue SQLite store and applies migrations.
func Open(path string, opts ...Option) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if err := applyMigrations(context.Background(), sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	store := &Store{
		sqlDB:  sqlDB,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(store)
	}
	return store, nil
}

// Close releases the SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Append implements reviewqueue.Store
func (s *Store) Append(ctx context.Context, term string, tctx model.TenantContext, result model.ClassifierOutput, ts time.Time) (string, error) {
	if err := s.ready(ctx); err != nil {
		return "", err
	}
	if strings.TrimSpace(term) == "" {
		return "", fmt.Errorf("term is required")
	}

	contextJSON, err := json.Marshal(tctx)
	if err != nil {
		return "", fmt.Errorf("marshal context: %w", err)
	}
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("marshal result: %w", err)
	}

	id := s.newID()
	folded := reviewqueue.FoldTerm(term)
	res, err := s.sqlDB.ExecContext(ctx, `
INSERT OR IGNORE INTO review_items (
	id,
	term,
	term_folded,
	vertical,
	subvertical,
	context_json,
	result_json,
	status,
	created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
		id,
		term,
		folded,
		tctx.Vertical,
		tctx.Subvertical,
		string(contextJSON),
		string(resultJSON),
		string(model.StatusPending),
		toMillis(ts),
	)
	if err != nil {
		return "", fmt.Errorf("insert review item: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("insert review item: %w", err)
	}
	if inserted == 1 {
		s.logger.Info("review item enqueued", "id", id, "term", term)
		return id, nil
	}

	// The partial unique index rejected the row: return the pending duplicate
	var existing string
	err = s.sqlDB.QueryRowContext(ctx, `
SELECT id FROM review_items
WHERE term_folded = ? AND vertical = ? AND subvertical = ? AND status = 'pending'
`, folded, tctx.Vertical, tctx.Subvertical).Scan(&existing)
	if err != nil {
		return "", fmt.Errorf("find pending duplicate: %w", err)
	}
	s.logger.Debug("review item already pending", "id", existing, "term", term)
	return existing, nil
}

// List implements reviewqueue.Store
func (s *Store) List(ctx context.Context, opts model.ListOptions) ([]model.ReviewQueueItem, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	limit := -1
	if opts.Limit > 0 {
		limit = opts.Limit
	}

	rows, err := s.sqlDB.QueryContext(ctx, selectItems+`
WHERE (? = '' OR status = ?)
ORDER BY created_at DESC, rowid ASC
LIMIT ?
`, string(opts.Status), string(opts.Status), limit)
	if err != nil {
		return nil, fmt.Errorf("list review items: %w", err)
	}
	defer rows.Close()

	items := make([]model.ReviewQueueItem, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review items: %w", err)
	}
	return items, nil
}

// Get implements reviewqueue.Store
func (s *Store) Get(ctx context.Context, id string) (model.ReviewQueueItem, bool, error) {
	if err := s.ready(ctx); err != nil {
		return model.ReviewQueueItem{}, false, err
	}
	row := s.sqlDB.QueryRowContext(ctx, selectItems+"WHERE id = ?", id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ReviewQueueItem{}, false, nil
	}
	if err != nil {
		return model.ReviewQueueItem{}, false, err
	}
	return item, true, nil
}

// Resolve implements reviewqueue.Store
func (s *Store) Resolve(ctx context.Context, id string, res model.Resolution, reviewer string) (bool, error) {
	if err := s.ready(ctx); err != nil {
		return false, err
	}
	if err := validate.Resolution(res); err != nil {
		return false, err
	}
	resolutionJSON, err := json.Marshal(res)
	if err != nil {
		return false, fmt.Errorf("marshal resolution: %w", err)
	}

	result, err := s.sqlDB.ExecContext(ctx, `
UPDATE review_items
SET status = ?, reviewed_at = ?, reviewed_by = ?, resolution_json = ?, version = version + 1
WHERE id = ? AND status = 'pending'
`,
		string(reviewqueue.ResolvedStatus(res)),
		toMillis(s.now()),
		reviewer,
		string(resolutionJSON),
		id,
	)
	if err != nil {
		return false, fmt.Errorf("resolve review item: %w", err)
	}
	return s.changed(result, id, "resolved")
}

// MarkMerged implements reviewqueue.Store
func (s *Store) MarkMerged(ctx context.Context, id string) (bool, error) {
	if err := s.ready(ctx); err != nil {
		return false, err
	}
	result, err := s.sqlDB.ExecContext(ctx, `
UPDATE review_items
SET status = 'merged', version = version + 1
WHERE id = ? AND status = 'approved'
`, id)
	if err != nil {
		return false, fmt.Errorf("merge review item: %w", err)
	}
	return s.changed(result, id, "merged")
}

// Stats implements reviewqueue.Store
func (s *Store) Stats(ctx context.Context) (model.QueueStats, error) {
	var stats model.QueueStats
	if err := s.ready(ctx); err != nil {
		return stats, err
	}
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT status, COUNT(*) FROM review_items GROUP BY status`)
	if err != nil {
		return stats, fmt.Errorf("count review items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return stats, fmt.Errorf("scan review stats: %w", err)
		}
		for i := 0; i < n; i++ {
			stats.Add(model.ReviewStatus(status))
		}
	}
	if err := rows.Err(); err != nil {
		return stats, fmt.Errorf("iterate review stats: %w", err)
	}
	return stats, nil
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

func (s *Store) changed(result sql.Result, id, verb string) (bool, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return false, nil
	}
	s.logger.Info("review item "+verb, "id", id)
	return true, nil
}

const selectItems = `
SELECT
	id,
	term,
	context_json,
	result_json,
	status,
	created_at,
	reviewed_at,
	reviewed_by,
	resolution_json
FROM review_items
`

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(row scanner) (model.ReviewQueueItem, error) {
	var (
		item           model.ReviewQueueItem
		contextJSON    string
		resultJSON     string
		status         string
		createdAt      int64
		reviewedAt     sql.NullInt64
		resolutionJSON sql.NullString
	)
	if err := row.Scan(
		&item.ID,
		&item.Term,
		&contextJSON,
		&resultJSON,
		&status,
		&createdAt,
		&reviewedAt,
		&item.ReviewedBy,
		&resolutionJSON,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return item, err
		}
		return item, fmt.Errorf("scan review item: %w", err)
	}

	if err := json.Unmarshal([]byte(contextJSON), &item.Context); err != nil {
		return item, fmt.Errorf("decode context for %s: %w", item.ID, err)
	}
	if err := json.Unmarshal([]byte(resultJSON), &item.Result); err != nil {
		return item, fmt.Errorf("decode result for %s: %w", item.ID, err)
	}
	item.Status = model.ReviewStatus(status)
	item.Timestamp = fromMillis(createdAt)
	if reviewedAt.Valid {
		t := fromMillis(reviewedAt.Int64)
		item.ReviewedAt = &t
	}
	if resolutionJSON.Valid && resolutionJSON.String != "" {
		var res model.Resolution
		if err := json.Unmarshal([]byte(resolutionJSON.String), &res); err != nil {
			return item, fmt.Errorf("decode resolution for %s: %w", item.ID, err)
		}
		item.Resolution = &res
	}
	return item, nil
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
