package reviewqueue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vibethink-edu/vibethink-orchestrator-main-sub004/internal/model"
	"github.com/vibethink-edu/vibethink-orchestrator-main-sub004/internal/validate"
)

// FileStore keeps the whole queue in one JSON document. Every mutation is a
// full read-modify-write; concurrent writers are last-write-wins, so callers
// must serialize access.
type FileStore struct {
	path   string
	now    func() time.Time
	newID  func() string
	logger *slog.Logger
}

// FileOption configures a FileStore
type FileOption func(*FileStore)

// WithClock overrides the time source used for reviewedAt
func WithClock(now func() time.Time) FileOption {
	return func(s *FileStore) { s.now = now }
}

// WithIDGenerator overrides item id generation
func WithIDGenerator(gen func() string) FileOption {
	return func(s *FileStore) { s.newID = gen }
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) FileOption {
	return func(s *FileStore) { s.logger = l }
}

// NewFileStore creates a store backed by the document at path. The file is
// not touched until the first call.
func NewFileStore(path string, opts ...FileOption) (*FileStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("review queue path is required")
	}
	s := &FileStore{
		path:   filepath.Clean(path),
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Path returns the backing document path
func (s *FileStore) Path() string {
	return s.path
}

// Append implements Store
func (s *FileStore) Append(ctx context.Context, term string, tctx model.TenantContext, result model.ClassifierOutput, ts time.Time) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.TrimSpace(term) == "" {
		return "", fmt.Errorf("term is required")
	}
	doc, err := s.load()
	if err != nil {
		return "", err
	}

	for _, it := range doc.Items {
		if it.Status == model.StatusPending && SameSubject(it, term, tctx) {
			s.logger.Debug("review item already pending", "id", it.ID, "term", term)
			return it.ID, nil
		}
	}

	item := model.ReviewQueueItem{
		ID:        s.newID(),
		Term:      term,
		Context:   tctx.Clone(),
		Result:    result,
		Timestamp: ts.UTC(),
		Status:    model.StatusPending,
	}
	doc.Items = append(doc.Items, item)
	if err := s.save(doc); err != nil {
		return "", err
	}
	s.logger.Info("review item enqueued", "id", item.ID, "term", term)
	return item.ID, nil
}

// List implements Store
func (s *FileStore) List(ctx context.Context, opts model.ListOptions) ([]model.ReviewQueueItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	return Filter(doc.Items, opts), nil
}

// Get implements Store
func (s *FileStore) Get(ctx context.Context, id string) (model.ReviewQueueItem, bool, error) {
	if err := ctx.Err(); err != nil {
		return model.ReviewQueueItem{}, false, err
	}
	doc, err := s.load()
	if err != nil {
		return model.ReviewQueueItem{}, false, err
	}
	for _, it := range doc.Items {
		if it.ID == id {
			return it, true, nil
		}
	}
	return model.ReviewQueueItem{}, false, nil
}

// Resolve implements Store
func (s *FileStore) Resolve(ctx context.Context, id string, res model.Resolution, reviewer string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if err := validate.Resolution(res); err != nil {
		return false, err
	}
	return s.transition(id, func(it *model.ReviewQueueItem) bool {
		next := ResolvedStatus(res)
		if !model.CanTransition(it.Status, next) {
			return false
		}
		now := s.now()
		resolution := res
		it.Status = next
		it.ReviewedAt = &now
		it.ReviewedBy = reviewer
		it.Resolution = &resolution
		return true
	})
}

// MarkMerged implements Store
func (s *FileStore) MarkMerged(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return s.transition(id, func(it *model.ReviewQueueItem) bool {
		if !model.CanTransition(it.Status, model.StatusMerged) {
			return false
		}
		it.Status = model.StatusMerged
		return true
	})
}

// Stats implements Store
func (s *FileStore) Stats(ctx context.Context) (model.QueueStats, error) {
	if err := ctx.Err(); err != nil {
		return model.QueueStats{}, err
	}
	doc, err := s.load()
	if err != nil {
		return model.QueueStats{}, err
	}
	var stats model.QueueStats
	for _, it := range doc.Items {
		stats.Add(it.Status)
	}
	return stats, nil
}

// transition loads the document, applies mutate to the item and saves only when it changed
func (s *FileStore) transition(id string, mutate func(*model.ReviewQueueItem) bool) (bool, error) {
	doc, err := s.load()
	if err != nil {
		return false, err
	}
	for i := range doc.Items {
		if doc.Items[i].ID != id {
			continue
		}
		if !mutate(&doc.Items[i]) {
			return false, nil
		}
		if err := s.save(doc); err != nil {
			return false, err
		}
		s.logger.Info("review item updated", "id", id, "status", doc.Items[i].Status)
		return true, nil
	}
	return false, nil
}

// load reads the document; a missing file is the empty bootstrap state
func (s *FileStore) load() (*model.ReviewQueue, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return &model.ReviewQueue{Version: DocumentVersion, Items: []model.ReviewQueueItem{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read review queue: %w", err)
	}

	var doc model.ReviewQueue
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse review queue %s: %w", s.path, err)
	}
	if doc.Version == "" {
		doc.Version = DocumentVersion
	}
	if doc.Items == nil {
		doc.Items = []model.ReviewQueueItem{}
	}
	return &doc, nil
}

// save writes the whole document through a temp file and rename
func (s *FileStore) save(doc *model.ReviewQueue) (err error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal review queue: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create review queue dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".review-queue-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write review queue: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close review queue: %w", err)
	}
	if err = os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace review queue: %w", err)
	}
	return nil
}
