package pipeline

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vibethink-edu/vibethink-orchestrator-main-sub004/internal/model"
	"github.com/vibethink-edu/vibethink-orchestrator-main-sub004/internal/reviewqueue"
	"github.com/vibethink-edu/vibethink-orchestrator-main-sub004/internal/reviewqueue/sqlite"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// OpenStore opens the configured review queue backend. The returned closer
// must be closed when done.
func OpenStore(cfg *model.Config, logger *slog.Logger) (reviewqueue.Store, io.Closer, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	path := cfg.Paths.ReviewQueue

	switch strings.ToLower(strings.TrimSpace(cfg.Review.Backend)) {
	case "file", "":
		s, err := reviewqueue.NewFileStore(path, reviewqueue.WithLogger(logger))
		if err != nil {
			return nil, nil, err
		}
		return s, nopCloser{}, nil

	case "sqlite":
		s, err := sqlite.Open(path, sqlite.WithLogger(logger))
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil

	default:
		return nil, nil, fmt.Errorf("unknown review backend: %s (supported: file, sqlite)", cfg.Review.Backend)
	}
}
