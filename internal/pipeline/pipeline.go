// Package pipeline wires the loaders, the classifier backend and the review
// queue into the operations the CLI exposes.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/vibethink-edu/vibethink-orchestrator-main-sub004/internal/cache"
	"github.com/vibethink-edu/vibethink-orchestrator-main-sub004/internal/classify"
	"github.com/vibethink-edu/vibethink-orchestrator-main-sub004/internal/fallback"
	"github.com/vibethink-edu/vibethink-orchestrator-main-sub004/internal/loader"
	"github.com/vibethink-edu/vibethink-orchestrator-main-sub004/internal/model"
	"github.com/vibethink-edu/vibethink-orchestrator-main-sub004/internal/reviewqueue"
)

var (
	// ErrNotReviewable is returned when enqueueing a decision that is not needs_review
	ErrNotReviewable = errors.New("only needs_review decisions can be enqueued")

	// ErrNotApproved is returned when applying an item that is not approved
	ErrNotApproved = errors.New("review item is not approved")

	// ErrNotFound is returned for an unknown review item id
	ErrNotFound = errors.New("review item not found")

	// ErrNoStore is returned by review operations when no store is configured
	ErrNoStore = errors.New("review queue store is not configured")
)

// Pipeline orchestrates classification and review for one configuration
type Pipeline struct {
	config       *model.Config
	classifier   classify.TermClassifier
	store        reviewqueue.Store
	translations *loader.TranslationLoader
	logger       *slog.Logger
	now          func() time.Time
	registryMu   sync.Mutex // Serializes registry read-modify-write in Apply
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithClock overrides the enqueue timestamp source
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithClassifier replaces the configured backend
func WithClassifier(c classify.TermClassifier) Option {
	return func(p *Pipeline) { p.classifier = classify.WithValidation(c) }
}

// WithStore attaches a review queue store
func WithStore(s reviewqueue.Store) Option {
	return func(p *Pipeline) { p.store = s }
}

// New creates a pipeline for cfg
func New(cfg *model.Config, opts ...Option) (*Pipeline, error) {
	if cfg == nil {
		cfg = model.DefaultConfig()
	}
	p := &Pipeline{
		config: cfg,
		logger: slog.New(slog.DiscardHandler),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.classifier == nil {
		c, err := classify.NewClassifier(cfg.Classifier)
		if err != nil {
			return nil, fmt.Errorf("create classifier: %w", err)
		}
		p.classifier = c
	}
	p.translations = loader.NewTranslationLoader(cfg.Paths.Translations, p.logger)
	return p, nil
}

// Config returns the effective configuration
func (p *Pipeline) Config() *model.Config {
	return p.config
}

// Classifier returns the active backend
func (p *Pipeline) Classifier() classify.TermClassifier {
	return p.classifier
}

// Store returns the attached review queue, or nil
func (p *Pipeline) Store() reviewqueue.Store {
	return p.store
}

// TranslationLoader returns the loader for the configured translation root
func (p *Pipeline) TranslationLoader() *loader.TranslationLoader {
	return p.translations
}

// LoadRegistry reads the configured registry. A missing file is an empty registry.
func (p *Pipeline) LoadRegistry() (*model.Registry, error) {
	reg, err := loader.LoadRegistry(p.config.Paths.Registry)
	if errors.Is(err, fs.ErrNotExist) {
		p.logger.Warn("registry file missing, starting empty", "path", p.config.Paths.Registry)
		return &model.Registry{Version: loader.RegistryVersion, Terms: []model.RegistryTerm{}}, nil
	}
	return reg, err
}

// Request builds a classification request with the registry and the context
// locale's translations loaded
func (p *Pipeline) Request(ctx context.Context, term string, tctx model.TenantContext) (classify.Request, error) {
	reg, err := p.LoadRegistry()
	if err != nil {
		return classify.Request{}, err
	}
	tr, err := p.translations.Load(ctx, p.locale(tctx))
	if err != nil {
		return classify.Request{}, fmt.Errorf("load translations: %w", err)
	}
	return classify.Request{
		Term:         term,
		Context:      tctx,
		Registry:     reg.Terms,
		Translations: tr,
	}, nil
}

// Classify loads the current documents and classifies one term
func (p *Pipeline) Classify(ctx context.Context, term string, tctx model.TenantContext) (model.ClassifierOutput, error) {
	req, err := p.Request(ctx, term, tctx)
	if err != nil {
		return model.ClassifierOutput{}, err
	}
	out, err := p.classifier.Classify(ctx, req)
	if err != nil {
		return model.ClassifierOutput{}, err
	}
	p.logger.Debug("term classified", "term", term, "action", out.Action, "confidence", out.Confidence, "context", tctx.String())
	return out, nil
}

// Enqueue records a needs_review decision for human review. Classification
// never enqueues implicitly; callers decide.
func (p *Pipeline) Enqueue(ctx context.Context, term string, tctx model.TenantContext, out model.ClassifierOutput) (string, error) {
	if p.store == nil {
		return "", ErrNoStore
	}
	if out.Action != model.ActionNeedsReview {
		return "", fmt.Errorf("%w: got %s", ErrNotReviewable, out.Action)
	}
	return p.store.Append(ctx, term, tctx, out, p.now())
}

// NewResolver loads every locale and returns a resolver backed by the
// configured cache
func (p *Pipeline) NewResolver(ctx context.Context) (*fallback.Resolver, error) {
	catalog, err := p.translations.LoadCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	var c cache.Cache = cache.Nop{}
	if p.config.Cache.Enabled {
		c = cache.NewMemoryCache(p.config.Cache.TTL, p.config.Cache.CleanupInterval)
	}
	return fallback.NewResolver(catalog,
		fallback.WithCache(c),
		fallback.WithDefaultLocale(p.config.Locale.Default),
		fallback.WithLogger(p.logger),
	), nil
}

func (p *Pipeline) locale(tctx model.TenantContext) string {
	if strings.TrimSpace(tctx.Locale) != "" {
		return tctx.Locale
	}
	return p.config.Locale.Default
}
