package fallback

import (
	"log/slog"
	"sync"
	"time"

	"github.com/vibethink-edu/vibethink-orchestrator-main-sub004/internal/cache"
	"github.com/vibethink-edu/vibethink-orchestrator-main-sub004/internal/model"
)

// Resolver is the runtime hot path: it owns a catalog of loaded locales and an
// injected cache. Safe for concurrent use.
type Resolver struct {
	mu            sync.RWMutex
	catalog       model.Catalog
	cache         cache.Cache
	defaultLocale string
	logger        *slog.Logger
}

// Option configures a Resolver
type Option func(*Resolver)

// WithCache sets the resolution cache
func WithCache(c cache.Cache) Option {
	return func(r *Resolver) { r.cache = c }
}

// WithDefaultLocale sets the locale consulted when the requested one has no value
func WithDefaultLocale(locale string) Option {
	return func(r *Resolver) { r.defaultLocale = locale }
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

// NewResolver creates a resolver over a catalog. Without WithCache nothing is cached.
func NewResolver(catalog model.Catalog, opts ...Option) *Resolver {
	r := &Resolver{
		catalog: make(model.Catalog, len(catalog)),
		cache:   cache.Nop{},
		logger:  slog.New(slog.DiscardHandler),
	}
	for loc, tr := range catalog {
		r.catalog[loc] = tr
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// T resolves key for the context's locale, then for the default locale, and
// finally returns key itself. Never fails.
func (r *Resolver) T(key string, tctx model.TenantContext) string {
	chain := BuildChain(tctx)
	ck := cache.Key(tctx.Locale, chain, key)
	if v, ok := r.cache.Get(ck); ok {
		return v
	}

	// Cache under the read lock so a concurrent SetTranslations invalidates after us
	r.mu.RLock()
	defer r.mu.RUnlock()
	value, ok := r.lookup(key, chain, tctx.Locale)
	if !ok {
		r.logger.Debug("unresolved translation key", "key", key, "locale", tctx.Locale)
		value = key
	}
	r.cache.Set(ck, value)
	return value
}

func (r *Resolver) lookup(key string, chain []string, locale string) (string, bool) {
	if v, _, ok := Lookup(key, chain, r.catalog[locale]); ok {
		return v, true
	}
	if r.defaultLocale != "" && r.defaultLocale != locale {
		if v, _, ok := Lookup(key, chain, r.catalog[r.defaultLocale]); ok {
			return v, true
		}
	}
	return "", false
}

// Translations returns the loaded translations for a locale
func (r *Resolver) Translations(locale string) (model.Translations, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tr, ok := r.catalog[locale]
	return tr, ok
}

// SetTranslations replaces one locale and invalidates its cached entries. When
// locale is the default locale every entry is dropped, since any locale may
// have fallen back to it.
func (r *Resolver) SetTranslations(locale string, tr model.Translations) {
	r.mu.Lock()
	r.catalog[locale] = tr
	r.mu.Unlock()
	r.InvalidateLocale(locale)
}

// InvalidateLocale drops cached entries for one locale
func (r *Resolver) InvalidateLocale(locale string) {
	if locale == r.defaultLocale {
		r.cache.Clear()
		r.logger.Debug("resolution cache cleared", "locale", locale)
		return
	}
	n := r.cache.DeletePrefix(cache.LocalePrefix(locale))
	r.logger.Debug("resolution cache invalidated", "locale", locale, "entries", n)
}

// Invalidate drops every cached entry
func (r *Resolver) Invalidate() {
	r.cache.Clear()
}

// Stats exposes cache counters
func (r *Resolver) Stats() cache.Stats {
	return r.cache.Stats()
}

// Snapshot is a pre-resolved set of keys handed to a renderer
type Snapshot struct {
	Locale    string              `json:"locale"`
	Context   model.TenantContext `json:"context"`
	Values    map[string]string   `json:"values"`
	CreatedAt time.Time           `json:"createdAt"`
}

// Snapshot resolves every key for the context at once
func (r *Resolver) Snapshot(keys []string, tctx model.TenantContext) Snapshot {
	values := make(map[string]string, len(keys))
	for _, k := range keys {
		values[k] = r.T(k, tctx)
	}
	return Snapshot{
		Locale:    tctx.Locale,
		Context:   tctx.Clone(),
		Values:    values,
		CreatedAt: time.Now().UTC(),
	}
}
