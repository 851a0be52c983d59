package fallback

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vibethink-edu/vibethink-orchestrator-main-sub004/internal/cache"
	"github.com/vibethink-edu/vibethink-orchestrator-main-sub004/internal/model"
)

func newTestResolver() (*Resolver, *cache.MemoryCache) {
	mem := cache.NewMemoryCache(0, time.Minute)
	catalog := model.Catalog{
		"en": sampleTranslations(),
		"es": {
			"workspace/pos": model.Tree{"order": map[string]any{"fire": "Marchar"}},
		},
	}
	return NewResolver(catalog, WithCache(mem), WithDefaultLocale("en")), mem
}

func TestResolver_LocaleThenDefaultThenKey(t *testing.T) {
	r, _ := newTestResolver()
	es := posCtx
	es.Locale = "es"

	assert.Equal(t, "Marchar", r.T("order.fire", es))
	assert.Equal(t, "Void order", r.T("order.void", es), "falls back to default locale")
	assert.Equal(t, "order.refund", r.T("order.refund", es))
	assert.Equal(t, "Fire to kitchen", r.T("order.fire", posCtx))
}

func TestResolver_CachesAndInvalidatesLocale(t *testing.T) {
	r, mem := newTestResolver()
	es := posCtx
	es.Locale = "es"

	assert.Equal(t, "Marchar", r.T("order.fire", es))
	assert.Equal(t, "Marchar", r.T("order.fire", es))
	assert.Equal(t, uint64(1), mem.Stats().Hits)

	r.SetTranslations("es", model.Translations{
		"workspace/pos": model.Tree{"order": map[string]any{"fire": "Enviar a cocina"}},
	})
	assert.Equal(t, "Enviar a cocina", r.T("order.fire", es))
}

func TestResolver_DefaultLocaleChangeClearsEverything(t *testing.T) {
	r, mem := newTestResolver()
	es := posCtx
	es.Locale = "es"

	assert.Equal(t, "Void order", r.T("order.void", es))
	require.Equal(t, 1, mem.Stats().Entries)

	r.SetTranslations("en", model.Translations{
		"concept/hospitality": model.Tree{"order": map[string]any{"void": "Cancel item"}},
	})
	assert.Equal(t, "Cancel item", r.T("order.void", es))
}

func TestResolver_Snapshot(t *testing.T) {
	r, _ := newTestResolver()

	snap := r.Snapshot([]string{"order.fire", "guest", "missing.key"}, posCtx)

	assert.Equal(t, "en", snap.Locale)
	assert.Equal(t, map[string]string{
		"order.fire":  "Fire to kitchen",
		"guest":       "Guest",
		"missing.key": "missing.key",
	}, snap.Values)
	assert.False(t, snap.CreatedAt.IsZero())
}

func TestResolver_ConcurrentReadsAndWrites(t *testing.T) {
	r, _ := newTestResolver()
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = r.T("order.fire", posCtx)
		}()
		go func() {
			defer wg.Done()
			r.SetTranslations("es", model.Translations{})
		}()
	}
	wg.Wait()

	assert.Equal(t, "Fire to kitchen", r.T("order.fire", posCtx))
}

func TestResolver_WithoutCache(t *testing.T) {
	r := NewResolver(model.Catalog{"en": sampleTranslations()})
	assert.Equal(t, "Save", r.T("save", posCtx))
	assert.Equal(t, cache.Stats{}, r.Stats())

	tr, ok := r.Translations("en")
	assert.True(t, ok)
	assert.True(t, tr.Has("workspace/pos"))
}
