package pipeline

import (
	"context"
	"fmt"

	"github.com/vibethink-edu/vibethink-orchestrator-main-sub004/internal/infer"
	"github.com/vibethink-edu/vibethink-orchestrator-main-sub004/internal/loader"
	"github.com/vibethink-edu/vibethink-orchestrator-main-sub004/internal/model"
)

// ApplyResult describes what applying a review item changed
type ApplyResult struct {
	ID              string
	Key             string
	RegistryUpdated bool
}

// Apply merges an approved review item. create_new resolutions add the key
// to the registry first; use_existing resolutions only change the item state.
func (p *Pipeline) Apply(ctx context.Context, id string) (*ApplyResult, error) {
	if p.store == nil {
		return nil, ErrNoStore
	}
	item, found, err := p.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if item.Status != model.StatusApproved || item.Resolution == nil {
		return nil, fmt.Errorf("%w: %s is %s", ErrNotApproved, id, item.Status)
	}

	result := &ApplyResult{ID: id, Key: item.Resolution.Key}
	if item.Resolution.Action == model.ResolveCreateNew {
		term := registryTermFor(item)
		if term.Key == "" {
			return nil, fmt.Errorf("review item %s has no key to create", id)
		}
		updated, err := p.addRegistryTerm(term)
		if err != nil {
			return nil, err
		}
		result.Key = term.Key
		result.RegistryUpdated = updated
	}

	ok, err := p.store.MarkMerged(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Another reviewer merged it between Get and MarkMerged
		return nil, fmt.Errorf("%w: %s changed state during apply", ErrNotApproved, id)
	}
	p.logger.Info("review item applied", "id", id, "key", result.Key, "registry_updated", result.RegistryUpdated)
	return result, nil
}

// addRegistryTerm appends term unless its key already exists
func (p *Pipeline) addRegistryTerm(term model.RegistryTerm) (bool, error) {
	p.registryMu.Lock()
	defer p.registryMu.Unlock()

	reg, err := p.LoadRegistry()
	if err != nil {
		return false, err
	}
	for _, rt := range reg.Terms {
		if rt.Key == term.Key {
			return false, nil
		}
	}
	reg.Terms = append(reg.Terms, term)
	if err := loader.SaveRegistry(p.config.Paths.Registry, reg); err != nil {
		return false, fmt.Errorf("save registry: %w", err)
	}
	return true, nil
}

// registryTermFor derives the registry entry a create_new resolution produces
func registryTermFor(item model.ReviewQueueItem) model.RegistryTerm {
	key := item.Resolution.Key
	if key == "" && len(item.Result.SuggestedKeys) > 0 {
		key = item.Result.SuggestedKeys[0]
	}
	if key == "" {
		if opts := infer.KeyOptions(item.Term, item.Context); len(opts) > 0 {
			key = opts[0]
		}
	}

	layer := item.Result.Layer
	if !layer.Valid() {
		layer = infer.Layer(item.Term, item.Context)
	}

	term := model.RegistryTerm{
		Key:         key,
		Layer:       layer,
		Description: item.Term,
	}
	if item.Resolution.Notes != "" {
		term.Description = item.Term + ": " + item.Resolution.Notes
	}
	term.Scopes = scopesFor(layer, item.Context)
	return term
}

func scopesFor(layer model.Layer, tctx model.TenantContext) *model.Scopes {
	var s model.Scopes
	switch layer {
	case model.LayerConcept:
		if tctx.Vertical != "" {
			s.Vertical = []string{tctx.Vertical}
		}
		if tctx.Subvertical != "" {
			s.Subvertical = []string{tctx.Subvertical}
		}
	case model.LayerWorkspace:
		if m, ok := tctx.FirstModule(); ok {
			s.Module = []string{m}
		}
	default:
		return nil
	}
	if len(s.Vertical) == 0 && len(s.Subvertical) == 0 && len(s.Module) == 0 {
		return nil
	}
	return &s
}
