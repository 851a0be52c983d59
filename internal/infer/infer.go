// Package infer maps a raw term and tenant context to a suggested layer,
// namespace and candidate keys for a new vocabulary entry.
package infer

import (
	"regexp"
	"slices"
	"strings"

	"github.com/vibethink-edu/vibethink-orchestrator-main-sub004/internal/model"
	"github.com/vibethink-edu/vibethink-orchestrator-main-sub004/internal/score"
)

// DefaultNamespace is used whenever no more specific namespace applies
const DefaultNamespace = "transversal/common"

// universalWords are actions every product surface shares
var universalWords = []string{"save", "cancel", "delete", "edit", "add", "remove", "close", "open"}

var (
	nonKeyChars = regexp.MustCompile(`[^a-z0-9 ]`)
	spaceRuns   = regexp.MustCompile(`\s+`)
)

// Layer picks the layer for a new term. Universal action words win even inside
// a module context.
func Layer(term string, tctx model.TenantContext) model.Layer {
	for _, tok := range score.Tokenize(strings.ToLower(term)) {
		if slices.Contains(universalWords, tok) {
			return model.LayerTransversal
		}
	}
	if tctx.HasModules() {
		return model.LayerWorkspace
	}
	return model.LayerConcept
}

// Namespace picks the namespace for a layer. Only the first declared module is used.
func Namespace(layer model.Layer, tctx model.TenantContext) string {
	switch layer {
	case model.LayerTransversal:
		return DefaultNamespace
	case model.LayerWorkspace:
		if m, ok := tctx.FirstModule(); ok {
			return "workspace/" + m
		}
	case model.LayerConcept:
		if tctx.Vertical != "" {
			return "concept/" + tctx.Vertical
		}
	}
	return DefaultNamespace
}

// KeyOptions suggests up to three keys, most specific first
func KeyOptions(term string, tctx model.TenantContext) []string {
	base := SnakeCase(term)
	if base == "" {
		return nil
	}
	keys := make([]string, 0, 3)
	if m, ok := tctx.FirstModule(); ok {
		keys = append(keys, m+"."+base)
	}
	if tctx.Vertical != "" {
		keys = append(keys, tctx.Vertical+"."+base)
	}
	return append(keys, base)
}

// SnakeCase lowercases, drops anything outside [a-z0-9 ], trims, and joins
// whitespace runs with '_'
func SnakeCase(term string) string {
	s := nonKeyChars.ReplaceAllString(strings.ToLower(term), "")
	s = strings.TrimSpace(s)
	return spaceRuns.ReplaceAllString(s, "_")
}
