// Package fallback builds the specificity-ordered namespace chain for a tenant
// context and resolves translation keys along it.
package fallback

import (
	"sort"

	"github.com/vibethink-edu/vibethink-orchestrator-main-sub004/internal/model"
)

// UniversalNamespaces close every chain, in this order
var UniversalNamespaces = []string{
	"transversal/tasks",
	"transversal/calendar",
	"transversal/common",
}

// BuildChain returns namespace ids, most specific first:
//  1. workspace/{m} for every module in declared order (not deduplicated)
//  2. concept/{vertical}/{subvertical} when both are set
//  3. concept/{vertical} when vertical is set
//  4. the universal namespaces
func BuildChain(tctx model.TenantContext) []string {
	chain := make([]string, 0, len(tctx.Modules)+2+len(UniversalNamespaces))
	for _, m := range tctx.Modules {
		chain = append(chain, "workspace/"+m)
	}
	if tctx.Vertical != "" && tctx.Subvertical != "" {
		chain = append(chain, "concept/"+tctx.Vertical+"/"+tctx.Subvertical)
	}
	if tctx.Vertical != "" {
		chain = append(chain, "concept/"+tctx.Vertical)
	}
	return append(chain, UniversalNamespaces...)
}

// Lookup walks the chain and returns the first string leaf found at key,
// with the namespace it came from. No merging across namespaces.
func Lookup(key string, chain []string, translations model.Translations) (value string, namespace string, ok bool) {
	for _, ns := range chain {
		tree, loaded := translations[ns]
		if !loaded {
			continue
		}
		if v, found := tree.Lookup(key); found {
			return v, ns, true
		}
	}
	return "", "", false
}

// Resolve returns the display string for key, or key itself when no namespace has it
func Resolve(key string, tctx model.TenantContext, translations model.Translations) string {
	if v, _, ok := Lookup(key, BuildChain(tctx), translations); ok {
		return v
	}
	return key
}

// AllKeys collects every reachable leaf key along the chain, deduplicated and sorted
func AllKeys(tctx model.TenantContext, translations model.Translations) []string {
	seen := make(map[string]struct{})
	for _, ns := range BuildChain(tctx) {
		tree, ok := translations[ns]
		if !ok {
			continue
		}
		for k := range tree.Flatten() {
			seen[k] = struct{}{}
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ChainReport is the startup check result for one context
type ChainReport struct {
	Chain   []string `json:"chain"`
	Missing []string `json:"missing"`
}

// Valid reports whether every namespace in the chain is loaded
func (r ChainReport) Valid() bool {
	return len(r.Missing) == 0
}

// ValidateChain reports which chain namespaces have no loaded tree. Live
// resolution never consults this; it degrades to returning the key.
func ValidateChain(tctx model.TenantContext, translations model.Translations) ChainReport {
	chain := BuildChain(tctx)
	report := ChainReport{Chain: chain, Missing: []string{}}
	for _, ns := range chain {
		if !translations.Has(ns) {
			report.Missing = append(report.Missing, ns)
		}
	}
	return report
}
