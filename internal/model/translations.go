package model

import (
	"sort"
	"strings"
)

// MetadataKey is reserved in every translation tree and never treated as content
const MetadataKey = "_metadata"

// Tree is a translation namespace document: segment name -> string leaf or nested tree.
// Nested values decoded from JSON/YAML arrive as map[string]any and are accepted as well.
type Tree map[string]any

// Translations maps namespace id (e.g. "workspace/pos") to its tree for one locale
type Translations map[string]Tree

// Catalog maps locale -> loaded translations
type Catalog map[string]Translations

// Namespaces returns the loaded namespace ids in sorted order
func (t Translations) Namespaces() []string {
	ids := make([]string, 0, len(t))
	for id := range t {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Has reports whether a namespace tree is loaded
func (t Translations) Has(namespace string) bool {
	_, ok := t[namespace]
	return ok
}

// Lookup returns the string leaf at the dotted path key
func (t Tree) Lookup(key string) (string, bool) {
	if key == "" {
		return "", false
	}
	var node map[string]any = t
	segments := strings.Split(key, ".")
	for i, seg := range segments {
		if seg == MetadataKey {
			return "", false
		}
		v, ok := node[seg]
		if !ok {
			return "", false
		}
		if i == len(segments)-1 {
			s, isString := v.(string)
			return s, isString
		}
		child, isTree := asTree(v)
		if !isTree {
			return "", false
		}
		node = child
	}
	return "", false
}

// Flatten returns dotted-key -> string pairs for every leaf, skipping _metadata at any depth
func (t Tree) Flatten() map[string]string {
	out := make(map[string]string)
	flatten(t, "", out)
	return out
}

// Keys returns every leaf key in sorted order
func (t Tree) Keys() []string {
	flat := t.Flatten()
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func flatten(node map[string]any, prefix string, out map[string]string) {
	for seg, v := range node {
		if seg == MetadataKey {
			continue
		}
		full := seg
		if prefix != "" {
			full = prefix + "." + seg
		}
		switch val := v.(type) {
		case string:
			out[full] = val
		default:
			if child, ok := asTree(val); ok {
				flatten(child, full, out)
			}
		}
	}
}

func asTree(v any) (map[string]any, bool) {
	switch val := v.(type) {
	case Tree:
		return val, true
	case map[string]any:
		return val, true
	default:
		return nil, false
	}
}
