package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleTree() Tree {
	return Tree{
		"_metadata": map[string]any{"version": "1", "owner": "pos-team"},
		"order": map[string]any{
			"fire":   "Fire order",
			"cancel": "Void order",
			"_metadata": map[string]any{
				"hidden": "never flattened",
			},
		},
		"title": "Point of sale",
		"count": 3,
	}
}

func TestTree_Lookup(t *testing.T) {
	tree := sampleTree()

	v, ok := tree.Lookup("order.fire")
	assert.True(t, ok)
	assert.Equal(t, "Fire order", v)

	v, ok = tree.Lookup("title")
	assert.True(t, ok)
	assert.Equal(t, "Point of sale", v)

	_, ok = tree.Lookup("order")
	assert.False(t, ok, "subtree is not a string leaf")

	_, ok = tree.Lookup("_metadata.version")
	assert.False(t, ok, "_metadata is never traversed")

	_, ok = tree.Lookup("count")
	assert.False(t, ok, "non-string leaves are ignored")

	_, ok = tree.Lookup("order.fire.extra")
	assert.False(t, ok)

	_, ok = tree.Lookup("")
	assert.False(t, ok)
}

func TestTree_FlattenSkipsMetadata(t *testing.T) {
	flat := sampleTree().Flatten()

	assert.Equal(t, map[string]string{
		"order.fire":   "Fire order",
		"order.cancel": "Void order",
		"title":        "Point of sale",
	}, flat)
}

func TestTree_KeysSorted(t *testing.T) {
	assert.Equal(t, []string{"order.cancel", "order.fire", "title"}, sampleTree().Keys())
}

func TestTranslations_Namespaces(t *testing.T) {
	tr := Translations{
		"workspace/pos":       Tree{},
		"concept/hospitality": Tree{},
		"transversal/common":  Tree{},
	}
	assert.Equal(t, []string{"concept/hospitality", "transversal/common", "workspace/pos"}, tr.Namespaces())
	assert.True(t, tr.Has("workspace/pos"))
	assert.False(t, tr.Has("workspace/crm"))
}
