package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vibethink-edu/vibethink-orchestrator-main-sub004/internal/classify"
	"github.com/vibethink-edu/vibethink-orchestrator-main-sub004/internal/model"
)

// mockClassifier implements classify.TermClassifier
type mockClassifier struct {
	failOn string
}

func (m *mockClassifier) Name() string { return "mock" }

func (m *mockClassifier) Classify(ctx context.Context, req classify.Request) (model.ClassifierOutput, error) {
	time.Sleep(time.Millisecond) // Simulate work
	if req.Term == m.failOn {
		return model.ClassifierOutput{}, errors.New("classify error")
	}
	return model.ClassifierOutput{
		Action:     model.ActionUseExisting,
		Confidence: 1,
		Reason:     "exact match",
		Key:        strings.ToLower(req.Term) + "@" + req.Context.Locale,
	}, nil
}

var batchTemplate = classify.Request{Context: model.TenantContext{Locale: "es"}}

func TestBatchClassifier_ClassifyTerms(t *testing.T) {
	b := NewBatchClassifier(&mockClassifier{}, 3, nil)
	terms := []string{"Save", "Cancel", "Fire order", "Table", "Cover"}

	results := b.ClassifyTerms(context.Background(), terms, batchTemplate)
	if len(results) != len(terms) {
		t.Fatalf("expected %d results, got %d", len(terms), len(results))
	}

	for i, res := range results {
		if res.Term != terms[i] {
			t.Errorf("expected term %q at index %d, got %q", terms[i], i, res.Term)
		}
		if res.Error != nil {
			t.Errorf("unexpected error for %s: %v", res.Term, res.Error)
			continue
		}
		want := strings.ToLower(terms[i]) + "@es"
		if res.Output == nil || res.Output.Key != want {
			t.Errorf("expected key %s, got %+v", want, res.Output)
		}
	}
}

func TestBatchClassifier_Error(t *testing.T) {
	b := NewBatchClassifier(&mockClassifier{failOn: "Cancel"}, 2, nil)

	results := b.ClassifyTerms(context.Background(), []string{"Save", "Cancel"}, batchTemplate)
	if results[0].Error != nil {
		t.Errorf("unexpected error: %v", results[0].Error)
	}
	if results[1].Error == nil {
		t.Error("expected error, got nil")
	}
	if results[1].Output != nil {
		t.Error("expected nil output on error")
	}
}

func TestBatchClassifier_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := NewBatchClassifier(&mockClassifier{}, 2, nil)
	results := b.ClassifyTerms(ctx, []string{"Save", "Cancel", "Edit"}, batchTemplate)
	for _, res := range results {
		if !errors.Is(res.Error, context.Canceled) {
			t.Errorf("expected context.Canceled for %s, got %v", res.Term, res.Error)
		}
	}
}

func TestBatchClassifier_Empty(t *testing.T) {
	b := NewBatchClassifier(&mockClassifier{}, 2, nil)
	results := b.ClassifyTerms(context.Background(), []string{}, batchTemplate)
	if len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
}

func TestBatchClassifier_RuleBackend(t *testing.T) {
	rule, err := classify.NewClassifier(model.DefaultClassifierConfig())
	if err != nil {
		t.Fatal(err)
	}
	template := classify.Request{
		Context:  model.TenantContext{Locale: "en"},
		Registry: []model.RegistryTerm{{Key: "common.save", Layer: model.LayerTransversal}},
	}

	results := NewBatchClassifier(rule, 2, nil).ClassifyTerms(context.Background(), []string{"common.save"}, template)
	if results[0].Error != nil {
		t.Fatalf("unexpected error: %v", results[0].Error)
	}
	if results[0].Output.Action != model.ActionUseExisting {
		t.Errorf("expected use_existing, got %s", results[0].Output.Action)
	}
}

func TestReadTermsFromFile(t *testing.T) {
	content := `Save
# comment
Fire order
   
Save
  Cover   `

	path := filepath.Join(t.TempDir(), "terms.txt")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	terms, err := ReadTermsFromFile(path)
	if err != nil {
		t.Fatalf("ReadTermsFromFile failed: %v", err)
	}

	expected := []string{"Save", "Fire order", "Cover"}
	if len(terms) != len(expected) {
		t.Fatalf("expected %d terms, got %d", len(expected), len(terms))
	}
	for i, term := range terms {
		if term != expected[i] {
			t.Errorf("expected term %s at index %d, got %s", expected[i], i, term)
		}
	}
}

func TestReadTermsFromFile_NonExistent(t *testing.T) {
	_, err := ReadTermsFromFile("non_existent_file.txt")
	if err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
}

func TestClassifyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "terms.txt")
	if err := os.WriteFile(path, []byte("Save\nEdit\n"), 0644); err != nil {
		t.Fatal(err)
	}

	results, err := NewBatchClassifier(&mockClassifier{}, 2, nil).ClassifyFile(context.Background(), path, batchTemplate)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Errorf("expected 2 results, got %d", len(results))
	}
}
