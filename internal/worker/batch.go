package worker

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/vibethink-edu/vibethink-orchestrator-main-sub004/internal/classify"
	"github.com/vibethink-edu/vibethink-orchestrator-main-sub004/internal/model"
)

// ClassifyJob classifies one term against a shared request template
type ClassifyJob struct {
	Term       string
	Template   classify.Request
	Classifier classify.TermClassifier
}

// Execute executes the classification job
func (j *ClassifyJob) Execute(ctx context.Context) Result {
	req := j.Template
	req.Term = j.Term
	out, err := j.Classifier.Classify(ctx, req)
	if err != nil {
		return &ClassifyResult{Term: j.Term, Error: err}
	}
	return &ClassifyResult{Term: j.Term, Output: &out}
}

// ClassifyResult represents the result of a classification job
type ClassifyResult struct {
	Term   string
	Output *model.ClassifierOutput
	Error  error
}

// GetError returns the error from the classification
func (r *ClassifyResult) GetError() error {
	return r.Error
}

// BatchClassifier classifies many terms concurrently under one context
type BatchClassifier struct {
	classifier classify.TermClassifier
	pool       *Pool
	logger     *slog.Logger
}

// NewBatchClassifier creates a new batch classifier
func NewBatchClassifier(classifier classify.TermClassifier, concurrency int, logger *slog.Logger) *BatchClassifier {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &BatchClassifier{
		classifier: classifier,
		pool:       NewPool(concurrency),
		logger:     logger,
	}
}

// ClassifyTerms classifies terms concurrently; results follow input order
func (b *BatchClassifier) ClassifyTerms(ctx context.Context, terms []string, template classify.Request) []*ClassifyResult {
	jobs := make([]Job, len(terms))
	for i, term := range terms {
		jobs[i] = &ClassifyJob{Term: term, Template: template, Classifier: b.classifier}
	}

	b.logger.Debug("batch classification started", "terms", len(terms), "workers", b.pool.Workers())
	results := b.pool.Run(ctx, jobs)

	out := make([]*ClassifyResult, len(results))
	for i, r := range results {
		if r == nil {
			out[i] = &ClassifyResult{Term: terms[i], Error: ctx.Err()}
			continue
		}
		out[i] = r.(*ClassifyResult)
	}
	b.logger.Debug("batch classification finished", "terms", len(terms), "errors", len(Errors(results)))
	return out
}

// ClassifyFile reads terms from a file and classifies them concurrently
func (b *BatchClassifier) ClassifyFile(ctx context.Context, filePath string, template classify.Request) ([]*ClassifyResult, error) {
	terms, err := ReadTermsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read terms: %w", err)
	}
	return b.ClassifyTerms(ctx, terms, template), nil
}

// ReadTermsFromFile reads terms from a file (one per line)
func ReadTermsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var terms []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			terms = append(terms, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return terms, nil
}
