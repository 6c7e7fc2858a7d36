package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"personagen/internal/model"
)

// Generator defines the interface for generating a persona from one input
type Generator interface {
	Generate(ctx context.Context, input string) (*model.Persona, error)
}

// GenerateJob produces a persona for a single profile URL or username
type GenerateJob struct {
	Input     string
	Generator Generator
}

// Execute executes the generation job
func (j *GenerateJob) Execute(ctx context.Context) Result {
	persona, err := j.Generator.Generate(ctx, j.Input)
	if err != nil {
		return &GenerateResult{Input: j.Input, Error: err}
	}
	return &GenerateResult{Input: j.Input, Persona: persona}
}

// GenerateResult represents the result of a generation job
type GenerateResult struct {
	Input   string
	Persona *model.Persona
	Error   error
}

// GetError returns the error from the generation result
func (r *GenerateResult) GetError() error {
	return r.Error
}

// BatchProcessor generates personas for multiple users concurrently.
// Each job is still the sequential parse/collect/synthesize pipeline.
type BatchProcessor struct {
	generator   Generator
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(generator Generator, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		generator:   generator,
		concurrency: concurrency,
	}
}

// ProcessInputs generates personas for the given inputs concurrently
func (b *BatchProcessor) ProcessInputs(ctx context.Context, inputs []string) []*GenerateResult {
	if len(inputs) == 0 {
		return []*GenerateResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	// Submit from a separate goroutine so Wait can drain results at the
	// same time. Submitting everything up front wedges once the input
	// list outgrows the channel buffers plus the in-flight workers.
	go func() {
		for _, input := range inputs {
			pool.Submit(&GenerateJob{Input: input, Generator: b.generator})
		}
		pool.Close()
	}()

	results := pool.Wait()

	genResults := make([]*GenerateResult, len(results))
	for i, result := range results {
		genResults[i] = result.(*GenerateResult)
	}

	return genResults
}

// ProcessFile reads profile URLs from a file and processes them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*GenerateResult, error) {
	inputs, err := ReadInputsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read inputs: %w", err)
	}

	return b.ProcessInputs(ctx, inputs), nil
}

// ReadInputsFromFile reads profile URLs or usernames from a file (one per line)
func ReadInputsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var inputs []string
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
			inputs = append(inputs, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return inputs, nil
}
