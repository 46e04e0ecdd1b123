package engine

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/stegosight/stegosight/internal/domain"
	"github.com/stegosight/stegosight/internal/task"
)

// MockConfig tunes the simulated behavior of the mock engine.
type MockConfig struct {
	// Steps is the number of polling points per operation.
	Steps int

	// StepDelay is the simulated work per step.
	StepDelay time.Duration

	// Fail forces the given operations to end with the configured error
	// after the first step. Used by tests and demos.
	Fail map[domain.Operation]error
}

// DefaultMockConfig returns the mock timing used by the application.
func DefaultMockConfig() MockConfig {
	return MockConfig{
		Steps:     10,
		StepDelay: 50 * time.Millisecond,
	}
}

// MockEngine implements Engine with canned results: it sleeps in short
// token-polled steps and produces deterministic dummy output. No real
// steganography, cryptography or codec work happens here.
type MockEngine struct {
	cfg MockConfig
}

// NewMockEngine creates a mock engine, applying defaults for zero values.
func NewMockEngine(cfg MockConfig) *MockEngine {
	if cfg.Steps <= 0 {
		cfg.Steps = DefaultMockConfig().Steps
	}
	if cfg.StepDelay <= 0 {
		cfg.StepDelay = DefaultMockConfig().StepDelay
	}
	return &MockEngine{cfg: cfg}
}

// simulate runs the step loop shared by all four operations: sleep,
// poll the token, report progress, honour forced failures.
func (e *MockEngine) simulate(ctx context.Context, op domain.Operation, token *task.Token, progress task.ProgressFunc, message string) error {
	for i := 1; i <= e.cfg.Steps; i++ {
		if token.Cancelled() {
			return task.ErrCancelled
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		select {
		case <-time.After(e.cfg.StepDelay):
		case <-ctx.Done():
			return ctx.Err()
		}

		if token.Cancelled() {
			return task.ErrCancelled
		}
		if err, ok := e.cfg.Fail[op]; ok && err != nil {
			return err
		}

		progress(i*100/e.cfg.Steps, message)
	}
	return nil
}

// Embed writes the payload bytes to the output path as a stand-in stego file.
func (e *MockEngine) Embed(ctx context.Context, req EmbedRequest, token *task.Token, progress task.ProgressFunc) (*domain.EmbedResult, error) {
	if err := e.simulate(ctx, domain.OperationEmbed, token, progress, "embedding payload"); err != nil {
		return nil, err
	}

	payload, err := os.ReadFile(req.Params.PayloadPath)
	if err != nil {
		payload = []byte("mock")
	}

	output := req.Params.OutputPath
	if output == "" {
		output = siblingPath(req.Carrier, "_stego", filepath.Ext(req.Carrier))
	}
	if dir := filepath.Dir(output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(output, payload, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write stego file: %w", err)
	}

	return &domain.EmbedResult{StegoPath: output, PayloadBytes: len(payload)}, nil
}

// Extract returns the stego file's bytes as the recovered payload.
func (e *MockEngine) Extract(ctx context.Context, req ExtractRequest, token *task.Token, progress task.ProgressFunc) (*domain.ExtractResult, error) {
	if err := e.simulate(ctx, domain.OperationExtract, token, progress, "extracting payload"); err != nil {
		return nil, err
	}

	payload, err := os.ReadFile(req.StegoFile)
	if err != nil {
		payload = []byte("mock-payload")
	}

	output := req.Params.OutputPath
	if output == "" {
		output = siblingPath(req.StegoFile, "_extracted", ".bin")
	}
	if err := os.WriteFile(output, payload, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write extracted payload: %w", err)
	}

	return &domain.ExtractResult{OutputPath: output, PayloadBytes: len(payload)}, nil
}

// Analyze produces a deterministic pseudo-random report seeded by the
// target's file name, so repeated scans of a file agree.
func (e *MockEngine) Analyze(ctx context.Context, req AnalyzeRequest, token *task.Token, progress task.ProgressFunc) (*domain.AnalysisReport, error) {
	if err := e.simulate(ctx, domain.OperationAnalyze, token, progress, "running detectors"); err != nil {
		return nil, err
	}

	seed := fnv.New64a()
	_, _ = seed.Write([]byte(filepath.Base(req.Target)))
	rng := rand.New(rand.NewSource(int64(seed.Sum64())))

	techniques := req.Params.Techniques
	if len(techniques) == 0 {
		techniques = []string{"chi_square", "histogram", "ela"}
	}

	risk := 5 + rng.Intn(91)
	flags := make(map[string]float64, len(techniques))
	for _, technique := range techniques {
		flags[technique] = rng.Float64()
	}

	var size int64
	if info, err := os.Stat(req.Target); err == nil {
		size = info.Size()
	}

	level := domain.RiskLevelFor(risk)
	return &domain.AnalysisReport{
		RiskScore:      risk,
		Level:          level,
		Flags:          flags,
		Recommendation: recommendationFor(level),
		FileSize:       size,
	}, nil
}

// Neutralize copies the file to a tier-suffixed sibling.
func (e *MockEngine) Neutralize(ctx context.Context, req NeutralizeRequest, token *task.Token, progress task.ProgressFunc) (*domain.NeutralizeResult, error) {
	if err := e.simulate(ctx, domain.OperationNeutralize, token, progress, "sanitizing file"); err != nil {
		return nil, err
	}

	output := req.Params.OutputPath
	if output == "" {
		output = siblingPath(req.Target, ".neutralized."+req.Params.Tier, filepath.Ext(req.Target))
	}

	data, err := os.ReadFile(req.Target)
	if err != nil {
		data = []byte("neutralized")
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write neutralized file: %w", err)
	}

	applied := req.Params.Methods
	if len(applied) == 0 {
		applied = domain.DefaultNeutralizeMethods()
	}

	return &domain.NeutralizeResult{CleanPath: output, Applied: applied}, nil
}

// siblingPath builds "<dir>/<stem><suffix><ext>" next to path.
func siblingPath(path, suffix, ext string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return filepath.Join(filepath.Dir(path), stem+suffix+ext)
}

func recommendationFor(level domain.RiskLevel) string {
	switch level {
	case domain.RiskLevelLow:
		return "No action needed."
	case domain.RiskLevelMedium:
		return "Consider a closer manual inspection."
	default:
		return "High risk detected. Neutralization is recommended."
	}
}

var _ Engine = (*MockEngine)(nil)
