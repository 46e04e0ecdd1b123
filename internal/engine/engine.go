// Package engine defines the capability contract real steganography
// implementations must satisfy, and ships the mock implementations used
// until those exist.
package engine

import (
	"context"

	"github.com/stegosight/stegosight/internal/domain"
	"github.com/stegosight/stegosight/internal/task"
)

// EmbedRequest carries the inputs of an embed operation.
type EmbedRequest struct {
	Carrier string
	Params  domain.EmbedParams
}

// ExtractRequest carries the inputs of an extract operation.
type ExtractRequest struct {
	StegoFile string
	Params    domain.ExtractParams
}

// AnalyzeRequest carries the inputs of an analyze operation.
type AnalyzeRequest struct {
	Target string
	Params domain.AnalyzeParams
}

// NeutralizeRequest carries the inputs of a neutralize operation.
type NeutralizeRequest struct {
	Target string
	Params domain.NeutralizeParams
}

// Engine is the pluggable contract for the four steganography
// capabilities. Implementations must be re-entrant: many instances of
// any operation may run concurrently on different inputs. Each call
// must poll the token at bounded intervals (before and after each
// logically atomic sub-step, at least every few hundred milliseconds
// for long work) and return task.ErrCancelled promptly once it observes
// the token set.
//
// The core provides no per-file mutual exclusion: two concurrent
// operations on the same input path are admitted and their combined
// outcome is engine-defined. Implementations needing exclusion must
// provide it themselves.
type Engine interface {
	// Embed hides a payload in a carrier and returns the stego file.
	Embed(ctx context.Context, req EmbedRequest, token *task.Token, progress task.ProgressFunc) (*domain.EmbedResult, error)

	// Extract recovers a payload from a stego file.
	Extract(ctx context.Context, req ExtractRequest, token *task.Token, progress task.ProgressFunc) (*domain.ExtractResult, error)

	// Analyze scans a file for steganographic content and scores the risk.
	Analyze(ctx context.Context, req AnalyzeRequest, token *task.Token, progress task.ProgressFunc) (*domain.AnalysisReport, error)

	// Neutralize sanitizes a file, degrading any hidden payload.
	Neutralize(ctx context.Context, req NeutralizeRequest, token *task.Token, progress task.ProgressFunc) (*domain.NeutralizeResult, error)
}
