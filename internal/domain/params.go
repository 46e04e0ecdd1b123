package domain

import (
	"github.com/go-playground/validator/v10"
)

// validate is the shared validator instance for parameter bundles.
var validate = validator.New()

// EmbedParams configures an embed operation: how the payload is hidden
// in the carrier and where the stego file is written.
type EmbedParams struct {
	// Method selects the embedding technique.
	Method string `json:"method" validate:"required,oneof=adaptive lsb pvd dct png_chunk append"`

	// PayloadPath is the file whose bytes are hidden in the carrier.
	PayloadPath string `json:"payload_path" validate:"required"`

	// OutputPath is the destination stego file. Empty means a sibling
	// of the carrier with a _stego suffix.
	OutputPath string `json:"output_path,omitempty"`

	// Encrypt requests payload encryption before embedding. The core
	// only records the flag; encryption itself is an engine concern.
	Encrypt bool `json:"encrypt,omitempty"`
}

// ExtractParams configures an extract operation.
type ExtractParams struct {
	Method string `json:"method" validate:"required,oneof=adaptive lsb pvd dct png_chunk append"`

	// Password decrypts the payload when it was embedded encrypted.
	Password string `json:"password,omitempty"`

	// OutputPath is where the extracted payload is written. Empty means
	// a sibling of the stego file with an _extracted.bin suffix.
	OutputPath string `json:"output_path,omitempty"`
}

// AnalyzeParams configures a steganalysis scan.
type AnalyzeParams struct {
	// Techniques limits the scan to specific detectors. Empty means all.
	Techniques []string `json:"techniques,omitempty" validate:"omitempty,dive,oneof=chi_square histogram ela"`
}

// NeutralizeParams configures a neutralization pipeline.
type NeutralizeParams struct {
	// Tier selects how aggressively the file is sanitized.
	Tier string `json:"tier" validate:"required,oneof=light standard aggressive"`

	// Methods selects pipeline steps. Empty means all, in order:
	// metadata, recompress, transform.
	Methods []string `json:"methods,omitempty" validate:"omitempty,dive,oneof=metadata recompress transform"`

	OutputPath string `json:"output_path,omitempty"`
}

// Validate checks the embed parameter bundle.
func (p EmbedParams) Validate() error {
	return validate.Struct(p)
}

// Validate checks the extract parameter bundle.
func (p ExtractParams) Validate() error {
	return validate.Struct(p)
}

// Validate checks the analyze parameter bundle.
func (p AnalyzeParams) Validate() error {
	return validate.Struct(p)
}

// Validate checks the neutralize parameter bundle.
func (p NeutralizeParams) Validate() error {
	return validate.Struct(p)
}

// DefaultNeutralizeMethods is the full pipeline order used when no
// explicit method selection is given.
func DefaultNeutralizeMethods() []string {
	return []string{"metadata", "recompress", "transform"}
}
