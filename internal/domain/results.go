package domain

// RiskLevel buckets an analysis risk score.
type RiskLevel string

// Risk levels, from the scoring thresholds of the analysis module.
const (
	RiskLevelLow      RiskLevel = "low"
	RiskLevelMedium   RiskLevel = "medium"
	RiskLevelHigh     RiskLevel = "high"
	RiskLevelCritical RiskLevel = "critical"
)

// Risk score thresholds (inclusive upper bounds per bucket).
const (
	riskThresholdLow    = 25
	riskThresholdMedium = 50
	riskThresholdHigh   = 75
)

// RiskLevelFor maps a 0-100 risk score onto a level.
func RiskLevelFor(score int) RiskLevel {
	switch {
	case score <= riskThresholdLow:
		return RiskLevelLow
	case score <= riskThresholdMedium:
		return RiskLevelMedium
	case score <= riskThresholdHigh:
		return RiskLevelHigh
	default:
		return RiskLevelCritical
	}
}

// EmbedResult is the payload of a successful embed operation.
type EmbedResult struct {
	// StegoPath is the written stego file.
	StegoPath string `json:"stego_path"`

	// PayloadBytes is the size of the embedded payload.
	PayloadBytes int `json:"payload_bytes"`
}

// ExtractResult is the payload of a successful extract operation.
type ExtractResult struct {
	// OutputPath is where the extracted payload was written.
	OutputPath string `json:"output_path"`

	// PayloadBytes is the size of the extracted payload.
	PayloadBytes int `json:"payload_bytes"`
}

// AnalysisReport is the payload of a successful analyze operation.
type AnalysisReport struct {
	// RiskScore is the combined detector score, 0-100.
	RiskScore int `json:"risk_score"`

	// Level buckets the score.
	Level RiskLevel `json:"level"`

	// Flags holds the per-detector raw scores.
	Flags map[string]float64 `json:"flags"`

	// Recommendation is a human-readable suggestion.
	Recommendation string `json:"recommendation,omitempty"`

	// FileSize is the analyzed file's size in bytes.
	FileSize int64 `json:"file_size"`
}

// NeutralizeResult is the payload of a successful neutralize operation.
type NeutralizeResult struct {
	// CleanPath is the sanitized output file.
	CleanPath string `json:"clean_path"`

	// Applied lists the pipeline steps that ran, in order.
	Applied []string `json:"applied"`
}
