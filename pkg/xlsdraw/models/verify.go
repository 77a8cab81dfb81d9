package models

// VerifyResult is the outcome of re-serializing a drawing.
type VerifyResult struct {
	// Placement is the descriptor placement used for the check.
	Placement string `json:"placement"`
	// Records is the number of host records produced.
	Records int `json:"records"`
	// PayloadSize is the size of the re-encoded Escher payload.
	PayloadSize int `json:"payload_size"`
	// Stable reports whether re-encoding reproduced the original payload bytes.
	Stable bool `json:"stable"`
}
