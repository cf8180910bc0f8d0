package extract

// Extraction acceptance thresholds. Results at the boundary are rejected.
const (
	MinAcceptLength     = 10
	MinAcceptConfidence = float32(0.3)
)

// AcceptExtraction reports whether a result is good enough to hand to
// structured extraction. Callers decide whether a rejection halts the job or
// is merely recorded as a warning.
func AcceptExtraction(res ExtractionResult) bool {
	return len(res.Text) > MinAcceptLength && res.Confidence > MinAcceptConfidence
}
