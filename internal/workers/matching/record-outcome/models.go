// internal/workers/matching/record-outcome/models.go
package recordoutcome

// Event values accepted by the worker. "applied" moves the lifecycle
// forward; the three outcome values close it.
const (
	EventApplied   = "applied"
	EventRejected  = "rejected"
	EventInterview = "interview"
	EventOffer     = "offer"
)

type Input struct {
	MatchResultID string `json:"matchResultId"`
	Event         string `json:"event"`
}

type Output struct {
	MatchResultID   string  `json:"matchResultId"`
	OutcomeRecordID string  `json:"outcomeRecordId,omitempty"`
	Event           string  `json:"event"`
	Label           float64 `json:"label,omitempty"`
	RecordedAt      string  `json:"recordedAt"` // ISO 8601
}
