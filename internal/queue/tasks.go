package queue

const (
	TypeTranslateText = "translate:text"
)

// TranslatePayload is a queued translation. The job id doubles as the key of
// the pending history row.
type TranslatePayload struct {
	JobID    string         `json:"job_id"`
	Provider string         `json:"provider,omitempty"`
	Text     string         `json:"text"`
	From     string         `json:"from,omitempty"`
	To       string         `json:"to"`
	Config   map[string]any `json:"config,omitempty"`
}
