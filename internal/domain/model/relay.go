package model

// RelayResult is the outcome of forwarding one message to the external workflow.
// When OK is false, Text carries a user-facing description of the failure.
// When OK is true, Text is non-empty and Data holds the decoded response body.
type RelayResult struct {
	OK   bool   `json:"ok"`
	Text string `json:"text"`
	Data any    `json:"data,omitempty"`
}
