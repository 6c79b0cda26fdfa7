package model

// Snapshot is one delivery of in-progress assistant text. Each snapshot
// carries the full accumulated text so far, not a delta; the final snapshot
// of a turn is marked Done. Consumers must not assume delta-only delivery.
type Snapshot struct {
	Text string `json:"text"`
	Done bool   `json:"done"`
}
