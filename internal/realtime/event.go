// Package realtime keeps one room per project and fans task events out to
// every connection in the room except the one that caused them. Delivery
// is best effort: a slow or absent connection misses events.
package realtime

type EventType string

const (
	TaskCreated           EventType = "task-created"
	TaskDeleted           EventType = "task-deleted"
	TaskUpdated           EventType = "task-updated"
	TaskCompletionChanged EventType = "task-completion-changed"
)

// Event is a server-to-room frame.
type Event struct {
	Type    EventType `json:"type"`
	Project string    `json:"project"`
	Task    any       `json:"task"`
}

// frame is a control message exchanged with a single connection.
type frame struct {
	Type         string `json:"type"`
	Project      string `json:"project,omitempty"`
	ConnectionID string `json:"connection_id,omitempty"`
	Error        string `json:"error,omitempty"`
}
