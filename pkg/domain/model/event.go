package model

import "time"

// EventType represents the type of trigger event received
type EventType string

const (
	EventTypePush        EventType = "push"
	EventTypePullRequest EventType = "pull_request"
	EventTypeUnknown     EventType = "unknown"
)

// TriggerEvent represents an event that may trigger a workflow run
type TriggerEvent struct {
	ID         string    // Retrieved from X-GitHub-Delivery header
	Type       EventType // Retrieved from X-GitHub-Event header
	Action     string    // Event action (e.g. opened, synchronize)
	Repository string    // Repository full name (owner/name)
	Owner      string    // Repository owner
	Repo       string    // Repository name
	CommitSHA  string    // Commit to check out and report status against
	Ref        string    // Git ref (branch/tag) that triggered the event
	Sender     string    // Sender username
	ReceivedAt time.Time // Time when the event was received
}

// IsSupportedEvent checks if the event can trigger a run
func (e *TriggerEvent) IsSupportedEvent() bool {
	switch e.Type {
	case EventTypePush:
		return true
	case EventTypePullRequest:
		return e.Action == "opened" || e.Action == "synchronize" || e.Action == "reopened"
	default:
		return false
	}
}
