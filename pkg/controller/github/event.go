// Package github maps GitHub webhook payloads onto domain trigger events.
package github

import (
	"time"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/loom/pkg/domain/model"
)

// BuildTriggerEvent converts a parsed webhook payload into a TriggerEvent.
// Event types other than push and pull_request map to EventTypeUnknown and
// are filtered downstream, not rejected here.
func BuildTriggerEvent(deliveryID, eventType string, payload any) (*model.TriggerEvent, error) {
	event := &model.TriggerEvent{
		ID:         deliveryID,
		Type:       model.EventType(eventType),
		ReceivedAt: time.Now().UTC(),
	}

	switch e := payload.(type) {
	case *github.PushEvent:
		repo := e.GetRepo()
		if repo == nil {
			return nil, goerr.New("push event has no repository")
		}
		event.Repository = repo.GetFullName()
		event.Owner = repo.GetOwner().GetLogin()
		event.Repo = repo.GetName()
		event.CommitSHA = e.GetAfter()
		event.Ref = e.GetRef()
		event.Sender = e.GetSender().GetLogin()

	case *github.PullRequestEvent:
		repo := e.GetRepo()
		pr := e.GetPullRequest()
		if repo == nil || pr == nil {
			return nil, goerr.New("pull request event is missing repository or pull request")
		}
		event.Action = e.GetAction()
		event.Repository = repo.GetFullName()
		event.Owner = repo.GetOwner().GetLogin()
		event.Repo = repo.GetName()
		event.CommitSHA = pr.GetHead().GetSHA()
		event.Ref = pr.GetHead().GetRef()
		event.Sender = e.GetSender().GetLogin()

	default:
		event.Type = model.EventTypeUnknown
	}

	if event.Type != model.EventTypeUnknown && event.CommitSHA == "" {
		return nil, goerr.New("event has no commit SHA",
			goerr.V("type", eventType), goerr.V("repository", event.Repository))
	}

	return event, nil
}
