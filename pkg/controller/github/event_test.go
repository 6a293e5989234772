package github_test

import (
	"testing"

	gh "github.com/google/go-github/v75/github"
	"github.com/m-mizutani/gt"
	controller "github.com/m-mizutani/loom/pkg/controller/github"
	"github.com/m-mizutani/loom/pkg/domain/model"
)

func TestBuildTriggerEvent_Push(t *testing.T) {
	payload := &gh.PushEvent{
		Ref:   gh.Ptr("refs/heads/main"),
		After: gh.Ptr("abc123"),
		Repo: &gh.PushEventRepository{
			FullName: gh.Ptr("octocat/hello"),
			Name:     gh.Ptr("hello"),
			Owner:    &gh.User{Login: gh.Ptr("octocat")},
		},
		Sender: &gh.User{Login: gh.Ptr("octocat")},
	}

	event, err := controller.BuildTriggerEvent("delivery-1", "push", payload)
	gt.NoError(t, err)
	gt.Value(t, event.Type).Equal(model.EventTypePush)
	gt.Value(t, event.Repository).Equal("octocat/hello")
	gt.Value(t, event.Owner).Equal("octocat")
	gt.Value(t, event.Repo).Equal("hello")
	gt.Value(t, event.CommitSHA).Equal("abc123")
	gt.Value(t, event.Ref).Equal("refs/heads/main")
	gt.Value(t, event.Sender).Equal("octocat")
	gt.True(t, event.IsSupportedEvent())
}

func TestBuildTriggerEvent_PullRequest(t *testing.T) {
	payload := &gh.PullRequestEvent{
		Action: gh.Ptr("opened"),
		Repo: &gh.Repository{
			FullName: gh.Ptr("octocat/hello"),
			Name:     gh.Ptr("hello"),
			Owner:    &gh.User{Login: gh.Ptr("octocat")},
		},
		PullRequest: &gh.PullRequest{
			Head: &gh.PullRequestBranch{
				SHA: gh.Ptr("def456"),
				Ref: gh.Ptr("feature-branch"),
			},
		},
		Sender: &gh.User{Login: gh.Ptr("contributor")},
	}

	event, err := controller.BuildTriggerEvent("delivery-2", "pull_request", payload)
	gt.NoError(t, err)
	gt.Value(t, event.Type).Equal(model.EventTypePullRequest)
	gt.Value(t, event.Action).Equal("opened")
	gt.Value(t, event.CommitSHA).Equal("def456")
	gt.Value(t, event.Ref).Equal("feature-branch")
	gt.Value(t, event.Sender).Equal("contributor")
	gt.True(t, event.IsSupportedEvent())
}

func TestBuildTriggerEvent_UnknownType(t *testing.T) {
	event, err := controller.BuildTriggerEvent("delivery-3", "issues", &gh.IssuesEvent{})
	gt.NoError(t, err)
	gt.Value(t, event.Type).Equal(model.EventTypeUnknown)
	gt.Value(t, event.IsSupportedEvent()).Equal(false)
}

func TestBuildTriggerEvent_Invalid(t *testing.T) {
	t.Run("push without repository", func(t *testing.T) {
		_, err := controller.BuildTriggerEvent("d", "push", &gh.PushEvent{})
		gt.Error(t, err)
	})

	t.Run("pull request without head SHA", func(t *testing.T) {
		payload := &gh.PullRequestEvent{
			Action:      gh.Ptr("opened"),
			Repo:        &gh.Repository{FullName: gh.Ptr("octocat/hello")},
			PullRequest: &gh.PullRequest{},
		}
		_, err := controller.BuildTriggerEvent("d", "pull_request", payload)
		gt.Error(t, err)
	})
}
