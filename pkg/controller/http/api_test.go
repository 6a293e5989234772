package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/m-mizutani/gt"
	controller "github.com/m-mizutani/loom/pkg/controller/http"
	"github.com/m-mizutani/loom/pkg/domain/interfaces"
	"github.com/m-mizutani/loom/pkg/domain/model"
	"github.com/m-mizutani/loom/pkg/domain/types"
	"github.com/m-mizutani/loom/pkg/infra/repository"
)

func seedRun(t *testing.T, repo interfaces.Repository) *model.Run {
	t.Helper()

	run := &model.Run{
		ID:         types.RunID("run-1"),
		Workflow:   "CI",
		Event:      model.EventTypePush,
		Repository: "octocat/hello",
		CommitSHA:  "abc123",
		Ref:        "refs/heads/main",
		Status:     model.RunStatusSucceeded,
		CreatedAt:  time.Now().UTC(),
	}
	jobs := []*model.Job{
		{
			ID:        types.JobID("job-1"),
			RunID:     run.ID,
			Name:      "test (Linux, Stable)",
			Spec:      model.JobSpec{OS: "Linux", Distro: "ubuntu-latest", Test: "Stable", Toolchain: "stable"},
			Status:    model.JobStatusSucceeded,
			CreatedAt: run.CreatedAt,
		},
	}
	gt.NoError(t, repo.CreateRun(context.Background(), run, jobs))
	return run
}

func newAPIServer(t *testing.T, repo interfaces.Repository, opts ...controller.Option) *controller.Server {
	t.Helper()

	opts = append([]controller.Option{
		controller.WithAddr("localhost:0"),
		controller.WithWebhookSecret("test-secret"),
	}, opts...)

	server, err := controller.NewServer(context.Background(), NewMockTriggerUseCase(), repo, opts...)
	gt.NoError(t, err)
	return server
}

func TestAPI_ListRuns(t *testing.T) {
	repo := repository.NewMemory()
	seedRun(t, repo)
	server := newAPIServer(t, repo)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs", nil)
	w := httptest.NewRecorder()
	server.Handler.ServeHTTP(w, req)

	gt.Number(t, w.Code).Equal(http.StatusOK)

	var response struct {
		Runs []*model.Run `json:"runs"`
	}
	gt.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	gt.Number(t, len(response.Runs)).Equal(1)
	gt.Value(t, string(response.Runs[0].ID)).Equal("run-1")
}

func TestAPI_GetRun(t *testing.T) {
	repo := repository.NewMemory()
	run := seedRun(t, repo)
	server := newAPIServer(t, repo)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs/"+string(run.ID), nil)
	w := httptest.NewRecorder()
	server.Handler.ServeHTTP(w, req)

	gt.Number(t, w.Code).Equal(http.StatusOK)

	var response struct {
		Run  *model.Run   `json:"run"`
		Jobs []*model.Job `json:"jobs"`
	}
	gt.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	gt.Value(t, response.Run.Workflow).Equal("CI")
	gt.Number(t, len(response.Jobs)).Equal(1)
	gt.Value(t, response.Jobs[0].Name).Equal("test (Linux, Stable)")
}

func TestAPI_ListRunJobs(t *testing.T) {
	repo := repository.NewMemory()
	run := seedRun(t, repo)
	server := newAPIServer(t, repo)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs/"+string(run.ID)+"/jobs", nil)
	w := httptest.NewRecorder()
	server.Handler.ServeHTTP(w, req)

	gt.Number(t, w.Code).Equal(http.StatusOK)

	var response struct {
		Jobs []*model.Job `json:"jobs"`
	}
	gt.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	gt.Number(t, len(response.Jobs)).Equal(1)
	gt.Value(t, response.Jobs[0].Name).Equal("test (Linux, Stable)")
	gt.Value(t, string(response.Jobs[0].RunID)).Equal(string(run.ID))
}

func TestAPI_ListRunJobs_NotFound(t *testing.T) {
	server := newAPIServer(t, repository.NewMemory())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs/missing/jobs", nil)
	w := httptest.NewRecorder()
	server.Handler.ServeHTTP(w, req)

	gt.Number(t, w.Code).Equal(http.StatusNotFound)
}

func TestAPI_GetRun_NotFound(t *testing.T) {
	server := newAPIServer(t, repository.NewMemory())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs/missing", nil)
	w := httptest.NewRecorder()
	server.Handler.ServeHTTP(w, req)

	gt.Number(t, w.Code).Equal(http.StatusNotFound)
}

func TestAPI_Auth(t *testing.T) {
	secret := "api-token-secret"
	repo := repository.NewMemory()
	seedRun(t, repo)
	server := newAPIServer(t, repo, controller.WithAPITokenSecret(secret))

	signToken := func(key string) string {
		token, err := jwt.NewBuilder().
			Issuer("loom-test").
			IssuedAt(time.Now()).
			Expiration(time.Now().Add(time.Hour)).
			Build()
		gt.NoError(t, err)

		signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256, []byte(key)))
		gt.NoError(t, err)
		return string(signed)
	}

	tests := []struct {
		name     string
		header   string
		wantCode int
	}{
		{name: "valid token", header: "Bearer " + signToken(secret), wantCode: http.StatusOK},
		{name: "wrong key", header: "Bearer " + signToken("other-secret"), wantCode: http.StatusUnauthorized},
		{name: "missing header", header: "", wantCode: http.StatusUnauthorized},
		{name: "not a token", header: "Bearer garbage", wantCode: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/runs", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			server.Handler.ServeHTTP(w, req)

			gt.Number(t, w.Code).Equal(tt.wantCode)
		})
	}

	// Health and webhook endpoints stay open without a token.
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	server.Handler.ServeHTTP(w, req)
	gt.Number(t, w.Code).Equal(http.StatusOK)
}
