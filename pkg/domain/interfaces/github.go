package interfaces

import (
	"context"

	"github.com/m-mizutani/loom/pkg/domain/model"
)

// GitHubClient defines operations for interacting with GitHub API
type GitHubClient interface {
	// DownloadZipball downloads the source code zipball for a specific commit
	DownloadZipball(ctx context.Context, owner, repo, ref string) ([]byte, error)

	// CreateCommitStatus reports a per-job status against a commit
	CreateCommitStatus(ctx context.Context, owner, repo, sha string, status *model.CommitStatus) error
}
