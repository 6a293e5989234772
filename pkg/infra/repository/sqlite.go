// Package repository provides persistence for runs and jobs.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	_ "github.com/mattn/go-sqlite3"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/loom/pkg/domain/interfaces"
	"github.com/m-mizutani/loom/pkg/domain/model"
	"github.com/m-mizutani/loom/pkg/domain/types"
)

type sqliteRepo struct {
	db *sql.DB
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		workflow TEXT NOT NULL,
		event TEXT NOT NULL,
		repository TEXT NOT NULL,
		commit_sha TEXT NOT NULL,
		ref TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		started_at DATETIME,
		finished_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS jobs (
		id TEXT PRIMARY KEY,
		run_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		name TEXT NOT NULL,
		spec TEXT NOT NULL,
		status TEXT NOT NULL,
		error TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL,
		started_at DATETIME,
		finished_at DATETIME,
		FOREIGN KEY (run_id) REFERENCES runs(id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_run_id ON jobs(run_id)`,
}

// NewSQLite opens (and if needed initializes) a SQLite database at path.
func NewSQLite(path string) (interfaces.Repository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open database", goerr.V("path", path))
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, goerr.Wrap(err, "failed to initialize schema")
		}
	}

	return &sqliteRepo{db: db}, nil
}

func (r *sqliteRepo) CreateRun(ctx context.Context, run *model.Run, jobs []*model.Job) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return goerr.Wrap(err, "failed to begin transaction")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, workflow, event, repository, commit_sha, ref, status, created_at, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Workflow, run.Event, run.Repository, run.CommitSHA, run.Ref,
		run.Status, run.CreatedAt, run.StartedAt, run.FinishedAt)
	if err != nil {
		return goerr.Wrap(err, "failed to insert run", goerr.V("run_id", run.ID))
	}

	for seq, job := range jobs {
		spec, err := json.Marshal(job.Spec)
		if err != nil {
			return goerr.Wrap(err, "failed to marshal job spec", goerr.V("job_id", job.ID))
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO jobs (id, run_id, seq, name, spec, status, error, created_at, started_at, finished_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			job.ID, job.RunID, seq, job.Name, string(spec), job.Status, job.Error,
			job.CreatedAt, job.StartedAt, job.FinishedAt)
		if err != nil {
			return goerr.Wrap(err, "failed to insert job", goerr.V("job_id", job.ID))
		}
	}

	if err := tx.Commit(); err != nil {
		return goerr.Wrap(err, "failed to commit run", goerr.V("run_id", run.ID))
	}
	return nil
}

func (r *sqliteRepo) UpdateRun(ctx context.Context, run *model.Run) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, started_at = ?, finished_at = ? WHERE id = ?`,
		run.Status, run.StartedAt, run.FinishedAt, run.ID)
	if err != nil {
		return goerr.Wrap(err, "failed to update run", goerr.V("run_id", run.ID))
	}
	return checkAffected(result, "run", string(run.ID))
}

func (r *sqliteRepo) UpdateJob(ctx context.Context, job *model.Job) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE jobs SET status = ?, error = ?, started_at = ?, finished_at = ? WHERE id = ?`,
		job.Status, job.Error, job.StartedAt, job.FinishedAt, job.ID)
	if err != nil {
		return goerr.Wrap(err, "failed to update job", goerr.V("job_id", job.ID))
	}
	return checkAffected(result, "job", string(job.ID))
}

func checkAffected(result sql.Result, kind, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return goerr.Wrap(err, "failed to check affected rows")
	}
	if n == 0 {
		return goerr.New("record not found", goerr.V("kind", kind), goerr.V("id", id))
	}
	return nil
}

func (r *sqliteRepo) GetRun(ctx context.Context, id types.RunID) (*model.Run, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, workflow, event, repository, commit_sha, ref, status, created_at, started_at, finished_at
		 FROM runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get run", goerr.V("run_id", id))
	}
	return run, nil
}

func (r *sqliteRepo) ListRuns(ctx context.Context) ([]*model.Run, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, workflow, event, repository, commit_sha, ref, status, created_at, started_at, finished_at
		 FROM runs ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list runs")
	}
	defer rows.Close()

	var runs []*model.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan run")
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate runs")
	}
	return runs, nil
}

func (r *sqliteRepo) ListJobs(ctx context.Context, runID types.RunID) ([]*model.Job, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, run_id, name, spec, status, error, created_at, started_at, finished_at
		 FROM jobs WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list jobs", goerr.V("run_id", runID))
	}
	defer rows.Close()

	var jobs []*model.Job
	for rows.Next() {
		var job model.Job
		var spec string
		if err := rows.Scan(&job.ID, &job.RunID, &job.Name, &spec, &job.Status,
			&job.Error, &job.CreatedAt, &job.StartedAt, &job.FinishedAt); err != nil {
			return nil, goerr.Wrap(err, "failed to scan job")
		}
		if err := json.Unmarshal([]byte(spec), &job.Spec); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal job spec", goerr.V("job_id", job.ID))
		}
		jobs = append(jobs, &job)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate jobs")
	}
	return jobs, nil
}

func (r *sqliteRepo) Close() error {
	return r.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*model.Run, error) {
	var run model.Run
	if err := row.Scan(&run.ID, &run.Workflow, &run.Event, &run.Repository,
		&run.CommitSHA, &run.Ref, &run.Status, &run.CreatedAt,
		&run.StartedAt, &run.FinishedAt); err != nil {
		return nil, err
	}
	return &run, nil
}
