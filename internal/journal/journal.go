// Package journal keeps a local SQLite record of submitted jobs and the state
// they finished in.
package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"time"

	_ "github.com/mattn/go-sqlite3"

	api "github.com/vpatelsj/comops/api/v1beta1"
)

// ErrNotRecorded is returned by Finish for jobs that were never recorded.
var ErrNotRecorded = errors.New("job not recorded")

const schema = `create table if not exists jobs (
	id text primary key,
	workflow text not null default '',
	template_uri text not null,
	resource_uri text not null,
	handle text not null default '',
	state text not null,
	status text not null default '',
	result_location text not null default '',
	submitted_at text not null,
	finished_at text
);`

// timeLayout has a fixed width so stored timestamps sort as text
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Entry is one journaled job.
type Entry struct {
	ID             string
	Workflow       string
	TemplateURI    string
	ResourceURI    string
	Handle         string
	State          api.JobState
	Status         string
	ResultLocation string
	SubmittedAt    time.Time
	FinishedAt     *time.Time
}

// Journal is a SQLite-backed job journal.
type Journal struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the journal database at path.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open journal: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create journal schema: %w", err)
	}
	return &Journal{db: db, now: time.Now}, nil
}

// dsn builds a file: URI for path. Characters such as '?' and '#' in the path
// are escaped so they cannot be read as connection parameters.
func dsn(path string) string {
	params := url.Values{}
	params.Set("_journal_mode", "WAL")
	params.Set("_busy_timeout", "5000")
	return "file:" + (&url.URL{Path: path}).EscapedPath() + "?" + params.Encode()
}

// Close closes the database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Record stores a freshly submitted job. Recording the same job again
// replaces the entry.
func (j *Journal) Record(ctx context.Context, workflow string, job *api.Job) error {
	_, err := j.db.ExecContext(ctx, `insert or replace into jobs (
		id, workflow, template_uri, resource_uri, handle, state, status, result_location, submitted_at
	) values (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID, workflow, job.JobTemplateURI, job.TargetURI(), job.ResourceURI,
		string(job.State), job.Status, job.ResultLocation(), j.now().UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("record job %s: %w", job.ID, err)
	}
	return nil
}

// Finish stores the final state of a recorded job.
func (j *Journal) Finish(ctx context.Context, job *api.Job) error {
	res, err := j.db.ExecContext(ctx, `update jobs set
		state = ?, status = ?, result_location = ?, finished_at = ?
		where id = ?`,
		string(job.State), job.Status, job.ResultLocation(), j.now().UTC().Format(timeLayout), job.ID)
	if err != nil {
		return fmt.Errorf("finish job %s: %w", job.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finish job %s: %w", job.ID, ErrNotRecorded)
	}
	return nil
}

// List returns the most recently submitted entries first. A limit of zero
// or less returns every entry.
func (j *Journal) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := j.db.QueryContext(ctx, `select
		id, workflow, template_uri, resource_uri, handle, state, status, result_location, submitted_at, finished_at
		from jobs order by submitted_at desc limit ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e                  Entry
			state, submittedAt string
			finishedAt         sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Workflow, &e.TemplateURI, &e.ResourceURI, &e.Handle,
			&state, &e.Status, &e.ResultLocation, &submittedAt, &finishedAt); err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		e.State = api.JobState(state)
		if t, err := time.Parse(timeLayout, submittedAt); err == nil {
			e.SubmittedAt = t
		}
		if finishedAt.Valid {
			if t, err := time.Parse(timeLayout, finishedAt.String); err == nil {
				e.FinishedAt = &t
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Stats counts journaled jobs per state.
func (j *Journal) Stats(ctx context.Context) (map[api.JobState]int, error) {
	rows, err := j.db.QueryContext(ctx, `select state, count(*) from jobs group by state`)
	if err != nil {
		return nil, fmt.Errorf("job stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[api.JobState]int)
	for rows.Next() {
		var (
			state string
			count int
		)
		if err := rows.Scan(&state, &count); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		stats[api.JobState(state)] = count
	}
	return stats, rows.Err()
}
