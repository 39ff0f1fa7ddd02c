package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"sky-answers-bot/api/internal/answers"
)

var ErrNotFound = sql.ErrNoRows

type AnswerRepo struct{ DB *sql.DB }

func NewAnswerRepo(db *sql.DB) *AnswerRepo { return &AnswerRepo{DB: db} }

// EnsureSchema creates the cache table when it does not exist.
func (r *AnswerRepo) EnsureSchema(ctx context.Context) error {
	const q = `
create table if not exists answers_cache (
  task_hash    text primary key,
  answers_json jsonb not null,
  tasks        integer not null,
  created_at   timestamptz not null default now()
)`
	_, err := r.DB.ExecContext(ctx, q)
	return err
}

// Find returns the cached answers of a task set.
// If maxAge > 0 and the row is older, it returns ErrNotFound.
func (r *AnswerRepo) Find(ctx context.Context, hash string, maxAge time.Duration) ([]answers.TaskAnswer, error) {
	const q = `select answers_json, created_at from answers_cache where task_hash = $1`
	var (
		js []byte
		ts time.Time
	)
	if err := r.DB.QueryRowContext(ctx, q, hash).Scan(&js, &ts); err != nil {
		return nil, err
	}
	if maxAge > 0 && time.Since(ts) > maxAge {
		return nil, ErrNotFound
	}
	var out []answers.TaskAnswer
	if err := json.Unmarshal(js, &out); err != nil {
		// a broken row counts as a miss
		return nil, ErrNotFound
	}
	return out, nil
}

// Upsert stores the answers of a task set and resets its age.
func (r *AnswerRepo) Upsert(ctx context.Context, hash string, a []answers.TaskAnswer) error {
	js, err := json.Marshal(a)
	if err != nil {
		return err
	}
	const q = `
insert into answers_cache (task_hash, answers_json, tasks)
values ($1, $2, $3)
on conflict (task_hash) do update
set answers_json = excluded.answers_json,
    tasks = excluded.tasks,
    created_at = now()`
	_, err = r.DB.ExecContext(ctx, q, hash, js, len(a))
	return err
}

// PurgeOlderThan deletes expired rows so the table does not grow forever.
func (r *AnswerRepo) PurgeOlderThan(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, errors.New("olderThan must be > 0")
	}
	const q = `delete from answers_cache where created_at < $1`
	res, err := r.DB.ExecContext(ctx, q, time.Now().Add(-olderThan))
	if err != nil {
		return 0, err
	}
	aff, _ := res.RowsAffected()
	return aff, nil
}
