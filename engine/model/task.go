package model

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/teal/ledger/engine"
	"github.com/teal/ledger/lib/db"
	"github.com/teal/ledger/lib/errors"
	"github.com/teal/ledger/lib/token"
)

// Task represents a task object.
type Task struct {
	Token   string
	Created time.Time

	Name    engine.TkName
	Subject string

	Status engine.TkStatus
	Retry  uint64
}

// CreateTask creates and stores a new Task.
func CreateTask(
	ctx context.Context,
	created time.Time,
	name engine.TkName,
	subject string,
	status engine.TkStatus,
	retry uint64,
) (*Task, error) {
	task := Task{
		Token:   token.New("task"),
		Created: created.UTC(),

		Name:    name,
		Subject: subject,
		Status:  status,
		Retry:   retry,
	}

	ext := db.Ext(ctx)
	if _, err := sqlx.NamedExec(ext, `
INSERT INTO tasks
  (token, created, name, subject, status, retry)
VALUES
  (:token, :created, :name, :subject, :status, :retry)
`, task); err != nil {
		return nil, mapSQLError(err)
	}

	return &task, nil
}

// Save updates the object database representation with the in-memory values.
func (o *Task) Save(
	ctx context.Context,
) error {
	ext := db.Ext(ctx)
	_, err := sqlx.NamedExec(ext, `
UPDATE tasks
SET status = :status, retry = :retry
WHERE token = :token
`, o)
	if err != nil {
		return errors.Trace(err)
	}

	return nil
}

// LoadPendingTasks loads all tasks that are marked as pending.
func LoadPendingTasks(
	ctx context.Context,
) ([]*Task, error) {
	query := Task{
		Status: engine.TkStPending,
	}

	ext := db.Ext(ctx)
	rows, err := sqlx.NamedQuery(ext, `
SELECT *
FROM tasks
WHERE status = :status
`, query)
	if err != nil {
		return nil, errors.Trace(err)
	}

	tasks := []*Task{}

	defer rows.Close()
	for rows.Next() {
		op := Task{}
		err := rows.StructScan(&op)
		if err != nil {
			return nil, errors.Trace(err)
		}
		tasks = append(tasks, &op)
	}

	return tasks, nil
}
