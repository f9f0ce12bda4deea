package async

import (
	"context"
	"sync"
	"time"

	"github.com/teal/ledger/engine"
	"github.com/teal/ledger/engine/model"
	"github.com/teal/ledger/lib/db"
	"github.com/teal/ledger/lib/errors"
)

// Task is the interface for a task.
type Task interface {
	// Name is the name of the task.
	Name() engine.TkName

	// Created is the reference time the task deadlines derive from.
	Created() time.Time

	// Subject is the subject of the task, generally an asset symbol.
	Subject() string

	// Execute idempotently runs the task to completion or errors.
	Execute(ctx context.Context) error

	// MaxRetries caps the total number of retries.
	MaxRetries() uint64

	// DeadlineForRetry returns the deadline for the provided retry count.
	DeadlineForRetry(retry uint64) time.Time
}

// Registrar is used to register task generators within the module. The role
// of the generator for a given engine.TkName is to reconstruct a task from
// its creation time and subject.
var Registrar = map[engine.TkName](func(
	context.Context,
	time.Time,
	string,
) Task){}

// Deadline represent an execution deadline for task.
type Deadline struct {
	Task  Task
	Model *model.Task
}

// Deadline returns the current deadline for the task.
func (d Deadline) Deadline() time.Time {
	return d.Task.DeadlineForRetry(d.Model.Retry)
}

// Async represents the state of an async queue.
type Async struct {
	Ctx       context.Context
	Pending   []Deadline
	Scheduled chan Deadline

	mutex *sync.Mutex
}

// NewAsync constructs a new async state, reloading pending tasks from the
// database.
func NewAsync(
	ctx context.Context,
) (*Async, error) {
	a := &Async{
		Ctx:       ctx,
		Pending:   nil,
		Scheduled: make(chan Deadline, 1),
		mutex:     &sync.Mutex{},
	}

	ctx = db.Begin(ctx)
	defer db.LoggedRollback(ctx)

	tasks, err := model.LoadPendingTasks(ctx)
	if err != nil {
		return nil, errors.Trace(err)
	}

	db.Commit(ctx)

	deadlines := []Deadline{}
	for _, m := range tasks {
		generator, ok := Registrar[m.Name]
		if !ok {
			return nil, errors.Trace(
				errors.Newf("Unregistered task name: %s", m.Name))
		}
		t := generator(ctx,
			m.Created,
			m.Subject,
		)
		deadlines = append(deadlines, Deadline{
			Task:  t,
			Model: m,
		})
	}

	a.mutex.Lock()
	defer a.mutex.Unlock()

	a.Pending = deadlines
	a.schedule()

	return a, nil
}

// schedule attempts to schedule an eligible task in a non blocking way. If
// there is no due task or the Scheduled channel is blocked, it's a no-op. Can
// be called as often as needed.
// a.mutex must be held.
func (a *Async) schedule() {
	if len(a.Pending) == 0 {
		return
	}
	d := a.Pending[len(a.Pending)-1]
	if !d.Deadline().After(time.Now()) {
		select {
		case a.Scheduled <- d:
			a.Pending = a.Pending[:len(a.Pending)-1]
		default:
		}
	}
}

// Queue queues a new task by adding it to the list of pending tasks and
// calling schedule.
func (a *Async) Queue(
	ctx context.Context,
	t Task,
) error {
	m, err := model.CreateTask(ctx,
		t.Created(),
		t.Name(),
		t.Subject(),
		engine.TkStPending,
		0,
	)
	if err != nil {
		return errors.Trace(err)
	}

	a.AppendAndSchedule(Deadline{
		Task:  t,
		Model: m,
	})

	return nil
}

// AppendAndSchedule appends a deadline to the list of pending deadlines and
// calls schedule.
func (a *Async) AppendAndSchedule(
	d Deadline,
) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	a.Pending = append(a.Pending, d)

	a.schedule()
}

// RunOne runs the specified deadline and re-adds it to the list of pending
// deadlines if it fails.
func (a *Async) RunOne(
	d Deadline,
) {
	err := d.Task.Execute(a.Ctx)

	ctx := db.Begin(a.Ctx)
	defer db.LoggedRollback(ctx)

	if err != nil {
		engine.Logf(ctx, "Error executing task: "+
			"name=%s subject=%s retry=%d error=%s",
			d.Task.Name(), d.Task.Subject(), d.Model.Retry, err.Error())

		d.Model.Retry++
		if d.Model.Retry > d.Task.MaxRetries() {
			d.Model.Status = engine.TkStFailed
		}
	} else {
		engine.Logf(ctx, "Successfuly executed task: "+
			"name=%s subject=%s retry=%d",
			d.Task.Name(), d.Task.Subject(), d.Model.Retry)

		d.Model.Status = engine.TkStSucceeded
	}

	err = d.Model.Save(ctx)
	if err != nil {
		engine.Logf(ctx, "Error saving task: "+
			"name=%s subject=%s retry=%d error=%s",
			d.Task.Name(), d.Task.Subject(), d.Model.Retry, err.Error())
	}

	db.Commit(ctx)

	if d.Model.Status == engine.TkStPending {
		a.AppendAndSchedule(d)
	}
}

// Run should be called from a go routine to execute tasks as a worker.
// Multiple workers can be run concurrently.
func (a *Async) Run() {
	for {
		select {
		case d := <-a.Scheduled:
			a.RunOne(d)
		case <-time.After(time.Second):
			a.mutex.Lock()
			a.schedule()
			a.mutex.Unlock()
		}
	}
}

// ContextKey is the type of the key used with context to carry contextual
// async state.
type ContextKey string

const (
	// asyncKey the context.Context key to store the async state.
	asyncKey ContextKey = "async.async"
)

// With stores the async state in the provided context.
func With(
	ctx context.Context,
	async *Async,
) context.Context {
	return context.WithValue(ctx, asyncKey, async)
}

// Get returns the async state currently stored in the context.
func Get(
	ctx context.Context,
) *Async {
	return ctx.Value(asyncKey).(*Async)
}

// Queue queues a task for execution by the async queue.
func Queue(
	ctx context.Context,
	t Task,
) error {
	async := Get(ctx)
	return async.Queue(ctx, t)
}

// TestRunOne runs one task off of the list of pending tasks regardless of its
// deadline. In tests we don't have any worker so we use this to run tasks
// synchronously as needed.
func TestRunOne(
	ctx context.Context,
) {
	a := Get(ctx)
	var d Deadline

	a.mutex.Lock()

	if len(a.Pending) > 0 {
		d, a.Pending = a.Pending[len(a.Pending)-1], a.Pending[:len(a.Pending)-1]
		a.mutex.Unlock()
		a.RunOne(d)
		return
	}

	a.mutex.Unlock()

	// A due task may have been moved to the Scheduled channel already.
	select {
	case d = <-a.Scheduled:
		a.RunOne(d)
	default:
	}
}
