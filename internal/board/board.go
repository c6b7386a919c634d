// Package board keeps the task list shown to the user and applies task
// mutations to it, status changes optimistically.
package board

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"taskdesk/internal/notice"
	"taskdesk/internal/service"
)

// Scope selects which listing endpoint feeds the board.
type Scope int

const (
	// ScopeAll lists every task the caller may see (admins and assigners).
	ScopeAll Scope = iota
	// ScopeAssigned lists only tasks assigned to the caller (workers).
	ScopeAssigned
)

// Board is the in-memory task list of one view.
type Board struct {
	svc      service.Service
	scope    Scope
	notifier notice.Notifier
	logger   *slog.Logger

	mu     sync.Mutex
	tasks  []service.Task
	filter service.TaskFilter
	seq    uint64 // bumped on every fetch dispatch and local write
}

// New creates an empty Board.
func New(svc service.Service, scope Scope, notifier notice.Notifier, logger *slog.Logger) *Board {
	if notifier == nil {
		notifier = notice.Discard
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Board{svc: svc, scope: scope, notifier: notifier, logger: logger}
}

// Tasks returns a copy of the current list.
func (b *Board) Tasks() []service.Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.tasks)
}

// Task returns the listed task with the given id.
func (b *Board) Task(id string) (service.Task, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i := b.indexOf(id); i >= 0 {
		return b.tasks[i], true
	}
	return service.Task{}, false
}

// Filter returns the filter of the most recent Refresh.
func (b *Board) Filter() service.TaskFilter {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.filter
}

func (b *Board) indexOf(id string) int {
	return slices.IndexFunc(b.tasks, func(t service.Task) bool { return t.ID == id })
}

func (b *Board) list(ctx context.Context, filter service.TaskFilter) ([]service.Task, error) {
	if b.scope == ScopeAssigned {
		return b.svc.ListWorkerTasks(ctx, filter)
	}
	return b.svc.ListTasks(ctx, filter)
}

// Refresh fetches the list with filter and returns the board's list afterwards.
// A response is applied only when nothing newer was dispatched after it;
// otherwise it is dropped and the current list is returned.
func (b *Board) Refresh(ctx context.Context, filter service.TaskFilter) ([]service.Task, error) {
	b.mu.Lock()
	b.seq++
	seq := b.seq
	b.filter = filter
	b.mu.Unlock()

	tasks, err := b.list(ctx, filter)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if seq != b.seq {
		b.logger.Debug("dropping stale task list", "seq", seq, "latest", b.seq)
		return slices.Clone(b.tasks), nil
	}
	b.tasks = tasks
	return slices.Clone(tasks), nil
}

// ChangeStatus sets a task's status. The listed copy changes immediately,
// before the backend answers. On success the list is fetched again with the
// last filter. On failure the listed copy is put back, an error notice is
// posted and the error is returned. A task not on the board is changed on
// the backend only.
func (b *Board) ChangeStatus(ctx context.Context, taskID string, status service.Status) error {
	b.mu.Lock()
	var prev service.Status
	i := b.indexOf(taskID)
	if i >= 0 {
		prev = b.tasks[i].Status
		b.tasks[i].Status = status
		b.seq++
	}
	b.mu.Unlock()

	if err := b.svc.ChangeStatus(ctx, taskID, status); err != nil {
		if i >= 0 {
			b.revert(taskID, status, prev)
		}
		b.logger.Warn("status change failed", "task", taskID, "status", status, "error", err)
		b.notifier.Notify(notice.Notice{Level: notice.Error, Title: "Status not updated", Text: err.Error()})
		return err
	}

	b.notifier.Notify(notice.Notice{Level: notice.Success, Title: "Status updated", Text: string(status)})
	b.refetch(ctx)
	return nil
}

// revert restores prev unless the listed status no longer holds the optimistic value.
func (b *Board) revert(taskID string, optimistic, prev service.Status) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i := b.indexOf(taskID); i >= 0 && b.tasks[i].Status == optimistic {
		b.tasks[i].Status = prev
	}
}

func (b *Board) refetch(ctx context.Context) {
	if _, err := b.Refresh(ctx, b.Filter()); err != nil {
		b.logger.Warn("refresh after update failed", "error", err)
	}
}

// Create validates and creates a task, then refreshes the list.
func (b *Board) Create(ctx context.Context, req service.CreateTaskRequest) (service.Task, error) {
	if err := req.Validate(); err != nil {
		return service.Task{}, err
	}
	t, err := b.svc.CreateTask(ctx, req)
	if err != nil {
		return service.Task{}, err
	}
	b.notifier.Notify(notice.Notice{Level: notice.Success, Title: "Task created", Text: t.Title})
	b.refetch(ctx)
	return t, nil
}

// Edit validates and sends a partial update, then refreshes the list.
func (b *Board) Edit(ctx context.Context, taskID string, req service.EditTaskRequest) (service.Task, error) {
	if err := req.Validate(); err != nil {
		return service.Task{}, err
	}
	t, err := b.svc.EditTask(ctx, taskID, req)
	if err != nil {
		return service.Task{}, err
	}
	b.notifier.Notify(notice.Notice{Level: notice.Success, Title: "Task updated", Text: t.Title})
	b.refetch(ctx)
	return t, nil
}

// Comment adds a comment and returns the task as the backend now has it.
func (b *Board) Comment(ctx context.Context, req service.CommentRequest) (service.Task, error) {
	if err := req.Validate(); err != nil {
		return service.Task{}, err
	}
	if _, err := b.svc.AddComment(ctx, req); err != nil {
		return service.Task{}, err
	}
	b.notifier.Notify(notice.Notice{Level: notice.Success, Title: "Comment added"})
	return b.svc.GetTask(ctx, req.TaskID)
}
