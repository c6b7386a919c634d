// Package service defines the backend-agnostic interface for task operations.
package service

import (
	"context"
	"strings"
)

// Service defines the interface for task backend operations.
// All REST calls go through this interface; commands never build requests directly.
type Service interface {
	// SignUp creates an account.
	SignUp(ctx context.Context, req SignUpRequest) (AuthResult, error)

	// SignIn exchanges credentials for a token and profile.
	SignIn(ctx context.Context, req SignInRequest) (AuthResult, error)

	// UpdatePushToken registers the device push token for the signed-in user.
	UpdatePushToken(ctx context.Context, pushToken string) (string, error)

	// CreateTask creates a task.
	CreateTask(ctx context.Context, req CreateTaskRequest) (Task, error)

	// EditTask applies a partial update to a task.
	EditTask(ctx context.Context, taskID string, req EditTaskRequest) (Task, error)

	// ListWorkers returns users that tasks can be assigned to.
	ListWorkers(ctx context.Context) ([]Worker, error)

	// ListTasks returns tasks visible to an assigner or admin.
	ListTasks(ctx context.Context, filter TaskFilter) ([]Task, error)

	// ListWorkerTasks returns tasks assigned to the signed-in worker.
	ListWorkerTasks(ctx context.Context, filter TaskFilter) ([]Task, error)

	// AddComment adds a comment to a task.
	AddComment(ctx context.Context, req CommentRequest) (Comment, error)

	// GetTask returns a task with its comments.
	GetTask(ctx context.Context, taskID string) (Task, error)

	// ChangeStatus sets a task's status.
	ChangeStatus(ctx context.Context, taskID string, status Status) error

	// AssignerAnalytics returns aggregates over the assigner's tasks.
	AssignerAnalytics(ctx context.Context, r AnalyticsRange) (AssignerAnalytics, error)

	// WorkerAnalytics returns aggregates over the worker's tasks.
	WorkerAnalytics(ctx context.Context, r AnalyticsRange) (WorkerAnalytics, error)

	// AssigneeInfo returns the assigner home screen overview.
	AssigneeInfo(ctx context.Context) (AssigneeInfo, error)
}

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func compact(s string) string {
	r := strings.NewReplacer(" ", "", "-", "", "_", "")
	return r.Replace(s)
}
