// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"taskdesk/internal/service"
)

// ErrNotFound is returned when a resource is not found.
var ErrNotFound = errors.New("not found")

// ErrBadCredentials is returned by SignIn for an unknown email or wrong password.
var ErrBadCredentials = errors.New("invalid credentials")

// FakeService is an in-memory implementation of service.Service for testing.
type FakeService struct {
	mu       sync.RWMutex
	users    map[string]fakeAccount // email -> account
	tasks    []service.Task
	workers  []service.Worker
	calls    []string
	nextID   int
	pushToks []string

	Analytics  service.AssignerAnalytics
	WorkerData service.WorkerAnalytics
	Overview   service.AssigneeInfo

	// Error injection for testing
	SignUpErr            error
	SignInErr            error
	UpdatePushTokenErr   error
	CreateTaskErr        error
	EditTaskErr          error
	ListWorkersErr       error
	ListTasksErr         error
	ListWorkerTasksErr   error
	AddCommentErr        error
	GetTaskErr           error
	ChangeStatusErr      error
	AssignerAnalyticsErr error
	WorkerAnalyticsErr   error
	AssigneeInfoErr      error

	// ChangeStatusGate, when set, makes ChangeStatus wait for a receive
	// before applying the change.
	ChangeStatusGate chan struct{}

	// ListHook, when set, runs at the start of ListTasks and ListWorkerTasks
	// without holding the lock.
	ListHook func(filter service.TaskFilter)
}

type fakeAccount struct {
	password string
	profile  service.Profile
}

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{users: make(map[string]fakeAccount)}
}

// AddUser registers an account that SignIn will accept.
func (f *FakeService) AddUser(email, password string, roles ...string) service.Profile {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	p := service.Profile{
		ID:        fmt.Sprintf("user-%d", f.nextID),
		Email:     email,
		FirstName: strings.Split(email, "@")[0],
		Roles:     roles,
	}
	f.users[email] = fakeAccount{password: password, profile: p}
	return p
}

// AddWorker adds an assignable worker.
func (f *FakeService) AddWorker(id, first, last string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.workers = append(f.workers, service.Worker{ID: id, FirstName: first, LastName: last, Email: strings.ToLower(first) + "@example.com"})
}

// AddTask adds a task in the given status.
func (f *FakeService) AddTask(id, title string, status service.Status) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, service.Task{
		ID:       id,
		Title:    title,
		Status:   status,
		Priority: service.PriorityMedium,
	})
}

// Task returns the stored copy of a task.
func (f *FakeService) Task(id string) (service.Task, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	i := f.indexOf(id)
	if i < 0 {
		return service.Task{}, false
	}
	return cloneTask(f.tasks[i]), true
}

// Calls returns the names of the methods invoked so far, in order.
func (f *FakeService) Calls() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return slices.Clone(f.calls)
}

// CallCount returns how many times method was invoked.
func (f *FakeService) CallCount(method string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	n := 0
	for _, c := range f.calls {
		if c == method {
			n++
		}
	}
	return n
}

// PushTokens returns the push tokens registered so far.
func (f *FakeService) PushTokens() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return slices.Clone(f.pushToks)
}

func (f *FakeService) record(method string) {
	f.mu.Lock()
	f.calls = append(f.calls, method)
	f.mu.Unlock()
}

func (f *FakeService) indexOf(id string) int {
	for i, t := range f.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func cloneTask(t service.Task) service.Task {
	t.Assignees = slices.Clone(t.Assignees)
	t.Comments = slices.Clone(t.Comments)
	return t
}

// SignUp implements service.Service.
func (f *FakeService) SignUp(ctx context.Context, req service.SignUpRequest) (service.AuthResult, error) {
	f.record("SignUp")
	if f.SignUpErr != nil {
		return service.AuthResult{}, f.SignUpErr
	}
	if err := req.Validate(); err != nil {
		return service.AuthResult{}, err
	}
	p := f.AddUser(req.Email, req.Password, req.Roles...)
	f.mu.Lock()
	p.FirstName, p.LastName = req.FirstName, req.LastName
	f.users[req.Email] = fakeAccount{password: req.Password, profile: p}
	f.mu.Unlock()
	return service.AuthResult{Message: "User registered successfully", Roles: p.Roles, User: p}, nil
}

// SignIn implements service.Service.
func (f *FakeService) SignIn(ctx context.Context, req service.SignInRequest) (service.AuthResult, error) {
	f.record("SignIn")
	if f.SignInErr != nil {
		return service.AuthResult{}, f.SignInErr
	}
	f.mu.RLock()
	acct, ok := f.users[req.Email]
	f.mu.RUnlock()
	if !ok || acct.password != req.Password {
		return service.AuthResult{}, ErrBadCredentials
	}
	return service.AuthResult{
		Message: "Login successful",
		Token:   "token-" + acct.profile.ID,
		Roles:   slices.Clone(acct.profile.Roles),
		User:    acct.profile,
	}, nil
}

// UpdatePushToken implements service.Service.
func (f *FakeService) UpdatePushToken(ctx context.Context, pushToken string) (string, error) {
	f.record("UpdatePushToken")
	if f.UpdatePushTokenErr != nil {
		return "", f.UpdatePushTokenErr
	}
	f.mu.Lock()
	f.pushToks = append(f.pushToks, pushToken)
	f.mu.Unlock()
	return "FCM token updated", nil
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, req service.CreateTaskRequest) (service.Task, error) {
	f.record("CreateTask")
	if f.CreateTaskErr != nil {
		return service.Task{}, f.CreateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	t := service.Task{
		ID:          fmt.Sprintf("task-%d", f.nextID),
		Title:       req.Title,
		Description: req.Description,
		Assignees:   slices.Clone(req.Assignees),
		Priority:    req.Priority,
		Status:      req.Status,
		Deadline:    req.Deadline,
		CreatedAt:   time.Now().UTC(),
	}
	if t.Priority == "" {
		t.Priority = service.PriorityMedium
	}
	if t.Status == "" {
		t.Status = service.StatusBacklog
	}
	f.tasks = append(f.tasks, t)
	return cloneTask(t), nil
}

// EditTask implements service.Service.
func (f *FakeService) EditTask(ctx context.Context, taskID string, req service.EditTaskRequest) (service.Task, error) {
	f.record("EditTask")
	if f.EditTaskErr != nil {
		return service.Task{}, f.EditTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.indexOf(taskID)
	if i < 0 {
		return service.Task{}, ErrNotFound
	}
	t := &f.tasks[i]
	if req.Title != nil {
		t.Title = *req.Title
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.Priority != nil {
		t.Priority = *req.Priority
	}
	if req.Status != nil {
		t.Status = *req.Status
	}
	if req.Deadline != nil {
		t.Deadline = *req.Deadline
	}
	if req.Assignees != nil {
		t.Assignees = slices.Clone(req.Assignees)
	}
	return cloneTask(*t), nil
}

// ListWorkers implements service.Service.
func (f *FakeService) ListWorkers(ctx context.Context) ([]service.Worker, error) {
	f.record("ListWorkers")
	if f.ListWorkersErr != nil {
		return nil, f.ListWorkersErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return slices.Clone(f.workers), nil
}

// ListTasks implements service.Service.
func (f *FakeService) ListTasks(ctx context.Context, filter service.TaskFilter) ([]service.Task, error) {
	f.record("ListTasks")
	if f.ListHook != nil {
		f.ListHook(filter)
	}
	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}
	return f.filtered(filter), nil
}

// ListWorkerTasks implements service.Service.
func (f *FakeService) ListWorkerTasks(ctx context.Context, filter service.TaskFilter) ([]service.Task, error) {
	f.record("ListWorkerTasks")
	if f.ListHook != nil {
		f.ListHook(filter)
	}
	if f.ListWorkerTasksErr != nil {
		return nil, f.ListWorkerTasksErr
	}
	return f.filtered(filter), nil
}

func (f *FakeService) filtered(filter service.TaskFilter) []service.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	var out []service.Task
	for _, t := range f.tasks {
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.Priority != "" && t.Priority != filter.Priority {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(t.Title), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, cloneTask(t))
	}
	return out
}

// AddComment implements service.Service.
func (f *FakeService) AddComment(ctx context.Context, req service.CommentRequest) (service.Comment, error) {
	f.record("AddComment")
	if f.AddCommentErr != nil {
		return service.Comment{}, f.AddCommentErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.indexOf(req.TaskID)
	if i < 0 {
		return service.Comment{}, ErrNotFound
	}
	f.nextID++
	c := service.Comment{
		ID:        fmt.Sprintf("comment-%d", f.nextID),
		Content:   req.Content,
		CreatedAt: time.Now().UTC(),
	}
	f.tasks[i].Comments = append(f.tasks[i].Comments, c)
	return c, nil
}

// GetTask implements service.Service.
func (f *FakeService) GetTask(ctx context.Context, taskID string) (service.Task, error) {
	f.record("GetTask")
	if f.GetTaskErr != nil {
		return service.Task{}, f.GetTaskErr
	}
	t, ok := f.Task(taskID)
	if !ok {
		return service.Task{}, ErrNotFound
	}
	return t, nil
}

// ChangeStatus implements service.Service.
func (f *FakeService) ChangeStatus(ctx context.Context, taskID string, status service.Status) error {
	f.record("ChangeStatus")
	if f.ChangeStatusGate != nil {
		select {
		case <-f.ChangeStatusGate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if f.ChangeStatusErr != nil {
		return f.ChangeStatusErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.indexOf(taskID)
	if i < 0 {
		return ErrNotFound
	}
	f.tasks[i].Status = status
	return nil
}

// AssignerAnalytics implements service.Service.
func (f *FakeService) AssignerAnalytics(ctx context.Context, r service.AnalyticsRange) (service.AssignerAnalytics, error) {
	f.record("AssignerAnalytics")
	if f.AssignerAnalyticsErr != nil {
		return service.AssignerAnalytics{}, f.AssignerAnalyticsErr
	}
	return f.Analytics, nil
}

// WorkerAnalytics implements service.Service.
func (f *FakeService) WorkerAnalytics(ctx context.Context, r service.AnalyticsRange) (service.WorkerAnalytics, error) {
	f.record("WorkerAnalytics")
	if f.WorkerAnalyticsErr != nil {
		return service.WorkerAnalytics{}, f.WorkerAnalyticsErr
	}
	return f.WorkerData, nil
}

// AssigneeInfo implements service.Service.
func (f *FakeService) AssigneeInfo(ctx context.Context) (service.AssigneeInfo, error) {
	f.record("AssigneeInfo")
	if f.AssigneeInfoErr != nil {
		return service.AssigneeInfo{}, f.AssigneeInfoErr
	}
	return f.Overview, nil
}

var _ service.Service = (*FakeService)(nil)
