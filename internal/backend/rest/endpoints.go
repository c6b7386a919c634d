package rest

import (
	"context"
	"net/http"
	"net/url"

	"taskdesk/internal/service"
)

// API paths.
const (
	PathSignUp          = "/api/v1/signUp"
	PathSignIn          = "/api/v1/signin"
	PathUpdatePushToken = "/api/v1/update-fcm-token"
	PathCreateTask      = "/api/v1/createTask"
	PathWorkers         = "/api/v1/worker"
	PathTasks           = "/api/v1/tasks"
	PathWorkerTasks     = "/api/v1/getWorkerTasks"
	PathComment         = "/api/v1/comment"
	PathTaskAnalytics   = "/api/v1/task/analytics"
	PathWorkerAnalytics = "/api/v1/worker/analytics"
	PathAssigneeInfo    = "/api/v1/assignee/info"
)

// TaskPath returns the path of a single task.
func TaskPath(taskID string) string {
	return "/api/v1/task/" + url.PathEscape(taskID)
}

// TaskStatusPath returns the status path of a single task.
func TaskStatusPath(taskID string) string {
	return TaskPath(taskID) + "/status"
}

var _ service.Service = (*Client)(nil)

// authReply covers both sign-in and sign-up answers. The token has been
// seen under both "userToken" and "token", and the role list under "role".
type authReply struct {
	Message   string          `json:"message"`
	Token     string          `json:"token"`
	UserToken string          `json:"userToken"`
	Role      []string        `json:"role"`
	User      service.Profile `json:"user"`
}

func (r authReply) result() service.AuthResult {
	res := service.AuthResult{
		Message: r.Message,
		Token:   r.UserToken,
		Roles:   r.Role,
		User:    r.User,
	}
	if res.Token == "" {
		res.Token = r.Token
	}
	if len(res.Roles) == 0 {
		res.Roles = r.User.Roles
	}
	return res
}

// SignUp implements service.Service.
func (c *Client) SignUp(ctx context.Context, req service.SignUpRequest) (service.AuthResult, error) {
	var reply authReply
	if err := c.Send(ctx, http.MethodPost, PathSignUp, req, nil, &reply); err != nil {
		return service.AuthResult{}, err
	}
	return reply.result(), nil
}

// SignIn implements service.Service.
func (c *Client) SignIn(ctx context.Context, req service.SignInRequest) (service.AuthResult, error) {
	var reply authReply
	if err := c.Send(ctx, http.MethodPost, PathSignIn, req, nil, &reply); err != nil {
		return service.AuthResult{}, err
	}
	return reply.result(), nil
}

type messageReply struct {
	Message string `json:"message"`
}

// UpdatePushToken implements service.Service. The token travels in a header, the body is empty JSON.
func (c *Client) UpdatePushToken(ctx context.Context, pushToken string) (string, error) {
	extra := http.Header{}
	extra.Set(HeaderPushToken, pushToken)

	var reply messageReply
	if err := c.Send(ctx, http.MethodPut, PathUpdatePushToken, struct{}{}, extra, &reply); err != nil {
		return "", err
	}
	return reply.Message, nil
}

type taskReply struct {
	Message string        `json:"message"`
	Task    *service.Task `json:"task"`
	Data    *service.Task `json:"data"`
}

func (r taskReply) task() service.Task {
	switch {
	case r.Task != nil:
		return *r.Task
	case r.Data != nil:
		return *r.Data
	}
	return service.Task{}
}

// CreateTask implements service.Service.
func (c *Client) CreateTask(ctx context.Context, req service.CreateTaskRequest) (service.Task, error) {
	var reply taskReply
	if err := c.Send(ctx, http.MethodPost, PathCreateTask, req, nil, &reply); err != nil {
		return service.Task{}, err
	}
	return reply.task(), nil
}

// EditTask implements service.Service. Only set fields are sent.
func (c *Client) EditTask(ctx context.Context, taskID string, req service.EditTaskRequest) (service.Task, error) {
	var reply taskReply
	if err := c.Send(ctx, http.MethodPut, TaskPath(taskID), req, nil, &reply); err != nil {
		return service.Task{}, err
	}
	return reply.task(), nil
}

type workersReply struct {
	Success bool             `json:"success"`
	Data    []service.Worker `json:"data"`
}

// ListWorkers implements service.Service.
func (c *Client) ListWorkers(ctx context.Context) ([]service.Worker, error) {
	var reply workersReply
	if err := c.Send(ctx, http.MethodGet, PathWorkers, nil, nil, &reply); err != nil {
		return nil, err
	}
	return reply.Data, nil
}

type tasksReply struct {
	Message string         `json:"message"`
	Data    []service.Task `json:"data"`
	Tasks   []service.Task `json:"tasks"`
}

func (r tasksReply) list() []service.Task {
	if r.Data != nil {
		return r.Data
	}
	return r.Tasks
}

// FilterQuery encodes f as a query string, including the leading "?".
// Returns "" when no filter is set.
func FilterQuery(f service.TaskFilter) string {
	q := url.Values{}
	if f.SortBy != "" {
		q.Set("sortBy", f.SortBy)
	}
	if f.Priority != "" {
		q.Set("priority", string(f.Priority))
	}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.CreatedAt != "" {
		q.Set("createdAt", f.CreatedAt)
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// ListTasks implements service.Service.
func (c *Client) ListTasks(ctx context.Context, filter service.TaskFilter) ([]service.Task, error) {
	var reply tasksReply
	if err := c.Send(ctx, http.MethodGet, PathTasks+FilterQuery(filter), nil, nil, &reply); err != nil {
		return nil, err
	}
	return reply.list(), nil
}

// ListWorkerTasks implements service.Service.
func (c *Client) ListWorkerTasks(ctx context.Context, filter service.TaskFilter) ([]service.Task, error) {
	var reply tasksReply
	if err := c.Send(ctx, http.MethodGet, PathWorkerTasks+FilterQuery(filter), nil, nil, &reply); err != nil {
		return nil, err
	}
	return reply.list(), nil
}

type commentReply struct {
	Message string          `json:"message"`
	Comment service.Comment `json:"comment"`
}

// AddComment implements service.Service.
func (c *Client) AddComment(ctx context.Context, req service.CommentRequest) (service.Comment, error) {
	var reply commentReply
	if err := c.Send(ctx, http.MethodPost, PathComment, req, nil, &reply); err != nil {
		return service.Comment{}, err
	}
	return reply.Comment, nil
}

// GetTask implements service.Service.
func (c *Client) GetTask(ctx context.Context, taskID string) (service.Task, error) {
	if taskID == "" {
		return service.Task{}, &service.ValidationError{Field: "taskId", Message: "Task ID is required to fetch task details."}
	}
	var reply taskReply
	if err := c.Send(ctx, http.MethodGet, TaskPath(taskID), nil, nil, &reply); err != nil {
		return service.Task{}, err
	}
	return reply.task(), nil
}

// ChangeStatus implements service.Service.
func (c *Client) ChangeStatus(ctx context.Context, taskID string, status service.Status) error {
	if taskID == "" {
		return &service.ValidationError{Field: "taskId", Message: "Task ID is required to update status."}
	}
	body := struct {
		Status service.Status `json:"status"`
	}{status}
	return c.Send(ctx, http.MethodPut, TaskStatusPath(taskID), body, nil, nil)
}

func rangeQuery(r service.AnalyticsRange) string {
	if r == "" {
		return ""
	}
	return "?" + url.Values{"filter": {string(r)}}.Encode()
}

type assignerAnalyticsReply struct {
	Success bool                        `json:"success"`
	Data    []service.AssignerAnalytics `json:"data"`
}

// AssignerAnalytics implements service.Service. The backend wraps a single
// aggregate in a list; an empty list yields zero aggregates.
func (c *Client) AssignerAnalytics(ctx context.Context, r service.AnalyticsRange) (service.AssignerAnalytics, error) {
	var reply assignerAnalyticsReply
	if err := c.Send(ctx, http.MethodGet, PathTaskAnalytics+rangeQuery(r), nil, nil, &reply); err != nil {
		return service.AssignerAnalytics{}, err
	}
	if len(reply.Data) == 0 {
		return service.AssignerAnalytics{}, nil
	}
	return reply.Data[0], nil
}

type workerAnalyticsReply struct {
	Message string                    `json:"message"`
	Data    []service.WorkerAnalytics `json:"data"`
}

// WorkerAnalytics implements service.Service.
func (c *Client) WorkerAnalytics(ctx context.Context, r service.AnalyticsRange) (service.WorkerAnalytics, error) {
	var reply workerAnalyticsReply
	if err := c.Send(ctx, http.MethodGet, PathWorkerAnalytics+rangeQuery(r), nil, nil, &reply); err != nil {
		return service.WorkerAnalytics{}, err
	}
	if len(reply.Data) == 0 {
		return service.WorkerAnalytics{}, nil
	}
	return reply.Data[0], nil
}

// AssigneeInfo implements service.Service.
func (c *Client) AssigneeInfo(ctx context.Context) (service.AssigneeInfo, error) {
	var info service.AssigneeInfo
	if err := c.Send(ctx, http.MethodGet, PathAssigneeInfo, nil, nil, &info); err != nil {
		return service.AssigneeInfo{}, err
	}
	return info, nil
}
