package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"taskdesk/internal/service"
)

// RecordedRequest is a request seen by FakeBackend.
type RecordedRequest struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   []byte
}

type fakeUser struct {
	password string
	profile  service.Profile
}

// FakeBackend is an in-process REST backend speaking the task API.
type FakeBackend struct {
	Server *httptest.Server

	mu       sync.Mutex
	users    map[string]*fakeUser // email -> user
	sessions map[string]string    // token -> email
	tasks    []service.Task
	requests []RecordedRequest

	// Error injection keyed by method and route pattern,
	// e.g. "PUT /api/v1/task/{id}/status".
	Failures map[string]Failure
}

// Failure is an injected backend failure.
type Failure struct {
	Status  int
	Message string
}

// NewFakeBackend starts a FakeBackend. The server is closed when the test ends.
func NewFakeBackend(t testing.TB) *FakeBackend {
	b := &FakeBackend{
		users:    make(map[string]*fakeUser),
		sessions: make(map[string]string),
		Failures: make(map[string]Failure),
	}
	b.Server = httptest.NewServer(b.routes())
	t.Cleanup(b.Server.Close)
	return b
}

// Fail makes the route answer with status and a {"message": msg} body.
func (b *FakeBackend) Fail(method, pattern string, status int, msg string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Failures[method+" "+pattern] = Failure{Status: status, Message: msg}
}

// Recover removes an injected failure.
func (b *FakeBackend) Recover(method, pattern string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.Failures, method+" "+pattern)
}

// URL returns the server base URL.
func (b *FakeBackend) URL() string { return b.Server.URL }

// AddUser registers an account and returns its profile.
func (b *FakeBackend) AddUser(email, password string, roles ...string) service.Profile {
	b.mu.Lock()
	defer b.mu.Unlock()
	p := service.Profile{
		ID:        uuid.NewString(),
		Email:     email,
		FirstName: strings.Split(email, "@")[0],
		Roles:     roles,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	p.UpdatedAt = p.CreatedAt
	b.users[email] = &fakeUser{password: password, profile: p}
	return p
}

// IssueToken creates a session token for an existing user.
func (b *FakeBackend) IssueToken(email string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	tok := uuid.NewString()
	b.sessions[tok] = email
	return tok
}

// AddTask stores a task and returns it with a generated ID.
func (b *FakeBackend) AddTask(task service.Task) service.Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	b.tasks = append(b.tasks, task)
	return task
}

// Task returns the stored task by ID.
func (b *FakeBackend) Task(id string) (service.Task, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, t := range b.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return service.Task{}, false
}

// Requests returns a copy of all recorded requests.
func (b *FakeBackend) Requests() []RecordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]RecordedRequest(nil), b.requests...)
}

// LastRequest returns the most recent request.
func (b *FakeBackend) LastRequest() (RecordedRequest, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.requests) == 0 {
		return RecordedRequest{}, false
	}
	return b.requests[len(b.requests)-1], true
}

func (b *FakeBackend) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(b.record)

	b.handle(r, http.MethodPost, "/api/v1/signUp", b.signUp)
	b.handle(r, http.MethodPost, "/api/v1/signin", b.signIn)

	r.Group(func(r chi.Router) {
		r.Use(b.requireToken)
		b.handle(r, http.MethodPut, "/api/v1/update-fcm-token", b.updatePushToken)
		b.handle(r, http.MethodPost, "/api/v1/createTask", b.createTask)
		b.handle(r, http.MethodGet, "/api/v1/worker", b.listWorkers)
		b.handle(r, http.MethodGet, "/api/v1/tasks", b.listTasks)
		b.handle(r, http.MethodGet, "/api/v1/getWorkerTasks", b.listWorkerTasks)
		b.handle(r, http.MethodPost, "/api/v1/comment", b.addComment)
		b.handle(r, http.MethodGet, "/api/v1/task/analytics", b.taskAnalytics)
		b.handle(r, http.MethodGet, "/api/v1/worker/analytics", b.workerAnalytics)
		b.handle(r, http.MethodGet, "/api/v1/assignee/info", b.assigneeInfo)
		b.handle(r, http.MethodGet, "/api/v1/task/{id}", b.getTask)
		b.handle(r, http.MethodPut, "/api/v1/task/{id}", b.editTask)
		b.handle(r, http.MethodPut, "/api/v1/task/{id}/status", b.changeStatus)
	})
	return r
}

func (b *FakeBackend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body.Close()
		r.Body = io.NopCloser(strings.NewReader(string(body)))

		b.mu.Lock()
		b.requests = append(b.requests, RecordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Header: r.Header.Clone(),
			Body:   body,
		})
		b.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

// guard answers with an injected Failure for key instead of running h.
func (b *FakeBackend) guard(key string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		f, ok := b.Failures[key]
		b.mu.Unlock()
		if ok {
			writeJSON(w, f.Status, map[string]string{"message": f.Message})
			return
		}
		h(w, r)
	}
}

func (b *FakeBackend) handle(r chi.Router, method, pattern string, h http.HandlerFunc) {
	r.Method(method, pattern, b.guard(method+" "+pattern, h))
}

type callerKey struct{}

func (b *FakeBackend) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := r.Header.Get("x-auth-token")
		b.mu.Lock()
		email, ok := b.sessions[tok]
		var caller service.Profile
		if ok {
			caller = b.users[email].profile
		}
		b.mu.Unlock()
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
			return
		}
		next.ServeHTTP(w, r.WithContext(withCaller(r.Context(), caller)))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid JSON body"})
		return false
	}
	return true
}

func (b *FakeBackend) signUp(w http.ResponseWriter, r *http.Request) {
	var req service.SignUpRequest
	if !decode(w, r, &req) {
		return
	}
	b.mu.Lock()
	_, exists := b.users[req.Email]
	b.mu.Unlock()
	if exists {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "User already exists"})
		return
	}
	p := b.AddUser(req.Email, req.Password, req.Roles...)
	b.mu.Lock()
	u := b.users[req.Email]
	u.profile.FirstName = req.FirstName
	u.profile.LastName = req.LastName
	p = u.profile
	b.mu.Unlock()
	writeJSON(w, http.StatusCreated, map[string]any{"message": "User registered successfully", "user": p})
}

func (b *FakeBackend) signIn(w http.ResponseWriter, r *http.Request) {
	var req service.SignInRequest
	if !decode(w, r, &req) {
		return
	}
	b.mu.Lock()
	u, ok := b.users[req.Email]
	b.mu.Unlock()
	if !ok || u.password != req.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
		return
	}
	tok := b.IssueToken(req.Email)
	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "Login successful",
		"userToken": tok,
		"role":      u.profile.Roles,
		"user":      u.profile,
	})
}

func (b *FakeBackend) updatePushToken(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("x-fcm-token") == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "FCM token missing"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "FCM token updated"})
}

func (b *FakeBackend) createTask(w http.ResponseWriter, r *http.Request) {
	var req service.CreateTaskRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Title == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Title is required"})
		return
	}
	caller := callerFrom(r.Context())
	status := req.Status
	if status == "" {
		status = service.StatusBacklog
	}
	now := time.Now().UTC().Truncate(time.Second)
	task := b.AddTask(service.Task{
		Title:       req.Title,
		Description: req.Description,
		Assignees:   req.Assignees,
		Priority:    req.Priority,
		Status:      status,
		Deadline:    req.Deadline,
		OwnerID:     caller.ID,
		OwnerName:   caller.FullName(),
		OwnerEmail:  caller.Email,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	writeJSON(w, http.StatusCreated, map[string]any{"message": "Task created", "task": task})
}

func (b *FakeBackend) listWorkers(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	var workers []service.Worker
	for _, u := range b.users {
		if u.profile.PrimaryRole() == "Worker" {
			workers = append(workers, service.Worker{
				ID:        u.profile.ID,
				FirstName: u.profile.FirstName,
				LastName:  u.profile.LastName,
				Email:     u.profile.Email,
			})
		}
	}
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": workers})
}

func (b *FakeBackend) filtered(r *http.Request, keep func(service.Task) bool) []service.Task {
	q := r.URL.Query()
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []service.Task{}
	for _, t := range b.tasks {
		if s := q.Get("status"); s != "" && string(t.Status) != s {
			continue
		}
		if p := q.Get("priority"); p != "" && string(t.Priority) != p {
			continue
		}
		if s := q.Get("search"); s != "" && !strings.Contains(strings.ToLower(t.Title), strings.ToLower(s)) {
			continue
		}
		if keep != nil && !keep(t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func (b *FakeBackend) listTasks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"message": "Tasks fetched", "data": b.filtered(r, nil)})
}

func (b *FakeBackend) listWorkerTasks(w http.ResponseWriter, r *http.Request) {
	caller := callerFrom(r.Context())
	tasks := b.filtered(r, func(t service.Task) bool {
		for _, a := range t.Assignees {
			if a.UserID == caller.ID {
				return true
			}
		}
		return false
	})
	writeJSON(w, http.StatusOK, map[string]any{"message": "Tasks fetched", "data": tasks})
}

func (b *FakeBackend) addComment(w http.ResponseWriter, r *http.Request) {
	var req service.CommentRequest
	if !decode(w, r, &req) {
		return
	}
	caller := callerFrom(r.Context())
	now := time.Now().UTC().Truncate(time.Second)
	c := service.Comment{
		ID:        uuid.NewString(),
		Content:   req.Content,
		UserID:    caller.ID,
		UserName:  caller.FullName(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.tasks {
		if b.tasks[i].ID == req.TaskID {
			b.tasks[i].Comments = append(b.tasks[i].Comments, c)
			writeJSON(w, http.StatusCreated, map[string]any{"message": "Comment added", "comment": c})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "Task not found"})
}

func (b *FakeBackend) getTask(w http.ResponseWriter, r *http.Request) {
	t, ok := b.Task(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Task not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Task fetched", "data": t})
}

func (b *FakeBackend) editTask(w http.ResponseWriter, r *http.Request) {
	var req service.EditTaskRequest
	if !decode(w, r, &req) {
		return
	}
	id := chi.URLParam(r, "id")
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.tasks {
		t := &b.tasks[i]
		if t.ID != id {
			continue
		}
		if req.Title != nil {
			t.Title = *req.Title
		}
		if req.Description != nil {
			t.Description = *req.Description
		}
		if req.Assignees != nil {
			t.Assignees = req.Assignees
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
		t.UpdatedAt = time.Now().UTC().Truncate(time.Second)
		writeJSON(w, http.StatusOK, map[string]any{"message": "Task updated", "task": *t})
		return
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "Task not found"})
}

func (b *FakeBackend) changeStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status service.Status `json:"status"`
	}
	if !decode(w, r, &req) {
		return
	}
	id := chi.URLParam(r, "id")
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.tasks {
		if b.tasks[i].ID == id {
			b.tasks[i].Status = req.Status
			writeJSON(w, http.StatusOK, map[string]string{"message": "Status updated"})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "Task not found"})
}

func (b *FakeBackend) counts() ([]service.StatusCount, []service.PriorityCount) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var byStatus []service.StatusCount
	for _, s := range service.Statuses {
		n := 0
		for _, t := range b.tasks {
			if t.Status == s {
				n++
			}
		}
		if n > 0 {
			byStatus = append(byStatus, service.StatusCount{Status: s, Count: n})
		}
	}
	var byPriority []service.PriorityCount
	for _, p := range service.Priorities {
		n := 0
		for _, t := range b.tasks {
			if t.Priority == p {
				n++
			}
		}
		if n > 0 {
			byPriority = append(byPriority, service.PriorityCount{Priority: p, Count: n})
		}
	}
	return byStatus, byPriority
}

func (b *FakeBackend) taskAnalytics(w http.ResponseWriter, r *http.Request) {
	byStatus, byPriority := b.counts()
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data": []service.AssignerAnalytics{{
			TasksByStatus:   byStatus,
			TasksByPriority: byPriority,
		}},
	})
}

func (b *FakeBackend) workerAnalytics(w http.ResponseWriter, r *http.Request) {
	byStatus, byPriority := b.counts()
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Analytics fetched",
		"data": []service.WorkerAnalytics{{
			TasksByStatus:   byStatus,
			TasksByPriority: byPriority,
		}},
	})
}

func (b *FakeBackend) assigneeInfo(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	var info service.AssigneeInfo
	for _, t := range b.tasks {
		switch t.Status {
		case service.StatusDone:
			info.Counts.Done++
		case service.StatusInProgress:
			info.Counts.InProgress++
		}
		info.LatestTasks = append(info.LatestTasks, service.TaskSummary{
			Title:       t.Title,
			Description: t.Description,
			CreatedAt:   t.CreatedAt,
			Status:      t.Status,
			Deadline:    t.Deadline,
		})
	}
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, info)
}
