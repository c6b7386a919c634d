package rest_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskdesk/internal/backend/rest"
	"taskdesk/internal/service"
	"taskdesk/internal/testutil"
)

func signedInClient(t *testing.T, backend *testutil.FakeBackend, email string, roles ...string) (*rest.Client, service.Profile) {
	t.Helper()
	p := backend.AddUser(email, "pw", roles...)
	c, store := newClient(t, backend.URL())
	res, err := c.SignIn(context.Background(), service.SignInRequest{Email: email, Password: "pw"})
	require.NoError(t, err)
	require.NoError(t, store.SetToken(context.Background(), res.Token))
	return c, p
}

func TestSignIn_ReturnsTokenRolesAndUser(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	p := backend.AddUser("boss@example.com", "pw", "Admin", "Worker")
	c, _ := newClient(t, backend.URL())

	res, err := c.SignIn(context.Background(), service.SignInRequest{Email: "boss@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, []string{"Admin", "Worker"}, res.Roles)
	assert.Equal(t, p.ID, res.User.ID)

	req, _ := backend.LastRequest()
	assert.Equal(t, rest.PathSignIn, req.Path)
	_, present := req.Header[http.CanonicalHeaderKey(rest.HeaderAuthToken)]
	assert.False(t, present)
}

func TestSignUp_SendsRoleList(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	c, _ := newClient(t, backend.URL())

	res, err := c.SignUp(context.Background(), service.SignUpRequest{
		FirstName: "Wes", LastName: "Worker", Email: "wes@example.com", Password: "pw", Roles: []string{"Worker"},
	})
	require.NoError(t, err)
	assert.Empty(t, res.Token)
	assert.Equal(t, []string{"Worker"}, res.Roles)

	req, _ := backend.LastRequest()
	var body map[string]any
	require.NoError(t, json.Unmarshal(req.Body, &body))
	assert.Equal(t, []any{"Worker"}, body["roles"])
}

func TestUpdatePushToken_SendsHeader(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	c, _ := signedInClient(t, backend, "w@example.com", "Worker")

	msg, err := c.UpdatePushToken(context.Background(), "fcm-xyz")
	require.NoError(t, err)
	assert.Equal(t, "FCM token updated", msg)

	req, _ := backend.LastRequest()
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, "fcm-xyz", req.Header.Get(rest.HeaderPushToken))
	assert.NotEmpty(t, req.Header.Get(rest.HeaderAuthToken))
}

func TestTaskLifecycle(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	worker := backend.AddUser("w@example.com", "pw", "Worker")
	c, _ := signedInClient(t, backend, "a@example.com", "Assigner")
	ctx := context.Background()

	created, err := c.CreateTask(ctx, service.CreateTaskRequest{
		Title:     "Paint fence",
		Assignees: []service.Assignee{{UserID: worker.ID, Email: worker.Email}},
		Priority:  service.PriorityHigh,
		Status:    service.StatusBacklog,
		Deadline:  "2025-01-31",
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	title := "Paint the fence"
	edited, err := c.EditTask(ctx, created.ID, service.EditTaskRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, edited.Title)
	assert.Equal(t, service.PriorityHigh, edited.Priority)

	req, _ := backend.LastRequest()
	var body map[string]any
	require.NoError(t, json.Unmarshal(req.Body, &body))
	assert.Equal(t, map[string]any{"title": title}, body, "only set fields are sent")

	require.NoError(t, c.ChangeStatus(ctx, created.ID, service.StatusInProgress))
	req, _ = backend.LastRequest()
	assert.Equal(t, rest.TaskStatusPath(created.ID), req.Path)

	_, err = c.AddComment(ctx, service.CommentRequest{TaskID: created.ID, Content: "on it"})
	require.NoError(t, err)

	got, err := c.GetTask(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, service.StatusInProgress, got.Status)
	require.Len(t, got.Comments, 1)
	assert.Equal(t, "on it", got.Comments[0].Content)

	tasks, err := c.ListTasks(ctx, service.TaskFilter{Status: service.StatusInProgress})
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	tasks, err = c.ListTasks(ctx, service.TaskFilter{Status: service.StatusDone})
	require.NoError(t, err)
	assert.Empty(t, tasks)

	workers, err := c.ListWorkers(ctx)
	require.NoError(t, err)
	require.Len(t, workers, 1)
	assert.Equal(t, worker.ID, workers[0].ID)
}

func TestListWorkerTasks_OnlyAssigned(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	c, me := signedInClient(t, backend, "w@example.com", "Worker")
	backend.AddTask(service.Task{Title: "mine", Assignees: []service.Assignee{{UserID: me.ID}}})
	backend.AddTask(service.Task{Title: "theirs"})

	tasks, err := c.ListWorkerTasks(context.Background(), service.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "mine", tasks[0].Title)
}

func TestAnalytics(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	c, _ := signedInClient(t, backend, "a@example.com", "Assigner")
	backend.AddTask(service.Task{Title: "a", Status: service.StatusDone, Priority: service.PriorityLow})
	backend.AddTask(service.Task{Title: "b", Status: service.StatusDone, Priority: service.PriorityHigh})
	ctx := context.Background()

	a, err := c.AssignerAnalytics(ctx, service.RangeThisWeek)
	require.NoError(t, err)
	require.Len(t, a.TasksByStatus, 1)
	assert.Equal(t, 2, a.TasksByStatus[0].Count)

	req, _ := backend.LastRequest()
	assert.Equal(t, "filter=thisWeek", req.Query)

	w, err := c.WorkerAnalytics(ctx, service.RangeAll)
	require.NoError(t, err)
	assert.Len(t, w.TasksByPriority, 2)

	info, err := c.AssigneeInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, info.Counts.Done)
	assert.Len(t, info.LatestTasks, 2)
}

func TestGetTask_RequiresID(t *testing.T) {
	c, _ := newClient(t, "http://unused")
	_, err := c.GetTask(context.Background(), "")
	var verr *service.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestChangeStatus_RequiresID(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	c, _ := newClient(t, backend.URL())

	err := c.ChangeStatus(context.Background(), "", service.StatusDone)
	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "taskId", verr.Field)
	assert.Empty(t, backend.Requests())
}
