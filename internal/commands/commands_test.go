package commands_test

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"io"
	"net/http"
	"strings"
	"testing"

	"taskdesk/internal/backend/rest"
	"taskdesk/internal/commands"
	"taskdesk/internal/config"
	"taskdesk/internal/credstore"
	"taskdesk/internal/exitcode"
	"taskdesk/internal/service"
	"taskdesk/internal/storage"
	"taskdesk/internal/testutil"
)

// fixture is a command environment over a FakeService and an in-memory store.
type fixture struct {
	svc   *testutil.FakeService
	kv    *storage.Memory
	quiet bool
}

func newFixture(roles ...string) *fixture {
	f := &fixture{svc: testutil.NewFakeService(), kv: storage.NewMemory()}
	if len(roles) > 0 {
		store := credstore.New(f.kv, testutil.DiscardLogger())
		p := service.Profile{ID: "u1", Email: "ada@example.com", FirstName: "Ada", Roles: roles}
		if err := store.SetProfile(context.Background(), p); err != nil {
			panic(err)
		}
		if err := store.SetToken(context.Background(), "tok"); err != nil {
			panic(err)
		}
	}
	return f
}

// runCommand registers and parses cmd's flags, hydrates the session and runs cmd.
func runCommand(t *testing.T, cmd commands.Command, f *fixture, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	return runWith(t, cmd, f.svc, f.kv, f.quiet, args...)
}

func runWith(t *testing.T, cmd commands.Command, svc service.Service, kv storage.KV, quiet bool, args ...string) (stdout, stderr string, code int) {
	t.Helper()

	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cmd.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	var outBuf, errBuf bytes.Buffer
	cfg := &config.Config{Dir: t.TempDir(), Quiet: quiet}
	store := credstore.New(kv, testutil.DiscardLogger())
	env := commands.NewEnv(cfg, svc, store, &outBuf, &errBuf, testutil.DiscardLogger())

	ctx := context.Background()
	env.Session.Hydrate(ctx)
	code = cmd.Run(ctx, cfg, env, fs.Args(), &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

func expectCode(t *testing.T, want, got int, stderr string) {
	t.Helper()
	if got != want {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", want, got, stderr)
	}
}

func expectOutput(t *testing.T, what, want, got string) {
	t.Helper()
	if got != want {
		t.Errorf("%s: expected %q, got %q", what, want, got)
	}
}

func TestVersionCommand(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.VersionCmd{}, newFixture())
	expectCode(t, exitcode.Success, code, stderr)
	expectOutput(t, "stdout", "taskdesk 0.1.0\n", stdout)
}

func TestVersionCommand_Verbose(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.VersionCmd{}, newFixture(), "--verbose")
	expectCode(t, exitcode.Success, code, stderr)
	for _, want := range []string{"taskdesk 0.1.0\n", "go:       go", "backend:  ", "config:   "} {
		if !strings.Contains(stdout, want) {
			t.Errorf("verbose version should contain %q, got %q", want, stdout)
		}
	}

	stdout, _, _ = runCommand(t, &commands.VersionCmd{}, newFixture())
	expectOutput(t, "stdout after verbose run", "taskdesk 0.1.0\n", stdout)
}

func TestHelpCommand(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.HelpCmd{}, newFixture())
	expectCode(t, exitcode.Success, code, stderr)
	for _, want := range []string{"Usage:", "signin", "mytasks", "--config <dir>"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("help output should contain %q", want)
		}
	}
}

func TestHelpCommand_Golden(t *testing.T) {
	stdout, _, _ := runCommand(t, &commands.HelpCmd{}, newFixture())
	testutil.GoldenString(t, "help", stdout)
}

func TestHelpCommand_ListsOnlyReachableCommands(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.HelpCmd{}, newFixture("Worker"))
	expectCode(t, exitcode.Success, code, stderr)
	if !strings.Contains(stdout, "  mytasks ") || !strings.Contains(stdout, "  signout ") {
		t.Errorf("worker help should list mytasks and signout: %q", stdout)
	}
	for _, hidden := range []string{"  create ", "  tasks ", "  workers "} {
		if strings.Contains(stdout, hidden) {
			t.Errorf("worker help should not list %q", strings.TrimSpace(hidden))
		}
	}
}

func TestHelpCommand_SingleCommand(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.HelpCmd{}, newFixture(), "move")
	expectCode(t, exitcode.Success, code, stderr)
	expectOutput(t, "stdout", "Change a task's status\n\nusage: taskdesk status <task-id> <Backlog|InProgress|Done|Archived>\n", stdout)

	_, stderr, code = runCommand(t, &commands.HelpCmd{}, newFixture(), "nope")
	expectCode(t, exitcode.UserError, code, stderr)
	expectOutput(t, "stderr", "error: unknown command: nope\n", stderr)
}

func TestWhoamiCommand(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.WhoamiCmd{}, newFixture("Worker"))
	expectCode(t, exitcode.Success, code, stderr)

	expected := "Ada <ada@example.com>\n" +
		"roles:       Worker\n" +
		"home:        WorkerHome\n" +
		"permissions: none\n"
	expectOutput(t, "stdout", expected, stdout)
}

func TestSignIn_AlreadySignedInSkipsBackend(t *testing.T) {
	f := newFixture("Admin")
	stdout, stderr, code := runCommand(t, &commands.SignInCmd{}, f)
	expectCode(t, exitcode.Success, code, stderr)
	expectOutput(t, "stdout", "already signed in as ada@example.com (AdminHome)\n", stdout)
	if len(f.svc.Calls()) != 0 {
		t.Errorf("expected no backend calls, got %v", f.svc.Calls())
	}
}

func TestSignIn_Validation(t *testing.T) {
	_, stderr, code := runCommand(t, &commands.SignInCmd{}, newFixture(), "--email", "a@example.com")
	expectCode(t, exitcode.UserError, code, stderr)
	expectOutput(t, "stderr", "error: password: required\n", stderr)
}

func TestSignIn_UnknownRole(t *testing.T) {
	f := newFixture()
	f.svc.AddUser("odd@example.com", "pw", "Bogus")

	stdout, stderr, code := runCommand(t, &commands.SignInCmd{}, f, "--email", "odd@example.com", "--password", "pw")
	expectCode(t, exitcode.AuthError, code, stderr)
	expectOutput(t, "stdout", "", stdout)
	expectOutput(t, "stderr", "Role Error: Unable to determine user role.\n", stderr)
}

func TestSignIn_StorageFailure(t *testing.T) {
	f := newFixture()
	f.svc.AddUser("ada@example.com", "pw", "Worker")
	f.kv.SetErr = errors.New("disk full")

	_, stderr, code := runCommand(t, &commands.SignInCmd{}, f, "--email", "ada@example.com", "--password", "pw")
	expectCode(t, exitcode.BackendError, code, stderr)
	expectOutput(t, "stderr", "error: storage set user_profile: disk full\n", stderr)
}

func TestSignUp_NoTokenSendsToSignIn(t *testing.T) {
	f := newFixture()
	stdout, stderr, code := runCommand(t, &commands.SignUpCmd{}, f,
		"--first", "Grace", "--last", "Hopper", "--email", "grace@example.com", "--password", "pw", "--role", "Assigner")
	expectCode(t, exitcode.Success, code, stderr)
	expectOutput(t, "stdout", "User registered successfully\naccount created (run: taskdesk signin)\n", stdout)
	if f.kv.Len() != 0 {
		t.Errorf("sign-up without a token must not persist a session")
	}
}

func TestSignUp_Validation(t *testing.T) {
	f := newFixture()
	_, stderr, code := runCommand(t, &commands.SignUpCmd{}, f, "--email", "x@example.com")
	expectCode(t, exitcode.UserError, code, stderr)
	expectOutput(t, "stderr", "error: firstName: required\n", stderr)
	if len(f.svc.Calls()) != 0 {
		t.Errorf("validation failure must not reach the backend")
	}
}

func TestSignOut(t *testing.T) {
	f := newFixture("Worker")
	stdout, stderr, code := runCommand(t, &commands.SignOutCmd{}, f)
	expectCode(t, exitcode.Success, code, stderr)
	expectOutput(t, "stdout", "Logged out successfully!: You have been logged out of the app.\n", stdout)
	if f.kv.Len() != 0 {
		t.Errorf("expected empty store, got %d keys", f.kv.Len())
	}
}

func TestSignOut_Quiet(t *testing.T) {
	f := newFixture("Worker")
	f.quiet = true
	stdout, stderr, code := runCommand(t, &commands.SignOutCmd{}, f)
	expectCode(t, exitcode.Success, code, stderr)
	expectOutput(t, "stdout", "", stdout)
}

func TestTasksCommand(t *testing.T) {
	f := newFixture("Assigner")
	f.svc.AddTask("t1", "Ship", service.StatusBacklog)
	f.svc.AddTask("t2", "Test", service.StatusDone)

	stdout, stderr, code := runCommand(t, &commands.TasksCmd{}, f, "--status", "done")
	expectCode(t, exitcode.Success, code, stderr)
	expectOutput(t, "stdout", "t2  Done         Medium  Test\n", stdout)
	if got := f.svc.Calls(); len(got) != 1 || got[0] != "ListTasks" {
		t.Errorf("expected one ListTasks call, got %v", got)
	}
}

func TestTasksCommand_Empty(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.TasksCmd{}, newFixture("Admin"))
	expectCode(t, exitcode.Success, code, stderr)
	expectOutput(t, "stdout", "no tasks found\n", stdout)

	f := newFixture("Admin")
	f.quiet = true
	stdout, _, _ = runCommand(t, &commands.TasksCmd{}, f)
	expectOutput(t, "quiet stdout", "", stdout)
}

func TestTasksCommand_BadFilter(t *testing.T) {
	_, stderr, code := runCommand(t, &commands.TasksCmd{}, newFixture("Admin"), "--priority", "urgent")
	expectCode(t, exitcode.UserError, code, stderr)
	expectOutput(t, "stderr", "error: invalid priority: urgent\n", stderr)
}

func TestTasksCommand_Unauthorized(t *testing.T) {
	f := newFixture("Admin")
	f.svc.ListTasksErr = &rest.BackendError{StatusCode: http.StatusUnauthorized, Msg: "Unauthorized"}

	_, stderr, code := runCommand(t, &commands.TasksCmd{}, f)
	expectCode(t, exitcode.AuthError, code, stderr)
	expectOutput(t, "stderr", "error: Unauthorized (run: taskdesk signin)\n", stderr)
}

func TestMyTasksCommand_UsesWorkerListing(t *testing.T) {
	f := newFixture("Worker")
	f.svc.AddTask("t1", "Ship", service.StatusInProgress)

	stdout, stderr, code := runCommand(t, &commands.MyTasksCmd{}, f)
	expectCode(t, exitcode.Success, code, stderr)
	expectOutput(t, "stdout", "t1  In Progress  Medium  Ship\n", stdout)
	if f.svc.CallCount("ListWorkerTasks") != 1 {
		t.Errorf("expected ListWorkerTasks, got %v", f.svc.Calls())
	}
}

func TestStatusCommand_Success(t *testing.T) {
	f := newFixture("Worker")
	f.svc.AddTask("t1", "Ship", service.StatusBacklog)

	stdout, stderr, code := runCommand(t, &commands.StatusCmd{}, f, "t1", "done")
	expectCode(t, exitcode.Success, code, stderr)
	expectOutput(t, "stdout", "Status updated: Done\nt1  Done         Medium  Ship\n", stdout)

	task, _ := f.svc.Task("t1")
	if task.Status != service.StatusDone {
		t.Errorf("expected backend status Done, got %s", task.Status)
	}
}

func TestStatusCommand_MultiWordStatus(t *testing.T) {
	f := newFixture("Assigner")
	f.svc.AddTask("t1", "Ship", service.StatusBacklog)

	_, stderr, code := runCommand(t, &commands.StatusCmd{}, f, "t1", "In", "Progress")
	expectCode(t, exitcode.Success, code, stderr)
	task, _ := f.svc.Task("t1")
	if task.Status != service.StatusInProgress {
		t.Errorf("expected In Progress, got %s", task.Status)
	}
}

func TestStatusCommand_Failure(t *testing.T) {
	f := newFixture("Worker")
	f.svc.AddTask("t1", "Ship", service.StatusBacklog)
	f.svc.ChangeStatusErr = errors.New("Task not found")

	stdout, stderr, code := runCommand(t, &commands.StatusCmd{}, f, "t1", "done")
	expectCode(t, exitcode.BackendError, code, stderr)
	expectOutput(t, "stdout", "t1  Backlog      Medium  Ship\n", stdout)
	expectOutput(t, "stderr", "Status not updated: Task not found\n", stderr)
	expectOutput(t, "calls", "ListWorkerTasks,ChangeStatus", strings.Join(f.svc.Calls(), ","))
}

func TestStatusCommand_LoadsListBeforeChange(t *testing.T) {
	f := newFixture("Assigner")
	f.svc.AddTask("t1", "Ship", service.StatusBacklog)

	_, stderr, code := runCommand(t, &commands.StatusCmd{}, f, "t1", "done")
	expectCode(t, exitcode.Success, code, stderr)
	expectOutput(t, "calls", "ListTasks,ChangeStatus,ListTasks", strings.Join(f.svc.Calls(), ","))
}

func TestStatusCommand_ListFailureStillChangesStatus(t *testing.T) {
	f := newFixture("Worker")
	f.svc.AddTask("t1", "Ship", service.StatusBacklog)
	f.svc.ListWorkerTasksErr = errors.New("offline")

	stdout, stderr, code := runCommand(t, &commands.StatusCmd{}, f, "t1", "done")
	expectCode(t, exitcode.Success, code, stderr)
	expectOutput(t, "stdout", "Status updated: Done\n", stdout)
	task, _ := f.svc.Task("t1")
	if task.Status != service.StatusDone {
		t.Errorf("expected backend status Done, got %s", task.Status)
	}
}

func TestStatusCommand_BlankID(t *testing.T) {
	f := newFixture("Worker")
	_, stderr, code := runCommand(t, &commands.StatusCmd{}, f, " ", "done")
	expectCode(t, exitcode.UserError, code, stderr)
	expectOutput(t, "stderr", "error: task id and status required\n", stderr)
	if n := len(f.svc.Calls()); n != 0 {
		t.Errorf("expected no backend calls, got %d", n)
	}
}

func TestStatusCommand_BadArgs(t *testing.T) {
	_, stderr, code := runCommand(t, &commands.StatusCmd{}, newFixture("Worker"), "t1")
	expectCode(t, exitcode.UserError, code, stderr)
	expectOutput(t, "stderr", "error: task id and status required\n", stderr)

	_, stderr, code = runCommand(t, &commands.StatusCmd{}, newFixture("Worker"), "t1", "finished")
	expectCode(t, exitcode.UserError, code, stderr)
	expectOutput(t, "stderr", "error: invalid status: finished\n", stderr)
}

func TestCreateCommand(t *testing.T) {
	f := newFixture("Assigner")
	stdout, stderr, code := runCommand(t, &commands.CreateCmd{}, f,
		"--priority", "high", "--assignee", "w1,w2", "Write", "docs")
	expectCode(t, exitcode.Success, code, stderr)
	expectOutput(t, "stdout", "Task created: Write docs\ncreated task-1\n", stdout)

	task, ok := f.svc.Task("task-1")
	if !ok {
		t.Fatal("task not created")
	}
	if task.Priority != service.PriorityHigh || len(task.Assignees) != 2 {
		t.Errorf("unexpected task %+v", task)
	}
}

func TestCreateCommand_NoTitle(t *testing.T) {
	f := newFixture("Assigner")
	_, stderr, code := runCommand(t, &commands.CreateCmd{}, f)
	expectCode(t, exitcode.UserError, code, stderr)
	expectOutput(t, "stderr", "error: title required\n", stderr)
	if len(f.svc.Calls()) != 0 {
		t.Errorf("expected no backend calls, got %v", f.svc.Calls())
	}
}

func TestEditCommand(t *testing.T) {
	f := newFixture("Assigner")
	f.svc.AddTask("t1", "Old", service.StatusBacklog)

	stdout, stderr, code := runCommand(t, &commands.EditCmd{}, f, "--title", "New", "t1")
	expectCode(t, exitcode.Success, code, stderr)
	expectOutput(t, "stdout", "Task updated: New\nupdated t1\n", stdout)

	task, _ := f.svc.Task("t1")
	if task.Title != "New" || task.Priority != service.PriorityMedium {
		t.Errorf("only the title should change, got %+v", task)
	}
}

func TestEditCommand_NothingToUpdate(t *testing.T) {
	f := newFixture("Assigner")
	_, stderr, code := runCommand(t, &commands.EditCmd{}, f, "t1")
	expectCode(t, exitcode.UserError, code, stderr)
	expectOutput(t, "stderr", "error: nothing to update\n", stderr)
}

func TestCommentCommand(t *testing.T) {
	f := newFixture("Worker")
	f.svc.AddTask("t1", "Ship", service.StatusBacklog)

	stdout, stderr, code := runCommand(t, &commands.CommentCmd{}, f, "t1", "on", "it")
	expectCode(t, exitcode.Success, code, stderr)
	expectOutput(t, "stdout", "Comment added\n1 comments on t1\n", stdout)

	_, stderr, code = runCommand(t, &commands.CommentCmd{}, f, "t1")
	expectCode(t, exitcode.UserError, code, stderr)
	expectOutput(t, "stderr", "error: content: required\n", stderr)
}

func TestShowCommand(t *testing.T) {
	f := newFixture("Worker")
	f.svc.AddTask("t1", "Ship", service.StatusBacklog)

	stdout, stderr, code := runCommand(t, &commands.ShowCmd{}, f, "t1")
	expectCode(t, exitcode.Success, code, stderr)
	expectOutput(t, "stdout", "Ship\nid:        t1\nstatus:    Backlog\npriority:  Medium\n", stdout)

	_, stderr, code = runCommand(t, &commands.ShowCmd{}, f)
	expectCode(t, exitcode.UserError, code, stderr)
}

func TestWorkersCommand(t *testing.T) {
	f := newFixture("Assigner")
	stdout, stderr, code := runCommand(t, &commands.WorkersCmd{}, f)
	expectCode(t, exitcode.Success, code, stderr)
	expectOutput(t, "stdout", "no workers found\n", stdout)

	f.svc.AddWorker("w1", "Grace", "Hopper")
	stdout, _, _ = runCommand(t, &commands.WorkersCmd{}, f)
	expectOutput(t, "stdout", "w1  Grace Hopper <grace@example.com>\n", stdout)
}

func TestAnalyticsCommand(t *testing.T) {
	f := newFixture("Worker")
	f.svc.WorkerData = service.WorkerAnalytics{
		TasksByStatus: []service.StatusCount{{Status: service.StatusDone, Count: 4}},
	}

	stdout, stderr, code := runCommand(t, &commands.AnalyticsCmd{}, f, "--range", "thisMonth")
	expectCode(t, exitcode.Success, code, stderr)
	expectOutput(t, "stdout", "------------\nBy status\n------------\n  Done        4\n", stdout)
	if f.svc.CallCount("WorkerAnalytics") != 1 {
		t.Errorf("expected worker analytics, got %v", f.svc.Calls())
	}

	_, stderr, code = runCommand(t, &commands.AnalyticsCmd{}, f, "--range", "forever")
	expectCode(t, exitcode.UserError, code, stderr)
	expectOutput(t, "stderr", "error: invalid range: forever\n", stderr)
}

func TestHomeCommand_Assigner(t *testing.T) {
	f := newFixture("Assigner")
	f.svc.Overview = service.AssigneeInfo{Counts: service.TaskCounts{Done: 1, InProgress: 2}}
	f.svc.AddWorker("w1", "Grace", "Hopper")

	stdout, stderr, code := runCommand(t, &commands.HomeCmd{}, f)
	expectCode(t, exitcode.Success, code, stderr)
	expected := "AssigneeHome: Ada\n" +
		"done: 1  in progress: 2  overdue: 0\n" +
		"workers: 1\n"
	expectOutput(t, "stdout", expected, stdout)
}

func TestHomeCommand_BackendError(t *testing.T) {
	f := newFixture("Assigner")
	f.svc.AssigneeInfoErr = errors.New("boom")

	_, stderr, code := runCommand(t, &commands.HomeCmd{}, f)
	expectCode(t, exitcode.BackendError, code, stderr)
	expectOutput(t, "stderr", "error: boom\n", stderr)
}

func TestHomeCommand_Admin(t *testing.T) {
	f := newFixture("Admin")
	f.svc.AddTask("t1", "Ship", service.StatusDone)

	stdout, stderr, code := runCommand(t, &commands.HomeCmd{}, f)
	expectCode(t, exitcode.Success, code, stderr)
	if !strings.HasPrefix(stdout, "AdminHome: Ada\ntasks: 1  workers: 0\n") {
		t.Errorf("unexpected admin home %q", stdout)
	}
}

func TestPushCommand(t *testing.T) {
	f := newFixture("Worker")
	stdout, stderr, code := runCommand(t, &commands.PushCmd{}, f, "device-1")
	expectCode(t, exitcode.Success, code, stderr)
	expectOutput(t, "stdout", "FCM token updated\n", stdout)
	if got := f.svc.PushTokens(); len(got) != 1 || got[0] != "device-1" {
		t.Errorf("unexpected push tokens %v", got)
	}
}
