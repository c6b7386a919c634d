package service

import "time"

// Priority is a task priority.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Status is a task workflow status.
type Status string

const (
	StatusDone       Status = "Done"
	StatusInProgress Status = "In Progress"
	StatusBacklog    Status = "Backlog"
	StatusArchived   Status = "Archived"
)

// Priorities lists valid priorities in display order.
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

// Statuses lists valid statuses in display order.
var Statuses = []Status{StatusBacklog, StatusInProgress, StatusDone, StatusArchived}

// ParsePriority matches s case-insensitively against known priorities.
func ParsePriority(s string) (Priority, bool) {
	for _, p := range Priorities {
		if equalFold(string(p), s) {
			return p, true
		}
	}
	return "", false
}

// ParseStatus matches s case-insensitively against known statuses.
// "inprogress" and "in-progress" are accepted for "In Progress".
func ParseStatus(s string) (Status, bool) {
	for _, st := range Statuses {
		if equalFold(string(st), s) || equalFold(compact(string(st)), compact(s)) {
			return st, true
		}
	}
	return "", false
}

// Permissions is the capability set attached to a profile.
type Permissions struct {
	CanAddNotes         bool `json:"canAddNotes"`
	CanAssignTasks      bool `json:"canAssignTasks"`
	CanCreateTasks      bool `json:"canCreateTasks"`
	CanUpdateTaskStatus bool `json:"canUpdateTaskStatus"`
	CanViewAllTasks     bool `json:"canViewAllTasks"`
}

// Action names a permission-gated capability.
type Action string

const (
	ActionAddNotes         Action = "addNotes"
	ActionAssignTasks      Action = "assignTasks"
	ActionCreateTasks      Action = "createTasks"
	ActionUpdateTaskStatus Action = "updateTaskStatus"
	ActionViewAllTasks     Action = "viewAllTasks"
)

// Actions lists every Action in display order.
var Actions = []Action{
	ActionAddNotes, ActionAssignTasks, ActionCreateTasks,
	ActionUpdateTaskStatus, ActionViewAllTasks,
}

// Allows reports whether the permission set grants a.
func (p Permissions) Allows(a Action) bool {
	switch a {
	case ActionAddNotes:
		return p.CanAddNotes
	case ActionAssignTasks:
		return p.CanAssignTasks
	case ActionCreateTasks:
		return p.CanCreateTasks
	case ActionUpdateTaskStatus:
		return p.CanUpdateTaskStatus
	case ActionViewAllTasks:
		return p.CanViewAllTasks
	}
	return false
}

// Profile is the signed-in user's identity as issued by the backend.
// Roles is ordered; Roles[0] is the primary role.
type Profile struct {
	ID          string      `json:"_id"`
	Email       string      `json:"email"`
	FirstName   string      `json:"firstName"`
	LastName    string      `json:"lastName"`
	Roles       []string    `json:"roles"`
	Permissions Permissions `json:"permissions"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// PrimaryRole returns Roles[0], or "" if there are no roles.
func (p Profile) PrimaryRole() string {
	if len(p.Roles) == 0 {
		return ""
	}
	return p.Roles[0]
}

// FullName joins first and last name.
func (p Profile) FullName() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

// Assignee is a user a task is assigned to.
type Assignee struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

// Comment is a note attached to a task.
type Comment struct {
	ID        string    `json:"_id"`
	Content   string    `json:"content"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Task is a backend-owned task record.
type Task struct {
	ID          string     `json:"_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Assignees   []Assignee `json:"assignees"`
	Priority    Priority   `json:"priority"`
	Status      Status     `json:"status"`
	Deadline    string     `json:"deadline,omitempty"`
	OwnerID     string     `json:"ownerId,omitempty"`
	OwnerName   string     `json:"ownerName,omitempty"`
	OwnerEmail  string     `json:"ownerEmail,omitempty"`
	Comments    []Comment  `json:"comments,omitempty"`
	IsArchived  bool       `json:"isArchived"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Worker is a user that tasks can be assigned to.
type Worker struct {
	ID        string `json:"_id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// TaskFilter narrows a task listing. Empty fields are not sent.
type TaskFilter struct {
	SortBy    string
	Priority  Priority
	Status    Status
	CreatedAt string // day filter, e.g. "Today"
	Search    string
}

// SignUpRequest is the payload for account creation.
type SignUpRequest struct {
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Email     string   `json:"email"`
	Password  string   `json:"password"`
	Roles     []string `json:"roles"`
}

// SignInRequest is the payload for sign-in.
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is the backend's answer to sign-in or sign-up.
// Token is empty when the backend issued none (sign-up usually).
type AuthResult struct {
	Message string
	Token   string
	Roles   []string
	User    Profile
}

// CreateTaskRequest is the payload for task creation.
type CreateTaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Assignees   []Assignee `json:"assignees"`
	Priority    Priority   `json:"priority"`
	Status      Status     `json:"status"`
	Deadline    string     `json:"deadline"`
}

// EditTaskRequest is a partial task update; nil fields are left unchanged.
type EditTaskRequest struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Assignees   []Assignee `json:"assignees,omitempty"`
	Priority    *Priority  `json:"priority,omitempty"`
	Status      *Status    `json:"status,omitempty"`
	Deadline    *string    `json:"deadline,omitempty"`
}

// Empty reports whether the request changes nothing.
func (r EditTaskRequest) Empty() bool {
	return r.Title == nil && r.Description == nil && r.Assignees == nil &&
		r.Priority == nil && r.Status == nil && r.Deadline == nil
}

// CommentRequest is the payload for adding a comment.
type CommentRequest struct {
	TaskID  string `json:"taskId"`
	Content string `json:"content"`
}

// AnalyticsRange is a reporting window understood by the analytics endpoints.
type AnalyticsRange string

const (
	RangeToday         AnalyticsRange = "today"
	RangeThisWeek      AnalyticsRange = "thisWeek"
	RangeThisMonth     AnalyticsRange = "thisMonth"
	RangeLastSixMonths AnalyticsRange = "lastSixMonths"
	RangeThisYear      AnalyticsRange = "thisYear"
	RangeAll           AnalyticsRange = "all"
)

// AnalyticsRanges lists valid ranges.
var AnalyticsRanges = []AnalyticsRange{RangeToday, RangeThisWeek, RangeThisMonth, RangeLastSixMonths, RangeThisYear, RangeAll}

// StatusCount is a count of tasks in one status.
type StatusCount struct {
	Count  int    `json:"count"`
	Status Status `json:"status"`
}

// PriorityCount is a count of tasks at one priority.
type PriorityCount struct {
	Count    int      `json:"count"`
	Priority Priority `json:"priority"`
}

// DayCount is a count of tasks on one calendar day.
type DayCount struct {
	Count int `json:"count"`
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

// WorkerCount is a count of tasks assigned to one worker.
type WorkerCount struct {
	Count  int    `json:"count"`
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

// AssignerCount is a count of tasks handed out by one assigner.
type AssignerCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// AssignerAnalytics aggregates the tasks an assigner owns.
type AssignerAnalytics struct {
	TasksByStatus          []StatusCount   `json:"tasksByStatus"`
	TasksByPriority        []PriorityCount `json:"tasksByPriority"`
	TaskCreationOverTime   []DayCount      `json:"taskCreationOverTime"`
	TasksAssignedToWorkers []WorkerCount   `json:"tasksAssignedToWorkers"`
}

// WorkerAnalytics aggregates the tasks assigned to a worker.
type WorkerAnalytics struct {
	TasksByStatus   []StatusCount   `json:"tasksByStatus"`
	TasksByPriority []PriorityCount `json:"tasksByPriority"`
	TasksOverTime   []DayCount      `json:"tasksOverTime"`
	TasksByAssigner []AssignerCount `json:"tasksByAssigner"`
}

// TaskSummary is the abbreviated task shape used on the assigner home screen.
type TaskSummary struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	Status      Status    `json:"status"`
	Deadline    string    `json:"deadline,omitempty"`
}

// TaskCounts are the headline counters on the assigner home screen.
type TaskCounts struct {
	Done       int `json:"done"`
	InProgress int `json:"inProgress"`
	Overdue    int `json:"overdue"`
}

// AssigneeInfo is the assigner home screen overview.
type AssigneeInfo struct {
	Counts       TaskCounts    `json:"counts"`
	LatestTasks  []TaskSummary `json:"latestTasks"`
	OverdueTasks []TaskSummary `json:"overdueTasks"`
}
