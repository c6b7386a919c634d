// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"taskdesk/internal/service"
)

const (
	// SectionSeparator is the separator line around section headers.
	SectionSeparator = "------------"

	dateLayout = "2006-01-02"
)

// FormatTask formats one task line.
// Format: "{ID}  {STATUS:<11}  {PRIORITY:<6}  {TITLE}[  due {DEADLINE}]\n"
func FormatTask(w io.Writer, task service.Task) {
	fmt.Fprintf(w, "%s  %-11s  %-6s  %s", task.ID, task.Status, task.Priority, normalizeTitle(task.Title))
	if task.Deadline != "" {
		fmt.Fprintf(w, "  due %s", task.Deadline)
	}
	fmt.Fprintln(w)
}

// FormatTaskDetail prints a task with its assignees and comments.
func FormatTaskDetail(w io.Writer, task service.Task) {
	fmt.Fprintf(w, "%s\n", normalizeTitle(task.Title))
	fmt.Fprintf(w, "id:        %s\n", task.ID)
	fmt.Fprintf(w, "status:    %s\n", task.Status)
	fmt.Fprintf(w, "priority:  %s\n", task.Priority)
	if task.Deadline != "" {
		fmt.Fprintf(w, "deadline:  %s\n", task.Deadline)
	}
	if task.OwnerName != "" {
		fmt.Fprintf(w, "owner:     %s\n", task.OwnerName)
	}
	if len(task.Assignees) > 0 {
		names := make([]string, len(task.Assignees))
		for i, a := range task.Assignees {
			names[i] = a.Email
			if names[i] == "" {
				names[i] = a.UserID
			}
		}
		fmt.Fprintf(w, "assignees: %s\n", strings.Join(names, ", "))
	}
	if d := strings.TrimSpace(task.Description); d != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, d)
	}
	if len(task.Comments) == 0 {
		return
	}
	FormatHeader(w, "Comments")
	for _, c := range task.Comments {
		author := c.UserName
		if author == "" {
			author = "unknown"
		}
		fmt.Fprintf(w, "%s  %s: %s\n", formatDate(c.CreatedAt), author, oneLine(c.Content))
	}
}

// FormatHeader formats a section header.
func FormatHeader(w io.Writer, title string) {
	fmt.Fprintln(w, SectionSeparator)
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, SectionSeparator)
}

// FormatWorker formats one assignable worker.
func FormatWorker(w io.Writer, worker service.Worker) {
	name := strings.TrimSpace(worker.FirstName + " " + worker.LastName)
	if name == "" {
		name = "(unnamed)"
	}
	fmt.Fprintf(w, "%s  %s <%s>\n", worker.ID, name, worker.Email)
}

// FormatProfile prints the signed-in user.
func FormatProfile(w io.Writer, p service.Profile, route string) {
	fmt.Fprintf(w, "%s <%s>\n", p.FullName(), p.Email)
	fmt.Fprintf(w, "roles:       %s\n", strings.Join(p.Roles, ", "))
	fmt.Fprintf(w, "home:        %s\n", route)
	var granted []string
	for _, a := range service.Actions {
		if p.Permissions.Allows(a) {
			granted = append(granted, string(a))
		}
	}
	if len(granted) == 0 {
		granted = []string{"none"}
	}
	fmt.Fprintf(w, "permissions: %s\n", strings.Join(granted, ", "))
}

// FormatAssigneeInfo prints the assigner overview.
func FormatAssigneeInfo(w io.Writer, info service.AssigneeInfo) {
	fmt.Fprintf(w, "done: %d  in progress: %d  overdue: %d\n",
		info.Counts.Done, info.Counts.InProgress, info.Counts.Overdue)
	formatSummaries(w, "Latest", info.LatestTasks)
	formatSummaries(w, "Overdue", info.OverdueTasks)
}

func formatSummaries(w io.Writer, title string, tasks []service.TaskSummary) {
	if len(tasks) == 0 {
		return
	}
	FormatHeader(w, title)
	for _, t := range tasks {
		fmt.Fprintf(w, "%-11s  %s", t.Status, normalizeTitle(t.Title))
		if t.Deadline != "" {
			fmt.Fprintf(w, "  due %s", t.Deadline)
		}
		fmt.Fprintln(w)
	}
}

// FormatStatusCounts prints one "status: n" line per bucket.
func FormatStatusCounts(w io.Writer, counts []service.StatusCount) {
	for _, c := range counts {
		fmt.Fprintf(w, "  %-11s %d\n", c.Status, c.Count)
	}
}

// FormatAssignerAnalytics prints assigner analytics.
func FormatAssignerAnalytics(w io.Writer, a service.AssignerAnalytics) {
	FormatHeader(w, "By status")
	FormatStatusCounts(w, a.TasksByStatus)
	formatPriorityCounts(w, a.TasksByPriority)
	formatDayCounts(w, "Created", a.TaskCreationOverTime)
	if len(a.TasksAssignedToWorkers) > 0 {
		FormatHeader(w, "By worker")
		for _, c := range a.TasksAssignedToWorkers {
			fmt.Fprintf(w, "  %-24s %d\n", c.Email, c.Count)
		}
	}
}

// FormatWorkerAnalytics prints worker analytics.
func FormatWorkerAnalytics(w io.Writer, a service.WorkerAnalytics) {
	FormatHeader(w, "By status")
	FormatStatusCounts(w, a.TasksByStatus)
	formatPriorityCounts(w, a.TasksByPriority)
	formatDayCounts(w, "Assigned", a.TasksOverTime)
	if len(a.TasksByAssigner) > 0 {
		FormatHeader(w, "By assigner")
		for _, c := range a.TasksByAssigner {
			fmt.Fprintf(w, "  %-24s %d\n", c.Name, c.Count)
		}
	}
}

func formatPriorityCounts(w io.Writer, counts []service.PriorityCount) {
	if len(counts) == 0 {
		return
	}
	FormatHeader(w, "By priority")
	for _, c := range counts {
		fmt.Fprintf(w, "  %-11s %d\n", c.Priority, c.Count)
	}
}

func formatDayCounts(w io.Writer, title string, counts []service.DayCount) {
	if len(counts) == 0 {
		return
	}
	FormatHeader(w, title)
	for _, c := range counts {
		fmt.Fprintf(w, "  %04d-%02d-%02d  %d\n", c.Year, c.Month, c.Day, c.Count)
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "----------"
	}
	return t.Format(dateLayout)
}

// normalizeTitle normalizes a task title for display.
// Empty or whitespace-only titles become "(untitled)".
func normalizeTitle(title string) string {
	title = oneLine(title)
	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}

// oneLine replaces line breaks with spaces.
func oneLine(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.ReplaceAll(s, "\n", " ")
}
