package commands

import (
	"flag"
	"fmt"
	"strings"

	"taskdesk/internal/service"
)

// optString is a string flag that remembers whether it was given.
type optString struct {
	value string
	set   bool
}

func (o *optString) String() string { return o.value }

func (o *optString) Set(s string) error {
	o.value, o.set = s, true
	return nil
}

// ptr returns nil when the flag was not given.
func (o *optString) ptr() *string {
	if !o.set {
		return nil
	}
	v := o.value
	return &v
}

// assigneeList collects repeated --assignee flags.
type assigneeList []service.Assignee

func (a *assigneeList) String() string {
	ids := make([]string, len(*a))
	for i, x := range *a {
		ids[i] = x.UserID
	}
	return strings.Join(ids, ",")
}

func (a *assigneeList) Set(s string) error {
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			*a = append(*a, service.Assignee{UserID: id})
		}
	}
	return nil
}

// filterFlags are the task list filters shared by tasks and mytasks.
type filterFlags struct {
	sortBy    string
	priority  string
	status    string
	createdAt string
	search    string
}

func (f *filterFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.sortBy, "sort", "", "")
	fs.StringVar(&f.priority, "priority", "", "")
	fs.StringVar(&f.status, "status", "", "")
	fs.StringVar(&f.createdAt, "created", "", "")
	fs.StringVar(&f.search, "search", "", "")
}

func (f *filterFlags) filter() (service.TaskFilter, error) {
	tf := service.TaskFilter{
		SortBy:    strings.TrimSpace(f.sortBy),
		CreatedAt: strings.TrimSpace(f.createdAt),
		Search:    strings.TrimSpace(f.search),
	}
	if f.priority != "" {
		p, ok := service.ParsePriority(f.priority)
		if !ok {
			return tf, fmt.Errorf("invalid priority: %s", f.priority)
		}
		tf.Priority = p
	}
	if f.status != "" {
		s, ok := service.ParseStatus(f.status)
		if !ok {
			return tf, fmt.Errorf("invalid status: %s", f.status)
		}
		tf.Status = s
	}
	return tf, nil
}
