package task

import "strings"

// Filter composes the working-view predicates conjunctively. Search is a
// case-insensitive substring match over description OR client; assignee and
// status are independent exact-match predicates. Zero values mean "no
// constraint".
type Filter struct {
	Search   string
	Assignee string
	Status   Status
}

func (f Filter) Matches(t Task) bool {
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(t.Description), needle) &&
			!strings.Contains(strings.ToLower(t.Client), needle) {
			return false
		}
	}
	if f.Assignee != "" && t.Assignee != f.Assignee {
		return false
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	return true
}

// Apply filters a task collection, preserving order.
func Apply(tasks []Task, f Filter) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Matches(t) {
			out = append(out, t)
		}
	}
	return out
}
