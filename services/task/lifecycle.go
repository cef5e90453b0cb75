package task

import (
	"time"

	"taskops-controlplane/pkg/week"
)

// RiskTier classifies how far past its target date an overdue task is.
type RiskTier string

const (
	RiskNone RiskTier = ""
	RiskLow  RiskTier = "low"  // 1..3 days late
	RiskHigh RiskTier = "high" // more than 3 days late
)

// Overdue reports whether the task slipped: target date in the past and the
// task not done. Done tasks are never overdue however old they are.
func Overdue(t Task, today time.Time) bool {
	return week.Day(t.TargetDate).Before(week.Day(today)) && t.Status != StatusDone
}

// LateDays is the number of whole days past the target date. Zero or
// negative means not late.
func LateDays(t Task, today time.Time) int {
	return week.DaysBetween(t.TargetDate, today)
}

// Risk returns the overdue tier; a non-overdue task has no tier.
func Risk(t Task, today time.Time) RiskTier {
	if !Overdue(t, today) {
		return RiskNone
	}
	if LateDays(t, today) > 3 {
		return RiskHigh
	}
	return RiskLow
}

// Active reports whether the task still needs work.
func Active(t Task) bool {
	return t.Status != StatusDone
}

// InWindow reports whether the task's target date falls inside the window.
func InWindow(t Task, w week.Window) bool {
	return w.Contains(t.TargetDate)
}

// Backlog returns the active tasks targeted beyond the current operating
// week's Sunday, preserving input order.
func Backlog(tasks []Task, today time.Time) []Task {
	sunday := week.Operating(today).End
	var out []Task
	for _, t := range tasks {
		if Active(t) && week.Day(t.TargetDate).After(sunday) {
			out = append(out, t)
		}
	}
	return out
}

// OverdueTasks returns the overdue subset, preserving input order.
func OverdueTasks(tasks []Task, today time.Time) []Task {
	var out []Task
	for _, t := range tasks {
		if Overdue(t, today) {
			out = append(out, t)
		}
	}
	return out
}

// Availability is one operator's roster state for a given day: available
// means zero tasks targeted on that date.
type Availability struct {
	Operator   string `json:"operator"`
	Available  bool   `json:"available"`
	TasksToday []Task `json:"tasksToday"`
}

// RosterAvailability computes today's availability for each operator.
func RosterAvailability(operators []string, tasks []Task, today time.Time) []Availability {
	day := week.Day(today)
	out := make([]Availability, 0, len(operators))
	for _, op := range operators {
		entry := Availability{Operator: op, Available: true}
		for _, t := range tasks {
			if t.Assignee == op && week.Day(t.TargetDate).Equal(day) {
				entry.TasksToday = append(entry.TasksToday, t)
				entry.Available = false
			}
		}
		out = append(out, entry)
	}
	return out
}

// WeekSummary aggregates the Monday..Friday management view.
type WeekSummary struct {
	Done       int `json:"done"`
	InProgress int `json:"inProgress"`
	Pending    int `json:"pending"`
	Overdue    int `json:"overdue"`
	Total      int `json:"total"`
}

// SummarizeWeek counts the current business week's tasks by status, plus the
// overdue tasks inside that window.
func SummarizeWeek(tasks []Task, today time.Time) WeekSummary {
	window := week.Business(today)
	var s WeekSummary
	for _, t := range tasks {
		if !InWindow(t, window) {
			continue
		}
		s.Total++
		switch t.Status {
		case StatusDone:
			s.Done++
		case StatusInProgress:
			s.InProgress++
		case StatusPending:
			s.Pending++
		}
		if Overdue(t, today) {
			s.Overdue++
		}
	}
	return s
}

// WorkloadByAssignee counts tasks targeted on the given day per operator.
// Operators with no tasks that day appear with a zero count.
func WorkloadByAssignee(operators []string, tasks []Task, day time.Time) map[string]int {
	d := week.Day(day)
	out := make(map[string]int, len(operators))
	for _, op := range operators {
		out[op] = 0
	}
	for _, t := range tasks {
		if week.Day(t.TargetDate).Equal(d) {
			if _, ok := out[t.Assignee]; ok {
				out[t.Assignee]++
			}
		}
	}
	return out
}
