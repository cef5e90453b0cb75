package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"taskops-controlplane/pkg/week"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// 2026-08-26 is a Wednesday; its week runs Mon 24th .. Sun 30th.
var today = date(2026, time.August, 26)

func TestOverdueLaw(t *testing.T) {
	cases := []struct {
		name    string
		task    Task
		overdue bool
	}{
		{"past and pending", Task{TargetDate: today.AddDate(0, 0, -1), Status: StatusPending}, true},
		{"past and in progress", Task{TargetDate: today.AddDate(0, 0, -2), Status: StatusInProgress}, true},
		{"past but done", Task{TargetDate: today.AddDate(0, 0, -10), Status: StatusDone}, false},
		{"due today", Task{TargetDate: today, Status: StatusPending}, false},
		{"future", Task{TargetDate: today.AddDate(0, 0, 3), Status: StatusPending}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.overdue, Overdue(tc.task, today))
		})
	}
}

func TestRiskTiers(t *testing.T) {
	for days := 1; days <= 3; days++ {
		task := Task{TargetDate: today.AddDate(0, 0, -days), Status: StatusPending}
		require.Equal(t, RiskLow, Risk(task, today), "lateDays=%d", days)
	}
	for _, days := range []int{4, 5, 30} {
		task := Task{TargetDate: today.AddDate(0, 0, -days), Status: StatusPending}
		require.Equal(t, RiskHigh, Risk(task, today), "lateDays=%d", days)
	}

	require.Equal(t, RiskNone, Risk(Task{TargetDate: today, Status: StatusPending}, today))
	require.Equal(t, RiskNone, Risk(Task{TargetDate: today.AddDate(0, 0, -5), Status: StatusDone}, today))
}

func TestOverdueInvoiceScenario(t *testing.T) {
	task := Task{
		Description: "Fix invoice",
		Client:      "Acme",
		TargetDate:  today.AddDate(0, 0, -5),
		Status:      StatusPending,
		Assignee:    "Julio Yroba",
	}
	require.True(t, Overdue(task, today))
	require.Equal(t, 5, LateDays(task, today))
	require.Equal(t, RiskHigh, Risk(task, today))
}

func TestBacklogPartition(t *testing.T) {
	tasks := []Task{
		{ID: "1", TargetDate: date(2026, time.August, 28), Status: StatusPending},   // this week
		{ID: "2", TargetDate: date(2026, time.August, 30), Status: StatusPending},   // Sunday, still this week
		{ID: "3", TargetDate: date(2026, time.August, 31), Status: StatusPending},   // next Monday
		{ID: "4", TargetDate: date(2026, time.September, 4), Status: StatusDone},    // beyond but done
		{ID: "5", TargetDate: date(2026, time.September, 10), Status: StatusInProgress},
	}
	got := Backlog(tasks, today)
	require.Len(t, got, 2)
	require.Equal(t, "3", got[0].ID)
	require.Equal(t, "5", got[1].ID)
}

func TestRosterAvailability(t *testing.T) {
	operators := []string{"Julio Yroba", "José Quintero", "Matías Riquelme"}
	tasks := []Task{
		{ID: "1", Assignee: "Julio Yroba", TargetDate: today, Status: StatusPending},
		{ID: "2", Assignee: "José Quintero", TargetDate: today.AddDate(0, 0, 1), Status: StatusPending},
		{ID: "3", Assignee: "Matías Riquelme", TargetDate: today, Status: StatusDone},
	}

	avail := RosterAvailability(operators, tasks, today)
	require.Len(t, avail, 3)

	byName := map[string]Availability{}
	for _, a := range avail {
		byName[a.Operator] = a
	}

	require.False(t, byName["Julio Yroba"].Available)
	require.Len(t, byName["Julio Yroba"].TasksToday, 1)
	// A task due tomorrow leaves the operator available today.
	require.True(t, byName["José Quintero"].Available)
	// Status does not matter for availability, only the target date.
	require.False(t, byName["Matías Riquelme"].Available)
}

func TestSummarizeWeek(t *testing.T) {
	tasks := []Task{
		{TargetDate: date(2026, time.August, 24), Status: StatusDone},
		{TargetDate: date(2026, time.August, 25), Status: StatusPending},       // overdue by 1
		{TargetDate: date(2026, time.August, 26), Status: StatusInProgress},
		{TargetDate: date(2026, time.August, 28), Status: StatusPending},
		{TargetDate: date(2026, time.August, 29), Status: StatusPending},       // Saturday, outside Mon..Fri
		{TargetDate: date(2026, time.September, 2), Status: StatusInProgress},  // next week
	}

	s := SummarizeWeek(tasks, today)
	require.Equal(t, WeekSummary{Done: 1, InProgress: 1, Pending: 2, Overdue: 1, Total: 4}, s)
}

func TestWorkloadByAssignee(t *testing.T) {
	operators := []string{"Julio Yroba", "José Quintero", "Matías Riquelme"}
	tasks := []Task{
		{Assignee: "Julio Yroba", TargetDate: today},
		{Assignee: "Julio Yroba", TargetDate: today},
		{Assignee: "José Quintero", TargetDate: today.AddDate(0, 0, 1)},
		{Assignee: "Someone Else", TargetDate: today},
	}

	w := WorkloadByAssignee(operators, tasks, today)
	require.Equal(t, 2, w["Julio Yroba"])
	require.Equal(t, 0, w["José Quintero"])
	require.Equal(t, 0, w["Matías Riquelme"])
	_, tracked := w["Someone Else"]
	require.False(t, tracked)
}

func TestInWindowUsesDateOnly(t *testing.T) {
	w := week.Operating(today)
	noon := time.Date(2026, time.August, 30, 12, 0, 0, 0, time.UTC)
	require.True(t, InWindow(Task{TargetDate: noon}, w))
}
