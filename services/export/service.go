package export

import (
	"context"
	"io"
	"time"

	"taskops-controlplane/pkg/errutil"
	"taskops-controlplane/pkg/week"
	"taskops-controlplane/services/task"

	"go.uber.org/fx"
)

// TaskSource lists tasks to bound and export.
type TaskSource interface {
	List(ctx context.Context, f task.Filter) ([]task.Task, error)
}

type Service struct {
	tasks TaskSource
}

type ServiceParams struct {
	fx.In
	Tasks TaskSource
}

func NewService(p ServiceParams) *Service {
	return &Service{tasks: p.Tasks}
}

// Tasks returns the tasks whose target date falls inside [start, end].
func (s *Service) Tasks(ctx context.Context, start, end time.Time) ([]task.Task, error) {
	if week.Day(end).Before(week.Day(start)) {
		return nil, errutil.ValidationFailed("invalid date range", errutil.WithDetails(
			errutil.Detail{Field: "end", Message: "must not precede start"},
		))
	}

	all, err := s.tasks.List(ctx, task.Filter{})
	if err != nil {
		return nil, err
	}

	window := week.Window{Start: week.Day(start), End: week.Day(end)}
	var out []task.Task
	for _, t := range all {
		if window.Contains(t.TargetDate) {
			out = append(out, t)
		}
	}
	return out, nil
}

// CSV writes the bounded collection as CSV.
func (s *Service) CSV(ctx context.Context, w io.Writer, start, end time.Time) error {
	tasks, err := s.Tasks(ctx, start, end)
	if err != nil {
		return err
	}
	return WriteCSV(w, tasks)
}

// XLSX writes the bounded collection as a spreadsheet.
func (s *Service) XLSX(ctx context.Context, w io.Writer, start, end time.Time) error {
	tasks, err := s.Tasks(ctx, start, end)
	if err != nil {
		return err
	}
	return WriteXLSX(w, tasks)
}

var Module = fx.Module("export.module",
	fx.Provide(
		NewService,
		provideTaskSource,
	),
)

func provideTaskSource(svc *task.Service) TaskSource {
	return svc
}
