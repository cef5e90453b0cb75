package kpi

import (
	"context"
	"sort"
	"time"

	"taskops-controlplane/pkg/db/option"
	"taskops-controlplane/pkg/errutil"
	"taskops-controlplane/pkg/repository"
	"taskops-controlplane/pkg/week"
	"taskops-controlplane/services/identity"
	"taskops-controlplane/services/task"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TaskSource lists tasks for autonomy derivation.
type TaskSource interface {
	List(ctx context.Context, f task.Filter) ([]task.Task, error)
}

// OperatorRoster resolves valid KPI subjects.
type OperatorRoster interface {
	OperatorNames(ctx context.Context) ([]string, error)
}

type Service struct {
	db     *gorm.DB
	node   *snowflake.Node
	repo   repository.Repository[WeeklyKPIRecord]
	tasks  TaskSource
	roster OperatorRoster
}

type ServiceParams struct {
	fx.In
	DB     *gorm.DB
	Node   *snowflake.Node
	Tasks  TaskSource
	Roster OperatorRoster
}

func NewService(p ServiceParams) *Service {
	return &Service{
		db:     p.DB,
		node:   p.Node,
		repo:   repository.ProvideStore[WeeklyKPIRecord](p.DB),
		tasks:  p.Tasks,
		roster: p.Roster,
	}
}

type SubmitInput struct {
	Person              string
	WeekStart           time.Time
	Commendations       int
	Complaints          int
	OrderScore          float64
	ClientResponseScore float64
}

type QueryInput struct {
	Start  *time.Time
	End    *time.Time
	Person string
}

// DeriveAutonomy computes the completed fraction of the person's tasks whose
// target date falls in the Monday..Sunday week of weekStart, as a
// percentage rounded to two decimals. Zero tasks yield zero.
func (s *Service) DeriveAutonomy(ctx context.Context, person string, weekStart time.Time) (float64, error) {
	tasks, err := s.tasks.List(ctx, task.Filter{Assignee: person})
	if err != nil {
		return 0, err
	}

	window := week.Operating(weekStart)
	var total, done int
	for _, t := range tasks {
		if !task.InWindow(t, window) {
			continue
		}
		total++
		if t.Status == task.StatusDone {
			done++
		}
	}

	if total == 0 {
		return 0, nil
	}
	return round2(float64(done) / float64(total) * 100), nil
}

// Submit records one person-week of indicators. Autonomy is derived from the
// task store at this moment and frozen into the record; a submission for an
// existing (person, weekStart) replaces the prior record in full.
func (s *Service) Submit(ctx context.Context, actor identity.Identity, in SubmitInput) (*WeeklyKPIRecord, error) {
	if !actor.IsManager() {
		return nil, errutil.Forbidden("only managers may submit KPI records")
	}

	var details []errutil.Detail
	if in.Commendations < 0 {
		details = append(details, errutil.Detail{Field: "commendations", Message: "must not be negative"})
	}
	if in.Complaints < 0 {
		details = append(details, errutil.Detail{Field: "complaints", Message: "must not be negative"})
	}
	if in.OrderScore < 0 || in.OrderScore > 100 {
		details = append(details, errutil.Detail{Field: "orderScore", Message: "must be between 0 and 100"})
	}
	if in.ClientResponseScore < 0 || in.ClientResponseScore > 100 {
		details = append(details, errutil.Detail{Field: "clientResponseScore", Message: "must be between 0 and 100"})
	}
	if len(details) > 0 {
		return nil, errutil.ValidationFailed("invalid KPI submission", errutil.WithDetails(details...))
	}

	if err := s.validatePerson(ctx, in.Person); err != nil {
		return nil, err
	}

	weekStart := week.Monday(in.WeekStart)

	autonomy, err := s.DeriveAutonomy(ctx, in.Person, weekStart)
	if err != nil {
		zap.L().Error("failed to derive autonomy", zap.String("person", in.Person), zap.Error(err))
		return nil, errutil.Internal("failed to derive autonomy", errutil.WithErr(err))
	}

	record := &WeeklyKPIRecord{
		Person:              in.Person,
		WeekStart:           weekStart,
		Commendations:       in.Commendations,
		Complaints:          in.Complaints,
		OrderScore:          in.OrderScore,
		ClientResponseScore: in.ClientResponseScore,
		AutonomyScore:       autonomy,
		ComplianceScore: ComputeCompliance(Indicators{
			Commendations:       float64(in.Commendations),
			Complaints:          float64(in.Complaints),
			OrderScore:          in.OrderScore,
			ClientResponseScore: in.ClientResponseScore,
			AutonomyScore:       autonomy,
		}),
	}

	existing, err := s.repo.FindOne(ctx, &WeeklyKPIRecord{Person: in.Person, WeekStart: weekStart})
	if err != nil {
		zap.L().Error("failed to query KPI record", zap.String("person", in.Person), zap.Error(err))
		return nil, errutil.Internal("failed to query KPI record", errutil.WithErr(err))
	}

	if existing != nil {
		record.ID = existing.ID
		if err := s.repo.Update(ctx, existing.ID, map[string]any{
			"commendations":         record.Commendations,
			"complaints":            record.Complaints,
			"order_score":           record.OrderScore,
			"client_response_score": record.ClientResponseScore,
			"autonomy_score":        record.AutonomyScore,
			"compliance_score":      record.ComplianceScore,
		}); err != nil {
			zap.L().Error("failed to replace KPI record", zap.String("person", in.Person), zap.Error(err))
			return nil, errutil.Internal("failed to replace KPI record", errutil.WithErr(err))
		}
	} else {
		record.ID = s.node.Generate().String()
		if err := s.repo.Create(ctx, record); err != nil {
			zap.L().Error("failed to create KPI record", zap.String("person", in.Person), zap.Error(err))
			return nil, errutil.Internal("failed to create KPI record", errutil.WithErr(err))
		}
	}

	zap.L().Info("KPI record submitted",
		zap.String("person", record.Person),
		zap.Time("week_start", record.WeekStart),
		zap.Float64("compliance", record.ComplianceScore),
	)
	return record, nil
}

// Query returns records whose weekStart lies inside the optional range,
// ordered by week descending, optionally for one person.
func (s *Service) Query(ctx context.Context, in QueryInput) ([]WeeklyKPIRecord, error) {
	if in.Start != nil && in.End != nil && in.End.Before(*in.Start) {
		return nil, errutil.ValidationFailed("invalid date range", errutil.WithDetails(
			errutil.Detail{Field: "end", Message: "must not precede start"},
		))
	}

	var start, end *time.Time
	if in.Start != nil {
		d := week.Day(*in.Start)
		start = &d
	}
	if in.End != nil {
		d := week.Day(*in.End)
		end = &d
	}

	query := &WeeklyKPIRecord{Person: in.Person}
	rows, err := s.repo.Find(ctx, query,
		option.DateRange("week_start", start, end),
		option.Order("week_start DESC"),
	)
	if err != nil {
		zap.L().Error("failed to query KPI records", zap.Error(err))
		return nil, errutil.Internal("failed to query KPI records", errutil.WithErr(err))
	}

	out := make([]WeeklyKPIRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row)
	}
	return out, nil
}

// SeriesPoint is one week of the two derived reporting views.
type SeriesPoint struct {
	WeekStart       time.Time `json:"weekStart"`
	ComplianceScore float64   `json:"complianceScore"`
	AutonomyScore   float64   `json:"autonomyScore"`
}

// Series assembles the per-person time series of compliance and autonomy
// over weekStart, ascending for charting.
func (s *Service) Series(ctx context.Context, person string, start, end *time.Time) ([]SeriesPoint, error) {
	records, err := s.Query(ctx, QueryInput{Start: start, End: end, Person: person})
	if err != nil {
		return nil, err
	}

	points := make([]SeriesPoint, 0, len(records))
	for _, r := range records {
		points = append(points, SeriesPoint{
			WeekStart:       r.WeekStart,
			ComplianceScore: r.ComplianceScore,
			AutonomyScore:   r.AutonomyScore,
		})
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].WeekStart.Before(points[j].WeekStart)
	})
	return points, nil
}

func (s *Service) validatePerson(ctx context.Context, person string) error {
	names, err := s.roster.OperatorNames(ctx)
	if err != nil {
		return errutil.Internal("failed to resolve operator roster", errutil.WithErr(err))
	}
	for _, name := range names {
		if name == person {
			return nil
		}
	}
	return errutil.ValidationFailed("invalid KPI submission", errutil.WithDetails(
		errutil.Detail{Field: "person", Message: "must be one of the operator roster"},
	))
}
