package task

import (
	"context"
	"strings"
	"sync"
	"time"

	"taskops-controlplane/pkg/db/option"
	"taskops-controlplane/pkg/errutil"
	"taskops-controlplane/pkg/repository"
	"taskops-controlplane/pkg/week"
	"taskops-controlplane/services/identity"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OperatorRoster resolves the display names that are valid assignees.
type OperatorRoster interface {
	OperatorNames(ctx context.Context) ([]string, error)
}

type Service struct {
	db     *gorm.DB
	node   *snowflake.Node
	repo   repository.Repository[Task]
	roster OperatorRoster

	// Comment appends are read-modify-write over the whole stored sequence.
	// Serializing them per task id closes the lost-update window between
	// concurrent commenters.
	commentMu    sync.Mutex
	commentLocks map[string]*sync.Mutex
}

type ServiceParams struct {
	fx.In
	DB     *gorm.DB
	Node   *snowflake.Node
	Roster OperatorRoster
}

func NewService(p ServiceParams) *Service {
	return &Service{
		db:           p.DB,
		node:         p.Node,
		repo:         repository.ProvideStore[Task](p.DB),
		roster:       p.Roster,
		commentLocks: make(map[string]*sync.Mutex),
	}
}

type CreateInput struct {
	Description string
	Client      string
	TargetDate  time.Time
	Status      Status
	Assignee    string
}

type UpdateInput struct {
	Description *string
	Client      *string
	TargetDate  *time.Time
	Assignee    *string
}

// List returns tasks in id order with the filter predicates applied.
func (s *Service) List(ctx context.Context, f Filter) ([]Task, error) {
	rows, err := s.repo.Find(ctx, &Task{}, option.Order("id ASC"))
	if err != nil {
		zap.L().Error("failed to list tasks", zap.Error(err))
		return nil, errutil.Internal("failed to list tasks", errutil.WithErr(err))
	}

	tasks := make([]Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, *row)
	}
	return Apply(tasks, f), nil
}

func (s *Service) Get(ctx context.Context, id string) (*Task, error) {
	t, err := s.repo.FindOne(ctx, &Task{ID: id})
	if err != nil {
		zap.L().Error("failed to get task", zap.String("task_id", id), zap.Error(err))
		return nil, errutil.Internal("failed to get task", errutil.WithErr(err))
	}
	if t == nil {
		return nil, errutil.NotFound("task not found")
	}
	return t, nil
}

// Create validates the input, forces the author to the acting identity and
// assigns a store-owned id. A past target date is legal and only logged.
func (s *Service) Create(ctx context.Context, actor identity.Identity, in CreateInput) (*Task, error) {
	if !CanCreate(actor) {
		return nil, errutil.Forbidden("not allowed to create tasks")
	}

	description := strings.TrimSpace(in.Description)
	client := strings.TrimSpace(in.Client)

	var details []errutil.Detail
	if description == "" {
		details = append(details, errutil.Detail{Field: "description", Message: "must not be empty"})
	}
	if client == "" {
		details = append(details, errutil.Detail{Field: "client", Message: "must not be empty"})
	}
	if !creationStatuses[in.Status] {
		details = append(details, errutil.Detail{Field: "status", Message: "a task cannot be created already done"})
	}
	if len(details) > 0 {
		return nil, errutil.ValidationFailed("invalid task", errutil.WithDetails(details...))
	}

	if err := s.validateAssignee(ctx, in.Assignee); err != nil {
		return nil, err
	}

	targetDate := week.Day(in.TargetDate)
	if targetDate.Before(week.Day(time.Now())) {
		zap.L().Warn("creating task with past target date",
			zap.String("author", actor.DisplayName),
			zap.Time("target_date", targetDate),
		)
	}

	t := &Task{
		ID:          s.node.Generate().String(),
		Description: description,
		Client:      client,
		TargetDate:  targetDate,
		Status:      in.Status,
		Author:      actor.DisplayName,
		Assignee:    in.Assignee,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		zap.L().Error("failed to create task", zap.Error(err))
		return nil, errutil.Internal("failed to create task", errutil.WithErr(err))
	}

	zap.L().Info("task created",
		zap.String("task_id", t.ID),
		zap.String("author", t.Author),
		zap.String("assignee", t.Assignee),
	)
	return t, nil
}

// Update edits description, client, target date and assignee. Status and
// author are out of its reach; nil fields are left untouched.
func (s *Service) Update(ctx context.Context, actor identity.Identity, id string, in UpdateInput) error {
	t, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !CanEdit(actor, *t) {
		return errutil.Forbidden("not allowed to edit this task")
	}

	updates := map[string]any{}
	if in.Description != nil {
		description := strings.TrimSpace(*in.Description)
		if description == "" {
			return errutil.ValidationFailed("invalid task", errutil.WithDetails(
				errutil.Detail{Field: "description", Message: "must not be empty"},
			))
		}
		updates["description"] = description
	}
	if in.Client != nil {
		client := strings.TrimSpace(*in.Client)
		if client == "" {
			return errutil.ValidationFailed("invalid task", errutil.WithDetails(
				errutil.Detail{Field: "client", Message: "must not be empty"},
			))
		}
		updates["client"] = client
	}
	if in.TargetDate != nil {
		updates["target_date"] = week.Day(*in.TargetDate)
	}
	if in.Assignee != nil {
		if err := s.validateAssignee(ctx, *in.Assignee); err != nil {
			return err
		}
		updates["assignee"] = *in.Assignee
	}
	if len(updates) == 0 {
		return nil
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		if err == gorm.ErrRecordNotFound {
			return errutil.NotFound("task not found")
		}
		zap.L().Error("failed to update task", zap.String("task_id", id), zap.Error(err))
		return errutil.Internal("failed to update task", errutil.WithErr(err))
	}
	return nil
}

// ChangeStatus moves the task to any status; the transition graph is
// complete, reopening a done task included.
func (s *Service) ChangeStatus(ctx context.Context, actor identity.Identity, id string, status Status) error {
	if !status.Valid() {
		return errutil.ValidationFailed("invalid status", errutil.WithDetails(
			errutil.Detail{Field: "status", Message: "must be pending, in_progress or done"},
		))
	}

	t, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !CanChangeStatus(actor, *t) {
		return errutil.Forbidden("not allowed to change status on this task")
	}

	if err := s.repo.Update(ctx, id, map[string]any{"status": status}); err != nil {
		if err == gorm.ErrRecordNotFound {
			return errutil.NotFound("task not found")
		}
		zap.L().Error("failed to change task status", zap.String("task_id", id), zap.Error(err))
		return errutil.Internal("failed to change task status", errutil.WithErr(err))
	}

	zap.L().Info("task status changed",
		zap.String("task_id", id),
		zap.String("actor", actor.DisplayName),
		zap.String("status", string(status)),
	)
	return nil
}

func (s *Service) Delete(ctx context.Context, actor identity.Identity, id string) error {
	if !CanDelete(actor) {
		return errutil.Forbidden("only managers may delete tasks")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return errutil.NotFound("task not found")
		}
		zap.L().Error("failed to delete task", zap.String("task_id", id), zap.Error(err))
		return errutil.Internal("failed to delete task", errutil.WithErr(err))
	}

	zap.L().Info("task deleted", zap.String("task_id", id), zap.String("actor", actor.DisplayName))
	return nil
}

// AddComment appends an immutable comment stamped with the acting identity
// and the current time, then persists the whole sequence.
func (s *Service) AddComment(ctx context.Context, actor identity.Identity, id, text string) error {
	if !CanComment(actor) {
		return errutil.Forbidden("not allowed to comment on this task")
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return errutil.ValidationFailed("invalid comment", errutil.WithDetails(
			errutil.Detail{Field: "text", Message: "must not be empty"},
		))
	}

	unlock := s.lockComments(id)
	defer unlock()

	t, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	comments, err := t.CommentList()
	if err != nil {
		zap.L().Error("failed to decode comments", zap.String("task_id", id), zap.Error(err))
		return errutil.Internal("failed to decode comments", errutil.WithErr(err))
	}

	comments = append(comments, Comment{
		Author:    actor.DisplayName,
		Timestamp: time.Now().Truncate(time.Second),
		Text:      text,
	})

	raw, err := marshalComments(comments)
	if err != nil {
		return errutil.Internal("failed to encode comments", errutil.WithErr(err))
	}

	if err := s.repo.Update(ctx, id, map[string]any{"comments": raw}); err != nil {
		if err == gorm.ErrRecordNotFound {
			return errutil.NotFound("task not found")
		}
		zap.L().Error("failed to append comment", zap.String("task_id", id), zap.Error(err))
		return errutil.Internal("failed to append comment", errutil.WithErr(err))
	}
	return nil
}

func (s *Service) lockComments(id string) func() {
	s.commentMu.Lock()
	mu, ok := s.commentLocks[id]
	if !ok {
		mu = &sync.Mutex{}
		s.commentLocks[id] = mu
	}
	s.commentMu.Unlock()

	mu.Lock()
	return mu.Unlock
}

func (s *Service) validateAssignee(ctx context.Context, assignee string) error {
	names, err := s.roster.OperatorNames(ctx)
	if err != nil {
		return errutil.Internal("failed to resolve operator roster", errutil.WithErr(err))
	}
	for _, name := range names {
		if name == assignee {
			return nil
		}
	}
	return errutil.ValidationFailed("invalid task", errutil.WithDetails(
		errutil.Detail{Field: "assignee", Message: "must be one of the operator roster"},
	))
}
