package httpapi

import (
	"net/http"
	"sort"
	"time"

	"taskops-controlplane/pkg/errutil"
	"taskops-controlplane/services/export"
	"taskops-controlplane/services/identity"
	"taskops-controlplane/services/kpi"
	"taskops-controlplane/services/task"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

const dateLayout = "2006-01-02"

type Handler struct {
	identity *identity.Service
	tasks    *task.Service
	kpis     *kpi.Service
	exports  *export.Service
}

type HandlerParams struct {
	fx.In
	Identity *identity.Service
	Tasks    *task.Service
	KPIs     *kpi.Service
	Exports  *export.Service
}

func NewHandler(p HandlerParams) *Handler {
	return &Handler{
		identity: p.Identity,
		tasks:    p.Tasks,
		kpis:     p.KPIs,
		exports:  p.Exports,
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type identityResponse struct {
	Username    string        `json:"username"`
	DisplayName string        `json:"displayName"`
	Role        identity.Role `json:"role"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errutil.BadRequest("invalid login payload", errutil.WithErr(err)))
		return
	}

	id, err := h.identity.Verify(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, identityResponse{
		Username:    id.Username,
		DisplayName: id.DisplayName,
		Role:        id.Role,
	})
}

type taskResponse struct {
	ID          string         `json:"id"`
	Description string         `json:"description"`
	Client      string         `json:"client"`
	TargetDate  string         `json:"targetDate"`
	Status      task.Status    `json:"status"`
	Author      string         `json:"author"`
	Assignee    string         `json:"assignee"`
	Comments    []task.Comment `json:"comments"`
	Overdue     bool           `json:"overdue"`
	LateDays    int            `json:"lateDays,omitempty"`
	RiskTier    task.RiskTier  `json:"riskTier,omitempty"`
}

func toTaskResponse(t task.Task, today time.Time) taskResponse {
	comments, _ := t.CommentList()
	resp := taskResponse{
		ID:          t.ID,
		Description: t.Description,
		Client:      t.Client,
		TargetDate:  t.TargetDate.Format(dateLayout),
		Status:      t.Status,
		Author:      t.Author,
		Assignee:    t.Assignee,
		Comments:    comments,
		Overdue:     task.Overdue(t, today),
	}
	if resp.Overdue {
		resp.LateDays = task.LateDays(t, today)
		resp.RiskTier = task.Risk(t, today)
	}
	return resp
}

func (h *Handler) ListTasks(c *gin.Context) {
	filter := task.Filter{
		Search:   c.Query("search"),
		Assignee: c.Query("assignee"),
		Status:   task.Status(c.Query("status")),
	}

	tasks, err := h.tasks.List(c.Request.Context(), filter)
	if err != nil {
		_ = c.Error(err)
		return
	}

	today := time.Now()
	out := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskResponse(t, today))
	}
	c.JSON(http.StatusOK, gin.H{"tasks": out})
}

type createTaskRequest struct {
	Description string      `json:"description"`
	Client      string      `json:"client"`
	TargetDate  string      `json:"targetDate" binding:"required"`
	Status      task.Status `json:"status"`
	Assignee    string      `json:"assignee"`
}

func (h *Handler) CreateTask(c *gin.Context) {
	actor := mustActor(c)

	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errutil.BadRequest("invalid task payload", errutil.WithErr(err)))
		return
	}

	targetDate, err := time.Parse(dateLayout, req.TargetDate)
	if err != nil {
		_ = c.Error(errutil.ValidationFailed("invalid task", errutil.WithDetails(
			errutil.Detail{Field: "targetDate", Message: "must be an ISO-8601 calendar date"},
		)))
		return
	}

	status := req.Status
	if status == "" {
		status = task.StatusPending
	}

	created, err := h.tasks.Create(c.Request.Context(), actor, task.CreateInput{
		Description: req.Description,
		Client:      req.Client,
		TargetDate:  targetDate,
		Status:      status,
		Assignee:    req.Assignee,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, toTaskResponse(*created, time.Now()))
}

type updateTaskRequest struct {
	Description *string `json:"description"`
	Client      *string `json:"client"`
	TargetDate  *string `json:"targetDate"`
	Assignee    *string `json:"assignee"`
}

func (h *Handler) UpdateTask(c *gin.Context) {
	actor := mustActor(c)

	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errutil.BadRequest("invalid task payload", errutil.WithErr(err)))
		return
	}

	in := task.UpdateInput{
		Description: req.Description,
		Client:      req.Client,
		Assignee:    req.Assignee,
	}
	if req.TargetDate != nil {
		parsed, err := time.Parse(dateLayout, *req.TargetDate)
		if err != nil {
			_ = c.Error(errutil.ValidationFailed("invalid task", errutil.WithDetails(
				errutil.Detail{Field: "targetDate", Message: "must be an ISO-8601 calendar date"},
			)))
			return
		}
		in.TargetDate = &parsed
	}

	if err := h.tasks.Update(c.Request.Context(), actor, c.Param("id"), in); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

type changeStatusRequest struct {
	Status task.Status `json:"status" binding:"required"`
}

func (h *Handler) ChangeTaskStatus(c *gin.Context) {
	actor := mustActor(c)

	var req changeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errutil.BadRequest("invalid status payload", errutil.WithErr(err)))
		return
	}

	if err := h.tasks.ChangeStatus(c.Request.Context(), actor, c.Param("id"), req.Status); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) DeleteTask(c *gin.Context) {
	actor := mustActor(c)

	if err := h.tasks.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

type addCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

func (h *Handler) AddComment(c *gin.Context) {
	actor := mustActor(c)

	var req addCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errutil.BadRequest("invalid comment payload", errutil.WithErr(err)))
		return
	}

	if err := h.tasks.AddComment(c.Request.Context(), actor, c.Param("id"), req.Text); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Dashboard assembles the management weekly view: week summary, today's
// roster availability, overdue risks (worst first) and the backlog.
func (h *Handler) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()

	tasks, err := h.tasks.List(ctx, task.Filter{})
	if err != nil {
		_ = c.Error(err)
		return
	}

	operators, err := h.identity.OperatorNames(ctx)
	if err != nil {
		_ = c.Error(err)
		return
	}

	today := time.Now()

	overdue := task.OverdueTasks(tasks, today)
	sort.SliceStable(overdue, func(i, j int) bool {
		return task.LateDays(overdue[i], today) > task.LateDays(overdue[j], today)
	})
	risks := make([]taskResponse, 0, len(overdue))
	for _, t := range overdue {
		risks = append(risks, toTaskResponse(t, today))
	}

	backlog := make([]taskResponse, 0)
	for _, t := range task.Backlog(tasks, today) {
		backlog = append(backlog, toTaskResponse(t, today))
	}

	c.JSON(http.StatusOK, gin.H{
		"summary":      task.SummarizeWeek(tasks, today),
		"availability": task.RosterAvailability(operators, tasks, today),
		"risks":        risks,
		"backlog":      backlog,
		"workload":     task.WorkloadByAssignee(operators, tasks, today),
	})
}

type submitKPIRequest struct {
	Person              string  `json:"person" binding:"required"`
	WeekStart           string  `json:"weekStart" binding:"required"`
	Commendations       int     `json:"commendations"`
	Complaints          int     `json:"complaints"`
	OrderScore          float64 `json:"orderScore"`
	ClientResponseScore float64 `json:"clientResponseScore"`
}

func (h *Handler) SubmitKPI(c *gin.Context) {
	actor := mustActor(c)

	var req submitKPIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errutil.BadRequest("invalid KPI payload", errutil.WithErr(err)))
		return
	}

	weekStart, err := time.Parse(dateLayout, req.WeekStart)
	if err != nil {
		_ = c.Error(errutil.ValidationFailed("invalid KPI submission", errutil.WithDetails(
			errutil.Detail{Field: "weekStart", Message: "must be an ISO-8601 calendar date"},
		)))
		return
	}

	record, err := h.kpis.Submit(c.Request.Context(), actor, kpi.SubmitInput{
		Person:              req.Person,
		WeekStart:           weekStart,
		Commendations:       req.Commendations,
		Complaints:          req.Complaints,
		OrderScore:          req.OrderScore,
		ClientResponseScore: req.ClientResponseScore,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, record)
}

func (h *Handler) QueryKPI(c *gin.Context) {
	in := kpi.QueryInput{Person: c.Query("person")}

	var err error
	if in.Start, err = optionalDate(c.Query("start")); err != nil {
		_ = c.Error(err)
		return
	}
	if in.End, err = optionalDate(c.Query("end")); err != nil {
		_ = c.Error(err)
		return
	}

	records, err := h.kpis.Query(c.Request.Context(), in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}

func (h *Handler) KPISeries(c *gin.Context) {
	person := c.Query("person")
	if person == "" {
		_ = c.Error(errutil.ValidationFailed("invalid series query", errutil.WithDetails(
			errutil.Detail{Field: "person", Message: "must not be empty"},
		)))
		return
	}

	start, err := optionalDate(c.Query("start"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	end, err := optionalDate(c.Query("end"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	points, err := h.kpis.Series(c.Request.Context(), person, start, end)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"series": points})
}

func (h *Handler) ExportCSV(c *gin.Context) {
	start, end, err := exportRange(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="kpi_tasks.csv"`)
	c.Header("Content-Type", "text/csv; charset=utf-8")
	if err := h.exports.CSV(c.Request.Context(), c.Writer, start, end); err != nil {
		_ = c.Error(err)
	}
}

func (h *Handler) ExportXLSX(c *gin.Context) {
	start, end, err := exportRange(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="kpi_tasks.xlsx"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := h.exports.XLSX(c.Request.Context(), c.Writer, start, end); err != nil {
		_ = c.Error(err)
	}
}

func exportRange(c *gin.Context) (time.Time, time.Time, error) {
	start, err := time.Parse(dateLayout, c.Query("start"))
	if err != nil {
		return time.Time{}, time.Time{}, errutil.ValidationFailed("invalid export range", errutil.WithDetails(
			errutil.Detail{Field: "start", Message: "must be an ISO-8601 calendar date"},
		))
	}
	end, err := time.Parse(dateLayout, c.Query("end"))
	if err != nil {
		return time.Time{}, time.Time{}, errutil.ValidationFailed("invalid export range", errutil.WithDetails(
			errutil.Detail{Field: "end", Message: "must be an ISO-8601 calendar date"},
		))
	}
	return start, end, nil
}

func optionalDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, errutil.ValidationFailed("invalid date", errutil.WithDetails(
			errutil.Detail{Field: "date", Message: "must be an ISO-8601 calendar date"},
		))
	}
	return &parsed, nil
}
