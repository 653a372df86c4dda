package v1

import (
	"time"

	"github.com/adanyl0v/taskboard/internal/models"
	"github.com/adanyl0v/taskboard/internal/services"
	"github.com/adanyl0v/taskboard/internal/tracking"
)

type userRefResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Title string `json:"title,omitempty"`
	Role  string `json:"role,omitempty"`
	Email string `json:"email,omitempty"`
}

func newUserRefResponses(team []models.UserRef) []userRefResponse {
	resp := make([]userRefResponse, len(team))
	for i, u := range team {
		resp[i] = userRefResponse(u)
	}
	return resp
}

type userResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Title     string    `json:"title"`
	Role      string    `json:"role"`
	Email     string    `json:"email"`
	IsAdmin   bool      `json:"is_admin"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func newUserResponses(users []models.User) []userResponse {
	resp := make([]userResponse, len(users))
	for i, u := range users {
		resp[i] = userResponse{
			ID:        u.ID,
			Name:      u.Name,
			Title:     u.Title,
			Role:      u.Role,
			Email:     u.Email,
			IsAdmin:   u.IsAdmin,
			IsActive:  u.IsActive,
			CreatedAt: u.CreatedAt,
		}
	}
	return resp
}

type activityResponse struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Text      string          `json:"activity"`
	Timestamp time.Time       `json:"date"`
	By        userRefResponse `json:"by"`
}

func newActivityResponse(a *models.Activity) activityResponse {
	return activityResponse{
		ID:        a.ID,
		Type:      string(a.Type),
		Text:      a.Text,
		Timestamp: a.Timestamp,
		By:        userRefResponse(a.Actor),
	}
}

type subTaskResponse struct {
	ID    string            `json:"id"`
	Title string            `json:"title"`
	Date  time.Time         `json:"date"`
	Tag   string            `json:"tag"`
	Stage string            `json:"stage"`
	Team  []userRefResponse `json:"team"`
}

func newSubTaskResponse(s *models.SubTask) subTaskResponse {
	return subTaskResponse{
		ID:    s.ID,
		Title: s.Title,
		Date:  s.Date,
		Tag:   s.Tag,
		Stage: string(s.Stage),
		Team:  newUserRefResponses(s.Team),
	}
}

type taskResponse struct {
	ID         string             `json:"id"`
	Title      string             `json:"title"`
	Date       time.Time          `json:"date"`
	Priority   string             `json:"priority"`
	Stage      string             `json:"stage"`
	Activities []activityResponse `json:"activities"`
	SubTasks   []subTaskResponse  `json:"sub_tasks"`
	Team       []userRefResponse  `json:"team"`
	Assets     []string           `json:"assets"`
	IsTrashed  bool               `json:"is_trashed"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

func newTaskResponse(task *models.Task) taskResponse {
	resp := taskResponse{
		ID:         task.ID,
		Title:      task.Title,
		Date:       task.Date,
		Priority:   string(task.Priority),
		Stage:      string(task.Stage),
		Activities: make([]activityResponse, len(task.Activities)),
		SubTasks:   make([]subTaskResponse, len(task.SubTasks)),
		Team:       newUserRefResponses(task.Team),
		Assets:     task.Assets,
		IsTrashed:  task.IsTrashed,
		CreatedAt:  task.CreatedAt,
		UpdatedAt:  task.UpdatedAt,
	}
	if resp.Assets == nil {
		resp.Assets = []string{}
	}
	for i := range task.Activities {
		resp.Activities[i] = newActivityResponse(&task.Activities[i])
	}
	for i := range task.SubTasks {
		resp.SubTasks[i] = newSubTaskResponse(&task.SubTasks[i])
	}
	return resp
}

func newTaskResponses(tasks []models.Task) []taskResponse {
	resp := make([]taskResponse, len(tasks))
	for i := range tasks {
		resp[i] = newTaskResponse(&tasks[i])
	}
	return resp
}

type weekdayCountResponse struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

type summaryResponse struct {
	TotalDuration   string                 `json:"total_duration"`
	TotalDurationMs int64                  `json:"total_duration_ms"`
	TaskCount       int                    `json:"task_count"`
	CountsByWeekday []weekdayCountResponse `json:"counts_by_weekday"`
}

func newSummaryResponse(s tracking.Summary) summaryResponse {
	resp := summaryResponse{
		TotalDuration:   tracking.FormatDuration(s.TotalDuration),
		TotalDurationMs: s.TotalDuration.Milliseconds(),
		TaskCount:       s.TaskCount,
		CountsByWeekday: make([]weekdayCountResponse, len(tracking.Weekdays)),
	}
	for i, day := range tracking.Weekdays {
		resp.CountsByWeekday[i] = weekdayCountResponse{
			Day:   day.String(),
			Count: s.CountsByWeekday[day],
		}
	}
	return resp
}

type dashboardResponse struct {
	TotalTasks int             `json:"total_tasks"`
	LastTasks  []taskResponse  `json:"last_10_task"`
	Users      []userResponse  `json:"users,omitempty"`
	Tasks      map[string]int  `json:"tasks"`
	GraphData  []priorityCount `json:"graph_data"`
	Summary    summaryResponse `json:"summary"`
}

type priorityCount struct {
	Name  string `json:"name"`
	Total int    `json:"total"`
}

var priorityOrder = []models.Priority{
	models.PriorityHigh,
	models.PriorityMedium,
	models.PriorityNormal,
	models.PriorityLow,
}

func newDashboardResponse(d *services.Dashboard) dashboardResponse {
	resp := dashboardResponse{
		TotalTasks: d.TotalTasks,
		LastTasks:  newTaskResponses(d.LastTasks),
		Tasks:      make(map[string]int, len(d.TasksByStage)),
		Summary:    newSummaryResponse(d.Summary),
	}
	if d.Users != nil {
		resp.Users = newUserResponses(d.Users)
	}
	for stage, n := range d.TasksByStage {
		resp.Tasks[string(stage)] = n
	}
	for _, p := range priorityOrder {
		if n, ok := d.TasksByPriority[p]; ok {
			resp.GraphData = append(resp.GraphData, priorityCount{Name: string(p), Total: n})
		}
	}
	if resp.GraphData == nil {
		resp.GraphData = []priorityCount{}
	}
	return resp
}

type reportLineResponse struct {
	TaskID     string `json:"task_id"`
	Title      string `json:"title"`
	Stage      string `json:"stage"`
	Applicant  string `json:"applicant"`
	Duration   string `json:"duration"`
	DurationMs int64  `json:"duration_ms"`
}

type reportResponse struct {
	Tasks   []reportLineResponse `json:"tasks"`
	Summary summaryResponse      `json:"summary"`
}

func newReportResponse(r *services.Report) reportResponse {
	resp := reportResponse{
		Tasks:   make([]reportLineResponse, len(r.Tasks)),
		Summary: newSummaryResponse(r.Summary),
	}
	for i, line := range r.Tasks {
		resp.Tasks[i] = reportLineResponse{
			TaskID:     line.Task.ID,
			Title:      line.Task.Title,
			Stage:      string(line.Task.Stage),
			Applicant:  line.Applicant,
			Duration:   tracking.FormatDuration(line.Duration),
			DurationMs: line.Duration.Milliseconds(),
		}
	}
	return resp
}

type rowResponse struct {
	TaskID     string `json:"task_id"`
	Applicant  string `json:"applicant"`
	Order      string `json:"order"`
	Activity   string `json:"activity"`
	Timestamp  string `json:"timestamp"`
	Duration   string `json:"duration"`
	DurationMs int64  `json:"duration_ms"`
	Project    string `json:"project"`
	Stage      string `json:"stage"`
}

func newRowResponses(rows []tracking.Row) []rowResponse {
	resp := make([]rowResponse, len(rows))
	for i, r := range rows {
		resp[i] = rowResponse{
			TaskID:     r.TaskID,
			Applicant:  r.Applicant,
			Order:      r.Order,
			Activity:   r.Type,
			Timestamp:  r.Timestamp,
			Duration:   r.Duration,
			DurationMs: r.DurationMs,
			Project:    r.Project,
			Stage:      r.Stage,
		}
	}
	return resp
}

type noticeResponse struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"task_id,omitempty"`
	TaskTitle string    `json:"task_title,omitempty"`
	Text      string    `json:"text"`
	Type      string    `json:"notice_type"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

func newNoticeResponses(notices []models.Notice) []noticeResponse {
	resp := make([]noticeResponse, len(notices))
	for i, n := range notices {
		resp[i] = noticeResponse(n)
	}
	return resp
}
