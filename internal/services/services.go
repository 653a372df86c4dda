package services

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/adanyl0v/taskboard/internal/models"
	"github.com/adanyl0v/taskboard/internal/tracking"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrUserAlreadyExists    = errors.New("user already exists")
	ErrUserPasswordMismatch = errors.New("user password mismatch")
	ErrUserInactive         = errors.New("user is inactive")
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionExpired       = errors.New("session expired")

	ErrTaskNotFound        = errors.New("task not found")
	ErrSubTaskNotFound     = errors.New("subtask not found")
	ErrActivityNotFound    = errors.New("activity not found")
	ErrNoticeNotFound      = errors.New("notice not found")
	ErrInvalidTaskStage    = errors.New("invalid task stage")
	ErrInvalidTaskPriority = errors.New("invalid task priority")
	ErrInvalidActivityType = errors.New("invalid activity type")
	ErrInvalidTrashAction  = errors.New("invalid trash action")
	ErrUnknownTeamMember   = errors.New("unknown team member")
)

type AuthService interface {
	// Login authenticates the user by email and password.
	//
	// It deletes all sessions with the same user ID and creates
	// a new session and generates a new JWT token pair.
	//
	// It returns ErrUserNotFound if the user with the given
	// email doesn't exist or ErrUserPasswordMismatch if the
	// given password doesn't match the user's password.
	Login(ctx context.Context, params LoginParams) (*LoginResult, error)

	// Refresh updates the session with the given refresh token.
	//
	// It returns ErrSessionNotFound if the session with the
	// given refresh token doesn't exist or ErrSessionExpired
	// if the session is expired.
	Refresh(ctx context.Context, params RefreshParams) (*LoginResult, error)

	// Register a user with the given name, email and password.
	//
	// It hashes the password, generates a unique ID and creates a
	// session with the given fingerprint and a fresh JWT token pair.
	//
	// It returns ErrUserAlreadyExists if the user
	// with the given email already exists.
	Register(ctx context.Context, params RegisterParams) (*LoginResult, error)

	// Logout invalidates all sessions with the given user ID.
	Logout(ctx context.Context, userID string) error

	// ParseJWTToken parses the given JWT token and returns the registered
	// claims or jwt.ErrTokenExpired if the token is expired.
	ParseJWTToken(token string) (*jwt.RegisteredClaims, error)
}

type SessionService interface {
	GetSessionByID(ctx context.Context, sessionID string) (*models.Session, error)
}

type UserService interface {
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	// GetTeamList returns active users ordered by name.
	GetTeamList(ctx context.Context) ([]models.User, error)
	SetAdmin(ctx context.Context, email string, isAdmin bool) error
}

type TaskService interface {
	// CreateTask stores the task together with an "assigned" activity by
	// the creator and a notice for the team.
	CreateTask(ctx context.Context, params CreateTaskParams) (*models.Task, error)
	// DuplicateTask copies team, sub-tasks, assets, priority and stage
	// into a new task titled "<title> - Duplicate".
	DuplicateTask(ctx context.Context, taskID string) (*models.Task, error)
	GetTask(ctx context.Context, taskID string) (*models.Task, error)
	// GetTasks returns tasks newest first. When the filter names a user,
	// only tasks with that user on the team are returned and their
	// sub-tasks are narrowed to the ones the user works on.
	GetTasks(ctx context.Context, filter TaskFilter) ([]models.Task, error)
	UpdateTask(ctx context.Context, params UpdateTaskParams) (*models.Task, error)
	TrashTask(ctx context.Context, taskID string) error
	DeleteRestoreTask(ctx context.Context, params DeleteRestoreParams) error

	PostActivity(ctx context.Context, params PostActivityParams) (*models.Activity, error)
	UpdateActivity(ctx context.Context, params UpdateActivityParams) error
	DeleteActivity(ctx context.Context, taskID, activityID string) error

	CreateSubTask(ctx context.Context, params SubTaskParams) (*models.SubTask, error)
	UpdateSubTask(ctx context.Context, params SubTaskParams) (*models.SubTask, error)
	DeleteSubTask(ctx context.Context, params DeleteSubTaskParams) error

	DashboardStatistics(ctx context.Context, params DashboardParams) (*Dashboard, error)
}

type ReportService interface {
	// TaskReport computes per-task durations and the summary for tasks
	// matching the filter. Durations are attributed to filter.UserID
	// when it is set.
	TaskReport(ctx context.Context, filter TaskFilter) (*Report, error)
	// ExportRows flattens matching tasks into spreadsheet rows.
	ExportRows(ctx context.Context, filter TaskFilter) ([]tracking.Row, error)
}

type NoticeService interface {
	// GetNotices returns unread notices addressed to the user.
	GetNotices(ctx context.Context, userID string) ([]models.Notice, error)
	MarkNoticesRead(ctx context.Context, params MarkNoticesReadParams) error
}

type LoginParams struct {
	Email       string
	Password    string
	Fingerprint string
}

type RegisterParams struct {
	Name  string
	Title string
	Role  string
	LoginParams
}

type LoginResult struct {
	UserID                string
	SessionID             string
	AccessToken           string
	AccessTokenExpiresAt  time.Time
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
}

type RefreshParams struct {
	RefreshToken string
	Fingerprint  string
}

type TaskFilter struct {
	Stage   models.Stage
	Trashed bool
	// UserID restricts tasks to the ones the user is a team member of.
	UserID string
	Limit  int
}

type CreateTaskParams struct {
	CreatorID string
	Title     string
	Date      time.Time
	Priority  models.Priority
	Stage     models.Stage
	TeamIDs   []string
	Assets    []string
}

type UpdateTaskParams struct {
	ID       string
	Title    string
	Date     time.Time
	Priority models.Priority
	Stage    models.Stage
	TeamIDs  []string
	Assets   []string
}

const (
	TrashActionDelete     = "delete"
	TrashActionDeleteAll  = "deleteAll"
	TrashActionRestore    = "restore"
	TrashActionRestoreAll = "restoreAll"
)

type DeleteRestoreParams struct {
	ID     string
	Action string
}

type PostActivityParams struct {
	TaskID  string
	ActorID string
	Type    models.ActivityType
	Text    string
}

type UpdateActivityParams struct {
	TaskID     string
	ActivityID string
	Text       string
}

type SubTaskParams struct {
	TaskID    string
	SubTaskID string
	ActorID   string
	Title     string
	Date      time.Time
	Tag       string
	Stage     models.Stage
	TeamIDs   []string
}

type DeleteSubTaskParams struct {
	TaskID    string
	SubTaskID string
}

type DashboardParams struct {
	UserID  string
	IsAdmin bool
}

type Dashboard struct {
	TotalTasks      int
	LastTasks       []models.Task
	Users           []models.User
	TasksByStage    map[models.Stage]int
	TasksByPriority map[models.Priority]int
	Summary         tracking.Summary
}

type Report struct {
	Tasks   []TaskReportLine
	Summary tracking.Summary
}

type TaskReportLine struct {
	Task      models.Task
	Applicant string
	Duration  time.Duration
}

type MarkNoticesReadParams struct {
	UserID string
	// NoticeID marks a single notice; empty marks every notice of the user.
	NoticeID string
}
