package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/taskboard/internal/services"
)

type Handler interface {
	HandleLogin(c *gin.Context)
	HandleRefresh(c *gin.Context)
	HandleRegister(c *gin.Context)
	HandleLogout(c *gin.Context)
	HandleAuthMiddleware(c *gin.Context)
	HandleAdminMiddleware(c *gin.Context)

	HandleGetTeamList(c *gin.Context)

	HandleCreateTask(c *gin.Context)
	HandleDuplicateTask(c *gin.Context)
	HandleGetTasks(c *gin.Context)
	HandleGetTask(c *gin.Context)
	HandleUpdateTask(c *gin.Context)
	HandleTrashTask(c *gin.Context)
	HandleDeleteRestoreTask(c *gin.Context)
	HandleDashboard(c *gin.Context)

	HandlePostActivity(c *gin.Context)
	HandleUpdateActivity(c *gin.Context)
	HandleDeleteActivity(c *gin.Context)

	HandleCreateSubTask(c *gin.Context)
	HandleUpdateSubTask(c *gin.Context)
	HandleDeleteSubTask(c *gin.Context)

	HandleTaskReport(c *gin.Context)
	HandleExportReport(c *gin.Context)

	HandleGetNotices(c *gin.Context)
	HandleMarkNoticesRead(c *gin.Context)
}

type handlerImpl struct {
	logger   zerolog.Logger
	auth     services.AuthService
	sessions services.SessionService
	users    services.UserService
	tasks    services.TaskService
	reports  services.ReportService
	notices  services.NoticeService
}

func New(
	logger zerolog.Logger,
	authService services.AuthService,
	sessionService services.SessionService,
	userService services.UserService,
	taskService services.TaskService,
	reportService services.ReportService,
	noticeService services.NoticeService,
) Handler {
	return &handlerImpl{
		logger:   logger,
		auth:     authService,
		sessions: sessionService,
		users:    userService,
		tasks:    taskService,
		reports:  reportService,
		notices:  noticeService,
	}
}

// RegisterRoutes mounts every v1 endpoint under router.
func RegisterRoutes(router gin.IRouter, h Handler) {
	authRouter := router.Group("/auth")
	authRouter.POST("/login", h.HandleLogin)
	authRouter.POST("/refresh", h.HandleRefresh)
	authRouter.POST("/register", h.HandleRegister)
	authRouter.POST("/logout", h.HandleAuthMiddleware, h.HandleLogout)

	protected := router.Group("", h.HandleAuthMiddleware)
	protected.GET("/users/team", h.HandleGetTeamList)

	notices := protected.Group("/notices")
	notices.GET("", h.HandleGetNotices)
	notices.PUT("/read", h.HandleMarkNoticesRead)

	tasks := protected.Group("/tasks")
	tasks.GET("", h.HandleGetTasks)
	tasks.GET("/dashboard", h.HandleDashboard)
	tasks.GET("/report", h.HandleTaskReport)
	tasks.GET("/report/export", h.HandleExportReport)
	tasks.GET("/:id", h.HandleGetTask)
	tasks.POST("/:id/activities", h.HandlePostActivity)

	admin := tasks.Group("", h.HandleAdminMiddleware)
	admin.POST("", h.HandleCreateTask)
	admin.POST("/:id/duplicate", h.HandleDuplicateTask)
	admin.PUT("/:id", h.HandleUpdateTask)
	admin.PUT("/:id/trash", h.HandleTrashTask)
	admin.DELETE("/trash", h.HandleDeleteRestoreTask)
	admin.PUT("/:id/activities/:activityId", h.HandleUpdateActivity)
	admin.DELETE("/:id/activities/:activityId", h.HandleDeleteActivity)
	admin.POST("/:id/subtasks", h.HandleCreateSubTask)
	admin.PUT("/:id/subtasks/:subTaskId", h.HandleUpdateSubTask)
	admin.DELETE("/:id/subtasks/:subTaskId", h.HandleDeleteSubTask)
}
