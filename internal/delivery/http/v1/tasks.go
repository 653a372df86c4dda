package v1

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/taskboard/internal/models"
	"github.com/adanyl0v/taskboard/internal/services"
)

type createTaskRequest struct {
	Title    string    `json:"title" binding:"required,max=255"`
	Date     time.Time `json:"date" binding:"required"`
	Priority string    `json:"priority"`
	Stage    string    `json:"stage"`
	Team     []string  `json:"team"`
	Assets   []string  `json:"assets"`
}

func (h *handlerImpl) HandleCreateTask(c *gin.Context) {
	userID, _ := getStringFromContext(c, userIDCtxKey)

	var req createTaskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	task, err := h.tasks.CreateTask(c, services.CreateTaskParams{
		CreatorID: userID,
		Title:     req.Title,
		Date:      req.Date,
		Priority:  models.Priority(req.Priority),
		Stage:     models.Stage(req.Stage),
		TeamIDs:   req.Team,
		Assets:    req.Assets,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to create task")
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newTaskResponse(task))
}

func (h *handlerImpl) HandleDuplicateTask(c *gin.Context) {
	task, err := h.tasks.DuplicateTask(c, c.Param("id"))
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("task_id", c.Param("id")).
			Msg("failed to duplicate task")
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newTaskResponse(task))
}

type taskFilterQuery struct {
	Stage   string `form:"stage"`
	Trashed bool   `form:"trashed"`
	UserID  string `form:"user_id"`
}

// bindTaskFilter reads the list filter from the query string. Non-admins
// are always narrowed to their own tasks.
func (h *handlerImpl) bindTaskFilter(c *gin.Context) (services.TaskFilter, bool) {
	var query taskFilterQuery
	err := c.ShouldBindQuery(&query)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind query")
		abort(c, newBadRequestError(errInvalidQuery.Error()))
		return services.TaskFilter{}, false
	}

	filter := services.TaskFilter{
		Stage:   models.Stage(query.Stage),
		Trashed: query.Trashed,
		UserID:  query.UserID,
	}
	if !c.GetBool(isAdminCtxKey) {
		filter.UserID, _ = getStringFromContext(c, userIDCtxKey)
	}
	return filter, true
}

func (h *handlerImpl) HandleGetTasks(c *gin.Context) {
	filter, ok := h.bindTaskFilter(c)
	if !ok {
		return
	}

	tasks, err := h.tasks.GetTasks(c, filter)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to get tasks")
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newTaskResponses(tasks))
}

func (h *handlerImpl) HandleGetTask(c *gin.Context) {
	taskID := c.Param("id")

	task, err := h.tasks.GetTask(c, taskID)
	if err != nil {
		if errors.Is(err, services.ErrTaskNotFound) {
			h.logger.Warn().
				Str("task_id", taskID).
				Msg("task not found")
		} else {
			h.logger.Error().
				Err(err).
				Str("task_id", taskID).
				Msg("failed to get task")
		}
		abortWithServiceError(c, err)
		return
	}

	if !c.GetBool(isAdminCtxKey) {
		userID, _ := getStringFromContext(c, userIDCtxKey)
		if !task.HasMember(userID) {
			h.logger.Warn().
				Str("task_id", taskID).
				Str("user_id", userID).
				Msg("task is not visible to user")
			abort(c, newNotFoundError(services.ErrTaskNotFound.Error()))
			return
		}
	}

	c.JSON(http.StatusOK, newTaskResponse(task))
}

func (h *handlerImpl) HandleUpdateTask(c *gin.Context) {
	var req createTaskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	task, err := h.tasks.UpdateTask(c, services.UpdateTaskParams{
		ID:       c.Param("id"),
		Title:    req.Title,
		Date:     req.Date,
		Priority: models.Priority(req.Priority),
		Stage:    models.Stage(req.Stage),
		TeamIDs:  req.Team,
		Assets:   req.Assets,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("task_id", c.Param("id")).
			Msg("failed to update task")
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newTaskResponse(task))
}

func (h *handlerImpl) HandleTrashTask(c *gin.Context) {
	err := h.tasks.TrashTask(c, c.Param("id"))
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("task_id", c.Param("id")).
			Msg("failed to trash task")
		abortWithServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

type deleteRestoreQuery struct {
	ID     string `form:"id"`
	Action string `form:"action" binding:"required"`
}

func (h *handlerImpl) HandleDeleteRestoreTask(c *gin.Context) {
	var query deleteRestoreQuery
	err := c.ShouldBindQuery(&query)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind query")
		abort(c, newBadRequestError(errInvalidQuery.Error()))
		return
	}

	err = h.tasks.DeleteRestoreTask(c, services.DeleteRestoreParams{
		ID:     query.ID,
		Action: query.Action,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("task_id", query.ID).
			Str("action", query.Action).
			Msg("failed to delete or restore task")
		abortWithServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *handlerImpl) HandleDashboard(c *gin.Context) {
	userID, _ := getStringFromContext(c, userIDCtxKey)

	dashboard, err := h.tasks.DashboardStatistics(c, services.DashboardParams{
		UserID:  userID,
		IsAdmin: c.GetBool(isAdminCtxKey),
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to build dashboard")
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newDashboardResponse(dashboard))
}
