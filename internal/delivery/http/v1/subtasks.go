package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/taskboard/internal/models"
	"github.com/adanyl0v/taskboard/internal/services"
)

type subTaskRequest struct {
	Title string    `json:"title" binding:"required,max=255"`
	Date  time.Time `json:"date" binding:"required"`
	Tag   string    `json:"tag" binding:"max=64"`
	Stage string    `json:"stage"`
	Team  []string  `json:"team"`
}

func (h *handlerImpl) bindSubTask(c *gin.Context) (services.SubTaskParams, bool) {
	var req subTaskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return services.SubTaskParams{}, false
	}

	userID, _ := getStringFromContext(c, userIDCtxKey)
	return services.SubTaskParams{
		TaskID:    c.Param("id"),
		SubTaskID: c.Param("subTaskId"),
		ActorID:   userID,
		Title:     req.Title,
		Date:      req.Date,
		Tag:       req.Tag,
		Stage:     models.Stage(req.Stage),
		TeamIDs:   req.Team,
	}, true
}

func (h *handlerImpl) HandleCreateSubTask(c *gin.Context) {
	params, ok := h.bindSubTask(c)
	if !ok {
		return
	}

	subTask, err := h.tasks.CreateSubTask(c, params)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("task_id", params.TaskID).
			Msg("failed to create subtask")
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newSubTaskResponse(subTask))
}

func (h *handlerImpl) HandleUpdateSubTask(c *gin.Context) {
	params, ok := h.bindSubTask(c)
	if !ok {
		return
	}

	subTask, err := h.tasks.UpdateSubTask(c, params)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("task_id", params.TaskID).
			Str("subtask_id", params.SubTaskID).
			Msg("failed to update subtask")
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newSubTaskResponse(subTask))
}

func (h *handlerImpl) HandleDeleteSubTask(c *gin.Context) {
	params := services.DeleteSubTaskParams{
		TaskID:    c.Param("id"),
		SubTaskID: c.Param("subTaskId"),
	}

	err := h.tasks.DeleteSubTask(c, params)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("task_id", params.TaskID).
			Str("subtask_id", params.SubTaskID).
			Msg("failed to delete subtask")
		abortWithServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
