package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/taskboard/internal/models"
	"github.com/adanyl0v/taskboard/internal/services"
)

type postActivityRequest struct {
	Type     string `json:"type" binding:"required"`
	Activity string `json:"activity" binding:"max=4096"`
}

func (h *handlerImpl) HandlePostActivity(c *gin.Context) {
	userID, _ := getStringFromContext(c, userIDCtxKey)

	var req postActivityRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	activity, err := h.tasks.PostActivity(c, services.PostActivityParams{
		TaskID:  c.Param("id"),
		ActorID: userID,
		Type:    models.ActivityType(req.Type),
		Text:    req.Activity,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("task_id", c.Param("id")).
			Str("type", req.Type).
			Msg("failed to post activity")
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newActivityResponse(activity))
}

type updateActivityRequest struct {
	Activity string `json:"activity" binding:"max=4096"`
}

func (h *handlerImpl) HandleUpdateActivity(c *gin.Context) {
	var req updateActivityRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	err = h.tasks.UpdateActivity(c, services.UpdateActivityParams{
		TaskID:     c.Param("id"),
		ActivityID: c.Param("activityId"),
		Text:       req.Activity,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("task_id", c.Param("id")).
			Str("activity_id", c.Param("activityId")).
			Msg("failed to update activity")
		abortWithServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *handlerImpl) HandleDeleteActivity(c *gin.Context) {
	err := h.tasks.DeleteActivity(c, c.Param("id"), c.Param("activityId"))
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("task_id", c.Param("id")).
			Str("activity_id", c.Param("activityId")).
			Msg("failed to delete activity")
		abortWithServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
