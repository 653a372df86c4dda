package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *handlerImpl) HandleGetTeamList(c *gin.Context) {
	users, err := h.users.GetTeamList(c)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to get team list")
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newUserResponses(users))
}
