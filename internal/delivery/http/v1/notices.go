package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/taskboard/internal/services"
)

func (h *handlerImpl) HandleGetNotices(c *gin.Context) {
	userID, _ := getStringFromContext(c, userIDCtxKey)

	notices, err := h.notices.GetNotices(c, userID)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to get notices")
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newNoticeResponses(notices))
}

func (h *handlerImpl) HandleMarkNoticesRead(c *gin.Context) {
	userID, _ := getStringFromContext(c, userIDCtxKey)
	noticeID := c.Query("id")

	err := h.notices.MarkNoticesRead(c, services.MarkNoticesReadParams{
		UserID:   userID,
		NoticeID: noticeID,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("user_id", userID).
			Str("notice_id", noticeID).
			Msg("failed to mark notices read")
		abortWithServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
