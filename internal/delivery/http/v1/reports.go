package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/taskboard/internal/tracking"
)

const (
	exportFormatJSON = "json"
	exportFormatCSV  = "csv"
)

func (h *handlerImpl) HandleTaskReport(c *gin.Context) {
	filter, ok := h.bindTaskFilter(c)
	if !ok {
		return
	}

	report, err := h.reports.TaskReport(c, filter)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("user_id", filter.UserID).
			Msg("failed to build task report")
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newReportResponse(report))
}

func (h *handlerImpl) HandleExportReport(c *gin.Context) {
	format := c.DefaultQuery("format", exportFormatJSON)
	if format != exportFormatJSON && format != exportFormatCSV {
		h.logger.Warn().
			Str("format", format).
			Msg("unsupported export format")
		abort(c, newBadRequestError(errInvalidQuery.Error()))
		return
	}

	filter, ok := h.bindTaskFilter(c)
	if !ok {
		return
	}

	rows, err := h.reports.ExportRows(c, filter)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("user_id", filter.UserID).
			Msg("failed to export rows")
		abortWithServiceError(c, err)
		return
	}

	if format == exportFormatJSON {
		c.JSON(http.StatusOK, newRowResponses(rows))
		return
	}

	c.Header("Content-Disposition", `attachment; filename="report.csv"`)
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Status(http.StatusOK)
	err = tracking.WriteCSV(c.Writer, rows)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to write csv")
	}
}
