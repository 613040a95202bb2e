package server

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/arledger/internal/timesheet"
)

// ValidateTimesheet validates an uploaded timesheet CSV. The file arrives
// either as a multipart "file" part or as the raw request body.
func (s *Server) ValidateTimesheet(c *gin.Context) {
	var reader io.Reader = c.Request.Body
	if file, _, err := c.Request.FormFile("file"); err == nil {
		defer file.Close()
		reader = file
	}

	report, err := timesheet.ValidateCSV(reader)
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	s.metrics.RecordTimesheetRows(len(report.Entries), report.Rows-len(report.Entries))
	c.JSON(http.StatusOK, report)
}
