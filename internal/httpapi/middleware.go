package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/HendryAvila/storykeeper/internal/knowledge"
	"github.com/HendryAvila/storykeeper/internal/store"
)

// seriesKey is the gin context key holding the resolved series.
const seriesKey = "series"

// requireSeries resolves the series id from header or query and rejects
// requests without a known series.
func requireSeries(st *store.Store, header string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(header)
		if raw == "" {
			raw = c.Query("series_id")
		}
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
				Error: "series id is required (" + header + " header or series_id query parameter)",
			})
			return
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: "series id must be a positive integer"})
			return
		}

		sr, err := st.GetSeries(c.Request.Context(), id)
		switch {
		case knowledge.IsNotFound(err):
			c.AbortWithStatusJSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
			return
		case err != nil:
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "internal storage error"})
			return
		}
		c.Set(seriesKey, sr)
		c.Next()
	}
}
