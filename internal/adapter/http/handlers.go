package http

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/aquiferwatch/aquiferpulse/internal/artifact"
	"github.com/aquiferwatch/aquiferpulse/internal/query"
)

// defaultRankingClasses restricts rankings to the stressed tiers unless the
// client asks otherwise. An explicitly empty classes parameter disables the
// filter entirely.
const defaultRankingClasses = "alert,watch"

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"service": "aquiferpulse", "status": "ok"})
}

// handleHealth reports artifact presence and sizes so operators can tell a
// healthy empty deployment from a missing pipeline run.
func (s *Server) handleHealth(c *gin.Context) {
	info := func(path string) gin.H {
		st, err := os.Stat(path)
		h := gin.H{"path": path, "exists": err == nil}
		if err == nil {
			h["size"] = st.Size()
		} else {
			h["size"] = 0
		}
		return h
	}

	latest := info(s.cfg.LatestPath)
	if fc, err := artifact.ReadCollection(s.cfg.LatestPath); err == nil {
		latest["features"] = len(fc.Features)
	} else if !errors.Is(err, fs.ErrNotExist) {
		// Present but unparsable; -1 distinguishes corrupt from absent.
		latest["features"] = -1
	}

	c.JSON(http.StatusOK, gin.H{
		"asi_table":  info(s.cfg.TablePath),
		"asi_latest": latest,
		"basins":     info(s.cfg.BasinsPath),
	})
}

// handleLatest serves the coverage-selected snapshot.
// GET /asi/latest
func (s *Server) handleLatest(c *gin.Context) {
	fc, err := s.queries.Snapshot("")
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, fc)
}

// handleAt serves the snapshot for an explicit month.
// GET /asi/at?date=YYYY-MM[-DD]
func (s *Server) handleAt(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date query parameter is required"})
		return
	}
	fc, err := s.queries.Snapshot(date)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, fc)
}

// handleTop10 ranks basins by ASI ascending (most stressed first).
// GET /asi/top10?limit=10&classes=alert,watch&date=YYYY-MM
func (s *Server) handleTop10(c *gin.Context) {
	limit := s.cfg.RankingLimit
	if v := c.Query("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	classesParam := defaultRankingClasses
	if v, ok := c.GetQuery("classes"); ok {
		classesParam = v
	}
	classes := splitClasses(classesParam)

	entries, err := s.queries.Ranking(c.Query("date"), limit, classes)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// handleSummary counts basins per severity tier for one snapshot.
// GET /asi/summary?date=YYYY-MM
func (s *Server) handleSummary(c *gin.Context) {
	summary, err := s.queries.Summarize(c.Query("date"))
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// handleHistory returns a basin's full chronological record.
// GET /asi/history?basin_id=...
func (s *Server) handleHistory(c *gin.Context) {
	basinID := c.Query("basin_id")
	if basinID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "basin_id query parameter is required"})
		return
	}
	entries, err := s.queries.History(basinID)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// GET /asi/latest_date
func (s *Server) handleLatestDate(c *gin.Context) {
	latest, err := s.queries.LatestDate()
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"latest": latest})
}

// GET /asi/date_range
func (s *Server) handleDateRange(c *gin.Context) {
	bounds, err := s.queries.DateBounds()
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, bounds)
}

// renderError maps query-layer errors onto HTTP statuses: client input
// problems are 400, structural absences 404, everything else 500.
func (s *Server) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, query.ErrBadDate):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, query.ErrTableMissing), errors.Is(err, query.ErrUnknownBasin):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		s.logger.Error("query failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func splitClasses(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
