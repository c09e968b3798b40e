package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// @Summary      List runs
// @Description  Most recent runs first
// @Tags         runs
// @Produce      json
// @Param        limit  query  int  false  "Maximum results (default 50)"
// @Success      200  {object}  map[string]interface{}  "count, runs"
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/runs [get]
// @Security     BearerAuth
func (h *Handler) getRuns(c *gin.Context) {
	ctx := c.Request.Context()
	limit := 0
	if qs := c.Query("limit"); qs != "" {
		if v, err := strconv.Atoi(qs); err == nil {
			limit = v
		}
	}

	runs, err := h.services.RunLog.Runs(ctx, limit)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to load runs", "runs_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count": len(runs),
		"runs":  runs,
	})
}

// @Summary      Get one run
// @Tags         runs
// @Produce      json
// @Param        id  path  string  true  "Run id"
// @Success      200  {object}  models.RunRecord
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/runs/{id} [get]
// @Security     BearerAuth
func (h *Handler) getRun(c *gin.Context) {
	ctx := c.Request.Context()
	rec, err := h.services.RunLog.Run(ctx, c.Param("id"))
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to load run", "run_get_failed", err, "id", c.Param("id"))
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

// @Summary      Lifetime counters
// @Description  Per-outcome run counters since first boot
// @Tags         runs
// @Produce      json
// @Success      200  {object}  models.CounterSet
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/counters [get]
// @Security     BearerAuth
func (h *Handler) getCounters(c *gin.Context) {
	ctx := c.Request.Context()
	set, err := h.services.RunLog.Counters(ctx)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to load counters", "counters_load_failed", err)
		return
	}
	c.JSON(http.StatusOK, set)
}
