package handlers

import (
	"errors"
	"net/http"

	"reflow_oven/internal/models"
	"reflow_oven/internal/service"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK        = "ok"
	statusStarted   = "started"
	statusCancelled = "cancelled"
	statusBaking    = "baking"

	errGetState        = "failed to load state"
	errInvalidBodyPref = "invalid body: "
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// Respond with a status and include the current snapshot (best-effort).
func (h *Handler) respondWithStatusAndState(c *gin.Context, status string, extra gin.H) {
	ctx := c.Request.Context()
	resp := gin.H{"status": status}
	for k, v := range extra {
		resp[k] = v
	}
	st, err := h.services.Monitoring.GetState(ctx)
	if err == nil {
		resp["state"] = st
	}
	c.JSON(http.StatusOK, resp)
}

// controlStatusCode maps service errors onto HTTP codes: conflicts for
// stage-validation failures, 503 when the command queue is full.
func controlStatusCode(err error) int {
	switch {
	case errors.Is(err, service.ErrRunActive),
		errors.Is(err, service.ErrNoActiveRun),
		errors.Is(err, service.ErrSensorFaulted):
		return http.StatusConflict
	case errors.Is(err, service.ErrBusy):
		return http.StatusServiceUnavailable
	}
	return http.StatusBadRequest
}

// StartRunRequest is the start payload.
type StartRunRequest struct {
	// Profile to run. Allowed: LEAD_FREE, LEADED. Defaults to LEAD_FREE.
	Profile string `json:"profile" example:"LEAD_FREE"`
}

// BakeRequest is the bake payload.
type BakeRequest struct {
	// Constant hold temperature in Celsius
	TargetC float64 `json:"target_c" binding:"required" example:"120"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Start a reflow run
// @Description  Starts the selected profile from an idle view
// @Tags         oven
// @Accept       json
// @Produce      json
// @Param        body  body   StartRunRequest  false  "Profile payload"
// @Success      200  {object}  map[string]interface{}  "status, state"
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /api/v1/oven/start [post]
// @Security     BearerAuth
func (h *Handler) startRun(c *gin.Context) {
	var req StartRunRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
			return
		}
	}
	profile := models.Profile(req.Profile)
	if profile == "" {
		profile = models.ProfileLeadFree
	}

	ctx := c.Request.Context()
	if err := h.services.Oven.Start(ctx, profile); err != nil {
		if h.log != nil {
			h.log.Errorw("oven_start_failed", "err", err, "profile", profile)
		}
		c.JSON(controlStatusCode(err), gin.H{"error": err.Error()})
		return
	}
	h.respondWithStatusAndState(c, statusStarted, gin.H{"profile": profile})
}

// @Summary      Cancel the active run
// @Tags         oven
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /api/v1/oven/cancel [post]
// @Security     BearerAuth
func (h *Handler) cancelRun(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.services.Oven.Cancel(ctx); err != nil {
		if h.log != nil {
			h.log.Errorw("oven_cancel_failed", "err", err)
		}
		c.JSON(controlStatusCode(err), gin.H{"error": err.Error()})
		return
	}
	h.respondWithStatusAndState(c, statusCancelled, gin.H{})
}

// @Summary      Start a bake run
// @Description  Holds a constant temperature until cancelled
// @Tags         oven
// @Accept       json
// @Produce      json
// @Param        body  body   BakeRequest  true  "Bake payload"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /api/v1/oven/bake [post]
// @Security     BearerAuth
func (h *Handler) startBake(c *gin.Context) {
	var req BakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}

	ctx := c.Request.Context()
	if err := h.services.Oven.Bake(ctx, req.TargetC); err != nil {
		if h.log != nil {
			h.log.Errorw("oven_bake_failed", "err", err, "target_c", req.TargetC)
		}
		c.JSON(controlStatusCode(err), gin.H{"error": err.Error()})
		return
	}
	h.respondWithStatusAndState(c, statusBaking, gin.H{"target_c": req.TargetC})
}

// @Summary      Get oven state
// @Tags         oven
// @Produce      json
// @Success      200  {object}  models.OvenSnapshot
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/oven/state [get]
// @Security     BearerAuth
func (h *Handler) getState(c *gin.Context) {
	ctx := c.Request.Context()
	st, err := h.services.Monitoring.GetState(ctx)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetState, "oven_get_state_failed", err)
		return
	}
	c.JSON(http.StatusOK, st)
}
