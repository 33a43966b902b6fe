package notification

import (
	"net/http"
	"strconv"

	"wabalerts/internal/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the notification domain.
type Handler struct {
	engine *Engine
	logger *zap.Logger
}

// NewHandler creates a new notification handler.
func NewHandler(engine *Engine, logger *zap.Logger) *Handler {
	return &Handler{engine: engine, logger: logger}
}

// Event handles POST /api/v1/events
// Dispatches a shop event synchronously. Delivery failures are reported in the
// result with 200; they are logged by the engine, not retried.
func (h *Handler) Event(c *gin.Context) {
	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Error(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	ev, err := req.ToEvent()
	if err != nil {
		common.HandleError(c, err)
		return
	}

	result, err := h.engine.Dispatch(c.Request.Context(), ev)
	if err != nil {
		h.logger.Error("event dispatch failed",
			zap.String("kind", string(req.Kind)),
			zap.String("request_id", c.GetString(common.RequestIDKey)),
			zap.Error(err),
		)
		common.HandleError(c, err)
		return
	}

	common.Success(c, http.StatusOK, result)
}

// Broadcast handles POST /api/v1/groups/:id/broadcast
func (h *Handler) Broadcast(c *gin.Context) {
	groupID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || groupID <= 0 {
		common.Error(c, http.StatusBadRequest, "invalid group id: "+c.Param("id"))
		return
	}

	result, err := h.engine.DispatchGroup(c.Request.Context(), GroupBroadcast{GroupID: groupID})
	if err != nil {
		h.logger.Error("group broadcast failed",
			zap.Int64("group_id", groupID),
			zap.Error(err),
		)
		common.HandleError(c, err)
		return
	}

	common.Success(c, http.StatusOK, result)
}

// Reports handles GET /api/v1/reports
func (h *Handler) Reports(c *gin.Context) {
	var query ReportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		common.Error(c, http.StatusBadRequest, "invalid query parameters: "+err.Error())
		return
	}

	filter, err := query.Filter()
	if err != nil {
		common.HandleError(c, err)
		return
	}

	reports, err := h.engine.ListDeliveryReports(c.Request.Context(), filter)
	if err != nil {
		common.HandleError(c, err)
		return
	}

	common.Success(c, http.StatusOK, ReportResponse{Reports: reports, Total: len(reports)})
}

// RegisterRoutes registers notification routes to the given router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/events", h.Event)
	rg.POST("/groups/:id/broadcast", h.Broadcast)
	rg.GET("/reports", h.Reports)
}
