package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/placementcell/recruit-portal/internal/core/domain"
	"github.com/placementcell/recruit-portal/internal/core/ports"
)

type AdminHandler struct {
	auditLog ports.AuditLogService
}

func NewAdminHandler(auditLog ports.AuditLogService) *AdminHandler {
	return &AdminHandler{auditLog: auditLog}
}

type adminLogsQuery struct {
	Limit int `query:"limit" validate:"gte=0"`
}

type adminLogsResponse struct {
	Events []domain.AuditEvent `json:"events"`
}

// Logs lists the most recent audit events.
//
// @Summary      Recent audit events
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query     int  false  "Maximum number of events (default 50, max 200)"
// @Success      200    {object}  adminLogsResponse
// @Failure      400    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Failure      403    {object}  map[string]string
// @Router       /admin/logs [get]
func (h *AdminHandler) Logs(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}

	var q adminLogsQuery
	if err := c.Bind(&q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if err := c.Validate(&q); err != nil {
		return err
	}

	events, err := h.auditLog.Recent(c.Request().Context(), id, q.Limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, adminLogsResponse{Events: events})
}
