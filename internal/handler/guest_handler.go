package handler

import (
	"errors"
	"net/http"

	"github.com/attendly/checkin-console/internal/dto"
	"github.com/attendly/checkin-console/internal/gateway"
	"github.com/attendly/checkin-console/internal/scanner"
	"github.com/attendly/checkin-console/internal/service"
	"github.com/labstack/echo/v4"
)

type GuestHandler struct {
	svc  service.CheckInService
	scan *scanner.Adapter
}

func NewGuestHandler(svc service.CheckInService, scan *scanner.Adapter) *GuestHandler {
	return &GuestHandler{svc: svc, scan: scan}
}

func (h *GuestHandler) RegisterRoutes(e *echo.Echo) {
	roster := e.Group("/api/v1/roster")
	roster.GET("/guests", h.ListGuests)
	roster.POST("/guests", h.AddManualGuest)
	roster.POST("/guests/:id/check-in", h.CheckInGuest)
	roster.DELETE("/guests/:id/check-in", h.UndoCheckIn)
	roster.POST("/refresh", h.RefreshRoster)
	roster.GET("/mutations", h.ListMutations)

	e.POST("/api/v1/scan", h.SubmitScan)
	e.POST("/api/v1/scan/errors", h.ReportScanError)
	e.GET("/api/v1/scan/status", h.ScanStatus)
}

func (h *GuestHandler) ListGuests(c echo.Context) error {
	return c.JSON(http.StatusOK, h.rosterResponse())
}

func (h *GuestHandler) RefreshRoster(c echo.Context) error {
	if err := h.svc.Refresh(c.Request().Context()); err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, h.rosterResponse())
}

func (h *GuestHandler) AddManualGuest(c echo.Context) error {
	var req dto.AddGuestRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}

	guest := h.svc.AddManual(req.Name, req.Email)
	return c.JSON(http.StatusCreated, dto.ToGuestResponse(&guest))
}

func (h *GuestHandler) CheckInGuest(c echo.Context) error {
	guestID := c.Param("id")
	if guestID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "guest id is required")
	}

	if err := h.svc.CheckIn(c.Request().Context(), guestID); err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, h.rosterResponse())
}

func (h *GuestHandler) UndoCheckIn(c echo.Context) error {
	guestID := c.Param("id")
	if guestID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "guest id is required")
	}

	if err := h.svc.UndoCheckIn(c.Request().Context(), guestID); err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, h.rosterResponse())
}

func (h *GuestHandler) ListMutations(c echo.Context) error {
	return c.JSON(http.StatusOK, dto.MutationsResponse{Mutations: h.svc.Mutations()})
}

func (h *GuestHandler) SubmitScan(c echo.Context) error {
	var req dto.ScanRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Code == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "code is required")
	}

	err := h.scan.Submit(c.Request().Context(), req.Code)
	if errors.Is(err, scanner.ErrScanInFlight) {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	if errors.Is(err, gateway.ErrUnauthorized) {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	// Other failures are rendered by the scanner's own transient state.
	return c.JSON(http.StatusOK, h.scanStatusResponse())
}

func (h *GuestHandler) ReportScanError(c echo.Context) error {
	var req dto.ScanErrorRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	h.scan.ReportDecodeError(req.Message)
	return c.JSON(http.StatusOK, h.scanStatusResponse())
}

func (h *GuestHandler) ScanStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, h.scanStatusResponse())
}

func (h *GuestHandler) rosterResponse() dto.RosterResponse {
	guests := h.svc.Guests()
	resp := dto.RosterResponse{
		Guests: make([]dto.GuestResponse, len(guests)),
		Count:  len(guests),
		Error:  h.svc.GuestError(),
	}
	for i := range guests {
		resp.Guests[i] = dto.ToGuestResponse(&guests[i])
	}
	return resp
}

func (h *GuestHandler) scanStatusResponse() dto.ScanStatusResponse {
	status, message := h.scan.State()
	return dto.ScanStatusResponse{Status: string(status), Message: message}
}

func mapServiceError(err error) error {
	var remote *gateway.RemoteError
	var network *gateway.NetworkError

	switch {
	case errors.Is(err, service.ErrGuestNotLinked):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUndoRequiresTicket):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrMutationInFlight):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, gateway.ErrUnauthorized):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	case errors.As(err, &remote):
		return echo.NewHTTPError(http.StatusBadGateway, remote.Error())
	case errors.As(err, &network):
		return echo.NewHTTPError(http.StatusBadGateway, network.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
