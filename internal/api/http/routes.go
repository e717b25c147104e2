package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/i474232898/weather-history/internal/chart"
	"github.com/i474232898/weather-history/internal/dashboard"
	"github.com/i474232898/weather-history/internal/store"
	"github.com/i474232898/weather-history/internal/weather"
)

var validate = validator.New()

// Deps are the collaborators the HTTP handlers need.
type Deps struct {
	Service  *weather.Service
	Fetcher  weather.HistoryFetcher
	Renderer *chart.Renderer
	Store    *store.MemoryStore
	// Dashboard seeds every new dashboard's catalog and initial selection.
	Dashboard dashboard.Config
	Logger    *slog.Logger
}

type handlers struct {
	Deps
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Dashboard.DefaultDays == 0 {
		deps.Dashboard.DefaultDays = weather.DefaultRange
	}
	h := &handlers{Deps: deps}

	v1 := app.Group("/api/v1")

	v1.Get("/options", h.options)
	v1.Get("/weather/history", h.history)
	v1.Get("/weather/chart.png", h.historyChart)

	d := v1.Group("/dashboards")
	d.Post("/", h.createDashboard)
	d.Get("/:id", h.getDashboard)
	d.Put("/:id/selection", h.updateSelection)
	d.Post("/:id/retry", h.retryDashboard)
	d.Get("/:id/chart.png", h.dashboardChart)
	d.Get("/:id/tooltip", h.dashboardTooltip)
	d.Delete("/:id/tooltip", h.hideTooltip)
	d.Delete("/:id", h.deleteDashboard)
}

func (h *handlers) options(c *fiber.Ctx) error {
	locations := h.Dashboard.Locations
	if len(locations) == 0 {
		locations = weather.Locations
	}
	ranges := h.Dashboard.Ranges
	if len(ranges) == 0 {
		ranges = weather.Ranges
	}

	return c.JSON(fiber.Map{
		"locations":       locations,
		"ranges":          ranges,
		"defaultLocation": h.Dashboard.DefaultLocation,
		"defaultDays":     h.Dashboard.DefaultDays,
		"chart":           h.Renderer.Options(),
	})
}

func (h *handlers) history(c *fiber.Ctx) error {
	var req historyQuery
	if err := req.bind(c, h.Dashboard.DefaultDays); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	result, err := h.Service.History(c.UserContext(), req.Location, req.Days)
	if err != nil {
		return upstreamError(err)
	}
	return c.JSON(result)
}

func (h *handlers) historyChart(c *fiber.Ctx) error {
	var req historyQuery
	if err := req.bind(c, h.Dashboard.DefaultDays); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	result, err := h.Service.History(c.UserContext(), req.Location, req.Days)
	if err != nil {
		return upstreamError(err)
	}

	ch, err := h.Renderer.Render(result.Chart)
	if err != nil {
		h.Logger.Warn("chart not drawn", "location", req.Location.Name, "err", err)
		return fiber.NewError(fiber.StatusUnprocessableEntity, "unable to draw chart for requested window")
	}
	defer ch.Destroy()

	png, err := ch.PNG()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to encode chart")
	}
	c.Type("png")
	return c.Send(png)
}

func (h *handlers) createDashboard(c *fiber.Ctx) error {
	var req selectionRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	cfg := h.Dashboard
	if req.Location != "" {
		loc, ok := weather.LookupLocation(req.Location)
		if !ok {
			return fiber.NewError(fiber.StatusBadRequest, "unknown location")
		}
		cfg.DefaultLocation = loc
	}
	if req.Days != 0 {
		cfg.DefaultDays = weather.RangeDays(req.Days)
	}

	id := uuid.NewString()
	ctrl, err := dashboard.New(h.Fetcher, h.Renderer, cfg, h.Logger.With("dashboard", id))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := ctrl.Activate(); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to start dashboard")
	}

	for _, evicted := range h.Store.Save(id, ctrl) {
		evicted.Close()
	}
	h.Logger.Info("dashboard created", "dashboard", id)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":       id,
		"snapshot": ctrl.Snapshot(),
	})
}

func (h *handlers) getDashboard(c *fiber.Ctx) error {
	ctrl, err := h.lookup(c)
	if err != nil {
		return err
	}
	return c.JSON(ctrl.Snapshot())
}

func (h *handlers) updateSelection(c *fiber.Ctx) error {
	ctrl, err := h.lookup(c)
	if err != nil {
		return err
	}

	var req selectionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Location == "" && req.Days == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "location or days is required")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	if err := ctrl.Update(req.Location, weather.RangeDays(req.Days)); err != nil {
		return dashboardError(err)
	}
	return c.Status(fiber.StatusAccepted).JSON(ctrl.Snapshot())
}

func (h *handlers) retryDashboard(c *fiber.Ctx) error {
	ctrl, err := h.lookup(c)
	if err != nil {
		return err
	}
	if err := ctrl.Retry(); err != nil {
		return dashboardError(err)
	}
	return c.Status(fiber.StatusAccepted).JSON(ctrl.Snapshot())
}

func (h *handlers) dashboardChart(c *fiber.Ctx) error {
	ctrl, err := h.lookup(c)
	if err != nil {
		return err
	}
	png, err := ctrl.ChartPNG()
	if err != nil {
		return dashboardError(err)
	}
	c.Type("png")
	return c.Send(png)
}

func (h *handlers) dashboardTooltip(c *fiber.Ctx) error {
	ctrl, err := h.lookup(c)
	if err != nil {
		return err
	}

	x, err := strconv.ParseFloat(c.Query("x"), 64)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "x must be a number")
	}
	y, err := strconv.ParseFloat(c.Query("y"), 64)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "y must be a number")
	}

	tip, err := ctrl.Hover(x, y)
	if err != nil {
		return dashboardError(err)
	}
	return c.JSON(tip)
}

func (h *handlers) hideTooltip(c *fiber.Ctx) error {
	ctrl, err := h.lookup(c)
	if err != nil {
		return err
	}
	tip, err := ctrl.Leave()
	if err != nil {
		return dashboardError(err)
	}
	return c.JSON(tip)
}

func (h *handlers) deleteDashboard(c *fiber.Ctx) error {
	id, err := dashboardID(c)
	if err != nil {
		return err
	}
	ctrl, err := h.Store.Delete(id)
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "dashboard not found")
	}
	ctrl.Close()
	h.Logger.Info("dashboard closed", "dashboard", id)
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *handlers) lookup(c *fiber.Ctx) (*dashboard.Controller, error) {
	id, err := dashboardID(c)
	if err != nil {
		return nil, err
	}
	ctrl, err := h.Store.Get(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "dashboard not found")
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, "failed to load dashboard")
	}
	return ctrl, nil
}

func dashboardID(c *fiber.Ctx) (string, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return "", fiber.NewError(fiber.StatusBadRequest, "invalid dashboard id")
	}
	return id.String(), nil
}

// upstreamError maps a weather client failure to an HTTP error carrying the
// user-facing message.
func upstreamError(err error) error {
	var reqErr *weather.RequestError
	var netErr *weather.NetworkError

	switch {
	case errors.As(err, &reqErr):
		switch reqErr.StatusCode {
		case fiber.StatusBadRequest, fiber.StatusTooManyRequests:
			return fiber.NewError(reqErr.StatusCode, reqErr.Message)
		default:
			return fiber.NewError(fiber.StatusBadGateway, reqErr.Message)
		}
	case errors.As(err, &netErr):
		if netErr.Timeout {
			return fiber.NewError(fiber.StatusGatewayTimeout, netErr.Message)
		}
		return fiber.NewError(fiber.StatusServiceUnavailable, netErr.Message)
	case errors.Is(err, context.Canceled):
		return fiber.NewError(fiber.StatusServiceUnavailable, "request cancelled")
	case errors.Is(err, weather.ErrInvalidRange):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch weather history")
	}
}

func dashboardError(err error) error {
	switch {
	case errors.Is(err, dashboard.ErrUnknownOption):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, dashboard.ErrClosed):
		return fiber.NewError(fiber.StatusGone, "dashboard closed")
	case errors.Is(err, dashboard.ErrNoChart), errors.Is(err, chart.ErrChartDestroyed):
		return fiber.NewError(fiber.StatusNotFound, "no chart drawn")
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "dashboard error")
	}
}
