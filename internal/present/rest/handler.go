package rest

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/dlcs/iiif-presentation-sub002"
	"github.com/dlcs/iiif-presentation-sub002/internal/domain"
	"github.com/dlcs/iiif-presentation-sub002/internal/present/rest/presenter"
	"github.com/dlcs/iiif-presentation-sub002/internal/service"
	"github.com/dlcs/iiif-presentation-sub002/internal/usecase"
)

type Handler struct {
	config    domain.Config
	manifests *usecase.ManifestUsecase
	ingest    *service.IngestService
	signal    *service.SignalService
}

func NewHandler(
	config domain.Config,
	manifests *usecase.ManifestUsecase,
	ingest *service.IngestService,
	signal *service.SignalService,
) *Handler {
	return &Handler{
		config:    config,
		manifests: manifests,
		ingest:    ingest,
		signal:    signal,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/iiif/:customer/manifests/:id", h.handleGetManifest)
	e.PUT("/iiif/:customer/manifests/:id", h.handlePutManifest)
	e.POST("/iiif/:customer/manifests/:id/paintedResources", h.handlePaintedResources)
	e.POST("/iiif/:customer/manifests/:id/ingest", h.handleIngest)
	e.GET("/iiif/:customer/manifests/:id/canvasPaintings", h.handleGetPaintings)
	e.GET("/realtime", h.handleRealtime)
}

func customerParam(c echo.Context) (int, error) {
	return strconv.Atoi(c.Param("customer"))
}

func (h *Handler) handleGetManifest(c echo.Context) error {
	ctx := c.Request().Context()

	customerID, err := customerParam(c)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid customer")
	}

	m, err := h.manifests.GetManifest(ctx, customerID, c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return presenter.NotFound(c, "manifest not found")
		}
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, m)
}

func (h *Handler) handlePutManifest(c echo.Context) error {
	ctx := c.Request().Context()

	customerID, err := customerParam(c)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid customer")
	}

	var m iiif.Manifest
	if err := c.Bind(&m); err != nil {
		return presenter.BadRequest(c, err)
	}

	paintings, err := h.manifests.WriteManifest(ctx, customerID, c.Param("id"), &m)
	if err != nil {
		if isInputError(err) {
			return presenter.BadRequest(c, err)
		}
		return presenter.InternalError(c, err)
	}
	return presenter.Created(c, echo.Map{
		"status":          "accepted",
		"canvasPaintings": len(paintings),
	})
}

type paintedResourcesRequest struct {
	PaintedResources []iiif.PaintedResource `json:"paintedResources"`
}

func (h *Handler) handlePaintedResources(c echo.Context) error {
	ctx := c.Request().Context()

	customerID, err := customerParam(c)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid customer")
	}

	var req paintedResourcesRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}
	if len(req.PaintedResources) == 0 {
		return presenter.BadRequestMessage(c, "paintedResources is required")
	}

	result, err := h.manifests.WritePaintedResources(ctx, customerID, c.Param("id"), req.PaintedResources)
	if err != nil {
		if isInputError(err) {
			return presenter.BadRequest(c, err)
		}
		return presenter.InternalError(c, err)
	}
	return presenter.Created(c, echo.Map{
		"status":          "accepted",
		"canvasPaintings": len(result.Paintings),
		"implicitOrder":   result.ImplicitOrder,
	})
}

func (h *Handler) handleIngest(c echo.Context) error {
	ctx := c.Request().Context()

	customerID, err := customerParam(c)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid customer")
	}

	m, err := h.ingest.Complete(ctx, customerID, c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return presenter.NotFound(c, err.Error())
		}
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, m)
}

func (h *Handler) handleGetPaintings(c echo.Context) error {
	ctx := c.Request().Context()

	customerID, err := customerParam(c)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid customer")
	}

	paintings, err := h.manifests.GetPaintings(ctx, customerID, c.Param("id"))
	if err != nil {
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, paintings)
}

func isInputError(err error) bool {
	return errors.Is(err, domain.ErrValidation) ||
		errors.Is(err, domain.ErrOrdering) ||
		errors.Is(err, domain.ErrUnsupportedBody)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func (h *Handler) handleRealtime(c echo.Context) error {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"Failed to upgrade WebSocket",
			slog.String("error", err.Error()),
			slog.String("module", "socket"),
		)
		return err
	}
	defer func() {
		ws.Close()
	}()

	ctx := c.Request().Context()

	events, cancel := h.signal.Subscribe(ctx)
	defer cancel()

	quit := make(chan struct{})

	go func() {
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				wsErr, ok := err.(*websocket.CloseError)
				if ok {
					if !(wsErr.Code == websocket.CloseNormalClosure || wsErr.Code == websocket.CloseGoingAway) {
						slog.DebugContext(
							ctx, "WebSocket closed",
							slog.String("error", wsErr.Error()),
							slog.String("module", "socket"),
						)
					}
				} else {
					slog.DebugContext(
						ctx, "Error reading message",
						slog.String("error", err.Error()),
						slog.String("module", "socket"),
					)
				}
				close(quit)
				return
			}
		}
	}()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return nil
			}
			if err := ws.WriteJSON(event); err != nil {
				slog.ErrorContext(
					ctx, "Error writing event",
					slog.String("error", err.Error()),
					slog.String("module", "socket"),
				)
				return nil
			}
		case <-quit:
			return nil
		case <-ctx.Done():
			return nil
		}
	}
}
