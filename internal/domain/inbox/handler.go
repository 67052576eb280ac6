package inbox

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clinic/clinic/internal/platform/validation"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/messages", h.SendMessage)
	api.GET("/messages", h.ListMessages)
	api.GET("/messages/:id", h.GetMessage)
	api.GET("/users/:id/messages/sent", h.ListSent)
	api.GET("/users/:id/messages/received", h.ListReceived)
}

func (h *Handler) SendMessage(c echo.Context) error {
	var in MessageCreate
	if err := validation.Bind(c, &in); err != nil {
		return err
	}
	m, err := h.svc.SendMessage(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, NewMessageResponse(m))
}

func (h *Handler) GetMessage(c echo.Context) error {
	id, err := validation.PathID(c, "id")
	if err != nil {
		return err
	}
	m, err := h.svc.GetMessage(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, NewMessageResponse(m))
}

func (h *Handler) ListMessages(c echo.Context) error {
	items, err := h.svc.ListMessages(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, NewMessageResponses(items))
}

func (h *Handler) ListSent(c echo.Context) error {
	return h.listForUser(c, h.svc.ListSent)
}

func (h *Handler) ListReceived(c echo.Context) error {
	return h.listForUser(c, h.svc.ListReceived)
}

func (h *Handler) listForUser(c echo.Context, list func(ctx context.Context, userID int64) ([]*Message, error)) error {
	id, err := validation.PathID(c, "id")
	if err != nil {
		return err
	}
	items, err := list(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, NewMessageResponses(items))
}
