package medication

import (
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
	api.POST("/prescriptions", h.CreatePrescription)
	api.GET("/prescriptions", h.ListPrescriptions)
	api.GET("/prescriptions/:id", h.GetPrescription)
	api.GET("/users/:id/prescriptions", h.ListPatientPrescriptions)
}

func (h *Handler) CreatePrescription(c echo.Context) error {
	var in PrescriptionCreate
	if err := validation.Bind(c, &in); err != nil {
		return err
	}
	p, err := h.svc.CreatePrescription(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, NewPrescriptionResponse(p))
}

func (h *Handler) GetPrescription(c echo.Context) error {
	id, err := validation.PathID(c, "id")
	if err != nil {
		return err
	}
	p, err := h.svc.GetPrescription(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, NewPrescriptionResponse(p))
}

func (h *Handler) ListPrescriptions(c echo.Context) error {
	items, err := h.svc.ListPrescriptions(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, NewPrescriptionResponses(items))
}

func (h *Handler) ListPatientPrescriptions(c echo.Context) error {
	id, err := validation.PathID(c, "id")
	if err != nil {
		return err
	}
	items, err := h.svc.ListPatientPrescriptions(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, NewPrescriptionResponses(items))
}
