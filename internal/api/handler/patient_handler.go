package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/neuroguard/patient-registry/internal/api/metrics"
	"github.com/neuroguard/patient-registry/internal/core/ports"
)

// PatientHandler handles HTTP requests for patient record operations.
type PatientHandler struct {
	service ports.PatientService
}

func NewPatientHandler(service ports.PatientService) *PatientHandler {
	return &PatientHandler{service: service}
}

// List handles GET /api/patients.
//
// @Summary      List all patient records
// @Tags         patients
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   patientResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /api/patients [get]
func (h *PatientHandler) List(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	patients, err := h.service.ListPatients(c.Request().Context(), actor)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toPatientListResponse(patients))
}

// Create handles POST /api/patients.
//
// @Summary      Create a patient record
// @Tags         patients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createPatientRequest  true  "Patient draft"
// @Success      201   {object}  patientResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/patients [post]
func (h *PatientHandler) Create(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req createPatientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	created, err := h.service.CreatePatient(c.Request().Context(), actor, toCreateInput(req))
	if err != nil {
		return err
	}

	metrics.MutationsTotal.WithLabelValues("create", string(actor.Role)).Inc()
	return c.JSON(http.StatusCreated, toPatientResponse(created))
}

// Update handles PUT /api/patients/:id with a partial draft.
//
// @Summary      Update a patient record
// @Tags         patients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "Patient id"
// @Param        body  body      updatePatientRequest  true  "Partial draft"
// @Success      200   {object}  patientResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/patients/{id} [put]
func (h *PatientHandler) Update(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req updatePatientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	updated, err := h.service.UpdatePatient(c.Request().Context(), actor, c.Param("id"), toDraft(req))
	if err != nil {
		return err
	}

	metrics.MutationsTotal.WithLabelValues("update", string(actor.Role)).Inc()
	return c.JSON(http.StatusOK, toPatientResponse(updated))
}

// Delete handles DELETE /api/patients/:id.
//
// @Summary      Delete a patient record
// @Tags         patients
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Patient id"
// @Success      200  {object}  deleteResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/patients/{id} [delete]
func (h *PatientHandler) Delete(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	if err := h.service.DeletePatient(c.Request().Context(), actor, c.Param("id")); err != nil {
		return err
	}

	metrics.MutationsTotal.WithLabelValues("delete", string(actor.Role)).Inc()
	return c.JSON(http.StatusOK, deleteResponse{Message: "patient deleted"})
}
