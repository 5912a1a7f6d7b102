package controller

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/SudeepS234/Iot-Stream-Validation/internal/modules/readings/types"
	"github.com/SudeepS234/Iot-Stream-Validation/internal/modules/readings/validation"
	"github.com/SudeepS234/Iot-Stream-Validation/internal/utils"
)

const (
	msgValidationFailed = "request validation failed"
	msgNotFound         = "Requested id not found in the database"
	msgInvertedRange    = "Error: Minimum temperature cannot be greater than maximum temperature"
	msgInternal         = "internal server error"
)

type ingestResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

type deleteResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

func (c *readingsControllerImpl) handleIngest(w http.ResponseWriter, r *http.Request) {
	payload, err := decodeReading(w, r)
	if err != nil {
		writeValidationError(w, err)
		return
	}

	id, err := c.service.Ingest(r.Context(), payload)
	var violation *validation.RuleViolation
	switch {
	case errors.As(err, &violation):
		c.logger.Info("reading rejected", "sensor_id", payload.SensorID, "reason", violation.Reason)
		utils.WriteError(w, http.StatusUnprocessableEntity, utils.CodeInvalidReading, violation.Error())
		return
	case isValidationError(err):
		writeValidationError(w, err)
		return
	case err != nil:
		c.internalError(w, r, "ingest reading", err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/readings/%d", id))
	utils.WriteJSON(w, http.StatusCreated, ingestResponse{Message: "Successfully ingested reading", ID: id})
}

func (c *readingsControllerImpl) handleList(w http.ResponseWriter, r *http.Request) {
	filter, err := parseListQuery(r)
	if errors.Is(err, errInvertedRange) {
		utils.WriteError(w, http.StatusBadRequest, utils.CodeBadRequest, msgInvertedRange)
		return
	}
	if err != nil {
		writeValidationError(w, err)
		return
	}

	readings, err := c.repository.ListReadings(r.Context(), filter)
	if err != nil {
		c.internalError(w, r, "list readings", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, readings)
}

func (c *readingsControllerImpl) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeValidationError(w, err)
		return
	}

	reading, err := c.repository.GetReading(r.Context(), id)
	if errors.Is(err, types.ErrNotFound) {
		utils.WriteError(w, http.StatusNotFound, utils.CodeNotFound, msgNotFound)
		return
	}
	if err != nil {
		c.internalError(w, r, "get reading", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, reading)
}

func (c *readingsControllerImpl) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeValidationError(w, err)
		return
	}

	err = c.repository.DeleteReading(r.Context(), id)
	if errors.Is(err, types.ErrNotFound) {
		utils.WriteError(w, http.StatusNotFound, utils.CodeNotFound, msgNotFound)
		return
	}
	if err != nil {
		c.internalError(w, r, "delete reading", err)
		return
	}
	c.logger.Info("reading deleted", "id", id)
	utils.WriteJSON(w, http.StatusOK, deleteResponse{
		Message: fmt.Sprintf("Record with id: %d successfully deleted from the database", id),
		ID:      id,
	})
}

func (c *readingsControllerImpl) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := c.repository.Summary(r.Context())
	if err != nil {
		c.internalError(w, r, "summary", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, summary)
}

func (c *readingsControllerImpl) internalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	c.logger.Error(op+" failed", "method", r.Method, "path", r.URL.Path, "error", err)
	utils.WriteError(w, http.StatusInternalServerError, utils.CodeInternal, msgInternal)
}

func isValidationError(err error) bool {
	var fe validation.FieldErrors
	return errors.As(err, &fe)
}

func writeValidationError(w http.ResponseWriter, err error) {
	var fe validation.FieldErrors
	if !errors.As(err, &fe) {
		fe = validation.FieldErrors{{Field: "body", Message: err.Error()}}
	}
	utils.WriteErrorDetail(w, http.StatusUnprocessableEntity, utils.CodeValidation, msgValidationFailed, fe)
}
