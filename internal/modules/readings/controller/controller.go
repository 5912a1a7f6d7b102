package controller

import (
	"log/slog"
	"net/http"

	"github.com/SudeepS234/Iot-Stream-Validation/internal/modules/readings/repository"
	"github.com/SudeepS234/Iot-Stream-Validation/internal/modules/readings/service"
)

type ReadingsController interface {
	RegisterRoutes(mux *http.ServeMux)
}

type readingsControllerImpl struct {
	repository repository.ReadingsRepository
	service    *service.Service
	logger     *slog.Logger
}

func NewReadingsController(repository repository.ReadingsRepository, service *service.Service, logger *slog.Logger) ReadingsController {
	if logger == nil {
		logger = slog.Default()
	}
	return &readingsControllerImpl{repository: repository, service: service, logger: logger}
}

func (c *readingsControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /ingest", c.handleIngest)
	mux.HandleFunc("GET /readings", c.handleList)
	mux.HandleFunc("GET /readings/{id}", c.handleGet)
	mux.HandleFunc("DELETE /readings/delete/{id}", c.handleDelete)
	mux.HandleFunc("GET /summary", c.handleSummary)
}
