package readings

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/SudeepS234/Iot-Stream-Validation/internal/modules/readings/controller"
	"github.com/SudeepS234/Iot-Stream-Validation/internal/modules/readings/repository"
	"github.com/SudeepS234/Iot-Stream-Validation/internal/modules/readings/service"
	"github.com/SudeepS234/Iot-Stream-Validation/internal/mqtt"
)

// RegisterFeature wires the readings routes onto mux. When subscriber is
// non-nil MQTT messages go through the same ingest path.
func RegisterFeature(mux *http.ServeMux, db *sql.DB, subscriber mqtt.MQTTSubscriber, logger *slog.Logger) {
	readingsRepository := repository.NewRepository(db)
	readingsService := service.NewService(readingsRepository, logger)
	if subscriber != nil {
		readingsService.Register(subscriber)
	}
	readingsController := controller.NewReadingsController(readingsRepository, readingsService, logger)
	readingsController.RegisterRoutes(mux)
}
