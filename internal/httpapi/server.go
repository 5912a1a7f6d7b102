package httpapi

import (
	"database/sql"
	"net/http"

	"github.com/SudeepS234/Iot-Stream-Validation/internal/config"
)

// NewMux returns a mux with the liveness and readiness probes registered.
// Feature modules add their own routes to it.
func NewMux(db *sql.DB) *http.ServeMux {
	mux := http.NewServeMux()
	registerHealthcheck(mux, db)
	return mux
}

func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           requestLogger(handler),
		ReadHeaderTimeout: cfg.HTTPReadHeaderTimeout,
	}
}
