package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

func (handler *HealthHandler) Init(router *mux.Router) {
	router.HandleFunc("/health", handler.Health).Methods(http.MethodGet)
}

func (handler *HealthHandler) Health(writer http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
	defer cancel()

	if err := handler.db.Ping(ctx); err != nil {
		jsonResponse(map[string]string{"status": "unavailable"}, writer, http.StatusServiceUnavailable)
		return
	}
	jsonResponse(map[string]string{"status": "ok"}, writer, http.StatusOK)
}
