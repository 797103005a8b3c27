package health

import (
	"net/http"
	"time"

	"github.com/wayfare-app/wayfare/internal/infrastructure/json"
)

type healthResponse struct {
	Status    string    `json:"status"`
	Uptime    int64     `json:"uptime_seconds"`
	Timestamp time.Time `json:"timestamp"`
}

type Handler struct {
	started time.Time
}

func NewHandler() *Handler {
	return &Handler{started: time.Now()}
}

func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	json.Write(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Uptime:    int64(time.Since(h.started).Seconds()),
		Timestamp: time.Now().UTC(),
	})
}
