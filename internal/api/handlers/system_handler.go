package handlers

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// SystemHandler serves the unauthenticated health endpoint.
type SystemHandler struct {
	started time.Time
}

// NewSystemHandler creates a new SystemHandler.
func NewSystemHandler() *SystemHandler {
	return &SystemHandler{started: time.Now()}
}

// HealthResponse reports process liveness plus a host snapshot.
type HealthResponse struct {
	Status         string  `json:"status"`
	UptimeSeconds  int64   `json:"uptimeSeconds"`
	CPUPercent     float64 `json:"cpuPercent"`
	MemUsedPercent float64 `json:"memUsedPercent"`
}

// Health returns liveness and host CPU/memory usage.
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(h.started).Seconds()),
	}

	if percents, err := cpu.Percent(0, false); err != nil {
		log.Warn().Err(err).Msg("Failed to read CPU usage")
	} else if len(percents) > 0 {
		resp.CPUPercent = percents[0]
	}

	if vm, err := mem.VirtualMemory(); err != nil {
		log.Warn().Err(err).Msg("Failed to read memory usage")
	} else {
		resp.MemUsedPercent = vm.UsedPercent
	}

	writeJSON(w, http.StatusOK, resp)
}
