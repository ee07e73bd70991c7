package server

import (
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/quantfolio/allocengine/internal/database"
	"github.com/quantfolio/allocengine/internal/scheduler"
)

// SystemHandlers handles health and monitoring endpoints.
type SystemHandlers struct {
	log       zerolog.Logger
	db        *database.DB
	scheduler *scheduler.Scheduler
	startedAt time.Time
}

// NewSystemHandlers creates a new system handlers instance
func NewSystemHandlers(log zerolog.Logger, db *database.DB, sched *scheduler.Scheduler) *SystemHandlers {
	return &SystemHandlers{
		log:       log.With().Str("component", "system_handlers").Logger(),
		db:        db,
		scheduler: sched,
		startedAt: time.Now(),
	}
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Database      string  `json:"database"`
}

// SystemStatusResponse carries host-level resource usage and the state of the
// background scheduler.
type SystemStatusResponse struct {
	UptimeSeconds  float64 `json:"uptime_seconds"`
	CPUPercent     float64 `json:"cpu_percent"`
	MemUsedPercent float64 `json:"mem_used_percent"`
	MemUsedMB      float64 `json:"mem_used_mb"`
	MemTotalMB     float64 `json:"mem_total_mb"`
	ScheduledJobs  int     `json:"scheduled_jobs"`
}

// DatabaseStatsResponse summarizes the recommendation store.
type DatabaseStatsResponse struct {
	Path        string  `json:"path"`
	SizeMB      float64 `json:"size_mb"`
	WALSizeMB   float64 `json:"wal_size_mb"`
	LastChecked string  `json:"last_checked"`
}

// HandleHealth handles GET /health
func (h *SystemHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:        "ok",
		UptimeSeconds: time.Since(h.startedAt).Seconds(),
		Database:      "ok",
	}

	if h.db != nil {
		if err := h.db.HealthCheck(r.Context()); err != nil {
			h.log.Error().Err(err).Msg("Database health check failed")
			resp.Status = "degraded"
			resp.Database = err.Error()
		}
	} else {
		resp.Database = "disabled"
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode health response")
	}
}

// HandleSystemStatus handles GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	resp := SystemStatusResponse{
		UptimeSeconds: time.Since(h.startedAt).Seconds(),
	}
	if h.scheduler != nil {
		resp.ScheduledJobs = h.scheduler.Jobs()
	}

	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		resp.CPUPercent = percents[0]
	} else if err != nil {
		h.log.Warn().Err(err).Msg("Failed to read CPU usage")
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		resp.MemUsedPercent = vm.UsedPercent
		resp.MemUsedMB = float64(vm.Used) / 1024 / 1024
		resp.MemTotalMB = float64(vm.Total) / 1024 / 1024
	} else {
		h.log.Warn().Err(err).Msg("Failed to read memory usage")
	}

	h.writeJSON(w, resp)
}

// HandleDatabaseStats handles GET /api/system/database/stats
func (h *SystemHandlers) HandleDatabaseStats(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		http.Error(w, "Persistence is disabled", http.StatusNotFound)
		return
	}

	resp := DatabaseStatsResponse{
		Path:        h.db.Path(),
		LastChecked: time.Now().Format(time.RFC3339),
	}
	if info, err := os.Stat(h.db.Path()); err == nil {
		resp.SizeMB = float64(info.Size()) / 1024 / 1024
	}
	if info, err := os.Stat(h.db.Path() + "-wal"); err == nil {
		resp.WALSizeMB = float64(info.Size()) / 1024 / 1024
	}

	h.writeJSON(w, resp)
}

// writeJSON writes a JSON response
func (h *SystemHandlers) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
