package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"evmap/pkg/contracts"
	"evmap/pkg/contracts/domain"
)

// HealthService provides health check functionality
type HealthService struct {
	version   string
	data      *DataService
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Records int    `json:"records"`
}

// NewHealthService creates a health service. data may be nil before ingestion finishes.
func NewHealthService(version string, data *DataService, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("HealthService initialized", slog.String("version", version))

	return &HealthService{
		version:   version,
		data:      data,
		startTime: time.Now(),
		logger:    logger,
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
			"commit":     contracts.GitCommit,
			"api":        contracts.APIVersion,
		},
	}

	hs.logger.DebugContext(ctx, "HealthCheck: completed",
		slog.String("status", status.Status),
		slog.String("uptime", time.Since(hs.startTime).String()))

	return status
}

// ReadinessCheck reports ready once every table holds at least one record
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services:  make(map[string]interface{}),
	}

	if hs.data == nil {
		status.Status = "not_ready"
		status.Services["data"] = ServiceHealth{Status: "not_ready", Message: "dataset not loaded"}
		return status
	}

	counts := hs.data.Counts()
	for _, source := range domain.Sources() {
		n := counts[source]
		sh := ServiceHealth{Status: "ready", Records: n}
		if n == 0 {
			sh.Status = "not_ready"
			sh.Message = "table is empty"
			status.Status = "not_ready"
		}
		status.Services[string(source)] = sh
	}

	if status.Status != "ready" {
		hs.logger.WarnContext(ctx, "ReadinessCheck: not ready", slog.Any("services", status.Services))
	}
	return status
}
