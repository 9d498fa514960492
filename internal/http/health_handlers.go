package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/open-builders/gws-backend/internal/workers"
)

// Pinger checks a dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// SchedulerHealth is implemented by workers.Scheduler.
type SchedulerHealth interface {
	Health() workers.HealthReport
}

// HealthHandlers serves liveness and readiness probes.
type HealthHandlers struct {
	storage   Pinger
	redis     Pinger
	scheduler SchedulerHealth
}

func NewHealthHandlers(storage, redis Pinger, scheduler SchedulerHealth) *HealthHandlers {
	return &HealthHandlers{storage: storage, redis: redis, scheduler: scheduler}
}

func (h *HealthHandlers) Register(r *gin.Engine) {
	r.GET("/live", h.live)
	r.GET("/ready", h.ready)
	r.GET("/health", h.ready)
}

func (h *HealthHandlers) live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type readiness struct {
	Status    string                `json:"status"`
	Checks    map[string]string     `json:"checks"`
	Scheduler *workers.HealthReport `json:"scheduler,omitempty"`
}

func (h *HealthHandlers) ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	resp := readiness{Status: "ok", Checks: map[string]string{}}
	check := func(name string, p Pinger) {
		if p == nil {
			return
		}
		if err := p.Ping(ctx); err != nil {
			resp.Checks[name] = err.Error()
			resp.Status = "unavailable"
			return
		}
		resp.Checks[name] = "ok"
	}
	check("storage", h.storage)
	check("redis", h.redis)

	if h.scheduler != nil {
		report := h.scheduler.Health()
		resp.Scheduler = &report
		if report.Healthy {
			resp.Checks["scheduler"] = "ok"
		} else {
			resp.Checks["scheduler"] = "unhealthy"
			resp.Status = "unavailable"
		}
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}
