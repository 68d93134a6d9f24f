package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

const healthCheckTimeout = 2 * time.Second

// ComponentHealth is the outcome of one health check
type ComponentHealth struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status     string                     `json:"status"`
	Timestamp  string                     `json:"timestamp"`
	Version    string                     `json:"version"`
	Uptime     string                     `json:"uptime"`
	Components map[string]ComponentHealth `json:"components"`
}

// health godoc
//
//	@Summary	Service health
//	@Tags		system
//	@Success	200	{object}	HealthResponse
//	@Failure	503	{object}	HealthResponse
//	@Router		/health [get]
func (h *Handler) health(c *gin.Context) {
	resp := HealthResponse{
		Status:     "ok",
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Version:    h.version,
		Uptime:     time.Since(h.started).Round(time.Second).String(),
		Components: h.checkComponents(c.Request.Context()),
	}

	for _, component := range resp.Components {
		if component.Status != "ok" {
			resp.Status = "degraded"
			c.JSON(http.StatusServiceUnavailable, resp)
			return
		}
	}

	c.JSON(http.StatusOK, resp)
}

// checkComponents runs every health check concurrently
func (h *Handler) checkComponents(ctx context.Context) map[string]ComponentHealth {
	results := make(map[string]ComponentHealth, len(h.healthChecks))
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)

	for name, check := range h.healthChecks {
		wg.Add(1)
		go func(name string, check HealthCheck) {
			defer wg.Done()

			checkCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
			defer cancel()

			component := ComponentHealth{Status: "ok"}
			if err := check(checkCtx); err != nil {
				component = ComponentHealth{Status: "unavailable", Error: err.Error()}
			}

			mu.Lock()
			results[name] = component
			mu.Unlock()
		}(name, check)
	}
	wg.Wait()

	return results
}

// runtimeStats godoc
//
//	@Summary	Runtime statistics of the service components
//	@Tags		system
//	@Success	200	{object}	map[string]interface{}
//	@Router		/v1/admin/stats [get]
func (h *Handler) runtimeStats(c *gin.Context) {
	out := gin.H{"metrics": h.metrics.GetStats()}
	for name, stats := range h.stats {
		out[name] = stats()
	}

	c.JSON(http.StatusOK, out)
}
