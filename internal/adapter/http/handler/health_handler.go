package handler

import (
	"net/http"

	"jots/internal/core/ports"

	"github.com/gin-gonic/gin"
)

// HealthCheck handles GET /health. With no checkers it reports liveness only;
// with checkers it verifies each dependency and degrades accordingly.
func HealthCheck(checkers ...ports.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		type depStatus struct {
			Status string `json:"status"`
			Error  string `json:"error,omitempty"`
		}

		deps := make(map[string]depStatus)
		allHealthy := true

		for _, checker := range checkers {
			if err := checker.Ping(c.Request.Context()); err != nil {
				deps[checker.Name()] = depStatus{Status: "unhealthy", Error: err.Error()}
				allHealthy = false
			} else {
				deps[checker.Name()] = depStatus{Status: "healthy"}
			}
		}

		status := "ok"
		httpCode := http.StatusOK
		if !allHealthy {
			status = "degraded"
			httpCode = http.StatusServiceUnavailable
		}

		body := gin.H{"status": status}
		if len(deps) > 0 {
			body["dependencies"] = deps
		}
		c.JSON(httpCode, body)
	}
}
