package monitoring

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger is anything whose connectivity can be verified.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthChecker reports liveness and dependency readiness.
type HealthChecker struct {
	mongo Pinger
	redis Pinger
}

func NewHealthChecker(mongo, redis Pinger) *HealthChecker {
	return &HealthChecker{mongo: mongo, redis: redis}
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
	Time   time.Time         `json:"time"`
}

// Handler serves the health endpoint. Dependency failures degrade the
// response to 503 but individual check results are always included.
func (h *HealthChecker) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		checks := make(map[string]string)
		healthy := true

		if err := h.mongo.Ping(ctx); err != nil {
			checks["mongodb"] = err.Error()
			healthy = false
		} else {
			checks["mongodb"] = "ok"
		}

		if h.redis != nil {
			if err := h.redis.Ping(ctx); err != nil {
				checks["redis"] = err.Error()
				healthy = false
			} else {
				checks["redis"] = "ok"
			}
		}

		status := http.StatusOK
		statusText := "healthy"
		if !healthy {
			status = http.StatusServiceUnavailable
			statusText = "degraded"
		}

		c.JSON(status, healthResponse{
			Status: statusText,
			Checks: checks,
			Time:   time.Now(),
		})
	}
}
