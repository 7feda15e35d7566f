package health

import (
	healthsvc "estate-backend/internal/application/health"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

type Handlers struct {
	Rdb *redis.Client
	DB  healthsvc.DBPinger
}

// Check GET /health — liveness plus dependency pings and traffic counters.
func (h *Handlers) Check(c *fiber.Ctx) error {
	result := healthsvc.Collect(c.Context(), h.Rdb, h.DB)
	status := fiber.StatusOK
	if result.Status != "ok" {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(result)
}
