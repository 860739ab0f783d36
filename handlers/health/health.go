package health

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Check reports process liveness and database reachability.
func Check(pool *pgxpool.Pool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbStatus := "ok"
		if err := pool.Ping(c.Context()); err != nil {
			dbStatus = "unreachable"
		}

		status := fiber.StatusOK
		if dbStatus != "ok" {
			status = fiber.StatusServiceUnavailable
		}
		return c.Status(status).JSON(fiber.Map{
			"status":   dbStatus,
			"database": dbStatus,
			"time":     time.Now().UTC().Format(time.RFC3339),
		})
	}
}
