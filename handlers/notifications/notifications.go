package notifications

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"

	"frsm-backend/middleware"
	"frsm-backend/models"
)

// ListMine returns the authenticated user's notifications, newest first, with
// an unread count.
func ListMine(pool *pgxpool.Pool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.GetUserIDFromClaims(c)
		if err != nil {
			return err
		}

		rows, err := pool.Query(c.Context(), `
			SELECT id, user_id, type, title, message, is_read, created_at
			FROM notifications
			WHERE user_id = $1
			ORDER BY created_at DESC
			LIMIT 100
		`, userID)
		if err != nil {
			log.Printf("notifications query failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to load notifications")
		}
		defer rows.Close()

		list := []models.Notification{}
		unread := 0
		for rows.Next() {
			var n models.Notification
			if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message,
				&n.IsRead, &n.CreatedAt); err != nil {
				log.Printf("notifications scan failed: %v", err)
				return fiber.NewError(fiber.StatusInternalServerError, "Failed to load notifications")
			}
			if !n.IsRead {
				unread++
			}
			list = append(list, n)
		}
		if err := rows.Err(); err != nil {
			log.Printf("notifications rows failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to load notifications")
		}
		return c.JSON(fiber.Map{"notifications": list, "unread_count": unread})
	}
}

// MarkRead marks one of the user's notifications as read.
func MarkRead(pool *pgxpool.Pool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.GetUserIDFromClaims(c)
		if err != nil {
			return err
		}
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid notification id")
		}

		tag, err := pool.Exec(c.Context(), `
			UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2
		`, id, userID)
		if err != nil {
			log.Printf("notification mark read failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to update notification")
		}
		if tag.RowsAffected() == 0 {
			return fiber.NewError(fiber.StatusNotFound, "Notification not found")
		}
		return c.JSON(fiber.Map{"success": true})
	}
}

// ReadAll marks every unread notification for the user as read.
func ReadAll(pool *pgxpool.Pool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.GetUserIDFromClaims(c)
		if err != nil {
			return err
		}
		tag, err := pool.Exec(c.Context(), `
			UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND is_read = FALSE
		`, userID)
		if err != nil {
			log.Printf("notifications read all failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to update notifications")
		}
		return c.JSON(fiber.Map{"success": true, "updated": tag.RowsAffected()})
	}
}
