package feedback

import (
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"

	"frsm-backend/middleware"
	"frsm-backend/models"
)

var validate = validator.New()

// Submit files a feedback entry from the authenticated user.
func Submit(pool *pgxpool.Pool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.GetUserIDFromClaims(c)
		if err != nil {
			return err
		}

		var req models.SubmitFeedbackRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest,
				"Subject and message are required; rating must be 1-5")
		}

		var f models.Feedback
		err = pool.QueryRow(c.Context(), `
			INSERT INTO feedback (user_id, subject, message, rating)
			VALUES ($1, $2, $3, $4)
			RETURNING id, user_id, subject, message, rating, status, submitted_at
		`, userID, req.Subject, req.Message, req.Rating).Scan(
			&f.ID, &f.UserID, &f.Subject, &f.Message, &f.Rating, &f.Status, &f.SubmittedAt)
		if err != nil {
			log.Printf("feedback insert failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to submit feedback")
		}
		return c.Status(fiber.StatusCreated).JSON(f)
	}
}

// List returns feedback entries for staff review, newest first.
func List(pool *pgxpool.Pool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rows, err := pool.Query(c.Context(), `
			SELECT f.id, f.user_id, f.subject, f.message, f.rating, f.status,
			       f.submitted_at, f.reviewed_at,
			       CASE WHEN u.id IS NULL THEN NULL
			            ELSE u.first_name || ' ' || u.last_name END
			FROM feedback f
			LEFT JOIN users u ON u.id = f.user_id
			ORDER BY f.submitted_at DESC
			LIMIT 200
		`)
		if err != nil {
			log.Printf("feedback list query failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to load feedback")
		}
		defer rows.Close()

		list := []models.Feedback{}
		for rows.Next() {
			var f models.Feedback
			if err := rows.Scan(&f.ID, &f.UserID, &f.Subject, &f.Message, &f.Rating,
				&f.Status, &f.SubmittedAt, &f.ReviewedAt, &f.SubmittedByName); err != nil {
				log.Printf("feedback list scan failed: %v", err)
				return fiber.NewError(fiber.StatusInternalServerError, "Failed to load feedback")
			}
			list = append(list, f)
		}
		if err := rows.Err(); err != nil {
			log.Printf("feedback list rows failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to load feedback")
		}
		return c.JSON(fiber.Map{"feedback": list, "count": len(list)})
	}
}

// MarkReviewed marks one feedback entry as reviewed by the acting staff user.
func MarkReviewed(pool *pgxpool.Pool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.GetUserIDFromClaims(c)
		if err != nil {
			return err
		}
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid feedback id")
		}

		tag, err := pool.Exec(c.Context(), `
			UPDATE feedback
			SET status = 'reviewed', reviewed_by = $2, reviewed_at = NOW()
			WHERE id = $1
		`, id, userID)
		if err != nil {
			log.Printf("feedback review failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to update feedback")
		}
		if tag.RowsAffected() == 0 {
			return fiber.NewError(fiber.StatusNotFound, "Feedback not found")
		}
		return c.JSON(fiber.Map{"success": true})
	}
}
