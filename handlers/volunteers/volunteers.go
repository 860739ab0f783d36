package volunteers

import (
	"errors"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"frsm-backend/models"
	"frsm-backend/stats"
)

// List returns the approved volunteer roster for staff, with optional
// standing and unit filters.
func List(pool *pgxpool.Pool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		query := `
			SELECT v.id, v.user_id, v.first_name, v.last_name, v.contact_number,
			       v.email, v.status, v.volunteer_status, v.created_at,
			       u.unit_name, u.unit_code
			FROM volunteers v
			LEFT JOIN volunteer_assignments va
				ON va.volunteer_id = v.id AND va.status = 'Active'
			LEFT JOIN units u ON u.id = va.unit_id
			WHERE v.status = 'approved'`
		args := []any{}
		n := 0

		if standing := c.Query("standing"); standing != "" {
			n++
			query += " AND v.volunteer_status = $" + strconv.Itoa(n)
			args = append(args, standing)
		}
		if v := c.Query("unit_id"); v != "" {
			id, err := strconv.Atoi(v)
			if err != nil || id <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "unit_id must be a positive integer")
			}
			n++
			query += " AND va.unit_id = $" + strconv.Itoa(n)
			args = append(args, id)
		}
		query += " ORDER BY v.last_name ASC, v.first_name ASC"

		rows, err := pool.Query(c.Context(), query, args...)
		if err != nil {
			log.Printf("volunteer list query failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to load volunteers")
		}
		defer rows.Close()

		list := []models.Volunteer{}
		for rows.Next() {
			var v models.Volunteer
			if err := rows.Scan(&v.ID, &v.UserID, &v.FirstName, &v.LastName,
				&v.ContactNumber, &v.Email, &v.Status, &v.VolunteerStatus,
				&v.CreatedAt, &v.UnitName, &v.UnitCode); err != nil {
				log.Printf("volunteer list scan failed: %v", err)
				return fiber.NewError(fiber.StatusInternalServerError, "Failed to load volunteers")
			}
			list = append(list, v)
		}
		if err := rows.Err(); err != nil {
			log.Printf("volunteer list rows failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to load volunteers")
		}
		return c.JSON(fiber.Map{"volunteers": list, "count": len(list)})
	}
}

// Get returns one volunteer with their shift and attendance summaries.
func Get(pool *pgxpool.Pool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid volunteer id")
		}

		var v models.Volunteer
		err = pool.QueryRow(c.Context(), `
			SELECT v.id, v.user_id, v.first_name, v.last_name, v.contact_number,
			       v.email, v.status, v.volunteer_status, v.gender, v.civil_status,
			       v.created_at, u.unit_name, u.unit_code
			FROM volunteers v
			LEFT JOIN volunteer_assignments va
				ON va.volunteer_id = v.id AND va.status = 'Active'
			LEFT JOIN units u ON u.id = va.unit_id
			WHERE v.id = $1
		`, id).Scan(&v.ID, &v.UserID, &v.FirstName, &v.LastName, &v.ContactNumber,
			&v.Email, &v.Status, &v.VolunteerStatus, &v.Gender, &v.CivilStatus,
			&v.CreatedAt, &v.UnitName, &v.UnitCode)
		if errors.Is(err, pgx.ErrNoRows) {
			return fiber.NewError(fiber.StatusNotFound, "Volunteer not found")
		}
		if err != nil {
			log.Printf("volunteer get failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to load volunteer")
		}

		shiftSummary, err := stats.ShiftStatusBreakdownFor(c.Context(), pool, v.ID)
		if err != nil {
			log.Printf("volunteer shift summary failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to load volunteer")
		}
		participation, err := stats.ParticipationSummaryFor(c.Context(), pool, v.ID)
		if err != nil {
			log.Printf("volunteer participation summary failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to load volunteer")
		}

		return c.JSON(fiber.Map{
			"volunteer":     v,
			"shift_summary": shiftSummary,
			"participation": participation,
		})
	}
}
