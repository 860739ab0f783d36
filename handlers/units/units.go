package units

import (
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"frsm-backend/models"
)

var validate = validator.New()

// List returns all units ordered by name.
func List(pool *pgxpool.Pool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rows, err := pool.Query(c.Context(), `
			SELECT id, unit_name, unit_code, unit_type, location
			FROM units
			ORDER BY unit_name ASC
		`)
		if err != nil {
			log.Printf("unit list query failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to load units")
		}
		defer rows.Close()

		list := []models.Unit{}
		for rows.Next() {
			var u models.Unit
			if err := rows.Scan(&u.ID, &u.UnitName, &u.UnitCode, &u.UnitType, &u.Location); err != nil {
				log.Printf("unit list scan failed: %v", err)
				return fiber.NewError(fiber.StatusInternalServerError, "Failed to load units")
			}
			list = append(list, u)
		}
		if err := rows.Err(); err != nil {
			log.Printf("unit list rows failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to load units")
		}
		return c.JSON(fiber.Map{"units": list, "count": len(list)})
	}
}

// Create adds a unit. Unit codes are unique.
func Create(pool *pgxpool.Pool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.CreateUnitRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "unit_name and unit_code are required")
		}

		var u models.Unit
		err := pool.QueryRow(c.Context(), `
			INSERT INTO units (unit_name, unit_code, unit_type, location)
			VALUES ($1, $2, $3, $4)
			RETURNING id, unit_name, unit_code, unit_type, location
		`, req.UnitName, req.UnitCode, req.UnitType, req.Location).Scan(
			&u.ID, &u.UnitName, &u.UnitCode, &u.UnitType, &u.Location)
		if err != nil {
			log.Printf("unit create failed: %v", err)
			return fiber.NewError(fiber.StatusConflict, "Could not create unit; the unit code may already exist")
		}
		return c.Status(fiber.StatusCreated).JSON(u)
	}
}

// Update modifies a unit's fields. Only provided fields change.
func Update(pool *pgxpool.Pool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid unit id")
		}

		var req models.UpdateUnitRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if req.UnitName == nil && req.UnitCode == nil && req.UnitType == nil && req.Location == nil {
			return fiber.NewError(fiber.StatusBadRequest, "Nothing to update")
		}

		var u models.Unit
		err = pool.QueryRow(c.Context(), `
			UPDATE units
			SET unit_name = COALESCE($2, unit_name),
			    unit_code = COALESCE($3, unit_code),
			    unit_type = COALESCE($4, unit_type),
			    location  = COALESCE($5, location)
			WHERE id = $1
			RETURNING id, unit_name, unit_code, unit_type, location
		`, id, req.UnitName, req.UnitCode, req.UnitType, req.Location).Scan(
			&u.ID, &u.UnitName, &u.UnitCode, &u.UnitType, &u.Location)
		if errors.Is(err, pgx.ErrNoRows) {
			return fiber.NewError(fiber.StatusNotFound, "Unit not found")
		}
		if err != nil {
			log.Printf("unit update failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to update unit")
		}
		return c.JSON(u)
	}
}

// Delete removes a unit that has no shifts or assignments pointing at it.
func Delete(pool *pgxpool.Pool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid unit id")
		}

		var inUse bool
		err = pool.QueryRow(c.Context(), `
			SELECT EXISTS (SELECT 1 FROM shifts WHERE unit_id = $1)
			    OR EXISTS (SELECT 1 FROM volunteer_assignments WHERE unit_id = $1)
		`, id).Scan(&inUse)
		if err != nil {
			log.Printf("unit in-use check failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to delete unit")
		}
		if inUse {
			return fiber.NewError(fiber.StatusConflict, "Unit is referenced by shifts or assignments")
		}

		tag, err := pool.Exec(c.Context(), `DELETE FROM units WHERE id = $1`, id)
		if err != nil {
			log.Printf("unit delete failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to delete unit")
		}
		if tag.RowsAffected() == 0 {
			return fiber.NewError(fiber.StatusNotFound, "Unit not found")
		}
		return c.JSON(fiber.Map{"success": true})
	}
}
