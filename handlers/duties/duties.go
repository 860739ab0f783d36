package duties

import (
	"errors"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"frsm-backend/middleware"
	"frsm-backend/models"
	"frsm-backend/stats"
)

func resolveVolunteer(c *fiber.Ctx, pool *pgxpool.Pool) (int64, error) {
	userID, err := middleware.GetUserIDFromClaims(c)
	if err != nil {
		return 0, err
	}
	var volunteerID int64
	err = pool.QueryRow(c.Context(), `
		SELECT id FROM volunteers WHERE user_id = $1 AND status = 'approved'
	`, userID).Scan(&volunteerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fiber.NewError(fiber.StatusForbidden, "No approved volunteer record for this account")
	}
	if err != nil {
		log.Printf("resolve volunteer failed: %v", err)
		return 0, fiber.NewError(fiber.StatusInternalServerError, "Failed to load volunteer record")
	}
	return volunteerID, nil
}

// SplitRequirements turns a comma-separated requirement string into a clean
// list: entries are trimmed and empty entries dropped.
func SplitRequirements(raw string) []string {
	parts := strings.Split(raw, ",")
	out := []string{}
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

type dutyFilters struct {
	status    string // shift status, "" for all
	timeframe string // upcoming | past | ""
	date      string
	unitID    int
}

func buildDutyFilters(c *fiber.Ctx) (dutyFilters, error) {
	f := dutyFilters{
		status:    c.Query("status"),
		timeframe: c.Query("timeframe"),
		date:      c.Query("date"),
	}
	switch models.ShiftStatus(f.status) {
	case "", models.ShiftScheduled, models.ShiftConfirmed, models.ShiftCancelled,
		models.ShiftCompleted, models.ShiftAbsent:
	default:
		return f, fiber.NewError(fiber.StatusBadRequest, "Unknown shift status filter")
	}
	switch f.timeframe {
	case "", "upcoming", "past":
	default:
		return f, fiber.NewError(fiber.StatusBadRequest, "timeframe must be upcoming or past")
	}
	if f.date != "" {
		if _, err := time.Parse("2006-01-02", f.date); err != nil {
			return f, fiber.NewError(fiber.StatusBadRequest, "date must be YYYY-MM-DD")
		}
	}
	if v := c.Query("unit_id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil || id <= 0 {
			return f, fiber.NewError(fiber.StatusBadRequest, "unit_id must be a positive integer")
		}
		f.unitID = id
	}
	return f, nil
}

type dutyRow struct {
	ShiftID            int64                     `json:"shift_id"`
	ShiftDate          time.Time                 `json:"shift_date"`
	ShiftType          models.ShiftType          `json:"shift_type"`
	StartTime          string                    `json:"start_time"`
	EndTime            string                    `json:"end_time"`
	ShiftStatus        models.ShiftStatus        `json:"shift_status"`
	ConfirmationStatus models.ConfirmationStatus `json:"confirmation_status"`
	UnitName           *string                   `json:"unit_name"`
	UnitCode           *string                   `json:"unit_code"`
	Duty               models.DutyAssignment     `json:"duty"`
}

func scanDutyRow(rows pgx.Rows) (dutyRow, error) {
	var (
		d         dutyRow
		equipment *string
		training  *string
	)
	err := rows.Scan(&d.ShiftID, &d.ShiftDate, &d.ShiftType, &d.StartTime, &d.EndTime,
		&d.ShiftStatus, &d.ConfirmationStatus, &d.UnitName, &d.UnitCode,
		&d.Duty.ID, &d.Duty.DutyType, &d.Duty.DutyDescription, &d.Duty.Priority,
		&equipment, &training, &d.Duty.Notes)
	if err != nil {
		return d, err
	}
	if equipment != nil {
		d.Duty.RequiredEquipment = SplitRequirements(*equipment)
	} else {
		d.Duty.RequiredEquipment = []string{}
	}
	if training != nil {
		d.Duty.RequiredTraining = SplitRequirements(*training)
	} else {
		d.Duty.RequiredTraining = []string{}
	}
	return d, nil
}

// List returns the volunteer's duty assignments with optional timeframe,
// date, and unit filters.
func List(pool *pgxpool.Pool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		volunteerID, err := resolveVolunteer(c, pool)
		if err != nil {
			return err
		}
		f, err := buildDutyFilters(c)
		if err != nil {
			return err
		}

		query := `
			SELECT s.id, s.shift_date, s.shift_type, s.start_time::text, s.end_time::text,
			       s.status, COALESCE(s.confirmation_status, ''),
			       u.unit_name, u.unit_code,
			       da.id, da.duty_type, da.duty_description, da.priority,
			       da.required_equipment, da.required_training, da.notes
			FROM shifts s
			JOIN duty_assignments da ON da.id = s.duty_assignment_id
			LEFT JOIN units u ON u.id = s.unit_id
			WHERE s.volunteer_id = $1`
		args := []any{volunteerID}
		n := 1

		if f.status != "" {
			n++
			query += " AND s.status = $" + strconv.Itoa(n)
			args = append(args, f.status)
		}
		switch f.timeframe {
		case "upcoming":
			query += " AND s.shift_date >= CURRENT_DATE"
		case "past":
			query += " AND s.shift_date < CURRENT_DATE"
		}
		if f.date != "" {
			n++
			query += " AND s.shift_date = $" + strconv.Itoa(n)
			args = append(args, f.date)
		}
		if f.unitID > 0 {
			n++
			query += " AND s.unit_id = $" + strconv.Itoa(n)
			args = append(args, f.unitID)
		}
		query += `
			ORDER BY s.shift_date DESC,
			         CASE da.priority WHEN 'primary' THEN 0 WHEN 'secondary' THEN 1 ELSE 2 END,
			         da.duty_type ASC`

		rows, err := pool.Query(c.Context(), query, args...)
		if err != nil {
			log.Printf("duty list query failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to load duty assignments")
		}
		defer rows.Close()

		list := []dutyRow{}
		for rows.Next() {
			d, err := scanDutyRow(rows)
			if err != nil {
				log.Printf("duty list scan failed: %v", err)
				return fiber.NewError(fiber.StatusInternalServerError, "Failed to load duty assignments")
			}
			list = append(list, d)
		}
		if err := rows.Err(); err != nil {
			log.Printf("duty list rows failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to load duty assignments")
		}
		return c.JSON(fiber.Map{"duties": list, "count": len(list)})
	}
}

// GetShiftDuty returns the duty attached to one of the volunteer's shifts.
// A shift with no duty responds with assigned: false rather than an error.
func GetShiftDuty(pool *pgxpool.Pool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		volunteerID, err := resolveVolunteer(c, pool)
		if err != nil {
			return err
		}
		shiftID, err := c.ParamsInt("id")
		if err != nil || shiftID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid shift id")
		}

		var (
			d         models.DutyAssignment
			dutyID    *int64
			dutyType  *string
			priority  *string
			equipment *string
			training  *string
		)
		err = pool.QueryRow(c.Context(), `
			SELECT da.id, da.duty_type, da.duty_description, da.priority,
			       da.required_equipment, da.required_training, da.notes
			FROM shifts s
			LEFT JOIN duty_assignments da ON da.id = s.duty_assignment_id
			WHERE s.id = $1 AND s.volunteer_id = $2
		`, shiftID, volunteerID).Scan(&dutyID, &dutyType, &d.DutyDescription,
			&priority, &equipment, &training, &d.Notes)
		if errors.Is(err, pgx.ErrNoRows) {
			return fiber.NewError(fiber.StatusNotFound, "Shift not found")
		}
		if err != nil {
			log.Printf("shift duty query failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to load shift duty")
		}
		if dutyID == nil {
			return c.JSON(fiber.Map{"assigned": false})
		}

		d.ID = *dutyID
		d.DutyType = *dutyType
		d.Priority = models.DutyPriority(*priority)
		d.RequiredEquipment = []string{}
		d.RequiredTraining = []string{}
		if equipment != nil {
			d.RequiredEquipment = SplitRequirements(*equipment)
		}
		if training != nil {
			d.RequiredTraining = SplitRequirements(*training)
		}
		return c.JSON(fiber.Map{"assigned": true, "duty": d})
	}
}

// Summary returns duty counts grouped by timeframe and priority.
func Summary(pool *pgxpool.Pool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		volunteerID, err := resolveVolunteer(c, pool)
		if err != nil {
			return err
		}
		s, err := stats.DutySummaryFor(c.Context(), pool, volunteerID)
		if err != nil {
			log.Printf("duty summary failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to load duty summary")
		}
		return c.JSON(s)
	}
}

// Units lists the units the volunteer has duty shifts with, for the filter
// dropdown.
func Units(pool *pgxpool.Pool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		volunteerID, err := resolveVolunteer(c, pool)
		if err != nil {
			return err
		}

		rows, err := pool.Query(c.Context(), `
			SELECT DISTINCT u.id, u.unit_name, u.unit_code
			FROM shifts s
			JOIN units u ON u.id = s.unit_id
			WHERE s.volunteer_id = $1 AND s.duty_assignment_id IS NOT NULL
			ORDER BY u.unit_name ASC
		`, volunteerID)
		if err != nil {
			log.Printf("duty units query failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to load units")
		}
		defer rows.Close()

		list := []models.Unit{}
		for rows.Next() {
			var u models.Unit
			if err := rows.Scan(&u.ID, &u.UnitName, &u.UnitCode); err != nil {
				log.Printf("duty units scan failed: %v", err)
				return fiber.NewError(fiber.StatusInternalServerError, "Failed to load units")
			}
			list = append(list, u)
		}
		if err := rows.Err(); err != nil {
			log.Printf("duty units rows failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to load units")
		}
		return c.JSON(fiber.Map{"units": list})
	}
}
