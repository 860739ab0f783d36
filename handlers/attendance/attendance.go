package attendance

import (
	"encoding/csv"
	"errors"
	"fmt"
	"log"
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

// MonthRange resolves a YYYY-MM query value to the inclusive first and last
// day of that month. An empty value means the current month.
func MonthRange(month string) (time.Time, time.Time, error) {
	var start time.Time
	if month == "" {
		now := time.Now()
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	} else {
		var err error
		start, err = time.Parse("2006-01", month)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	end := start.AddDate(0, 1, -1)
	return start, end, nil
}

// statusFilter validates the optional attendance status query value. An
// empty value means no filter.
func statusFilter(c *fiber.Ctx) (string, error) {
	status := c.Query("status")
	switch models.AttendanceStatus(status) {
	case "", models.AttendancePresent, models.AttendanceLate, models.AttendanceAbsent,
		models.AttendanceExcused, models.AttendanceOnLeave:
		return status, nil
	}
	return "", fiber.NewError(fiber.StatusBadRequest, "Unknown attendance status filter")
}

func queryLogs(c *fiber.Ctx, pool *pgxpool.Pool, volunteerID int64, start, end time.Time, status string) ([]models.AttendanceLog, error) {
	query := `
		SELECT al.id, al.shift_id, al.volunteer_id, al.shift_date, al.check_in,
		       al.check_out, al.attendance_status, al.total_hours, al.overtime_hours,
		       al.notes, al.verified_at,
		       s.shift_type, s.start_time::text, s.end_time::text, s.location,
		       u.unit_name, u.unit_code,
		       CASE WHEN vu.id IS NULL THEN NULL
		            ELSE vu.first_name || ' ' || vu.last_name END
		FROM attendance_logs al
		LEFT JOIN shifts s ON s.id = al.shift_id
		LEFT JOIN units u ON u.id = s.unit_id
		LEFT JOIN users vu ON vu.id = al.verified_by
		WHERE al.volunteer_id = $1 AND al.shift_date BETWEEN $2 AND $3`
	args := []any{volunteerID, start, end}
	if status != "" {
		query += " AND al.attendance_status = $4"
		args = append(args, status)
	}
	query += " ORDER BY al.shift_date DESC, al.check_in DESC"

	rows, err := pool.Query(c.Context(), query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := []models.AttendanceLog{}
	for rows.Next() {
		var l models.AttendanceLog
		if err := rows.Scan(&l.ID, &l.ShiftID, &l.VolunteerID, &l.ShiftDate,
			&l.CheckIn, &l.CheckOut, &l.AttendanceStatus, &l.TotalHours,
			&l.OvertimeHours, &l.Notes, &l.VerifiedAt,
			&l.ShiftType, &l.ShiftStartTime, &l.ShiftEndTime, &l.ShiftLocation,
			&l.UnitName, &l.UnitCode, &l.VerifiedByName); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// Logs returns the volunteer's attendance records for one month.
func Logs(pool *pgxpool.Pool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		volunteerID, err := resolveVolunteer(c, pool)
		if err != nil {
			return err
		}
		start, end, err := MonthRange(c.Query("month"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "month must be YYYY-MM")
		}
		status, err := statusFilter(c)
		if err != nil {
			return err
		}

		logs, err := queryLogs(c, pool, volunteerID, start, end, status)
		if err != nil {
			log.Printf("attendance logs query failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to load attendance logs")
		}
		return c.JSON(fiber.Map{
			"month": start.Format("2006-01"),
			"logs":  logs,
			"count": len(logs),
		})
	}
}

// Summary returns attendance counts, hours, and the attendance rate for one
// month.
func Summary(pool *pgxpool.Pool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		volunteerID, err := resolveVolunteer(c, pool)
		if err != nil {
			return err
		}
		start, end, err := MonthRange(c.Query("month"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "month must be YYYY-MM")
		}

		s, err := stats.AttendanceSummaryFor(c.Context(), pool, volunteerID, start, end)
		if err != nil {
			log.Printf("attendance summary failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to load attendance summary")
		}
		return c.JSON(fiber.Map{
			"month":           start.Format("2006-01"),
			"summary":         s,
			"attendance_rate": s.RateLabel(),
		})
	}
}

// BuildCalendar maps day-of-month to attendance status. When a day has more
// than one record the most recent one wins.
func BuildCalendar(logs []models.AttendanceLog) map[int]models.AttendanceStatus {
	days := map[int]models.AttendanceStatus{}
	for _, l := range logs {
		days[l.ShiftDate.Day()] = l.AttendanceStatus
	}
	return days
}

// Calendar returns a day-by-day attendance status map for one month.
func Calendar(pool *pgxpool.Pool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		volunteerID, err := resolveVolunteer(c, pool)
		if err != nil {
			return err
		}
		start, end, err := MonthRange(c.Query("month"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "month must be YYYY-MM")
		}

		rows, err := pool.Query(c.Context(), `
			SELECT shift_date, attendance_status
			FROM attendance_logs
			WHERE volunteer_id = $1 AND shift_date BETWEEN $2 AND $3
			ORDER BY shift_date ASC, check_in ASC NULLS FIRST
		`, volunteerID, start, end)
		if err != nil {
			log.Printf("attendance calendar query failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to load attendance calendar")
		}
		defer rows.Close()

		logs := []models.AttendanceLog{}
		for rows.Next() {
			var l models.AttendanceLog
			if err := rows.Scan(&l.ShiftDate, &l.AttendanceStatus); err != nil {
				log.Printf("attendance calendar scan failed: %v", err)
				return fiber.NewError(fiber.StatusInternalServerError, "Failed to load attendance calendar")
			}
			logs = append(logs, l)
		}
		if err := rows.Err(); err != nil {
			log.Printf("attendance calendar rows failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to load attendance calendar")
		}

		return c.JSON(fiber.Map{
			"month":      start.Format("2006-01"),
			"prev_month": start.AddDate(0, -1, 0).Format("2006-01"),
			"next_month": start.AddDate(0, 1, 0).Format("2006-01"),
			"days":       BuildCalendar(logs),
		})
	}
}

// Upcoming returns the volunteer's shifts over the next seven days, cancelled
// shifts excluded.
func Upcoming(pool *pgxpool.Pool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		volunteerID, err := resolveVolunteer(c, pool)
		if err != nil {
			return err
		}

		rows, err := pool.Query(c.Context(), `
			SELECT s.id, s.shift_date, s.shift_type, s.start_time::text, s.end_time::text,
			       s.location, s.status, COALESCE(s.confirmation_status, ''),
			       u.unit_name, u.unit_code
			FROM shifts s
			LEFT JOIN units u ON u.id = s.unit_id
			WHERE s.volunteer_id = $1
			  AND s.shift_date BETWEEN CURRENT_DATE AND CURRENT_DATE + INTERVAL '7 days'
			  AND s.status <> 'cancelled'
			ORDER BY s.shift_date ASC, s.start_time ASC
		`, volunteerID)
		if err != nil {
			log.Printf("upcoming shifts query failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to load upcoming shifts")
		}
		defer rows.Close()

		list := []models.Shift{}
		for rows.Next() {
			var s models.Shift
			if err := rows.Scan(&s.ID, &s.ShiftDate, &s.ShiftType, &s.StartTime,
				&s.EndTime, &s.Location, &s.Status, &s.ConfirmationStatus,
				&s.UnitName, &s.UnitCode); err != nil {
				log.Printf("upcoming shifts scan failed: %v", err)
				return fiber.NewError(fiber.StatusInternalServerError, "Failed to load upcoming shifts")
			}
			list = append(list, s)
		}
		if err := rows.Err(); err != nil {
			log.Printf("upcoming shifts rows failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to load upcoming shifts")
		}
		return c.JSON(fiber.Map{"shifts": list, "count": len(list)})
	}
}

// Years lists the years the volunteer has attendance records for, newest
// first, for the month picker.
func Years(pool *pgxpool.Pool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		volunteerID, err := resolveVolunteer(c, pool)
		if err != nil {
			return err
		}

		rows, err := pool.Query(c.Context(), `
			SELECT DISTINCT EXTRACT(YEAR FROM shift_date)::int AS year
			FROM attendance_logs
			WHERE volunteer_id = $1
			ORDER BY year DESC
		`, volunteerID)
		if err != nil {
			log.Printf("attendance years query failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to load attendance years")
		}
		defer rows.Close()

		years := []int{}
		for rows.Next() {
			var y int
			if err := rows.Scan(&y); err != nil {
				log.Printf("attendance years scan failed: %v", err)
				return fiber.NewError(fiber.StatusInternalServerError, "Failed to load attendance years")
			}
			years = append(years, y)
		}
		if err := rows.Err(); err != nil {
			log.Printf("attendance years rows failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to load attendance years")
		}
		if len(years) == 0 {
			years = append(years, time.Now().Year())
		}
		return c.JSON(fiber.Map{"years": years})
	}
}

// ExportCSV streams one month of attendance records as a CSV download.
func ExportCSV(pool *pgxpool.Pool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		volunteerID, err := resolveVolunteer(c, pool)
		if err != nil {
			return err
		}
		start, end, err := MonthRange(c.Query("month"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "month must be YYYY-MM")
		}
		status, err := statusFilter(c)
		if err != nil {
			return err
		}

		logs, err := queryLogs(c, pool, volunteerID, start, end, status)
		if err != nil {
			log.Printf("attendance export query failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to export attendance")
		}

		c.Set("Content-Type", "text/csv")
		c.Set("Content-Disposition",
			fmt.Sprintf(`attachment; filename="attendance_%s.csv"`, start.Format("2006-01")))

		w := csv.NewWriter(c.Response().BodyWriter())
		if err := w.Write([]string{"Date", "Shift", "Unit", "Check In", "Check Out",
			"Status", "Hours", "Overtime", "Notes"}); err != nil {
			log.Printf("attendance export write failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to export attendance")
		}
		for _, l := range logs {
			row := []string{
				l.ShiftDate.Format("2006-01-02"),
				string(derefShiftType(l.ShiftType)),
				derefString(l.UnitName),
				formatClock(l.CheckIn),
				formatClock(l.CheckOut),
				string(l.AttendanceStatus),
				fmt.Sprintf("%.2f", l.TotalHours),
				fmt.Sprintf("%.2f", l.OvertimeHours),
				derefString(l.Notes),
			}
			if err := w.Write(row); err != nil {
				log.Printf("attendance export write failed: %v", err)
				return fiber.NewError(fiber.StatusInternalServerError, "Failed to export attendance")
			}
		}
		w.Flush()
		if err := w.Error(); err != nil {
			log.Printf("attendance export flush failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to export attendance")
		}
		return nil
	}
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefShiftType(t *models.ShiftType) models.ShiftType {
	if t == nil {
		return ""
	}
	return *t
}

func formatClock(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("15:04")
}
