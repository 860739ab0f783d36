package shifts

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"frsm-backend/middleware"
	"frsm-backend/models"
	"frsm-backend/stats"
)

var validate = validator.New()

// resolveVolunteer maps the authenticated user to their approved volunteer
// record, returning both ids. Every volunteer-facing endpoint goes through
// this.
func resolveVolunteer(c *fiber.Ctx, pool *pgxpool.Pool) (volunteerID, userID int64, err error) {
	userID, err = middleware.GetUserIDFromClaims(c)
	if err != nil {
		return 0, 0, err
	}
	err = pool.QueryRow(c.Context(), `
		SELECT id FROM volunteers WHERE user_id = $1 AND status = 'approved'
	`, userID).Scan(&volunteerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, 0, fiber.NewError(fiber.StatusForbidden, "No approved volunteer record for this account")
	}
	if err != nil {
		log.Printf("resolve volunteer failed: %v", err)
		return 0, 0, fiber.NewError(fiber.StatusInternalServerError, "Failed to load volunteer record")
	}
	return volunteerID, userID, nil
}

// lockOwnShift loads a shift inside tx, verifying it belongs to the volunteer.
func lockOwnShift(c *fiber.Ctx, tx pgx.Tx, shiftID, volunteerID int64) (models.Shift, error) {
	var s models.Shift
	err := tx.QueryRow(c.Context(), `
		SELECT id, volunteer_id, shift_date, shift_type, start_time::text, end_time::text,
		       status, COALESCE(confirmation_status, '')
		FROM shifts
		WHERE id = $1 AND volunteer_id = $2
		FOR UPDATE
	`, shiftID, volunteerID).Scan(&s.ID, &s.VolunteerID, &s.ShiftDate, &s.ShiftType,
		&s.StartTime, &s.EndTime, &s.Status, &s.ConfirmationStatus)
	if errors.Is(err, pgx.ErrNoRows) {
		return s, fiber.NewError(fiber.StatusNotFound, "Shift not found")
	}
	if err != nil {
		log.Printf("load shift failed: %v", err)
		return s, fiber.NewError(fiber.StatusInternalServerError, "Failed to load shift")
	}
	return s, nil
}

// respondable reports whether a shift can still take a volunteer response.
// Past shifts and terminal statuses are closed.
func respondable(s models.Shift, now time.Time) error {
	if s.ShiftDate.Before(now.Truncate(24 * time.Hour)) {
		return fiber.NewError(fiber.StatusConflict, "This shift is in the past")
	}
	switch s.Status {
	case models.ShiftCancelled, models.ShiftCompleted, models.ShiftAbsent:
		return fiber.NewError(fiber.StatusConflict, "This shift is no longer open for responses")
	}
	return nil
}

// Confirm records a volunteer's confirmation for their own upcoming shift.
func Confirm(pool *pgxpool.Pool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		volunteerID, userID, err := resolveVolunteer(c, pool)
		if err != nil {
			return err
		}
		shiftID, err := c.ParamsInt("id")
		if err != nil || shiftID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid shift id")
		}

		tx, err := pool.Begin(c.Context())
		if err != nil {
			log.Printf("begin tx failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to confirm shift")
		}
		defer tx.Rollback(c.Context())

		shift, err := lockOwnShift(c, tx, int64(shiftID), volunteerID)
		if err != nil {
			return err
		}
		if err := respondable(shift, time.Now()); err != nil {
			return err
		}

		if _, err := tx.Exec(c.Context(), `
			UPDATE shifts
			SET confirmation_status = 'confirmed',
			    status = 'confirmed',
			    confirmed_at = NOW(),
			    declined_reason = NULL,
			    updated_at = NOW()
			WHERE id = $1
		`, shift.ID); err != nil {
			log.Printf("confirm shift update failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to confirm shift")
		}
		if _, err := tx.Exec(c.Context(), `
			INSERT INTO shift_confirmations (shift_id, volunteer_id, status)
			VALUES ($1, $2, 'confirmed')
		`, shift.ID, volunteerID); err != nil {
			log.Printf("confirm record insert failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to confirm shift")
		}
		notices := responseNotices(userID, "shift_confirmation", "Shift Confirmed",
			fmt.Sprintf("You have confirmed your shift on %s (%s - %s)",
				shift.ShiftDate.Format("2006-01-02"), shift.StartTime, shift.EndTime),
			fmt.Sprintf("Volunteer #%d confirmed shift on %s (%s - %s)",
				volunteerID, shift.ShiftDate.Format("2006-01-02"), shift.StartTime, shift.EndTime))
		if err := writeNotices(c, tx, notices); err != nil {
			log.Printf("confirm notification failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to confirm shift")
		}

		if err := tx.Commit(c.Context()); err != nil {
			log.Printf("confirm commit failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to confirm shift")
		}
		return c.JSON(fiber.Map{"success": true, "message": "Shift confirmed"})
	}
}

// Decline records a volunteer's decline with a required reason.
func Decline(pool *pgxpool.Pool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		volunteerID, userID, err := resolveVolunteer(c, pool)
		if err != nil {
			return err
		}
		shiftID, err := c.ParamsInt("id")
		if err != nil || shiftID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid shift id")
		}

		var req models.DeclineShiftRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "A decline reason is required")
		}

		tx, err := pool.Begin(c.Context())
		if err != nil {
			log.Printf("begin tx failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to decline shift")
		}
		defer tx.Rollback(c.Context())

		shift, err := lockOwnShift(c, tx, int64(shiftID), volunteerID)
		if err != nil {
			return err
		}
		if err := respondable(shift, time.Now()); err != nil {
			return err
		}

		if _, err := tx.Exec(c.Context(), `
			UPDATE shifts
			SET confirmation_status = 'declined',
			    status = 'cancelled',
			    declined_reason = $2,
			    confirmed_at = NULL,
			    updated_at = NOW()
			WHERE id = $1
		`, shift.ID, req.Reason); err != nil {
			log.Printf("decline shift update failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to decline shift")
		}
		if _, err := tx.Exec(c.Context(), `
			INSERT INTO shift_confirmations (shift_id, volunteer_id, status, response_notes)
			VALUES ($1, $2, 'declined', $3)
		`, shift.ID, volunteerID, req.Reason); err != nil {
			log.Printf("decline record insert failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to decline shift")
		}
		notices := responseNotices(userID, "shift_declined", "Shift Declined",
			fmt.Sprintf("You have declined your shift on %s. Reason: %s",
				shift.ShiftDate.Format("2006-01-02"), req.Reason),
			fmt.Sprintf("Volunteer #%d declined shift on %s: %s",
				volunteerID, shift.ShiftDate.Format("2006-01-02"), req.Reason))
		if err := writeNotices(c, tx, notices); err != nil {
			log.Printf("decline notification failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to decline shift")
		}

		if err := tx.Commit(c.Context()); err != nil {
			log.Printf("decline commit failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to decline shift")
		}
		return c.JSON(fiber.Map{"success": true, "message": "Shift declined"})
	}
}

// RequestChange files a time-change, swap, or free-form change request for a
// volunteer's own shift.
func RequestChange(pool *pgxpool.Pool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		volunteerID, userID, err := resolveVolunteer(c, pool)
		if err != nil {
			return err
		}
		shiftID, err := c.ParamsInt("id")
		if err != nil || shiftID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid shift id")
		}

		var req models.ChangeRequestRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Request type and details are required")
		}
		if req.RequestType == models.RequestSwap && req.SwapWithVolunteer == nil {
			return fiber.NewError(fiber.StatusBadRequest, "A swap request must name a volunteer to swap with")
		}

		var proposedDate *time.Time
		if req.ProposedDate != nil && *req.ProposedDate != "" {
			d, err := time.Parse("2006-01-02", *req.ProposedDate)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "proposed_date must be YYYY-MM-DD")
			}
			proposedDate = &d
		}

		tx, err := pool.Begin(c.Context())
		if err != nil {
			log.Printf("begin tx failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to submit change request")
		}
		defer tx.Rollback(c.Context())

		shift, err := lockOwnShift(c, tx, int64(shiftID), volunteerID)
		if err != nil {
			return err
		}
		if err := respondable(shift, time.Now()); err != nil {
			return err
		}

		if req.SwapWithVolunteer != nil {
			var ok bool
			err := tx.QueryRow(c.Context(), `
				SELECT EXISTS (
					SELECT 1 FROM volunteers
					WHERE id = $1 AND id <> $2 AND status = 'approved'
					  AND volunteer_status IN ('Active', 'New Volunteer')
				)
			`, *req.SwapWithVolunteer, volunteerID).Scan(&ok)
			if err != nil {
				log.Printf("swap candidate check failed: %v", err)
				return fiber.NewError(fiber.StatusInternalServerError, "Failed to submit change request")
			}
			if !ok {
				return fiber.NewError(fiber.StatusBadRequest, "Selected volunteer is not available for a swap")
			}
		}

		if _, err := tx.Exec(c.Context(), `
			UPDATE shifts
			SET confirmation_status = 'change_requested',
			    change_request_notes = $2,
			    updated_at = NOW()
			WHERE id = $1
		`, shift.ID, req.RequestDetails); err != nil {
			log.Printf("change request shift update failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to submit change request")
		}
		if _, err := tx.Exec(c.Context(), `
			INSERT INTO shift_change_requests
				(shift_id, volunteer_id, request_type, request_details,
				 proposed_date, proposed_start_time, proposed_end_time, swap_with_volunteer_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, shift.ID, volunteerID, req.RequestType, req.RequestDetails,
			proposedDate, req.ProposedStartTime, req.ProposedEndTime, req.SwapWithVolunteer); err != nil {
			log.Printf("change request insert failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to submit change request")
		}
		notices := responseNotices(userID, "shift_change_request", "Shift Change Requested",
			fmt.Sprintf("You have requested a %s for your shift on %s: %s",
				req.RequestType, shift.ShiftDate.Format("2006-01-02"), req.RequestDetails),
			fmt.Sprintf("Volunteer #%d requested a %s for shift on %s: %s",
				volunteerID, req.RequestType, shift.ShiftDate.Format("2006-01-02"), req.RequestDetails))
		if err := writeNotices(c, tx, notices); err != nil {
			log.Printf("change request notification failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to submit change request")
		}

		if err := tx.Commit(c.Context()); err != nil {
			log.Printf("change request commit failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to submit change request")
		}
		return c.JSON(fiber.Map{"success": true, "message": "Change request submitted"})
	}
}

// notice is one notification row written for a shift response. A zero userID
// broadcasts to every admin and employee.
type notice struct {
	userID  int64
	kind    string
	title   string
	message string
}

// responseNotices builds the notifications for a volunteer's shift response:
// one addressed to the volunteer's own account, one fanned out to staff.
func responseNotices(userID int64, kind, title, volunteerMsg, staffMsg string) []notice {
	return []notice{
		{userID: userID, kind: kind, title: title, message: volunteerMsg},
		{kind: kind, title: title, message: staffMsg},
	}
}

func writeNotices(c *fiber.Ctx, tx pgx.Tx, notices []notice) error {
	for _, n := range notices {
		if n.userID != 0 {
			if _, err := tx.Exec(c.Context(), `
				INSERT INTO notifications (user_id, type, title, message)
				VALUES ($1, $2, $3, $4)
			`, n.userID, n.kind, n.title, n.message); err != nil {
				return err
			}
			continue
		}
		if _, err := tx.Exec(c.Context(), `
			INSERT INTO notifications (user_id, type, title, message)
			SELECT id, $1, $2, $3 FROM users WHERE role IN ('admin', 'employee')
		`, n.kind, n.title, n.message); err != nil {
			return err
		}
	}
	return nil
}

// ListPending returns upcoming shifts the volunteer has not responded to yet.
func ListPending(pool *pgxpool.Pool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		volunteerID, _, err := resolveVolunteer(c, pool)
		if err != nil {
			return err
		}

		rows, err := pool.Query(c.Context(), `
			SELECT s.id, s.volunteer_id, s.unit_id, s.shift_date, s.shift_type,
			       s.start_time::text, s.end_time::text, s.location, s.status,
			       COALESCE(s.confirmation_status, ''), s.notes,
			       u.unit_name, u.unit_code, u.unit_type, u.location,
			       da.id, da.duty_type, da.duty_description, da.priority
			FROM shifts s
			LEFT JOIN units u ON u.id = s.unit_id
			LEFT JOIN duty_assignments da ON da.id = s.duty_assignment_id
			WHERE s.volunteer_id = $1
			  AND s.shift_date >= CURRENT_DATE
			  AND s.status = 'scheduled'
			  AND (s.confirmation_status IS NULL OR s.confirmation_status IN ('', 'pending'))
			ORDER BY s.shift_date ASC, s.start_time ASC
		`, volunteerID)
		if err != nil {
			log.Printf("pending shifts query failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to load pending shifts")
		}
		defer rows.Close()

		list := []models.Shift{}
		for rows.Next() {
			var (
				s        models.Shift
				dutyID   *int64
				dutyType *string
				dutyDesc *string
				priority *string
			)
			if err := rows.Scan(&s.ID, &s.VolunteerID, &s.UnitID, &s.ShiftDate, &s.ShiftType,
				&s.StartTime, &s.EndTime, &s.Location, &s.Status, &s.ConfirmationStatus,
				&s.Notes, &s.UnitName, &s.UnitCode, &s.UnitType, &s.UnitLocation,
				&dutyID, &dutyType, &dutyDesc, &priority); err != nil {
				log.Printf("pending shifts scan failed: %v", err)
				return fiber.NewError(fiber.StatusInternalServerError, "Failed to load pending shifts")
			}
			if dutyID != nil {
				s.Duty = &models.DutyAssignment{
					ID:              *dutyID,
					DutyType:        *dutyType,
					DutyDescription: dutyDesc,
					Priority:        models.DutyPriority(*priority),
				}
			}
			list = append(list, s)
		}
		if err := rows.Err(); err != nil {
			log.Printf("pending shifts rows failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to load pending shifts")
		}
		return c.JSON(fiber.Map{"shifts": list, "count": len(list)})
	}
}

// ListConfirmed returns the volunteer's confirmed shifts over the next 30 days.
func ListConfirmed(pool *pgxpool.Pool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		volunteerID, _, err := resolveVolunteer(c, pool)
		if err != nil {
			return err
		}

		rows, err := pool.Query(c.Context(), `
			SELECT s.id, s.volunteer_id, s.unit_id, s.shift_date, s.shift_type,
			       s.start_time::text, s.end_time::text, s.location, s.status,
			       COALESCE(s.confirmation_status, ''), s.notes,
			       u.unit_name, u.unit_code, u.unit_type, u.location
			FROM shifts s
			LEFT JOIN units u ON u.id = s.unit_id
			WHERE s.volunteer_id = $1
			  AND s.confirmation_status = 'confirmed'
			  AND s.shift_date BETWEEN CURRENT_DATE AND CURRENT_DATE + INTERVAL '30 days'
			ORDER BY s.shift_date ASC, s.start_time ASC
			LIMIT 20
		`, volunteerID)
		if err != nil {
			log.Printf("confirmed shifts query failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to load confirmed shifts")
		}
		defer rows.Close()

		list, err := scanShifts(rows)
		if err != nil {
			log.Printf("confirmed shifts scan failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to load confirmed shifts")
		}
		return c.JSON(fiber.Map{"shifts": list, "count": len(list)})
	}
}

func scanShifts(rows pgx.Rows) ([]models.Shift, error) {
	list := []models.Shift{}
	for rows.Next() {
		var s models.Shift
		if err := rows.Scan(&s.ID, &s.VolunteerID, &s.UnitID, &s.ShiftDate, &s.ShiftType,
			&s.StartTime, &s.EndTime, &s.Location, &s.Status, &s.ConfirmationStatus,
			&s.Notes, &s.UnitName, &s.UnitCode, &s.UnitType, &s.UnitLocation); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// CalendarMonth returns the volunteer's shifts for one month grouped by day,
// with cursors for the adjacent months.
func CalendarMonth(pool *pgxpool.Pool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		volunteerID, _, err := resolveVolunteer(c, pool)
		if err != nil {
			return err
		}
		start, end, err := MonthRange(c.Query("month"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "month must be YYYY-MM")
		}

		rows, err := pool.Query(c.Context(), `
			SELECT s.id, s.volunteer_id, s.unit_id, s.shift_date, s.shift_type,
			       s.start_time::text, s.end_time::text, s.location, s.status,
			       COALESCE(s.confirmation_status, ''), s.notes,
			       u.unit_name, u.unit_code, u.unit_type, u.location
			FROM shifts s
			LEFT JOIN units u ON u.id = s.unit_id
			WHERE s.volunteer_id = $1 AND s.shift_date BETWEEN $2 AND $3
			ORDER BY s.shift_date ASC, s.start_time ASC
		`, volunteerID, start, end)
		if err != nil {
			log.Printf("calendar query failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to load shift calendar")
		}
		defer rows.Close()

		list, err := scanShifts(rows)
		if err != nil {
			log.Printf("calendar scan failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to load shift calendar")
		}

		byDay := map[int][]models.Shift{}
		counts := map[models.ShiftStatus]int{}
		for _, s := range list {
			day := s.ShiftDate.Day()
			byDay[day] = append(byDay[day], s)
			counts[s.Status]++
		}

		return c.JSON(fiber.Map{
			"month":         start.Format("2006-01"),
			"prev_month":    start.AddDate(0, -1, 0).Format("2006-01"),
			"next_month":    start.AddDate(0, 1, 0).Format("2006-01"),
			"shifts_by_day": byDay,
			"total_shifts":  len(list),
			"status_counts": counts,
		})
	}
}

// SwapCandidates lists approved volunteers in good standing that a shift can
// be swapped with.
func SwapCandidates(pool *pgxpool.Pool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		volunteerID, _, err := resolveVolunteer(c, pool)
		if err != nil {
			return err
		}

		rows, err := pool.Query(c.Context(), `
			SELECT v.id, v.first_name, v.last_name, v.email, v.contact_number, u.unit_name
			FROM volunteers v
			LEFT JOIN volunteer_assignments va
				ON va.volunteer_id = v.id AND va.status = 'Active'
			LEFT JOIN units u ON u.id = va.unit_id
			WHERE v.status = 'approved'
			  AND v.volunteer_status IN ('Active', 'New Volunteer')
			  AND v.id <> $1
			ORDER BY v.last_name ASC, v.first_name ASC
		`, volunteerID)
		if err != nil {
			log.Printf("swap candidates query failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to load swap candidates")
		}
		defer rows.Close()

		list := []models.SwapCandidate{}
		for rows.Next() {
			var sc models.SwapCandidate
			if err := rows.Scan(&sc.ID, &sc.FirstName, &sc.LastName, &sc.Email,
				&sc.ContactNumber, &sc.UnitName); err != nil {
				log.Printf("swap candidates scan failed: %v", err)
				return fiber.NewError(fiber.StatusInternalServerError, "Failed to load swap candidates")
			}
			list = append(list, sc)
		}
		if err := rows.Err(); err != nil {
			log.Printf("swap candidates rows failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to load swap candidates")
		}
		return c.JSON(fiber.Map{"volunteers": list, "count": len(list)})
	}
}

// Summary returns the volunteer's confirmation-workflow counts.
func Summary(pool *pgxpool.Pool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		volunteerID, _, err := resolveVolunteer(c, pool)
		if err != nil {
			return err
		}
		s, err := stats.ShiftSummaryFor(c.Context(), pool, volunteerID)
		if err != nil {
			log.Printf("shift summary failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to load shift summary")
		}
		return c.JSON(s)
	}
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
