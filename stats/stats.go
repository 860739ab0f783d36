// Package stats owns the per-volunteer summary aggregations that every
// feature surface displays, so that handlers share one set of queries
// instead of re-deriving counts page by page.
package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// Querier is the subset of pgxpool.Pool the aggregations need, so callers
// can pass a pool or an open transaction.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ShiftSummary holds confirmation-workflow counts for one volunteer.
type ShiftSummary struct {
	TotalShifts    int        `json:"total_shifts"`
	Confirmed      int        `json:"confirmed_shifts"`
	Declined       int        `json:"declined_shifts"`
	Pending        int        `json:"pending_shifts"`
	FirstShiftDate *time.Time `json:"first_shift_date"`
	LastShiftDate  *time.Time `json:"last_shift_date"`
}

// ShiftSummaryFor aggregates a volunteer's shifts by confirmation outcome.
// A shift counts as confirmed or declined if either the shift row or its most
// recent confirmation record says so.
func ShiftSummaryFor(ctx context.Context, q Querier, volunteerID int64) (ShiftSummary, error) {
	var s ShiftSummary
	err := q.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN s.confirmation_status = 'confirmed' OR sc.status = 'confirmed' OR s.status = 'confirmed' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN s.confirmation_status = 'declined' OR sc.status = 'declined' OR s.status = 'cancelled' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN s.confirmation_status IN ('pending', 'change_requested') OR s.confirmation_status IS NULL OR s.confirmation_status = '' THEN 1 ELSE 0 END), 0),
			MIN(s.shift_date),
			MAX(s.shift_date)
		FROM shifts s
		LEFT JOIN LATERAL (
			SELECT status FROM shift_confirmations
			WHERE shift_id = s.id AND volunteer_id = s.volunteer_id
			ORDER BY responded_at DESC LIMIT 1
		) sc ON TRUE
		WHERE s.volunteer_id = $1
	`, volunteerID).Scan(&s.TotalShifts, &s.Confirmed, &s.Declined, &s.Pending, &s.FirstShiftDate, &s.LastShiftDate)
	if err != nil {
		return ShiftSummary{}, fmt.Errorf("shift summary: %w", err)
	}
	return s, nil
}

// ShiftStatusBreakdown holds lifetime shift counts by status.
type ShiftStatusBreakdown struct {
	TotalShifts       int `json:"total_shifts"`
	Completed         int `json:"completed_shifts"`
	Scheduled         int `json:"scheduled_shifts"`
	Confirmed         int `json:"confirmed_shifts"`
	Cancelled         int `json:"cancelled_shifts"`
	Absent            int `json:"absent_shifts"`
	MonthsVolunteered int `json:"months_volunteered"`
}

func ShiftStatusBreakdownFor(ctx context.Context, q Querier, volunteerID int64) (ShiftStatusBreakdown, error) {
	var s ShiftStatusBreakdown
	err := q.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN s.status = 'completed' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN s.status = 'scheduled' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN s.status = 'confirmed' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN s.status = 'cancelled' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN s.status = 'absent' THEN 1 ELSE 0 END), 0),
			COUNT(DISTINCT to_char(s.shift_date, 'YYYY-MM'))
		FROM shifts s
		WHERE s.volunteer_id = $1
	`, volunteerID).Scan(&s.TotalShifts, &s.Completed, &s.Scheduled, &s.Confirmed, &s.Cancelled, &s.Absent, &s.MonthsVolunteered)
	if err != nil {
		return ShiftStatusBreakdown{}, fmt.Errorf("shift status breakdown: %w", err)
	}
	return s, nil
}

// AttendanceSummary holds attendance counts and hours for one volunteer over
// an inclusive date range.
type AttendanceSummary struct {
	TotalShifts   int     `json:"total_shifts"`
	PresentCount  int     `json:"present_count"`
	LateCount     int     `json:"late_count"`
	AbsentCount   int     `json:"absent_count"`
	ExcusedCount  int     `json:"excused_count"`
	OnLeaveCount  int     `json:"on_leave_count"`
	TotalHours    float64 `json:"total_hours"`
	OvertimeHours float64 `json:"overtime_hours"`
}

// Rate returns the attendance rate in percent and whether it is defined.
// Present and late both count as attended.
func (s AttendanceSummary) Rate() (float64, bool) {
	if s.TotalShifts == 0 {
		return 0, false
	}
	return float64(s.PresentCount+s.LateCount) / float64(s.TotalShifts) * 100, true
}

// RateLabel formats the attendance rate for display, "N/A" when no shifts
// fall in the range.
func (s AttendanceSummary) RateLabel() string {
	rate, ok := s.Rate()
	if !ok {
		return "N/A"
	}
	return fmt.Sprintf("%.1f%%", rate)
}

func AttendanceSummaryFor(ctx context.Context, q Querier, volunteerID int64, start, end time.Time) (AttendanceSummary, error) {
	var s AttendanceSummary
	err := q.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN attendance_status = 'present' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN attendance_status = 'late' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN attendance_status = 'absent' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN attendance_status = 'excused' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN attendance_status = 'on_leave' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(total_hours), 0),
			COALESCE(SUM(overtime_hours), 0)
		FROM attendance_logs
		WHERE volunteer_id = $1 AND shift_date BETWEEN $2 AND $3
	`, volunteerID, start, end).Scan(
		&s.TotalShifts, &s.PresentCount, &s.LateCount, &s.AbsentCount,
		&s.ExcusedCount, &s.OnLeaveCount, &s.TotalHours, &s.OvertimeHours)
	if err != nil {
		return AttendanceSummary{}, fmt.Errorf("attendance summary: %w", err)
	}
	return s, nil
}

// DutySummary holds duty-assignment counts for one volunteer.
type DutySummary struct {
	TotalDuties     int `json:"total_duties"`
	UpcomingDuties  int `json:"upcoming_duties"`
	PastDuties      int `json:"past_duties"`
	PrimaryDuties   int `json:"primary_duties"`
	SecondaryDuties int `json:"secondary_duties"`
	SupportDuties   int `json:"support_duties"`
}

func DutySummaryFor(ctx context.Context, q Querier, volunteerID int64) (DutySummary, error) {
	var s DutySummary
	err := q.QueryRow(ctx, `
		SELECT
			COUNT(DISTINCT da.id),
			COUNT(DISTINCT CASE WHEN s.shift_date >= CURRENT_DATE THEN da.id END),
			COUNT(DISTINCT CASE WHEN s.shift_date < CURRENT_DATE THEN da.id END),
			COUNT(DISTINCT CASE WHEN da.priority = 'primary' THEN da.id END),
			COUNT(DISTINCT CASE WHEN da.priority = 'secondary' THEN da.id END),
			COUNT(DISTINCT CASE WHEN da.priority = 'support' THEN da.id END)
		FROM duty_assignments da
		JOIN shifts s ON s.duty_assignment_id = da.id
		WHERE s.volunteer_id = $1
	`, volunteerID).Scan(&s.TotalDuties, &s.UpcomingDuties, &s.PastDuties,
		&s.PrimaryDuties, &s.SecondaryDuties, &s.SupportDuties)
	if err != nil {
		return DutySummary{}, fmt.Errorf("duty summary: %w", err)
	}
	return s, nil
}

// ParticipationSummary holds the headline numbers shown on a volunteer's
// profile.
type ParticipationSummary struct {
	TotalShifts     int `json:"total_shifts"`
	CompletedShifts int `json:"completed_shifts"`
	AttendedShifts  int `json:"attended_shifts"`
	ConfirmedShifts int `json:"confirmed_shifts"`
}

func ParticipationSummaryFor(ctx context.Context, q Querier, volunteerID int64) (ParticipationSummary, error) {
	var s ParticipationSummary
	err := q.QueryRow(ctx, `
		SELECT
			COUNT(DISTINCT s.id),
			COUNT(DISTINCT CASE WHEN s.status = 'completed' THEN s.id END),
			COUNT(DISTINCT al.shift_id),
			COUNT(DISTINCT CASE WHEN s.confirmation_status = 'confirmed' THEN s.id END)
		FROM shifts s
		LEFT JOIN attendance_logs al
			ON al.shift_id = s.id AND al.attendance_status IN ('present', 'late')
		WHERE s.volunteer_id = $1
	`, volunteerID).Scan(&s.TotalShifts, &s.CompletedShifts, &s.AttendedShifts, &s.ConfirmedShifts)
	if err != nil {
		return ParticipationSummary{}, fmt.Errorf("participation summary: %w", err)
	}
	return s, nil
}
