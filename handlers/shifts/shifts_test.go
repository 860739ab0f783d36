package shifts

import (
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"frsm-backend/models"
)

func TestRespondable(t *testing.T) {
	now := time.Date(2026, time.June, 15, 10, 0, 0, 0, time.UTC)
	today := time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC)
	tomorrow := today.AddDate(0, 0, 1)
	yesterday := today.AddDate(0, 0, -1)

	cases := []struct {
		name    string
		shift   models.Shift
		wantErr int // 0 means allowed
	}{
		{"scheduled tomorrow", models.Shift{ShiftDate: tomorrow, Status: models.ShiftScheduled}, 0},
		{"scheduled today", models.Shift{ShiftDate: today, Status: models.ShiftScheduled}, 0},
		{"already confirmed", models.Shift{ShiftDate: tomorrow, Status: models.ShiftConfirmed}, 0},
		{"past shift", models.Shift{ShiftDate: yesterday, Status: models.ShiftScheduled}, fiber.StatusConflict},
		{"cancelled", models.Shift{ShiftDate: tomorrow, Status: models.ShiftCancelled}, fiber.StatusConflict},
		{"completed", models.Shift{ShiftDate: tomorrow, Status: models.ShiftCompleted}, fiber.StatusConflict},
		{"absent", models.Shift{ShiftDate: tomorrow, Status: models.ShiftAbsent}, fiber.StatusConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := respondable(tc.shift, now)
			if tc.wantErr == 0 {
				assert.NoError(t, err)
				return
			}
			var fe *fiber.Error
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tc.wantErr, fe.Code)
		})
	}
}

func TestDeclineRequestValidation(t *testing.T) {
	assert.Error(t, validate.Struct(models.DeclineShiftRequest{}))
	assert.NoError(t, validate.Struct(models.DeclineShiftRequest{Reason: "family emergency"}))
}

func TestChangeRequestValidation(t *testing.T) {
	assert.Error(t, validate.Struct(models.ChangeRequestRequest{}),
		"type and details are required")
	assert.Error(t, validate.Struct(models.ChangeRequestRequest{
		RequestType:    "reschedule",
		RequestDetails: "move to evening",
	}), "unknown request type")
	assert.Error(t, validate.Struct(models.ChangeRequestRequest{
		RequestType: models.RequestTimeChange,
	}), "details are required")
	assert.NoError(t, validate.Struct(models.ChangeRequestRequest{
		RequestType:    models.RequestTimeChange,
		RequestDetails: "can only start after 14:00",
	}))
	assert.NoError(t, validate.Struct(models.ChangeRequestRequest{
		RequestType:    models.RequestSwap,
		RequestDetails: "swap with Dela Cruz",
	}), "swap target is enforced by the handler, not the struct tags")
}

func TestResponseNoticesAddressTheVolunteer(t *testing.T) {
	notices := responseNotices(7, "shift_confirmation", "Shift Confirmed",
		"You have confirmed your shift on 2026-06-16 (08:00 - 16:00)",
		"Volunteer #3 confirmed shift on 2026-06-16 (08:00 - 16:00)")
	require.Len(t, notices, 2)

	own := notices[0]
	assert.Equal(t, int64(7), own.userID, "the acting volunteer's account gets its own row")
	assert.Equal(t, "shift_confirmation", own.kind)
	assert.Contains(t, own.message, "You have confirmed")

	staff := notices[1]
	assert.Zero(t, staff.userID, "zero user id broadcasts to staff")
	assert.Contains(t, staff.message, "Volunteer #3")
}

func TestMonthRange(t *testing.T) {
	start, end, err := MonthRange("2026-04")
	require.NoError(t, err)
	assert.Equal(t, "2026-04-01", start.Format("2006-01-02"))
	assert.Equal(t, "2026-04-30", end.Format("2006-01-02"))

	_, _, err = MonthRange("04-2026")
	assert.Error(t, err)
}
