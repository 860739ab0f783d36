package duties

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitRequirements(t *testing.T) {
	assert.Equal(t, []string{"Radio", "Helmet", "Rope"},
		SplitRequirements("Radio, Helmet,, Rope "))
	assert.Equal(t, []string{"First Aid Kit"},
		SplitRequirements("First Aid Kit"))
	assert.Equal(t, []string{}, SplitRequirements(""))
	assert.Equal(t, []string{}, SplitRequirements(" , , "))
}

func TestBuildDutyFilters(t *testing.T) {
	var got dutyFilters
	app := fiber.New()
	app.Get("/d", func(c *fiber.Ctx) error {
		f, err := buildDutyFilters(c)
		if err != nil {
			return err
		}
		got = f
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("GET",
		"/d?status=confirmed&timeframe=upcoming&date=2026-06-16&unit_id=3", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "confirmed", got.status)
	assert.Equal(t, "upcoming", got.timeframe)
	assert.Equal(t, "2026-06-16", got.date)
	assert.Equal(t, 3, got.unitID)

	resp, err = app.Test(httptest.NewRequest("GET", "/d", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode, "all filters optional")
}

func TestBuildDutyFiltersRejectsBadValues(t *testing.T) {
	app := fiber.New()
	app.Get("/d", func(c *fiber.Ctx) error {
		if _, err := buildDutyFilters(c); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusOK)
	})

	for _, q := range []string{
		"status=archived",
		"timeframe=yesterday",
		"date=16-06-2026",
		"unit_id=zero",
	} {
		resp, err := app.Test(httptest.NewRequest("GET", "/d?"+q, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, q)
	}
}
