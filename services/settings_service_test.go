package services

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Validation runs before any store access, so a nil DB is fine here — only
// the rejection paths are exercised.
func TestUpdateSettings_Validation(t *testing.T) {
	svc := NewSettingsService(nil)

	app := fiber.New()
	app.Put("/s/settings", func(c *fiber.Ctx) error {
		c.Locals("user_id", "user-1")
		return svc.UpdateSettings(c)
	})

	cases := []struct {
		name string
		body string
	}{
		{"hour too large", `{"dailyResetHour": 24}`},
		{"negative hour", `{"dailyResetHour": -1}`},
		{"malformed body", `not json`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("PUT", "/s/settings", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		})
	}
}
