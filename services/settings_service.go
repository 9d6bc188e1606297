// services/settings_service.go
package services

import (
	"time"

	"airdrop-tracker/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingsService struct {
	DB *gorm.DB
}

func NewSettingsService(db *gorm.DB) *SettingsService {
	return &SettingsService{DB: db}
}

// GetSettings returns the user's preferences, defaults when none stored.
func (s *SettingsService) GetSettings(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var setting models.Setting
	if err := s.DB.Where("user_id = ?", userID).First(&setting).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(models.Setting{UserID: userID})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(setting)
}

// UpdateSettings upserts the single preference row per user.
func (s *SettingsService) UpdateSettings(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var in struct {
		DailyResetHour int    `json:"dailyResetHour"`
		DefaultLink    string `json:"defaultLink"`
	}
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if in.DailyResetHour < 0 || in.DailyResetHour > 23 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "dailyResetHour must be between 0 and 23"})
	}

	setting := models.Setting{
		UserID:         userID,
		DailyResetHour: in.DailyResetHour,
		DefaultLink:    in.DefaultLink,
		UpdatedAt:      time.Now(),
	}

	err := s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"daily_reset_hour", "default_link", "updated_at"}),
	}).Create(&setting).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(setting)
}
