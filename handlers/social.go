package handlers

import (
	"airdrop-tracker/middleware"
	"airdrop-tracker/services"

	"github.com/gofiber/fiber/v2"
)

func SetupSocialRoutes(app *fiber.App, socialService *services.SocialService, settingsService *services.SettingsService) {
	secured := app.Group("/s", middleware.UserContextMiddleware())

	secured.Get("/social", socialService.GetAccounts)
	secured.Post("/social", socialService.CreateAccount)
	secured.Delete("/social/:id", socialService.DeleteAccount)

	secured.Get("/settings", settingsService.GetSettings)
	secured.Put("/settings", settingsService.UpdateSettings)
}
