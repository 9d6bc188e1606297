package handlers

import (
	"airdrop-tracker/middleware"
	"airdrop-tracker/services"

	"github.com/gofiber/fiber/v2"
)

func SetupAIRoutes(app *fiber.App, aiService *services.AIService) {
	secured := app.Group("/s", middleware.UserContextMiddleware())

	secured.Get("/ai/providers", aiService.GetProviders)
	secured.Post("/ai/providers", aiService.CreateProvider)
	secured.Delete("/ai/providers/:id", aiService.DeleteProvider)
	secured.Post("/ai/chat", aiService.Chat)
}
