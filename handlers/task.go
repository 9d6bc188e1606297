package handlers

import (
	"airdrop-tracker/middleware"
	"airdrop-tracker/services"

	"github.com/gofiber/fiber/v2"
)

func SetupTaskRoutes(app *fiber.App, taskService *services.TaskService, importService *services.ImportService) {
	// 📡 Stream route — EventSource auth via query params
	app.Get("/s/tasks/stream", middleware.SSEAuthMiddleware(), taskService.StreamTasksSSE)

	// 🔐 Authenticated routes
	secured := app.Group("/s", middleware.UserContextMiddleware())

	secured.Get("/tasks", taskService.GetTasks)
	secured.Post("/tasks", taskService.CreateTask)
	secured.Put("/tasks/:id", taskService.UpdateTask)
	secured.Patch("/tasks/:id/status", taskService.ToggleTaskStatus)
	secured.Delete("/tasks/:id", taskService.DeleteTask)
	secured.Delete("/tasks", taskService.DeleteAllTasks)

	// JSON interchange
	secured.Post("/tasks/import", importService.ImportTasks)
	secured.Get("/tasks/export", taskService.ExportTasks)
}
