package handlers

import (
	"airdrop-tracker/middleware"
	"airdrop-tracker/services"

	"github.com/gofiber/fiber/v2"
)

func SetupWalletRoutes(app *fiber.App, walletService *services.WalletService) {
	app.Get("/s/wallets/stream", middleware.SSEAuthMiddleware(), walletService.StreamWalletsSSE)

	secured := app.Group("/s", middleware.UserContextMiddleware())

	secured.Get("/wallets", walletService.GetWallets)
	secured.Post("/wallets", walletService.CreateWallet)
	secured.Delete("/wallets/:id", walletService.DeleteWallet)

	// Balance operations
	secured.Get("/wallets/multichain", walletService.CheckMultiChain)
	secured.Post("/wallets/refresh", walletService.RefreshAllWallets)
	secured.Post("/wallets/:id/refresh", walletService.RefreshWallet)
}
