// services/wallet_service.go
package services

import (
	"log"
	"sort"
	"strings"
	"time"

	"airdrop-tracker/models"
	"airdrop-tracker/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WalletService struct {
	DB      *gorm.DB
	Feed    *Feed[models.Wallet]
	Fetcher *BalanceFetcher
}

func NewWalletService(db *gorm.DB, feed *Feed[models.Wallet], fetcher *BalanceFetcher) *WalletService {
	return &WalletService{DB: db, Feed: feed, Fetcher: fetcher}
}

func (s *WalletService) loadSnapshot(userID string) ([]models.Wallet, error) {
	var wallets []models.Wallet
	err := s.DB.Where("user_id = ?", userID).Order("created_at DESC").Find(&wallets).Error
	return wallets, err
}

func (s *WalletService) publishSnapshot(userID string) {
	wallets, err := s.loadSnapshot(userID)
	if err != nil {
		log.Printf("❌ [WALLETS] failed to load snapshot for %s: %v", userID, err)
		return
	}
	s.Feed.Publish(userID, wallets)
}

// GetWallets lists wallets with optional search/chain filters and
// balance-ordered sorting.
func (s *WalletService) GetWallets(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	wallets, err := s.loadSnapshot(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load wallets", "cause": err.Error(),
		})
	}

	if search := strings.ToLower(c.Query("search")); search != "" {
		filtered := wallets[:0]
		for _, w := range wallets {
			if strings.Contains(strings.ToLower(w.Name), search) ||
				strings.Contains(strings.ToLower(w.Address), search) ||
				strings.Contains(strings.ToLower(w.Chain), search) {
				filtered = append(filtered, w)
			}
		}
		wallets = filtered
	}

	if chain := c.Query("chain"); chain != "" && chain != "all" {
		filtered := wallets[:0]
		for _, w := range wallets {
			if w.Chain == chain {
				filtered = append(filtered, w)
			}
		}
		wallets = filtered
	}

	if order := c.Query("sort"); order == "asc" || order == "desc" {
		sort.SliceStable(wallets, func(i, j int) bool {
			if order == "asc" {
				return wallets[i].BalanceUSD < wallets[j].BalanceUSD
			}
			return wallets[i].BalanceUSD > wallets[j].BalanceUSD
		})
	}

	return c.JSON(wallets)
}

// CreateWallet registers an address. Balance fields stay zero until the
// first refresh.
func (s *WalletService) CreateWallet(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var in struct {
		Name    string `json:"name"`
		Address string `json:"address"`
		Chain   string `json:"chain"`
	}
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	in.Name = strings.TrimSpace(in.Name)
	in.Address = strings.TrimSpace(in.Address)
	if in.Name == "" || in.Address == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name and address are required"})
	}
	if in.Chain == "" {
		in.Chain = "Ethereum"
	}

	wallet := models.Wallet{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        in.Name,
		Address:     in.Address,
		Chain:       in.Chain,
		CreatedAt:   time.Now(),
		LastUpdated: time.Now(),
	}
	if err := s.DB.Create(&wallet).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to add wallet", "cause": err.Error(),
		})
	}

	s.publishSnapshot(userID)
	return c.Status(fiber.StatusCreated).JSON(wallet)
}

// DeleteWallet removes one wallet. Irreversible.
func (s *WalletService) DeleteWallet(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	walletID := c.Params("id")

	res := s.DB.Where("id = ? AND user_id = ?", walletID, userID).Delete(&models.Wallet{})
	if res.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": res.Error.Error()})
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "wallet not found"})
	}

	s.publishSnapshot(userID)
	return c.JSON(fiber.Map{"deleted": walletID})
}

// refreshWallet fetches and persists one wallet's balance. A failed fetch
// stores the zero result; the error stays in the response annotation only.
func (s *WalletService) refreshWallet(c *fiber.Ctx, wallet *models.Wallet) BalanceResult {
	res := s.Fetcher.FetchBalanceInUSD(c.Context(), wallet.Address, wallet.Chain)

	wallet.Balance = res.Balance
	wallet.BalanceUSD = res.BalanceUSD
	wallet.Price = res.Price
	wallet.LastUpdated = time.Now()
	if err := s.DB.Save(wallet).Error; err != nil {
		log.Printf("❌ [WALLETS] failed to persist balance for %s: %v", wallet.Name, err)
	}
	return res
}

// RefreshWallet handles POST /s/wallets/:id/refresh.
func (s *WalletService) RefreshWallet(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	walletID := c.Params("id")

	var wallet models.Wallet
	if err := s.DB.Where("id = ? AND user_id = ?", walletID, userID).First(&wallet).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "wallet not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	res := s.refreshWallet(c, &wallet)
	log.Printf("✅ [WALLETS] refreshed %s: %f %s (%s)",
		wallet.Name, res.Balance, res.TokenSymbol, utils.FormatUSD(res.BalanceUSD))

	s.publishSnapshot(userID)
	return c.JSON(fiber.Map{"wallet": wallet, "result": res})
}

// RefreshAllWallets refreshes every wallet serially; per-wallet failures
// are isolated and reported inline.
func (s *WalletService) RefreshAllWallets(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	wallets, err := s.loadSnapshot(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load wallets", "cause": err.Error(),
		})
	}

	results := make([]BalanceResult, 0, len(wallets))
	for i := range wallets {
		results = append(results, s.refreshWallet(c, &wallets[i]))
	}

	s.publishSnapshot(userID)
	return c.JSON(fiber.Map{"wallets": wallets, "results": results})
}

// CheckMultiChain handles GET /s/wallets/multichain?address=...&wallet=...
// It sweeps the EVM panel; when a wallet id is supplied the aggregate USD
// total is stored back on that wallet record.
func (s *WalletService) CheckMultiChain(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	address := strings.TrimSpace(c.Query("address"))
	if address == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "address query param is required"})
	}

	result := s.Fetcher.CheckAllEVMNetworks(c.Context(), address)

	if walletID := c.Query("wallet"); walletID != "" {
		err := s.DB.Model(&models.Wallet{}).
			Where("id = ? AND user_id = ?", walletID, userID).
			Updates(map[string]any{"total_usd": result.TotalUSD, "last_updated": time.Now()}).Error
		if err != nil {
			log.Printf("❌ [WALLETS] failed to store sweep total on %s: %v", walletID, err)
		} else {
			s.publishSnapshot(userID)
		}
	}

	return c.JSON(result)
}
