// workers/balance_worker.go
package workers

import (
	"context"
	"log"
	"time"

	"airdrop-tracker/models"
	"airdrop-tracker/services"

	"gorm.io/gorm"
)

// BalanceRefreshClient periodically re-values every stored wallet so the
// dashboard's balances do not go permanently stale between manual
// refreshes. One wallet at a time, no retries; a failed fetch leaves the
// previous stored value in place.
type BalanceRefreshClient struct {
	DB      *gorm.DB
	Fetcher *services.BalanceFetcher
}

func NewBalanceRefreshClient(db *gorm.DB, fetcher *services.BalanceFetcher) *BalanceRefreshClient {
	return &BalanceRefreshClient{DB: db, Fetcher: fetcher}
}

func (c *BalanceRefreshClient) refreshAll(ctx context.Context) {
	var wallets []models.Wallet
	if err := c.DB.Find(&wallets).Error; err != nil {
		log.Printf("❌ [BALANCE_WORKER] failed to list wallets: %v", err)
		return
	}
	if len(wallets) == 0 {
		return
	}

	log.Printf("Refreshing balances for %d wallet(s)...", len(wallets))
	updated := 0
	for i := range wallets {
		w := &wallets[i]

		res := c.Fetcher.FetchBalanceInUSD(ctx, w.Address, w.Chain)
		if res.Error != "" {
			log.Printf("⚠️ [BALANCE_WORKER] skipping %s (%s): %s", w.Name, w.Chain, res.Error)
			continue
		}

		w.Balance = res.Balance
		w.BalanceUSD = res.BalanceUSD
		w.Price = res.Price
		w.LastUpdated = time.Now()
		if err := c.DB.Save(w).Error; err != nil {
			log.Printf("❌ [BALANCE_WORKER] failed to persist %s: %v", w.Name, err)
			continue
		}
		updated++
	}
	log.Printf("✅ Balance refresh pass done: %d/%d wallet(s) updated", updated, len(wallets))
}

// PollBalances runs the refresh loop until ctx is cancelled.
func PollBalances(ctx context.Context, client *BalanceRefreshClient, pollInterval time.Duration) {
	log.Printf("Starting wallet balance polling (every %s)...", pollInterval)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Balance polling stopped.")
			return
		case <-ticker.C:
			client.refreshAll(ctx)
		}
	}
}
