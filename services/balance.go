// services/balance.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/big"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"airdrop-tracker/models"
	"airdrop-tracker/utils"
)

// BalanceResult is the outcome of one balance lookup. A failed lookup is a
// zero-value result with Error set — callers never see a Go error.
type BalanceResult struct {
	Balance     float64 `json:"balance"`
	BalanceUSD  float64 `json:"balanceUSD"`
	Price       float64 `json:"price"`
	TokenSymbol string  `json:"tokenSymbol"`
	Chain       string  `json:"chain"`
	ChainID     int64   `json:"chainId,omitempty"`
	Error       string  `json:"error,omitempty"`
}

// MultiChainResult aggregates one address across the EVM panel. Results only
// contain chains with a nonzero balance, sorted by USD value descending.
type MultiChainResult struct {
	Address  string          `json:"address"`
	TotalUSD float64         `json:"totalUSD"`
	Results  []BalanceResult `json:"results"`
	TopToken *BalanceResult  `json:"topToken"`
}

// BalanceFetcher issues the outbound RPC/API calls for balance lookups.
// Endpoint fields are overridable so tests can point at local servers.
type BalanceFetcher struct {
	HTTPClient   *http.Client
	EVMEndpoints map[int64]string
	SolanaRPC    string
	BitcoinAPI   string // balance endpoint, address appended
	PriceAPI     string // batched simple-price endpoint
}

func NewBalanceFetcher() *BalanceFetcher {
	return &BalanceFetcher{
		HTTPClient:   utils.HTTPClient,
		EVMEndpoints: models.RPCEndpoints,
		SolanaRPC:    "https://api.mainnet-beta.solana.com",
		BitcoinAPI:   "https://blockchain.info/q/addressbalance/",
		PriceAPI:     "https://api.coingecko.com/api/v3/simple/price",
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
	ID      int    `json:"id"`
}

func (f *BalanceFetcher) postJSONRPC(ctx context.Context, endpoint string, reqBody rpcRequest, out any) error {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal RPC request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create RPC request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s returned status %d: %s", endpoint, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode RPC response from %s: %w", endpoint, err)
	}
	return nil
}

// FetchEVMBalance queries eth_getBalance on the chain's designated endpoint
// and converts wei to whole tokens.
func (f *BalanceFetcher) FetchEVMBalance(ctx context.Context, address, chain string) (float64, error) {
	chainID, ok := models.ChainIDs[chain]
	if !ok {
		chainID = 1
	}
	endpoint, ok := f.EVMEndpoints[chainID]
	if !ok {
		return 0, fmt.Errorf("no RPC endpoint for chain %s (id %d)", chain, chainID)
	}

	var rpcResp struct {
		Result string `json:"result"`
	}
	err := f.postJSONRPC(ctx, endpoint, rpcRequest{
		JSONRPC: "2.0",
		Method:  "eth_getBalance",
		Params:  []any{address, "latest"},
		ID:      1,
	}, &rpcResp)
	if err != nil {
		return 0, err
	}
	if rpcResp.Result == "" {
		return 0, nil
	}

	wei, ok := new(big.Int).SetString(strings.TrimPrefix(rpcResp.Result, "0x"), 16)
	if !ok {
		return 0, fmt.Errorf("invalid eth_getBalance result %q", rpcResp.Result)
	}
	val, _ := new(big.Float).SetInt(wei).Float64()
	return val / models.FamilyEVM.Divisor(), nil
}

// FetchSolanaBalance queries getBalance and converts lamports to SOL.
func (f *BalanceFetcher) FetchSolanaBalance(ctx context.Context, address string) (float64, error) {
	var rpcResp struct {
		Result struct {
			Value *float64 `json:"value"`
		} `json:"result"`
	}
	err := f.postJSONRPC(ctx, f.SolanaRPC, rpcRequest{
		JSONRPC: "2.0",
		Method:  "getBalance",
		Params:  []any{address},
		ID:      1,
	}, &rpcResp)
	if err != nil {
		return 0, err
	}
	if rpcResp.Result.Value == nil {
		return 0, nil
	}
	return *rpcResp.Result.Value / models.FamilySolana.Divisor(), nil
}

// FetchBitcoinBalance queries the explorer balance endpoint and converts
// satoshi to BTC.
func (f *BalanceFetcher) FetchBitcoinBalance(ctx context.Context, address string) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", f.BitcoinAPI+address, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to call bitcoin balance API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("bitcoin balance API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64))
	if err != nil {
		return 0, fmt.Errorf("failed to read bitcoin balance response: %w", err)
	}
	sats, err := strconv.ParseFloat(strings.TrimSpace(string(body)), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid bitcoin balance %q: %w", string(body), err)
	}
	return sats / models.FamilyBitcoin.Divisor(), nil
}

// FetchPrices fetches USD unit prices for all supported tokens in one
// batched call and keys them by token symbol. On failure every price is
// zero — balance lookups keep working, they just value at $0.
func (f *BalanceFetcher) FetchPrices(ctx context.Context) map[string]float64 {
	prices := map[string]float64{}

	url := fmt.Sprintf("%s?ids=%s&vs_currencies=usd", f.PriceAPI, models.PriceTokenIDs)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		log.Printf("❌ [PRICE] failed to create price request: %v", err)
		return prices
	}

	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		log.Printf("❌ [PRICE] price API call failed: %v", err)
		return prices
	}
	defer resp.Body.Close()

	var raw map[string]struct {
		USD float64 `json:"usd"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		log.Printf("❌ [PRICE] failed to decode price response: %v", err)
		return prices
	}

	for symbol, id := range models.PriceIDBySymbol {
		prices[symbol] = raw[id].USD
	}
	return prices
}

// FetchBalanceInUSD resolves the chain family, fetches the native balance
// and values it at the current USD unit price. Network failures at any step
// degrade to a zero result with an error annotation.
func (f *BalanceFetcher) FetchBalanceInUSD(ctx context.Context, address, chain string) BalanceResult {
	var (
		balance     float64
		err         error
		tokenSymbol = "ETH"
		networkName = chain
		chainID     int64
	)

	switch models.FamilyFor(chain) {
	case models.FamilyBitcoin:
		balance, err = f.FetchBitcoinBalance(ctx, address)
		tokenSymbol = "BTC"
	case models.FamilySolana:
		balance, err = f.FetchSolanaBalance(ctx, address)
		tokenSymbol = "SOL"
	default:
		id, ok := models.ChainIDs[chain]
		if !ok {
			id = 1
		}
		chainID = id
		balance, err = f.FetchEVMBalance(ctx, address, chain)
		if symbol, ok := models.NetworkTokens[id]; ok {
			tokenSymbol = symbol
		}
		if name, ok := models.ChainNames[id]; ok {
			networkName = name
		}
	}

	if err != nil {
		log.Printf("❌ [BALANCE] %s lookup failed for %s: %v", chain, address, err)
		return BalanceResult{Chain: chain, Error: err.Error()}
	}

	prices := f.FetchPrices(ctx)
	price := prices[tokenSymbol]

	return BalanceResult{
		Balance:     balance,
		BalanceUSD:  balance * price,
		Price:       price,
		TokenSymbol: tokenSymbol,
		Chain:       networkName,
		ChainID:     chainID,
	}
}

// CheckAllEVMNetworks sweeps the fixed EVM panel for one address, one chain
// at a time. Per-chain failures are isolated; only chains holding a nonzero
// balance make it into the result set.
func (f *BalanceFetcher) CheckAllEVMNetworks(ctx context.Context, address string) MultiChainResult {
	out := MultiChainResult{Address: address, Results: []BalanceResult{}}

	for _, chain := range models.EVMSweepChains {
		res := f.FetchBalanceInUSD(ctx, address, chain)
		if res.Error != "" {
			log.Printf("⚠️ [SWEEP] could not fetch from %s: %s", chain, res.Error)
			continue
		}
		if res.Balance > 0 || res.BalanceUSD > 0 {
			out.Results = append(out.Results, res)
			out.TotalUSD += res.BalanceUSD
			log.Printf("📥 [SWEEP] %s: %f %s (%s)", chain, res.Balance, res.TokenSymbol, utils.FormatUSD(res.BalanceUSD))
		}
	}

	// Highest USD value first
	sort.Slice(out.Results, func(i, j int) bool {
		return out.Results[i].BalanceUSD > out.Results[j].BalanceUSD
	})

	if len(out.Results) > 0 {
		out.TopToken = &out.Results[0]
	}
	log.Printf("✅ [SWEEP] total across all networks for %s: %s", address, utils.FormatUSD(out.TotalUSD))
	return out
}
