package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"airdrop-tracker/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const oneEtherHex = "0xde0b6b3a7640000" // 1e18

func newRPCServer(t *testing.T, resultHex string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "eth_getBalance", req.Method)
		json.NewEncoder(w).Encode(map[string]any{"jsonrpc": "2.0", "id": 1, "result": resultHex})
	}))
}

func newPriceServer(t *testing.T, prices map[string]float64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NotEmpty(t, r.URL.Query().Get("ids"))
		out := map[string]map[string]float64{}
		for id, usd := range prices {
			out[id] = map[string]float64{"usd": usd}
		}
		json.NewEncoder(w).Encode(out)
	}))
}

func testFetcher(priceServer *httptest.Server) *BalanceFetcher {
	f := NewBalanceFetcher()
	f.HTTPClient = &http.Client{Timeout: 5 * time.Second}
	f.EVMEndpoints = map[int64]string{}
	if priceServer != nil {
		f.PriceAPI = priceServer.URL
	}
	return f
}

func TestFetchBalanceInUSD_EVM(t *testing.T) {
	rpc := newRPCServer(t, oneEtherHex)
	defer rpc.Close()
	price := newPriceServer(t, map[string]float64{"ethereum": 2000})
	defer price.Close()

	f := testFetcher(price)
	f.EVMEndpoints[1] = rpc.URL

	res := f.FetchBalanceInUSD(context.Background(), "0xabc", "Ethereum")
	assert.Empty(t, res.Error)
	assert.Equal(t, 1.0, res.Balance)
	assert.Equal(t, 2000.0, res.BalanceUSD)
	assert.Equal(t, 2000.0, res.Price)
	assert.Equal(t, "ETH", res.TokenSymbol)
	assert.Equal(t, "Ethereum", res.Chain)
	assert.Equal(t, int64(1), res.ChainID)
}

func TestFetchBalanceInUSD_AliasResolvesCanonicalName(t *testing.T) {
	rpc := newRPCServer(t, oneEtherHex)
	defer rpc.Close()
	price := newPriceServer(t, map[string]float64{"matic-network": 0.5})
	defer price.Close()

	f := testFetcher(price)
	f.EVMEndpoints[137] = rpc.URL

	res := f.FetchBalanceInUSD(context.Background(), "0xabc", "MATIC")
	assert.Equal(t, "Polygon", res.Chain)
	assert.Equal(t, "MATIC", res.TokenSymbol)
	assert.Equal(t, 0.5, res.BalanceUSD)
}

func TestFetchBalanceInUSD_UnreachableEndpoint(t *testing.T) {
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	dead.Close() // connection refused from here on

	f := testFetcher(nil)
	f.EVMEndpoints[1] = dead.URL

	res := f.FetchBalanceInUSD(context.Background(), "0xabc", "Ethereum")
	assert.Zero(t, res.Balance)
	assert.Zero(t, res.BalanceUSD)
	assert.NotEmpty(t, res.Error)
}

func TestFetchBalanceInUSD_Bitcoin(t *testing.T) {
	explorer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "150000000") // 1.5 BTC in satoshi
	}))
	defer explorer.Close()
	price := newPriceServer(t, map[string]float64{"bitcoin": 40000})
	defer price.Close()

	f := testFetcher(price)
	f.BitcoinAPI = explorer.URL + "/"

	res := f.FetchBalanceInUSD(context.Background(), "bc1qxyz", "Bitcoin")
	assert.Empty(t, res.Error)
	assert.Equal(t, 1.5, res.Balance)
	assert.Equal(t, "BTC", res.TokenSymbol)
	assert.Equal(t, 60000.0, res.BalanceUSD)
}

func TestFetchBalanceInUSD_Solana(t *testing.T) {
	rpc := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "getBalance", req.Method)
		json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0", "id": 1,
			"result": map[string]any{"value": 2500000000},
		})
	}))
	defer rpc.Close()
	price := newPriceServer(t, map[string]float64{"solana": 100})
	defer price.Close()

	f := testFetcher(price)
	f.SolanaRPC = rpc.URL

	res := f.FetchBalanceInUSD(context.Background(), "So1anaAddr", "Solana")
	assert.Empty(t, res.Error)
	assert.Equal(t, 2.5, res.Balance)
	assert.Equal(t, "SOL", res.TokenSymbol)
	assert.Equal(t, 250.0, res.BalanceUSD)
}

func TestFetchPrices_MissingSymbolDefaultsToZero(t *testing.T) {
	price := newPriceServer(t, map[string]float64{"ethereum": 1234})
	defer price.Close()

	f := testFetcher(price)
	prices := f.FetchPrices(context.Background())
	assert.Equal(t, 1234.0, prices["ETH"])
	assert.Zero(t, prices["MNT"]) // no entry in the response
}

func TestCheckAllEVMNetworks(t *testing.T) {
	rpc := newRPCServer(t, oneEtherHex)
	defer rpc.Close()
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	dead.Close()

	price := newPriceServer(t, map[string]float64{
		"ethereum":      3000,
		"matic-network": 2,
		"binancecoin":   500,
	})
	defer price.Close()

	f := testFetcher(price)
	// Every panel chain answers with 1 native token; Fantom is unreachable.
	for _, chain := range models.EVMSweepChains {
		f.EVMEndpoints[models.ChainIDs[chain]] = rpc.URL
	}
	f.EVMEndpoints[models.ChainIDs["Fantom"]] = dead.URL

	out := f.CheckAllEVMNetworks(context.Background(), "0xabc")

	// 15 panel chains, one unreachable — its failure is isolated
	assert.Len(t, out.Results, len(models.EVMSweepChains)-1)
	for _, res := range out.Results {
		assert.NotEqual(t, "Fantom", res.Chain)
	}

	// Sorted by USD descending, total is the sum of returned entries
	var sum float64
	for i, res := range out.Results {
		if i > 0 {
			assert.GreaterOrEqual(t, out.Results[i-1].BalanceUSD, res.BalanceUSD)
		}
		sum += res.BalanceUSD
	}
	assert.InDelta(t, sum, out.TotalUSD, 1e-9)

	require.NotNil(t, out.TopToken)
	assert.Equal(t, 3000.0, out.TopToken.BalanceUSD)
	assert.Equal(t, "ETH", out.TopToken.TokenSymbol)
}
