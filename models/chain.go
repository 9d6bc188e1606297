// models/chain.go
package models

// ChainFamily selects the balance-fetch strategy for a chain label.
type ChainFamily int

const (
	FamilyEVM ChainFamily = iota
	FamilySolana
	FamilyBitcoin
)

// FamilyFor dispatches a free-text chain label to its fetch strategy.
// Anything that is not Bitcoin or Solana is treated as EVM.
func FamilyFor(chain string) ChainFamily {
	switch chain {
	case "Bitcoin":
		return FamilyBitcoin
	case "Solana":
		return FamilySolana
	default:
		return FamilyEVM
	}
}

// Divisor converts the chain's smallest denomination into whole tokens.
func (f ChainFamily) Divisor() float64 {
	switch f {
	case FamilyBitcoin:
		return 1e8 // satoshi
	case FamilySolana:
		return 1e9 // lamports
	default:
		return 1e18 // wei
	}
}

// ChainIDs maps chain labels (including common aliases) to EVM chain IDs.
var ChainIDs = map[string]int64{
	"Ethereum":  1,
	"EVM":       1,
	"ETH":       1,
	"BSC":       56,
	"Polygon":   137,
	"MATIC":     137,
	"Arbitrum":  42161,
	"ARB":       42161,
	"Optimism":  10,
	"OP":        10,
	"Base":      8453,
	"Avalanche": 43114,
	"AVAX":      43114,
	"Fantom":    250,
	"FTM":       250,
	"zkSync":    324,
	"Linea":     59144,
	"Mantle":    5000,
	"Celo":      42220,
	"Gnosis":    100,
	"Harmony":   1666600000,
	"Moonbeam":  1284,
}

// ChainNames maps a chain ID back to its canonical display name.
var ChainNames = map[int64]string{
	1:          "Ethereum",
	56:         "BSC",
	137:        "Polygon",
	42161:      "Arbitrum",
	10:         "Optimism",
	8453:       "Base",
	43114:      "Avalanche",
	250:        "Fantom",
	324:        "zkSync",
	59144:      "Linea",
	5000:       "Mantle",
	42220:      "Celo",
	100:        "Gnosis",
	1666600000: "Harmony",
	1284:       "Moonbeam",
}

// RPCEndpoints holds the designated public node per EVM chain ID.
var RPCEndpoints = map[int64]string{
	1:          "https://eth.llamarpc.com",
	56:         "https://bsc-dataseed.binance.org",
	137:        "https://polygon-rpc.com",
	42161:      "https://arb1.arbitrum.io/rpc",
	10:         "https://mainnet.optimism.io",
	8453:       "https://mainnet.base.org",
	43114:      "https://api.avax.network/ext/bc/C/rpc",
	250:        "https://rpc.ftm.tools",
	324:        "https://mainnet.era.zksync.io",
	59144:      "https://rpc.linea.build",
	5000:       "https://rpc.mantle.xyz",
	42220:      "https://forno.celo.org",
	100:        "https://rpc.gnosischain.com",
	1666600000: "https://api.harmony.one",
	1284:       "https://rpc.api.moonbeam.network",
}

// NetworkTokens resolves a chain ID to its native token symbol.
var NetworkTokens = map[int64]string{
	1:          "ETH",
	56:         "BNB",
	137:        "MATIC",
	42161:      "ETH",
	10:         "ETH",
	8453:       "ETH",
	43114:      "AVAX",
	250:        "FTM",
	324:        "ETH",
	59144:      "ETH",
	5000:       "MNT",
	42220:      "CELO",
	100:        "xDAI",
	1666600000: "ONE",
	1284:       "GLMR",
}

// EVMSweepChains is the fixed panel queried by the multi-chain sweep,
// in query order.
var EVMSweepChains = []string{
	"Ethereum", "BSC", "Polygon", "Arbitrum", "Optimism", "Base",
	"Avalanche", "Fantom", "zkSync", "Linea", "Mantle",
	"Celo", "Gnosis", "Harmony", "Moonbeam",
}

// PriceTokenIDs is the fixed comma-joined CoinGecko id list used for the
// batched price call. A chain added to RPCEndpoints without a matching id
// here silently prices at zero; that gap is intentional and mirrors the
// endpoint table being the single source of truth for reachability only.
const PriceTokenIDs = "ethereum,solana,bitcoin,binancecoin,matic-network,arbitrum,optimism,base,avalanche-2,fantom,zksync,linea,mantle,celo,xdai,harmony,moonbeam"

// PriceIDBySymbol maps native token symbols to CoinGecko ids for reading
// the batched price response.
var PriceIDBySymbol = map[string]string{
	"ETH":   "ethereum",
	"BNB":   "binancecoin",
	"MATIC": "matic-network",
	"ARB":   "arbitrum",
	"OP":    "optimism",
	"AVAX":  "avalanche-2",
	"FTM":   "fantom",
	"MNT":   "mantle",
	"CELO":  "celo",
	"xDAI":  "xdai",
	"ONE":   "harmony",
	"GLMR":  "moonbeam",
	"SOL":   "solana",
	"BTC":   "bitcoin",
}
