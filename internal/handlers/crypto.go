package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/keepmind9/pokerbot/internal/command"
	"github.com/keepmind9/pokerbot/internal/core"
	"github.com/tidwall/gjson"
)

// CoinGeckoMarketsURL is the CoinGecko markets endpoint
const CoinGeckoMarketsURL = "https://api.coingecko.com/api/v3/coins/markets"

const marketsPageSize = 100

// Coin is one row of the market snapshot
type Coin struct {
	Symbol    string
	Name      string
	Price     float64
	MarketCap float64
	Change24h float64
}

// Crypto replies with market cap data. The snapshot is refreshed in the
// background by Refresh and fetched on demand while it is empty.
type Crypto struct {
	top      int
	currency string
	client   *http.Client
	// BaseURL is the markets endpoint, replaced in tests
	BaseURL string

	mu    sync.RWMutex
	coins []Coin
}

// NewCrypto creates the crypto handler
func NewCrypto(cfg *core.Config, client *http.Client) *Crypto {
	return &Crypto{
		top:      cfg.Features.Crypto.Top,
		currency: cfg.Features.Crypto.Currency,
		client:   client,
		BaseURL:  CoinGeckoMarketsURL,
	}
}

func (c *Crypto) Name() string             { return "crypto" }
func (c *Crypto) Trigger() command.Trigger { return command.Pattern(`(?s)^[.!](?:crypto|mcap)\b(.*)$`) }
func (c *Crypto) Description() string {
	return "!crypto [symbol] or !mcap [symbol]: send to channel the top coins by market cap, or one coin"
}

func (c *Crypto) Execute(ctx context.Context, inv *command.Invocation) error {
	coins := c.Snapshot()
	if len(coins) == 0 {
		if err := c.Refresh(ctx); err != nil {
			return command.Fail("market data lookup", err)
		}
		coins = c.Snapshot()
	}

	symbol := strings.ToLower(strings.TrimSpace(inv.Argument))
	if symbol == "" {
		for i, coin := range coins {
			if i >= c.top {
				break
			}
			if err := inv.Reply(ctx, c.format(i+1, coin)); err != nil {
				return err
			}
		}
		return nil
	}

	for i, coin := range coins {
		if strings.EqualFold(coin.Symbol, symbol) {
			return inv.Reply(ctx, c.format(i+1, coin))
		}
	}
	return inv.Reply(ctx, "Unknown coin: "+symbol)
}

// Snapshot returns the current market snapshot ordered by market cap
func (c *Crypto) Snapshot() []Coin {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.coins
}

// Refresh replaces the snapshot with fresh market data
func (c *Crypto) Refresh(ctx context.Context) error {
	query := url.Values{}
	query.Set("vs_currency", c.currency)
	query.Set("order", "market_cap_desc")
	query.Set("per_page", strconv.Itoa(marketsPageSize))
	query.Set("page", "1")

	res, err := getJSON(ctx, c.client, c.BaseURL+"?"+query.Encode(), nil)
	if err != nil {
		return err
	}
	if !res.IsArray() {
		return fmt.Errorf("markets response is not a list")
	}

	var coins []Coin
	res.ForEach(func(_, row gjson.Result) bool {
		coins = append(coins, Coin{
			Symbol:    strings.ToUpper(row.Get("symbol").String()),
			Name:      row.Get("name").String(),
			Price:     row.Get("current_price").Float(),
			MarketCap: row.Get("market_cap").Float(),
			Change24h: row.Get("price_change_percentage_24h").Float(),
		})
		return true
	})

	c.mu.Lock()
	c.coins = coins
	c.mu.Unlock()
	return nil
}

// format renders: #1 BTC (Bitcoin) | 67000.12 USD | mcap 1.32T | 24h +1.20%
func (c *Crypto) format(rank int, coin Coin) string {
	return fmt.Sprintf("#%d %s (%s) | %s %s | mcap %s | 24h %+.2f%%",
		rank, coin.Symbol, coin.Name,
		strconv.FormatFloat(coin.Price, 'f', -1, 64), strings.ToUpper(c.currency),
		humanize(coin.MarketCap), coin.Change24h)
}

// humanize abbreviates large amounts: 1320000000000 -> 1.32T
func humanize(v float64) string {
	units := []struct {
		size   float64
		suffix string
	}{
		{1e12, "T"},
		{1e9, "B"},
		{1e6, "M"},
		{1e3, "K"},
	}
	for _, u := range units {
		if v >= u.size {
			return strconv.FormatFloat(v/u.size, 'f', 2, 64) + u.suffix
		}
	}
	return strconv.FormatFloat(v, 'f', 0, 64)
}
