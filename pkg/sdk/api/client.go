package api

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/betbot/matchscreener/internal/domain"
	"github.com/betbot/matchscreener/pkg/cache"
	sdkhttp "github.com/betbot/matchscreener/pkg/sdk/http"
)

// Default response-cache TTLs, matching the backend's per-endpoint Cache-Control.
const (
	eventsTTL   = 60 * time.Second
	statesTTL   = 15 * time.Second
	pricesTTL   = 5 * time.Second
	quotesTTL   = 2 * time.Second
	insightsTTL = 300 * time.Second
)

// Client talks to the MatchScreener backend feed.
type Client struct {
	http *sdkhttp.Client

	eventsCache   *cache.TTLCache[string, []domain.Event]
	statesCache   *cache.TTLCache[string, map[string]domain.MatchState]
	pricesCache   *cache.TTLCache[string, domain.PriceMap]
	quotesCache   *cache.TTLCache[string, domain.QuoteMap]
	insightsCache *cache.TTLCache[string, map[string]domain.Insight]
}

type Options struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

func NewClient(opt Options) *Client {
	return &Client{
		http: sdkhttp.NewClient(sdkhttp.Options{
			BaseURL: opt.BaseURL,
			Token:   opt.Token,
			Timeout: opt.Timeout,
		}),
		eventsCache:   cache.NewTTLCache[string, []domain.Event](eventsTTL),
		statesCache:   cache.NewTTLCache[string, map[string]domain.MatchState](statesTTL),
		pricesCache:   cache.NewTTLCache[string, domain.PriceMap](pricesTTL),
		quotesCache:   cache.NewTTLCache[string, domain.QuoteMap](quotesTTL),
		insightsCache: cache.NewTTLCache[string, map[string]domain.Insight](insightsTTL),
	}
}

// FetchEvents loads the event catalog for a day ("" = today, else YYYY-MM-DD).
func (c *Client) FetchEvents(ctx context.Context, day string) ([]domain.Event, error) {
	key := "day:" + day
	if cached, ok := c.eventsCache.Get(key); ok {
		return cached, nil
	}

	var resp eventsResponse
	if err := c.http.Get(ctx, "/api/events", map[string]string{"day": day}, &resp); err != nil {
		return nil, err
	}

	events := make([]domain.Event, 0, len(resp.Events))
	for _, w := range resp.Events {
		id := domain.NormalizeID(w.ID.String())
		if id == "" {
			continue
		}
		events = append(events, w.toDomain(id))
	}

	c.eventsCache.Set(key, events, 0)
	return events, nil
}

// FetchStates loads match states for the given event ids, keyed by event id.
// An event missing from the response means "no current report".
func (c *Client) FetchStates(ctx context.Context, ids []string) (map[string]domain.MatchState, error) {
	joined := joinIDs(ids)
	if joined == "" {
		return map[string]domain.MatchState{}, nil
	}
	if cached, ok := c.statesCache.Get(joined); ok {
		return cached, nil
	}

	var resp statesResponse
	if err := c.http.Get(ctx, "/api/states", map[string]string{"ids": joined}, &resp); err != nil {
		return nil, err
	}

	out := make(map[string]domain.MatchState, len(resp.States))
	for _, w := range resp.States {
		id := domain.NormalizeID(w.ID.String())
		if id == "" {
			continue
		}
		out[id] = w.toDomain(id)
	}

	c.statesCache.Set(joined, out, 0)
	return out, nil
}

// FetchPrices loads last executed prices for the given market ids, optionally
// filtered to contract ids. The result is a partial snapshot: markets or
// contracts without a recent trade are simply absent.
func (c *Client) FetchPrices(ctx context.Context, marketIDs, contractIDs []string) (domain.PriceMap, error) {
	mids := joinIDs(marketIDs)
	if mids == "" {
		return domain.PriceMap{}, nil
	}
	cids := joinIDs(contractIDs)
	key := "m:" + mids + "|c:" + cids
	if cached, ok := c.pricesCache.Get(key); ok {
		return cached, nil
	}

	var resp pricesResponse
	params := map[string]string{"market_ids": mids, "contract_ids": cids}
	if err := c.http.Get(ctx, "/api/odds", params, &resp); err != nil {
		return nil, err
	}

	out := make(domain.PriceMap, len(resp.Prices))
	for mid, byContract := range resp.Prices {
		mid = domain.NormalizeID(mid)
		if mid == "" {
			continue
		}
		entries := make(map[string]domain.PriceEntry, len(byContract))
		for cid, w := range byContract {
			cid = domain.NormalizeID(cid)
			if cid == "" {
				continue
			}
			entries[cid] = domain.PriceEntry{
				LastDecimal:  flexDecimal(w.LastDecimal),
				LastExecuted: flexDecimal(w.LastExecutedPrice),
			}
		}
		out[mid] = entries
	}

	c.pricesCache.Set(key, out, 0)
	return out, nil
}

// FetchQuotes loads best bid/offer for the given markets, keyed by contract id.
func (c *Client) FetchQuotes(ctx context.Context, marketIDs, contractIDs []string) (domain.QuoteMap, error) {
	mids := joinIDs(marketIDs)
	cids := joinIDs(contractIDs)
	if mids == "" || cids == "" {
		return domain.QuoteMap{}, nil
	}
	key := "m:" + mids + "|c:" + cids
	if cached, ok := c.quotesCache.Get(key); ok {
		return cached, nil
	}

	var resp quotesResponse
	params := map[string]string{"market_ids": mids, "contract_ids": cids}
	if err := c.http.Get(ctx, "/api/quotes", params, &resp); err != nil {
		return nil, err
	}

	out := make(domain.QuoteMap, len(resp.Quotes))
	for cid, w := range resp.Quotes {
		cid = domain.NormalizeID(cid)
		if cid == "" {
			continue
		}
		out[cid] = domain.QuoteEntry{
			BestOfferBps:     w.BestOfferBps,
			BestBidBps:       w.BestBidBps,
			BestOfferDecimal: flexDecimal(w.BestOfferDecimal),
			BestBidDecimal:   flexDecimal(w.BestBidDecimal),
		}
	}

	c.quotesCache.Set(key, out, 0)
	return out, nil
}

// FetchInsights loads per-match insights for the given event ids.
func (c *Client) FetchInsights(ctx context.Context, ids []string) (map[string]domain.Insight, error) {
	joined := joinIDs(ids)
	if joined == "" {
		return map[string]domain.Insight{}, nil
	}
	if cached, ok := c.insightsCache.Get(joined); ok {
		return cached, nil
	}

	var resp insightsResponse
	if err := c.http.Get(ctx, "/api/analytics/match-insights", map[string]string{"ids": joined}, &resp); err != nil {
		return nil, err
	}

	out := make(map[string]domain.Insight, len(resp.Results))
	for _, raw := range resp.Results {
		var ins domain.Insight
		if err := json.Unmarshal(raw, &ins); err != nil {
			continue
		}
		ins.EventID = domain.NormalizeID(ins.EventID)
		if ins.EventID == "" {
			continue
		}
		out[ins.EventID] = ins
	}

	c.insightsCache.Set(joined, out, 0)
	return out, nil
}

func (w wireEvent) toDomain(id string) domain.Event {
	home := w.HomeName
	if home == "" {
		home = w.Home
	}
	away := w.AwayName
	if away == "" {
		away = w.Away
	}
	return domain.Event{
		ID:            id,
		Name:          w.Name,
		HomeName:      strings.TrimSpace(home),
		AwayName:      strings.TrimSpace(away),
		HomeCode:      w.HomeCode,
		AwayCode:      w.AwayCode,
		StartDatetime: w.StartDatetime,
		State:         domain.ParseEventState(w.State),
		FullSlug:      w.FullSlug,
		EventURL:      w.EventURL,

		WinnerMarketID:       domain.NormalizeID(w.WinnerMarketID.String()),
		CorrectScoreMarketID: domain.NormalizeID(w.CorrectScoreMarketID.String()),
		OverUnder25MarketID:  domain.NormalizeID(w.OverUnder25MarketID.String()),
		OverUnder35MarketID:  domain.NormalizeID(w.OverUnder35MarketID.String()),
		OverUnder45MarketID:  domain.NormalizeID(w.OverUnder45MarketID.String()),
		OverUnder55MarketID:  domain.NormalizeID(w.OverUnder55MarketID.String()),
		OverUnder65MarketID:  domain.NormalizeID(w.OverUnder65MarketID.String()),

		WinnerHomeContractID: domain.NormalizeID(w.WinnerHomeContractID.String()),
		WinnerDrawContractID: domain.NormalizeID(w.WinnerDrawContractID.String()),
		WinnerAwayContractID: domain.NormalizeID(w.WinnerAwayContractID.String()),
		AnyOtherHomeContract: domain.NormalizeID(w.AnyOtherHomeContract.String()),
		AnyOtherAwayContract: domain.NormalizeID(w.AnyOtherAwayContract.String()),
		AnyOtherDrawContract: domain.NormalizeID(w.AnyOtherDrawContract.String()),
		Over45ContractID:     domain.NormalizeID(w.Over45ContractID.String()),
	}
}

func (w wireState) toDomain(id string) domain.MatchState {
	s := domain.MatchState{
		EventID:           id,
		State:             domain.ParseEventState(w.State),
		MatchPeriod:       w.MatchPeriod,
		MatchTime:         w.MatchTime,
		StoppageTime:      w.StoppageTime,
		StoppageAnnounced: bool(w.StoppageAnnounced),
		Stopped:           bool(w.Stopped),
		ClockMinute:       w.ClockMinute,
		ClockText:         w.ClockText,
		StoppageMinutes:   w.StoppageMinutes,
	}
	if len(w.ScoresCurrent) >= 2 {
		h, a := w.ScoresCurrent[0], w.ScoresCurrent[1]
		s.HomeScore, s.AwayScore = &h, &a
	}
	// backend usually pre-formats the clock; recompute when it did not
	if s.ClockText == "" {
		s.ClockMinute, s.ClockText, s.StoppageMinutes = domain.Clock(
			w.MatchPeriod, w.MatchTime, w.StoppageTime, bool(w.StoppageAnnounced))
	}
	return s
}

func flexDecimal(f FlexFloat) *decimal.Decimal {
	if !f.Ok {
		return nil
	}
	d := decimal.NewFromFloat(f.Value)
	return &d
}

// joinIDs normalizes, deduplicates and sorts ids into a stable comma-joined
// string, usable both as a query parameter and as a cache key.
func joinIDs(ids []string) string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = domain.NormalizeID(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return strings.Join(out, ",")
}
