package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestClient(handler http.Handler) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	c := NewClient(Options{BaseURL: srv.URL, Timeout: 2 * time.Second})
	return c, srv
}

func TestFetchEventsParsesWire(t *testing.T) {
	var gotDay atomic.Value
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/events", r.URL.Path)
		gotDay.Store(r.URL.Query().Get("day"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"count": 2,
			"events": [
				{
					"id": 1001,
					"name": "Arsenal v Spurs",
					"home_name": "Arsenal",
					"away_name": "Spurs",
					"start_datetime": "2026-08-28T15:00:00Z",
					"state": "new",
					"full_slug": "/sports/soccer/leagues/premier-league/arsenal-v-spurs",
					"winner_market_id": "  555  ",
					"winner_contract_home_id": 7,
					"over_45_contract_id": null
				},
				{"id": "  ", "name": "dropped"}
			]
		}`))
	}))
	defer srv.Close()

	events, err := c.FetchEvents(context.Background(), "2026-08-28")
	require.NoError(t, err)
	require.Equal(t, "2026-08-28", gotDay.Load())
	// blank ids are dropped
	require.Len(t, events, 1)

	ev := events[0]
	require.Equal(t, "1001", ev.ID)
	require.Equal(t, "Arsenal", ev.HomeName)
	require.Equal(t, "555", ev.WinnerMarketID)
	require.Equal(t, "7", ev.WinnerHomeContractID)
	require.Empty(t, ev.Over45ContractID)
	require.Equal(t, "Premier League", ev.League())
}

func TestFetchEventsCached(t *testing.T) {
	var hits int32
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte(`{"count":0,"events":[]}`))
	}))
	defer srv.Close()

	_, err := c.FetchEvents(context.Background(), "2026-08-28")
	require.NoError(t, err)
	_, err = c.FetchEvents(context.Background(), "2026-08-28")
	require.NoError(t, err)
	require.EqualValues(t, 1, atomic.LoadInt32(&hits), "second call must be served from cache")

	_, err = c.FetchEvents(context.Background(), "2026-08-29")
	require.NoError(t, err)
	require.EqualValues(t, 2, atomic.LoadInt32(&hits), "different day is a different cache key")
}

func TestFetchStates(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/states", r.URL.Path)
		require.Equal(t, "a,b", r.URL.Query().Get("ids"))
		w.Write([]byte(`{
			"count": 1,
			"states": [
				{
					"id": "a",
					"state": "live",
					"match_period": "second_half",
					"match_time": "01:07:30",
					"stoppage_time_announced": "true",
					"scores_current": [2, 1]
				}
			]
		}`))
	}))
	defer srv.Close()

	states, err := c.FetchStates(context.Background(), []string{"b", "a", "b", " "})
	require.NoError(t, err)
	require.Len(t, states, 1)

	st := states["a"]
	require.True(t, st.StoppageAnnounced)
	require.NotNil(t, st.HomeScore)
	require.Equal(t, 2, *st.HomeScore)
	require.Equal(t, "2-1", st.ScoreText())
	// clock_text absent from the wire: recomputed from period + match_time
	require.Equal(t, "67'", st.ClockText)
}

func TestFetchStatesEmptyIDsSkipsRequest(t *testing.T) {
	var hits int32
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	states, err := c.FetchStates(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, states)
	require.Zero(t, atomic.LoadInt32(&hits))
}

func TestFetchPrices(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/odds", r.URL.Path)
		w.Write([]byte(`{
			"count": 1,
			"prices": {
				"m1": {
					"c1": {"last_decimal": "1.85", "last_executed_price": 54.05},
					"c2": {"last_executed_price": 40}
				}
			}
		}`))
	}))
	defer srv.Close()

	prices, err := c.FetchPrices(context.Background(), []string{"m1"}, []string{"c1", "c2"})
	require.NoError(t, err)

	d, ok := prices["m1"]["c1"].Decimal()
	require.True(t, ok)
	require.Equal(t, "1.85", d.StringFixed(2))

	// no pre-converted decimal: 100/40 = 2.50
	d, ok = prices["m1"]["c2"].Decimal()
	require.True(t, ok)
	require.Equal(t, "2.50", d.StringFixed(2))
}

func TestFetchQuotes(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/quotes", r.URL.Path)
		w.Write([]byte(`{
			"count": 1,
			"quotes": {
				"c45": {"best_offer_bps": 4000, "best_bid_bps": 5000}
			}
		}`))
	}))
	defer srv.Close()

	quotes, err := c.FetchQuotes(context.Background(), []string{"m1"}, []string{"c45"})
	require.NoError(t, err)

	back, ok := quotes["c45"].BackDecimal()
	require.True(t, ok)
	require.Equal(t, "2.50", back.StringFixed(2))
	lay, ok := quotes["c45"].LayDecimal()
	require.True(t, ok)
	require.Equal(t, "2.00", lay.StringFixed(2))
}

func TestFetchInsights(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/analytics/match-insights", r.URL.Path)
		w.Write([]byte(`{
			"count": 2,
			"results": [
				{"event_id": "e1", "zero_zero_prob_pct": 7.5, "note": "open game"},
				{"note": "missing id, dropped"}
			]
		}`))
	}))
	defer srv.Close()

	insights, err := c.FetchInsights(context.Background(), []string{"e1"})
	require.NoError(t, err)
	require.Len(t, insights, 1)
	require.NotNil(t, insights["e1"].ZeroZeroProbPct)
	require.InDelta(t, 7.5, *insights["e1"].ZeroZeroProbPct, 0.001)
}

func TestFetchErrorStatus(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := c.FetchEvents(context.Background(), "2026-08-28")
	require.Error(t, err)
	require.Contains(t, err.Error(), "status 500")
}

func TestJoinIDs(t *testing.T) {
	require.Equal(t, "a,b,c", joinIDs([]string{"c", " a ", "b", "a", ""}))
	require.Equal(t, "", joinIDs(nil))
}
