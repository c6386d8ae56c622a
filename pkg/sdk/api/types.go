package api

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// FlexString decodes JSON values that may arrive as string, number or null.
// The feed mixes numeric and string identifiers; everything is normalized to
// a trimmed string so map keys always compare equal.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(strings.TrimSpace(s))
		return nil
	}
	// bare number (or other scalar): keep the literal text
	*f = FlexString(strings.TrimSpace(string(data)))
	return nil
}

func (f FlexString) String() string { return string(f) }

// FlexBool decodes booleans that may arrive as bool or string ("true", "1", "yes").
type FlexBool bool

func (f *FlexBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = false
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true", "1", "yes":
			*f = true
		default:
			*f = false
		}
		return nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err != nil {
		return err
	}
	*f = FlexBool(b)
	return nil
}

// FlexFloat decodes numbers that may arrive as number, numeric string or null.
// nil pointer semantics are preserved through the Value/Ok pair.
type FlexFloat struct {
	Value float64
	Ok    bool
}

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		f.Ok = false
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			f.Ok = false
			return nil
		}
		f.Value, f.Ok = v, true
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	f.Value, f.Ok = v, true
	return nil
}

// wireEvent mirrors one element of GET /api/events.
type wireEvent struct {
	ID            FlexString `json:"id"`
	Name          string     `json:"name"`
	Home          string     `json:"home"`
	Away          string     `json:"away"`
	HomeName      string     `json:"home_name"`
	AwayName      string     `json:"away_name"`
	HomeCode      string     `json:"home_code"`
	AwayCode      string     `json:"away_code"`
	StartDatetime string     `json:"start_datetime"`
	State         string     `json:"state"`
	FullSlug      string     `json:"full_slug"`
	EventURL      string     `json:"event_url"`

	WinnerMarketID       FlexString `json:"winner_market_id"`
	CorrectScoreMarketID FlexString `json:"correct_score_market_id"`
	OverUnder25MarketID  FlexString `json:"over_under_25_market_id"`
	OverUnder35MarketID  FlexString `json:"over_under_35_market_id"`
	OverUnder45MarketID  FlexString `json:"over_under_45_market_id"`
	OverUnder55MarketID  FlexString `json:"over_under_55_market_id"`
	OverUnder65MarketID  FlexString `json:"over_under_65_market_id"`

	WinnerHomeContractID FlexString `json:"winner_contract_home_id"`
	WinnerDrawContractID FlexString `json:"winner_contract_draw_id"`
	WinnerAwayContractID FlexString `json:"winner_contract_away_id"`
	AnyOtherHomeContract FlexString `json:"correct_score_any_other_home_win_contract_id"`
	AnyOtherAwayContract FlexString `json:"correct_score_any_other_away_win_contract_id"`
	AnyOtherDrawContract FlexString `json:"correct_score_any_other_draw_contract_id"`
	Over45ContractID     FlexString `json:"over_45_contract_id"`
}

type eventsResponse struct {
	Count  int         `json:"count"`
	Events []wireEvent `json:"events"`
}

// wireState mirrors one element of GET /api/states.
type wireState struct {
	ID                FlexString `json:"id"`
	State             string     `json:"state"`
	MatchPeriod       string     `json:"match_period"`
	MatchTime         string     `json:"match_time"`
	StoppageTime      string     `json:"stoppage_time"`
	StoppageAnnounced FlexBool   `json:"stoppage_time_announced"`
	Stopped           FlexBool   `json:"stopped"`
	ScoresCurrent     []int      `json:"scores_current"`
	ClockMinute       *int       `json:"clock_minute"`
	ClockText         string     `json:"clock_text"`
	StoppageMinutes   *int       `json:"stoppage_minutes"`
}

type statesResponse struct {
	Count  int         `json:"count"`
	States []wireState `json:"states"`
}

// wirePrice mirrors one price entry of GET /api/odds.
type wirePrice struct {
	LastDecimal       FlexFloat `json:"last_decimal"`
	LastExecutedPrice FlexFloat `json:"last_executed_price"`
}

type pricesResponse struct {
	Count  int                             `json:"count"`
	Prices map[string]map[string]wirePrice `json:"prices"`
}

// wireQuote mirrors one quote entry of GET /api/quotes.
type wireQuote struct {
	BestOfferBps     *int64    `json:"best_offer_bps"`
	BestOfferDecimal FlexFloat `json:"best_offer_decimal"`
	BestBidBps       *int64    `json:"best_bid_bps"`
	BestBidDecimal   FlexFloat `json:"best_bid_decimal"`
}

type quotesResponse struct {
	Count  int                  `json:"count"`
	Quotes map[string]wireQuote `json:"quotes"`
}

type insightsResponse struct {
	Count   int               `json:"count"`
	Results []json.RawMessage `json:"results"`
}
