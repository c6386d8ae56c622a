package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/betbot/matchscreener/internal/domain"
)

func TestStalenessAlertOnRegression(t *testing.T) {
	tr := NewStalenessTracker()
	ev := domain.Event{ID: "e1", WinnerMarketID: "m1"}
	catalog := []domain.Event{ev}
	d := decimal.NewFromFloat(2.5)
	withData := domain.PriceMap{"m1": {"c1": {LastDecimal: &d}}}

	t0 := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	// 第一轮有数据：记录时间戳，无告警
	tr.ObservePrices(t0, catalog, withData)
	if tr.Alerted("e1") {
		t.Fatalf("有数据时不应告警")
	}
	if ts, ok := tr.LastSeen("e1"); !ok || !ts.Equal(t0) {
		t.Fatalf("时间戳未记录: %v %v", ts, ok)
	}

	// 第二轮数据消失：触发告警
	tr.ObservePrices(t0.Add(10*time.Second), catalog, domain.PriceMap{})
	if !tr.Alerted("e1") {
		t.Fatalf("数据消失应触发告警")
	}

	// 第三轮数据恢复：告警清除，时间戳更新
	t2 := t0.Add(20 * time.Second)
	tr.ObservePrices(t2, catalog, withData)
	if tr.Alerted("e1") {
		t.Fatalf("数据恢复后告警应清除")
	}
	if ts, _ := tr.LastSeen("e1"); !ts.Equal(t2) {
		t.Fatalf("时间戳应更新: %v", ts)
	}
}

func TestStalenessNeverSeenNeverAlerts(t *testing.T) {
	tr := NewStalenessTracker()
	catalog := []domain.Event{{ID: "e1", WinnerMarketID: "m1"}}

	now := time.Now()
	for i := 0; i < 3; i++ {
		tr.ObservePrices(now, catalog, domain.PriceMap{})
		now = now.Add(10 * time.Second)
	}
	if tr.Alerted("e1") {
		t.Fatalf("从未有过数据的赛事不应告警")
	}
}

func TestStalenessIdempotentObserve(t *testing.T) {
	tr := NewStalenessTracker()
	catalog := []domain.Event{{ID: "e1", WinnerMarketID: "m1"}}
	d := decimal.NewFromFloat(1.9)
	withData := domain.PriceMap{"m1": {"c1": {LastDecimal: &d}}}
	now := time.Now()

	tr.ObservePrices(now, catalog, withData)
	tr.ObservePrices(now.Add(time.Second), catalog, domain.PriceMap{})
	alerted := tr.Alerted("e1")
	// 同一轮响应重复应用不改变结果
	tr.ObservePrices(now.Add(time.Second), catalog, domain.PriceMap{})
	if tr.Alerted("e1") != alerted {
		t.Fatalf("重复应用改变了告警状态")
	}
}

func TestStalenessObserveQuotesByContract(t *testing.T) {
	tr := NewStalenessTracker()
	ev := domain.Event{ID: "e1", Over45ContractID: "c45"}
	catalog := []domain.Event{ev}
	bps := int64(5000)
	quotes := domain.QuoteMap{"c45": {BestOfferBps: &bps}}
	now := time.Now()

	tr.ObserveQuotes(now, catalog, quotes)
	if _, ok := tr.LastSeen("e1"); !ok {
		t.Fatalf("合约级报价也应刷新时间戳")
	}
	tr.ObserveQuotes(now.Add(time.Second), catalog, domain.QuoteMap{})
	if !tr.Alerted("e1") {
		t.Fatalf("报价整体消失应告警")
	}
}
