package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestPriceEntryDecimalPrefersConverted(t *testing.T) {
	conv := decimal.NewFromFloat(1.85)
	raw := decimal.NewFromFloat(54.05)
	entry := PriceEntry{LastDecimal: &conv, LastExecuted: &raw}
	d, ok := entry.Decimal()
	if !ok || d.StringFixed(2) != "1.85" {
		t.Fatalf("应优先使用已换算赔率: %v %s", ok, d)
	}
}

func TestPriceEntryDecimalFromExecuted(t *testing.T) {
	// 原始成交价 40% -> 100/40 = 2.50
	raw := decimal.NewFromInt(40)
	entry := PriceEntry{LastExecuted: &raw}
	d, ok := entry.Decimal()
	if !ok || d.StringFixed(2) != "2.50" {
		t.Fatalf("100/p 换算错误: %v %s", ok, d)
	}

	// 除不尽时保留两位小数：100/30 -> 3.33
	raw = decimal.NewFromInt(30)
	entry = PriceEntry{LastExecuted: &raw}
	d, _ = entry.Decimal()
	if d.StringFixed(2) != "3.33" {
		t.Fatalf("舍入错误: %s", d)
	}
}

func TestPriceEntryDecimalMissing(t *testing.T) {
	if _, ok := (PriceEntry{}).Decimal(); ok {
		t.Fatalf("两种表示都缺失时应返回 false")
	}
	zero := decimal.Zero
	if _, ok := (PriceEntry{LastExecuted: &zero}).Decimal(); ok {
		t.Fatalf("零价格不应换算")
	}
}

func TestQuoteDecimalFromBps(t *testing.T) {
	offer := int64(4000) // 10000/4000 = 2.50
	bid := int64(5000)   // 10000/5000 = 2.00
	q := QuoteEntry{BestOfferBps: &offer, BestBidBps: &bid}

	if d, ok := q.BackDecimal(); !ok || d.StringFixed(2) != "2.50" {
		t.Fatalf("back 换算错误: %v %s", ok, d)
	}
	if d, ok := q.LayDecimal(); !ok || d.StringFixed(2) != "2.00" {
		t.Fatalf("lay 换算错误: %v %s", ok, d)
	}
}

func TestQuoteDecimalPrefersConverted(t *testing.T) {
	conv := decimal.NewFromFloat(3.15)
	bps := int64(4000)
	q := QuoteEntry{BestOfferDecimal: &conv, BestOfferBps: &bps}
	if d, ok := q.BackDecimal(); !ok || d.StringFixed(2) != "3.15" {
		t.Fatalf("应优先使用已换算报价: %v %s", ok, d)
	}
}

func TestQuoteDecimalMissing(t *testing.T) {
	if _, ok := (QuoteEntry{}).BackDecimal(); ok {
		t.Fatalf("缺失报价应返回 false")
	}
	neg := int64(-100)
	if _, ok := (QuoteEntry{BestBidBps: &neg}).LayDecimal(); ok {
		t.Fatalf("非法基点不应换算")
	}
}
