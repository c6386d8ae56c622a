package services

import (
	"reflect"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/betbot/matchscreener/internal/domain"
)

func dec(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func TestMergePricesEmptyIncomingKeepsReference(t *testing.T) {
	prev := domain.PriceMap{
		"m1": {"c1": {LastDecimal: dec("2.50")}},
	}
	got := MergePrices(prev, nil)
	if reflect.ValueOf(got).Pointer() != reflect.ValueOf(prev).Pointer() {
		t.Fatalf("空响应必须返回原引用")
	}
	got = MergePrices(prev, domain.PriceMap{})
	if reflect.ValueOf(got).Pointer() != reflect.ValueOf(prev).Pointer() {
		t.Fatalf("空 map 响应必须返回原引用")
	}
}

func TestMergePricesPreservesMissingKeys(t *testing.T) {
	prev := domain.PriceMap{
		"m1": {"c1": {LastDecimal: dec("2.50")}, "c2": {LastDecimal: dec("3.10")}},
		"m2": {"c3": {LastDecimal: dec("1.80")}},
	}
	incoming := domain.PriceMap{
		"m1": {"c1": {LastDecimal: dec("2.60")}},
	}
	got := MergePrices(prev, incoming)

	// 新值覆盖
	if d, _ := got["m1"]["c1"].Decimal(); d.StringFixed(2) != "2.60" {
		t.Fatalf("c1 应被新值覆盖, got %s", d)
	}
	// 响应缺席的旧合约保留
	if d, _ := got["m1"]["c2"].Decimal(); d.StringFixed(2) != "3.10" {
		t.Fatalf("c2 不应丢失, got %s", d)
	}
	// 响应缺席的旧市场保留
	if d, _ := got["m2"]["c3"].Decimal(); d.StringFixed(2) != "1.80" {
		t.Fatalf("m2 不应丢失, got %s", d)
	}
	// 原快照不被修改
	if d, _ := prev["m1"]["c1"].Decimal(); d.StringFixed(2) != "2.50" {
		t.Fatalf("合并不得改写旧快照, got %s", d)
	}
}

func TestMergePricesNewMarket(t *testing.T) {
	prev := domain.PriceMap{}
	incoming := domain.PriceMap{"m9": {"c9": {LastDecimal: dec("4.00")}}}
	got := MergePrices(prev, incoming)
	if _, ok := got["m9"]["c9"]; !ok {
		t.Fatalf("新市场应被创建")
	}
}

func TestMergeQuotes(t *testing.T) {
	bps := func(v int64) *int64 { return &v }
	prev := domain.QuoteMap{
		"c1": {BestOfferBps: bps(4000)},
		"c2": {BestOfferBps: bps(5000)},
	}
	incoming := domain.QuoteMap{
		"c1": {BestOfferBps: bps(4200)},
	}
	got := MergeQuotes(prev, incoming)
	if d, _ := got["c1"].BackDecimal(); d.StringFixed(2) != "2.38" {
		t.Fatalf("c1 应更新为 10000/4200, got %s", d.StringFixed(2))
	}
	if _, ok := got["c2"]; !ok {
		t.Fatalf("c2 不应丢失")
	}
	if got2 := MergeQuotes(prev, nil); reflect.ValueOf(got2).Pointer() != reflect.ValueOf(prev).Pointer() {
		t.Fatalf("空响应必须返回原引用")
	}
}
