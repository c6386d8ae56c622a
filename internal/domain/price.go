package domain

import (
	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	tenKay  = decimal.NewFromInt(10000)
)

const roundPlaces = 2

// PriceEntry 单个 (市场, 合约) 的最近成交价
// 数据源可能只给出原始成交价（百分比，需要 100/p 转换为十进制赔率），
// 也可能已经算好十进制赔率，两种表示都保留
type PriceEntry struct {
	LastDecimal  *decimal.Decimal // 已换算的十进制赔率（2 位小数）
	LastExecuted *decimal.Decimal // 原始成交价（percent）
}

// Decimal 返回十进制赔率；两种表示都缺失或非法时 ok 为 false
func (p PriceEntry) Decimal() (decimal.Decimal, bool) {
	if p.LastDecimal != nil && p.LastDecimal.IsPositive() {
		return *p.LastDecimal, true
	}
	if p.LastExecuted != nil && p.LastExecuted.IsPositive() {
		return hundred.Div(*p.LastExecuted).Round(roundPlaces), true
	}
	return decimal.Decimal{}, false
}

// QuoteEntry 单个合约的最优买卖报价
// 报价是基点（5000 = 50%），十进制赔率 = 10000/bps
type QuoteEntry struct {
	BestOfferBps     *int64
	BestBidBps       *int64
	BestOfferDecimal *decimal.Decimal
	BestBidDecimal   *decimal.Decimal
}

// BackDecimal 最优买入（back）十进制赔率
func (q QuoteEntry) BackDecimal() (decimal.Decimal, bool) {
	return quoteDecimal(q.BestOfferDecimal, q.BestOfferBps)
}

// LayDecimal 最优卖出（lay）十进制赔率
func (q QuoteEntry) LayDecimal() (decimal.Decimal, bool) {
	return quoteDecimal(q.BestBidDecimal, q.BestBidBps)
}

func quoteDecimal(dec *decimal.Decimal, bps *int64) (decimal.Decimal, bool) {
	if dec != nil && dec.IsPositive() {
		return *dec, true
	}
	if bps != nil && *bps > 0 {
		return tenKay.Div(decimal.NewFromInt(*bps)).Round(roundPlaces), true
	}
	return decimal.Decimal{}, false
}

// PriceMap 市场 -> 合约 -> 成交价 的累积映射
type PriceMap = map[string]map[string]PriceEntry

// QuoteMap 合约 -> 报价 的累积映射
type QuoteMap = map[string]QuoteEntry
