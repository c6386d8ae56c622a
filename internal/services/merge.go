package services

import "github.com/betbot/matchscreener/internal/domain"

// MergePrices 将新一轮价格数据合并进既有快照。
// 空响应直接返回原引用，不做任何分配；非空响应逐个市场合并，
// 新数据覆盖同名合约，旧合约保留，绝不删除已有键。
func MergePrices(prev, incoming domain.PriceMap) domain.PriceMap {
	if len(incoming) == 0 {
		return prev
	}
	out := make(domain.PriceMap, len(prev)+len(incoming))
	for marketID, contracts := range prev {
		out[marketID] = contracts
	}
	for marketID, contracts := range incoming {
		merged := make(map[string]domain.PriceEntry, len(prev[marketID])+len(contracts))
		for contractID, entry := range prev[marketID] {
			merged[contractID] = entry
		}
		for contractID, entry := range contracts {
			merged[contractID] = entry
		}
		out[marketID] = merged
	}
	return out
}

// MergeQuotes 合并盘口报价快照，语义与 MergePrices 相同，只有一层键。
func MergeQuotes(prev, incoming domain.QuoteMap) domain.QuoteMap {
	if len(incoming) == 0 {
		return prev
	}
	out := make(domain.QuoteMap, len(prev)+len(incoming))
	for id, entry := range prev {
		out[id] = entry
	}
	for id, entry := range incoming {
		out[id] = entry
	}
	return out
}

// MergeInsights 合并赛事洞察数据，后到覆盖先到。
func MergeInsights(prev, incoming map[string]domain.Insight) map[string]domain.Insight {
	if len(incoming) == 0 {
		return prev
	}
	out := make(map[string]domain.Insight, len(prev)+len(incoming))
	for id, ins := range prev {
		out[id] = ins
	}
	for id, ins := range incoming {
		out[id] = ins
	}
	return out
}
