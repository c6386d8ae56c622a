package services

import (
	"sync"
	"time"

	"github.com/betbot/matchscreener/internal/domain"
)

// StalenessTracker 跟踪每场赛事最近一次出现行情数据的时间。
// 曾经有数据、之后整轮响应中消失的赛事会被标记告警；
// 从未出现过数据的赛事永远不会告警。数据恢复时告警自动清除。
type StalenessTracker struct {
	mu       sync.Mutex
	lastSeen map[string]time.Time
	alerts   map[string]bool
}

func NewStalenessTracker() *StalenessTracker {
	return &StalenessTracker{
		lastSeen: make(map[string]time.Time),
		alerts:   make(map[string]bool),
	}
}

// ObservePrices 用一轮价格响应更新跟踪状态。
// 只要赛事任一市场出现在响应中即视为有数据。
func (t *StalenessTracker) ObservePrices(now time.Time, catalog []domain.Event, prices domain.PriceMap) {
	t.observe(now, catalog, func(ev domain.Event) bool {
		for _, marketID := range ev.MarketIDs() {
			if len(prices[marketID]) > 0 {
				return true
			}
		}
		return false
	})
}

// ObserveQuotes 用一轮报价响应更新跟踪状态。
func (t *StalenessTracker) ObserveQuotes(now time.Time, catalog []domain.Event, quotes domain.QuoteMap) {
	t.observe(now, catalog, func(ev domain.Event) bool {
		for _, id := range ev.MarketIDs() {
			if _, ok := quotes[id]; ok {
				return true
			}
		}
		for _, id := range ev.ContractIDs() {
			if _, ok := quotes[id]; ok {
				return true
			}
		}
		return false
	})
}

// observe 对整个目录做一次原子更新：时间戳刷新与告警翻转在同一把锁内完成，
// 重复应用同一轮响应不会改变结果。
func (t *StalenessTracker) observe(now time.Time, catalog []domain.Event, has func(domain.Event) bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, ev := range catalog {
		if has(ev) {
			t.lastSeen[ev.ID] = now
			delete(t.alerts, ev.ID)
			continue
		}
		if _, seen := t.lastSeen[ev.ID]; seen {
			t.alerts[ev.ID] = true
		}
	}
}

// Alerted 返回指定赛事是否处于数据缺失告警态。
func (t *StalenessTracker) Alerted(eventID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.alerts[eventID]
}

// LastSeen 返回最近一次出现数据的时间，从未出现过返回零值。
func (t *StalenessTracker) LastSeen(eventID string) (time.Time, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	ts, ok := t.lastSeen[eventID]
	return ts, ok
}

// Reset 清空全部状态，切换日期重建目录时使用。
func (t *StalenessTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastSeen = make(map[string]time.Time)
	t.alerts = make(map[string]bool)
}
