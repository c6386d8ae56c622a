package services

import "sync"

// VisibilityGate 记录哪些赛事曾经进入过可视区域。
// 每个赛事只触发一次回调，用来驱动洞察数据的惰性拉取；
// 离开可视区域不会重置，同一赛事不会重复拉取。
type VisibilityGate struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewVisibilityGate() *VisibilityGate {
	return &VisibilityGate{seen: make(map[string]struct{})}
}

// Observe 标记一批赛事进入可视区域，返回其中首次出现的 ID。
func (g *VisibilityGate) Observe(ids ...string) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	fresh := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := g.seen[id]; ok {
			continue
		}
		g.seen[id] = struct{}{}
		fresh = append(fresh, id)
	}
	return fresh
}

// Seen 返回赛事是否曾经可视。
func (g *VisibilityGate) Seen(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.seen[id]
	return ok
}

// Reset 清空记录，切换日期重建目录时使用。
func (g *VisibilityGate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seen = make(map[string]struct{})
}
