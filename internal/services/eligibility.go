package services

import (
	"time"

	"github.com/betbot/matchscreener/internal/domain"
)

// EligibilityWindow 根据赛事状态与开赛时间判定哪些赛事需要进入轮询目标集合。
// 进行中的赛事永远符合条件；未开赛/已结束的赛事只在
// [开赛前 lead, 开赛后 past] 的时间窗口内符合条件。
type EligibilityWindow struct {
	Lead time.Duration // 开赛前多久开始轮询
	Past time.Duration // 开赛后多久停止轮询
}

// EligibleEvents 返回符合条件的赛事，保持目录原有顺序。
// 开赛时间无法解析的赛事视为不符合条件（进行中的除外）。
func (w EligibilityWindow) EligibleEvents(catalog []domain.Event, now time.Time) []domain.Event {
	out := make([]domain.Event, 0, len(catalog))
	for _, ev := range catalog {
		if w.eligible(ev, now) {
			out = append(out, ev)
		}
	}
	return out
}

// EligibleIDs 返回符合条件的赛事 ID，顺序与目录一致。
func (w EligibilityWindow) EligibleIDs(catalog []domain.Event, now time.Time) []string {
	events := w.EligibleEvents(catalog, now)
	ids := make([]string, 0, len(events))
	for _, ev := range events {
		ids = append(ids, ev.ID)
	}
	return ids
}

func (w EligibilityWindow) eligible(ev domain.Event, now time.Time) bool {
	if ev.IsLive() {
		return true
	}
	start, ok := ev.StartTime()
	if !ok {
		return false
	}
	if now.Before(start.Add(-w.Lead)) {
		return false
	}
	if now.After(start.Add(w.Past)) {
		return false
	}
	return true
}
