package services

import (
	"testing"
	"time"

	"github.com/betbot/matchscreener/internal/domain"
)

func eventAt(id string, start time.Time, state domain.EventState) domain.Event {
	return domain.Event{
		ID:            id,
		StartDatetime: start.Format(time.RFC3339),
		State:         state,
	}
}

func TestEligibilityWindowBoundaries(t *testing.T) {
	now := time.Date(2026, 8, 28, 15, 0, 0, 0, time.UTC)
	w := EligibilityWindow{Lead: time.Hour, Past: 2 * time.Hour}

	catalog := []domain.Event{
		eventAt("in59", now.Add(59*time.Minute), domain.EventStateScheduled),
		eventAt("in61", now.Add(61*time.Minute), domain.EventStateScheduled),
		eventAt("ago119", now.Add(-119*time.Minute), domain.EventStateScheduled),
		eventAt("ago121", now.Add(-121*time.Minute), domain.EventStateScheduled),
	}

	ids := w.EligibleIDs(catalog, now)
	if len(ids) != 2 {
		t.Fatalf("期望两场符合条件, got %v", ids)
	}
	if ids[0] != "in59" || ids[1] != "ago119" {
		t.Fatalf("边界判定错误: %v", ids)
	}
}

func TestEligibilityLiveAlwaysIncluded(t *testing.T) {
	now := time.Date(2026, 8, 28, 15, 0, 0, 0, time.UTC)
	w := EligibilityWindow{Lead: time.Hour, Past: 2 * time.Hour}

	catalog := []domain.Event{
		// 开赛时间远在窗口外，但状态为进行中
		eventAt("live", now.Add(-10*time.Hour), domain.EventStateLive),
		{ID: "live-noparse", StartDatetime: "not-a-time", State: domain.EventStateLive},
	}
	ids := w.EligibleIDs(catalog, now)
	if len(ids) != 2 {
		t.Fatalf("进行中的赛事应始终符合条件, got %v", ids)
	}
}

func TestEligibilityUnparseableStartExcluded(t *testing.T) {
	now := time.Now()
	w := EligibilityWindow{Lead: time.Hour, Past: 2 * time.Hour}

	catalog := []domain.Event{
		{ID: "bad", StartDatetime: "garbage", State: domain.EventStateScheduled},
		{ID: "empty", State: domain.EventStateScheduled},
	}
	if ids := w.EligibleIDs(catalog, now); len(ids) != 0 {
		t.Fatalf("无法解析开赛时间的赛事不应入选: %v", ids)
	}
}

func TestEligibilityPreservesCatalogOrder(t *testing.T) {
	now := time.Date(2026, 8, 28, 15, 0, 0, 0, time.UTC)
	w := EligibilityWindow{Lead: time.Hour, Past: 2 * time.Hour}

	catalog := []domain.Event{
		eventAt("c", now.Add(30*time.Minute), domain.EventStateScheduled),
		eventAt("a", now.Add(-30*time.Minute), domain.EventStateScheduled),
		eventAt("b", now.Add(10*time.Minute), domain.EventStateScheduled),
	}
	ids := w.EligibleIDs(catalog, now)
	if len(ids) != 3 || ids[0] != "c" || ids[1] != "a" || ids[2] != "b" {
		t.Fatalf("应保持目录顺序: %v", ids)
	}
}
