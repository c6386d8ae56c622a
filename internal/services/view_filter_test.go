package services

import (
	"testing"
	"time"

	"github.com/betbot/matchscreener/internal/domain"
)

func TestViewModeCycle(t *testing.T) {
	order := []ViewMode{ViewAll, ViewInProgress, ViewBettable, ViewBetted, ViewStarred, ViewAll}
	m := ViewAll
	for i := 1; i < len(order); i++ {
		m = m.Next()
		if m != order[i] {
			t.Fatalf("第 %d 次切换期望 %s, got %s", i, order[i], m)
		}
	}
}

func TestFilterViewBettable(t *testing.T) {
	now := time.Date(2026, 8, 28, 15, 0, 0, 0, time.UTC)
	catalog := []domain.Event{
		eventAt("soon", now.Add(30*time.Minute), domain.EventStateScheduled),
		eventAt("far", now.Add(3*time.Hour), domain.EventStateScheduled),
		eventAt("started", now.Add(-5*time.Minute), domain.EventStateScheduled),
		eventAt("live", now.Add(10*time.Minute), domain.EventStateLive),
		eventAt("ended", now.Add(30*time.Minute), domain.EventStateEnded),
	}
	res := FilterView(FilterInput{
		Catalog:        catalog,
		Mode:           ViewBettable,
		Now:            now,
		BettableWindow: 2 * time.Hour,
	})
	if len(res.Rows) != 1 || res.Rows[0].ID != "soon" {
		t.Fatalf("bettable 只应包含未开赛且临近开赛的场次: %+v", res.Rows)
	}
}

func TestFilterViewInProgress(t *testing.T) {
	now := time.Date(2026, 8, 28, 15, 0, 0, 0, time.UTC)
	catalog := []domain.Event{
		eventAt("live", now.Add(-30*time.Minute), domain.EventStateLive),
		eventAt("kicked", now.Add(-10*time.Minute), domain.EventStateScheduled),
		eventAt("future", now.Add(30*time.Minute), domain.EventStateScheduled),
		eventAt("done", now.Add(-2*time.Hour), domain.EventStateEnded),
	}
	res := FilterView(FilterInput{Catalog: catalog, Mode: ViewInProgress, Now: now})
	if len(res.Rows) != 2 || res.Rows[0].ID != "live" || res.Rows[1].ID != "kicked" {
		t.Fatalf("inprogress 过滤错误: %+v", res.Rows)
	}
}

func TestFilterViewBookmarkModes(t *testing.T) {
	now := time.Date(2026, 8, 28, 15, 0, 0, 0, time.UTC)
	catalog := []domain.Event{
		eventAt("a", now.Add(30*time.Minute), domain.EventStateScheduled),
		eventAt("b", now.Add(40*time.Minute), domain.EventStateScheduled),
		eventAt("c", now.Add(-3*time.Hour), domain.EventStateEnded),
	}
	marks := map[string]domain.BookmarkEntry{
		"a": {Bet: true},
		"b": {Maybe: true},
		"c": {Bet: true, Maybe: true}, // 已结束，两种视图都不显示
	}
	in := FilterInput{
		Catalog: catalog,
		Now:     now,
		Bookmark: func(ev domain.Event) domain.BookmarkEntry {
			return marks[ev.ID]
		},
	}

	in.Mode = ViewBetted
	if res := FilterView(in); len(res.Rows) != 1 || res.Rows[0].ID != "a" {
		t.Fatalf("betted 过滤错误: %+v", res.Rows)
	}
	in.Mode = ViewStarred
	if res := FilterView(in); len(res.Rows) != 1 || res.Rows[0].ID != "b" {
		t.Fatalf("starred 过滤错误: %+v", res.Rows)
	}
}

func TestFilterViewLeagueDerivationAndReset(t *testing.T) {
	now := time.Date(2026, 8, 28, 15, 0, 0, 0, time.UTC)
	premier := eventAt("p1", now.Add(30*time.Minute), domain.EventStateScheduled)
	premier.FullSlug = "/sports/soccer/leagues/premier-league/p1"
	laliga := eventAt("l1", now.Add(-30*time.Minute), domain.EventStateScheduled)
	laliga.FullSlug = "/sports/soccer/leagues/la-liga/l1"

	res := FilterView(FilterInput{
		Catalog: []domain.Event{premier, laliga},
		Mode:    ViewAll,
		League:  "Premier League",
		Now:     now,
	})
	if len(res.Leagues) != 2 || res.Leagues[0] != "La Liga" || res.Leagues[1] != "Premier League" {
		t.Fatalf("联赛列表推导错误: %v", res.Leagues)
	}
	if len(res.Rows) != 1 || res.Rows[0].ID != "p1" {
		t.Fatalf("按联赛过滤错误: %+v", res.Rows)
	}

	// 模式筛掉所选联赛的全部场次后，选择重置为 all
	res = FilterView(FilterInput{
		Catalog: []domain.Event{premier, laliga},
		Mode:    ViewInProgress,
		League:  "Premier League",
		Now:     now,
	})
	if res.League != LeagueAll {
		t.Fatalf("联赛消失后应重置为 all, got %s", res.League)
	}
	if len(res.Rows) != 1 || res.Rows[0].ID != "l1" {
		t.Fatalf("重置后应展示全部行: %+v", res.Rows)
	}
}
