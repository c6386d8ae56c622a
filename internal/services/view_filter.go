package services

import (
	"sort"
	"time"

	"github.com/betbot/matchscreener/internal/domain"
)

// ViewMode 视图过滤模式，按固定顺序循环切换。
type ViewMode string

const (
	ViewAll        ViewMode = "all"        // 全部赛事
	ViewInProgress ViewMode = "inprogress" // 进行中
	ViewBettable   ViewMode = "bettable"   // 未开赛且临近开赛
	ViewBetted     ViewMode = "betted"     // 已标记下注
	ViewStarred    ViewMode = "starred"    // 已标记观察
)

// Next 返回循环切换的下一个模式。
func (m ViewMode) Next() ViewMode {
	switch m {
	case ViewAll:
		return ViewInProgress
	case ViewInProgress:
		return ViewBettable
	case ViewBettable:
		return ViewBetted
	case ViewBetted:
		return ViewStarred
	default:
		return ViewAll
	}
}

// ParseViewMode 把外部输入解析为合法模式，无法识别时退回 all。
func ParseViewMode(s string) ViewMode {
	switch ViewMode(s) {
	case ViewAll, ViewInProgress, ViewBettable, ViewBetted, ViewStarred:
		return ViewMode(s)
	}
	return ViewAll
}

// LeagueAll 联赛筛选的"不过滤"哨兵值。
const LeagueAll = "all"

// FilterInput 视图过滤管线的全部输入。
type FilterInput struct {
	Catalog  []domain.Event
	States   map[string]domain.MatchState
	Bookmark func(ev domain.Event) domain.BookmarkEntry
	Mode     ViewMode
	League   string
	Now      time.Time
	// Bettable 模式下"临近开赛"的时间窗口
	BettableWindow time.Duration
}

// FilterResult 过滤结果：行集合、当前模式下可选的联赛列表、
// 以及可能被重置过的联赛选择。
type FilterResult struct {
	Rows    []domain.Event
	Leagues []string
	League  string
}

// FilterView 执行两级过滤：先按模式筛行，再按联赛筛行。
// 联赛列表从模式筛选后的行集合推导；当此前选中的联赛
// 在新列表中消失时，选择自动重置为 all。
func FilterView(in FilterInput) FilterResult {
	byMode := make([]domain.Event, 0, len(in.Catalog))
	for _, ev := range in.Catalog {
		if matchesMode(in, ev) {
			byMode = append(byMode, ev)
		}
	}

	leagueSet := make(map[string]struct{})
	for _, ev := range byMode {
		if lg := ev.League(); lg != "" {
			leagueSet[lg] = struct{}{}
		}
	}
	leagues := make([]string, 0, len(leagueSet))
	for lg := range leagueSet {
		leagues = append(leagues, lg)
	}
	sort.Strings(leagues)

	league := in.League
	if league == "" {
		league = LeagueAll
	}
	if league != LeagueAll {
		if _, ok := leagueSet[league]; !ok {
			league = LeagueAll
		}
	}

	rows := byMode
	if league != LeagueAll {
		rows = make([]domain.Event, 0, len(byMode))
		for _, ev := range byMode {
			if ev.League() == league {
				rows = append(rows, ev)
			}
		}
	}

	return FilterResult{Rows: rows, Leagues: leagues, League: league}
}

func matchesMode(in FilterInput, ev domain.Event) bool {
	state, hasState := in.States[ev.ID]
	finished := ev.IsEnded() || (hasState && state.Finished())

	switch in.Mode {
	case ViewInProgress:
		if finished {
			return false
		}
		if ev.IsLive() || (hasState && state.InPlay()) {
			return true
		}
		start, ok := ev.StartTime()
		return ok && !start.After(in.Now)
	case ViewBettable:
		if finished || ev.IsLive() {
			return false
		}
		start, ok := ev.StartTime()
		if !ok {
			return false
		}
		return start.After(in.Now) && !start.After(in.Now.Add(in.BettableWindow))
	case ViewBetted:
		return !finished && in.Bookmark != nil && in.Bookmark(ev).Bet
	case ViewStarred:
		return !finished && in.Bookmark != nil && in.Bookmark(ev).Maybe
	default:
		return true
	}
}
