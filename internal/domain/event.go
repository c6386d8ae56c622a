package domain

import (
	"regexp"
	"strings"
	"time"
)

// EventState 赛事生命周期状态（由数据源提供）
type EventState string

const (
	EventStateScheduled EventState = "scheduled"
	EventStateLive      EventState = "live"
	EventStateEnded     EventState = "ended"
)

// ParseEventState 归一化数据源的生命周期状态
// 数据源可能返回 new/upcoming/scheduled/live/ended
func ParseEventState(raw string) EventState {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "live":
		return EventStateLive
	case "ended":
		return EventStateEnded
	default:
		return EventStateScheduled
	}
}

// Event 赛事领域模型
// 每次目录拉取整体替换（除了临时移除覆盖），单个拉取周期内不可变
type Event struct {
	ID            string // 赛事 ID（已归一化为字符串）
	Name          string
	HomeName      string
	AwayName      string
	HomeCode      string
	AwayCode      string
	StartDatetime string // 数据源原始开赛时间（ISO8601，可能为空或无法解析）
	State         EventState
	FullSlug      string // 形如 /sport/football/leagues/italy-serie-a/...
	EventURL      string

	// 市场 ID（可选，数据源解析好的）
	WinnerMarketID       string
	CorrectScoreMarketID string
	OverUnder25MarketID  string
	OverUnder35MarketID  string
	OverUnder45MarketID  string
	OverUnder55MarketID  string
	OverUnder65MarketID  string

	// 合约 ID（可选）
	WinnerHomeContractID string
	WinnerDrawContractID string
	WinnerAwayContractID string
	AnyOtherHomeContract string
	AnyOtherAwayContract string
	AnyOtherDrawContract string
	Over45ContractID     string
}

// StartTime 解析开赛时间，无法解析时 ok 为 false
func (e *Event) StartTime() (time.Time, bool) {
	raw := strings.TrimSpace(e.StartDatetime)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// IsLive 是否进行中
func (e *Event) IsLive() bool {
	return e.State == EventStateLive
}

// IsEnded 是否已结束
func (e *Event) IsEnded() bool {
	return e.State == EventStateEnded
}

// MarketIDs 返回该赛事关联的所有市场 ID（去掉空值）
func (e *Event) MarketIDs() []string {
	ids := []string{
		e.WinnerMarketID,
		e.CorrectScoreMarketID,
		e.OverUnder25MarketID,
		e.OverUnder35MarketID,
		e.OverUnder45MarketID,
		e.OverUnder55MarketID,
		e.OverUnder65MarketID,
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" {
			out = append(out, id)
		}
	}
	return out
}

// ContractIDs 返回该赛事关联的所有合约 ID（去掉空值）
func (e *Event) ContractIDs() []string {
	ids := []string{
		e.WinnerHomeContractID,
		e.WinnerDrawContractID,
		e.WinnerAwayContractID,
		e.AnyOtherHomeContract,
		e.AnyOtherAwayContract,
		e.AnyOtherDrawContract,
		e.Over45ContractID,
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" {
			out = append(out, id)
		}
	}
	return out
}

// DateKey 按本地日历日期生成收藏分桶 key（YYYYMMDD）
// 以赛事开赛时间为准，不是拉取时间；无法解析时返回空串
func (e *Event) DateKey() string {
	t, ok := e.StartTime()
	if !ok {
		return ""
	}
	return t.Local().Format("20060102")
}

var leagueSlugRe = regexp.MustCompile(`/leagues/([^/]+)/`)

// League 从 full_slug 提取联赛名
// /sport/football/leagues/italy-serie-a/... -> "Italy Serie A"
func (e *Event) League() string {
	return LeagueFromSlug(e.FullSlug)
}

// LeagueFromSlug 解析 slug 中的联赛段并把连字符单词转为标题格式
func LeagueFromSlug(fullSlug string) string {
	m := leagueSlugRe.FindStringSubmatch(strings.ToLower(fullSlug))
	if m == nil {
		return ""
	}
	words := strings.Split(m[1], "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// NormalizeID 实体 ID 统一为去空白的字符串比较
// 数据源里数字/字符串混用，不做归一化会导致合并丢失
func NormalizeID(raw string) string {
	return strings.TrimSpace(raw)
}
