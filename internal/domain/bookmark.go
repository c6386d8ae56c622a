package domain

import "time"

// BookmarkKind 收藏类型
type BookmarkKind string

const (
	BookmarkMaybe BookmarkKind = "maybe" // 待定
	BookmarkBet   BookmarkKind = "bet"   // 已下注
)

// BookmarkEntry 单场赛事的两个独立标记
type BookmarkEntry struct {
	Maybe bool `json:"maybe"`
	Bet   bool `json:"bet"`
}

// IsZero 两个标记都为 false
func (e BookmarkEntry) IsZero() bool {
	return !e.Maybe && !e.Bet
}

// BookmarkBuckets 按日期分桶的收藏集合
// key 为 YYYYMMDD（赛事开赛时间的本地日历日期），value 为 赛事ID -> 标记
type BookmarkBuckets map[string]map[string]BookmarkEntry

// ParseDateKey 解析 YYYYMMDD 分桶 key
func ParseDateKey(key string) (time.Time, bool) {
	t, err := time.ParseInLocation("20060102", key, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
