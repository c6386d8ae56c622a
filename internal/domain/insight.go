package domain

import "encoding/json"

// Insight 后端分析服务算出的赛前洞察
// 计算逻辑在后端，这里只透传展示需要的字段，明细块保留原始 JSON
type Insight struct {
	EventID         string          `json:"event_id"`
	Score           *int            `json:"score"`              // 0..100 推荐分
	ZeroZeroProbPct *float64        `json:"zero_zero_prob_pct"` // 0-0 概率（百分比）
	LeagueDiv       string          `json:"league_div"`
	Home            json.RawMessage `json:"home"`
	Away            json.RawMessage `json:"away"`
	H2H             json.RawMessage `json:"h2h"`
	Note            string          `json:"note"`
}
