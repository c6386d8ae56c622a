package services

import (
	"time"

	"github.com/betbot/matchscreener/internal/domain"
)

// RowView 单行展示数据：赛事、最新状态与格式化后的行情文本。
type RowView struct {
	Event    domain.Event         `json:"event"`
	State    *domain.MatchState   `json:"state,omitempty"`
	Bookmark domain.BookmarkEntry `json:"bookmark"`
	Alert    bool                 `json:"alert"`
	Insight  *domain.Insight      `json:"insight,omitempty"`

	Clock string `json:"clock"`
	Score string `json:"score"`

	HomePrice  string `json:"home_price"`
	DrawPrice  string `json:"draw_price"`
	AwayPrice  string `json:"away_price"`
	Over45Back string `json:"over45_back"`
	Over45Lay  string `json:"over45_lay"`
}

// Snapshot 引擎当前状态的一致性快照，供 TUI 与 HTTP/WS 层消费。
type Snapshot struct {
	Day         string         `json:"day"`
	RenderState RenderState    `json:"render_state"`
	Error       string         `json:"error,omitempty"`
	Mode        ViewMode       `json:"mode"`
	League      string         `json:"league"`
	Leagues     []string       `json:"leagues"`
	Notice      *RemovalNotice `json:"notice,omitempty"`
	Rows        []RowView      `json:"rows"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Snapshot 在读锁下组装一份快照，过滤管线与行情格式化都在此完成。
func (e *Engine) Snapshot() Snapshot {
	now := time.Now()
	e.mu.RLock()
	defer e.mu.RUnlock()

	res := FilterView(e.filterInputLocked(now))
	rows := make([]RowView, 0, len(res.Rows))
	for _, ev := range res.Rows {
		rows = append(rows, e.buildRowLocked(ev))
	}

	var notice *RemovalNotice
	if p := e.remover.Pending(); p != nil && !now.After(p.ExpiresAt) {
		cp := *p
		notice = &cp
	}

	return Snapshot{
		Day:         e.day,
		RenderState: e.renderState,
		Error:       e.lastError,
		Mode:        e.mode,
		League:      res.League,
		Leagues:     res.Leagues,
		Notice:      notice,
		Rows:        rows,
		UpdatedAt:   e.updatedAt,
	}
}

func (e *Engine) buildRowLocked(ev domain.Event) RowView {
	row := RowView{
		Event:      ev,
		Alert:      e.tracker.Alerted(ev.ID),
		Score:      "-",
		HomePrice:  priceText(e.prices, ev.WinnerMarketID, ev.WinnerHomeContractID),
		DrawPrice:  priceText(e.prices, ev.WinnerMarketID, ev.WinnerDrawContractID),
		AwayPrice:  priceText(e.prices, ev.WinnerMarketID, ev.WinnerAwayContractID),
		Over45Back: quoteBackText(e.quotes, ev.Over45ContractID),
		Over45Lay:  quoteLayText(e.quotes, ev.Over45ContractID),
	}
	if e.bookmarks != nil {
		row.Bookmark = e.bookmarks.Get(ev.DateKey(), ev.ID)
	}
	if st, ok := e.states[ev.ID]; ok {
		cp := st
		row.State = &cp
		row.Clock = st.ClockText
		row.Score = st.ScoreText()
	}
	if ins, ok := e.insights[ev.ID]; ok {
		cp := ins
		row.Insight = &cp
	}
	return row
}

func priceText(prices domain.PriceMap, marketID, contractID string) string {
	if marketID == "" || contractID == "" {
		return "-"
	}
	entry, ok := prices[marketID][contractID]
	if !ok {
		return "-"
	}
	d, ok := entry.Decimal()
	if !ok {
		return "-"
	}
	return d.StringFixed(2)
}

func quoteBackText(quotes domain.QuoteMap, contractID string) string {
	entry, ok := quotes[contractID]
	if !ok {
		return "-"
	}
	d, ok := entry.BackDecimal()
	if !ok {
		return "-"
	}
	return d.StringFixed(2)
}

func quoteLayText(quotes domain.QuoteMap, contractID string) string {
	entry, ok := quotes[contractID]
	if !ok {
		return "-"
	}
	d, ok := entry.LayDecimal()
	if !ok {
		return "-"
	}
	return d.StringFixed(2)
}
