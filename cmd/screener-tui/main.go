package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/betbot/matchscreener/internal/domain"
	"github.com/betbot/matchscreener/internal/services"
	"github.com/betbot/matchscreener/pkg/config"
	"github.com/betbot/matchscreener/pkg/logger"
	"github.com/betbot/matchscreener/pkg/persistence"
	"github.com/betbot/matchscreener/pkg/sdk/api"
)

var (
	// 样式定义
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	liveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("2")) // 绿色：进行中

	alertStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("1")). // 红色：数据缺失告警
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("7"))

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("3")). // 黄色：撤销提示
			Bold(true)

	markStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5"))
)

type snapshotMsg services.Snapshot

type tickMsg time.Time

type model struct {
	engine *services.Engine
	snap   services.Snapshot
	cursor int
	width  int
	height int
	now    time.Time
}

func initialModel(engine *services.Engine) model {
	return model{engine: engine, now: time.Now()}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(waitChangeCmd(m.engine), tickCmd())
}

// waitChangeCmd 等待引擎状态变更后取一份新快照
func waitChangeCmd(engine *services.Engine) tea.Cmd {
	return func() tea.Msg {
		<-engine.Changed()
		return snapshotMsg(engine.Snapshot())
	}
}

// tickCmd 每秒刷新一次，驱动时钟与撤销倒计时显示
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case snapshotMsg:
		m.snap = services.Snapshot(msg)
		m.clampCursor()
		m.reportVisible()
		return m, waitChangeCmd(m.engine)

	case tickMsg:
		m.now = time.Time(msg)
		m.snap = m.engine.Snapshot()
		m.clampCursor()
		return m, tickCmd()

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
			m.reportVisible()
		case "down", "j":
			if m.cursor < len(m.snap.Rows)-1 {
				m.cursor++
			}
			m.reportVisible()
		case "v":
			m.engine.CycleView()
		case "l":
			m.engine.SetLeague(m.nextLeague())
		case "m":
			if row, ok := m.selected(); ok {
				m.engine.ToggleBookmark(domain.BookmarkMaybe, row.Event.ID)
			}
		case "b":
			if row, ok := m.selected(); ok {
				m.engine.ToggleBookmark(domain.BookmarkBet, row.Event.ID)
			}
		case "x":
			if row, ok := m.selected(); ok {
				m.engine.Remove(row.Event.ID)
			}
		case "u":
			m.engine.Undo()
		}
	}
	return m, nil
}

func (m *model) clampCursor() {
	if m.cursor >= len(m.snap.Rows) {
		m.cursor = len(m.snap.Rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m model) selected() (services.RowView, bool) {
	if m.cursor < 0 || m.cursor >= len(m.snap.Rows) {
		return services.RowView{}, false
	}
	return m.snap.Rows[m.cursor], true
}

// nextLeague 在 all 与可选联赛之间循环
func (m model) nextLeague() string {
	if len(m.snap.Leagues) == 0 {
		return services.LeagueAll
	}
	if m.snap.League == services.LeagueAll {
		return m.snap.Leagues[0]
	}
	for i, lg := range m.snap.Leagues {
		if lg == m.snap.League {
			if i+1 < len(m.snap.Leagues) {
				return m.snap.Leagues[i+1]
			}
			return services.LeagueAll
		}
	}
	return services.LeagueAll
}

// reportVisible 把当前窗口内的赛事上报给引擎，触发洞察惰性拉取
func (m model) reportVisible() {
	start, end := m.window()
	ids := make([]string, 0, end-start)
	for _, row := range m.snap.Rows[start:end] {
		ids = append(ids, row.Event.ID)
	}
	if len(ids) > 0 {
		m.engine.MarkVisible(ids...)
	}
}

// window 计算可视行区间（滚动跟随光标）
func (m model) window() (int, int) {
	capacity := m.height - 7
	if capacity < 1 {
		capacity = 10
	}
	if len(m.snap.Rows) <= capacity {
		return 0, len(m.snap.Rows)
	}
	start := m.cursor - capacity/2
	if start < 0 {
		start = 0
	}
	end := start + capacity
	if end > len(m.snap.Rows) {
		end = len(m.snap.Rows)
		start = end - capacity
	}
	return start, end
}

func (m model) View() string {
	var b strings.Builder

	title := fmt.Sprintf(" MatchScreener  %s  视图:%s  联赛:%s ", m.snap.Day, m.snap.Mode, m.snap.League)
	b.WriteString(headerStyle.Render(title))
	b.WriteString("\n")

	switch m.snap.RenderState {
	case services.RenderLoading:
		b.WriteString(dimStyle.Render("加载中..."))
		b.WriteString("\n")
		return b.String()
	case services.RenderError:
		b.WriteString(alertStyle.Render("加载失败: " + m.snap.Error))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(dimStyle.Render(fmt.Sprintf(
		"%-6s %-6s %-34s %-18s %6s %6s %6s %7s %7s %-4s",
		"时间", "比分", "赛事", "联赛", "主", "平", "客", "O4.5买", "O4.5卖", "标记")))
	b.WriteString("\n")

	start, end := m.window()
	for i := start; i < end; i++ {
		row := m.snap.Rows[i]
		line := m.renderRow(row)
		switch {
		case i == m.cursor:
			line = selectedStyle.Render(line)
		case row.Alert:
			line = alertStyle.Render(line)
		case row.State != nil && row.State.InPlay():
			line = liveStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	if len(m.snap.Rows) == 0 {
		b.WriteString(dimStyle.Render("（无符合条件的赛事）"))
		b.WriteString("\n")
	}

	if n := m.snap.Notice; n != nil {
		remain := time.Until(n.ExpiresAt).Round(time.Second)
		if remain > 0 {
			b.WriteString(noticeStyle.Render(fmt.Sprintf(
				"已移除 %s（%s 内按 u 撤销）", n.Event.Name, remain)))
			b.WriteString("\n")
		}
	}

	b.WriteString(dimStyle.Render("v:切换视图  l:切换联赛  m:观察  b:已投  x:移除  u:撤销  q:退出"))
	return b.String()
}

func (m model) renderRow(row services.RowView) string {
	clock := row.Clock
	if clock == "" {
		if start, ok := row.Event.StartTime(); ok {
			clock = start.Local().Format("15:04")
		} else {
			clock = "--:--"
		}
	}
	marks := ""
	if row.Bookmark.Maybe {
		marks += "★"
	}
	if row.Bookmark.Bet {
		marks += "$"
	}
	if row.Alert {
		marks += "!"
	}
	name := row.Event.Name
	if name == "" {
		name = row.Event.HomeName + " v " + row.Event.AwayName
	}
	line := fmt.Sprintf("%-6s %-6s %-34s %-18s %6s %6s %6s %7s %7s %-4s",
		clock, row.Score, truncate(name, 34), truncate(row.Event.League(), 18),
		row.HomePrice, row.DrawPrice, row.AwayPrice,
		row.Over45Back, row.Over45Lay, markStyle.Render(marks))
	return line
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func main() {
	var (
		configPath = flag.String("config", "", "配置文件路径（默认 config.yaml）")
		day        = flag.String("day", "", "固定查询日期 YYYYMMDD，为空时跟随本地日期")
	)
	flag.Parse()

	_ = godotenv.Load()

	if *configPath != "" {
		config.SetConfigPath(*configPath)
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// TUI 模式下日志只写文件，避免污染终端
	logFile := cfg.Log.OutputFile
	if logFile == "" {
		logFile = "logs/screener-tui.log"
	}
	if err := logger.Init(logger.Config{
		Level:      cfg.Log.Level,
		OutputFile: logFile,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	logger.Logger.SetOutput(mustLogWriter(logFile))

	svc := persistence.NewJSONFileService(cfg.Bookmarks.Path)
	store := svc.NewStore("screener", "default", "bookmarks")
	bookmarks := services.NewBookmarkStore(store, cfg.BookmarkRetention())

	client := api.NewClient(api.Options{
		BaseURL: cfg.Feed.BaseURL,
		Token:   cfg.Feed.Token,
		Timeout: time.Duration(cfg.Feed.TimeoutSeconds) * time.Second,
	})

	engine := services.NewEngine(client, bookmarks, services.EngineConfig{
		StateInterval:  cfg.StateInterval(),
		PriceInterval:  cfg.PriceInterval(),
		QuoteInterval:  cfg.QuoteInterval(),
		Lead:           cfg.LeadWindow(),
		Past:           cfg.PastWindow(),
		BettableWindow: cfg.BettableWindow(),
		UndoWindow:     cfg.UndoWindow(),
		Day:            *day,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	engine.Start(ctx)
	defer engine.Close()

	p := tea.NewProgram(initialModel(engine), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "TUI 退出异常: %v\n", err)
		os.Exit(1)
	}
}

// mustLogWriter 打开仅文件输出的日志 writer，失败时退回丢弃
func mustLogWriter(path string) *os.File {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err == nil {
		if f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666); err == nil {
			return f
		}
	}
	f, _ := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
	return f
}
