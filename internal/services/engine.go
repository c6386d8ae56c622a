package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/betbot/matchscreener/internal/common"
	"github.com/betbot/matchscreener/internal/domain"
	"github.com/betbot/matchscreener/pkg/logger"
	"github.com/betbot/matchscreener/pkg/sigchan"
)

// Fetcher 引擎对行情后端的全部依赖。
type Fetcher interface {
	FetchEvents(ctx context.Context, day string) ([]domain.Event, error)
	FetchStates(ctx context.Context, ids []string) (map[string]domain.MatchState, error)
	FetchPrices(ctx context.Context, marketIDs, contractIDs []string) (domain.PriceMap, error)
	FetchQuotes(ctx context.Context, marketIDs, contractIDs []string) (domain.QuoteMap, error)
	FetchInsights(ctx context.Context, ids []string) (map[string]domain.Insight, error)
}

// RenderState 整体渲染状态。
type RenderState string

const (
	RenderLoading   RenderState = "loading"
	RenderError     RenderState = "error"
	RenderPopulated RenderState = "populated"
)

// EngineConfig 引擎运行参数，零值字段使用默认值。
type EngineConfig struct {
	StateInterval time.Duration // 比分/时钟轮询间隔
	PriceInterval time.Duration // 成交价轮询间隔
	QuoteInterval time.Duration // 盘口报价轮询间隔

	Lead time.Duration // 开赛前多久纳入轮询
	Past time.Duration // 开赛后多久移出轮询

	BettableWindow time.Duration // bettable 视图的临近开赛窗口
	UndoWindow     time.Duration // 移除后的可撤销窗口

	Day string // 固定查询的日期 key（YYYYMMDD），为空时跟随本地日期
}

func (c *EngineConfig) applyDefaults() {
	if c.StateInterval <= 0 {
		c.StateInterval = 30 * time.Second
	}
	if c.PriceInterval <= 0 {
		c.PriceInterval = 10 * time.Second
	}
	if c.QuoteInterval <= 0 {
		c.QuoteInterval = 5 * time.Second
	}
	if c.Lead <= 0 {
		c.Lead = time.Hour
	}
	if c.Past <= 0 {
		c.Past = 2 * time.Hour
	}
	if c.BettableWindow <= 0 {
		c.BettableWindow = 2 * time.Hour
	}
	if c.UndoWindow <= 0 {
		c.UndoWindow = 6 * time.Second
	}
}

type catalogResult struct {
	token  string
	events []domain.Event
	err    error
}

type statesResult struct {
	token  string
	states map[string]domain.MatchState
	err    error
}

type pricesResult struct {
	token  string
	prices domain.PriceMap
	err    error
}

type quotesResult struct {
	token  string
	quotes domain.QuoteMap
	err    error
}

type insightsResult struct {
	token    string
	insights map[string]domain.Insight
	err      error
}

// Engine 赛事筛选引擎。所有状态变更都发生在单一事件循环 goroutine 上：
// 三个轮询定时器触发抓取，抓取在独立 goroutine 中执行，结果经 channel
// 回到循环内按到达顺序应用。每次目录重建生成新的 cycle token，
// 旧周期的在途响应到达后直接丢弃。
type Engine struct {
	fetcher   Fetcher
	bookmarks *BookmarkStore
	cfg       EngineConfig

	mu          sync.RWMutex
	day         string
	followToday bool
	renderState RenderState
	lastError   string
	catalog     []domain.Event
	states      map[string]domain.MatchState
	prices      domain.PriceMap
	quotes      domain.QuoteMap
	insights    map[string]domain.Insight
	mode        ViewMode
	league      string
	updatedAt   time.Time

	window   EligibilityWindow
	tracker  *StalenessTracker
	gate     *VisibilityGate
	remover  *Remover
	warnMute *common.Debouncer // 后端持续故障时的轮询告警限频

	// 以下字段只在事件循环 goroutine 上访问
	cycleToken string
	stateTick  *time.Ticker
	priceTick  *time.Ticker
	quoteTick  *time.Ticker

	cmdC      chan func()
	catalogC  chan catalogResult
	statesC   chan statesResult
	pricesC   chan pricesResult
	quotesC   chan quotesResult
	insightsC chan insightsResult
	expireC   chan string

	changed *sigchan.Chan

	startOnce sync.Once
	loopCtx   context.Context
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewEngine 创建引擎，bookmarks 可为 nil（不持久化标记时）。
func NewEngine(fetcher Fetcher, bookmarks *BookmarkStore, cfg EngineConfig) *Engine {
	cfg.applyDefaults()
	day := cfg.Day
	follow := day == ""
	if follow {
		day = todayKey()
	}
	return &Engine{
		fetcher:     fetcher,
		bookmarks:   bookmarks,
		cfg:         cfg,
		day:         day,
		followToday: follow,
		renderState: RenderLoading,
		states:      make(map[string]domain.MatchState),
		prices:      make(domain.PriceMap),
		quotes:      make(domain.QuoteMap),
		insights:    make(map[string]domain.Insight),
		mode:        ViewAll,
		league:      LeagueAll,
		window:      EligibilityWindow{Lead: cfg.Lead, Past: cfg.Past},
		tracker:     NewStalenessTracker(),
		gate:        NewVisibilityGate(),
		remover:     NewRemover(cfg.UndoWindow),
		warnMute:    common.NewDebouncer(30 * time.Second),
		cmdC:        make(chan func(), 16),
		catalogC:    make(chan catalogResult, 1),
		statesC:     make(chan statesResult, 1),
		pricesC:     make(chan pricesResult, 1),
		quotesC:     make(chan quotesResult, 1),
		insightsC:   make(chan insightsResult, 4),
		expireC:     make(chan string, 4),
		changed:     sigchan.New(1),
		done:        make(chan struct{}),
	}
}

// Start 启动事件循环，重复调用只生效一次。
func (e *Engine) Start(ctx context.Context) {
	e.startOnce.Do(func() {
		e.loopCtx, e.cancel = context.WithCancel(ctx)
		go e.run(e.loopCtx)
	})
}

// Close 停止事件循环并等待退出。
func (e *Engine) Close() {
	if e.cancel != nil {
		e.cancel()
		<-e.done
	}
}

// Changed 返回状态变更通知通道，供推送层监听。
func (e *Engine) Changed() <-chan struct{} {
	return e.changed.C()
}

func (e *Engine) run(ctx context.Context) {
	defer close(e.done)

	e.stateTick = time.NewTicker(e.cfg.StateInterval)
	e.priceTick = time.NewTicker(e.cfg.PriceInterval)
	e.quoteTick = time.NewTicker(e.cfg.QuoteInterval)
	dayTick := time.NewTicker(time.Minute)
	defer e.stateTick.Stop()
	defer e.priceTick.Stop()
	defer e.quoteTick.Stop()
	defer dayTick.Stop()

	e.refetchCatalog(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-e.cmdC:
			fn()
		case <-dayTick.C:
			e.mu.RLock()
			rollover := e.followToday && e.day != todayKey()
			e.mu.RUnlock()
			// 错误态不自动重试，等待日期变化（跨天或手动切换）
			if rollover {
				e.switchDay(ctx, todayKey(), true)
			}
		case <-e.stateTick.C:
			e.pollStates(ctx)
		case <-e.priceTick.C:
			e.pollPrices(ctx)
		case <-e.quoteTick.C:
			e.pollQuotes(ctx)
		case res := <-e.catalogC:
			e.applyCatalog(res)
		case res := <-e.statesC:
			e.applyStates(res)
		case res := <-e.pricesC:
			e.applyPrices(res)
		case res := <-e.quotesC:
			e.applyQuotes(res)
		case res := <-e.insightsC:
			e.applyInsights(res)
		case token := <-e.expireC:
			// Snapshot 在读锁下访问挂起记录，清除必须持写锁
			e.mu.Lock()
			expired := e.remover.Expire(token)
			if expired {
				e.touchLocked(time.Now())
			}
			e.mu.Unlock()
			if expired {
				e.notify()
			}
		}
	}
}

// switchDay 切换目录日期：作废旧周期、清空派生状态、重拉目录。
func (e *Engine) switchDay(ctx context.Context, day string, follow bool) {
	e.mu.Lock()
	e.day = day
	e.followToday = follow
	e.mu.Unlock()
	e.refetchCatalog(ctx)
	e.stateTick.Reset(e.cfg.StateInterval)
	e.priceTick.Reset(e.cfg.PriceInterval)
	e.quoteTick.Reset(e.cfg.QuoteInterval)
}

// refetchCatalog 开启新周期并发起目录抓取。
func (e *Engine) refetchCatalog(ctx context.Context) {
	e.cycleToken = uuid.NewString()
	token := e.cycleToken

	e.mu.Lock()
	day := wireDay(e.day)
	e.renderState = RenderLoading
	e.lastError = ""
	e.mu.Unlock()
	e.notify()

	go func() {
		events, err := e.fetcher.FetchEvents(ctx, day)
		select {
		case e.catalogC <- catalogResult{token: token, events: events, err: err}:
		case <-ctx.Done():
		}
	}()
}

func (e *Engine) applyCatalog(res catalogResult) {
	if res.token != e.cycleToken {
		return
	}
	now := time.Now()
	if res.err != nil {
		logger.Errorf("engine: 目录抓取失败: %v", res.err)
		e.mu.Lock()
		e.renderState = RenderError
		e.lastError = res.err.Error()
		e.updatedAt = now
		e.mu.Unlock()
		e.notify()
		return
	}
	e.tracker.Reset()
	e.gate.Reset()
	e.mu.Lock()
	e.remover.Clear()
	e.catalog = res.events
	e.states = make(map[string]domain.MatchState)
	e.prices = make(domain.PriceMap)
	e.quotes = make(domain.QuoteMap)
	e.insights = make(map[string]domain.Insight)
	e.renderState = RenderPopulated
	e.lastError = ""
	e.touchLocked(now)
	e.mu.Unlock()
	e.notify()
}

func (e *Engine) pollStates(ctx context.Context) {
	e.mu.RLock()
	ids := e.window.EligibleIDs(e.catalog, time.Now())
	e.mu.RUnlock()
	if len(ids) == 0 {
		return
	}
	token := e.cycleToken
	go func() {
		states, err := e.fetcher.FetchStates(ctx, ids)
		select {
		case e.statesC <- statesResult{token: token, states: states, err: err}:
		case <-ctx.Done():
		}
	}()
}

func (e *Engine) pollPrices(ctx context.Context) {
	marketIDs, contractIDs := e.pollTargets()
	if len(marketIDs) == 0 && len(contractIDs) == 0 {
		return
	}
	token := e.cycleToken
	go func() {
		prices, err := e.fetcher.FetchPrices(ctx, marketIDs, contractIDs)
		select {
		case e.pricesC <- pricesResult{token: token, prices: prices, err: err}:
		case <-ctx.Done():
		}
	}()
}

func (e *Engine) pollQuotes(ctx context.Context) {
	marketIDs, contractIDs := e.pollTargets()
	if len(marketIDs) == 0 && len(contractIDs) == 0 {
		return
	}
	token := e.cycleToken
	go func() {
		quotes, err := e.fetcher.FetchQuotes(ctx, marketIDs, contractIDs)
		select {
		case e.quotesC <- quotesResult{token: token, quotes: quotes, err: err}:
		case <-ctx.Done():
		}
	}()
}

// pollTargets 汇总当前符合条件赛事的市场与合约 ID，去重并保持目录顺序。
func (e *Engine) pollTargets() (marketIDs, contractIDs []string) {
	e.mu.RLock()
	events := e.window.EligibleEvents(e.catalog, time.Now())
	e.mu.RUnlock()
	seenM := make(map[string]struct{})
	seenC := make(map[string]struct{})
	for _, ev := range events {
		for _, id := range ev.MarketIDs() {
			if _, ok := seenM[id]; !ok {
				seenM[id] = struct{}{}
				marketIDs = append(marketIDs, id)
			}
		}
		for _, id := range ev.ContractIDs() {
			if _, ok := seenC[id]; !ok {
				seenC[id] = struct{}{}
				contractIDs = append(contractIDs, id)
			}
		}
	}
	return marketIDs, contractIDs
}

// warnPoll 记录轮询失败。三条轮询循环共用一个限频器，
// 后端整体不可用时不至于按秒刷日志。
func (e *Engine) warnPoll(format string, args ...interface{}) {
	now := time.Now()
	if !e.warnMute.Ready(now) {
		return
	}
	e.warnMute.Mark(now)
	logger.Warnf(format, args...)
}

func (e *Engine) applyStates(res statesResult) {
	if res.token != e.cycleToken {
		return
	}
	if res.err != nil {
		e.warnPoll("engine: 比分轮询失败: %v", res.err)
		return
	}
	e.mu.Lock()
	e.states = res.states
	e.touchLocked(time.Now())
	e.mu.Unlock()
	e.notify()
}

func (e *Engine) applyPrices(res pricesResult) {
	if res.token != e.cycleToken {
		return
	}
	if res.err != nil {
		e.warnPoll("engine: 成交价轮询失败: %v", res.err)
		return
	}
	now := time.Now()
	e.mu.Lock()
	e.prices = MergePrices(e.prices, res.prices)
	catalog := e.catalog
	e.touchLocked(now)
	e.mu.Unlock()
	e.tracker.ObservePrices(now, catalog, res.prices)
	e.notify()
}

func (e *Engine) applyQuotes(res quotesResult) {
	if res.token != e.cycleToken {
		return
	}
	if res.err != nil {
		e.warnPoll("engine: 报价轮询失败: %v", res.err)
		return
	}
	now := time.Now()
	e.mu.Lock()
	e.quotes = MergeQuotes(e.quotes, res.quotes)
	catalog := e.catalog
	e.touchLocked(now)
	e.mu.Unlock()
	e.tracker.ObserveQuotes(now, catalog, res.quotes)
	e.notify()
}

func (e *Engine) applyInsights(res insightsResult) {
	if res.token != e.cycleToken {
		return
	}
	if res.err != nil {
		e.warnPoll("engine: 洞察抓取失败: %v", res.err)
		return
	}
	e.mu.Lock()
	e.insights = MergeInsights(e.insights, res.insights)
	e.touchLocked(time.Now())
	e.mu.Unlock()
	e.notify()
}

// do 把命令投递到事件循环串行执行，循环已退出时直接丢弃。
func (e *Engine) do(fn func()) {
	select {
	case e.cmdC <- fn:
	case <-e.done:
	}
}

// SetDay 切换目录日期，day 为空表示跟随本地日期。
func (e *Engine) SetDay(day string) {
	e.do(func() {
		follow := day == ""
		target := day
		if follow {
			target = todayKey()
		}
		e.mu.RLock()
		same := e.day == target
		e.mu.RUnlock()
		if same {
			e.mu.Lock()
			e.followToday = follow
			e.mu.Unlock()
			return
		}
		e.switchDay(e.loopCtx, target, follow)
	})
}

// CycleView 切换到下一个视图模式。
func (e *Engine) CycleView() {
	e.do(func() {
		e.mu.Lock()
		e.mode = e.mode.Next()
		e.touchLocked(time.Now())
		e.mu.Unlock()
		e.notify()
	})
}

// SetViewMode 直接设置视图模式。
func (e *Engine) SetViewMode(mode ViewMode) {
	e.do(func() {
		e.mu.Lock()
		e.mode = mode
		e.touchLocked(time.Now())
		e.mu.Unlock()
		e.notify()
	})
}

// SetLeague 设置联赛筛选，当前行集合中不存在的联赛会被立即重置为 all。
func (e *Engine) SetLeague(league string) {
	e.do(func() {
		e.mu.Lock()
		e.league = league
		e.touchLocked(time.Now())
		e.mu.Unlock()
		e.notify()
	})
}

// ToggleBookmark 翻转赛事标记，赛事不在目录中或开赛日期不可解析时忽略。
func (e *Engine) ToggleBookmark(kind domain.BookmarkKind, eventID string) {
	e.do(func() {
		if e.bookmarks == nil {
			return
		}
		e.mu.RLock()
		var dateKey string
		for i := range e.catalog {
			if e.catalog[i].ID == eventID {
				dateKey = e.catalog[i].DateKey()
				break
			}
		}
		e.mu.RUnlock()
		if dateKey == "" {
			return
		}
		e.bookmarks.Toggle(kind, dateKey, eventID)
		e.mu.Lock()
		e.touchLocked(time.Now())
		e.mu.Unlock()
		e.notify()
	})
}

// Remove 从目录中移除赛事并开启撤销窗口，新的移除顶掉上一条挂起记录。
func (e *Engine) Remove(eventID string) {
	e.do(func() {
		now := time.Now()
		e.mu.Lock()
		catalog, notice, ok := e.remover.Remove(e.catalog, eventID, now)
		if ok {
			e.catalog = catalog
			e.touchLocked(now)
		}
		e.mu.Unlock()
		if !ok {
			return
		}
		token := notice.Token
		time.AfterFunc(e.remover.Window(), func() {
			select {
			case e.expireC <- token:
			case <-e.done:
			}
		})
		e.notify()
	})
}

// Undo 撤销挂起的移除，窗口已过期或没有挂起记录时不做任何事。
func (e *Engine) Undo() {
	e.do(func() {
		now := time.Now()
		e.mu.Lock()
		catalog, ok := e.remover.Undo(e.catalog, now)
		if ok {
			e.catalog = catalog
			e.touchLocked(now)
		}
		e.mu.Unlock()
		if ok {
			e.notify()
		}
	})
}

// MarkVisible 上报进入可视区域的赛事，首次可视的赛事触发一次洞察抓取。
func (e *Engine) MarkVisible(ids ...string) {
	e.do(func() {
		fresh := e.gate.Observe(ids...)
		if len(fresh) == 0 {
			return
		}
		token := e.cycleToken
		ctx := e.loopCtx
		go func() {
			insights, err := e.fetcher.FetchInsights(ctx, fresh)
			select {
			case e.insightsC <- insightsResult{token: token, insights: insights, err: err}:
			case <-ctx.Done():
			}
		}()
	})
}

// touchLocked 在持写锁状态下收敛联赛选择并刷新更新时间。
func (e *Engine) touchLocked(now time.Time) {
	res := FilterView(e.filterInputLocked(now))
	e.league = res.League
	e.updatedAt = now
}

func (e *Engine) filterInputLocked(now time.Time) FilterInput {
	bookmark := func(ev domain.Event) domain.BookmarkEntry {
		if e.bookmarks == nil {
			return domain.BookmarkEntry{}
		}
		return e.bookmarks.Get(ev.DateKey(), ev.ID)
	}
	return FilterInput{
		Catalog:        e.catalog,
		States:         e.states,
		Bookmark:       bookmark,
		Mode:           e.mode,
		League:         e.league,
		Now:            now,
		BettableWindow: e.cfg.BettableWindow,
	}
}

func (e *Engine) notify() {
	e.changed.Emit()
}

func todayKey() string {
	return time.Now().In(time.Local).Format("20060102")
}

// wireDay 把 YYYYMMDD 的日期 key 转成行情后端要求的 YYYY-MM-DD。
func wireDay(key string) string {
	day, ok := domain.ParseDateKey(key)
	if !ok {
		return key
	}
	return day.Format("2006-01-02")
}
