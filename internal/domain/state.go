package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// MatchState 单场比赛的实时状态（每个轮询周期整体替换，不合并）
type MatchState struct {
	EventID           string
	State             EventState
	MatchPeriod       string // first_half / half_time / second_half / full_time / ...
	MatchTime         string // "HH:MM:SS" 比赛计时原始串
	StoppageTime      string
	StoppageAnnounced bool
	Stopped           bool
	HomeScore         *int // 数据源缺失时为 nil
	AwayScore         *int
	ClockMinute       *int
	ClockText         string // "HT" / "FT" / "52'" / "90' (+4')" ...
	StoppageMinutes   *int
}

// HasScore 是否有有效比分
func (s *MatchState) HasScore() bool {
	return s.HomeScore != nil && s.AwayScore != nil
}

// ScoreText 比分显示串，缺失时为 "-"
func (s *MatchState) ScoreText() string {
	if !s.HasScore() {
		return "-"
	}
	return fmt.Sprintf("%d-%d", *s.HomeScore, *s.AwayScore)
}

// InPlay 根据 period/clock 判断是否在进行中
func (s *MatchState) InPlay() bool {
	if s.State == EventStateLive {
		return true
	}
	p := strings.ToLower(s.MatchPeriod)
	if p == "" || p == "full_time" {
		return false
	}
	return true
}

// Finished 是否已完赛
func (s *MatchState) Finished() bool {
	if s.State == EventStateEnded {
		return true
	}
	return strings.ToLower(s.MatchPeriod) == "full_time"
}

// Clock 由 period + 计时串生成显示文本
// 特殊 period 直接映射；其余解析分钟数，补时已宣布时带上 (+n')
func Clock(period, matchTime, stoppageTime string, stoppageAnnounced bool) (minute *int, text string, stoppageMinutes *int) {
	switch strings.ToLower(period) {
	case "half_time":
		return nil, "HT", nil
	case "extra_time_half_time":
		return nil, "ET HT", nil
	case "full_time":
		return nil, "FT", nil
	case "penalty_shootout":
		return nil, "PEN", nil
	}

	minute = parseClockMinutes(matchTime)
	stoppageMinutes = parseClockMinutes(stoppageTime)

	if minute == nil {
		return nil, "", stoppageMinutes
	}
	if stoppageAnnounced && stoppageMinutes != nil && *stoppageMinutes > 0 {
		return minute, fmt.Sprintf("%d' (+%d')", *minute, *stoppageMinutes), stoppageMinutes
	}
	return minute, fmt.Sprintf("%d'", *minute), stoppageMinutes
}

// parseClockMinutes 解析 "HH:MM:SS" / "MM:SS" / "MM" 为分钟数
// 三段取 小时*60+分钟，秒丢弃
func parseClockMinutes(raw string) *int {
	raw = strings.TrimSpace(raw)
	if raw == "" || !strings.Contains(raw, ":") {
		return nil
	}
	parts := strings.Split(raw, ":")
	nums := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil
		}
		nums = append(nums, n)
	}
	var minute int
	switch len(nums) {
	case 3:
		minute = nums[0]*60 + nums[1]
	case 2:
		minute = nums[0]
	case 1:
		minute = nums[0]
	default:
		return nil
	}
	return &minute
}
