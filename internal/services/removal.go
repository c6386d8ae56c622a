package services

import (
	"time"

	"github.com/google/uuid"

	"github.com/betbot/matchscreener/internal/domain"
)

// RemovalNotice 一条可撤销的移除记录。Token 用于区分先后两次移除，
// 过期回调只对仍然挂起的那一条生效。
type RemovalNotice struct {
	Event     domain.Event
	Index     int
	Token     string
	ExpiresAt time.Time
}

// Remover 管理"移除赛事 + 限时撤销"的状态机。
// 任意时刻最多挂起一条移除记录，新的移除会顶掉旧的（旧的不再可撤销）。
// 自身不加锁，所有读写都在引擎的状态锁内进行。
type Remover struct {
	window  time.Duration
	pending *RemovalNotice
}

func NewRemover(window time.Duration) *Remover {
	return &Remover{window: window}
}

// Remove 从目录中摘除指定赛事，记录其原始位置并开启撤销窗口。
// 赛事不存在时返回原目录与 false。
func (r *Remover) Remove(catalog []domain.Event, eventID string, now time.Time) ([]domain.Event, *RemovalNotice, bool) {
	idx := -1
	for i, ev := range catalog {
		if ev.ID == eventID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return catalog, nil, false
	}
	out := make([]domain.Event, 0, len(catalog)-1)
	out = append(out, catalog[:idx]...)
	out = append(out, catalog[idx+1:]...)
	notice := &RemovalNotice{
		Event:     catalog[idx],
		Index:     idx,
		Token:     uuid.NewString(),
		ExpiresAt: now.Add(r.window),
	}
	r.pending = notice
	return out, notice, true
}

// Undo 把挂起的赛事插回原位置；原位置超出当前长度时追加到末尾。
// 没有挂起记录、窗口已过期或赛事已在目录中时不做任何事。
func (r *Remover) Undo(catalog []domain.Event, now time.Time) ([]domain.Event, bool) {
	notice := r.pending
	if notice == nil || now.After(notice.ExpiresAt) {
		return catalog, false
	}
	r.pending = nil
	for _, ev := range catalog {
		if ev.ID == notice.Event.ID {
			return catalog, false
		}
	}
	idx := notice.Index
	if idx > len(catalog) {
		idx = len(catalog)
	}
	out := make([]domain.Event, 0, len(catalog)+1)
	out = append(out, catalog[:idx]...)
	out = append(out, notice.Event)
	out = append(out, catalog[idx:]...)
	return out, true
}

// Expire 在撤销窗口到期时清除记录；只有 token 仍匹配挂起记录才生效，
// 避免清掉后来顶替的新记录。
func (r *Remover) Expire(token string) bool {
	if r.pending != nil && r.pending.Token == token {
		r.pending = nil
		return true
	}
	return false
}

// Pending 返回当前挂起的移除记录，没有则返回 nil。
func (r *Remover) Pending() *RemovalNotice {
	return r.pending
}

// Clear 清除挂起记录，切换日期重建目录时使用。
func (r *Remover) Clear() {
	r.pending = nil
}

// Window 返回撤销窗口长度。
func (r *Remover) Window() time.Duration {
	return r.window
}
