package services

import (
	"sync"
	"time"

	"github.com/betbot/matchscreener/internal/domain"
	"github.com/betbot/matchscreener/pkg/logger"
	"github.com/betbot/matchscreener/pkg/persistence"
)

// BookmarkStore 按赛事日期分桶保存"观察/已投"两类标记。
// 每次变更后整体落盘；加载失败（文件缺失或损坏）降级为空集合，
// 绝不因持久化问题阻塞上层操作。
type BookmarkStore struct {
	mu        sync.Mutex
	buckets   domain.BookmarkBuckets
	store     persistence.Store
	retention time.Duration
}

// NewBookmarkStore 加载已有标记并立即按保留期清理一次过期分桶。
func NewBookmarkStore(store persistence.Store, retention time.Duration) *BookmarkStore {
	s := &BookmarkStore{
		buckets:   make(domain.BookmarkBuckets),
		store:     store,
		retention: retention,
	}
	if store != nil {
		var loaded domain.BookmarkBuckets
		if err := store.Load(&loaded); err != nil {
			if err != persistence.ErrNotExists {
				logger.Warnf("bookmark store: 读取标记失败，按空集合处理: %v", err)
			}
		} else if loaded != nil {
			s.buckets = loaded
		}
	}
	s.Prune(time.Now())
	return s
}

// Toggle 翻转指定赛事在 dateKey 分桶内的某一标记位，返回翻转后的状态。
// 两个标记位都归零时删除条目，分桶清空时连带删除分桶。
func (s *BookmarkStore) Toggle(kind domain.BookmarkKind, dateKey, eventID string) domain.BookmarkEntry {
	if dateKey == "" || eventID == "" {
		return domain.BookmarkEntry{}
	}
	s.mu.Lock()
	bucket := s.buckets[dateKey]
	if bucket == nil {
		bucket = make(map[string]domain.BookmarkEntry)
		s.buckets[dateKey] = bucket
	}
	entry := bucket[eventID]
	switch kind {
	case domain.BookmarkMaybe:
		entry.Maybe = !entry.Maybe
	case domain.BookmarkBet:
		entry.Bet = !entry.Bet
	}
	if entry.IsZero() {
		delete(bucket, eventID)
		if len(bucket) == 0 {
			delete(s.buckets, dateKey)
		}
	} else {
		bucket[eventID] = entry
	}
	s.persistLocked()
	s.mu.Unlock()
	return entry
}

// Get 返回赛事在指定分桶内的标记，不存在则返回零值。
func (s *BookmarkStore) Get(dateKey, eventID string) domain.BookmarkEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buckets[dateKey][eventID]
}

// Prune 删除早于保留期的分桶，有变更时落盘。
// 日期无法解析的分桶一并丢弃。
func (s *BookmarkStore) Prune(now time.Time) {
	cutoff := now.Add(-s.retention)
	s.mu.Lock()
	changed := false
	for dateKey := range s.buckets {
		day, ok := domain.ParseDateKey(dateKey)
		if !ok || day.Before(cutoff) {
			delete(s.buckets, dateKey)
			changed = true
		}
	}
	if changed {
		s.persistLocked()
	}
	s.mu.Unlock()
}

// Snapshot 返回全部分桶的深拷贝，供只读展示用。
func (s *BookmarkStore) Snapshot() domain.BookmarkBuckets {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(domain.BookmarkBuckets, len(s.buckets))
	for dateKey, bucket := range s.buckets {
		cp := make(map[string]domain.BookmarkEntry, len(bucket))
		for id, entry := range bucket {
			cp[id] = entry
		}
		out[dateKey] = cp
	}
	return out
}

func (s *BookmarkStore) persistLocked() {
	if s.store == nil {
		return
	}
	if err := s.store.Save(s.buckets); err != nil {
		logger.Warnf("bookmark store: 保存标记失败: %v", err)
	}
}
