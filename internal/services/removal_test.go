package services

import (
	"testing"
	"time"

	"github.com/betbot/matchscreener/internal/domain"
)

func namedCatalog(ids ...string) []domain.Event {
	out := make([]domain.Event, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.Event{ID: id})
	}
	return out
}

func TestRemoveAndUndoRestoresPosition(t *testing.T) {
	r := NewRemover(6 * time.Second)
	now := time.Now()
	catalog := namedCatalog("a", "b", "c", "d", "e")

	catalog, notice, ok := r.Remove(catalog, "c", now)
	if !ok || notice == nil {
		t.Fatalf("移除失败")
	}
	if notice.Index != 2 || notice.Event.ID != "c" {
		t.Fatalf("记录的原始位置错误: %+v", notice)
	}
	if len(catalog) != 4 || catalog[2].ID != "d" {
		t.Fatalf("移除后目录错误: %+v", catalog)
	}

	catalog, ok = r.Undo(catalog, now.Add(3*time.Second))
	if !ok {
		t.Fatalf("窗口内撤销失败")
	}
	if len(catalog) != 5 || catalog[2].ID != "c" {
		t.Fatalf("撤销应插回原位置: %+v", catalog)
	}
	if r.Pending() != nil {
		t.Fatalf("撤销后不应有挂起记录")
	}
}

func TestUndoAfterWindowExpired(t *testing.T) {
	r := NewRemover(6 * time.Second)
	now := time.Now()
	catalog := namedCatalog("a", "b")

	catalog, _, _ = r.Remove(catalog, "a", now)
	catalog, ok := r.Undo(catalog, now.Add(7*time.Second))
	if ok {
		t.Fatalf("窗口过期后撤销应为空操作")
	}
	if len(catalog) != 1 {
		t.Fatalf("目录不应变化: %+v", catalog)
	}
}

func TestUndoClampsIndexToLength(t *testing.T) {
	r := NewRemover(6 * time.Second)
	now := time.Now()
	catalog := namedCatalog("a", "b", "c")

	catalog, _, _ = r.Remove(catalog, "c", now)
	// 目录在撤销前被整体替换成更短的
	catalog = namedCatalog("x")
	catalog, ok := r.Undo(catalog, now.Add(time.Second))
	if !ok || len(catalog) != 2 || catalog[1].ID != "c" {
		t.Fatalf("超界位置应追加到末尾: %+v", catalog)
	}
}

func TestUndoSkipsEventAlreadyPresent(t *testing.T) {
	r := NewRemover(6 * time.Second)
	now := time.Now()
	catalog := namedCatalog("a", "b", "c")

	catalog, _, _ = r.Remove(catalog, "b", now)
	// 目录在撤销前被替换，且替换后的目录里已经有 b
	catalog = namedCatalog("a", "b", "c")
	catalog, ok := r.Undo(catalog, now.Add(time.Second))
	if ok {
		t.Fatalf("赛事已在目录中时撤销应为空操作")
	}
	if len(catalog) != 3 {
		t.Fatalf("目录不应变化: %+v", catalog)
	}
	if r.Pending() != nil {
		t.Fatalf("挂起记录应被消费")
	}
}

func TestNewRemovalReplacesPending(t *testing.T) {
	r := NewRemover(6 * time.Second)
	now := time.Now()
	catalog := namedCatalog("a", "b", "c")

	catalog, first, _ := r.Remove(catalog, "a", now)
	catalog, second, _ := r.Remove(catalog, "b", now.Add(time.Second))
	if first.Token == second.Token {
		t.Fatalf("两次移除的 token 应不同")
	}

	// 旧 token 的过期回调不应清掉新记录
	if r.Expire(first.Token) {
		t.Fatalf("旧 token 不应命中")
	}
	if r.Pending() == nil || r.Pending().Event.ID != "b" {
		t.Fatalf("新记录应仍然挂起")
	}

	// 撤销只恢复最新一条
	catalog, ok := r.Undo(catalog, now.Add(2*time.Second))
	if !ok || len(catalog) != 2 {
		t.Fatalf("撤销失败: %+v", catalog)
	}
	for _, ev := range catalog {
		if ev.ID == "a" {
			t.Fatalf("被顶掉的移除不应恢复")
		}
	}
}

func TestExpireClearsPending(t *testing.T) {
	r := NewRemover(6 * time.Second)
	now := time.Now()
	catalog := namedCatalog("a")

	_, notice, _ := r.Remove(catalog, "a", now)
	if !r.Expire(notice.Token) {
		t.Fatalf("匹配 token 应清除记录")
	}
	if r.Pending() != nil {
		t.Fatalf("过期后不应有挂起记录")
	}
	// 再次过期是空操作
	if r.Expire(notice.Token) {
		t.Fatalf("重复过期应为空操作")
	}
}
