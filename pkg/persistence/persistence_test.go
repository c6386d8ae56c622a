package persistence

import (
	"testing"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestJSONFileStoreRoundTrip(t *testing.T) {
	svc := NewJSONFileService(t.TempDir())
	store := svc.NewStore("screener", "default", "bookmarks")

	want := payload{Name: "x", Count: 3}
	if err := store.Save(want); err != nil {
		t.Fatalf("save: %v", err)
	}
	var got payload
	if err := store.Load(&got); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != want {
		t.Fatalf("round trip: %+v != %+v", got, want)
	}
}

func TestJSONFileStoreLoadMissing(t *testing.T) {
	svc := NewJSONFileService(t.TempDir())
	store := svc.NewStore("screener", "default", "missing")

	var got payload
	if err := store.Load(&got); err != ErrNotExists {
		t.Fatalf("缺失文件应返回 ErrNotExists, got %v", err)
	}
}

func TestJSONFileStoreKeySanitized(t *testing.T) {
	svc := NewJSONFileService(t.TempDir())
	store := svc.NewStore("screener", "id/with:odd*chars", "tag")
	if err := store.Save(payload{Name: "ok"}); err != nil {
		t.Fatalf("非法字符应被清洗而不是报错: %v", err)
	}
}

func TestBadgerStoreRoundTrip(t *testing.T) {
	svc, err := OpenBadger(t.TempDir())
	if err != nil {
		t.Fatalf("open badger: %v", err)
	}
	defer svc.Close()

	store := svc.NewStore("screener", "default", "bookmarks")
	want := payload{Name: "b", Count: 7}
	if err := store.Save(want); err != nil {
		t.Fatalf("save: %v", err)
	}
	var got payload
	if err := store.Load(&got); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != want {
		t.Fatalf("round trip: %+v != %+v", got, want)
	}

	missing := svc.NewStore("screener", "default", "missing")
	var m payload
	if err := missing.Load(&m); err != ErrNotExists {
		t.Fatalf("缺失 key 应返回 ErrNotExists, got %v", err)
	}
}
