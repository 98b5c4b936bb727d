package catalog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/hazyhaar/souk-search/pkg/search"
)

func TestWatch_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	s, err := OpenStore(path)
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	defer s.Close()

	h := NewHolder(s, nil)
	if err := h.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, path, h, 20*time.Millisecond) }()

	// The watcher may not be registered yet, so keep writing until a reload lands.
	deadline := time.Now().Add(5 * time.Second)
	for len(h.Current().Services) == 0 {
		if time.Now().After(deadline) {
			cancel()
			<-done
			t.Fatal("holder never reloaded after a write")
		}
		if err := s.UpsertService(context.Background(), search.Candidate{ID: "w1", Title: "logo"}, 0); err != nil {
			t.Fatalf("UpsertService: %v", err)
		}
		time.Sleep(100 * time.Millisecond)
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Watch returned %v", err)
	}
}

func TestWatch_MissingDirectory(t *testing.T) {
	h := NewHolder(&fakeSource{}, nil)
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "nope", "catalog.db"), h, 0)
	if err == nil {
		t.Error("expected error for a directory that does not exist")
	}
}
