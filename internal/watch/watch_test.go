package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileWatcherDeliversEventOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "grammar.pcomb")
	if err := os.WriteFile(path, []byte("initial"), 0644); err != nil {
		t.Fatal(err)
	}

	fw, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer fw.Close()

	events := make(chan Event, 8)
	fw.Handler = func(ev Event) { events <- ev }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fw.Start(ctx)

	if err := os.WriteFile(path, []byte("updated"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case ev := <-events:
		if ev.Err != nil {
			t.Fatalf("unexpected error: %v", ev.Err)
		}
		if string(ev.Data) != "updated" {
			t.Fatalf("got %q, want %q", ev.Data, "updated")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for write event")
	}
}

func TestFileWatcherCloseStopsDelivery(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "grammar.pcomb")
	if err := os.WriteFile(path, []byte("initial"), 0644); err != nil {
		t.Fatal(err)
	}

	fw, err := New(path)
	if err != nil {
		t.Fatal(err)
	}

	events := make(chan Event, 8)
	fw.Handler = func(ev Event) { events <- ev }
	fw.Start(context.Background())

	if err := fw.Close(); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, []byte("after-close"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case ev := <-events:
		t.Fatalf("unexpected event after close: %+v", ev)
	case <-time.After(300 * time.Millisecond):
	}
}
