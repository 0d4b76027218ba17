package reconcile

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"flashdeck_backend/internal/model"
)

type fakeFetcher struct {
	mu    sync.Mutex
	rows  []model.SetProgress
	err   error
	calls int
	block chan struct{}
}

func (f *fakeFetcher) GetSetProgress(ctx context.Context) ([]model.SetProgress, error) {
	f.mu.Lock()
	f.calls++
	block := f.block
	rows, err := f.rows, f.err
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return rows, err
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestSyncOnceAppliesFetch(t *testing.T) {
	fetcher := &fakeFetcher{rows: []model.SetProgress{progressRow("a", 2)}}
	merger := NewProgressMerger(nil)
	s := NewSyncer(fetcher, merger, time.Minute, nil)

	if !s.SyncOnce(context.Background()) {
		t.Fatal("sync with fresh data must be applied")
	}

	view := merger.View()
	if len(view) != 1 || view[0].CardsStudied != 2 {
		t.Errorf("view = %+v, want fetched rows applied", view)
	}
}

func TestSyncOnceFetchErrorLeavesViewIntact(t *testing.T) {
	fetcher := &fakeFetcher{rows: []model.SetProgress{progressRow("a", 2)}}
	merger := NewProgressMerger(nil)
	s := NewSyncer(fetcher, merger, time.Minute, nil)
	s.SyncOnce(context.Background())

	fetcher.mu.Lock()
	fetcher.err = errors.New("server unavailable")
	fetcher.mu.Unlock()

	if s.SyncOnce(context.Background()) {
		t.Fatal("failed fetch must not be applied")
	}
	view := merger.View()
	if len(view) != 1 || view[0].CardsStudied != 2 {
		t.Errorf("view = %+v, want previous state kept after fetch error", view)
	}
}

func TestSyncOnceSingleFlight(t *testing.T) {
	block := make(chan struct{})
	fetcher := &fakeFetcher{block: block}
	merger := NewProgressMerger(nil)
	s := NewSyncer(fetcher, merger, time.Minute, nil)

	done := make(chan bool)
	go func() {
		done <- s.SyncOnce(context.Background())
	}()

	// 等第一次拉取进入在途状态
	deadline := time.After(time.Second)
	for fetcher.callCount() == 0 {
		select {
		case <-deadline:
			t.Fatal("first fetch never started")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	if s.SyncOnce(context.Background()) {
		t.Error("second sync must be dropped while one is in flight")
	}
	if fetcher.callCount() != 1 {
		t.Errorf("fetcher called %d times, want 1", fetcher.callCount())
	}

	close(block)
	<-done

	if !s.SyncOnce(context.Background()) {
		t.Error("sync must work again once the in-flight pass finished")
	}
}

func TestRunWakeTriggersSync(t *testing.T) {
	fetcher := &fakeFetcher{rows: []model.SetProgress{progressRow("a", 1)}}
	merger := NewProgressMerger(nil)
	s := NewSyncer(fetcher, merger, time.Hour, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stopped := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(stopped)
	}()

	// Run 启动时先同步一次
	waitFor(t, func() bool { return fetcher.callCount() >= 1 })

	s.Wake()
	waitFor(t, func() bool { return fetcher.callCount() >= 2 })

	s.Stop()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Run did not exit after Stop")
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	fetcher := &fakeFetcher{}
	s := NewSyncer(fetcher, NewProgressMerger(nil), time.Hour, nil)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(stopped)
	}()

	waitFor(t, func() bool { return fetcher.callCount() >= 1 })
	cancel()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Run did not exit after context cancel")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.After(time.Second)
	for !cond() {
		select {
		case <-deadline:
			t.Fatal("condition not met within deadline")
		default:
			time.Sleep(time.Millisecond)
		}
	}
}
