package reconcile

import (
	"context"
	"flashdeck_backend/internal/model"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// ProgressFetcher 是读取端的最小接口，pkg/client.Client 实现它
type ProgressFetcher interface {
	GetSetProgress(ctx context.Context) ([]model.SetProgress, error)
}

// Syncer 周期性地从服务端拉取聚合进度并交给 ProgressMerger。
// 除定时触发外可通过 Wake 立即触发一次；任何时刻最多一次拉取在途，
// 重复触发会被合并。
type Syncer struct {
	fetcher  ProgressFetcher
	merger   *ProgressMerger
	interval time.Duration
	timeout  time.Duration
	wake     chan struct{}
	done     chan struct{}
	inflight int32
	log      *zap.Logger
}

func NewSyncer(fetcher ProgressFetcher, merger *ProgressMerger, interval time.Duration, log *zap.Logger) *Syncer {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Syncer{
		fetcher:  fetcher,
		merger:   merger,
		interval: interval,
		timeout:  10 * time.Second,
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
		log:      log,
	}
}

// Run 阻塞运行同步循环，直到 ctx 取消或 Stop 被调用
func (s *Syncer) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.SyncOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case <-ticker.C:
			s.SyncOnce(ctx)
		case <-s.wake:
			s.SyncOnce(ctx)
		}
	}
}

// Wake 请求尽快执行一次同步。已有同步在排队时为空操作。
func (s *Syncer) Wake() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Syncer) Stop() {
	select {
	case <-s.done:
	default:
		close(s.done)
	}
}

// SyncOnce 执行一次拉取并合并。fetchedAt 在发起请求前采样，
// 保证乱序到达的响应能按发起顺序被识别为过期。
func (s *Syncer) SyncOnce(ctx context.Context) bool {
	if !atomic.CompareAndSwapInt32(&s.inflight, 0, 1) {
		return false
	}
	defer atomic.StoreInt32(&s.inflight, 0)

	fetchedAt := time.Now()

	fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.fetcher.GetSetProgress(fetchCtx)
	if err != nil {
		s.log.Warn("progress sync failed", zap.Error(err))
		return false
	}

	return s.merger.ApplyServer(rows, fetchedAt)
}
