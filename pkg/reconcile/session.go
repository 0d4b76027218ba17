// Package reconcile 实现客户端的进度调和：
// 学习会话内的乐观状态机、与服务端聚合视图的按时间合并，
// 以及驱动两者的周期同步循环。
package reconcile

import (
	"context"
	"flashdeck_backend/internal/model"
	"sync"
	"time"

	"go.uber.org/zap"
)

type CardState int

const (
	StateUnseen CardState = iota
	StatePending
	StateConfirmed
)

type cardEntry struct {
	state  CardState
	status model.StudyStatus
}

type Tally struct {
	Studied   int
	Correct   int
	Incorrect int
}

// SessionTracker 跟踪一次学习会话内每张卡片的乐观状态。
// 用户作答后 UI 立即生效（pending），服务端确认后转 confirmed；
// 持久化失败时保留乐观状态——学习流程的可用性优先于计数的强一致。
type SessionTracker struct {
	mu         sync.Mutex
	setID      string
	setTitle   string
	totalCards int
	cards      map[string]cardEntry
	tally      Tally
	updatedAt  time.Time
	log        *zap.Logger
}

func NewSessionTracker(setID, setTitle string, totalCards int, log *zap.Logger) *SessionTracker {
	if log == nil {
		log = zap.NewNop()
	}
	return &SessionTracker{
		setID:      setID,
		setTitle:   setTitle,
		totalCards: totalCards,
		cards:      make(map[string]cardEntry),
		log:        log,
	}
}

// Answer 应用一次作答的乐观更新。重答已有状态的卡片时按带符号增量
// 调整计数：先撤销旧状态的贡献，再计入新状态，同一张卡绝不同时
// 计入两种状态。
func (t *SessionTracker) Answer(cardID string, status model.StudyStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()

	prev, seen := t.cards[cardID]
	if !seen || prev.state == StateUnseen {
		t.tally.Studied++
	} else {
		switch prev.status {
		case model.StatusCorrect:
			t.tally.Correct--
		case model.StatusIncorrect:
			t.tally.Incorrect--
		}
	}

	switch status {
	case model.StatusCorrect:
		t.tally.Correct++
	case model.StatusIncorrect:
		t.tally.Incorrect++
	}

	t.cards[cardID] = cardEntry{state: StatePending, status: status}
	t.updatedAt = time.Now()
}

// Confirm 在服务端确认写入后把 pending 转为 confirmed。
// 卡片在确认到达前被重答时，迟到的确认作废。
func (t *SessionTracker) Confirm(cardID string, status model.StudyStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.cards[cardID]
	if !ok || entry.state != StatePending || entry.status != status {
		t.log.Debug("stale confirmation ignored",
			zap.String("cardId", cardID), zap.String("status", string(status)))
		return
	}
	entry.state = StateConfirmed
	t.cards[cardID] = entry
}

// Fail 记录持久化失败。乐观状态和计数都保留：用户已经看到作答生效，
// 回滚只会让界面倒退。
func (t *SessionTracker) Fail(cardID string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.log.Warn("failed to persist answer, keeping optimistic state",
		zap.String("cardId", cardID), zap.Error(err))
}

func (t *SessionTracker) State(cardID string) (CardState, model.StudyStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.cards[cardID]
	if !ok {
		return StateUnseen, ""
	}
	return entry.state, entry.status
}

func (t *SessionTracker) Tally() Tally {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tally
}

// Snapshot 把会话状态导出为一行 SetProgress，用于合并进聚合视图
func (t *SessionTracker) Snapshot() (model.SetProgress, time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p := model.SetProgress{
		SetID:          t.setID,
		SetTitle:       t.setTitle,
		CardsStudied:   t.tally.Studied,
		TotalCards:     t.totalCards,
		CorrectCount:   t.tally.Correct,
		IncorrectCount: t.tally.Incorrect,
	}
	if len(t.cards) > 0 {
		p.CardStatuses = make(map[string]model.StudyStatus, len(t.cards))
		for id, entry := range t.cards {
			p.CardStatuses[id] = entry.status
		}
	}
	return p, t.updatedAt
}

// Reset 清空会话的本地显示状态。服务端事件表只追加、没有删除，
// 所以重置纯属客户端行为。
func (t *SessionTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.cards = make(map[string]cardEntry)
	t.tally = Tally{}
	t.updatedAt = time.Now()
}

// ProgressRecorder 是写入端的最小接口，pkg/client.Client 实现它
type ProgressRecorder interface {
	RecordProgress(ctx context.Context, setID, cardID string, status model.StudyStatus) (*model.StudyEvent, error)
}

// SubmitAnswer 先应用乐观更新并写入本地缓冲，再同步持久化。
// 失败只记日志，不回滚，也不阻断继续答题。
func SubmitAnswer(ctx context.Context, rec ProgressRecorder, tracker *SessionTracker, merger *ProgressMerger, cardID string, status model.StudyStatus) {
	tracker.Answer(cardID, status)

	if merger != nil {
		snapshot, at := tracker.Snapshot()
		merger.BufferLocal(snapshot, at)
	}

	if _, err := rec.RecordProgress(ctx, tracker.setID, cardID, status); err != nil {
		tracker.Fail(cardID, err)
		return
	}
	tracker.Confirm(cardID, status)
}
