package reconcile

import (
	"flashdeck_backend/internal/model"
	"sync"
	"time"

	"go.uber.org/zap"
)

type bufferedEntry struct {
	progress model.SetProgress
	at       time.Time
}

// ProgressMerger 按新旧程度合并两份进度：本地缓冲的会话快照和
// 服务端的聚合读取。晚于本地缓冲的服务端读取获胜；比上次成功同步
// 更新的本地数据在下次同步前获胜。合并是幂等的，同样的输入跑两遍
// 结果一致。
type ProgressMerger struct {
	mu       sync.Mutex
	local    map[string]bufferedEntry
	server   map[string]model.SetProgress
	order    []string
	serverAt time.Time
	log      *zap.Logger
}

func NewProgressMerger(log *zap.Logger) *ProgressMerger {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProgressMerger{
		local:  make(map[string]bufferedEntry),
		server: make(map[string]model.SetProgress),
		log:    log,
	}
}

// BufferLocal 缓冲一份本地会话快照，同一集合只保留最新的一份
func (m *ProgressMerger) BufferLocal(p model.SetProgress, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.local[p.SetID]; ok && at.Before(existing.at) {
		return
	}
	m.local[p.SetID] = bufferedEntry{progress: p, at: at}
}

// ApplyServer 应用一次服务端读取。fetchedAt 早于已应用状态的响应
// 是网络乱序的迟到包：记日志后整体丢弃，防止旧数据覆盖新状态。
// 返回是否被采纳。
func (m *ProgressMerger) ApplyServer(rows []model.SetProgress, fetchedAt time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if fetchedAt.Before(m.serverAt) {
		m.log.Warn("stale server response discarded",
			zap.Time("fetchedAt", fetchedAt), zap.Time("appliedAt", m.serverAt))
		return false
	}

	m.server = make(map[string]model.SetProgress, len(rows))
	m.order = m.order[:0]
	for _, p := range rows {
		m.server[p.SetID] = p
		m.order = append(m.order, p.SetID)
	}
	m.serverAt = fetchedAt

	// 服务端读取已覆盖的本地缓冲不再保留
	for setID, entry := range m.local {
		if !entry.at.After(fetchedAt) {
			delete(m.local, setID)
		}
	}
	return true
}

// View 返回合并后的视图：以服务端行为基础，叠加仍比上次同步更新的
// 本地缓冲；只存在于本地的集合追加在末尾。
func (m *ProgressMerger) View() []model.SetProgress {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]model.SetProgress, 0, len(m.order)+len(m.local))
	seen := make(map[string]bool, len(m.order))
	for _, setID := range m.order {
		seen[setID] = true
		if entry, ok := m.local[setID]; ok {
			result = append(result, entry.progress)
			continue
		}
		result = append(result, m.server[setID])
	}
	for setID, entry := range m.local {
		if !seen[setID] {
			result = append(result, entry.progress)
		}
	}
	return result
}

// LastSync 返回最近一次被采纳的服务端读取时间
func (m *ProgressMerger) LastSync() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.serverAt
}
