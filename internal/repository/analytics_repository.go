package repository

import (
	"flashdeck_backend/internal/model"

	"gorm.io/gorm"
)

// AnalyticsRepository 从只追加的事件表派生进度视图。
// 所有查询按用户隔离；不存在的用户得到空结果而不是错误。
type AnalyticsRepository struct {
	DB *gorm.DB
}

func NewAnalyticsRepository(db *gorm.DB) *AnalyticsRepository {
	return &AnalyticsRepository{DB: db}
}

// LatestEvents 返回该用户每张卡片最近一次事件（去重是整个聚合的核心：
// 同一张卡可能有多条事件，只有最新一条代表当前状态）。
// 时间戳相同的并发写入按事件 ID 取大者，保证并发读者结论一致。
func (r *AnalyticsRepository) LatestEvents(userID uint) ([]model.StudyEvent, error) {
	var events []model.StudyEvent
	err := r.DB.Raw(`
		SELECT e.*
		FROM study_events e
		WHERE e.user_id = ?
		  AND e.id = (
			SELECT e2.id
			FROM study_events e2
			WHERE e2.user_id = e.user_id AND e2.card_id = e.card_id
			ORDER BY e2.timestamp DESC, e2.id DESC
			LIMIT 1
		  )`, userID).Scan(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

// DailyActivity 按自然日统计事件量，最近 30 个有记录的日期，降序。
// 没有事件的日期不补零。
func (r *AnalyticsRepository) DailyActivity(userID uint) ([]model.DailyActivity, error) {
	var activity []model.DailyActivity
	err := r.DB.Raw(`
		SELECT DATE(timestamp) AS date,
		       COUNT(*) AS total_count
		FROM study_events
		WHERE user_id = ?
		GROUP BY DATE(timestamp)
		ORDER BY date DESC
		LIMIT 30`, userID).Scan(&activity).Error
	if err != nil {
		return nil, err
	}
	return activity, nil
}

// RecentCards 返回最近学过的卡片，按卡片去重后取最新事件，
// 按事件时间倒序截断到 limit，并在读取时补全卡面内容和集合标题。
func (r *AnalyticsRepository) RecentCards(userID uint, limit int) ([]model.RecentCard, error) {
	var cards []model.RecentCard
	err := r.DB.Raw(`
		SELECT e.card_id,
		       e.set_id,
		       f.front,
		       f.back,
		       fs.title AS set_title,
		       e.status,
		       e.timestamp
		FROM study_events e
		JOIN flashcards f ON f.id = e.card_id AND f.deleted_at IS NULL
		JOIN flashcard_sets fs ON fs.id = e.set_id AND fs.deleted_at IS NULL
		WHERE e.user_id = ?
		  AND e.id = (
			SELECT e2.id
			FROM study_events e2
			WHERE e2.user_id = e.user_id AND e2.card_id = e.card_id
			ORDER BY e2.timestamp DESC, e2.id DESC
			LIMIT 1
		  )
		ORDER BY e.timestamp DESC, e.id DESC
		LIMIT ?`, userID, limit).Scan(&cards).Error
	if err != nil {
		return nil, err
	}
	return cards, nil
}

// setCardCount 供 SetCardCounts 扫描用
type setCardCount struct {
	SetID string
	Title string
	Count int
}

// SetCardCounts 返回用户全部卡片集及各自的卡片总数。
// 总数来自内容表而非学习历史，从未学过的集合也会出现。
func (r *AnalyticsRepository) SetCardCounts(userID uint) ([]model.FlashcardSet, map[string]int, error) {
	var sets []model.FlashcardSet
	if err := r.DB.Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&sets).Error; err != nil {
		return nil, nil, err
	}

	var counts []setCardCount
	err := r.DB.Raw(`
		SELECT fs.id AS set_id, fs.title AS title, COUNT(f.id) AS count
		FROM flashcard_sets fs
		LEFT JOIN flashcards f ON f.set_id = fs.id AND f.deleted_at IS NULL
		WHERE fs.user_id = ? AND fs.deleted_at IS NULL
		GROUP BY fs.id, fs.title`, userID).Scan(&counts).Error
	if err != nil {
		return nil, nil, err
	}

	countMap := make(map[string]int, len(counts))
	for _, c := range counts {
		countMap[c.SetID] = c.Count
	}
	return sets, countMap, nil
}
