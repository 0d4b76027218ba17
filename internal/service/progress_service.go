package service

import (
	"errors"
	"flashdeck_backend/internal/model"
	"flashdeck_backend/internal/repository"
	"flashdeck_backend/internal/util"
	"flashdeck_backend/pkg/monitoring"
	"time"

	"gorm.io/gorm"
)

// ProgressService 负责学习事件的写入和各种进度视图的派生。
// 事件表是唯一事实来源，所有视图在读时重新计算，没有缓存也就没有失效问题。
type ProgressService struct {
	EventRepo     *repository.StudyEventRepository
	AnalyticsRepo *repository.AnalyticsRepository
	FlashcardRepo *repository.FlashcardRepository
}

func NewProgressService(
	eventRepo *repository.StudyEventRepository,
	analyticsRepo *repository.AnalyticsRepository,
	flashcardRepo *repository.FlashcardRepository,
) *ProgressService {
	return &ProgressService{
		EventRepo:     eventRepo,
		AnalyticsRepo: analyticsRepo,
		FlashcardRepo: flashcardRepo,
	}
}

// Record 追加一条学习事件，时间戳由服务端指定。
// 集合或卡片不属于该用户时按不存在处理，不泄露"存在但无权限"。
func (s *ProgressService) Record(userID uint, setID, cardID string, status model.StudyStatus) (*model.StudyEvent, error) {
	if !status.Valid() {
		return nil, util.ErrInvalidStatus
	}

	if _, err := s.FlashcardRepo.FindSet(setID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSetNotFound
		}
		return nil, err
	}

	card, err := s.FlashcardRepo.FindCard(cardID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCardNotFound
		}
		return nil, err
	}
	if card.SetID != setID {
		return nil, util.ErrCardNotFound
	}

	event := &model.StudyEvent{
		UserID:    userID,
		SetID:     setID,
		CardID:    cardID,
		Status:    status,
		Timestamp: time.Now(),
	}
	if err := s.EventRepo.Append(event); err != nil {
		return nil, err
	}

	monitoring.StudyEventCounter.WithLabelValues(string(status)).Inc()
	return event, nil
}

// GetCardProgress 返回 card_id → 当前状态的映射（每卡取最新事件）
func (s *ProgressService) GetCardProgress(userID uint) (map[string]model.CardProgress, error) {
	events, err := s.AnalyticsRepo.LatestEvents(userID)
	if err != nil {
		return nil, err
	}

	progress := make(map[string]model.CardProgress, len(events))
	for _, e := range events {
		progress[e.CardID] = model.CardProgress{
			CardID:        e.CardID,
			SetID:         e.SetID,
			Status:        e.Status,
			LastTimestamp: e.Timestamp,
		}
	}
	return progress, nil
}

// GetSetProgress 返回用户每个卡片集的进度，包括从未学过的集合
// （total_cards 仍然填充，其余为零）。
func (s *ProgressService) GetSetProgress(userID uint) ([]model.SetProgress, error) {
	sets, cardCounts, err := s.AnalyticsRepo.SetCardCounts(userID)
	if err != nil {
		return nil, err
	}

	latest, err := s.AnalyticsRepo.LatestEvents(userID)
	if err != nil {
		return nil, err
	}

	bySet := make(map[string][]model.StudyEvent)
	for _, e := range latest {
		bySet[e.SetID] = append(bySet[e.SetID], e)
	}

	result := make([]model.SetProgress, 0, len(sets))
	for _, set := range sets {
		p := model.SetProgress{
			SetID:      set.ID,
			SetTitle:   set.Title,
			TotalCards: cardCounts[set.ID],
		}
		events := bySet[set.ID]
		if len(events) > 0 {
			p.CardStatuses = make(map[string]model.StudyStatus, len(events))
		}
		for _, e := range events {
			p.CardsStudied++
			switch e.Status {
			case model.StatusCorrect:
				p.CorrectCount++
			case model.StatusIncorrect:
				p.IncorrectCount++
			}
			p.CardStatuses[e.CardID] = e.Status
		}
		result = append(result, p)
	}
	return result, nil
}

// GetTopicProgress 按标题主题规则聚合集合进度，
// 分组顺序取主题在集合列表中首次出现的顺序。
func (s *ProgressService) GetTopicProgress(userID uint) ([]model.TopicProgress, error) {
	setProgress, err := s.GetSetProgress(userID)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int)
	var topics []model.TopicProgress
	for _, p := range setProgress {
		topic := model.TopicOf(p.SetTitle)
		i, ok := index[topic]
		if !ok {
			i = len(topics)
			index[topic] = i
			topics = append(topics, model.TopicProgress{Topic: topic})
		}
		topics[i].CardsStudied += p.CardsStudied
		topics[i].TotalCards += p.TotalCards
		topics[i].CorrectCount += p.CorrectCount
		topics[i].IncorrectCount += p.IncorrectCount
	}
	return topics, nil
}

func (s *ProgressService) GetDailyActivity(userID uint) ([]model.DailyActivity, error) {
	return s.AnalyticsRepo.DailyActivity(userID)
}

func (s *ProgressService) GetRecentCards(userID uint, limit int) ([]model.RecentCard, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.AnalyticsRepo.RecentCards(userID, limit)
}
