package service

import (
	"errors"
	"flashdeck_backend/internal/model"
	"flashdeck_backend/internal/repository"
	"flashdeck_backend/internal/util"
	"math/rand"

	"gorm.io/gorm"
)

type StudyMode string

const (
	ModeRandom     StudyMode = "random"
	ModeSequential StudyMode = "sequential"
)

// StudyService 为一次学习会话挑选卡片序列
type StudyService struct {
	FlashcardRepo *repository.FlashcardRepository
}

func NewStudyService(flashcardRepo *repository.FlashcardRepository) *StudyService {
	return &StudyService{FlashcardRepo: flashcardRepo}
}

// SelectSession 生成会话卡片序列。random 模式在会话开始时洗一次牌，
// 会话中途不再打乱；sequential 按卡片创建顺序。
// limit > 0 时截断；空集合返回空序列，由调用方当作"没有可学内容"。
func (s *StudyService) SelectSession(userID uint, setID string, mode StudyMode, limit int) ([]model.Flashcard, error) {
	if _, err := s.FlashcardRepo.FindSet(setID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSetNotFound
		}
		return nil, err
	}

	cards, err := s.FlashcardRepo.FindSetCards(setID)
	if err != nil {
		return nil, err
	}

	switch mode {
	case ModeSequential:
		// 仓库已按创建顺序返回
	case ModeRandom, "":
		shuffled := make([]model.Flashcard, len(cards))
		copy(shuffled, cards)
		rand.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		cards = shuffled
	default:
		return nil, errors.New("mode must be random or sequential")
	}

	if limit > 0 && limit < len(cards) {
		cards = cards[:limit]
	}
	return cards, nil
}
