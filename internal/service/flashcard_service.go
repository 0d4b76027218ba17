package service

import (
	"context"
	"encoding/json"
	"errors"
	"flashdeck_backend/internal/config"
	"flashdeck_backend/internal/model"
	"flashdeck_backend/internal/repository"
	"flashdeck_backend/internal/util"
	"flashdeck_backend/pkg/logger"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const setCacheKeyPrefix = "flashdeck:set:"

// FlashcardService 管理卡片集和卡片内容。
// 集合详情（含卡片）走 Redis 读缓存，任何写操作显式失效对应键。
// 进度视图不经过这里，也绝不缓存。
type FlashcardService struct {
	Repo   *repository.FlashcardRepository
	Redis  *redis.Client
	setTTL time.Duration
}

func NewFlashcardService(repo *repository.FlashcardRepository, rdb *redis.Client, cfg *config.Config) *FlashcardService {
	return &FlashcardService{
		Repo:   repo,
		Redis:  rdb,
		setTTL: time.Duration(cfg.Cache.SetTTLMinutes) * time.Minute,
	}
}

func (s *FlashcardService) CreateSet(userID uint, title, description string) (*model.FlashcardSet, error) {
	if len(title) < 2 || len(title) > 100 {
		return nil, errors.New("title must be between 2 and 100 characters")
	}

	set := &model.FlashcardSet{
		UserID:      userID,
		Title:       title,
		Description: description,
	}
	if err := s.Repo.CreateSet(set); err != nil {
		return nil, err
	}
	return set, nil
}

func (s *FlashcardService) ListSets(userID uint) ([]model.SetSummary, error) {
	return s.Repo.ListSets(userID)
}

// GetSetWithCards 返回集合及其卡片，优先读缓存
func (s *FlashcardService) GetSetWithCards(ctx context.Context, setID string, userID uint) (*model.FlashcardSet, error) {
	cacheKey := s.cacheKey(setID, userID)

	if s.Redis != nil {
		val, err := s.Redis.Get(ctx, cacheKey).Result()
		if err == nil {
			var cached model.FlashcardSet
			if err := json.Unmarshal([]byte(val), &cached); err == nil {
				return &cached, nil
			}
		} else if err != redis.Nil {
			logger.Log.Warn("set cache read failed", zap.Error(err))
		}
	}

	set, err := s.Repo.FindSet(setID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSetNotFound
		}
		return nil, err
	}

	cards, err := s.Repo.FindSetCards(setID)
	if err != nil {
		return nil, err
	}
	set.Cards = cards

	if s.Redis != nil {
		data, err := json.Marshal(set)
		if err == nil {
			if err := s.Redis.Set(ctx, cacheKey, data, s.setTTL).Err(); err != nil {
				logger.Log.Warn("set cache write failed", zap.Error(err))
			}
		}
	}

	return set, nil
}

func (s *FlashcardService) UpdateSet(ctx context.Context, setID string, userID uint, title, description *string) (*model.FlashcardSet, error) {
	set, err := s.Repo.FindSet(setID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSetNotFound
		}
		return nil, err
	}

	if title != nil {
		if len(*title) < 2 || len(*title) > 100 {
			return nil, errors.New("title must be between 2 and 100 characters")
		}
		set.Title = *title
	}
	if description != nil {
		set.Description = *description
	}

	if err := s.Repo.UpdateSet(set); err != nil {
		return nil, err
	}
	s.invalidate(ctx, setID, userID)
	return set, nil
}

func (s *FlashcardService) DeleteSet(ctx context.Context, setID string, userID uint) (*model.FlashcardSet, error) {
	set, err := s.Repo.FindSet(setID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSetNotFound
		}
		return nil, err
	}

	if err := s.Repo.DeleteSet(set); err != nil {
		return nil, err
	}
	s.invalidate(ctx, setID, userID)
	return set, nil
}

func (s *FlashcardService) CreateCard(ctx context.Context, setID string, userID uint, front, back string) (*model.Flashcard, error) {
	if err := validateCardSides(front, back); err != nil {
		return nil, err
	}

	if _, err := s.Repo.FindSet(setID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSetNotFound
		}
		return nil, err
	}

	card := &model.Flashcard{
		SetID: setID,
		Front: front,
		Back:  back,
	}
	if err := s.Repo.CreateCard(card); err != nil {
		return nil, err
	}
	s.invalidate(ctx, setID, userID)
	return card, nil
}

func (s *FlashcardService) UpdateCard(ctx context.Context, cardID string, userID uint, front, back *string) (*model.Flashcard, error) {
	card, err := s.findOwnedCard(cardID, userID)
	if err != nil {
		return nil, err
	}

	if front != nil {
		card.Front = *front
	}
	if back != nil {
		card.Back = *back
	}
	if err := validateCardSides(card.Front, card.Back); err != nil {
		return nil, err
	}

	if err := s.Repo.UpdateCard(card); err != nil {
		return nil, err
	}
	s.invalidate(ctx, card.SetID, userID)
	return card, nil
}

func (s *FlashcardService) DeleteCard(ctx context.Context, cardID string, userID uint) (*model.Flashcard, error) {
	card, err := s.findOwnedCard(cardID, userID)
	if err != nil {
		return nil, err
	}

	if err := s.Repo.DeleteCard(card); err != nil {
		return nil, err
	}
	s.invalidate(ctx, card.SetID, userID)
	return card, nil
}

// findOwnedCard 通过卡片所在集合的归属做权限校验
func (s *FlashcardService) findOwnedCard(cardID string, userID uint) (*model.Flashcard, error) {
	card, err := s.Repo.FindCard(cardID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCardNotFound
		}
		return nil, err
	}
	if _, err := s.Repo.FindSet(card.SetID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCardNotFound
		}
		return nil, err
	}
	return card, nil
}

func (s *FlashcardService) cacheKey(setID string, userID uint) string {
	return fmt.Sprintf("%s%d:%s", setCacheKeyPrefix, userID, setID)
}

func (s *FlashcardService) invalidate(ctx context.Context, setID string, userID uint) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(ctx, s.cacheKey(setID, userID)).Err(); err != nil {
		logger.Log.Warn("set cache invalidation failed", zap.Error(err), zap.String("setId", setID))
	}
}

func validateCardSides(front, back string) error {
	if front == "" {
		return errors.New("front side is required")
	}
	if back == "" {
		return errors.New("back side is required")
	}
	if len(front) > 1000 || len(back) > 1000 {
		return errors.New("card sides must be less than 1000 characters")
	}
	return nil
}
