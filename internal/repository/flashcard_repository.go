package repository

import (
	"flashdeck_backend/internal/model"

	"gorm.io/gorm"
)

type FlashcardRepository struct {
	DB *gorm.DB
}

func NewFlashcardRepository(db *gorm.DB) *FlashcardRepository {
	return &FlashcardRepository{DB: db}
}

func (r *FlashcardRepository) CreateSet(set *model.FlashcardSet) error {
	return r.DB.Create(set).Error
}

// ListSets 返回用户的全部卡片集，按创建时间倒序，附带卡片数量
func (r *FlashcardRepository) ListSets(userID uint) ([]model.SetSummary, error) {
	var sets []model.FlashcardSet
	err := r.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&sets).Error
	if err != nil {
		return nil, err
	}

	summaries := make([]model.SetSummary, 0, len(sets))
	for _, set := range sets {
		var count int64
		if err := r.DB.Model(&model.Flashcard{}).
			Where("set_id = ?", set.ID).
			Count(&count).Error; err != nil {
			return nil, err
		}
		summaries = append(summaries, model.SetSummary{FlashcardSet: set, CardCount: int(count)})
	}
	return summaries, nil
}

// FindSet 只在集合属于该用户时返回，外部集合表现为不存在
func (r *FlashcardRepository) FindSet(setID string, userID uint) (*model.FlashcardSet, error) {
	var set model.FlashcardSet
	err := r.DB.Where("id = ? AND user_id = ?", setID, userID).First(&set).Error
	if err != nil {
		return nil, err
	}
	return &set, nil
}

// FindSetCards 按创建顺序返回卡片，即顺序学习模式的顺序
func (r *FlashcardRepository) FindSetCards(setID string) ([]model.Flashcard, error) {
	var cards []model.Flashcard
	err := r.DB.Where("set_id = ?", setID).
		Order("created_at ASC, id ASC").
		Find(&cards).Error
	if err != nil {
		return nil, err
	}
	return cards, nil
}

func (r *FlashcardRepository) UpdateSet(set *model.FlashcardSet) error {
	return r.DB.Save(set).Error
}

func (r *FlashcardRepository) DeleteSet(set *model.FlashcardSet) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("set_id = ?", set.ID).Delete(&model.Flashcard{}).Error; err != nil {
			return err
		}
		return tx.Delete(set).Error
	})
}

func (r *FlashcardRepository) CreateCard(card *model.Flashcard) error {
	return r.DB.Create(card).Error
}

func (r *FlashcardRepository) FindCard(cardID string) (*model.Flashcard, error) {
	var card model.Flashcard
	err := r.DB.Where("id = ?", cardID).First(&card).Error
	if err != nil {
		return nil, err
	}
	return &card, nil
}

func (r *FlashcardRepository) UpdateCard(card *model.Flashcard) error {
	return r.DB.Save(card).Error
}

func (r *FlashcardRepository) DeleteCard(card *model.Flashcard) error {
	return r.DB.Delete(card).Error
}
