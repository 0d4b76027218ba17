package repository

import (
	"flashdeck_backend/internal/model"

	"gorm.io/gorm"
)

// StudyEventRepository 是事件表的唯一写入口。
// 表是只追加的：这里没有 Update/Delete，其他地方也不允许有。
type StudyEventRepository struct {
	DB *gorm.DB
}

func NewStudyEventRepository(db *gorm.DB) *StudyEventRepository {
	return &StudyEventRepository{DB: db}
}

func (r *StudyEventRepository) Append(event *model.StudyEvent) error {
	return r.DB.Create(event).Error
}

func (r *StudyEventRepository) CountByUser(userID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.StudyEvent{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}
