package model

import (
	"time"
)

type StudyStatus string

const (
	StatusCorrect   StudyStatus = "correct"
	StatusIncorrect StudyStatus = "incorrect"
	StatusSkipped   StudyStatus = "skipped"
)

func (s StudyStatus) Valid() bool {
	switch s {
	case StatusCorrect, StatusIncorrect, StatusSkipped:
		return true
	}
	return false
}

// StudyEvent 记录一次答题结果。只追加，不修改、不删除：
// 纠正答案的方式是再记一条新事件。
// swagger:model StudyEvent
type StudyEvent struct {
	ID        uint        `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint        `gorm:"index:idx_events_user_card;not null" json:"user_id"`
	SetID     string      `gorm:"index;type:varchar(36);not null" json:"set_id"`
	CardID    string      `gorm:"index:idx_events_user_card;type:varchar(36);not null" json:"card_id"`
	Status    StudyStatus `gorm:"type:varchar(16);not null" json:"status"`
	Timestamp time.Time   `gorm:"index;not null" json:"timestamp"`
}

func (StudyEvent) TableName() string {
	return "study_events"
}
