package model

import (
	"math"
	"strings"
	"time"
)

// GeneralTopic 收纳标题中不含 ":" 的卡片集
const GeneralTopic = "General"

// CardProgress 是某张卡片的当前状态：该卡片时间戳最大的那条事件。
// 时间戳相同时事件 ID 大者胜出。派生数据，读时计算，从不落库。
// swagger:model CardProgress
type CardProgress struct {
	CardID        string      `json:"card_id"`
	SetID         string      `json:"set_id"`
	Status        StudyStatus `json:"status"`
	LastTimestamp time.Time   `json:"last_timestamp"`
}

// swagger:model SetProgress
type SetProgress struct {
	SetID          string                 `json:"set_id"`
	SetTitle       string                 `json:"set_title"`
	CardsStudied   int                    `json:"cards_studied"`
	TotalCards     int                    `json:"total_cards"`
	CorrectCount   int                    `json:"correct_count"`
	IncorrectCount int                    `json:"incorrect_count"`
	CardStatuses   map[string]StudyStatus `json:"card_statuses,omitempty"`
}

// Percent 完成度百分比，total 为 0 时返回 0
func (p SetProgress) Percent() int {
	if p.TotalCards == 0 {
		return 0
	}
	return int(math.Round(100 * float64(p.CardsStudied) / float64(p.TotalCards)))
}

// swagger:model TopicProgress
type TopicProgress struct {
	Topic          string `json:"topic"`
	CardsStudied   int    `json:"cards_studied"`
	TotalCards     int    `json:"total_cards"`
	CorrectCount   int    `json:"correct_count"`
	IncorrectCount int    `json:"incorrect_count"`
}

// swagger:model DailyActivity
type DailyActivity struct {
	Date       string `json:"date"`
	TotalCount int    `json:"total_count"`
}

// swagger:model RecentCard
type RecentCard struct {
	CardID    string      `json:"card_id"`
	SetID     string      `json:"set_id"`
	Front     string      `json:"front"`
	Back      string      `json:"back"`
	SetTitle  string      `json:"set_title"`
	Status    StudyStatus `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
}

// TopicOf 取标题第一个 ":" 之前的部分作为主题分组键；
// 不含 ":" 的标题统一归入 GeneralTopic（所有端点一致）。
func TopicOf(setTitle string) string {
	before, _, found := strings.Cut(setTitle, ":")
	if !found {
		return GeneralTopic
	}
	topic := strings.TrimSpace(before)
	if topic == "" {
		return GeneralTopic
	}
	return topic
}
