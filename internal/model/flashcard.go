package model

// swagger:model FlashcardSet
type FlashcardSet struct {
	UUIDBase
	UserID      uint   `gorm:"index;not null" json:"userId"`
	Title       string `gorm:"size:100;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	IsPublic    bool   `gorm:"default:false" json:"isPublic"`

	Cards []Flashcard `gorm:"foreignKey:SetID" json:"cards,omitempty"`
}

func (FlashcardSet) TableName() string {
	return "flashcard_sets"
}

// swagger:model Flashcard
type Flashcard struct {
	UUIDBase
	SetID string `gorm:"index;type:varchar(36);not null" json:"setId"`
	Front string `gorm:"type:text;not null" json:"front"`
	Back  string `gorm:"type:text;not null" json:"back"`
}

func (Flashcard) TableName() string {
	return "flashcards"
}

// SetSummary 是卡片集列表项，带卡片数量
// swagger:model SetSummary
type SetSummary struct {
	FlashcardSet
	CardCount int `json:"card_count"`
}
