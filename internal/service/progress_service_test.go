package service

import (
	"errors"
	"testing"
	"time"

	"flashdeck_backend/internal/model"
	"flashdeck_backend/internal/repository"
	"flashdeck_backend/internal/util"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&model.User{},
		&model.FlashcardSet{},
		&model.Flashcard{},
		&model.StudyEvent{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newProgressService(db *gorm.DB) *ProgressService {
	return NewProgressService(
		repository.NewStudyEventRepository(db),
		repository.NewAnalyticsRepository(db),
		repository.NewFlashcardRepository(db),
	)
}

func createSet(t *testing.T, db *gorm.DB, userID uint, title string, cardCount int) (*model.FlashcardSet, []model.Flashcard) {
	t.Helper()
	set := &model.FlashcardSet{UserID: userID, Title: title}
	if err := db.Create(set).Error; err != nil {
		t.Fatalf("create set: %v", err)
	}
	cards := make([]model.Flashcard, 0, cardCount)
	for i := 0; i < cardCount; i++ {
		card := model.Flashcard{SetID: set.ID, Front: "q", Back: "a"}
		if err := db.Create(&card).Error; err != nil {
			t.Fatalf("create card: %v", err)
		}
		cards = append(cards, card)
	}
	return set, cards
}

func TestRecordAppendsEvent(t *testing.T) {
	db := newTestDB(t)
	svc := newProgressService(db)
	set, cards := createSet(t, db, 1, "Math", 1)

	before := time.Now()
	event, err := svc.Record(1, set.ID, cards[0].ID, model.StatusCorrect)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if event.ID == 0 {
		t.Error("event not persisted, id is zero")
	}
	if event.Timestamp.Before(before) {
		t.Error("timestamp must be assigned server-side at record time")
	}

	// 重答同一张卡追加新事件而不是覆盖
	if _, err := svc.Record(1, set.ID, cards[0].ID, model.StatusIncorrect); err != nil {
		t.Fatalf("Record again: %v", err)
	}
	var count int64
	db.Model(&model.StudyEvent{}).Count(&count)
	if count != 2 {
		t.Errorf("event count = %d, want 2 (append-only)", count)
	}
}

func TestRecordRejectsInvalidInput(t *testing.T) {
	db := newTestDB(t)
	svc := newProgressService(db)
	set, cards := createSet(t, db, 1, "Math", 1)
	otherSet, otherCards := createSet(t, db, 2, "Not Yours", 1)

	tests := []struct {
		name    string
		userID  uint
		setID   string
		cardID  string
		status  model.StudyStatus
		wantErr error
	}{
		{"invalid status", 1, set.ID, cards[0].ID, "maybe", util.ErrInvalidStatus},
		{"unknown set", 1, "no-such-set", cards[0].ID, model.StatusCorrect, util.ErrSetNotFound},
		{"another user's set", 1, otherSet.ID, otherCards[0].ID, model.StatusCorrect, util.ErrSetNotFound},
		{"card from another set", 1, set.ID, otherCards[0].ID, model.StatusCorrect, util.ErrCardNotFound},
		{"unknown card", 1, set.ID, "no-such-card", model.StatusCorrect, util.ErrCardNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Record(tt.userID, tt.setID, tt.cardID, tt.status)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Record() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	var count int64
	db.Model(&model.StudyEvent{}).Count(&count)
	if count != 0 {
		t.Errorf("rejected records must not write events, found %d", count)
	}
}

func TestGetSetProgressCountsLatestPerCard(t *testing.T) {
	db := newTestDB(t)
	svc := newProgressService(db)
	set, cards := createSet(t, db, 1, "Biology: Cells", 3)
	createSet(t, db, 1, "Chemistry", 5) // 从未学过

	mustRecord(t, svc, 1, set.ID, cards[0].ID, model.StatusIncorrect)
	mustRecord(t, svc, 1, set.ID, cards[0].ID, model.StatusCorrect) // 重答后只算 correct
	mustRecord(t, svc, 1, set.ID, cards[1].ID, model.StatusIncorrect)
	mustRecord(t, svc, 1, set.ID, cards[2].ID, model.StatusSkipped)

	progress, err := svc.GetSetProgress(1)
	if err != nil {
		t.Fatalf("GetSetProgress: %v", err)
	}
	if len(progress) != 2 {
		t.Fatalf("got %d sets, want 2 including the never-studied one", len(progress))
	}

	byID := make(map[string]model.SetProgress)
	for _, p := range progress {
		byID[p.SetID] = p
	}

	studied := byID[set.ID]
	if studied.CardsStudied != 3 {
		t.Errorf("cards_studied = %d, want 3 (distinct cards, not events)", studied.CardsStudied)
	}
	if studied.CorrectCount != 1 || studied.IncorrectCount != 1 {
		t.Errorf("correct/incorrect = %d/%d, want 1/1 (latest event per card)", studied.CorrectCount, studied.IncorrectCount)
	}
	if studied.TotalCards != 3 {
		t.Errorf("total_cards = %d, want 3", studied.TotalCards)
	}
	if studied.CardStatuses[cards[0].ID] != model.StatusCorrect {
		t.Errorf("card 0 status = %q, want re-answer to win", studied.CardStatuses[cards[0].ID])
	}

	for id, p := range byID {
		if id == set.ID {
			continue
		}
		if p.CardsStudied != 0 || p.CorrectCount != 0 || p.IncorrectCount != 0 {
			t.Errorf("never-studied set has nonzero tallies: %+v", p)
		}
		if p.TotalCards != 5 {
			t.Errorf("never-studied set total_cards = %d, want 5 from content", p.TotalCards)
		}
	}

	// 读取是纯派生的：重复读结果一致
	again, err := svc.GetSetProgress(1)
	if err != nil {
		t.Fatalf("GetSetProgress again: %v", err)
	}
	if len(again) != len(progress) {
		t.Errorf("repeated read changed result size: %d vs %d", len(again), len(progress))
	}
}

func TestGetSetProgressZeroCardSet(t *testing.T) {
	db := newTestDB(t)
	svc := newProgressService(db)
	createSet(t, db, 1, "Empty Set", 0)

	progress, err := svc.GetSetProgress(1)
	if err != nil {
		t.Fatalf("GetSetProgress: %v", err)
	}
	if len(progress) != 1 {
		t.Fatalf("got %d sets, want 1", len(progress))
	}
	p := progress[0]
	if p.CardsStudied != 0 || p.TotalCards != 0 || p.CorrectCount != 0 || p.IncorrectCount != 0 {
		t.Errorf("zero-card set progress = %+v, want all zeroes", p)
	}
	if p.Percent() != 0 {
		t.Errorf("zero-card set percent = %d, want 0", p.Percent())
	}
}

func TestGetTopicProgressGroupsByTitlePrefix(t *testing.T) {
	db := newTestDB(t)
	svc := newProgressService(db)
	bio1, bio1Cards := createSet(t, db, 1, "Biology: Cells", 2)
	_, _ = createSet(t, db, 1, "Biology: Genetics", 3)
	plain, plainCards := createSet(t, db, 1, "Daily Words", 4)

	mustRecord(t, svc, 1, bio1.ID, bio1Cards[0].ID, model.StatusCorrect)
	mustRecord(t, svc, 1, plain.ID, plainCards[0].ID, model.StatusIncorrect)

	topics, err := svc.GetTopicProgress(1)
	if err != nil {
		t.Fatalf("GetTopicProgress: %v", err)
	}

	byTopic := make(map[string]model.TopicProgress)
	for _, tp := range topics {
		byTopic[tp.Topic] = tp
	}

	bio, ok := byTopic["Biology"]
	if !ok {
		t.Fatal("missing Biology topic")
	}
	if bio.TotalCards != 5 || bio.CardsStudied != 1 || bio.CorrectCount != 1 {
		t.Errorf("Biology = %+v, want totals summed across both sets", bio)
	}

	general, ok := byTopic[model.GeneralTopic]
	if !ok {
		t.Fatalf("colon-less title must land in %q", model.GeneralTopic)
	}
	if general.TotalCards != 4 || general.IncorrectCount != 1 {
		t.Errorf("General = %+v, want the plain-titled set's numbers", general)
	}
}

func TestGetCardProgressMapsLatestStatus(t *testing.T) {
	db := newTestDB(t)
	svc := newProgressService(db)
	set, cards := createSet(t, db, 1, "Math", 2)

	mustRecord(t, svc, 1, set.ID, cards[0].ID, model.StatusSkipped)
	mustRecord(t, svc, 1, set.ID, cards[0].ID, model.StatusCorrect)

	progress, err := svc.GetCardProgress(1)
	if err != nil {
		t.Fatalf("GetCardProgress: %v", err)
	}
	if len(progress) != 1 {
		t.Fatalf("got %d cards, want 1", len(progress))
	}
	if progress[cards[0].ID].Status != model.StatusCorrect {
		t.Errorf("status = %q, want latest", progress[cards[0].ID].Status)
	}
	if _, ok := progress[cards[1].ID]; ok {
		t.Error("never-studied card must not appear in card progress")
	}
}

func TestGetRecentCardsDefaultLimit(t *testing.T) {
	db := newTestDB(t)
	svc := newProgressService(db)
	set, cards := createSet(t, db, 1, "Math", 15)

	for _, c := range cards {
		mustRecord(t, svc, 1, set.ID, c.ID, model.StatusCorrect)
	}

	recent, err := svc.GetRecentCards(1, 0)
	if err != nil {
		t.Fatalf("GetRecentCards: %v", err)
	}
	if len(recent) != 10 {
		t.Errorf("got %d cards with limit 0, want default 10", len(recent))
	}
}

func mustRecord(t *testing.T, svc *ProgressService, userID uint, setID, cardID string, status model.StudyStatus) {
	t.Helper()
	if _, err := svc.Record(userID, setID, cardID, status); err != nil {
		t.Fatalf("Record(%s, %s, %s): %v", setID, cardID, status, err)
	}
}
