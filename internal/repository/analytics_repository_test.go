package repository

import (
	"testing"
	"time"

	"flashdeck_backend/internal/model"

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

func seedSet(t *testing.T, db *gorm.DB, userID uint, title string, cardCount int) (*model.FlashcardSet, []model.Flashcard) {
	t.Helper()
	set := &model.FlashcardSet{UserID: userID, Title: title}
	if err := db.Create(set).Error; err != nil {
		t.Fatalf("create set: %v", err)
	}
	cards := make([]model.Flashcard, 0, cardCount)
	for i := 0; i < cardCount; i++ {
		card := model.Flashcard{SetID: set.ID, Front: "front", Back: "back"}
		if err := db.Create(&card).Error; err != nil {
			t.Fatalf("create card: %v", err)
		}
		cards = append(cards, card)
	}
	return set, cards
}

func seedEvent(t *testing.T, db *gorm.DB, userID uint, setID, cardID string, status model.StudyStatus, ts time.Time) *model.StudyEvent {
	t.Helper()
	event := &model.StudyEvent{UserID: userID, SetID: setID, CardID: cardID, Status: status, Timestamp: ts}
	if err := db.Create(event).Error; err != nil {
		t.Fatalf("create event: %v", err)
	}
	return event
}

func TestLatestEventsLastWriteWins(t *testing.T) {
	db := newTestDB(t)
	repo := NewAnalyticsRepository(db)
	set, cards := seedSet(t, db, 1, "Biology: Cells", 2)

	base := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	seedEvent(t, db, 1, set.ID, cards[0].ID, model.StatusIncorrect, base)
	seedEvent(t, db, 1, set.ID, cards[0].ID, model.StatusCorrect, base.Add(time.Minute))
	seedEvent(t, db, 1, set.ID, cards[1].ID, model.StatusSkipped, base)

	events, err := repo.LatestEvents(1)
	if err != nil {
		t.Fatalf("LatestEvents: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}

	byCard := make(map[string]model.StudyEvent)
	for _, e := range events {
		byCard[e.CardID] = e
	}
	if got := byCard[cards[0].ID].Status; got != model.StatusCorrect {
		t.Errorf("card 0 status = %q, want latest event to win (%q)", got, model.StatusCorrect)
	}
	if got := byCard[cards[1].ID].Status; got != model.StatusSkipped {
		t.Errorf("card 1 status = %q, want %q", got, model.StatusSkipped)
	}
}

func TestLatestEventsTieBreakByID(t *testing.T) {
	db := newTestDB(t)
	repo := NewAnalyticsRepository(db)
	set, cards := seedSet(t, db, 1, "Math", 1)

	ts := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	seedEvent(t, db, 1, set.ID, cards[0].ID, model.StatusIncorrect, ts)
	later := seedEvent(t, db, 1, set.ID, cards[0].ID, model.StatusCorrect, ts)

	events, err := repo.LatestEvents(1)
	if err != nil {
		t.Fatalf("LatestEvents: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].ID != later.ID {
		t.Errorf("same-timestamp events resolved to id %d, want larger id %d", events[0].ID, later.ID)
	}
}

func TestLatestEventsIsolatedByUser(t *testing.T) {
	db := newTestDB(t)
	repo := NewAnalyticsRepository(db)
	set, cards := seedSet(t, db, 1, "Math", 1)

	ts := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	seedEvent(t, db, 1, set.ID, cards[0].ID, model.StatusCorrect, ts)

	events, err := repo.LatestEvents(2)
	if err != nil {
		t.Fatalf("LatestEvents: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("user 2 sees %d events, want 0", len(events))
	}
}

func TestDailyActivityGroupsAndOrders(t *testing.T) {
	db := newTestDB(t)
	repo := NewAnalyticsRepository(db)
	set, cards := seedSet(t, db, 1, "Math", 1)

	day1 := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	seedEvent(t, db, 1, set.ID, cards[0].ID, model.StatusCorrect, day1)
	seedEvent(t, db, 1, set.ID, cards[0].ID, model.StatusIncorrect, day1.Add(2*time.Hour))
	seedEvent(t, db, 1, set.ID, cards[0].ID, model.StatusCorrect, day2)

	activity, err := repo.DailyActivity(1)
	if err != nil {
		t.Fatalf("DailyActivity: %v", err)
	}
	if len(activity) != 2 {
		t.Fatalf("got %d days, want 2 (gap day must not be zero-filled)", len(activity))
	}
	if activity[0].Date != "2026-08-30" || activity[0].TotalCount != 1 {
		t.Errorf("newest day = %+v, want 2026-08-30 with 1 event", activity[0])
	}
	if activity[1].Date != "2026-08-28" || activity[1].TotalCount != 2 {
		t.Errorf("older day = %+v, want 2026-08-28 with 2 events", activity[1])
	}
}

func TestRecentCardsDedupAndLimit(t *testing.T) {
	db := newTestDB(t)
	repo := NewAnalyticsRepository(db)
	set, cards := seedSet(t, db, 1, "Biology: Cells", 3)

	base := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	seedEvent(t, db, 1, set.ID, cards[0].ID, model.StatusIncorrect, base)
	seedEvent(t, db, 1, set.ID, cards[1].ID, model.StatusCorrect, base.Add(time.Minute))
	// 重答 card 0：最近列表里它只出现一次，且排到最前
	seedEvent(t, db, 1, set.ID, cards[0].ID, model.StatusCorrect, base.Add(2*time.Minute))
	seedEvent(t, db, 1, set.ID, cards[2].ID, model.StatusSkipped, base.Add(30*time.Second))

	recent, err := repo.RecentCards(1, 10)
	if err != nil {
		t.Fatalf("RecentCards: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("got %d cards, want 3 distinct", len(recent))
	}
	if recent[0].CardID != cards[0].ID {
		t.Errorf("most recent card = %s, want re-answered card %s", recent[0].CardID, cards[0].ID)
	}
	if recent[0].Status != model.StatusCorrect {
		t.Errorf("re-answered card status = %q, want latest status %q", recent[0].Status, model.StatusCorrect)
	}
	if recent[0].SetTitle != "Biology: Cells" || recent[0].Front != "front" {
		t.Errorf("card content not joined: %+v", recent[0])
	}

	limited, err := repo.RecentCards(1, 2)
	if err != nil {
		t.Fatalf("RecentCards limited: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("got %d cards with limit 2, want 2", len(limited))
	}
}

func TestRecentCardsSkipsDeletedContent(t *testing.T) {
	db := newTestDB(t)
	repo := NewAnalyticsRepository(db)
	set, cards := seedSet(t, db, 1, "Math", 2)

	base := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	seedEvent(t, db, 1, set.ID, cards[0].ID, model.StatusCorrect, base)
	seedEvent(t, db, 1, set.ID, cards[1].ID, model.StatusCorrect, base.Add(time.Minute))

	if err := db.Delete(&cards[1]).Error; err != nil {
		t.Fatalf("delete card: %v", err)
	}

	recent, err := repo.RecentCards(1, 10)
	if err != nil {
		t.Fatalf("RecentCards: %v", err)
	}
	if len(recent) != 1 {
		t.Fatalf("got %d cards, want deleted card excluded", len(recent))
	}
	if recent[0].CardID != cards[0].ID {
		t.Errorf("remaining card = %s, want %s", recent[0].CardID, cards[0].ID)
	}
}

func TestSetCardCountsIncludesUnstudiedSets(t *testing.T) {
	db := newTestDB(t)
	repo := NewAnalyticsRepository(db)
	full, _ := seedSet(t, db, 1, "Biology: Cells", 3)
	empty, _ := seedSet(t, db, 1, "Chemistry", 0)
	seedSet(t, db, 2, "Other User", 5)

	sets, counts, err := repo.SetCardCounts(1)
	if err != nil {
		t.Fatalf("SetCardCounts: %v", err)
	}
	if len(sets) != 2 {
		t.Fatalf("got %d sets, want 2 (other user's set excluded)", len(sets))
	}
	if counts[full.ID] != 3 {
		t.Errorf("set with cards count = %d, want 3", counts[full.ID])
	}
	if counts[empty.ID] != 0 {
		t.Errorf("empty set count = %d, want 0", counts[empty.ID])
	}
}
