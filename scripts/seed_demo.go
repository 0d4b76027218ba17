// 演示数据导入脚本
//
// 创建一个演示账号和几个卡片集，并补上一些学习事件，
// 方便本地起服务后直接查看进度接口的返回。
//
// 用法: go run scripts/seed_demo.go
package main

import (
	"log"
	"time"

	"flashdeck_backend/internal/config"
	"flashdeck_backend/internal/model"
	"flashdeck_backend/internal/repository"
	"flashdeck_backend/pkg/database"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	cardRepo := repository.NewFlashcardRepository(db)
	eventRepo := repository.NewStudyEventRepository(db)

	hashed, err := bcrypt.GenerateFromPassword([]byte("demo123"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("生成密码失败: %v", err)
	}
	user := &model.User{Username: "demo", Email: "demo@example.com", Password: string(hashed)}
	if err := userRepo.Create(user); err != nil {
		log.Fatalf("创建演示账号失败（可能已存在）: %v", err)
	}

	sets := []struct {
		title string
		cards [][2]string
	}{
		{"Biology: Cells", [][2]string{
			{"What is the powerhouse of the cell?", "The mitochondria"},
			{"What does the ribosome do?", "Synthesizes proteins"},
			{"What surrounds a plant cell?", "A cell wall"},
		}},
		{"Biology: Genetics", [][2]string{
			{"What does DNA stand for?", "Deoxyribonucleic acid"},
			{"How many chromosomes do humans have?", "46"},
		}},
		{"Daily Spanish", [][2]string{
			{"gato", "cat"},
			{"perro", "dog"},
			{"libro", "book"},
			{"casa", "house"},
		}},
	}

	now := time.Now()
	statuses := []model.StudyStatus{model.StatusCorrect, model.StatusIncorrect, model.StatusSkipped}

	for si, s := range sets {
		set := &model.FlashcardSet{UserID: user.ID, Title: s.title}
		if err := cardRepo.CreateSet(set); err != nil {
			log.Fatalf("创建卡片集失败: %v", err)
		}
		for ci, sides := range s.cards {
			card := &model.Flashcard{SetID: set.ID, Front: sides[0], Back: sides[1]}
			if err := cardRepo.CreateCard(card); err != nil {
				log.Fatalf("创建卡片失败: %v", err)
			}
			// 最后一个集合保持未学状态，留给进度接口展示 total_cards 兜底
			if si == len(sets)-1 {
				continue
			}
			event := &model.StudyEvent{
				UserID:    user.ID,
				SetID:     set.ID,
				CardID:    card.ID,
				Status:    statuses[ci%len(statuses)],
				Timestamp: now.AddDate(0, 0, -(si + ci)),
			}
			if err := eventRepo.Append(event); err != nil {
				log.Fatalf("写入学习事件失败: %v", err)
			}
		}
	}

	log.Printf("完成！演示账号 demo@example.com / demo123，用户 ID %d", user.ID)
}
