// @title FlashDeck 后端 API
// @version 1.0
// @description 抽认卡学习应用的后端服务器。

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

package main

import (
	"flag"
	"flashdeck_backend/internal/app"
	"flashdeck_backend/internal/config"
	"flashdeck_backend/pkg/database"
	"flashdeck_backend/pkg/logger"
	"log"
)

func main() {
	migrateOnly := flag.Bool("migrate-only", false, "只执行数据库迁移，完成后退出")
	flag.Parse()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	cfg.ForceMigrate = *migrateOnly
	cfg.MigrateOnly = *migrateOnly

	if *migrateOnly {
		db, err := database.InitDB(&cfg.Database)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		_ = db
		log.Println("数据库迁移完成，退出程序")
		return
	}

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	application.Run()
}
