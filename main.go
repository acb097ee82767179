package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	tg "github.com/amarnathcjd/gogram/telegram"
	dotenv "github.com/joho/godotenv"

	"github.com/simonsmh/telegram-group-easyauth/modules"
)

func main() {
	dotenv.Load()

	cfgPath := "config.yml"
	if len(os.Args) >= 2 {
		cfgPath = os.Args[1]
	}

	cfg, err := modules.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.Save(cfgPath + ".bak"); err != nil {
		log.Printf("config: backup failed: %v", err)
	}

	appID, _ := strconv.Atoi(os.Getenv("APP_ID"))
	client, err := tg.NewClient(tg.ClientConfig{
		AppID:    int32(appID),
		AppHash:  os.Getenv("APP_HASH"),
		LogLevel: tg.LogInfo,
		Session:  "easyauth.session",
	})
	if err != nil {
		panic(err)
	}
	client.LogColor(false)

	client.Conn()
	client.LoginBot(os.Getenv("BOT_TOKEN"))

	modules.InitClient(client)
	modules.Setup(cfg, cfgPath)
	modules.RegisterHandlers()

	me, err := client.GetMe()
	if err != nil {
		panic(err)
	}

	client.Logger.Info(fmt.Sprintf("Authenticated as @%s, guarding chat %d with %d challenges.", me.Username, cfg.Chat, len(cfg.Challenges)))
	client.Idle()
}
