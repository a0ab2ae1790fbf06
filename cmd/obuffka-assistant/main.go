package main

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/K0rzet/obuffka-assistant/app"
	corecmd "github.com/K0rzet/obuffka-assistant/core/cmd"
)

func main() {
	_ = godotenv.Load()

	err := corecmd.Run(corecmd.Options{
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			return app.LoadConfig(path)
		},
		Bootstrap: func(cfg corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
			appCfg, ok := cfg.(*app.Config)
			if !ok {
				return nil, fmt.Errorf("unexpected config carrier type %T", cfg)
			}
			return app.Bootstrap(appCfg)
		},
	})
	if err != nil {
		log.Fatalf("bot stopped: %v", err)
	}
}
