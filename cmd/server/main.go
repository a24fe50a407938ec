package main

import (
	"context"
	"log"
	"os"

	"github.com/Kaktotak00p/notes/internal/buildinfo"
	"github.com/Kaktotak00p/notes/internal/server"
	"github.com/Kaktotak00p/notes/internal/server/config"
)

func main() {
	buildinfo.PrintBuildData(os.Stderr)

	ctx := context.Background()
	cfg := config.LoadConfig()
	app := server.NewApp(cfg)

	if cfg.IssueFor != "" {
		if err := app.IssueToken(os.Stdout, cfg.IssueFor); err != nil {
			log.Fatalf("%v", err)
		}
		return
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}
}
