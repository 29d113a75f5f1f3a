package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog/log"

	"couple-checklist/internal/app"
	"couple-checklist/internal/cli"
	"couple-checklist/internal/config"
	"couple-checklist/internal/logger"
)

var CLI struct {
	Version kong.VersionFlag

	Serve    cli.ServeCmd    `cmd:"" help:"Run the HTTP API, the Telegram bot and scheduled jobs." default:"1"`
	Seed     cli.SeedCmd     `cmd:"" help:"Create the users, categories and achievement catalog."`
	Streak   cli.StreakCmd   `cmd:"" help:"Show a user's streak."`
	Evaluate cli.EvaluateCmd `cmd:"" help:"Evaluate achievements for a user now."`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("couplecheck"),
		kong.Description("Shared checklist for two, with streaks and achievements"),
		kong.UsageOnError(),
		kong.Vars{"version": "v0.1.0"},
	)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: config: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.LogLevel, cfg.LogPretty)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("init app")
	}
	defer application.Close()

	if err := kctx.Run(&cli.Context{Ctx: ctx, App: application, Out: os.Stdout}); err != nil {
		log.Error().Err(err).Str("command", kctx.Command()).Msg("command failed")
		stop()
		application.Close()
		os.Exit(1)
	}
}
