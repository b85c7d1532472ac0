package main

import (
	"os"
	"os/signal"
	"syscall"

	"StockPulse/internal/bot"
	"StockPulse/internal/chart"
	"StockPulse/internal/config"
	"StockPulse/internal/finance"
	"StockPulse/internal/logx"
	"StockPulse/internal/metrics"
	"StockPulse/internal/recorder"
	"StockPulse/internal/scheduler"
)

func main() {
	// Load config
	log := logx.New("info")
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	log = logx.New(cfg.LogLevel)
	log.Info().Msg("StockPulse starting...")

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}

	// Provider clients: a missing key disables only the dependent commands.
	var finnhub *finance.Finnhub
	if cfg.Finnhub.APIKey != "" {
		finnhub = finance.NewFinnhub(cfg.Finnhub.BaseURL, cfg.Finnhub.APIKey)
	} else {
		log.Error().Msg("finnhub api key missing, finnhub commands and the news digest are disabled")
	}
	var alphaVantage *finance.AlphaVantage
	if cfg.AlphaVantage.APIKey != "" {
		alphaVantage = finance.NewAlphaVantage(cfg.AlphaVantage.BaseURL, cfg.AlphaVantage.APIKey)
	} else {
		log.Error().Msg("alpha vantage api key missing, alpha vantage commands are disabled")
	}

	// Chart renderer
	charts, err := chart.NewRenderer(cfg.Charts.OutputDir)
	if err != nil {
		log.Fatal().Err(err).Msg("init chart renderer")
	}

	// Recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Metrics listener
	if cfg.Metrics.Addr != "" {
		srv := metrics.Serve(cfg.Metrics.Addr)
		defer srv.Close()
		log.Info().Str("addr", cfg.Metrics.Addr).Msg("metrics listener started")
	}

	// Bot with static command registry
	handlers := &bot.Handlers{
		Finnhub:      finnhub,
		AlphaVantage: alphaVantage,
		Charts:       charts,
		Recorder:     rec,
		RiskFreeRate: cfg.CAPM.RiskFreeRate,
		MarketReturn: cfg.CAPM.MarketReturn,
		Log:          log,
	}
	b, err := bot.New(cfg.Discord.BotToken, cfg.Discord.GuildID, handlers, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init bot")
	}
	if err := b.Start(); err != nil {
		log.Fatal().Err(err).Msg("start bot")
	}
	defer b.Stop()

	// Daily digest scheduler, only when the news provider is available.
	if finnhub != nil {
		sched := scheduler.New(finnhub, b, rec,
			cfg.Digest.CategoryName, cfg.Digest.ChannelName, cfg.Digest.FireHour, log)
		if err := sched.Register(); err != nil {
			log.Fatal().Err(err).Msg("register digest poll")
		}
		sched.Start()
		defer sched.Stop()
	}

	log.Info().Msg("StockPulse is running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutdown signal received, stopping...")
}
