package main

import (
	"time"

	"github.com/spf13/viper"

	"github.com/St0rmXtr00per/telegram-summary-bot/summarize"
)

func initViperDefaults() {
	// Telegram
	viper.SetDefault("telegram.bot_token", "")
	viper.SetDefault("telegram.poll_timeout", 30*time.Second)

	// Summarization provider
	viper.SetDefault("hf.endpoint", summarize.DefaultEndpoint)
	viper.SetDefault("hf.model", summarize.DefaultModel)
	viper.SetDefault("hf.api_token", "")

	// Pipeline
	viper.SetDefault("pipeline.workers", 3)
	viper.SetDefault("pipeline.queue_size", 16)
	viper.SetDefault("pipeline.window_chars", 3000)

	// Temp file cache
	viper.SetDefault("file_cache_dir", "/var/cache/recapbot")
	viper.SetDefault("file_cache.max_age", 24*time.Hour)
	viper.SetDefault("file_cache.max_files", 1000)
	viper.SetDefault("file_cache.max_total_bytes", int64(512*1024*1024))

	// Webhook server
	viper.SetDefault("server.bind", "127.0.0.1")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.public_url", "")
}
