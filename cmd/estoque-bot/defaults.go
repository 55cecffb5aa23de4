package main

import (
	"time"

	"github.com/spf13/viper"
)

func initViperDefaults() {
	viper.SetDefault("telegram.poll_timeout", 30*time.Second)
	viper.SetDefault("telegram.history_max_messages", 20)
	viper.SetDefault("telegram.max_concurrency", 3)

	viper.SetDefault("gemini.model", "gemini-1.5-flash")
	viper.SetDefault("gemini.endpoint", "")

	viper.SetDefault("sheets.stock_tab", "Estoque")
	viper.SetDefault("sheets.movement_tab", "Movimentacoes")

	viper.SetDefault("calendar.timezone", "America/Sao_Paulo")

	viper.SetDefault("memory.enabled", true)
	viper.SetDefault("memory.backend", "file")
	viper.SetDefault("memory.dir", "data/memory")
	viper.SetDefault("memory.window", 10)

	viper.SetDefault("serve.addr", ":8080")

	viper.SetDefault("logging.format", "text")
	viper.SetDefault("logging.add_source", false)
}
