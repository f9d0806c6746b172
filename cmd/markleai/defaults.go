package main

import (
	"time"

	"github.com/spf13/viper"
)

func initViperDefaults() {
	// Discord
	viper.SetDefault("discord.token", "")
	viper.SetDefault("discord.status", "chatting")

	// Relay core
	viper.SetDefault("history.max_turns", 15)
	viper.SetDefault("cooldown.window", 5*time.Second)
	viper.SetDefault("inflight.grace", 8*time.Second)
	viper.SetDefault("reply.max_length", 2000)
	viper.SetDefault("reply.min_length", 3)
	viper.SetDefault("typing.interval", 5*time.Second)

	// Persona
	viper.SetDefault("persona.path", "")

	// Providers
	viper.SetDefault("providers.order", []string{"openrouter", "huggingface"})
	viper.SetDefault("providers.loading_wait_cap", 10*time.Second)

	viper.SetDefault("providers.openrouter.base_url", "https://openrouter.ai")
	viper.SetDefault("providers.openrouter.api_key", "")
	viper.SetDefault("providers.openrouter.referer", "")
	viper.SetDefault("providers.openrouter.model", "openai/gpt-3.5-turbo")
	viper.SetDefault("providers.openrouter.timeout", 20*time.Second)

	viper.SetDefault("providers.huggingface.base_url", "https://api-inference.huggingface.co")
	viper.SetDefault("providers.huggingface.api_key", "")
	viper.SetDefault("providers.huggingface.model", "HuggingFaceH4/zephyr-7b-beta")
	viper.SetDefault("providers.huggingface.timeout", 20*time.Second)

	// Keep-alive endpoint
	viper.SetDefault("keepalive.enabled", true)
	viper.SetDefault("keepalive.addr", ":3000")

	// Logging
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")
	viper.SetDefault("logging.add_source", false)
}
