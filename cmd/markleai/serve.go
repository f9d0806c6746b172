package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/elslie/markleai/internal/cooldown"
	"github.com/elslie/markleai/internal/discordbot"
	"github.com/elslie/markleai/internal/history"
	"github.com/elslie/markleai/internal/inflight"
	"github.com/elslie/markleai/internal/keepalive"
	"github.com/elslie/markleai/internal/logutil"
	"github.com/elslie/markleai/internal/persona"
	"github.com/elslie/markleai/internal/relay"
	"github.com/elslie/markleai/internal/sanitize"
	"github.com/elslie/markleai/llm"
	"github.com/elslie/markleai/providers/huggingface"
	"github.com/elslie/markleai/providers/openrouter"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Connect to Discord and relay conversations to completion providers",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logutil.LoggerFromViper()
			if err != nil {
				return err
			}

			token := strings.TrimSpace(viper.GetString("discord.token"))
			if token == "" {
				return fmt.Errorf("discord.token is required (set %s_DISCORD_TOKEN or the config file)", envPrefix)
			}

			chainProviders, err := providersFromViper()
			if err != nil {
				return err
			}

			profile, personaLoaded, err := persona.Load(viper.GetString("persona.path"))
			if err != nil {
				return err
			}
			if personaLoaded {
				logger.Info("persona_loaded", "name", profile.Name)
			}

			sanitizer := sanitize.New(viper.GetInt("reply.min_length"), viper.GetInt("reply.max_length"))
			rng := rand.New(rand.NewSource(time.Now().UnixNano()))
			chain := llm.NewChain(llm.ChainOptions{
				Providers: chainProviders,
				Sanitizer: sanitizer,
				Logger:    logger,
				Sample: func(n int) int {
					if n <= 0 {
						return 0
					}
					return rng.Intn(n)
				},
				LoadingWaitCap: viper.GetDuration("providers.loading_wait_cap"),
			})

			bot, err := discordbot.New(discordbot.Options{
				Token:  token,
				Logger: logger,
				Status: viper.GetString("discord.status"),
			})
			if err != nil {
				return err
			}

			engine := relay.NewEngine(relay.Options{
				History:        history.NewStore(viper.GetInt("history.max_turns")),
				Cooldown:       cooldown.NewGate(viper.GetDuration("cooldown.window")),
				Inflight:       inflight.NewGuard(viper.GetDuration("inflight.grace")),
				Completer:      chain,
				Platform:       bot,
				Logger:         logger,
				SystemPrompt:   profile.SystemMessage(),
				MaxReplyLength: viper.GetInt("reply.max_length"),
				TypingInterval: viper.GetDuration("typing.interval"),
			})
			bot.AttachEngine(engine)

			var keep *keepalive.Server
			if viper.GetBool("keepalive.enabled") {
				keep = keepalive.New(viper.GetString("keepalive.addr"), logger)
				keep.Start()
			}

			if err := bot.Start(); err != nil {
				return err
			}
			logger.Info("serve_start",
				"providers", len(chainProviders),
				"history_max_turns", viper.GetInt("history.max_turns"),
				"cooldown_window", viper.GetDuration("cooldown.window").String(),
				"inflight_grace", viper.GetDuration("inflight.grace").String(),
			)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			<-ctx.Done()

			logger.Info("serve_shutdown")
			if err := bot.Stop(); err != nil {
				logger.Warn("discord_close_error", "error", err.Error())
			}
			if keep != nil {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = keep.Shutdown(shutdownCtx)
			}
			return nil
		},
	}
	return cmd
}

// providersFromViper builds the fallback chain in configured order. A
// provider without a credential is skipped; an empty chain is a startup
// fault, not something to discover on the first message.
func providersFromViper() ([]llm.Provider, error) {
	order := viper.GetStringSlice("providers.order")
	var out []llm.Provider
	for _, name := range order {
		name = strings.ToLower(strings.TrimSpace(name))
		switch name {
		case "openrouter":
			key := strings.TrimSpace(viper.GetString("providers.openrouter.api_key"))
			if key == "" {
				continue
			}
			out = append(out, llm.Provider{
				Name: name,
				Client: openrouter.New(
					viper.GetString("providers.openrouter.base_url"),
					key,
					viper.GetString("providers.openrouter.referer"),
				),
				Model:   viper.GetString("providers.openrouter.model"),
				Timeout: viper.GetDuration("providers.openrouter.timeout"),
			})
		case "huggingface":
			key := strings.TrimSpace(viper.GetString("providers.huggingface.api_key"))
			if key == "" {
				continue
			}
			out = append(out, llm.Provider{
				Name: name,
				Client: huggingface.New(
					viper.GetString("providers.huggingface.base_url"),
					key,
				),
				Model:   viper.GetString("providers.huggingface.model"),
				Timeout: viper.GetDuration("providers.huggingface.timeout"),
			})
		case "":
			continue
		default:
			return nil, fmt.Errorf("unknown provider %q in providers.order", name)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no completion providers configured: set providers.openrouter.api_key or providers.huggingface.api_key")
	}
	return out, nil
}
