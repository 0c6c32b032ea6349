// Command toolbridge runs the demo chatbot server. The -transport flag
// selects the adapter: http serves the REST+SSE surface, stdio serves
// JSON-RPC on stdin/stdout, hybrid runs both.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/toolbridge/toolbridge/chat"
	"github.com/toolbridge/toolbridge/config"
	"github.com/toolbridge/toolbridge/conversation"
	"github.com/toolbridge/toolbridge/logging"
	"github.com/toolbridge/toolbridge/model"
	modelanthropic "github.com/toolbridge/toolbridge/model/anthropic"
	modelopenai "github.com/toolbridge/toolbridge/model/openai"
	"github.com/toolbridge/toolbridge/server"
	"github.com/toolbridge/toolbridge/tool"
)

func main() {
	transport := flag.String("transport", "http", "transport adapter: http, stdio or hybrid")
	flag.Parse()

	if err := run(*transport); err != nil {
		fmt.Fprintf(os.Stderr, "toolbridge: %v\n", err)
		os.Exit(1)
	}
}

func run(transport string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = logging.ParseLevel(cfg.LogLevel)
	logCfg.Format = cfg.LogFormat
	if transport != "http" {
		logCfg.Output = os.Stderr // keep stdout clean for the stdio protocol
	}
	log := logging.New(logCfg)

	registry := tool.NewRegistry(log)
	if err := tool.RegisterBuiltins(registry); err != nil {
		return err
	}
	store := conversation.NewInMemoryStore(log)

	m, err := buildModel(cfg)
	if err != nil {
		return err
	}
	log.Info("model.selected", "provider", m.Info().Provider, "model", m.Info().Name)

	engine := chat.NewEngine(store, registry, m, log, chat.WithModelTimeout(cfg.ModelTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch transport {
	case "http":
		return server.New(cfg, engine, store, registry, log).Run(ctx)
	case "stdio":
		return server.NewStdioServer(registry, log, os.Stdin, os.Stdout).Run(ctx)
	case "hybrid":
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return server.New(cfg, engine, store, registry, log).Run(gctx) })
		g.Go(func() error { return server.NewStdioServer(registry, log, os.Stdin, os.Stdout).Run(gctx) })
		return g.Wait()
	default:
		return fmt.Errorf("unknown transport %q (want http, stdio or hybrid)", transport)
	}
}

func buildModel(cfg *config.Config) (model.Model, error) {
	switch cfg.ModelProvider {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for the openai provider")
		}
		return modelopenai.NewModel(func(o *modelopenai.Options) {
			o.Model = cfg.ModelName
			o.Temperature = cfg.Temperature
			o.MaxCompletionTokens = cfg.MaxTokens
			o.APIKey = cfg.OpenAIAPIKey
		}), nil
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY is required for the anthropic provider")
		}
		return modelanthropic.NewModel(func(o *modelanthropic.Options) {
			o.Model = cfg.ModelName
			o.Temperature = cfg.Temperature
			o.MaxTokens = cfg.MaxTokens
			o.APIKey = cfg.AnthropicAPIKey
		}), nil
	case "mock":
		return model.NewMockModel("mock"), nil
	default:
		return nil, fmt.Errorf("unknown model provider %q", cfg.ModelProvider)
	}
}
