package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"dvorak/internal/cli/command"
	"dvorak/internal/cli/config"
	"dvorak/internal/cli/gateway"
	httpclient "dvorak/internal/cli/http"
	"dvorak/internal/cli/repl"
	"dvorak/internal/cli/state"
	"dvorak/internal/judge/attempt"
	"dvorak/internal/judge/orchestrator"
	"dvorak/pkg/utils/logger"

	"github.com/chzyer/readline"
	"go.uber.org/zap"
)

const defaultConfigPath = "configs/cli.yaml"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", defaultConfigPath, "Path to config file")
	baseURL := flag.String("base", "", "Override gateway base URL")
	timeout := flag.Duration("timeout", 0, "Override HTTP timeout (e.g. 10s)")
	statePath := flag.String("state", "", "Override session state path")
	problem := flag.String("problem", "", "Select a problem at startup")
	language := flag.String("lang", "", "Select a language at startup (python, cpp)")
	flag.Parse()

	cfg, err := config.Load(*configPath, ".env")
	if err != nil {
		return fmt.Errorf("load config failed: %w", err)
	}
	if *baseURL != "" {
		cfg.BaseURL = *baseURL
	}
	if *timeout > 0 {
		cfg.Timeout = *timeout
	}
	if *statePath != "" {
		cfg.StatePath = *statePath
	}

	if dir := filepath.Dir(cfg.Logger.OutputPath); dir != "." && cfg.Logger.OutputPath != "stderr" {
		_ = os.MkdirAll(dir, 0o755)
	}
	if err := logger.Init(cfg.Logger); err != nil {
		return fmt.Errorf("init logger failed: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	session, err := state.Load(cfg.StatePath)
	if err != nil {
		logger.Warn(context.Background(), "ignoring unreadable session state", zap.Error(err))
		session = state.SessionState{}
	}
	sel := session.Selection
	if *problem != "" {
		sel.ProblemID = *problem
	}
	if *language != "" {
		lang, err := attempt.ParseLanguage(*language)
		if err != nil {
			return err
		}
		sel.Language = lang
	}

	client := httpclient.New(cfg.BaseURL, cfg.Timeout)
	gw := gateway.New(client)
	orch := orchestrator.New(gw, orchestrator.Config{
		PollInterval:    cfg.PollInterval,
		MaxPollBackoff:  cfg.MaxPollBackoff,
		MaxPollFailures: cfg.MaxPollFailures,
		MaxPollDuration: cfg.MaxPollDuration,
		Selection:       sel,
	})
	defer orch.Close()

	completer := make([]readline.PrefixCompleterInterface, 0)
	langItems := make([]readline.PrefixCompleterInterface, 0)
	for _, lang := range attempt.Languages() {
		langItems = append(langItems, readline.PcItem(string(lang)))
	}
	for _, cmd := range command.List() {
		if cmd.Name == "lang" {
			completer = append(completer, readline.PcItem(cmd.Name, langItems...))
			continue
		}
		completer = append(completer, readline.PcItem(cmd.Name))
	}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "dvorak> ",
		HistoryFile:     filepath.Join(filepath.Dir(cfg.StatePath), "history"),
		AutoComplete:    readline.NewPrefixCompleter(completer...),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("init terminal failed: %w", err)
	}
	defer rl.Close()

	logger.Info(context.Background(), "cli started",
		zap.String("gateway", gw.String()),
		zap.String("problem_id", sel.ProblemID),
		zap.String("language", string(sel.Language)),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	return repl.New(repl.Options{
		Orchestrator:  orch,
		Catalog:       gw,
		Endpoint:      client,
		Console:       rl,
		Output:        rl.Stdout(),
		StatePath:     cfg.StatePath,
		WatchInterval: cfg.WatchInterval,
	}).Run(ctx)
}
