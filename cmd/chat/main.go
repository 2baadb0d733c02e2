package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/oklog/ulid/v2"

	"agent-promosi/internal/config"
	"agent-promosi/internal/infra/adapters/relay"
	"agent-promosi/internal/infra/i18n"
	"agent-promosi/internal/infra/logging"
	"agent-promosi/internal/tui"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	webhookURL := flag.String("webhook", "", "relay webhook URL (overrides config)")
	logPath := flag.String("log", "", "write logs to this file (the terminal is taken by the UI)")
	devMode := flag.Bool("dev", false, "enable developer mode (unredacted text in logs)")
	flag.Parse()

	cfg, err := config.LoadClientConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *webhookURL != "" {
		cfg.Relay.WebhookURL = *webhookURL
	}

	logger := logging.Nop()
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Fatalf("log file: %v", err)
		}
		defer f.Close()
		logger = logging.NewWithWriter(cfg.Log, cfg.Runtime.Dev, f)
	}

	texts, err := i18n.NewTranslator(i18n.LocalesFS, cfg.I18n.Lang)
	if err != nil {
		log.Fatalf("i18n: %v", err)
	}

	webhook := relay.NewWebhookClient(cfg.Relay, texts, logger, relay.WithDev(cfg.Runtime.Dev))
	m := tui.NewModel(ulid.Make().String(), "local", webhook, texts, webhook.Configured())

	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "chat: %v\n", err)
		os.Exit(1)
	}
}
