package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/pigeonhq/pigeon/internal/config"
	"github.com/pigeonhq/pigeon/internal/dedup"
	"github.com/pigeonhq/pigeon/internal/events"
	"github.com/pigeonhq/pigeon/internal/gateway"
	"github.com/pigeonhq/pigeon/internal/log"
	"github.com/pigeonhq/pigeon/internal/twilio"
	"github.com/pigeonhq/pigeon/internal/twiml"
)

var (
	version   = "0.1.0-dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

const defaultConfigPath = "configs/config.yaml"

func main() {
	os.Exit(runCLI(os.Args[1:]))
}

func runCLI(cliArgs []string) int {
	if len(cliArgs) < 1 {
		printUsage()
		return 1
	}

	cmd := cliArgs[0]
	args := cliArgs[1:]

	switch cmd {
	case "start":
		return runStart(args)
	case "config":
		return runConfigNoun(args)
	case "version", "--version":
		return runVersion(args)
	case "help", "--help", "-h":
		printUsage()
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		return 1
	}
}

func printUsage() {
	fmt.Fprint(os.Stderr, `pigeon - Twilio SMS webhook gateway

Usage:
  pigeon start [--config path]     Run the gateway
  pigeon config check [--config]   Validate configuration and exit
  pigeon config lock [--config]    Pin the config file hash in .checksums
  pigeon version [--json]          Print version metadata
`)
}

type versionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
}

func runVersion(args []string) int {
	fs := flag.NewFlagSet("version", flag.ContinueOnError)
	jsonOut := fs.Bool("json", false, "Output version metadata as JSON")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	info := versionInfo{Version: version, Commit: gitCommit, BuildTime: buildDate}

	if *jsonOut {
		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to render version JSON: %v\n", err)
			return 1
		}
		fmt.Println(string(data))
		return 0
	}

	fmt.Printf("pigeon %s\n", info.Version)
	fmt.Printf("commit: %s\n", info.Commit)
	fmt.Printf("built_at: %s\n", info.BuildTime)
	return 0
}

func runConfigNoun(args []string) int {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: pigeon config <check|lock> [--config path]")
		return 1
	}

	verb := args[0]
	fs := flag.NewFlagSet("config "+verb, flag.ContinueOnError)
	configPath := fs.String("config", defaultConfigPath, "Path to configuration file")
	if err := fs.Parse(args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	switch verb {
	case "check":
		loadDotenv()
		if _, err := config.Load(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Config check failed: %v\n", err)
			return 1
		}
		fmt.Printf("Config OK: %s\n", *configPath)
		return 0
	case "lock":
		if err := config.Lock(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Config lock failed: %v\n", err)
			return 1
		}
		fmt.Printf("Checksums written for %s\n", *configPath)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown config verb: %s\n", verb)
		return 1
	}
}

// loadDotenv pulls a local .env into the process environment if present, so
// ${TWILIO_AUTH_TOKEN} style config references resolve in development.
func loadDotenv() {
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load()
	}
}

func runStart(args []string) int {
	fs := flag.NewFlagSet("start", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "Path to configuration file")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse flags: %v\n", err)
		return 1
	}

	loadDotenv()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	log.Setup(cfg.Service.LogLevel, cfg.Service.LogFormat)
	logger := log.WithComponent("main")
	logger.Info("pigeon starting", "version", version, "config", *configPath)

	verifier := twilio.NewSignatureVerifier(cfg.Twilio.AuthToken)
	tracker := dedup.New(cfg.Dedup.RetentionWindow.Std(), cfg.Dedup.SweepInterval.Std())
	hub := events.NewHub(256)
	policy := twiml.StaticReply{Text: cfg.Reply.Text}

	server := gateway.New(
		gateway.Config{
			Listen:          cfg.Server.Addr(),
			SignatureHeader: cfg.Twilio.SignatureHeader,
			CallbackURL:     cfg.Twilio.CallbackURL,
			MaxBodySize:     cfg.Server.MaxBodySize,
		},
		verifier,
		tracker,
		policy,
		hub,
		log.WithComponent("gateway"),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 2)

	go func() {
		if err := tracker.Run(ctx); err != nil && err != context.Canceled {
			errCh <- fmt.Errorf("dedup sweeper: %w", err)
		}
	}()

	// Default downstream consumer: drain the hub so buffered channels never
	// sit full, logging at debug. Real pipelines subscribe the same way.
	go func() {
		eventLog := log.WithComponent("events")
		ch, unsubscribe := hub.Subscribe()
		defer unsubscribe()
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-ch:
				eventLog.Debug("event",
					"type", ev.Type,
					"receipt_id", ev.ReceiptID,
					"message_sid", ev.Message.MessageSID,
				)
			}
		}
	}()

	go func() {
		if err := server.Start(ctx); err != nil && err != context.Canceled {
			errCh <- fmt.Errorf("gateway: %w", err)
		}
	}()

	logger.Info("pigeon running (press Ctrl+C to stop)",
		"listen", cfg.Server.Addr(),
		"dedup_retention", cfg.Dedup.RetentionWindow,
	)

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	case err := <-errCh:
		logger.Error("component failed", "error", err)
		cancel()
		return 1
	}

	logger.Info("pigeon stopped")
	return 0
}
