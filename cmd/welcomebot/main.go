package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jdelaire/welcomebot/adapters/telegram_receiver"
	"github.com/jdelaire/welcomebot/adapters/telegram_sender"
	"github.com/jdelaire/welcomebot/core"
	"github.com/jdelaire/welcomebot/internal/config"
	"github.com/jdelaire/welcomebot/internal/keychain"
)

const shutdownTimeout = 10 * time.Second

func main() {
	envFile := flag.String("env", ".env", "dotenv file loaded before reading the environment")
	poll := flag.Bool("poll", false, "long-poll getUpdates instead of serving the webhook")
	storeToken := flag.String("store-token", "", "read a bot token from stdin, store it in the keychain under this account and exit")
	flag.Parse()

	if *storeToken != "" {
		if err := storeTokenFrom(os.Stdin, *storeToken); err != nil {
			fmt.Fprintf(os.Stderr, "store token: %s\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "token stored for account %q\n", *storeToken)
		return
	}

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %s\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *poll, logger); err != nil {
		logger.Error("exiting", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, poll bool, logger *slog.Logger) error {
	if !cfg.TokenSet() {
		logger.Warn(config.TokenEnv + " not set, webhook requests will fail")
	}

	sender := telegram_sender.New(cfg.BotToken)
	handler := core.NewHandler(cfg, sender, logger)

	if poll {
		if !cfg.TokenSet() {
			return errors.New("polling requires " + config.TokenEnv)
		}
		return telegram_receiver.New(cfg.BotToken, handler.HandleUpdate, logger).Start(ctx)
	}

	srv := core.NewServer(cfg.ListenAddr(), handler, logger)
	if err := srv.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func storeTokenFrom(r io.Reader, account string) error {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read token: %w", err)
	}
	token := strings.TrimSpace(line)
	if token == "" {
		return errors.New("empty token")
	}
	return keychain.Set(account, token)
}
