package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"catalogadmin/admin-client/internal/app/admin/cli"
	"catalogadmin/admin-client/internal/app/admin/config"
	"catalogadmin/pkg/logger"
)

func main() {
	// === ИНИЦИАЛИЗАЦИЯ КОНФИГУРАЦИИ ===
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(2)
	}

	// Логи в stderr, stdout занят таблицами
	logger.InitWithWriter("admin-client", cfg.Log.Level, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCommand(cfg).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
