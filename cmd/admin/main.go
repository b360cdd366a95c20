package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/hrscreen/internal/admin"
	"github.com/dmitrijs2005/hrscreen/internal/logging"
	"github.com/dmitrijs2005/hrscreen/internal/server"
	"github.com/dmitrijs2005/hrscreen/internal/server/config"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return admin.ErrUsage
	}

	cfg, err := config.LoadConfig(args[1:])
	if err != nil {
		return err
	}

	logger := logging.NewJSONLogger(os.Stderr, cfg.LogLevel)

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	return admin.NewCLI(app.Companies, app.Auth, os.Stdout).Run(ctx, args)
}
