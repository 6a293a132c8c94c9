package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/GoArmGo/ReelApp/internal/client/apiclient"
	"github.com/GoArmGo/ReelApp/internal/config"
	"github.com/GoArmGo/ReelApp/internal/logger"
)

const usage = `reelctl - клиент ReelApp

Команды:
  register -email E -password P -confirm P
  login    -email E -password P
  logout
  whoami
  list
  upload   -type image|video FILE
  publish  -title T -description D -video FILE -thumbnail FILE [-no-controls] [-quality N]
  feed     [-id VIDEO_ID]

Окружение: REELAPP_URL, REELAPP_UPLOAD_URL, REELAPP_TOKEN
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.LoadClientConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.NewSlog(logger.SlogConfig{Level: cfg.LogLevel, Format: "text", Output: os.Stderr})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	api := apiclient.NewClient(cfg.APIURL, nil, log)
	api.SetToken(cfg.Token)

	cli := &cli{cfg: cfg, api: api, logger: log, out: os.Stdout, in: os.Stdin}

	if err := cli.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
