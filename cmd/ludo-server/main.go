package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/yola1107/lumina-ludo/internal/conf"
	"github.com/yola1107/lumina-ludo/library/log"
)

var (
	Name     = conf.Name
	flagconf string // -conf path
)

func init() {
	flag.StringVar(&flagconf, "conf", "../../configs/config.yaml", "config path, e.g. -conf config.yaml")
}

func main() {
	flag.Parse()

	// .env 可选, 仅用于本地填充 LUDO_* 变量
	_ = godotenv.Load()

	bc, err := conf.Load(flagconf)
	if err != nil {
		panic(err)
	}

	logger, err := log.NewLogger(bc.Log)
	if err != nil {
		panic(err)
	}
	log.SetLogger(logger)
	defer logger.Close()

	app, cleanup, err := wireApp(bc)
	if err != nil {
		panic(err)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// start and wait for stop signal
	if err := app.Run(ctx); err != nil {
		log.Errorf("%s stopped: %v", Name, err)
	}
}
