package core

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	wbOs "github.com/wallet-backend/wallet-backend/utils/os"
)

var RootContext context.Context
var RootContextCancel context.CancelFunc

func init() {
	_ = wbOs.LoadEnvFile(`./run.env`)
	_ = wbOs.LoadEnvFile(`./.env`)
	RootContext, RootContextCancel = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
