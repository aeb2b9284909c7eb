package main

import (
	"context"
	"github.com/ZilDuck/nft-marketplace/internal/config"
	"github.com/ZilDuck/nft-marketplace/internal/config/di"
	"go.uber.org/zap"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	config.Init("marketd")

	container, err := di.NewContainer()
	if err != nil {
		zap.L().With(zap.Error(err)).Fatal("Failed to build container")
	}
	defer func() {
		_ = container.Delete()
	}()

	nft := container.GetNft()
	market := container.GetMarketplace()
	zap.L().With(
		zap.String("nft", nft.Address().String()),
		zap.String("marketplace", market.Address().String()),
		zap.String("feeAccount", market.FeeAccount().String()),
		zap.Uint64("feePercent", market.FeePercent()),
		zap.String("overpaymentPolicy", string(market.Policy())),
	).Info("Contracts deployed")

	for n, account := range container.GetDevnet().Accounts() {
		zap.L().With(zap.Int("account", n), zap.String("address", account.String())).Info("Dev account")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := container.GetDaemon().Execute(ctx); err != nil {
		zap.L().With(zap.Error(err)).Error("Marketplace daemon stopped")
		os.Exit(1)
	}
}
