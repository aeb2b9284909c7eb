package di

import (
	"github.com/ZilDuck/nft-marketplace/internal/chain"
	"github.com/ZilDuck/nft-marketplace/internal/daemon"
	"github.com/ZilDuck/nft-marketplace/internal/devnet"
	"github.com/ZilDuck/nft-marketplace/internal/event"
	"github.com/ZilDuck/nft-marketplace/internal/indexer"
	"github.com/ZilDuck/nft-marketplace/internal/marketplace"
	"github.com/ZilDuck/nft-marketplace/internal/registry"
	"github.com/ZilDuck/nft-marketplace/internal/repository"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/sarulabs/di/v2"
)

type Container struct {
	di.Container
}

func NewContainer() (*Container, error) {
	builder, err := di.NewBuilder()
	if err != nil {
		return nil, err
	}

	if err := builder.Add(Definitions...); err != nil {
		return nil, err
	}

	return &Container{builder.Build()}, nil
}

func (c *Container) GetEvents() *event.Manager {
	return c.Get("events").(*event.Manager)
}

func (c *Container) GetRuntime() *chain.Runtime {
	return c.Get("runtime").(*chain.Runtime)
}

func (c *Container) GetDevnet() *devnet.Devnet {
	return c.Get("devnet").(*devnet.Devnet)
}

func (c *Container) GetNft() registry.Registry {
	return c.Get("nft").(registry.Registry)
}

func (c *Container) GetMarketplace() marketplace.Marketplace {
	return c.Get("marketplace").(marketplace.Marketplace)
}

func (c *Container) GetActionRepo() repository.NftActionRepository {
	return c.Get("action.repo").(repository.NftActionRepository)
}

func (c *Container) GetActionIndexer() indexer.ActionIndexer {
	return c.Get("action.indexer").(indexer.ActionIndexer)
}

func (c *Container) GetHttpClient() *retryablehttp.Client {
	return c.Get("http.client").(*retryablehttp.Client)
}

func (c *Container) GetDaemon() *daemon.Daemon {
	return c.Get("daemon").(*daemon.Daemon)
}
