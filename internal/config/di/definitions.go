package di

import (
	"github.com/ZilDuck/nft-marketplace/internal/api"
	"github.com/ZilDuck/nft-marketplace/internal/chain"
	"github.com/ZilDuck/nft-marketplace/internal/config"
	"github.com/ZilDuck/nft-marketplace/internal/daemon"
	"github.com/ZilDuck/nft-marketplace/internal/devnet"
	"github.com/ZilDuck/nft-marketplace/internal/event"
	"github.com/ZilDuck/nft-marketplace/internal/indexer"
	"github.com/ZilDuck/nft-marketplace/internal/log"
	"github.com/ZilDuck/nft-marketplace/internal/marketplace"
	"github.com/ZilDuck/nft-marketplace/internal/metadata"
	"github.com/ZilDuck/nft-marketplace/internal/registry"
	"github.com/ZilDuck/nft-marketplace/internal/repository"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/patrickmn/go-cache"
	"github.com/sarulabs/di/v2"
	"time"
)

var Definitions = []di.Def{
	{
		Name: "config",
		Build: func(ctn di.Container) (interface{}, error) {
			return config.Get(), nil
		},
	},
	{
		Name: "events",
		Build: func(ctn di.Container) (interface{}, error) {
			return event.NewManager(), nil
		},
		Close: func(obj interface{}) error {
			obj.(*event.Manager).Close()
			return nil
		},
	},
	{
		Name: "runtime",
		Build: func(ctn di.Container) (interface{}, error) {
			return chain.NewRuntime(ctn.Get("events").(*event.Manager)), nil
		},
	},
	{
		Name: "devnet",
		Build: func(ctn di.Container) (interface{}, error) {
			cfg := ctn.Get("config").(*config.Config)
			return devnet.New(ctn.Get("runtime").(*chain.Runtime), cfg.DevAccounts.Count, cfg.DevAccounts.Balance)
		},
	},
	{
		Name: "nft",
		Build: func(ctn di.Container) (interface{}, error) {
			cfg := ctn.Get("config").(*config.Config)
			deployer := ctn.Get("devnet").(*devnet.Devnet).Deployer()
			return registry.New(ctn.Get("runtime").(*chain.Runtime), deployer, cfg.Nft.Name, cfg.Nft.Symbol), nil
		},
	},
	{
		Name: "marketplace",
		Build: func(ctn di.Container) (interface{}, error) {
			cfg := ctn.Get("config").(*config.Config)
			policy, err := marketplace.ParseOverpaymentPolicy(cfg.Marketplace.OverpaymentPolicy)
			if err != nil {
				return nil, err
			}
			// The registry is deployed first so contract addresses stay stable.
			_ = ctn.Get("nft")
			deployer := ctn.Get("devnet").(*devnet.Devnet).Deployer()
			return marketplace.New(ctn.Get("runtime").(*chain.Runtime), deployer, cfg.Marketplace.FeePercent, policy), nil
		},
	},
	{
		Name: "action.repo",
		Build: func(ctn di.Container) (interface{}, error) {
			return repository.NewNftActionRepository(), nil
		},
	},
	{
		Name: "action.indexer",
		Build: func(ctn di.Container) (interface{}, error) {
			return indexer.NewActionIndexer(ctn.Get("action.repo").(repository.NftActionRepository)), nil
		},
	},
	{
		Name: "cache",
		Build: func(ctn di.Container) (interface{}, error) {
			ttl := ctn.Get("config").(*config.Config).Metadata.CacheDuration()
			return cache.New(ttl, 2*ttl), nil
		},
	},
	{
		Name: "http.client",
		Build: func(ctn di.Container) (interface{}, error) {
			cfg := ctn.Get("config").(*config.Config)
			client := retryablehttp.NewClient()
			client.RetryMax = cfg.Metadata.Retries
			client.HTTPClient.Timeout = cfg.Metadata.TimeoutDuration()
			client.RetryWaitMax = 5 * time.Second
			client.Logger = log.HttpLogger{}
			return client, nil
		},
	},
	{
		Name: "metadata",
		Build: func(ctn di.Container) (interface{}, error) {
			return metadata.NewMetadataService(
				ctn.Get("http.client").(*retryablehttp.Client),
				ctn.Get("cache").(*cache.Cache),
				ctn.Get("config").(*config.Config).Metadata.IpfsGateway,
				ctn.Get("config").(*config.Config).Metadata.MaxBytes,
			), nil
		},
	},
	{
		Name: "api",
		Build: func(ctn di.Container) (interface{}, error) {
			return api.NewServer(
				ctn.Get("runtime").(*chain.Runtime),
				ctn.Get("nft").(registry.Registry),
				ctn.Get("marketplace").(marketplace.Marketplace),
				ctn.Get("action.repo").(repository.NftActionRepository),
				ctn.Get("metadata").(metadata.Service),
				ctn.Get("devnet").(*devnet.Devnet).Accounts(),
			), nil
		},
	},
	{
		Name: "daemon",
		Build: func(ctn di.Container) (interface{}, error) {
			return daemon.NewDaemon(
				ctn.Get("api").(api.Server),
				ctn.Get("action.indexer").(indexer.ActionIndexer),
				ctn.Get("events").(*event.Manager),
				ctn.Get("config").(*config.Config).ApiPort,
			), nil
		},
	},
}
