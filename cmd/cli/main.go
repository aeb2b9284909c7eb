package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"github.com/ZilDuck/nft-marketplace/internal/client"
	"github.com/ZilDuck/nft-marketplace/internal/config"
	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"github.com/ZilDuck/nft-marketplace/internal/log"
	"github.com/ZilDuck/nft-marketplace/pkg/ether"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"os"
	"strconv"
)

var api *client.Client

func main() {
	config.Init("cli")

	app := &cli.App{
		Name:  "market",
		Usage: "talk to a marketplace daemon",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "api", Value: config.Get().ApiUrl, Usage: "marketplace api url"},
			&cli.StringFlag{Name: "caller", Value: config.Get().Caller, Usage: "caller address, or the index of a dev account"},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:   "accounts",
				Usage:  "List the dev accounts and their balances",
				Action: accounts,
			},
			{
				Name:      "balance",
				Usage:     "Show the balance of an address or dev account",
				ArgsUsage: "<account>",
				Action:    balance,
			},
			{
				Name:   "nft",
				Usage:  "Show the nft contract",
				Action: nftContract,
			},
			{
				Name:      "token",
				Usage:     "Show a token, its metadata or its history",
				ArgsUsage: "<tokenId>",
				Action:    token,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "metadata", Usage: "fetch the token metadata"},
					&cli.BoolFlag{Name: "actions", Usage: "show the token history"},
				},
			},
			{
				Name:      "mint",
				Usage:     "Mint a token to the caller",
				ArgsUsage: "<uri>",
				Action:    mint,
			},
			{
				Name:      "approve",
				Usage:     "Approve an operator, the marketplace by default, for all of the caller's tokens",
				ArgsUsage: "[operator]",
				Action:    approve,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "revoke", Usage: "revoke the approval instead"},
				},
			},
			{
				Name:   "marketplace",
				Usage:  "Show the marketplace configuration",
				Action: marketplace,
			},
			{
				Name:      "list",
				Usage:     "List a token for sale, price in ether",
				ArgsUsage: "<tokenId> <price>",
				Action:    list,
			},
			{
				Name:   "items",
				Usage:  "Show every marketplace item",
				Action: items,
			},
			{
				Name:      "item",
				Usage:     "Show a marketplace item and its total price",
				ArgsUsage: "<itemId>",
				Action:    item,
			},
			{
				Name:      "buy",
				Usage:     "Purchase a marketplace item",
				ArgsUsage: "<itemId>",
				Action:    buy,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "value", Usage: "payment in ether, defaults to the total price"},
				},
			},
			{
				Name:   "demo",
				Usage:  "Mint, list and sell a token between two dev accounts",
				Action: demo,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		zap.L().With(zap.Error(err)).Fatal("Command failed")
	}
}

func setup(c *cli.Context) error {
	httpClient := retryablehttp.NewClient()
	httpClient.RetryMax = config.Get().Metadata.Retries
	httpClient.Logger = log.HttpLogger{}
	api = client.New(c.String("api"), httpClient)

	if c.String("caller") == "" {
		return nil
	}

	caller, err := resolveAccount(c.String("caller"))
	if err != nil {
		return err
	}
	api = api.As(caller)

	return nil
}

// resolveAccount accepts an address or the index of a dev account.
func resolveAccount(account string) (entity.Address, error) {
	n, err := strconv.Atoi(account)
	if err != nil {
		return entity.NewAddress(account)
	}

	accounts, err := api.Accounts()
	if err != nil {
		return entity.ZeroAddress, err
	}
	if n < 0 || n >= len(accounts) {
		return entity.ZeroAddress, fmt.Errorf("no dev account %d", n)
	}

	return accounts[n].Address, nil
}

func uintArg(c *cli.Context, idx int, name string) (uint64, error) {
	val, err := strconv.ParseUint(c.Args().Get(idx), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, c.Args().Get(idx))
	}

	return val, nil
}

func output(v interface{}, err error) error {
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))

	return nil
}

func accounts(c *cli.Context) error {
	return output(api.Accounts())
}

func balance(c *cli.Context) error {
	addr, err := resolveAccount(c.Args().First())
	if err != nil {
		return err
	}

	return output(api.Balance(addr))
}

func nftContract(c *cli.Context) error {
	return output(api.NftContract())
}

func token(c *cli.Context) error {
	tokenId, err := uintArg(c, 0, "token id")
	if err != nil {
		return err
	}

	switch {
	case c.Bool("metadata"):
		return output(api.NftMetadata(tokenId))
	case c.Bool("actions"):
		return output(api.NftActions(tokenId))
	default:
		return output(api.Nft(tokenId))
	}
}

func mint(c *cli.Context) error {
	return output(api.Mint(c.Args().First()))
}

func approve(c *cli.Context) error {
	operator := c.Args().First()
	if operator == "" {
		mp, err := api.Marketplace()
		if err != nil {
			return err
		}
		operator = mp.Address.String()
	}

	addr, err := entity.NewAddress(operator)
	if err != nil {
		return err
	}

	return output(api.SetApprovalForAll(addr, !c.Bool("revoke")))
}

func marketplace(c *cli.Context) error {
	return output(api.Marketplace())
}

func list(c *cli.Context) error {
	tokenId, err := uintArg(c, 0, "token id")
	if err != nil {
		return err
	}
	price, err := ether.ToWei(c.Args().Get(1))
	if err != nil {
		return err
	}

	return output(api.MakeItem(tokenId, price.String()))
}

func items(c *cli.Context) error {
	return output(api.Items())
}

func item(c *cli.Context) error {
	itemId, err := uintArg(c, 0, "item id")
	if err != nil {
		return err
	}

	listing, err := api.Item(itemId)
	if err != nil {
		return err
	}
	total, err := api.TotalPrice(itemId)
	if err != nil {
		return err
	}

	return output(map[string]interface{}{"item": listing, "total": total}, nil)
}

func buy(c *cli.Context) error {
	itemId, err := uintArg(c, 0, "item id")
	if err != nil {
		return err
	}

	var value string
	if c.String("value") != "" {
		wei, err := ether.ToWei(c.String("value"))
		if err != nil {
			return err
		}
		value = wei.String()
	} else {
		total, err := api.TotalPrice(itemId)
		if err != nil {
			return err
		}
		value = total.Total
	}

	return output(api.PurchaseItem(itemId, value))
}

var errDemoAccounts = errors.New("demo needs at least three dev accounts")

// demo plays the seller/buyer flow: account 1 mints and lists a token for 2
// ether, account 2 buys it and account 0 collects the fee.
func demo(c *cli.Context) error {
	accounts, err := api.Accounts()
	if err != nil {
		return err
	}
	if len(accounts) < 3 {
		return errDemoAccounts
	}
	seller := api.As(accounts[1].Address)
	buyer := api.As(accounts[2].Address)

	mp, err := api.Marketplace()
	if err != nil {
		return err
	}

	minted, err := seller.Mint("ipfs://QmSquareNftSampleUri")
	if err != nil {
		return err
	}
	zap.S().Infof("Seller %s minted token %d", seller.Caller(), minted.TokenId)

	if _, err := seller.SetApprovalForAll(mp.Address, true); err != nil {
		return err
	}

	listed, err := seller.MakeItem(minted.TokenId, ether.MustToWei("2").String())
	if err != nil {
		return err
	}
	total, err := api.TotalPrice(listed.ItemId)
	if err != nil {
		return err
	}
	zap.S().Infof("Item %d listed, total price %s ether", listed.ItemId, total.Ether)

	bought, err := buyer.PurchaseItem(listed.ItemId, total.Total)
	if err != nil {
		return err
	}
	zap.S().Infof("Buyer %s bought item %d in tx %s", buyer.Caller(), listed.ItemId, bought.TxID)

	if _, err := buyer.PurchaseItem(listed.ItemId, total.Total); err != nil {
		zap.S().Infof("Second purchase rejected: %s", err)
	}

	return output(api.Accounts())
}
