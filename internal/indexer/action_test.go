package indexer

import (
	"testing"
	"time"

	"github.com/ZilDuck/nft-marketplace/internal/chain"
	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"github.com/ZilDuck/nft-marketplace/internal/event"
	"github.com/ZilDuck/nft-marketplace/internal/marketplace"
	"github.com/ZilDuck/nft-marketplace/internal/registry"
	"github.com/ZilDuck/nft-marketplace/internal/repository"
	"github.com/ZilDuck/nft-marketplace/pkg/ether"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestIndexEventIgnoresUnknownData(t *testing.T) {
	repo := repository.NewNftActionRepository()
	idx := NewActionIndexer(repo)

	idx.IndexEvent(event.NewEvent("tx", event.ApprovalForAllEvent, entity.NftApproval{}))
	idx.IndexEvent(event.NewEvent("tx", event.TransferEvent, "garbage"))

	_, total := repo.GetActions(10, 1)
	assert.Equal(t, 0, total)
}

func TestIndexesMarketplaceFlow(t *testing.T) {
	defer goleak.VerifyNone(t)

	events := event.NewManager()
	repo := repository.NewNftActionRepository()
	NewActionIndexer(repo).Subscribe(events)

	deployer, seller, buyer := chain.AccountAddress(0), chain.AccountAddress(1), chain.AccountAddress(2)
	rt := chain.NewRuntime(events)
	require.NoError(t, rt.Fund(buyer, ether.MustToWei("10")))
	nft := registry.New(rt, deployer, registry.DefaultName, registry.DefaultSymbol)
	market := marketplace.New(rt, deployer, 1, marketplace.OverpaymentToFee)

	_, err := rt.Execute(chain.Call{From: seller}, func(tx *chain.Tx) error {
		tokenId, err := nft.Mint(tx, "Sample URI")
		if err != nil {
			return err
		}
		if err := nft.SetApprovalForAll(tx, market.Address(), true); err != nil {
			return err
		}
		_, err = market.MakeItem(tx, nft, tokenId, ether.MustToWei("2"))
		return err
	})
	require.NoError(t, err)

	purchase := func() error {
		_, err := rt.Execute(chain.Call{From: buyer, To: market.Address(), Value: ether.MustToWei("2.02")}, func(tx *chain.Tx) error {
			return market.PurchaseItem(tx, 1)
		})
		return err
	}
	require.NoError(t, purchase())
	assert.ErrorIs(t, purchase(), marketplace.ErrAlreadySold)

	// mint, escrow, listing, release, sale
	assert.Eventually(t, func() bool {
		_, total := repo.GetActions(10, 1)
		return total == 5
	}, time.Second, 5*time.Millisecond)
	events.Close()

	history := repo.GetActionsForToken(nft.Address(), 1)
	actionTypes := make([]entity.ActionType, 0, len(history))
	for _, action := range history {
		actionTypes = append(actionTypes, action.Action)
	}
	assert.Equal(t, []entity.ActionType{
		entity.MintAction,
		entity.TransferAction,
		entity.MarketplaceListingAction,
		entity.TransferAction,
		entity.MarketplaceSaleAction,
	}, actionTypes)
	assert.Equal(t, market.Address(), history[1].To)
	assert.Equal(t, buyer, history[3].To)

	var sales []entity.NftAction
	for _, action := range repo.GetActionsForToken(nft.Address(), 1) {
		if action.Action == entity.MarketplaceSaleAction {
			sales = append(sales, action)
		}
	}
	require.Len(t, sales, 1)
	assert.Equal(t, seller, sales[0].From)
	assert.Equal(t, buyer, sales[0].To)
	assert.Equal(t, market.Address(), sales[0].Marketplace)
	assert.Equal(t, ether.MustToWei("2").String(), sales[0].Cost)
	assert.Equal(t, ether.MustToWei("0.02").String(), sales[0].Fee)
}
