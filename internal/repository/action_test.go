package repository

import (
	"fmt"
	"testing"

	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var contract = entity.Address("0xabcdef0123456789abcdef0123456789abcdef01")

func action(tokenId uint64, txId string, actionType entity.ActionType) entity.NftAction {
	return entity.NftAction{Contract: contract, TokenId: tokenId, TxID: txId, Action: actionType}
}

func TestSaveAndGetAction(t *testing.T) {
	repo := NewNftActionRepository()
	mint := action(1, "tx-1", entity.MintAction)
	repo.Save(mint)

	found, err := repo.GetAction(mint.Slug())
	require.NoError(t, err)
	assert.Equal(t, mint, found)

	_, err = repo.GetAction("missing")
	assert.ErrorIs(t, err, ErrNftActionNotFound)
}

func TestSaveReplacesSameSlug(t *testing.T) {
	repo := NewNftActionRepository()
	sale := action(1, "tx-1", entity.MarketplaceSaleAction)
	repo.Save(sale)

	sale.Cost = "100"
	repo.Save(sale)

	actions, total := repo.GetActions(10, 1)
	assert.Equal(t, 1, total)
	require.Len(t, actions, 1)
	assert.Equal(t, "100", actions[0].Cost)
}

func TestGetActionsForToken(t *testing.T) {
	repo := NewNftActionRepository()
	repo.Save(action(1, "tx-1", entity.MintAction))
	repo.Save(action(2, "tx-2", entity.MintAction))
	repo.Save(action(1, "tx-3", entity.MarketplaceListingAction))
	repo.Save(entity.NftAction{Contract: entity.Address("0x0000000000000000000000000000000000000001"), TokenId: 1, TxID: "tx-4", Action: entity.MintAction})

	actions := repo.GetActionsForToken(contract, 1)
	require.Len(t, actions, 2)
	assert.Equal(t, entity.MintAction, actions[0].Action)
	assert.Equal(t, entity.MarketplaceListingAction, actions[1].Action)

	assert.Empty(t, repo.GetActionsForToken(contract, 3))
}

func TestGetActionsPages(t *testing.T) {
	repo := NewNftActionRepository()
	for i := 1; i <= 5; i++ {
		repo.Save(action(uint64(i), fmt.Sprintf("tx-%d", i), entity.MintAction))
	}

	actions, total := repo.GetActions(2, 1)
	assert.Equal(t, 5, total)
	require.Len(t, actions, 2)
	assert.Equal(t, uint64(1), actions[0].TokenId)

	actions, _ = repo.GetActions(2, 3)
	require.Len(t, actions, 1)
	assert.Equal(t, uint64(5), actions[0].TokenId)

	actions, total = repo.GetActions(2, 4)
	assert.Empty(t, actions)
	assert.Equal(t, 5, total)

	actions, _ = repo.GetActions(0, 1)
	assert.Empty(t, actions)
}
