package factory

import (
	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"github.com/ZilDuck/nft-marketplace/internal/event"
)

// CreateTransferAction builds a mint action when the transfer has no sender.
func CreateTransferAction(evt event.Event, transfer entity.NftTransfer) entity.NftAction {
	action := entity.TransferAction
	if transfer.From.IsZero() {
		action = entity.MintAction
	}

	return entity.NftAction{
		Contract:  transfer.Contract,
		TokenId:   transfer.TokenId,
		TxID:      evt.TxID,
		Action:    action,
		From:      transfer.From,
		To:        transfer.To,
		Timestamp: evt.Timestamp,
	}
}

func CreateListingAction(evt event.Event, listing entity.MarketplaceListing) entity.NftAction {
	return entity.NftAction{
		Contract:    listing.Nft,
		TokenId:     listing.TokenId,
		TxID:        evt.TxID,
		Action:      entity.MarketplaceListingAction,
		From:        listing.Seller,
		To:          listing.Marketplace,
		Marketplace: listing.Marketplace,
		ItemId:      listing.ItemId,
		Cost:        listing.Price.String(),
		Timestamp:   evt.Timestamp,
	}
}

func CreateSaleAction(evt event.Event, sale entity.MarketplaceSale) entity.NftAction {
	fee := ""
	if sale.Fee != nil {
		fee = sale.Fee.String()
	}

	return entity.NftAction{
		Contract:    sale.Nft,
		TokenId:     sale.TokenId,
		TxID:        evt.TxID,
		Action:      entity.MarketplaceSaleAction,
		From:        sale.Seller,
		To:          sale.Buyer,
		Marketplace: sale.Marketplace,
		ItemId:      sale.ItemId,
		Cost:        sale.Price.String(),
		Fee:         fee,
		Timestamp:   evt.Timestamp,
	}
}
