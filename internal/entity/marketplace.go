package entity

import (
	"fmt"
	"github.com/gosimple/slug"
	"math/big"
)

// MarketplaceItem is a listing held by the marketplace. The token stays in
// escrow with the marketplace until the item is sold.
type MarketplaceItem struct {
	ItemId  uint64   `json:"itemId"`
	Nft     Address  `json:"nft"`
	TokenId uint64   `json:"tokenId"`
	Price   *big.Int `json:"price"`
	Seller  Address  `json:"seller"`
	Buyer   Address  `json:"buyer,omitempty"`
	Sold    bool     `json:"sold"`
}

func (i MarketplaceItem) Slug() string {
	return CreateMarketplaceItemSlug(i.ItemId, i.Nft)
}

func CreateMarketplaceItemSlug(itemId uint64, nft Address) string {
	return slug.Make(fmt.Sprintf("item-%d-%s", itemId, nft))
}

// MarketplaceListing is the payload of an Offered event.
type MarketplaceListing struct {
	Marketplace Address  `json:"marketplace"`
	ItemId      uint64   `json:"itemId"`
	Nft         Address  `json:"nft"`
	TokenId     uint64   `json:"tokenId"`
	Price       *big.Int `json:"price"`
	Seller      Address  `json:"seller"`
}

// MarketplaceSale is the payload of a Bought event.
type MarketplaceSale struct {
	Marketplace Address  `json:"marketplace"`
	ItemId      uint64   `json:"itemId"`
	Nft         Address  `json:"nft"`
	TokenId     uint64   `json:"tokenId"`
	Price       *big.Int `json:"price"`
	Fee         *big.Int `json:"fee"`
	Seller      Address  `json:"seller"`
	Buyer       Address  `json:"buyer"`
}

// NftTransfer is the payload of a Transfer event. A mint has an empty From.
type NftTransfer struct {
	Contract Address `json:"contract"`
	From     Address `json:"from"`
	To       Address `json:"to"`
	TokenId  uint64  `json:"tokenId"`
}

type NftApproval struct {
	Contract Address `json:"contract"`
	Owner    Address `json:"owner"`
	Operator Address `json:"operator"`
	Approved bool    `json:"approved"`
}
