package entity

import (
	"crypto/md5"
	"fmt"
	"time"
)

type NftAction struct {
	Contract    Address    `json:"contract"`
	TokenId     uint64     `json:"tokenId"`
	TxID        string     `json:"txId"`
	Action      ActionType `json:"action"`
	From        Address    `json:"from"`
	To          Address    `json:"to"`
	Marketplace Address    `json:"marketplace,omitempty"`
	ItemId      uint64     `json:"itemId,omitempty"`
	Cost        string     `json:"cost,omitempty"`
	Fee         string     `json:"fee,omitempty"`
	Timestamp   time.Time  `json:"timestamp"`
}

type ActionType string

const (
	MintAction               ActionType = "mint"
	TransferAction           ActionType = "transfer"
	MarketplaceSaleAction    ActionType = "sale"
	MarketplaceListingAction ActionType = "listing"
)

func (n NftAction) Slug() string {
	return CreateNftActionSlug(n.TokenId, n.Contract, n.TxID, string(n.Action))
}

func CreateNftActionSlug(tokenId uint64, contract Address, txId, action string) string {
	data := []byte(fmt.Sprintf("nftaction-%d-%s-%s-%s", tokenId, contract, txId, action))
	return fmt.Sprintf("%x", md5.Sum(data))
}
