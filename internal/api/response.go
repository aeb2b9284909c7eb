package api

import (
	"github.com/ZilDuck/nft-marketplace/internal/chain"
	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"github.com/ZilDuck/nft-marketplace/internal/event"
	"github.com/ZilDuck/nft-marketplace/pkg/ether"
	"math/big"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type AccountResponse struct {
	Address entity.Address `json:"address"`
	Balance string         `json:"balance"`
	Ether   string         `json:"ether"`
}

func newAccountResponse(addr entity.Address, balance *big.Int) AccountResponse {
	return AccountResponse{
		Address: addr,
		Balance: balance.String(),
		Ether:   ether.FromWei(balance),
	}
}

type TxResponse struct {
	TxID    string        `json:"txId"`
	Events  []event.Event `json:"events"`
	TokenId uint64        `json:"tokenId,omitempty"`
	ItemId  uint64        `json:"itemId,omitempty"`
}

func newTxResponse(receipt chain.Receipt) TxResponse {
	events := receipt.Events
	if events == nil {
		events = []event.Event{}
	}

	return TxResponse{TxID: receipt.TxID, Events: events}
}

type NftContractResponse struct {
	Address    entity.Address `json:"address"`
	Name       string         `json:"name"`
	Symbol     string         `json:"symbol"`
	TokenCount uint64         `json:"tokenCount"`
}

type MarketplaceResponse struct {
	Address    entity.Address `json:"address"`
	FeeAccount entity.Address `json:"feeAccount"`
	FeePercent uint64         `json:"feePercent"`
	Policy     string         `json:"overpaymentPolicy"`
	ItemCount  uint64         `json:"itemCount"`
}

type TotalPriceResponse struct {
	ItemId uint64 `json:"itemId"`
	Total  string `json:"total"`
	Ether  string `json:"ether"`
}

type ActionsResponse struct {
	Actions []entity.NftAction `json:"actions"`
	Total   int                `json:"total"`
}
