package api

import (
	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"github.com/ZilDuck/nft-marketplace/pkg/ether"
	validation "github.com/go-ozzo/ozzo-validation"
	"math/big"
)

type MintRequest struct {
	Uri string `json:"uri"`
}

func (req *MintRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Uri, validation.Required),
	)
}

type ApprovalRequest struct {
	Operator string `json:"operator"`
	Approved bool   `json:"approved"`
}

func (req *ApprovalRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Operator, validation.Required, validation.By(isAddress)),
	)
}

type TransferRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	TokenId uint64 `json:"tokenId"`
}

func (req *TransferRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.From, validation.Required, validation.By(isAddress)),
		validation.Field(&req.To, validation.Required, validation.By(isAddress)),
	)
}

// MakeItemRequest lists tokenId at price, a wei amount.
type MakeItemRequest struct {
	TokenId uint64 `json:"tokenId"`
	Price   string `json:"price"`
}

func (req *MakeItemRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Price, validation.Required, validation.By(isWei)),
	)
}

func (req MakeItemRequest) PriceWei() (*big.Int, error) {
	return ether.ParseWei(req.Price)
}

// PurchaseRequest carries the payment, a wei amount, attached to the purchase.
type PurchaseRequest struct {
	Value string `json:"value"`
}

func (req *PurchaseRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Value, validation.Required, validation.By(isWei)),
	)
}

func isAddress(value interface{}) error {
	addr, _ := value.(string)
	_, err := entity.NewAddress(addr)
	return err
}

func isWei(value interface{}) error {
	amount, _ := value.(string)
	_, err := ether.ParseWei(amount)
	return err
}
