package marketplace

import (
	"errors"
	"fmt"
	"github.com/ZilDuck/nft-marketplace/internal/chain"
	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"github.com/ZilDuck/nft-marketplace/internal/event"
	"go.uber.org/zap"
	"math/big"
)

var (
	ErrInvalidPrice        = errors.New("price must be greater than zero")
	ErrNotFound            = errors.New("item doesn't exist")
	ErrAlreadySold         = errors.New("item already sold")
	ErrInsufficientPayment = errors.New("not enough ether to cover both item price and market fee")
	ErrOverpayment         = errors.New("payment must match the total price exactly")
	ErrUnknownRegistry     = errors.New("token registry is not known to the marketplace")
	ErrInvalidBuyer        = errors.New("marketplace cannot buy its own items")
)

// TokenRegistry is the part of a token registry the marketplace relies on to
// escrow and release tokens.
type TokenRegistry interface {
	Address() entity.Address
	TransferFrom(tx *chain.Tx, from, to entity.Address, tokenId uint64) error
}

type Marketplace interface {
	Address() entity.Address
	FeeAccount() entity.Address
	FeePercent() uint64
	Policy() OverpaymentPolicy

	MakeItem(tx *chain.Tx, nft TokenRegistry, tokenId uint64, price *big.Int) (uint64, error)
	PurchaseItem(tx *chain.Tx, itemId uint64) error

	GetTotalPrice(itemId uint64) (*big.Int, error)
	Items(itemId uint64) (entity.MarketplaceItem, error)
	ItemCount() uint64
	Listings() []entity.MarketplaceItem
}

type marketplace struct {
	rt         *chain.Runtime
	address    entity.Address
	feeAccount entity.Address
	feePercent uint64
	policy     OverpaymentPolicy

	// items[id-1] holds item id
	items      []entity.MarketplaceItem
	registries map[entity.Address]TokenRegistry
}

// New deploys a marketplace whose fee account is the deployer.
func New(rt *chain.Runtime, deployer entity.Address, feePercent uint64, policy OverpaymentPolicy) Marketplace {
	return &marketplace{
		rt:         rt,
		address:    rt.Deploy(deployer),
		feeAccount: deployer,
		feePercent: feePercent,
		policy:     policy,
		items:      make([]entity.MarketplaceItem, 0),
		registries: make(map[entity.Address]TokenRegistry),
	}
}

func (m *marketplace) Address() entity.Address {
	return m.address
}

func (m *marketplace) FeeAccount() entity.Address {
	return m.feeAccount
}

func (m *marketplace) FeePercent() uint64 {
	return m.feePercent
}

func (m *marketplace) Policy() OverpaymentPolicy {
	return m.policy
}

// MakeItem pulls the token into escrow and lists it for sale. The seller must
// own the token and have approved the marketplace as an operator.
func (m *marketplace) MakeItem(tx *chain.Tx, nft TokenRegistry, tokenId uint64, price *big.Int) (uint64, error) {
	if price == nil || price.Sign() <= 0 {
		return 0, ErrInvalidPrice
	}

	seller := tx.Sender()
	if err := nft.TransferFrom(tx.Sub(m.address), seller, m.address, tokenId); err != nil {
		zap.L().With(zap.Error(err), zap.String("seller", seller.String()), zap.Uint64("tokenId", tokenId)).Warn("Marketplace: Failed to escrow token")
		return 0, fmt.Errorf("escrow token %d: %w", tokenId, err)
	}

	m.register(tx, nft)

	itemId := uint64(len(m.items)) + 1
	m.items = append(m.items, entity.MarketplaceItem{
		ItemId:  itemId,
		Nft:     nft.Address(),
		TokenId: tokenId,
		Price:   new(big.Int).Set(price),
		Seller:  seller,
	})
	tx.OnRevert(func() {
		m.items = m.items[:itemId-1]
	})

	tx.Emit(event.OfferedEvent, entity.MarketplaceListing{
		Marketplace: m.address,
		ItemId:      itemId,
		Nft:         nft.Address(),
		TokenId:     tokenId,
		Price:       new(big.Int).Set(price),
		Seller:      seller,
	})

	zap.L().With(
		zap.Uint64("itemId", itemId),
		zap.String("nft", nft.Address().String()),
		zap.Uint64("tokenId", tokenId),
		zap.String("price", price.String()),
		zap.String("seller", seller.String()),
	).Info("Marketplace: Offered")

	return itemId, nil
}

// PurchaseItem settles a sale paid with the value attached to tx. Payment is
// only counted when it was sent to the marketplace itself.
func (m *marketplace) PurchaseItem(tx *chain.Tx, itemId uint64) error {
	item, err := m.item(itemId)
	if err != nil {
		return err
	}
	if item.Sold {
		return fmt.Errorf("%w: %d", ErrAlreadySold, itemId)
	}
	buyer := tx.Sender()
	if buyer == m.address {
		return ErrInvalidBuyer
	}

	payment := new(big.Int)
	if tx.Recipient() == m.address {
		payment = tx.Value()
	}

	fee := m.fee(item.Price)
	total := new(big.Int).Add(item.Price, fee)
	if payment.Cmp(total) < 0 {
		return fmt.Errorf("%w: sent %s, total price is %s", ErrInsufficientPayment, payment, total)
	}
	if m.policy == OverpaymentReject && payment.Cmp(total) != 0 {
		return fmt.Errorf("%w: sent %s, total price is %s", ErrOverpayment, payment, total)
	}

	nft, ok := m.registries[item.Nft]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownRegistry, item.Nft)
	}

	// The flag flips first so the item can never settle twice.
	m.items[itemId-1].Sold = true
	m.items[itemId-1].Buyer = buyer
	tx.OnRevert(func() {
		m.items[itemId-1].Sold = false
		m.items[itemId-1].Buyer = entity.ZeroAddress
	})

	split := m.policy.settle(payment, item.Price, fee)
	contract := tx.Sub(m.address)
	if err := contract.Transfer(item.Seller, split.seller); err != nil {
		return fmt.Errorf("pay seller: %w", err)
	}
	if err := contract.Transfer(m.feeAccount, split.fee); err != nil {
		return fmt.Errorf("pay fee account: %w", err)
	}
	if err := contract.Transfer(buyer, split.refund); err != nil {
		return fmt.Errorf("refund buyer: %w", err)
	}

	if err := nft.TransferFrom(contract, m.address, buyer, item.TokenId); err != nil {
		return fmt.Errorf("release token %d: %w", item.TokenId, err)
	}

	tx.Emit(event.BoughtEvent, entity.MarketplaceSale{
		Marketplace: m.address,
		ItemId:      itemId,
		Nft:         item.Nft,
		TokenId:     item.TokenId,
		Price:       new(big.Int).Set(item.Price),
		Fee:         split.fee,
		Seller:      item.Seller,
		Buyer:       buyer,
	})

	zap.L().With(
		zap.Uint64("itemId", itemId),
		zap.Uint64("tokenId", item.TokenId),
		zap.String("price", item.Price.String()),
		zap.String("fee", split.fee.String()),
		zap.String("seller", item.Seller.String()),
		zap.String("buyer", buyer.String()),
	).Info("Marketplace: Bought")

	return nil
}

// GetTotalPrice is the item price plus the marketplace fee, rounded down.
func (m *marketplace) GetTotalPrice(itemId uint64) (total *big.Int, err error) {
	m.rt.View(func() {
		var item entity.MarketplaceItem
		if item, err = m.item(itemId); err == nil {
			total = new(big.Int).Add(item.Price, m.fee(item.Price))
		}
	})

	return
}

func (m *marketplace) Items(itemId uint64) (item entity.MarketplaceItem, err error) {
	m.rt.View(func() {
		if item, err = m.item(itemId); err == nil {
			item = copyItem(item)
		}
	})

	return
}

func (m *marketplace) ItemCount() (count uint64) {
	m.rt.View(func() {
		count = uint64(len(m.items))
	})

	return
}

func (m *marketplace) Listings() (items []entity.MarketplaceItem) {
	m.rt.View(func() {
		items = make([]entity.MarketplaceItem, len(m.items))
		for idx := range m.items {
			items[idx] = copyItem(m.items[idx])
		}
	})

	return
}

func (m *marketplace) item(itemId uint64) (entity.MarketplaceItem, error) {
	if itemId == 0 || itemId > uint64(len(m.items)) {
		return entity.MarketplaceItem{}, fmt.Errorf("%w: %d", ErrNotFound, itemId)
	}

	return m.items[itemId-1], nil
}

func (m *marketplace) fee(price *big.Int) *big.Int {
	fee := new(big.Int).Mul(price, new(big.Int).SetUint64(m.feePercent))
	return fee.Quo(fee, big.NewInt(100))
}

func (m *marketplace) register(tx *chain.Tx, nft TokenRegistry) {
	if _, ok := m.registries[nft.Address()]; ok {
		return
	}

	m.registries[nft.Address()] = nft
	tx.OnRevert(func() {
		delete(m.registries, nft.Address())
	})
}

func copyItem(item entity.MarketplaceItem) entity.MarketplaceItem {
	item.Price = new(big.Int).Set(item.Price)
	return item
}
