package registry

import (
	"errors"
	"fmt"
	"github.com/ZilDuck/nft-marketplace/internal/chain"
	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"github.com/ZilDuck/nft-marketplace/internal/event"
	"go.uber.org/zap"
)

const (
	DefaultName   = "Square NFT"
	DefaultSymbol = "Square"
)

var (
	ErrNotFound         = errors.New("token not found")
	ErrUnauthorized     = errors.New("caller is not token owner or approved")
	ErrOwnerMismatch    = errors.New("transfer from incorrect owner")
	ErrInvalidUri       = errors.New("token uri must be present")
	ErrInvalidRecipient = errors.New("transfer to the empty address")
	ErrInvalidOperator  = errors.New("invalid operator")
)

type Registry interface {
	Address() entity.Address
	Name() string
	Symbol() string

	Mint(tx *chain.Tx, tokenUri string) (uint64, error)
	SetApprovalForAll(tx *chain.Tx, operator entity.Address, approved bool) error
	TransferFrom(tx *chain.Tx, from, to entity.Address, tokenId uint64) error

	OwnerOf(tokenId uint64) (entity.Address, error)
	TokenURI(tokenId uint64) (string, error)
	Token(tokenId uint64) (entity.Nft, error)
	TokenCount() uint64
	BalanceOf(owner entity.Address) uint64
	IsApprovedForAll(owner, operator entity.Address) bool
}

type registry struct {
	rt      *chain.Runtime
	address entity.Address
	name    string
	symbol  string

	// tokens[id-1] holds token id
	tokens    []entity.Nft
	balances  map[entity.Address]uint64
	operators map[entity.Address]map[entity.Address]bool
}

func New(rt *chain.Runtime, deployer entity.Address, name, symbol string) Registry {
	return &registry{
		rt:        rt,
		address:   rt.Deploy(deployer),
		name:      name,
		symbol:    symbol,
		tokens:    make([]entity.Nft, 0),
		balances:  make(map[entity.Address]uint64),
		operators: make(map[entity.Address]map[entity.Address]bool),
	}
}

func (r *registry) Address() entity.Address {
	return r.address
}

func (r *registry) Name() string {
	return r.name
}

func (r *registry) Symbol() string {
	return r.symbol
}

func (r *registry) Mint(tx *chain.Tx, tokenUri string) (uint64, error) {
	if tokenUri == "" {
		return 0, ErrInvalidUri
	}

	owner := tx.Sender()
	tokenId := uint64(len(r.tokens)) + 1
	r.tokens = append(r.tokens, entity.Nft{
		Contract: r.address,
		TokenId:  tokenId,
		TokenUri: tokenUri,
		Owner:    owner,
	})
	r.setBalance(tx, owner, r.balances[owner]+1)
	tx.OnRevert(func() {
		r.tokens = r.tokens[:tokenId-1]
	})

	tx.Emit(event.TransferEvent, entity.NftTransfer{
		Contract: r.address,
		From:     entity.ZeroAddress,
		To:       owner,
		TokenId:  tokenId,
	})

	zap.L().With(
		zap.String("contractAddr", r.address.String()),
		zap.Uint64("tokenId", tokenId),
		zap.String("owner", owner.String()),
	).Info("Mint NFT")

	return tokenId, nil
}

func (r *registry) SetApprovalForAll(tx *chain.Tx, operator entity.Address, approved bool) error {
	owner := tx.Sender()
	if operator.IsZero() || operator == owner {
		return ErrInvalidOperator
	}

	operators, ok := r.operators[owner]
	if !ok {
		operators = make(map[entity.Address]bool)
		r.operators[owner] = operators
	}
	previous, existed := operators[operator]
	operators[operator] = approved
	tx.OnRevert(func() {
		if existed {
			operators[operator] = previous
		} else {
			delete(operators, operator)
		}
	})

	tx.Emit(event.ApprovalForAllEvent, entity.NftApproval{
		Contract: r.address,
		Owner:    owner,
		Operator: operator,
		Approved: approved,
	})

	return nil
}

// TransferFrom moves tokenId from from to to. Operator approvals are tied to
// the (owner, operator) pair and are left untouched by the transfer.
func (r *registry) TransferFrom(tx *chain.Tx, from, to entity.Address, tokenId uint64) error {
	token, err := r.token(tokenId)
	if err != nil {
		return err
	}
	if !authorized(tx.Sender(), token.Owner, r.operators) {
		return fmt.Errorf("%w: %s cannot move token %d", ErrUnauthorized, tx.Sender(), tokenId)
	}
	if token.Owner != from {
		return fmt.Errorf("%w: token %d is not owned by %s", ErrOwnerMismatch, tokenId, from)
	}
	if to.IsZero() {
		return ErrInvalidRecipient
	}

	r.tokens[tokenId-1].Owner = to
	tx.OnRevert(func() {
		r.tokens[tokenId-1].Owner = from
	})
	r.setBalance(tx, from, r.balances[from]-1)
	r.setBalance(tx, to, r.balances[to]+1)

	tx.Emit(event.TransferEvent, entity.NftTransfer{
		Contract: r.address,
		From:     from,
		To:       to,
		TokenId:  tokenId,
	})

	zap.L().With(
		zap.String("contractAddr", r.address.String()),
		zap.Uint64("tokenId", tokenId),
		zap.String("from", from.String()),
		zap.String("to", to.String()),
	).Info("Transfer NFT")

	return nil
}

func (r *registry) OwnerOf(tokenId uint64) (owner entity.Address, err error) {
	r.rt.View(func() {
		var token entity.Nft
		if token, err = r.token(tokenId); err == nil {
			owner = token.Owner
		}
	})

	return
}

func (r *registry) TokenURI(tokenId uint64) (uri string, err error) {
	r.rt.View(func() {
		var token entity.Nft
		if token, err = r.token(tokenId); err == nil {
			uri = token.TokenUri
		}
	})

	return
}

func (r *registry) Token(tokenId uint64) (token entity.Nft, err error) {
	r.rt.View(func() {
		token, err = r.token(tokenId)
	})

	return
}

func (r *registry) TokenCount() (count uint64) {
	r.rt.View(func() {
		count = uint64(len(r.tokens))
	})

	return
}

func (r *registry) BalanceOf(owner entity.Address) (balance uint64) {
	r.rt.View(func() {
		balance = r.balances[owner]
	})

	return
}

func (r *registry) IsApprovedForAll(owner, operator entity.Address) (approved bool) {
	r.rt.View(func() {
		approved = r.operators[owner][operator]
	})

	return
}

func (r *registry) token(tokenId uint64) (entity.Nft, error) {
	if tokenId == 0 || tokenId > uint64(len(r.tokens)) {
		return entity.Nft{}, fmt.Errorf("%w: %d", ErrNotFound, tokenId)
	}

	return r.tokens[tokenId-1], nil
}

func (r *registry) setBalance(tx *chain.Tx, owner entity.Address, balance uint64) {
	previous, existed := r.balances[owner]
	r.balances[owner] = balance
	tx.OnRevert(func() {
		if existed {
			r.balances[owner] = previous
		} else {
			delete(r.balances, owner)
		}
	})
}
