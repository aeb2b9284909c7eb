package chain

import (
	"errors"
	"fmt"
	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"github.com/ZilDuck/nft-marketplace/internal/event"
	"github.com/nu7hatch/gouuid"
	"go.uber.org/zap"
	"math/big"
	"sync"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidAmount     = errors.New("amount must not be negative")
	ErrNoRecipient       = errors.New("value sent without a recipient")
	ErrNoSender          = errors.New("call has no sender")
	ErrContractCaller    = errors.New("contracts cannot originate calls")
	ErrSelfCall          = errors.New("value sent to the sender itself")
)

// Call is the envelope of a state-mutating invocation: who is calling, which
// contract receives the attached value, and how much value is attached.
type Call struct {
	From  entity.Address
	To    entity.Address
	Value *big.Int
}

type Receipt struct {
	TxID   string
	Events []event.Event
}

// Runtime serializes every state-mutating call. A call either runs to
// completion or every change it made through its Tx is undone.
//
// Contract query methods take the shared lock through View, so they must not
// be called from inside Execute. Contracts only act through Tx.Sub.
type Runtime struct {
	mu        sync.RWMutex
	balances  map[entity.Address]*big.Int
	nonces    map[entity.Address]uint64
	contracts map[entity.Address]bool
	events    *event.Manager
}

func NewRuntime(events *event.Manager) *Runtime {
	return &Runtime{
		balances:  make(map[entity.Address]*big.Int),
		nonces:    make(map[entity.Address]uint64),
		contracts: make(map[entity.Address]bool),
		events:    events,
	}
}

func (r *Runtime) Events() *event.Manager {
	return r.events
}

func (r *Runtime) Execute(call Call, fn func(tx *Tx) error) (receipt Receipt, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx := newTx(r, call)
	receipt.TxID = tx.id

	committed := false
	defer func() {
		if !committed {
			tx.journal.revert()
		}
	}()

	if err = r.begin(tx, call); err != nil {
		r.logRevert(tx, err)
		return receipt, err
	}

	if err = fn(tx); err != nil {
		r.logRevert(tx, err)
		return receipt, err
	}
	committed = true

	receipt.Events = tx.journal.events
	for _, evt := range receipt.Events {
		r.events.EmitEvent(evt)
	}
	zap.L().With(zap.String("txId", tx.id), zap.String("from", call.From.String()), zap.Int("events", len(receipt.Events))).Debug("Tx committed")

	return receipt, nil
}

// View runs fn under the shared lock, so it never observes a call half way.
func (r *Runtime) View(fn func()) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn()
}

// Deploy reserves the address of a new contract owned by deployer.
func (r *Runtime) Deploy(deployer entity.Address) entity.Address {
	r.mu.Lock()
	defer r.mu.Unlock()

	nonce := r.nonces[deployer]
	r.nonces[deployer] = nonce + 1

	addr := ContractAddress(deployer, nonce)
	r.contracts[addr] = true
	zap.L().With(zap.String("deployer", deployer.String()), zap.String("contract", addr.String())).Info("Contract deployed")

	return addr
}

// Fund credits addr out of thin air. Used to seed development accounts.
func (r *Runtime) Fund(addr entity.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.balances[addr] = new(big.Int).Add(r.balanceOf(addr), amount)

	return nil
}

func (r *Runtime) IsContract(addr entity.Address) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.contracts[addr]
}

func (r *Runtime) BalanceOf(addr entity.Address) *big.Int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return new(big.Int).Set(r.balanceOf(addr))
}

func (r *Runtime) begin(tx *Tx, call Call) error {
	if call.From.IsZero() {
		return ErrNoSender
	}
	if r.contracts[call.From] {
		return fmt.Errorf("%w: %s", ErrContractCaller, call.From)
	}
	if tx.value.Sign() == 0 {
		return nil
	}
	if call.To.IsZero() {
		return ErrNoRecipient
	}
	if call.To == call.From {
		return ErrSelfCall
	}

	return r.transfer(tx.journal, call.From, call.To, tx.value)
}

func (r *Runtime) balanceOf(addr entity.Address) *big.Int {
	if balance, ok := r.balances[addr]; ok {
		return balance
	}

	return new(big.Int)
}

func (r *Runtime) transfer(j *journal, from, to entity.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	if amount.Sign() == 0 {
		return nil
	}

	fromBalance := r.balanceOf(from)
	if fromBalance.Cmp(amount) < 0 {
		return fmt.Errorf("%w: %s has %s, needs %s", ErrInsufficientFunds, from, fromBalance, amount)
	}
	if from == to {
		return nil
	}
	toBalance := r.balanceOf(to)

	r.balances[from] = new(big.Int).Sub(fromBalance, amount)
	r.balances[to] = new(big.Int).Add(toBalance, amount)
	j.record(func() {
		r.balances[from] = fromBalance
		r.balances[to] = toBalance
	})

	return nil
}

func (r *Runtime) logRevert(tx *Tx, err error) {
	zap.L().With(zap.String("txId", tx.id), zap.String("from", tx.sender.String()), zap.Error(err)).Info("Tx reverted")
}

func newTxID() string {
	u, err := uuid.NewV4()
	if err != nil {
		return ""
	}

	return u.String()
}
