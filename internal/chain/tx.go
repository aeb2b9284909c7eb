package chain

import (
	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"github.com/ZilDuck/nft-marketplace/internal/event"
	"math/big"
)

// Tx is the context of one call inside Runtime.Execute. Contracts mutate
// their state only through a Tx and record how to undo each mutation.
type Tx struct {
	rt        *Runtime
	id        string
	sender    entity.Address
	recipient entity.Address
	value     *big.Int
	journal   *journal
}

func newTx(rt *Runtime, call Call) *Tx {
	value := new(big.Int)
	if call.Value != nil {
		value.Set(call.Value)
	}

	return &Tx{
		rt:        rt,
		id:        newTxID(),
		sender:    call.From,
		recipient: call.To,
		value:     value,
		journal:   &journal{},
	}
}

func (tx *Tx) ID() string {
	return tx.id
}

func (tx *Tx) Sender() entity.Address {
	return tx.sender
}

// Recipient is the contract that received the attached value.
func (tx *Tx) Recipient() entity.Address {
	return tx.recipient
}

func (tx *Tx) Value() *big.Int {
	return new(big.Int).Set(tx.value)
}

// Sub returns the context of a call made by the contract at sender on behalf
// of this transaction. It shares the journal, so a revert undoes both.
func (tx *Tx) Sub(sender entity.Address) *Tx {
	return &Tx{
		rt:        tx.rt,
		id:        tx.id,
		sender:    sender,
		recipient: entity.ZeroAddress,
		value:     new(big.Int),
		journal:   tx.journal,
	}
}

// OnRevert registers undo to run if the transaction fails.
func (tx *Tx) OnRevert(undo func()) {
	tx.journal.record(undo)
}

// Emit queues an event. Queued events are published only once the
// transaction commits.
func (tx *Tx) Emit(eventType event.Type, data interface{}) {
	tx.journal.events = append(tx.journal.events, event.NewEvent(tx.id, eventType, data))
}

// Transfer moves native coin from the sender to to.
func (tx *Tx) Transfer(to entity.Address, amount *big.Int) error {
	return tx.rt.transfer(tx.journal, tx.sender, to, amount)
}

func (tx *Tx) BalanceOf(addr entity.Address) *big.Int {
	return new(big.Int).Set(tx.rt.balanceOf(addr))
}

type journal struct {
	undo   []func()
	events []event.Event
}

func (j *journal) record(undo func()) {
	j.undo = append(j.undo, undo)
}

func (j *journal) revert() {
	for i := len(j.undo) - 1; i >= 0; i-- {
		j.undo[i]()
	}
	j.undo = nil
	j.events = nil
}
