package chain

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"github.com/ZilDuck/nft-marketplace/internal/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTest = errors.New("test failure")

func newFundedRuntime(t *testing.T, amount int64, accounts ...entity.Address) *Runtime {
	rt := NewRuntime(event.NewManager())
	for _, account := range accounts {
		require.NoError(t, rt.Fund(account, big.NewInt(amount)))
	}

	return rt
}

func TestExecuteMovesAttachedValue(t *testing.T) {
	alice, contract := AccountAddress(1), ContractAddress(AccountAddress(0), 0)
	rt := newFundedRuntime(t, 100, alice)

	receipt, err := rt.Execute(Call{From: alice, To: contract, Value: big.NewInt(40)}, func(tx *Tx) error {
		assert.Equal(t, alice, tx.Sender())
		assert.Equal(t, contract, tx.Recipient())
		assert.Equal(t, "40", tx.Value().String())
		assert.Equal(t, "40", tx.BalanceOf(contract).String())
		return nil
	})
	require.NoError(t, err)
	assert.NotEmpty(t, receipt.TxID)

	assert.Equal(t, "60", rt.BalanceOf(alice).String())
	assert.Equal(t, "40", rt.BalanceOf(contract).String())
}

func TestExecuteRevertsEverythingOnError(t *testing.T) {
	alice, bob, contract := AccountAddress(1), AccountAddress(2), ContractAddress(AccountAddress(0), 0)
	rt := newFundedRuntime(t, 100, alice)

	state := map[string]int{"count": 1}
	_, err := rt.Execute(Call{From: alice, To: contract, Value: big.NewInt(50)}, func(tx *Tx) error {
		state["count"] = 2
		tx.OnRevert(func() { state["count"] = 1 })

		require.NoError(t, tx.Sub(contract).Transfer(bob, big.NewInt(20)))
		tx.Emit(event.TransferEvent, "ignored")

		return errTest
	})
	require.ErrorIs(t, err, errTest)

	assert.Equal(t, 1, state["count"])
	assert.Equal(t, "100", rt.BalanceOf(alice).String())
	assert.Equal(t, "0", rt.BalanceOf(bob).String())
	assert.Equal(t, "0", rt.BalanceOf(contract).String())
	assert.Empty(t, rt.Events().Log())
}

func TestExecuteRevertsOnPanic(t *testing.T) {
	alice, contract := AccountAddress(1), ContractAddress(AccountAddress(0), 0)
	rt := newFundedRuntime(t, 100, alice)

	assert.Panics(t, func() {
		_, _ = rt.Execute(Call{From: alice, To: contract, Value: big.NewInt(10)}, func(tx *Tx) error {
			panic("contract failure")
		})
	})

	assert.Equal(t, "100", rt.BalanceOf(alice).String())

	// the runtime lock was released
	_, err := rt.Execute(Call{From: alice}, func(tx *Tx) error { return nil })
	assert.NoError(t, err)
}

func TestExecuteEmitsEventsAfterCommit(t *testing.T) {
	alice := AccountAddress(1)
	rt := newFundedRuntime(t, 0)

	receipt, err := rt.Execute(Call{From: alice}, func(tx *Tx) error {
		tx.Emit(event.OfferedEvent, 1)
		tx.Sub(AccountAddress(9)).Emit(event.BoughtEvent, 2)
		assert.Empty(t, tx.rt.events.Log())
		return nil
	})
	require.NoError(t, err)

	require.Len(t, receipt.Events, 2)
	assert.Equal(t, event.OfferedEvent, receipt.Events[0].Type)
	assert.Equal(t, event.BoughtEvent, receipt.Events[1].Type)
	assert.Equal(t, receipt.TxID, receipt.Events[1].TxID)
	assert.Len(t, rt.Events().Log(), 2)
}

func TestExecuteRejectsBadCalls(t *testing.T) {
	alice := AccountAddress(1)
	rt := newFundedRuntime(t, 10, alice)
	noop := func(tx *Tx) error { return nil }

	_, err := rt.Execute(Call{}, noop)
	assert.ErrorIs(t, err, ErrNoSender)

	_, err = rt.Execute(Call{From: alice, Value: big.NewInt(1)}, noop)
	assert.ErrorIs(t, err, ErrNoRecipient)

	_, err = rt.Execute(Call{From: alice, To: AccountAddress(2), Value: big.NewInt(11)}, noop)
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	_, err = rt.Execute(Call{From: alice, To: AccountAddress(2), Value: big.NewInt(-1)}, noop)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	assert.Equal(t, "10", rt.BalanceOf(alice).String())
}

func TestExecuteRejectsContractCallers(t *testing.T) {
	alice := AccountAddress(1)
	rt := newFundedRuntime(t, 10, alice)
	contract := rt.Deploy(AccountAddress(0))
	require.NoError(t, rt.Fund(contract, big.NewInt(10)))

	assert.True(t, rt.IsContract(contract))
	assert.False(t, rt.IsContract(alice))

	called := false
	_, err := rt.Execute(Call{From: contract, To: alice, Value: big.NewInt(5)}, func(tx *Tx) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrContractCaller)

	_, err = rt.Execute(Call{From: contract}, func(tx *Tx) error {
		called = true
		return tx.Transfer(alice, big.NewInt(5))
	})
	assert.ErrorIs(t, err, ErrContractCaller)

	assert.False(t, called)
	assert.Equal(t, "10", rt.BalanceOf(contract).String())
	assert.Equal(t, "10", rt.BalanceOf(alice).String())
}

func TestExecuteRejectsValueSentToSelf(t *testing.T) {
	alice := AccountAddress(1)
	rt := newFundedRuntime(t, 10, alice)

	_, err := rt.Execute(Call{From: alice, To: alice, Value: big.NewInt(1)}, func(tx *Tx) error {
		return nil
	})
	assert.ErrorIs(t, err, ErrSelfCall)

	_, err = rt.Execute(Call{From: alice}, func(tx *Tx) error {
		return tx.Transfer(alice, big.NewInt(11))
	})
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	_, err = rt.Execute(Call{From: alice, To: alice}, func(tx *Tx) error {
		return tx.Transfer(alice, big.NewInt(5))
	})
	assert.NoError(t, err)
	assert.Equal(t, "10", rt.BalanceOf(alice).String())
}

func TestTransferFromSender(t *testing.T) {
	alice, bob := AccountAddress(1), AccountAddress(2)
	rt := newFundedRuntime(t, 10, alice)

	_, err := rt.Execute(Call{From: alice}, func(tx *Tx) error {
		if err := tx.Transfer(bob, big.NewInt(4)); err != nil {
			return err
		}
		return tx.Transfer(bob, big.NewInt(0))
	})
	require.NoError(t, err)
	assert.Equal(t, "6", rt.BalanceOf(alice).String())
	assert.Equal(t, "4", rt.BalanceOf(bob).String())

	_, err = rt.Execute(Call{From: bob}, func(tx *Tx) error {
		return tx.Transfer(alice, big.NewInt(5))
	})
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, "4", rt.BalanceOf(bob).String())
}

func TestFund(t *testing.T) {
	rt := newFundedRuntime(t, 0)
	alice := AccountAddress(1)

	require.NoError(t, rt.Fund(alice, big.NewInt(3)))
	require.NoError(t, rt.Fund(alice, big.NewInt(4)))
	assert.Equal(t, "7", rt.BalanceOf(alice).String())

	assert.ErrorIs(t, rt.Fund(alice, big.NewInt(-1)), ErrInvalidAmount)
	assert.ErrorIs(t, rt.Fund(alice, nil), ErrInvalidAmount)

	// callers cannot reach the stored balance
	rt.BalanceOf(alice).SetInt64(1000)
	assert.Equal(t, "7", rt.BalanceOf(alice).String())
}

func TestDeployDerivesDistinctAddresses(t *testing.T) {
	rt := newFundedRuntime(t, 0)
	deployer := AccountAddress(0)

	first := rt.Deploy(deployer)
	second := rt.Deploy(deployer)
	other := rt.Deploy(AccountAddress(1))

	assert.Equal(t, ContractAddress(deployer, 0), first)
	assert.Equal(t, ContractAddress(deployer, 1), second)
	assert.NotEqual(t, first, second)
	assert.NotEqual(t, first, other)

	_, err := entity.NewAddress(first.String())
	assert.NoError(t, err)
}

func TestAccountAddressIsStable(t *testing.T) {
	assert.Equal(t, AccountAddress(3), AccountAddress(3))
	assert.NotEqual(t, AccountAddress(3), AccountAddress(4))
	assert.Len(t, AccountAddress(3).String(), 42)
}
