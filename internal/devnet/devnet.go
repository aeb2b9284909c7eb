package devnet

import (
	"errors"
	"fmt"
	"github.com/ZilDuck/nft-marketplace/internal/chain"
	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"github.com/ZilDuck/nft-marketplace/pkg/ether"
	"go.uber.org/zap"
)

var (
	ErrNoAccounts = errors.New("devnet needs at least one account")
)

// Devnet is the set of funded development accounts. The first account
// deploys the contracts and so receives the marketplace fees.
type Devnet struct {
	accounts []entity.Address
}

func New(rt *chain.Runtime, count int, balance string) (*Devnet, error) {
	if count <= 0 {
		return nil, ErrNoAccounts
	}

	wei, err := ether.ToWei(balance)
	if err != nil {
		return nil, fmt.Errorf("dev account balance %q: %w", balance, err)
	}

	accounts := make([]entity.Address, count)
	for n := range accounts {
		accounts[n] = chain.AccountAddress(n)
		if err := rt.Fund(accounts[n], wei); err != nil {
			return nil, err
		}
	}

	zap.L().With(zap.Int("accounts", count), zap.String("balance", balance)).Info("Devnet accounts funded")

	return &Devnet{accounts}, nil
}

func (d *Devnet) Deployer() entity.Address {
	return d.accounts[0]
}

func (d *Devnet) Accounts() []entity.Address {
	accounts := make([]entity.Address, len(d.accounts))
	copy(accounts, d.accounts)

	return accounts
}

// Account returns the nth account.
func (d *Devnet) Account(n int) (entity.Address, error) {
	if n < 0 || n >= len(d.accounts) {
		return entity.ZeroAddress, fmt.Errorf("no dev account %d", n)
	}

	return d.accounts[n], nil
}
