// Package ether converts between decimal ether amounts and wei, the smallest
// unit all ledger amounts are held in.
package ether

import (
	"errors"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

const Decimals = 18

var (
	ErrInvalidAmount = errors.New("invalid ether amount")
	ErrTooPrecise    = errors.New("ether amount has more than 18 decimals")
)

// ToWei parses an ether amount such as "2.02" into wei.
func ToWei(amount string) (*big.Int, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return nil, ErrInvalidAmount
	}

	wei := d.Shift(Decimals)
	if !wei.Equal(wei.Truncate(0)) {
		return nil, ErrTooPrecise
	}

	return wei.BigInt(), nil
}

// MustToWei is ToWei for constants. It panics on bad input.
func MustToWei(amount string) *big.Int {
	wei, err := ToWei(amount)
	if err != nil {
		panic(err)
	}

	return wei
}

// FromWei formats wei as an ether amount without trailing zeros.
func FromWei(wei *big.Int) string {
	if wei == nil {
		return "0"
	}

	return decimal.NewFromBigInt(wei, -Decimals).String()
}

// ParseWei parses a base-10 wei amount.
func ParseWei(amount string) (*big.Int, error) {
	wei, ok := new(big.Int).SetString(strings.TrimSpace(amount), 10)
	if !ok {
		return nil, ErrInvalidAmount
	}

	return wei, nil
}
