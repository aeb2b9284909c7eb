package entity

import (
	"encoding/hex"
	"errors"
	"strings"
)

var (
	ErrInvalidAddress = errors.New("invalid address")
)

// Address identifies an account or a contract. Addresses are held in their
// lowercase 0x-prefixed hex form so that they compare by value.
type Address string

const ZeroAddress Address = ""

const addressLength = 20

func NewAddress(addr string) (Address, error) {
	addr = strings.ToLower(strings.TrimSpace(addr))
	if len(addr) != 2+addressLength*2 || addr[:2] != "0x" {
		return ZeroAddress, ErrInvalidAddress
	}
	if _, err := hex.DecodeString(addr[2:]); err != nil {
		return ZeroAddress, ErrInvalidAddress
	}

	return Address(addr), nil
}

func AddressFromBytes(b []byte) Address {
	if len(b) > addressLength {
		b = b[len(b)-addressLength:]
	}

	return Address("0x" + hex.EncodeToString(b))
}

func (a Address) String() string {
	return string(a)
}

func (a Address) IsZero() bool {
	return a == ZeroAddress
}
