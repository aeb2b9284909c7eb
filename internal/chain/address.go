package chain

import (
	"encoding/binary"
	"fmt"
	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"golang.org/x/crypto/sha3"
)

// ContractAddress derives the address of the contract deployed by deployer
// at the given nonce.
func ContractAddress(deployer entity.Address, nonce uint64) entity.Address {
	nonceBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(nonceBytes, nonce)

	return entity.AddressFromBytes(keccak256([]byte(deployer), nonceBytes))
}

// AccountAddress derives the address of the nth development account.
func AccountAddress(n int) entity.Address {
	return entity.AddressFromBytes(keccak256([]byte(fmt.Sprintf("account-%d", n))))
}

func keccak256(data ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, b := range data {
		h.Write(b)
	}

	return h.Sum(nil)
}
