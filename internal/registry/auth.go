package registry

import "github.com/ZilDuck/nft-marketplace/internal/entity"

// authorized reports whether caller may move a token held by owner: either
// caller is the owner or owner has approved caller as an operator.
func authorized(caller, owner entity.Address, operators map[entity.Address]map[entity.Address]bool) bool {
	if caller == owner {
		return true
	}

	return operators[owner][caller]
}
