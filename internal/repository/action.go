package repository

import (
	"errors"
	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"sync"
)

var (
	ErrNftActionNotFound = errors.New("nft action not found")
)

type NftActionRepository interface {
	Save(action entity.NftAction)
	GetAction(slug string) (entity.NftAction, error)
	GetActionsForToken(contract entity.Address, tokenId uint64) []entity.NftAction
	GetActions(size, page int) ([]entity.NftAction, int)
}

type nftActionRepository struct {
	mu      sync.RWMutex
	actions []entity.NftAction
	bySlug  map[string]int
}

func NewNftActionRepository() NftActionRepository {
	return &nftActionRepository{
		actions: make([]entity.NftAction, 0),
		bySlug:  make(map[string]int),
	}
}

// Save stores action, replacing any earlier action with the same slug.
func (r *nftActionRepository) Save(action entity.NftAction) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if idx, ok := r.bySlug[action.Slug()]; ok {
		r.actions[idx] = action
		return
	}

	r.bySlug[action.Slug()] = len(r.actions)
	r.actions = append(r.actions, action)
}

func (r *nftActionRepository) GetAction(slug string) (entity.NftAction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx, ok := r.bySlug[slug]
	if !ok {
		return entity.NftAction{}, ErrNftActionNotFound
	}

	return r.actions[idx], nil
}

func (r *nftActionRepository) GetActionsForToken(contract entity.Address, tokenId uint64) []entity.NftAction {
	r.mu.RLock()
	defer r.mu.RUnlock()

	actions := make([]entity.NftAction, 0)
	for _, action := range r.actions {
		if action.Contract == contract && action.TokenId == tokenId {
			actions = append(actions, action)
		}
	}

	return actions
}

// GetActions pages through every action in the order they were indexed.
// Pages start at 1.
func (r *nftActionRepository) GetActions(size, page int) ([]entity.NftAction, int) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := len(r.actions)
	if size <= 0 || page <= 0 {
		return []entity.NftAction{}, total
	}

	from := (page - 1) * size
	if from >= total {
		return []entity.NftAction{}, total
	}
	to := from + size
	if to > total {
		to = total
	}

	actions := make([]entity.NftAction, to-from)
	copy(actions, r.actions[from:to])

	return actions, total
}
