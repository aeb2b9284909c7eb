package indexer

import (
	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"github.com/ZilDuck/nft-marketplace/internal/event"
	"github.com/ZilDuck/nft-marketplace/internal/factory"
	"github.com/ZilDuck/nft-marketplace/internal/repository"
	"go.uber.org/zap"
)

// ActionIndexer turns emitted ledger events into the nft action history.
type ActionIndexer interface {
	Subscribe(events *event.Manager)
	IndexEvent(evt event.Event)
}

type actionIndexer struct {
	actionRepo repository.NftActionRepository
}

func NewActionIndexer(actionRepo repository.NftActionRepository) ActionIndexer {
	return actionIndexer{actionRepo}
}

// Subscribe indexes through a single listener so actions are saved in the
// order the ledger emitted them.
func (i actionIndexer) Subscribe(events *event.Manager) {
	events.AddEventsListener(i.IndexEvent, event.TransferEvent, event.OfferedEvent, event.BoughtEvent)
}

func (i actionIndexer) IndexEvent(evt event.Event) {
	var action entity.NftAction

	switch data := evt.Data.(type) {
	case entity.NftTransfer:
		action = factory.CreateTransferAction(evt, data)
	case entity.MarketplaceListing:
		action = factory.CreateListingAction(evt, data)
	case entity.MarketplaceSale:
		action = factory.CreateSaleAction(evt, data)
	default:
		zap.L().With(zap.String("type", string(evt.Type)), zap.String("txId", evt.TxID)).Warn("Indexer: Unsupported event")
		return
	}

	i.actionRepo.Save(action)

	zap.L().With(
		zap.String("contractAddr", action.Contract.String()),
		zap.Uint64("tokenId", action.TokenId),
		zap.String("action", string(action.Action)),
		zap.String("txId", action.TxID),
	).Debug("Indexed nft action")
}
