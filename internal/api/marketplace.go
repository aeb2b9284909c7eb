package api

import (
	"github.com/ZilDuck/nft-marketplace/internal/chain"
	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"github.com/ZilDuck/nft-marketplace/pkg/ether"
	"net/http"
)

func (s Server) handleGetMarketplace(w http.ResponseWriter, r *http.Request) {
	writeJson(w, http.StatusOK, MarketplaceResponse{
		Address:    s.marketplace.Address(),
		FeeAccount: s.marketplace.FeeAccount(),
		FeePercent: s.marketplace.FeePercent(),
		Policy:     string(s.marketplace.Policy()),
		ItemCount:  s.marketplace.ItemCount(),
	})
}

func (s Server) handleGetItems(w http.ResponseWriter, r *http.Request) {
	items := s.marketplace.Listings()
	if r.URL.Query().Get("unsold") == "true" {
		unsold := make([]entity.MarketplaceItem, 0, len(items))
		for _, item := range items {
			if !item.Sold {
				unsold = append(unsold, item)
			}
		}
		items = unsold
	}

	writeJson(w, http.StatusOK, items)
}

func (s Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	itemId, err := getId(r, "itemId")
	if err != nil {
		writeError(w, err)
		return
	}

	item, err := s.marketplace.Items(itemId)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJson(w, http.StatusOK, item)
}

func (s Server) handleGetTotalPrice(w http.ResponseWriter, r *http.Request) {
	itemId, err := getId(r, "itemId")
	if err != nil {
		writeError(w, err)
		return
	}

	total, err := s.marketplace.GetTotalPrice(itemId)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJson(w, http.StatusOK, TotalPriceResponse{
		ItemId: itemId,
		Total:  total.String(),
		Ether:  ether.FromWei(total),
	})
}

func (s Server) handleMakeItem(w http.ResponseWriter, r *http.Request) {
	var req MakeItemRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	price, _ := req.PriceWei()
	var itemId uint64
	receipt, err := s.execute(r, entity.ZeroAddress, "", func(tx *chain.Tx) (err error) {
		itemId, err = s.marketplace.MakeItem(tx, s.nft, req.TokenId, price)
		return
	})
	if err != nil {
		writeError(w, err)
		return
	}

	resp := newTxResponse(receipt)
	resp.ItemId = itemId
	writeJson(w, http.StatusCreated, resp)
}

func (s Server) handlePurchaseItem(w http.ResponseWriter, r *http.Request) {
	itemId, err := getId(r, "itemId")
	if err != nil {
		writeError(w, err)
		return
	}

	var req PurchaseRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	receipt, err := s.execute(r, s.marketplace.Address(), req.Value, func(tx *chain.Tx) error {
		return s.marketplace.PurchaseItem(tx, itemId)
	})
	if err != nil {
		writeError(w, err)
		return
	}

	resp := newTxResponse(receipt)
	resp.ItemId = itemId
	writeJson(w, http.StatusOK, resp)
}
