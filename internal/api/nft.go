package api

import (
	"github.com/ZilDuck/nft-marketplace/internal/chain"
	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"go.uber.org/zap"
	"net/http"
)

func (s Server) handleGetNftContract(w http.ResponseWriter, r *http.Request) {
	writeJson(w, http.StatusOK, NftContractResponse{
		Address:    s.nft.Address(),
		Name:       s.nft.Name(),
		Symbol:     s.nft.Symbol(),
		TokenCount: s.nft.TokenCount(),
	})
}

func (s Server) handleGetNft(w http.ResponseWriter, r *http.Request) {
	tokenId, err := getId(r, "tokenId")
	if err != nil {
		writeError(w, err)
		return
	}

	nft, err := s.nft.Token(tokenId)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJson(w, http.StatusOK, nft)
}

func (s Server) handleGetNftMetadata(w http.ResponseWriter, r *http.Request) {
	tokenId, err := getId(r, "tokenId")
	if err != nil {
		writeError(w, err)
		return
	}

	nft, err := s.nft.Token(tokenId)
	if err != nil {
		writeError(w, err)
		return
	}

	md, err := s.metadataService.GetMetadata(nft)
	if err != nil {
		zap.L().With(zap.Error(err), zap.Uint64("tokenId", tokenId)).Warn("NFT metadata not available")
		writeError(w, err)
		return
	}

	writeJson(w, http.StatusOK, md)
}

func (s Server) handleGetNftActions(w http.ResponseWriter, r *http.Request) {
	tokenId, err := getId(r, "tokenId")
	if err != nil {
		writeError(w, err)
		return
	}

	actions := s.actionRepo.GetActionsForToken(s.nft.Address(), tokenId)
	writeJson(w, http.StatusOK, ActionsResponse{Actions: actions, Total: len(actions)})
}

func (s Server) handleMint(w http.ResponseWriter, r *http.Request) {
	var req MintRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	var tokenId uint64
	receipt, err := s.execute(r, entity.ZeroAddress, "", func(tx *chain.Tx) (err error) {
		tokenId, err = s.nft.Mint(tx, req.Uri)
		return
	})
	if err != nil {
		writeError(w, err)
		return
	}

	resp := newTxResponse(receipt)
	resp.TokenId = tokenId
	writeJson(w, http.StatusCreated, resp)
}

func (s Server) handleSetApprovalForAll(w http.ResponseWriter, r *http.Request) {
	var req ApprovalRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	operator, _ := entity.NewAddress(req.Operator)
	receipt, err := s.execute(r, entity.ZeroAddress, "", func(tx *chain.Tx) error {
		return s.nft.SetApprovalForAll(tx, operator, req.Approved)
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJson(w, http.StatusOK, newTxResponse(receipt))
}

func (s Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	var req TransferRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	from, _ := entity.NewAddress(req.From)
	to, _ := entity.NewAddress(req.To)
	receipt, err := s.execute(r, entity.ZeroAddress, "", func(tx *chain.Tx) error {
		return s.nft.TransferFrom(tx, from, to, req.TokenId)
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJson(w, http.StatusOK, newTxResponse(receipt))
}
