package asset

import (
	"errors"
	"fmt"
	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"github.com/ZilDuck/nft-marketplace/internal/metadata"
	"github.com/ZilDuck/nft-marketplace/internal/registry"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"net/http"
	"strconv"
)

type Server struct {
	nft             registry.Registry
	metadataService metadata.Service
}

func NewServer(nft registry.Registry, metadataService metadata.Service) Server {
	return Server{nft, metadataService}
}

func (s Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", s.handleHomepage).Methods("GET")
	r.HandleFunc("/{contractAddr}/{tokenId}", s.handleGetAsset).Methods("GET")
	r.NotFoundHandler = notFoundHandler()

	return r
}

func (s Server) handleHomepage(w http.ResponseWriter, r *http.Request) {
	_, _ = fmt.Fprintf(w, "%s Asset CDN", s.nft.Name())
}

func (s Server) handleGetAsset(w http.ResponseWriter, r *http.Request) {
	contractAddr, err := entity.NewAddress(mux.Vars(r)["contractAddr"])
	if err != nil || contractAddr != s.nft.Address() {
		http.Error(w, "NFT not available", http.StatusNotFound)
		return
	}
	tokenId, err := getTokenId(r)
	if err != nil {
		http.Error(w, "NFT not available", http.StatusNotFound)
		return
	}

	nft, err := s.nft.Token(tokenId)
	if err != nil {
		zap.L().With(zap.Error(err)).Warn("NFT not available")
		http.Error(w, "NFT not available", http.StatusNotFound)
		return
	}

	data, err := s.metadataService.FetchImage(nft)
	if err != nil {
		zap.L().With(zap.Error(err)).Warn("NFT asset not available")
		http.Error(w, "NFT asset not available", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
	zap.L().With(zap.String("contract", contractAddr.String()), zap.Uint64("tokenId", tokenId)).Info("Serving nft")
}

func getTokenId(r *http.Request) (uint64, error) {
	tokenId, ok := mux.Vars(r)["tokenId"]
	if !ok {
		return 0, errors.New("invalid parameters")
	}

	return strconv.ParseUint(tokenId, 10, 64)
}

func notFoundHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = fmt.Fprintf(w, "Page not found")
	})
}
