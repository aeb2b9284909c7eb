package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"github.com/ZilDuck/nft-marketplace/internal/asset"
	"github.com/ZilDuck/nft-marketplace/internal/chain"
	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"github.com/ZilDuck/nft-marketplace/internal/event"
	"github.com/ZilDuck/nft-marketplace/internal/marketplace"
	"github.com/ZilDuck/nft-marketplace/internal/metadata"
	"github.com/ZilDuck/nft-marketplace/internal/registry"
	"github.com/ZilDuck/nft-marketplace/internal/repository"
	"github.com/ZilDuck/nft-marketplace/pkg/ether"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"net/http"
	"strconv"
)

const CallerHeader = "X-Caller"

var (
	ErrMissingCaller  = errors.New("missing caller")
	ErrInvalidRequest = errors.New("invalid request")
)

type Server struct {
	rt              *chain.Runtime
	nft             registry.Registry
	marketplace     marketplace.Marketplace
	actionRepo      repository.NftActionRepository
	metadataService metadata.Service
	accounts        []entity.Address
}

func NewServer(
	rt *chain.Runtime,
	nft registry.Registry,
	market marketplace.Marketplace,
	actionRepo repository.NftActionRepository,
	metadataService metadata.Service,
	accounts []entity.Address,
) Server {
	return Server{rt, nft, market, actionRepo, metadataService, accounts}
}

func (s Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", s.handleHealth).Methods("GET")
	r.HandleFunc("/accounts", s.handleGetAccounts).Methods("GET")
	r.HandleFunc("/balances/{address}", s.handleGetBalance).Methods("GET")
	r.HandleFunc("/events", s.handleGetEvents).Methods("GET")

	r.HandleFunc("/nft", s.handleGetNftContract).Methods("GET")
	r.HandleFunc("/nft/mint", s.handleMint).Methods("POST")
	r.HandleFunc("/nft/approval", s.handleSetApprovalForAll).Methods("POST")
	r.HandleFunc("/nft/transfer", s.handleTransfer).Methods("POST")
	r.HandleFunc("/nft/{tokenId:[0-9]+}", s.handleGetNft).Methods("GET")
	r.HandleFunc("/nft/{tokenId:[0-9]+}/metadata", s.handleGetNftMetadata).Methods("GET")
	r.HandleFunc("/nft/{tokenId:[0-9]+}/actions", s.handleGetNftActions).Methods("GET")

	r.HandleFunc("/marketplace", s.handleGetMarketplace).Methods("GET")
	r.HandleFunc("/marketplace/items", s.handleGetItems).Methods("GET")
	r.HandleFunc("/marketplace/items", s.handleMakeItem).Methods("POST")
	r.HandleFunc("/marketplace/items/{itemId:[0-9]+}", s.handleGetItem).Methods("GET")
	r.HandleFunc("/marketplace/items/{itemId:[0-9]+}/total", s.handleGetTotalPrice).Methods("GET")
	r.HandleFunc("/marketplace/items/{itemId:[0-9]+}/purchase", s.handlePurchaseItem).Methods("POST")

	assets := asset.NewServer(s.nft, s.metadataService).Router()
	r.PathPrefix("/assets/").Handler(http.StripPrefix("/assets", assets))

	r.NotFoundHandler = notFoundHandler()

	return r
}

func (s Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}

func (s Server) handleGetAccounts(w http.ResponseWriter, r *http.Request) {
	accounts := make([]AccountResponse, 0, len(s.accounts))
	for _, addr := range s.accounts {
		accounts = append(accounts, newAccountResponse(addr, s.rt.BalanceOf(addr)))
	}

	writeJson(w, http.StatusOK, accounts)
}

func (s Server) handleGetBalance(w http.ResponseWriter, r *http.Request) {
	addr, err := entity.NewAddress(mux.Vars(r)["address"])
	if err != nil {
		writeError(w, err)
		return
	}

	writeJson(w, http.StatusOK, newAccountResponse(addr, s.rt.BalanceOf(addr)))
}

func (s Server) handleGetEvents(w http.ResponseWriter, r *http.Request) {
	events := s.rt.Events().Log()
	if eventType := r.URL.Query().Get("type"); eventType != "" {
		events = s.rt.Events().LogByType(event.Type(eventType))
	}

	writeJson(w, http.StatusOK, events)
}

// execute runs fn as a call from the request's caller.
func (s Server) execute(r *http.Request, to entity.Address, value string, fn func(tx *chain.Tx) error) (chain.Receipt, error) {
	caller, err := getCaller(r)
	if err != nil {
		return chain.Receipt{}, err
	}

	call := chain.Call{From: caller, To: to}
	if value != "" {
		if call.Value, err = ether.ParseWei(value); err != nil {
			return chain.Receipt{}, fmt.Errorf("%w: value %q", ErrInvalidRequest, value)
		}
	}

	return s.rt.Execute(call, fn)
}

func getCaller(r *http.Request) (entity.Address, error) {
	header := r.Header.Get(CallerHeader)
	if header == "" {
		return entity.ZeroAddress, ErrMissingCaller
	}

	return entity.NewAddress(header)
}

func getId(r *http.Request, name string) (uint64, error) {
	id, ok := mux.Vars(r)[name]
	if !ok {
		return 0, ErrInvalidRequest
	}

	return strconv.ParseUint(id, 10, 64)
}

func decode(r *http.Request, req interface{ Validate() error }) error {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidRequest, err)
	}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidRequest, err)
	}

	return nil
}

func writeJson(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zap.L().With(zap.Error(err)).Error("Failed to write response")
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		zap.L().With(zap.Error(err)).Error("Request failed")
	}

	writeJson(w, status, ErrorResponse{Error: err.Error()})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, registry.ErrNotFound),
		errors.Is(err, marketplace.ErrNotFound),
		errors.Is(err, metadata.ErrMetadataUnavailable):
		return http.StatusNotFound
	case errors.Is(err, registry.ErrUnauthorized),
		errors.Is(err, registry.ErrOwnerMismatch),
		errors.Is(err, chain.ErrContractCaller),
		errors.Is(err, marketplace.ErrInvalidBuyer):
		return http.StatusForbidden
	case errors.Is(err, marketplace.ErrAlreadySold):
		return http.StatusConflict
	case errors.Is(err, marketplace.ErrInsufficientPayment),
		errors.Is(err, marketplace.ErrOverpayment),
		errors.Is(err, chain.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.Is(err, ErrMissingCaller):
		return http.StatusUnauthorized
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, entity.ErrInvalidAddress),
		errors.Is(err, entity.ErrInvalidMetadataUri),
		errors.Is(err, marketplace.ErrInvalidPrice),
		errors.Is(err, registry.ErrInvalidUri),
		errors.Is(err, registry.ErrInvalidRecipient),
		errors.Is(err, registry.ErrInvalidOperator),
		errors.Is(err, chain.ErrInvalidAmount),
		errors.Is(err, chain.ErrNoRecipient),
		errors.Is(err, chain.ErrSelfCall),
		errors.Is(err, strconv.ErrSyntax),
		errors.Is(err, strconv.ErrRange):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func notFoundHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJson(w, http.StatusNotFound, ErrorResponse{Error: "page not found"})
	})
}
