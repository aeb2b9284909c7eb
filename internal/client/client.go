package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/ZilDuck/nft-marketplace/internal/api"
	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"github.com/hashicorp/go-retryablehttp"
	"io"
	"net/http"
	"strings"
)

var (
	ErrNoCaller = errors.New("no caller configured")
)

// Error is a non-2xx response from the marketplace api.
type Error struct {
	StatusCode int
	Message    string
}

func (e Error) Error() string {
	return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
}

type Client struct {
	baseUrl string
	caller  entity.Address
	http    *retryablehttp.Client
}

func New(baseUrl string, httpClient *retryablehttp.Client) *Client {
	return &Client{baseUrl: strings.TrimRight(baseUrl, "/"), http: httpClient}
}

// As returns a client whose mutating calls are made by caller.
func (c *Client) As(caller entity.Address) *Client {
	return &Client{baseUrl: c.baseUrl, caller: caller, http: c.http}
}

func (c *Client) Caller() entity.Address {
	return c.caller
}

func (c *Client) Accounts() (accounts []api.AccountResponse, err error) {
	err = c.get("/accounts", &accounts)
	return
}

func (c *Client) Balance(addr entity.Address) (account api.AccountResponse, err error) {
	err = c.get("/balances/"+addr.String(), &account)
	return
}

func (c *Client) NftContract() (resp api.NftContractResponse, err error) {
	err = c.get("/nft", &resp)
	return
}

func (c *Client) Nft(tokenId uint64) (nft entity.Nft, err error) {
	err = c.get(fmt.Sprintf("/nft/%d", tokenId), &nft)
	return
}

func (c *Client) NftMetadata(tokenId uint64) (md map[string]interface{}, err error) {
	err = c.get(fmt.Sprintf("/nft/%d/metadata", tokenId), &md)
	return
}

func (c *Client) NftActions(tokenId uint64) (resp api.ActionsResponse, err error) {
	err = c.get(fmt.Sprintf("/nft/%d/actions", tokenId), &resp)
	return
}

func (c *Client) Mint(uri string) (resp api.TxResponse, err error) {
	err = c.post("/nft/mint", api.MintRequest{Uri: uri}, &resp)
	return
}

func (c *Client) SetApprovalForAll(operator entity.Address, approved bool) (resp api.TxResponse, err error) {
	err = c.post("/nft/approval", api.ApprovalRequest{Operator: operator.String(), Approved: approved}, &resp)
	return
}

func (c *Client) Marketplace() (resp api.MarketplaceResponse, err error) {
	err = c.get("/marketplace", &resp)
	return
}

func (c *Client) Items() (items []entity.MarketplaceItem, err error) {
	err = c.get("/marketplace/items", &items)
	return
}

func (c *Client) Item(itemId uint64) (item entity.MarketplaceItem, err error) {
	err = c.get(fmt.Sprintf("/marketplace/items/%d", itemId), &item)
	return
}

func (c *Client) TotalPrice(itemId uint64) (resp api.TotalPriceResponse, err error) {
	err = c.get(fmt.Sprintf("/marketplace/items/%d/total", itemId), &resp)
	return
}

// MakeItem lists tokenId at price, given in wei.
func (c *Client) MakeItem(tokenId uint64, price string) (resp api.TxResponse, err error) {
	err = c.post("/marketplace/items", api.MakeItemRequest{TokenId: tokenId, Price: price}, &resp)
	return
}

// PurchaseItem buys itemId, attaching value wei as payment.
func (c *Client) PurchaseItem(itemId uint64, value string) (resp api.TxResponse, err error) {
	err = c.post(fmt.Sprintf("/marketplace/items/%d/purchase", itemId), api.PurchaseRequest{Value: value}, &resp)
	return
}

func (c *Client) get(path string, out interface{}) error {
	req, err := retryablehttp.NewRequest(http.MethodGet, c.baseUrl+path, nil)
	if err != nil {
		return err
	}

	return c.do(req, out)
}

func (c *Client) post(path string, body interface{}, out interface{}) error {
	if c.caller.IsZero() {
		return ErrNoCaller
	}

	b, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := retryablehttp.NewRequest(http.MethodPost, c.baseUrl+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(api.CallerHeader, c.caller.String())

	return c.do(req, out)
}

func (c *Client) do(req *retryablehttp.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp api.ErrorResponse
		if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error == "" {
			errResp.Error = strings.TrimSpace(string(body))
		}
		return Error{StatusCode: resp.StatusCode, Message: errResp.Error}
	}

	return json.Unmarshal(body, out)
}
