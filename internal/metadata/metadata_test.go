package metadata

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"github.com/gorilla/mux"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type metadataServer struct {
	*httptest.Server
	hits int32
}

func newMetadataServer(t *testing.T) *metadataServer {
	s := &metadataServer{}

	r := mux.NewRouter()
	r.HandleFunc("/square/{id}", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&s.hits, 1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"name": "Square #%s", "image": "ipfs://QmImage"}`, mux.Vars(r)["id"])
	})
	r.HandleFunc("/ipfs/{cid}", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&s.hits, 1)
		fmt.Fprintf(w, `{"cid": %q}`, mux.Vars(r)["cid"])
	})
	r.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"name": `)
	})
	r.HandleFunc("/large", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"name": %q, "image": "ipfs://QmImage"}`, strings.Repeat("square", 64))
	})
	r.HandleFunc("/large-image", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"image": %q}`, s.URL+"/pixels")
	})
	r.HandleFunc("/pixels", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, strings.Repeat("x", 256))
	})

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)

	return s
}

func newService(gateway string) Service {
	return newLimitedService(gateway, 0)
}

func newLimitedService(gateway string, maxBytes int64) Service {
	client := retryablehttp.NewClient()
	client.RetryMax = 0
	client.Logger = nil

	return NewMetadataService(client, cache.New(time.Minute, time.Minute), gateway, maxBytes)
}

func TestGetMetadata(t *testing.T) {
	server := newMetadataServer(t)
	s := newService(server.URL)

	md, err := s.GetMetadata(entity.Nft{TokenId: 1, TokenUri: server.URL + "/square/1"})
	require.NoError(t, err)
	assert.Equal(t, "Square #1", md["name"])
	assert.Equal(t, "ipfs://QmImage", md["image"])
}

func TestGetMetadataIsCached(t *testing.T) {
	server := newMetadataServer(t)
	s := newService(server.URL)
	nft := entity.Nft{TokenId: 1, TokenUri: server.URL + "/square/1"}

	for i := 0; i < 3; i++ {
		_, err := s.GetMetadata(nft)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&server.hits))

	_, err := s.GetMetadata(entity.Nft{TokenId: 2, TokenUri: server.URL + "/square/2"})
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&server.hits))
}

func TestGetMetadataFromIpfsGateway(t *testing.T) {
	server := newMetadataServer(t)
	s := newService(server.URL)

	md, err := s.GetMetadata(entity.Nft{TokenUri: "ipfs://QmSquare"})
	require.NoError(t, err)
	assert.Equal(t, "QmSquare", md["cid"])
}

func TestGetMetadataFailures(t *testing.T) {
	server := newMetadataServer(t)
	s := newService(server.URL)

	_, err := s.GetMetadata(entity.Nft{TokenUri: server.URL + "/missing"})
	assert.ErrorIs(t, err, ErrMetadataUnavailable)

	_, err = s.GetMetadata(entity.Nft{TokenUri: server.URL + "/broken"})
	assert.ErrorIs(t, err, ErrMetadataUnavailable)

	_, err = s.GetMetadata(entity.Nft{TokenUri: "Sample URI"})
	assert.ErrorIs(t, err, entity.ErrInvalidMetadataUri)
}

func TestFetchImage(t *testing.T) {
	server := newMetadataServer(t)
	s := newService(server.URL)

	data, err := s.FetchImage(entity.Nft{TokenUri: server.URL + "/square/1"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"cid": "QmImage"}`, string(data))
}

func TestFetchImageWithoutImage(t *testing.T) {
	server := newMetadataServer(t)
	s := newService(server.URL)

	_, err := s.FetchImage(entity.Nft{TokenUri: "ipfs://QmSquare"})
	assert.ErrorIs(t, err, ErrNoImage)
}

func TestRemoteBodiesAreLimited(t *testing.T) {
	server := newMetadataServer(t)
	s := newLimitedService(server.URL, 128)

	_, err := s.GetMetadata(entity.Nft{TokenUri: server.URL + "/large"})
	assert.ErrorIs(t, err, ErrTooLarge)
	assert.ErrorIs(t, err, ErrMetadataUnavailable)

	_, err = s.FetchImage(entity.Nft{TokenUri: server.URL + "/large-image"})
	assert.ErrorIs(t, err, ErrTooLarge)

	md, err := s.GetMetadata(entity.Nft{TokenUri: server.URL + "/square/1"})
	require.NoError(t, err)
	assert.Equal(t, "Square #1", md["name"])
}
