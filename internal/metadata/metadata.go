package metadata

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"io"
	"net/http"
)

// DefaultMaxBytes caps a metadata document or image read from a remote host.
const DefaultMaxBytes int64 = 10 << 20

var (
	ErrMetadataUnavailable = errors.New("metadata unavailable")
	ErrNoImage             = errors.New("metadata has no image")
	ErrTooLarge            = errors.New("remote body too large")
)

type Service interface {
	GetMetadata(nft entity.Nft) (map[string]interface{}, error)
	FetchImage(nft entity.Nft) ([]byte, error)
}

type service struct {
	client      *retryablehttp.Client
	cache       *cache.Cache
	ipfsGateway string
	maxBytes    int64
}

func NewMetadataService(client *retryablehttp.Client, cache *cache.Cache, ipfsGateway string, maxBytes int64) Service {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	return service{client, cache, ipfsGateway, maxBytes}
}

func (s service) GetMetadata(nft entity.Nft) (map[string]interface{}, error) {
	metadataUri, err := nft.MetadataUri(s.ipfsGateway)
	if err != nil {
		return nil, err
	}

	if md, found := s.cache.Get(metadataUri); found {
		return md.(map[string]interface{}), nil
	}

	body, err := s.fetch(metadataUri)
	if err != nil {
		return nil, err
	}

	var md map[string]interface{}
	if err := json.Unmarshal(body, &md); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMetadataUnavailable, err)
	}

	s.cache.SetDefault(metadataUri, md)

	return md, nil
}

// FetchImage downloads the image referenced by the token metadata.
func (s service) FetchImage(nft entity.Nft) ([]byte, error) {
	md, err := s.GetMetadata(nft)
	if err != nil {
		return nil, err
	}

	image, ok := md["image"].(string)
	if !ok || image == "" {
		return nil, ErrNoImage
	}

	imageUri, err := entity.Nft{TokenUri: image}.MetadataUri(s.ipfsGateway)
	if err != nil {
		return nil, err
	}

	return s.fetch(imageUri)
}

// fetch reads at most maxBytes of a 200 response body.
func (s service) fetch(uri string) ([]byte, error) {
	resp, err := s.client.Get(uri)
	if err != nil {
		zap.L().With(zap.Error(err), zap.String("uri", uri)).Warn("Metadata: Failed to fetch")
		return nil, fmt.Errorf("%w: %s", ErrMetadataUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s", ErrMetadataUnavailable, resp.Status)
	}

	buf := new(bytes.Buffer)
	if _, err = buf.ReadFrom(io.LimitReader(resp.Body, s.maxBytes+1)); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMetadataUnavailable, err)
	}
	if int64(buf.Len()) > s.maxBytes {
		zap.L().With(zap.String("uri", uri), zap.Int64("maxBytes", s.maxBytes)).Warn("Metadata: Body too large")
		return nil, fmt.Errorf("%w: %w: over %d bytes", ErrMetadataUnavailable, ErrTooLarge, s.maxBytes)
	}

	return buf.Bytes(), nil
}
