package entity

import (
	"errors"
	"fmt"
	"github.com/gosimple/slug"
	"regexp"
)

var (
	ErrInvalidMetadataUri = errors.New("invalid metadata uri")
)

type Nft struct {
	Contract Address `json:"contract"`
	TokenId  uint64  `json:"tokenId"`
	TokenUri string  `json:"tokenUri"`
	Owner    Address `json:"owner"`
}

func (n Nft) Slug() string {
	return CreateNftSlug(n.TokenId, n.Contract)
}

func CreateNftSlug(tokenId uint64, contract Address) string {
	return slug.Make(fmt.Sprintf("nft-%d-%s", tokenId, contract))
}

// MetadataUri resolves the token uri to a fetchable http(s) location, moving
// ipfs content onto the given gateway.
func (n Nft) MetadataUri(ipfsGateway string) (string, error) {
	metadataUri := n.TokenUri

	if cid := getIpfs(metadataUri); cid != "" {
		metadataUri = fmt.Sprintf("%s/ipfs/%s", ipfsGateway, cid)
	}

	if len(metadataUri) < 4 || metadataUri[:4] != "http" {
		return "", ErrInvalidMetadataUri
	}

	return metadataUri, nil
}

var ipfsCid = regexp.MustCompile("(Qm[1-9A-HJ-NP-Za-km-z]{44}.*$)")

func getIpfs(metadataUri string) string {
	if len(metadataUri) < 7 {
		return ""
	}

	if metadataUri[:7] == "ipfs://" {
		return metadataUri[7:]
	}

	parts := ipfsCid.FindStringSubmatch(metadataUri)
	if len(parts) == 2 {
		return parts[1]
	}

	return ""
}
