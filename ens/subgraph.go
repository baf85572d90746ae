package ens

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/tranvictor/feedme/metrics"
)

const DefaultSubgraphURL = "https://api.thegraph.com/subgraphs/name/ensdomains/ens"

const ownedNamesQuery = `query GetDomains($owner: String!) {
  domains(where: { owner: $owner, name_not: null }, orderBy: name, first: 100) {
    name
    expiryDate
  }
}`

type OwnedName struct {
	Name       string `json:"name"`
	ExpiryDate string `json:"expiryDate,omitempty"`
}

// Subgraph queries the ENS subgraph over GraphQL.
type Subgraph struct {
	url    string
	client *http.Client
}

func NewSubgraph(url string, client *http.Client) *Subgraph {
	if url == "" {
		url = DefaultSubgraphURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Subgraph{url: url, client: client}
}

type graphRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

type graphResponse struct {
	Data struct {
		Domains []OwnedName `json:"domains"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// OwnedNames lists the second level .eth names registered to owner.
func (s *Subgraph) OwnedNames(ctx context.Context, owner common.Address) ([]OwnedName, error) {
	body, err := json.Marshal(graphRequest{
		Query:     ownedNamesQuery,
		Variables: map[string]interface{}{"owner": strings.ToLower(owner.Hex())},
	})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	metrics.ObserveExternal("ens_subgraph", err)
	if err != nil {
		return nil, fmt.Errorf("querying ens subgraph: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ens subgraph returned status %d", resp.StatusCode)
	}

	var result graphResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding ens subgraph response: %w", err)
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("ens subgraph: %s", result.Errors[0].Message)
	}

	names := []OwnedName{}
	for _, d := range result.Data.Domains {
		if strings.HasSuffix(d.Name, Suffix) && strings.Count(d.Name, ".") == 1 {
			names = append(names, d)
		}
	}
	return names, nil
}
