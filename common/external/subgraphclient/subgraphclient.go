// Package subgraphclient queries the historical-activity subgraph the
// Validator (C4) consults to confirm or drop a Finding.
package subgraphclient

import (
	"context"
	_ "embed"

	"github.com/machinebox/graphql"

	"github.com/devansh0703/mev-bot-detector/common/external/subgraphclient/subgraphclienterrors"
)

//go:embed subgraphassets/recentswapsquery.graphql
var recentSwapsQuery string

// recentSwapsLookback is the N in "last N indexed swaps"; not externally
// configurable, matching the fixed-endpoint constant it accompanies.
const recentSwapsLookback = 100

type SubgraphClient struct {
	client *graphql.Client
}

func New(endpoint string) (*SubgraphClient, error) {
	if endpoint == "" {
		return nil, subgraphclienterrors.ErrEmptyEndpoint
	}
	return &SubgraphClient{client: graphql.NewClient(endpoint)}, nil
}

// RecentSwapCount returns how many of the attacker's last N indexed swaps
// the subgraph has recorded. Callers are expected to wrap ctx with a
// deadline; on any error (including timeout) the caller must treat the
// Finding as unconfirmed, per C4's fail-closed policy.
func (c *SubgraphClient) RecentSwapCount(ctx context.Context, attacker string) (int, error) {
	req := graphql.NewRequest(recentSwapsQuery)
	req.Var("attacker", attacker)
	req.Var("first", recentSwapsLookback)

	var resp struct {
		Swaps []struct {
			ID string `json:"id"`
		} `json:"swaps"`
	}

	if err := c.client.Run(ctx, req, &resp); err != nil {
		return 0, err
	}

	return len(resp.Swaps), nil
}
