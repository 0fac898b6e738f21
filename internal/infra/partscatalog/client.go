// Package partscatalog calls the RapidAPI vehicle catalog: VIN decoding and
// the per-vehicle part category tree.
package partscatalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	httpclient "github.com/cukaracha/hrspwr-sub000/pkg/http"
)

const (
	vinHost     = "tecdoc-catalog.p.rapidapi.com"
	catalogHost = "auto-parts-catalog.p.rapidapi.com"

	// Passenger cars, English. The catalog scopes every route by these.
	typeID = 1
	langID = 4
)

type Client struct {
	apiKey string
}

func NewClient(apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("partscatalog: api key is required")
	}
	return &Client{apiKey: apiKey}, nil
}

// DecodeVIN returns the catalog's decoder response for a VIN as-is; the
// upstream document shape varies by manufacturer so it is passed through
// rather than mapped onto a struct.
func (c *Client) DecodeVIN(ctx context.Context, vin string) (json.RawMessage, error) {
	url := fmt.Sprintf("https://%s/vin/decoder-v2/%s", vinHost, vin)

	resp, err := httpclient.Get(ctx, url,
		httpclient.WithHeader("x-rapidapi-host", vinHost),
		httpclient.WithHeader("x-rapidapi-key", c.apiKey),
	)
	if err != nil {
		return nil, fmt.Errorf("vin decode request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("vin decode failed with status %d: %s", resp.StatusCode(), resp.Body())
	}

	return json.RawMessage(resp.Body()), nil
}

// CategoryTree returns the raw product-group hierarchy for a vehicle id.
func (c *Client) CategoryTree(ctx context.Context, vehicleID int) (json.RawMessage, error) {
	url := fmt.Sprintf("https://%s/category/type-id/%d/products-groups-variant-3/%d/lang-id/%d",
		catalogHost, typeID, vehicleID, langID)

	resp, err := httpclient.Get(ctx, url,
		httpclient.WithHeader("x-rapidapi-host", catalogHost),
		httpclient.WithHeader("x-rapidapi-key", c.apiKey),
	)
	if err != nil {
		return nil, fmt.Errorf("category tree request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("category tree failed with status %d: %s", resp.StatusCode(), resp.Body())
	}

	return json.RawMessage(resp.Body()), nil
}
