package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/praxislabs/anthropic-go/routes"
)

// ModelInfo is one model catalog entry returned by GET /models.
type ModelInfo struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	DisplayName string `json:"display_name"`
	CreatedAt   string `json:"created_at"`
}

// ModelPage is one page of the model catalog.
type ModelPage struct {
	Data    []ModelInfo `json:"data"`
	HasMore bool        `json:"has_more"`
	FirstID string      `json:"first_id"`
	LastID  string      `json:"last_id"`
}

// ListModelsParams configures pagination for GET /models.
type ListModelsParams struct {
	Limit   int
	AfterID string
}

// ModelsClient lists the models available to the account.
type ModelsClient struct {
	client *Client
}

func (c *ModelsClient) ensureInitialized() error {
	if c == nil || c.client == nil {
		return ConfigError{Reason: "models client not initialized"}
	}
	return nil
}

// List returns one page of the model catalog.
func (c *ModelsClient) List(ctx context.Context, params *ListModelsParams, options ...RequestOption) (*ModelPage, error) {
	if err := c.ensureInitialized(); err != nil {
		return nil, err
	}
	path := routes.Models
	if params != nil {
		q := url.Values{}
		if params.Limit > 0 {
			q.Set("limit", strconv.Itoa(params.Limit))
		}
		if params.AfterID != "" {
			q.Set("after_id", params.AfterID)
		}
		if encoded := q.Encode(); encoded != "" {
			path = path + "?" + encoded
		}
	}
	req, err := c.client.newJSONRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	applyRequestOptions(req, buildRequestOptions(options))
	resp, err := c.client.send(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	var page ModelPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, err
	}
	return &page, nil
}
