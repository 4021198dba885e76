package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/tendant/nota-dashboard/pkg/nota"
)

// ListSchemas fetches every schema.
func (c *Client) ListSchemas(ctx context.Context) ([]nota.Schema, error) {
	var raw any
	if err := c.doJSON(ctx, "list schemas", http.MethodGet, "/schemas/list", nil, &raw); err != nil {
		return nil, err
	}
	return nota.NormalizeSchemas(decodeList(raw)), nil
}

// GetSchema fetches a schema by id.
func (c *Client) GetSchema(ctx context.Context, id string) (nota.Schema, error) {
	var raw any
	if err := c.doJSON(ctx, "get schema", http.MethodGet, "/schemas/get_by_id/"+url.PathEscape(id), nil, &raw); err != nil {
		return nota.Schema{}, err
	}
	return nota.NormalizeSchema(decodeRecord(raw)), nil
}

// GetSchemaByName fetches a schema by its routing name.
func (c *Client) GetSchemaByName(ctx context.Context, name string) (nota.Schema, error) {
	var raw any
	if err := c.doJSON(ctx, "get schema", http.MethodGet, "/schemas/get_by_name/"+url.PathEscape(name), nil, &raw); err != nil {
		return nota.Schema{}, err
	}
	return nota.NormalizeSchema(decodeRecord(raw)), nil
}

// CreateSchema posts {name, definition}.
func (c *Client) CreateSchema(ctx context.Context, req nota.CreateSchemaRequest) (nota.Schema, error) {
	var raw any
	if err := c.doJSON(ctx, "create schema", http.MethodPost, "/schemas/create", req, &raw); err != nil {
		return nota.Schema{}, err
	}
	return nota.NormalizeSchema(decodeRecord(raw)), nil
}

// DeleteSchema deletes a schema by id.
func (c *Client) DeleteSchema(ctx context.Context, id string) error {
	return c.doJSON(ctx, "delete schema", http.MethodDelete, "/schemas/delete/"+url.PathEscape(id), nil, nil)
}
