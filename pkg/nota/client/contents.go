package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/tendant/nota-dashboard/pkg/nota"
)

// ListContent fetches the records of a schema. Records are returned as
// received.
func (c *Client) ListContent(ctx context.Context, schemaName string, opts nota.ListContentOptions) ([]map[string]any, error) {
	path := "/content/get_all/" + url.PathEscape(schemaName)
	switch opts.Published {
	case nota.PublishedOnly, nota.PublishedDraft:
		path += "?published=" + string(opts.Published)
	}
	var raw any
	if err := c.doJSON(ctx, "list content", http.MethodGet, path, nil, &raw); err != nil {
		return nil, err
	}
	return decodeList(raw), nil
}

// GetContent fetches one record.
func (c *Client) GetContent(ctx context.Context, id string) (map[string]any, error) {
	var raw any
	if err := c.doJSON(ctx, "get content", http.MethodGet, "/content/get/"+url.PathEscape(id), nil, &raw); err != nil {
		return nil, err
	}
	return decodeRecord(raw), nil
}

// CreateContent posts {schema_id, data, published}.
func (c *Client) CreateContent(ctx context.Context, req nota.CreateContentRequest) (map[string]any, error) {
	if req.Data == nil {
		req.Data = map[string]any{}
	}
	var raw any
	if err := c.doJSON(ctx, "create content", http.MethodPost, "/content/create", req, &raw); err != nil {
		return nil, err
	}
	return decodeRecord(raw), nil
}

// UpdateContent posts {content_id, data, published}.
func (c *Client) UpdateContent(ctx context.Context, req nota.UpdateContentRequest) (map[string]any, error) {
	if req.Data == nil {
		req.Data = map[string]any{}
	}
	path := "/content/update"
	if c.updateByID {
		path += "/" + url.PathEscape(req.ContentID)
	}
	var raw any
	if err := c.doJSON(ctx, "update content", http.MethodPost, path, req, &raw); err != nil {
		return nil, err
	}
	return decodeRecord(raw), nil
}

// DeleteContent deletes one record.
func (c *Client) DeleteContent(ctx context.Context, id string) error {
	return c.doJSON(ctx, "delete content", http.MethodDelete, "/content/delete/"+url.PathEscape(id), nil, nil)
}
