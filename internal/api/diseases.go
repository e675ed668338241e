package api

import (
	"context"
	"net/url"
)

// Diseases lists knowledge base entries, optionally filtered by crop.
func (c *Client) Diseases(ctx context.Context, crop string) (*DiseaseList, error) {
	path := "/api/diseases"
	if crop != "" {
		path += "?" + url.Values{"crop": {crop}}.Encode()
	}
	var out DiseaseList
	if err := c.getJSON(ctx, "diseases", path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Disease fetches the full record for a classification key such as
// "Rice___Blast".
func (c *Client) Disease(ctx context.Context, classKey string) (*Disease, error) {
	var out Disease
	if err := c.getJSON(ctx, "disease", "/api/diseases/"+url.PathEscape(classKey), &out); err != nil {
		return nil, err
	}
	if out.ClassKey == "" {
		out.ClassKey = classKey
	}
	return &out, nil
}

// Crops lists the supported crops.
func (c *Client) Crops(ctx context.Context) ([]string, error) {
	var out cropList
	if err := c.getJSON(ctx, "crops", "/api/crops", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Status probes the backend.
func (c *Client) Status(ctx context.Context) (*Status, error) {
	var out Status
	if err := c.getJSON(ctx, "status", "/api/status", &out); err != nil {
		return nil, err
	}
	return &out, nil
}
