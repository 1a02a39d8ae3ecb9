package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/orderlens/orderlens/internal/core/domain"
)

// uriScheme is the custom URI scheme for OrderLens resources.
const uriScheme = "orderlens://"

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "tags",
		Name:        "tags",
		Description: "The document classification tags and their meaning",
		MIMEType:    "application/json",
	}, s.handleTagsResource)
}

// handleTagsResource returns the classification tag taxonomy.
func (s *Server) handleTagsResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	type tagInfo struct {
		Tag         string `json:"tag"`
		Description string `json:"description"`
	}

	tags := []tagInfo{
		{Tag: string(domain.TagPO), Description: "A purchase order: a buyer's committed order"},
		{Tag: string(domain.TagQuote), Description: "A price-quote request or quotation"},
		{Tag: string(domain.TagUnknown), Description: "No recognisable purchase-order or quote signal"},
	}

	data, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("encoding tags: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
