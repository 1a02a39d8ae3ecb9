package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/orderlens/orderlens/internal/core/domain"
)

// AnalyzeInput is the input schema for the analyze_document tool.
type AnalyzeInput struct {
	Subject        string `json:"subject,omitempty" jsonschema:"the email subject line"`
	Body           string `json:"body" jsonschema:"the email or document body text"`
	AttachmentText string `json:"attachment_text,omitempty" jsonschema:"extracted text of any attachments"`
	From           string `json:"from,omitempty" jsonschema:"the sender address"`
}

// AnalyzeOutput is the output schema for the analyze_document tool.
type AnalyzeOutput struct {
	Classification string           `json:"classification"`
	Items          []LineItemOutput `json:"items"`
	Total          float64          `json:"total"`
	Currency       string           `json:"currency"`
}

// ClassifyInput is the input schema for the classify_document tool.
type ClassifyInput struct {
	Subject        string `json:"subject,omitempty" jsonschema:"the email subject line"`
	Body           string `json:"body" jsonschema:"the email or document body text"`
	AttachmentText string `json:"attachment_text,omitempty" jsonschema:"extracted text of any attachments"`
}

// ClassifyOutput is the output schema for the classify_document tool.
type ClassifyOutput struct {
	Classification string `json:"classification" jsonschema:"PO, QUOTE, or UNKNOWN"`
}

// ExtractItemsInput is the input schema for the extract_items tool.
type ExtractItemsInput struct {
	Text string `json:"text" jsonschema:"the text block to extract product line items from"`
}

// ExtractItemsOutput is the output schema for the extract_items tool.
type ExtractItemsOutput struct {
	Items []LineItemOutput `json:"items"`
	Count int              `json:"count"`
}

// ExtractTotalsInput is the input schema for the extract_totals tool.
type ExtractTotalsInput struct {
	Text string `json:"text" jsonschema:"the text block to extract the grand total from"`
}

// ExtractTotalsOutput is the output schema for the extract_totals tool.
type ExtractTotalsOutput struct {
	Total    float64 `json:"total"`
	Currency string  `json:"currency"`
}

// LineItemOutput represents a single extracted line item.
type LineItemOutput struct {
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Total     float64 `json:"total"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_document",
		Description: "Classify a document as PO/QUOTE/UNKNOWN and extract its line items and totals",
	}, s.handleAnalyze)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "classify_document",
		Description: "Classify a document as a purchase order (PO), price quote (QUOTE), or UNKNOWN",
	}, s.handleClassify)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "extract_items",
		Description: "Extract product line items (name, quantity, unit price, total) from text",
	}, s.handleExtractItems)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "extract_totals",
		Description: "Extract the grand total amount and currency from text",
	}, s.handleExtractTotals)
}

// handleAnalyze handles the analyze_document tool invocation.
func (s *Server) handleAnalyze(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AnalyzeInput,
) (*mcp.CallToolResult, AnalyzeOutput, error) {
	mail := domain.MailText{
		URI:     "mcp://analyze",
		Subject: input.Subject,
		Body:    input.Body,
		From:    input.From,
	}
	if input.AttachmentText != "" {
		mail.Attachments = []domain.AttachmentText{
			{Filename: "attachment", Text: input.AttachmentText},
		}
	}

	analysis, err := s.ports.Analysis.Analyze(ctx, mail)
	if err != nil {
		return nil, AnalyzeOutput{}, err
	}

	return nil, AnalyzeOutput{
		Classification: string(analysis.Tag),
		Items:          toItemOutputs(analysis.Items),
		Total:          analysis.Totals.Amount,
		Currency:       analysis.Totals.Currency,
	}, nil
}

// handleClassify handles the classify_document tool invocation.
func (s *Server) handleClassify(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ClassifyInput,
) (*mcp.CallToolResult, ClassifyOutput, error) {
	tag := s.ports.Analysis.Classify(input.Subject, input.Body, input.AttachmentText)
	return nil, ClassifyOutput{Classification: string(tag)}, nil
}

// handleExtractItems handles the extract_items tool invocation.
func (s *Server) handleExtractItems(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ExtractItemsInput,
) (*mcp.CallToolResult, ExtractItemsOutput, error) {
	items := s.ports.Analysis.ExtractItems(input.Text)
	return nil, ExtractItemsOutput{
		Items: toItemOutputs(items),
		Count: len(items),
	}, nil
}

// handleExtractTotals handles the extract_totals tool invocation.
func (s *Server) handleExtractTotals(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ExtractTotalsInput,
) (*mcp.CallToolResult, ExtractTotalsOutput, error) {
	totals := s.ports.Analysis.ExtractTotals(input.Text)
	return nil, ExtractTotalsOutput{
		Total:    totals.Amount,
		Currency: totals.Currency,
	}, nil
}

func toItemOutputs(items []domain.LineItem) []LineItemOutput {
	out := make([]LineItemOutput, len(items))
	for i, item := range items {
		out[i] = LineItemOutput{
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Total:     item.Total,
		}
	}
	return out
}
