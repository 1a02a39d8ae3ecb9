package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orderlens/orderlens/internal/core/domain"
)

func TestAnalyzer_Analyze_EmptyMail(t *testing.T) {
	analyzer := NewAnalyzer()

	_, err := analyzer.Analyze(context.Background(), domain.MailText{URI: "gmail://msg-1"})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNoInput)
}

func TestAnalyzer_Analyze_WhitespaceOnlyMail(t *testing.T) {
	analyzer := NewAnalyzer()

	mail := domain.MailText{
		Subject: "   ",
		Body:    "\n\t",
		Attachments: []domain.AttachmentText{
			{Filename: "blank.pdf", MIMEType: "application/pdf", Text: "  "},
		},
	}

	_, err := analyzer.Analyze(context.Background(), mail)
	assert.ErrorIs(t, err, domain.ErrNoInput)
}

func TestAnalyzer_Analyze_PurchaseOrderWithAttachment(t *testing.T) {
	analyzer := NewAnalyzer()

	mail := domain.MailText{
		URI:     "gmail://msg-42",
		Subject: "PO 7788 spare parts",
		From:    `"Acme Sales" <po@acme.com>`,
		Date:    "2024-06-02T10:00:00Z",
		Body:    "Order attached.\nWidget Alpha | 2 | 10.50 | 21.00",
		Attachments: []domain.AttachmentText{
			{
				Filename: "po-7788.pdf",
				MIMEType: "application/pdf",
				Text:     "PURCHASE ORDER\nGasket Set | 5 | 3.00 | 15.00\nTotal: $36.00 USD",
			},
		},
	}

	analysis, err := analyzer.Analyze(context.Background(), mail)

	require.NoError(t, err)
	assert.NotEmpty(t, analysis.ID)
	assert.Equal(t, "gmail://msg-42", analysis.URI)
	assert.Equal(t, domain.TagPO, analysis.Tag)
	assert.False(t, analysis.AnalyzedAt.IsZero())

	// Attachment items come first, then body items.
	require.Len(t, analysis.Items, 2)
	assert.Equal(t, "Gasket Set", analysis.Items[0].Name)
	assert.Equal(t, "Widget Alpha", analysis.Items[1].Name)

	assert.InDelta(t, 36.00, analysis.Totals.Amount, 0.001)
	assert.Equal(t, "USD", analysis.Totals.Currency)

	require.Len(t, analysis.Attachments, 1)
	assert.Equal(t, "po-7788.pdf", analysis.Attachments[0].Filename)
}

func TestAnalyzer_Analyze_DeduplicatesAcrossBodyAndAttachments(t *testing.T) {
	analyzer := NewAnalyzer()

	mail := domain.MailText{
		Subject: "PO 100",
		Body:    "Widget Alpha | 2 | 10.50 | 21.00",
		Attachments: []domain.AttachmentText{
			{Filename: "a.pdf", Text: "Widget Alpha | 2 | 10.50 | 21.00"},
		},
	}

	analysis, err := analyzer.Analyze(context.Background(), mail)

	require.NoError(t, err)
	assert.Len(t, analysis.Items, 1)
}

func TestAnalyzer_Analyze_TotalFallsBackToItemSum(t *testing.T) {
	analyzer := NewAnalyzer()

	mail := domain.MailText{
		Subject: "PO 200 parts",
		Body:    "Widget Alpha | 2 | 10.50 | 21.00\nGasket Set | 5 | 3.00 | 15.00",
	}

	analysis, err := analyzer.Analyze(context.Background(), mail)

	require.NoError(t, err)
	require.Len(t, analysis.Items, 2)
	// No labeled total anywhere: the amount is the sum of line totals.
	assert.InDelta(t, 36.00, analysis.Totals.Amount, 0.001)
}

func TestAnalyzer_Analyze_NoItemsKeepsZeroTotal(t *testing.T) {
	analyzer := NewAnalyzer()

	mail := domain.MailText{
		Subject: "Team lunch",
		Body:    "see you at noon",
	}

	analysis, err := analyzer.Analyze(context.Background(), mail)

	require.NoError(t, err)
	assert.Equal(t, domain.TagUnknown, analysis.Tag)
	assert.Empty(t, analysis.Items)
	assert.InDelta(t, 0.0, analysis.Totals.Amount, 0.001)
	assert.Equal(t, "USD", analysis.Totals.Currency)
}

func TestAnalyzer_Analyze_CancelledContext(t *testing.T) {
	analyzer := NewAnalyzer()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := analyzer.Analyze(ctx, domain.MailText{Subject: "PO 1"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalyzer_ClassifyDelegates(t *testing.T) {
	analyzer := NewAnalyzer()

	assert.Equal(t, domain.TagPO, analyzer.Classify("PO 123", "", ""))
	assert.Equal(t, domain.TagQuote, analyzer.Classify("Quotation", "", ""))
	assert.Equal(t, domain.TagUnknown, analyzer.Classify("hi", "", ""))
}
