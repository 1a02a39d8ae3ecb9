package plaintext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orderlens/orderlens/internal/core/domain"
)

func TestNew(t *testing.T) {
	normaliser := New()
	require.NotNil(t, normaliser)
}

func TestSupportedMIMETypes(t *testing.T) {
	normaliser := New()
	mimeTypes := normaliser.SupportedMIMETypes()

	assert.Contains(t, mimeTypes, "text/plain")
	assert.Contains(t, mimeTypes, "text/csv")
	assert.Contains(t, mimeTypes, "text/markdown")
}

func TestPriority(t *testing.T) {
	normaliser := New()
	assert.Equal(t, 5, normaliser.Priority())
}

func TestNormalise_NilDocument(t *testing.T) {
	normaliser := New()

	result, err := normaliser.Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, result)
}

func TestNormalise(t *testing.T) {
	tests := []struct {
		name        string
		raw         *domain.RawDocument
		wantSubject string
		wantFrom    string
		wantDate    string
	}{
		{
			name: "subject from metadata",
			raw: &domain.RawDocument{
				URI:     "file:///inbox/note.txt",
				Content: []byte("Widget Alpha | 2 | 10.50 | 21.00"),
				Metadata: map[string]any{
					"subject": "PO 4512",
					"from":    "buyer@acme.com",
					"date":    "2024-01-01",
				},
			},
			wantSubject: "PO 4512",
			wantFrom:    "buyer@acme.com",
			wantDate:    "2024-01-01",
		},
		{
			name: "subject falls back to filename",
			raw: &domain.RawDocument{
				URI:     "file:///inbox/purchase_order-4512.txt",
				Content: []byte("some body"),
			},
			wantSubject: "purchase order 4512",
		},
		{
			name: "empty metadata subject falls back",
			raw: &domain.RawDocument{
				URI:      "file:///inbox/quote.txt",
				Content:  []byte("some body"),
				Metadata: map[string]any{"subject": ""},
			},
			wantSubject: "quote",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			normaliser := New()

			result, err := normaliser.Normalise(context.Background(), tt.raw)
			require.NoError(t, err)
			require.NotNil(t, result)

			assert.Equal(t, tt.raw.URI, result.URI)
			assert.Equal(t, tt.wantSubject, result.Subject)
			assert.Equal(t, tt.wantFrom, result.From)
			assert.Equal(t, tt.wantDate, result.Date)
			assert.Equal(t, string(tt.raw.Content), result.Body)
		})
	}
}
