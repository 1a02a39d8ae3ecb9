package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/orderlens/orderlens/internal/adapters/driven/export/xlsx"
	"github.com/orderlens/orderlens/internal/core/domain"
)

func TestExportCmd_RequiresServices(t *testing.T) {
	resetServices(t)

	_, err := runCommand(t, "export")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestExportCmd_WritesWorkbook(t *testing.T) {
	resetServices(t)
	syncOrchestrator = &mockSyncOrchestrator{
		analyses: []domain.Analysis{
			{
				URI:     "file:///drop/order.eml",
				Tag:     domain.TagPO,
				Subject: "PO 4512",
				From:    "buyer@acme.com",
				Items:   []domain.LineItem{{Name: "Widget", Quantity: 2, UnitPrice: 10, Total: 20}},
				Totals:  domain.Totals{Amount: 20, Currency: "USD"},
			},
		},
	}
	configStore = newTestConfigStore(t)
	exporter = xlsx.New()

	output := filepath.Join(t.TempDir(), "out.xlsx")
	out, err := runCommand(t, "export", "local-drop", "-o", output)
	defer func() { exportOutput = "orderlens.xlsx" }()

	require.NoError(t, err)
	assert.Contains(t, out, "Exported 1 documents")

	f, err := excelize.OpenFile(output)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Documents")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Contains(t, rows[1], "PO 4512")
}

func TestExportCmd_NothingToExport(t *testing.T) {
	resetServices(t)
	syncOrchestrator = &mockSyncOrchestrator{}
	configStore = newTestConfigStore(t)
	exporter = xlsx.New()

	output := filepath.Join(t.TempDir(), "out.xlsx")
	out, err := runCommand(t, "export", "local-drop", "-o", output)
	defer func() { exportOutput = "orderlens.xlsx" }()

	require.NoError(t, err)
	assert.Contains(t, out, "nothing to export")

	_, statErr := os.Stat(output)
	assert.True(t, os.IsNotExist(statErr))
}
