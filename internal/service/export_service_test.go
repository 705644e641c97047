package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"
)

func TestExportService_BuildProductWorkbook(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	p := s.mustProduct(t, "Mug", "12.5")
	_, err := s.templates.CreateTemplate(ctx, &CreateTemplateRequest{ProductID: p.ID, Definition: textDefinition("a")})
	require.NoError(t, err)
	_, err = s.optionSets.CreateOptionSet(ctx, p.ID, &CreateOptionSetRequest{Name: "Size"})
	require.NoError(t, err)

	file, err := s.export.BuildProductWorkbook(ctx)
	require.NoError(t, err)
	require.Len(t, file.Sheets, 1)
	sheet := file.Sheets[0]
	assert.Equal(t, "Products", sheet.Name)
	require.Len(t, sheet.Rows, 2)

	header := sheet.Rows[0].Cells
	require.Len(t, header, len(exportHeaders))
	assert.Equal(t, "ID", header[0].Value)
	assert.Equal(t, "UpdatedAt", header[len(header)-1].Value)

	row := sheet.Rows[1].Cells
	assert.Equal(t, p.ID.String(), row[0].Value)
	assert.Equal(t, "Mug", row[1].Value)
	assert.Equal(t, "", row[2].Value)
	assert.Equal(t, "12.50", row[3].Value)
	assert.Equal(t, "1", row[5].Value)
	assert.Equal(t, "1", row[6].Value)
}

func TestExportService_WriteProducts(t *testing.T) {
	s := newServices(t)
	s.mustProduct(t, "Mug", "3.00")

	var buf bytes.Buffer
	require.NoError(t, s.export.WriteProducts(context.Background(), &buf))

	file, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, file.Sheets, 1)
	assert.Len(t, file.Sheets[0].Rows, 2)
}
