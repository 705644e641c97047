package service

import (
	"context"
	"io"

	"github.com/tealeg/xlsx"

	"github.com/chicommerce/catalog-api/internal/repository"
)

var exportHeaders = []string{
	"ID", "Name", "Description", "BasePrice", "Active",
	"Templates", "OptionSets", "CreatedAt", "UpdatedAt",
}

// ExportService renders catalog spreadsheets for admins.
type ExportService struct {
	productRepo *repository.ProductRepository
}

// NewExportService constructs an ExportService.
func NewExportService(productRepo *repository.ProductRepository) *ExportService {
	return &ExportService{productRepo: productRepo}
}

// BuildProductWorkbook returns a workbook with one "Products" sheet.
func (s *ExportService) BuildProductWorkbook(ctx context.Context) (*xlsx.File, error) {
	rows, err := s.productRepo.ListForExport(ctx)
	if err != nil {
		return nil, err
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return nil, err
	}

	header := sheet.AddRow()
	for _, h := range exportHeaders {
		header.AddCell().SetValue(h)
	}

	for _, p := range rows {
		row := sheet.AddRow()
		row.AddCell().SetValue(p.ID.String())
		row.AddCell().SetValue(p.Name)
		description := ""
		if p.Description != nil {
			description = *p.Description
		}
		row.AddCell().SetValue(description)
		row.AddCell().SetValue(p.BasePrice.StringFixed(2))
		row.AddCell().SetValue(p.IsActive)
		row.AddCell().SetValue(p.TemplateCount)
		row.AddCell().SetValue(p.OptionSetCount)
		row.AddCell().SetValue(p.CreatedAt.Format("2006-01-02 15:04:05"))
		row.AddCell().SetValue(p.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
	return file, nil
}

// WriteProducts writes the product workbook to w.
func (s *ExportService) WriteProducts(ctx context.Context, w io.Writer) error {
	file, err := s.BuildProductWorkbook(ctx)
	if err != nil {
		return err
	}
	return file.Write(w)
}
