package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/atlaspack/internal/model"
)

const (
	framesSheet = "Frames"
	pagesSheet  = "Pages"
)

var (
	frameHeaders = []interface{}{"Page", "Name", "X", "Y", "W", "H", "Rotated", "Source W", "Source H"}
	pageHeaders  = []interface{}{"Page", "Image", "Width", "Height", "Frames", "Efficiency %"}
)

// ExportXLSX writes a workbook with one row per frame and one row per page.
func ExportXLSX(path string, result model.BuildResult, settings model.Settings) error {
	if len(result.Pages) == 0 {
		return ErrNothingToExport
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", framesSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if _, err := f.NewSheet(pagesSheet); err != nil {
		return fmt.Errorf("failed to add sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	frameRows := [][]interface{}{frameHeaders}
	pageRows := [][]interface{}{pageHeaders}
	for _, page := range result.Pages {
		for _, name := range page.Order {
			d := page.Frames[name]
			frameRows = append(frameRows, []interface{}{
				page.Index, name,
				d.Frame.X, d.Frame.Y, d.Frame.W, d.Frame.H,
				d.Rotated,
				d.SourceSize.W, d.SourceSize.H,
			})
		}
		pageRows = append(pageRows, []interface{}{
			page.Index,
			PageFileName(settings.FilePrefix, page.Index, ".png"),
			page.Width, page.Height,
			len(page.Frames),
			fmt.Sprintf("%.1f", page.Efficiency()),
		})
	}

	if err := writeRows(f, framesSheet, frameRows, bold); err != nil {
		return err
	}
	if err := writeRows(f, pagesSheet, pageRows, bold); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// writeRows fills sheet from A1 and styles the first row as a header.
func writeRows(f *excelize.File, sheet string, rows [][]interface{}, headerStyle int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		r := row
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, headerStyle)
}
