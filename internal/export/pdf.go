package export

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"math"

	"github.com/go-pdf/fpdf"

	"github.com/piwi3910/atlaspack/internal/model"
)

// ErrNothingToExport is returned by report exporters for an atlas without pages.
var ErrNothingToExport = errors.New("atlas has no pages to export")

// outlineColor is an RGB color for frame outlines.
type outlineColor struct {
	R, G, B int
}

var outlineColors = []outlineColor{
	{R: 76, G: 175, B: 80},  // green
	{R: 33, G: 150, B: 243}, // blue
	{R: 255, G: 152, B: 0},  // orange
	{R: 156, G: 39, B: 176}, // purple
	{R: 0, G: 188, B: 212},  // cyan
	{R: 244, G: 67, B: 54},  // red
	{R: 255, G: 235, B: 59}, // yellow
	{R: 121, G: 85, B: 72},  // brown
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	legendHeight = 20.0
	drawAreaTop  = marginTop + headerHeight + 5.0
)

// ExportPDF generates a report with one page per atlas page showing the
// composite, frame outlines, a legend and a QR code summarising the page,
// followed by a summary page.
func ExportPDF(path string, result model.BuildResult, settings model.Settings) error {
	if len(result.Pages) == 0 {
		return ErrNothingToExport
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	summaries := CollectPageSummaries(result, settings)
	for i, page := range result.Pages {
		pdf.AddPage()
		if err := renderAtlasPage(pdf, page, summaries[i]); err != nil {
			return fmt.Errorf("failed to render page %d: %w", page.Index, err)
		}
	}

	pdf.AddPage()
	renderSummaryPage(pdf, result, settings)

	return pdf.OutputFileAndClose(path)
}

// renderAtlasPage draws a single atlas page on the current PDF page.
func renderAtlasPage(pdf *fpdf.Fpdf, page model.Page, summary PageSummary) error {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("Page %d: %s (%d x %d px)", page.Index, summary.Image, page.Width, page.Height)
	pdf.CellFormat(pageWidth-marginLeft-marginRight-qrSize, headerHeight, title, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Frames: %d | Rotated: %d | Used: %d px | Total: %d px | Efficiency: %.1f%%",
		len(page.Frames), summary.Rotated, page.UsedArea(), page.TotalArea(), page.Efficiency())
	pdf.CellFormat(pageWidth-marginLeft-marginRight-qrSize, 5, stats, "", 0, "L", false, 0, "")

	if err := placeQR(pdf, pageWidth-marginRight-qrSize, marginTop-5, summary); err != nil {
		return err
	}

	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom - legendHeight

	scale := math.Min(drawWidth/float64(page.Width), drawHeight/float64(page.Height))
	canvasW := float64(page.Width) * scale
	canvasH := float64(page.Height) * scale
	offsetX := marginLeft + (drawWidth-canvasW)/2
	offsetY := drawAreaTop

	// Grey backdrop so transparent regions stay visible.
	pdf.SetFillColor(220, 220, 220)
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.5)
	pdf.Rect(offsetX, offsetY, canvasW, canvasH, "FD")

	var buf bytes.Buffer
	if err := png.Encode(&buf, page.Image); err != nil {
		return fmt.Errorf("failed to encode page image: %w", err)
	}
	imgName := fmt.Sprintf("atlas_page_%d", page.Index)
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, &buf)
	pdf.ImageOptions(imgName, offsetX, offsetY, canvasW, canvasH, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	for i, name := range page.Order {
		f := page.Frames[name].Frame
		col := outlineColors[i%len(outlineColors)]
		pdf.SetDrawColor(col.R, col.G, col.B)
		pdf.SetLineWidth(0.3)
		pdf.Rect(offsetX+float64(f.X)*scale, offsetY+float64(f.Y)*scale, float64(f.W)*scale, float64(f.H)*scale, "D")
	}

	drawDimensionAnnotations(pdf, page, offsetX, offsetY, canvasW, canvasH)
	drawFramesLegend(pdf, page, offsetY+canvasH+5)
	return nil
}

// drawDimensionAnnotations adds width and height labels outside the page rectangle.
func drawDimensionAnnotations(pdf *fpdf.Fpdf, page model.Page, offsetX, offsetY, canvasW, canvasH float64) {
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)

	widthLabel := fmt.Sprintf("%d px", page.Width)
	wLabelW := pdf.GetStringWidth(widthLabel)
	pdf.SetXY(offsetX+(canvasW-wLabelW)/2, offsetY+canvasH+1)
	pdf.CellFormat(wLabelW, 4, widthLabel, "", 0, "C", false, 0, "")

	heightLabel := fmt.Sprintf("%d px", page.Height)
	pdf.TransformBegin()
	pdf.TransformRotate(90, offsetX-3, offsetY+canvasH/2)
	hLabelW := pdf.GetStringWidth(heightLabel)
	pdf.SetXY(offsetX-3-hLabelW/2, offsetY+canvasH/2-2)
	pdf.CellFormat(hLabelW, 4, heightLabel, "", 0, "C", false, 0, "")
	pdf.TransformEnd()

	pdf.SetTextColor(0, 0, 0)
}

// drawFramesLegend lists the frames drawn on the page with their outline colour.
func drawFramesLegend(pdf *fpdf.Fpdf, page model.Page, startY float64) {
	if len(page.Order) == 0 {
		return
	}

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, startY)
	pdf.CellFormat(30, 4, "Frames:", "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	xPos := marginLeft + 32
	maxX := pageWidth - marginRight
	maxY := pageHeight - marginBottom

	for i, name := range page.Order {
		desc := page.Frames[name]
		col := outlineColors[i%len(outlineColors)]
		label := fmt.Sprintf("%s (%dx%d)", name, desc.SourceSize.W, desc.SourceSize.H)
		if desc.Rotated {
			label += " R"
		}
		labelW := pdf.GetStringWidth(label) + 6

		if xPos+labelW > maxX {
			startY += 5
			xPos = marginLeft
		}
		if startY+4 > maxY {
			pdf.SetXY(xPos, startY-5)
			pdf.CellFormat(20, 4, fmt.Sprintf("+%d more", len(page.Order)-i), "", 0, "L", false, 0, "")
			return
		}

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.Rect(xPos, startY+0.5, 3, 3, "F")

		pdf.SetXY(xPos+4, startY)
		pdf.CellFormat(labelW-4, 4, label, "", 0, "L", false, 0, "")

		xPos += labelW + 2
	}
}

// renderSummaryPage draws the final summary page with overall statistics.
func renderSummaryPage(pdf *fpdf.Fpdf, result model.BuildResult, settings model.Settings) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Atlas Summary", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Overall Statistics", "", 0, "L", false, 0, "")
	y += 9

	summaryItems := []struct {
		label string
		value string
	}{
		{"Pages", fmt.Sprintf("%d", len(result.Pages))},
		{"Overall Efficiency", fmt.Sprintf("%.1f%%", result.TotalEfficiency())},
		{"Images Placed", fmt.Sprintf("%d", result.ImageCount())},
		{"Images Skipped", fmt.Sprintf("%d", len(result.Rejected))},
		{"Solver Calls", fmt.Sprintf("%d", result.Stats.SolverCalls)},
	}

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range summaryItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(60, 6, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(40, 6, item.value, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		y += 7
	}

	y += 5

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Page Breakdown", "", 0, "L", false, 0, "")
	y += 9

	colWidths := []float64{20, 60, 50, 30, 35, 60}
	headers := []string{"Page", "Image", "Dimensions", "Frames", "Efficiency", "Used / Total px"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	xPos := marginLeft
	for i, header := range headers {
		pdf.SetXY(xPos, y)
		pdf.CellFormat(colWidths[i], 6, header, "1", 0, "C", true, 0, "")
		xPos += colWidths[i]
	}
	y += 6

	pdf.SetFont("Helvetica", "", 9)
	for i, page := range result.Pages {
		xPos = marginLeft
		rowData := []string{
			fmt.Sprintf("%d", page.Index),
			PageFileName(settings.FilePrefix, page.Index, ".png"),
			fmt.Sprintf("%d x %d", page.Width, page.Height),
			fmt.Sprintf("%d", len(page.Frames)),
			fmt.Sprintf("%.1f%%", page.Efficiency()),
			fmt.Sprintf("%d / %d", page.UsedArea(), page.TotalArea()),
		}

		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}

		for j, cell := range rowData {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], 6, cell, "1", 0, "C", true, 0, "")
			xPos += colWidths[j]
		}
		y += 6
	}

	if len(result.Rejected) > 0 {
		y += 8
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetTextColor(200, 0, 0)
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(200, 7, "WARNING: Images Larger Than Max Size", "", 0, "L", false, 0, "")
		y += 8

		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(0, 0, 0)
		for _, img := range result.Rejected {
			pdf.SetXY(marginLeft+5, y)
			text := fmt.Sprintf("- %s: %d x %d px", img.Name, img.Width, img.Height)
			pdf.CellFormat(200, 5, text, "", 0, "L", false, 0, "")
			y += 5
		}
	}

	y += 8
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Atlas Settings", "", 0, "L", false, 0, "")
	y += 9

	settingsItems := []struct {
		label string
		value string
	}{
		{"Max Size", fmt.Sprintf("%d px", settings.MaxSize)},
		{"Allow Flipping", yesNo(settings.AllowFlipping)},
		{"Padding", fmt.Sprintf("%d px", settings.Padding)},
		{"Power of Two", yesNo(settings.PowerOfTwo)},
		{"Indexed PNG", yesNo(settings.IndexedPNG)},
	}

	pdf.SetFont("Helvetica", "", 9)
	for _, item := range settingsItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(50, 5, item.label+":", "", 0, "L", false, 0, "")
		pdf.CellFormat(30, 5, item.value, "", 0, "L", false, 0, "")
		y += 5
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	footer := fmt.Sprintf("Generated by %s %s", model.AppName, model.Version)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, footer, "", 0, "C", false, 0, "")
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
