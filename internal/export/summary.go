package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/piwi3910/atlaspack/internal/model"
)

// PageSummary holds the data encoded into each report page's QR code.
type PageSummary struct {
	App        string  `json:"app"`
	Image      string  `json:"image"`
	Metadata   string  `json:"metadata"`
	Page       int     `json:"page"`
	Width      int     `json:"width_px"`
	Height     int     `json:"height_px"`
	Frames     int     `json:"frames"`
	Rotated    int     `json:"rotated"`
	Efficiency float64 `json:"efficiency"`
}

// CollectPageSummaries extracts one summary per page, in page order.
func CollectPageSummaries(result model.BuildResult, settings model.Settings) []PageSummary {
	summaries := make([]PageSummary, 0, len(result.Pages))
	for _, page := range result.Pages {
		rotated := 0
		for _, f := range page.Frames {
			if f.Rotated {
				rotated++
			}
		}
		summaries = append(summaries, PageSummary{
			App:        model.AppName,
			Image:      PageFileName(settings.FilePrefix, page.Index, ".png"),
			Metadata:   PageFileName(settings.FilePrefix, page.Index, ".json"),
			Page:       page.Index,
			Width:      page.Width,
			Height:     page.Height,
			Frames:     len(page.Frames),
			Rotated:    rotated,
			Efficiency: float64(int(page.Efficiency()*10)) / 10,
		})
	}
	return summaries
}

// qrSize is the QR code edge length in mm.
const qrSize = 28.0

// placeQR renders info as a QR code at (x, y).
func placeQR(pdf *fpdf.Fpdf, x, y float64, info PageSummary) error {
	qrData, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal page summary: %w", err)
	}

	qrPNG, err := qrcode.Encode(string(qrData), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	imgName := fmt.Sprintf("qr_page_%d", info.Page)
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))
	pdf.ImageOptions(imgName, x, y, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	return nil
}
