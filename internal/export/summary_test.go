package export

import (
	"testing"

	"github.com/piwi3910/atlaspack/internal/model"
)

func TestCollectPageSummaries(t *testing.T) {
	result := buildTestResult(t)
	settings := model.DefaultSettings()
	settings.FilePrefix = "sprites"

	summaries := CollectPageSummaries(result, settings)
	if len(summaries) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(summaries))
	}

	first := summaries[0]
	if first.Image != "sprites-0.png" || first.Metadata != "sprites-0.json" {
		t.Errorf("unexpected file names: %s, %s", first.Image, first.Metadata)
	}
	if first.Frames != 2 {
		t.Errorf("expected 2 frames, got %d", first.Frames)
	}
	if first.Rotated != 1 {
		t.Errorf("expected 1 rotated frame, got %d", first.Rotated)
	}
	if first.Width != 40 || first.Height != 16 {
		t.Errorf("unexpected size %dx%d", first.Width, first.Height)
	}
	// (256 + 192) / 640 = 70%
	if first.Efficiency != 70.0 {
		t.Errorf("expected efficiency 70.0, got %.1f", first.Efficiency)
	}

	if summaries[1].Page != 1 || summaries[1].Efficiency != 100.0 {
		t.Errorf("unexpected second summary: %+v", summaries[1])
	}
}

func TestCollectPageSummaries_Empty(t *testing.T) {
	if got := CollectPageSummaries(model.BuildResult{}, model.DefaultSettings()); len(got) != 0 {
		t.Errorf("expected no summaries, got %d", len(got))
	}
}
