package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/piwi3910/barcut/internal/model"
)

func TestRenderChart(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderChart(&buf, buildBarSolution(t)); err != nil {
		t.Fatalf("RenderChart returned error: %v", err)
	}
	html := buf.String()
	for _, want := range []string{"<html", "echarts", "Patterns", "Demand", "Waste"} {
		if !strings.Contains(html, want) {
			t.Errorf("expected chart page to contain %q", want)
		}
	}
}

func TestRenderChart_EmptySolution(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderChart(&buf, model.Solution{}); err == nil {
		t.Fatal("expected error for empty solution")
	}
}
