package importer

import (
	"fmt"
	"math"
	"sort"

	"github.com/piwi3910/barcut/internal/model"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"
)

// member is one straight piece found in a drawing.
type member struct {
	layer  string
	length int
}

// ImportDXF builds a cut list from a structural drawing. Every LINE and
// every open LWPOLYLINE is one member; its length is rounded to the
// millimetre. Members on the same layer with the same length are merged
// into one demand item whose label is the layer name.
func ImportDXF(path string) ImportResult {
	result := ImportResult{}

	drawing, err := dxf.Open(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open DXF file: %v", err))
		return result
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		result.Errors = append(result.Errors, "DXF file contains no entities")
		return result
	}

	counts := make(map[member]int)
	skipped := 0
	for _, ent := range entities {
		var (
			length float64
			layer  string
		)
		switch e := ent.(type) {
		case *entity.Line:
			length = distance(e.Start, e.End)
			if l := e.Layer(); l != nil {
				layer = l.Name()
			}
		case *entity.LwPolyline:
			length = polylineLength(e.Vertices)
			if l := e.Layer(); l != nil {
				layer = l.Name()
			}
		default:
			skipped++
			continue
		}

		mm := int(math.Round(length))
		if mm <= 0 {
			result.Warnings = append(result.Warnings, fmt.Sprintf("Skipped zero-length member on layer %q", layer))
			continue
		}
		counts[member{layer: layer, length: mm}]++
	}
	if skipped > 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Skipped %d unsupported entities", skipped))
	}

	if len(counts) == 0 {
		result.Errors = append(result.Errors, "No straight members found in DXF file")
		return result
	}

	members := make([]member, 0, len(counts))
	for m := range counts {
		members = append(members, m)
	}
	sort.Slice(members, func(i, j int) bool {
		if members[i].layer != members[j].layer {
			return members[i].layer < members[j].layer
		}
		return members[i].length > members[j].length
	})

	for _, m := range members {
		label := m.layer
		if label == "" || label == "0" {
			label = fmt.Sprintf("L%d", m.length)
		}
		result.Items = append(result.Items, model.NewDemandItem(label, m.length, counts[m]))
	}
	return result
}

func distance(a, b []float64) float64 {
	if len(a) < 2 || len(b) < 2 {
		return 0
	}
	return math.Hypot(b[0]-a[0], b[1]-a[1])
}

func polylineLength(vertices [][]float64) float64 {
	total := 0.0
	for i := 1; i < len(vertices); i++ {
		total += distance(vertices[i-1], vertices[i])
	}
	return total
}
