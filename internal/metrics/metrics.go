// Package metrics summarizes an exported CAD document: entity and
// layer counts, bounding box, and vertex statistics. Summaries back
// golden-file tests and run reports.
package metrics

import (
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/161sam/sketch2cad/internal/dxf"
	"github.com/161sam/sketch2cad/pkg/geometry"
)

// Metrics describes a document's geometry in aggregate.
type Metrics struct {
	NumEntities int            `json:"num_entities"`
	ByType      map[string]int `json:"entities_by_type"`
	ByLayer     map[string]int `json:"layers"`
	BBoxMM      geometry.Rect  `json:"bbox_mm"`

	// Vertex count distribution across entities.
	MeanVertices   float64 `json:"mean_vertices"`
	MedianVertices float64 `json:"median_vertices"`
	MaxVertices    int     `json:"max_vertices"`

	// TotalLengthMM is the summed polyline length of all entities.
	TotalLengthMM float64 `json:"total_length_mm"`
}

// Compute derives metrics from a document.
func Compute(doc *dxf.Document) Metrics {
	m := Metrics{
		NumEntities: len(doc.Entities),
		ByType:      make(map[string]int),
		ByLayer:     make(map[string]int),
		BBoxMM:      doc.Bounds(),
	}

	counts := make([]float64, 0, len(doc.Entities))
	for _, e := range doc.Entities {
		m.ByType[kindName(e.Kind)]++
		m.ByLayer[e.Layer]++

		n := len(e.Points)
		counts = append(counts, float64(n))
		if n > m.MaxVertices {
			m.MaxVertices = n
		}

		p := geometry.Path{Points: e.Points, Closed: e.Closed}
		m.TotalLengthMM += p.Length()
	}

	if len(counts) > 0 {
		m.MeanVertices = stat.Mean(counts, nil)
		sort.Float64s(counts)
		m.MedianVertices = stat.Quantile(0.5, stat.Empirical, counts, nil)
	}
	return m
}

// String renders a short human-readable summary.
func (m Metrics) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "entities: %d", m.NumEntities)
	for _, kind := range sortedKeys(m.ByType) {
		fmt.Fprintf(&b, "  %s=%d", kind, m.ByType[kind])
	}
	b.WriteByte('\n')
	fmt.Fprintf(&b, "layers:")
	for _, layer := range sortedKeys(m.ByLayer) {
		fmt.Fprintf(&b, " %s=%d", layer, m.ByLayer[layer])
	}
	b.WriteByte('\n')
	fmt.Fprintf(&b, "bbox: %.2f x %.2f mm\n", m.BBoxMM.Width, m.BBoxMM.Height)
	fmt.Fprintf(&b, "vertices: mean=%.1f median=%.1f max=%d\n",
		m.MeanVertices, m.MedianVertices, m.MaxVertices)
	fmt.Fprintf(&b, "total length: %.2f mm", m.TotalLengthMM)
	return b.String()
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func kindName(k dxf.EntityKind) string {
	switch k {
	case dxf.KindLine:
		return "LINE"
	case dxf.KindPolyline:
		return "POLYLINE"
	default:
		return "UNKNOWN"
	}
}
