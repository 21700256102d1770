// Package dxf builds CAD documents from world-space vector paths and
// serializes them as DXF R12 drawings in millimeter units.
package dxf

import (
	"fmt"
	"sort"

	"github.com/161sam/sketch2cad/pkg/geometry"
)

// Error reports invalid geometry or a failed document write.
type Error struct {
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return "export: " + e.Reason + ": " + e.Err.Error()
	}
	return "export: " + e.Reason
}

func (e *Error) Unwrap() error {
	return e.Err
}

// DefaultLayer is assigned to paths that carry no layer of their own.
const DefaultLayer = "OUTLINE"

// Layers always declared in the layer table, whether used or not.
var standardLayers = []string{"OUTLINE", "HOLES", "REF"}

// EntityKind distinguishes the CAD primitives a document can hold.
type EntityKind int

const (
	KindPolyline EntityKind = iota
	KindLine
)

// Entity is one CAD primitive with real-world (millimeter)
// coordinates.
type Entity struct {
	Kind   EntityKind
	Layer  string
	Closed bool
	Points []geometry.Point2D
}

// Document is an ordered collection of CAD entities. Entity order
// matches the order of the paths it was built from.
type Document struct {
	Entities []Entity
}

// Export maps world-space paths to CAD entities. Closed paths become
// closed polylines, open two-point paths become lines, longer open
// paths open polylines. Curve-hinted segments are flattened to
// straight segments within flattenTol, since the R12 target has no
// spline primitive.
//
// A run with zero paths is an error: an empty drawing is
// indistinguishable from a failed trace, and writing one would mislead
// the CAD consumer.
func Export(paths []geometry.WorldPath, flattenTol float64) (*Document, error) {
	if len(paths) == 0 {
		return nil, &Error{Reason: "no paths to export"}
	}

	doc := &Document{Entities: make([]Entity, 0, len(paths))}
	for i, wp := range paths {
		flat := geometry.FlattenPath(wp.Path, flattenTol)
		if len(flat.Points) < 2 {
			return nil, &Error{Reason: fmt.Sprintf("path %d has fewer than 2 points", i)}
		}

		layer := flat.Layer
		if layer == "" {
			layer = DefaultLayer
		}

		kind := KindPolyline
		if !flat.Closed && len(flat.Points) == 2 {
			kind = KindLine
		}

		doc.Entities = append(doc.Entities, Entity{
			Kind:   kind,
			Layer:  layer,
			Closed: flat.Closed,
			Points: flat.Points,
		})
	}
	return doc, nil
}

// Layers returns the layer table for the document: the standard layers
// plus any additional layer an entity references, sorted for
// deterministic output.
func (d *Document) Layers() []string {
	seen := make(map[string]bool, len(standardLayers))
	layers := make([]string, 0, len(standardLayers))
	for _, l := range standardLayers {
		seen[l] = true
		layers = append(layers, l)
	}
	var extra []string
	for _, e := range d.Entities {
		if !seen[e.Layer] {
			seen[e.Layer] = true
			extra = append(extra, e.Layer)
		}
	}
	sort.Strings(extra)
	return append(layers, extra...)
}

// Bounds returns the bounding box over all entity points.
func (d *Document) Bounds() geometry.Rect {
	var all []geometry.Point2D
	for _, e := range d.Entities {
		all = append(all, e.Points...)
	}
	return geometry.BoundingBox(all)
}
