package dxf

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

// Encode writes the document as an ASCII DXF R12 drawing. Output is
// byte-for-byte deterministic for a given document.
func (d *Document) Encode(w io.Writer) error {
	bw := bufio.NewWriter(w)
	enc := &encoder{w: bw}

	enc.header(d)
	enc.tables(d)
	enc.entities(d)
	enc.tag(0, "EOF")

	if enc.err != nil {
		return &Error{Reason: "encode", Err: enc.err}
	}
	if err := bw.Flush(); err != nil {
		return &Error{Reason: "encode", Err: err}
	}
	return nil
}

// WriteFile serializes the document to path atomically: the drawing is
// written to a temporary file in the destination directory and renamed
// into place only after a successful flush and sync, so a failure
// never leaves a truncated drawing behind.
func (d *Document) WriteFile(path string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return &Error{Reason: "create temp file", Err: err}
	}
	tmpName := tmp.Name()

	if err := d.Encode(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &Error{Reason: "sync", Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &Error{Reason: "close temp file", Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &Error{Reason: "rename into place", Err: err}
	}
	return nil
}

// encoder emits DXF group code / value pairs, capturing the first
// write error.
type encoder struct {
	w   io.Writer
	err error
}

func (e *encoder) tag(code int, value string) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, "%d\r\n%s\r\n", code, value)
}

func (e *encoder) coord(base int, x, y float64) {
	e.tag(base, formatNum(x))
	e.tag(base+10, formatNum(y))
}

// formatNum renders coordinates with fixed precision so encoded output
// is stable across platforms.
func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func (e *encoder) header(d *Document) {
	e.tag(0, "SECTION")
	e.tag(2, "HEADER")

	e.tag(9, "$ACADVER")
	e.tag(1, "AC1009")

	// 4 = millimeters
	e.tag(9, "$INSUNITS")
	e.tag(70, "4")

	b := d.Bounds()
	e.tag(9, "$EXTMIN")
	e.coord(10, b.X, b.Y)
	e.tag(9, "$EXTMAX")
	e.coord(10, b.X+b.Width, b.Y+b.Height)

	e.tag(0, "ENDSEC")
}

func (e *encoder) tables(d *Document) {
	layers := d.Layers()

	e.tag(0, "SECTION")
	e.tag(2, "TABLES")
	e.tag(0, "TABLE")
	e.tag(2, "LAYER")
	e.tag(70, strconv.Itoa(len(layers)))

	for _, layer := range layers {
		e.tag(0, "LAYER")
		e.tag(2, layer)
		e.tag(70, "0")
		e.tag(62, "7") // default color
		e.tag(6, "CONTINUOUS")
	}

	e.tag(0, "ENDTAB")
	e.tag(0, "ENDSEC")
}

func (e *encoder) entities(d *Document) {
	e.tag(0, "SECTION")
	e.tag(2, "ENTITIES")

	for _, ent := range d.Entities {
		switch ent.Kind {
		case KindLine:
			e.tag(0, "LINE")
			e.tag(8, ent.Layer)
			e.coord(10, ent.Points[0].X, ent.Points[0].Y)
			e.coord(11, ent.Points[1].X, ent.Points[1].Y)

		case KindPolyline:
			e.tag(0, "POLYLINE")
			e.tag(8, ent.Layer)
			e.tag(66, "1") // vertices follow
			if ent.Closed {
				e.tag(70, "1")
			} else {
				e.tag(70, "0")
			}
			for _, p := range ent.Points {
				e.tag(0, "VERTEX")
				e.tag(8, ent.Layer)
				e.coord(10, p.X, p.Y)
			}
			e.tag(0, "SEQEND")
		}
	}

	e.tag(0, "ENDSEC")
}
