// Package sourcemap implements the source-map v3 writer of spec.md
// §4.11: one semicolon-separated group per output line, each containing
// comma-separated base64-VLQ segments of 1, 4, or 5 fields. The encoding
// itself is the public, language-agnostic source-map v3 grammar (domain
// knowledge, not grounded in any single retrieved repo); the
// writer-over-a-triple-list shape mirrors how internal/binarywriter
// and internal/textwriter both consume an ordered instruction stream.
package sourcemap

import (
	"sort"
	"strings"
)

const base64Chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

// Mapping is one segment built from a function's ir.SourceMapping: a
// generated position and the source position it maps back to. Positions
// are rendered as given; nothing here translates a method's code offset
// into an offset in the output file.
type Mapping struct {
	GeneratedLine   int // 0-based line in the emitted .wasm/.wat text, or output unit
	GeneratedColumn int
	SourceIndex     int
	SourceLine      int
	SourceColumn    int
}

// Writer accumulates mappings and renders the "mappings" field of a
// source-map v3 document.
type Writer struct {
	Sources []string
	entries []Mapping
}

// NewWriter returns a Writer naming sources in the order they will be
// indexed by SourceIndex.
func NewWriter(sources []string) *Writer {
	return &Writer{Sources: append([]string(nil), sources...)}
}

// Add appends one mapping. Callers are expected to add mappings in
// code-offset order per function, across all functions in the module
// (spec.md §4.11 "flushes them in code-offset order").
func (w *Writer) Add(m Mapping) { w.entries = append(w.entries, m) }

// Mappings renders the "mappings" string: one group per generated line,
// separated by `;`, segments within a group separated by `,`.
func (w *Writer) Mappings() string {
	sorted := append([]Mapping(nil), w.entries...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].GeneratedLine != sorted[j].GeneratedLine {
			return sorted[i].GeneratedLine < sorted[j].GeneratedLine
		}
		return sorted[i].GeneratedColumn < sorted[j].GeneratedColumn
	})

	var lines []string
	var cur strings.Builder
	curLine := 0
	wrote := false

	// Running previous-value state the VLQ encoding deltas against,
	// reset at the start of each line except prevSourceIndex/Line/Column
	// which persist across the whole file per the v3 spec.
	prevGenCol, prevSrc, prevSrcLine, prevSrcCol := 0, 0, 0, 0
	firstOnLine := true

	flushLine := func() {
		lines = append(lines, cur.String())
		cur.Reset()
		firstOnLine = true
	}

	for _, m := range sorted {
		for curLine < m.GeneratedLine {
			flushLine()
			prevGenCol = 0
			curLine++
		}
		if !firstOnLine {
			cur.WriteByte(',')
		}
		firstOnLine = false
		wrote = true

		cur.WriteString(encodeVLQ(m.GeneratedColumn - prevGenCol))
		cur.WriteString(encodeVLQ(m.SourceIndex - prevSrc))
		cur.WriteString(encodeVLQ(m.SourceLine - prevSrcLine))
		cur.WriteString(encodeVLQ(m.SourceColumn - prevSrcCol))

		prevGenCol = m.GeneratedColumn
		prevSrc = m.SourceIndex
		prevSrcLine = m.SourceLine
		prevSrcCol = m.SourceColumn
	}
	if wrote {
		flushLine()
	}
	return strings.Join(lines, ";")
}

// encodeVLQ encodes a signed integer as base64-VLQ: the sign occupies
// the low bit, magnitude is shifted left by one, then emitted 6 bits at
// a time, least-significant group first, continuation bit set on every
// group but the last.
func encodeVLQ(n int) string {
	var v uint32
	if n < 0 {
		v = uint32(-n)<<1 | 1
	} else {
		v = uint32(n) << 1
	}

	var b strings.Builder
	for {
		digit := v & 0x1f
		v >>= 5
		if v > 0 {
			digit |= 0x20
		}
		b.WriteByte(base64Chars[digit])
		if v == 0 {
			break
		}
	}
	return b.String()
}
