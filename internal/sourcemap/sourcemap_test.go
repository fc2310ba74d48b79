package sourcemap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSingleMappingEncodesAAAA(t *testing.T) {
	w := NewWriter([]string{"Foo.java"})
	w.Add(Mapping{GeneratedLine: 0, GeneratedColumn: 0, SourceIndex: 0, SourceLine: 0, SourceColumn: 0})
	require.Equal(t, "AAAA", w.Mappings())
}

func TestColumnDeltaWithinALine(t *testing.T) {
	w := NewWriter([]string{"Foo.java"})
	w.Add(Mapping{GeneratedLine: 0, GeneratedColumn: 0, SourceIndex: 0, SourceLine: 0, SourceColumn: 0})
	w.Add(Mapping{GeneratedLine: 0, GeneratedColumn: 4, SourceIndex: 0, SourceLine: 0, SourceColumn: 2})
	mappings := w.Mappings()
	require.NotContains(t, mappings, ";")
	require.Contains(t, mappings, ",")
}

func TestMultipleGeneratedLinesAreSemicolonSeparated(t *testing.T) {
	w := NewWriter([]string{"Foo.java"})
	w.Add(Mapping{GeneratedLine: 0, GeneratedColumn: 0, SourceIndex: 0, SourceLine: 0, SourceColumn: 0})
	w.Add(Mapping{GeneratedLine: 2, GeneratedColumn: 0, SourceIndex: 0, SourceLine: 1, SourceColumn: 0})
	mappings := w.Mappings()
	// line 0 group, then an empty group for line 1, then line 2's group.
	require.Equal(t, 3, len(splitSemicolons(mappings)))
}

func TestNegativeDeltaRoundTripsThroughVLQSign(t *testing.T) {
	require.Equal(t, "D", encodeVLQ(-1))
	require.Equal(t, "A", encodeVLQ(0))
	require.Equal(t, "C", encodeVLQ(1))
}

func splitSemicolons(s string) []string {
	var out []string
	start := 0
	for i, r := range s {
		if r == ';' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}
