package service

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/olusolaa/gateway-sync/internal/core/domain"
	"github.com/olusolaa/gateway-sync/pkg/compare"
)

const (
	DefaultDiffContext = 3
	DefaultDiffWidth   = 80
)

// DiffLine is one row of a side-by-side diff. Marker is ' ' for equal
// lines, '|' for changed ones, '<' for lines only in the source and '>'
// for lines only in the target.
type DiffLine struct {
	Left   string
	Marker rune
	Right  string
}

func stateLines(state domain.Entity) []string {
	if state == nil {
		return []string{}
	}
	raw, err := compare.MarshalCanonical(state)
	if err != nil {
		return []string{"<unserializable: " + err.Error() + ">"}
	}
	return strings.Split(string(raw), "\n")
}

// GenerateEntityDiff renders a unified diff turning targetState into
// sourceState, over canonical JSON with sorted keys.
func GenerateEntityDiff(sourceState, targetState domain.Entity, contextLines int) []string {
	if contextLines < 0 {
		contextLines = DefaultDiffContext
	}
	diff := difflib.UnifiedDiff{
		A:        withNewlines(stateLines(targetState)),
		B:        withNewlines(stateLines(sourceState)),
		FromFile: "target",
		ToFile:   "source",
		Context:  contextLines,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil || text == "" {
		return []string{}
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}

// withNewlines terminates every line, as the unified diff writer expects.
func withNewlines(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l + "\n"
	}
	return out
}

// GenerateSideBySideDiff aligns the canonical JSON of both states in two
// columns of a total width, source on the left.
func GenerateSideBySideDiff(sourceState, targetState domain.Entity, width int) []DiffLine {
	if width <= 0 {
		width = DefaultDiffWidth
	}
	column := (width - 3) / 2
	if column < 1 {
		column = 1
	}

	left := stateLines(sourceState)
	right := stateLines(targetState)
	matcher := difflib.NewMatcher(left, right)

	out := make([]DiffLine, 0, len(left)+len(right))
	for _, op := range matcher.GetOpCodes() {
		switch op.Tag {
		case 'e':
			for i := op.I1; i < op.I2; i++ {
				out = append(out, DiffLine{Left: clip(left[i], column), Marker: ' ', Right: clip(right[op.J1+i-op.I1], column)})
			}
		case 'r':
			n := max(op.I2-op.I1, op.J2-op.J1)
			for k := 0; k < n; k++ {
				i, j := op.I1+k, op.J1+k
				switch {
				case i < op.I2 && j < op.J2:
					out = append(out, DiffLine{Left: clip(left[i], column), Marker: '|', Right: clip(right[j], column)})
				case i < op.I2:
					out = append(out, DiffLine{Left: clip(left[i], column), Marker: '<'})
				default:
					out = append(out, DiffLine{Marker: '>', Right: clip(right[j], column)})
				}
			}
		case 'd':
			for i := op.I1; i < op.I2; i++ {
				out = append(out, DiffLine{Left: clip(left[i], column), Marker: '<'})
			}
		case 'i':
			for j := op.J1; j < op.J2; j++ {
				out = append(out, DiffLine{Marker: '>', Right: clip(right[j], column)})
			}
		}
	}
	return out
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
