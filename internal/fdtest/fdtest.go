// Package fdtest holds shared test helpers: dedenting multi-line .fd
// fixtures, ANSI-colored structural diffs of parsed graphs, and named
// round-trip snapshots.
package fdtest

import (
	"fmt"
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/google/go-cmp/cmp"
	"github.com/lithammer/dedent"
)

// Dedent strips a common leading-whitespace prefix and collapses runs
// of blank lines, so .fd fixtures can be written indented to match
// surrounding Go source.
func Dedent(input string) string {
	return dedent.Dedent(
		strings.ReplaceAll(
			strings.TrimLeft(
				strings.TrimRight(input, " \t\n\r"),
				"\r\n"),
			"\n\n\n", "\n\n"),
	)
}

// ANSIDiff renders a cmp.Diff with red/green ANSI coloring for failed
// assertions on SceneGraph/Handler values in a terminal.
func ANSIDiff(x, y interface{}, opts ...cmp.Option) string {
	escape := func(code int) string { return fmt.Sprintf("\x1b[%dm", code) }
	diff := cmp.Diff(x, y, opts...)
	if diff == "" {
		return ""
	}
	lines := strings.Split(diff, "\n")
	for i, l := range lines {
		switch {
		case strings.HasPrefix(l, "-"):
			lines[i] = escape(31) + l + escape(0)
		case strings.HasPrefix(l, "+"):
			lines[i] = escape(32) + l + escape(0)
		}
	}
	return strings.Join(lines, "\n")
}

// RedactTestName strips characters that can't appear in a snapshot
// filename.
func RedactTestName(name string) string {
	r := strings.NewReplacer(
		"#", "_", "<", "_", ">", "_", ")", "_", "(", "_", ":", "_",
		" ", "_", "'", "_", "\"", "_", "@", "_", "`", "_", "+", "_",
	)
	return r.Replace(name)
}

// SnapshotRoundTrip snapshots a .fd input alongside its
// emit(parse(input)) output.
func SnapshotRoundTrip(t *testing.T, name, input, output string) {
	t.Helper()
	s := snaps.WithConfig(
		snaps.Filename(RedactTestName(name)),
		snaps.Dir("__snapshots__"),
	)
	body := "## Input\n\n```fd\n" + Dedent(input) + "\n```\n\n## Output\n\n```fd\n" + Dedent(output) + "\n```"
	s.MatchSnapshot(t, body)
}
