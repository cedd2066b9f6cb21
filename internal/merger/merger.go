package merger

import (
	"log/slog"
	"strings"

	"voxmerge/internal/logging"
	"voxmerge/internal/resolver"
)

// Marker forms recognized and produced by the merger. The enriched form is
// syntactically distinct from the bare form so a second pass recognizes
// already-merged lines as final.
const (
	BareMarker     = "[AUDIO]"
	EnrichedMarker = "[AUDIO TRANSCRIT]"
)

// Stats counts the outcome of one merge pass.
type Stats struct {
	References int
	Resolved   int
	Unresolved int
}

// Add accumulates another pass's counters.
func (s *Stats) Add(other Stats) {
	s.References += other.References
	s.Resolved += other.Resolved
	s.Unresolved += other.Unresolved
}

// Merger rewrites transcripts, replacing bare audio markers with enriched
// markers carrying transcription text.
type Merger struct {
	resolver *resolver.Resolver
	logger   *slog.Logger
}

// New builds a merger around the given resolver.
func New(res *resolver.Resolver, logger *slog.Logger) *Merger {
	return &Merger{
		resolver: res,
		logger:   logging.NewComponentLogger(logger, "merger"),
	}
}

// Merge rewrites every bare audio marker in text. Resolved references become
// `[AUDIO TRANSCRIT] "<text>"`; unresolved references are left untouched.
// Already-enriched markers are final and never re-resolved, so merging an
// already-merged transcript returns it unchanged.
func (m *Merger) Merge(text string, rctx *resolver.Context) (string, Stats) {
	var stats Stats

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = m.mergeLine(line, rctx, &stats)
	}
	merged := strings.Join(lines, "\n")

	contact := ""
	if rctx != nil {
		contact = rctx.Contact
	}
	m.logger.Debug("merged transcript",
		logging.String(logging.FieldContact, contact),
		logging.Int("references", stats.References),
		logging.Int("resolved", stats.Resolved),
		logging.Int("unresolved", stats.Unresolved))
	return merged, stats
}

// mergeLine rewrites all bare markers on one line, left to right. Text
// outside the rewritten marker+reference spans is preserved byte for byte.
// The enriched marker differs from the bare marker before the closing
// bracket, so strings.Index on the bare form never lands inside it.
func (m *Merger) mergeLine(line string, rctx *resolver.Context, stats *Stats) string {
	var out strings.Builder
	rest := line

	for {
		pos := strings.Index(rest, BareMarker)
		if pos < 0 {
			out.WriteString(rest)
			return out.String()
		}

		out.WriteString(rest[:pos])
		after := rest[pos+len(BareMarker):]
		reference, consumed := splitReference(after)

		stats.References++
		resolution := m.resolver.Resolve(resolver.Reference{Raw: reference}, rctx)
		if resolution.Matched {
			stats.Resolved++
			out.WriteString(EnrichedMarker)
			out.WriteString(` "`)
			out.WriteString(resolution.Text)
			out.WriteString(`"`)
		} else {
			stats.Unresolved++
			// Keep the original span untouched, spacing included.
			out.WriteString(rest[pos : pos+len(BareMarker)+consumed])
		}
		rest = after[consumed:]
	}
}

// splitReference extracts the whitespace-delimited reference token following
// a bare marker. It returns the token and the number of bytes of `after`
// consumed (leading whitespace plus token).
func splitReference(after string) (string, int) {
	trimmed := strings.TrimLeft(after, " \t")
	if trimmed == "" {
		return "", 0
	}
	lead := len(after) - len(trimmed)

	end := strings.IndexAny(trimmed, " \t")
	if end < 0 {
		end = len(trimmed)
	}
	return trimmed[:end], lead + end
}
