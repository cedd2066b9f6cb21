package consolidate

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"voxmerge/internal/fileutil"
	"voxmerge/internal/logging"
)

// Separator delimits per-contact sections inside a rollup file.
const Separator = "========================================"

// Rollup file names inside the output directory.
const (
	AllRollupName      = "rollup_all.txt"
	ReceivedRollupName = "rollup_received.txt"
)

// Section is one contact's merged transcript.
type Section struct {
	Contact string
	Text    string
}

// Consolidator aggregates per-contact merged transcripts into cross-contact
// rollup files. Rebuilding with unchanged inputs produces byte-identical
// output except for the generation timestamp header.
type Consolidator struct {
	outputDir    string
	ownerName    string
	receivedOnly bool
	logger       *slog.Logger
}

// New builds a consolidator writing into outputDir. ownerName identifies the
// archive owner's messages for the received-only variant; when empty that
// variant is skipped regardless of receivedOnly.
func New(outputDir, ownerName string, receivedOnly bool, logger *slog.Logger) *Consolidator {
	return &Consolidator{
		outputDir:    outputDir,
		ownerName:    strings.TrimSpace(ownerName),
		receivedOnly: receivedOnly,
		logger:       logging.NewComponentLogger(logger, "consolidate"),
	}
}

// Build writes the rollup files and returns their paths. Any existing rollup
// is first copied to a timestamped backup; backups are never deleted here.
func (c *Consolidator) Build(sections []Section, now time.Time) ([]string, error) {
	ordered := make([]Section, len(sections))
	copy(ordered, sections)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Contact < ordered[j].Contact })

	var written []string

	allPath := filepath.Join(c.outputDir, AllRollupName)
	if err := c.writeRollup(allPath, ordered, now); err != nil {
		return written, err
	}
	written = append(written, allPath)

	if c.receivedOnly && c.ownerName != "" {
		filtered := make([]Section, 0, len(ordered))
		for _, section := range ordered {
			filtered = append(filtered, Section{
				Contact: section.Contact,
				Text:    filterReceived(section.Text, c.ownerName),
			})
		}
		receivedPath := filepath.Join(c.outputDir, ReceivedRollupName)
		if err := c.writeRollup(receivedPath, filtered, now); err != nil {
			return written, err
		}
		written = append(written, receivedPath)
	}

	c.logger.Info("rollups generated",
		logging.Int("contacts", len(ordered)),
		logging.Int("files", len(written)))
	return written, nil
}

func (c *Consolidator) writeRollup(path string, sections []Section, now time.Time) error {
	backup, err := fileutil.BackupFile(path, now)
	if err != nil {
		return fmt.Errorf("backup rollup: %w", err)
	}
	if backup != "" {
		c.logger.Debug("backed up rollup", logging.String("backup", backup))
	}

	var buf strings.Builder
	buf.WriteString("# voxmerge rollup\n")
	buf.WriteString("# generated_at: " + now.UTC().Format(time.RFC3339) + "\n")
	buf.WriteString(fmt.Sprintf("# contacts: %d\n", len(sections)))

	for _, section := range sections {
		buf.WriteString("\n")
		buf.WriteString(Separator + "\n")
		buf.WriteString("Contact: " + section.Contact + "\n")
		buf.WriteString(Separator + "\n")
		buf.WriteString(strings.TrimRight(section.Text, "\n"))
		buf.WriteString("\n")
	}

	if err := fileutil.WriteFileAtomic(path, []byte(buf.String()), 0o644); err != nil {
		return fmt.Errorf("write rollup: %w", err)
	}
	return nil
}

// filterReceived keeps the lines of messages the owner did not send. Lines
// that carry no parsable sender (timestamps missing, continuation lines of a
// multi-line message) inherit the direction of the preceding message line.
func filterReceived(text, owner string) string {
	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))

	ownerFold := strings.ToLower(owner)
	sentByOwner := false
	for _, line := range lines {
		if sender, ok := parseSender(line); ok {
			sentByOwner = strings.ToLower(sender) == ownerFold
		}
		if !sentByOwner {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// parseSender extracts the sender of an export line shaped like
// "12/03/2023, 18:45 - Sender: message".
func parseSender(line string) (string, bool) {
	dash := strings.Index(line, " - ")
	if dash < 0 {
		return "", false
	}
	rest := line[dash+3:]
	colon := strings.Index(rest, ": ")
	if colon <= 0 {
		return "", false
	}
	sender := strings.TrimSpace(rest[:colon])
	if sender == "" {
		return "", false
	}
	return sender, true
}
