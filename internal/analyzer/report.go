package analyzer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ReportFileName derives the report file name from the analyzed time span,
// replacing characters that are illegal in file names.
func ReportFileName(res *Result) string {
	clean := func(s string) string { return strings.ReplaceAll(s, ":", "_") }
	return fmt.Sprintf("%s~%s.txt", clean(res.FirstTime), clean(res.LastTime))
}

// WriteTextReport renders the result in the line format the field engineers
// read, and writes it under outputDir. Returns the written path.
func WriteTextReport(res *Result, outputDir string) (string, error) {
	if res.FirstTime == "" || res.LastTime == "" {
		return "", fmt.Errorf("analysis result is empty, nothing to write")
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", err
	}

	path := filepath.Join(outputDir, ReportFileName(res))

	var sb strings.Builder
	fmt.Fprintf(&sb, "Time span: %s - %s\n", res.FirstTime, res.LastTime)
	fmt.Fprintf(&sb, "Total races: %d\n\n", res.RaceCount)

	for _, e := range res.Entries {
		if e.Type == EntryRaceInfo {
			// Race separators get their own block.
			fmt.Fprintf(&sb, "\n%s\n", e.Context)
		} else {
			fmt.Fprintf(&sb, "[%s]     %s\n", e.Time, e.Context)
		}
	}

	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// MarkdownReport renders the result as Markdown for the daemon status page.
func MarkdownReport(res *Result) string {
	var sb strings.Builder
	sb.WriteString("# Race Log Analysis\n\n")
	fmt.Fprintf(&sb, "- Time span: `%s` - `%s`\n", res.FirstTime, res.LastTime)
	fmt.Fprintf(&sb, "- Total races: **%d**\n\n", res.RaceCount)

	for _, e := range res.Entries {
		switch e.Type {
		case EntryRaceInfo:
			fmt.Fprintf(&sb, "\n## %s\n\n", strings.Trim(e.Context, "= "))
		case EntryRaceEvent:
			fmt.Fprintf(&sb, "- `%s` **%s**\n", e.Time, e.Context)
		default:
			fmt.Fprintf(&sb, "- `%s` %s\n", e.Time, e.Context)
		}
	}
	return sb.String()
}
