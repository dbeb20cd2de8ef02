package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/jacoblehr/codex/pkg/types"
)

// chipColors maps tag colours to terminal colours.
var chipColors = map[string]lipgloss.Color{
	types.ColorGray:   lipgloss.Color("8"),
	types.ColorWhite:  lipgloss.Color("15"),
	types.ColorYellow: lipgloss.Color("11"),
	types.ColorOrange: lipgloss.Color("208"),
	types.ColorRed:    lipgloss.Color("9"),
	types.ColorPurple: lipgloss.Color("13"),
	types.ColorBlue:   lipgloss.Color("12"),
	types.ColorGreen:  lipgloss.Color("10"),
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle  = lipgloss.NewStyle().Faint(true)
)

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return systemError{fmt.Errorf("marshal output: %w", err)}
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// chip renders a tag in its colour.
func chip(t types.Tag) string {
	style := lipgloss.NewStyle()
	if t.Color != nil {
		if c, ok := chipColors[*t.Color]; ok {
			style = style.Foreground(c)
		}
	}
	return style.Render("#" + t.Tag)
}

func chips(tags []types.Tag) string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = chip(t)
	}
	return strings.Join(out, " ")
}

func linkChips(tags []types.LinkTag) string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = "#" + t.Tag
	}
	return strings.Join(out, " ")
}

// ago renders a timestamp relative to now.
func ago(t time.Time) string {
	return humanize.Time(t)
}

func agoPtr(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return ago(*t)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

// table writes rows under a bold header, trimming trailing padding.
func table(w io.Writer, header []string, rows [][]string) {
	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, r := range rows {
		fmt.Fprintln(tw, strings.Join(r, "\t"))
	}
	tw.Flush()

	lines := strings.Split(strings.TrimRight(sb.String(), "\n"), "\n")
	for i, line := range lines {
		line = strings.TrimRight(line, " ")
		if i == 0 {
			line = headerStyle.Render(line)
		}
		fmt.Fprintln(w, line)
	}
}

func printBookmark(w io.Writer, b *types.Bookmark) {
	fmt.Fprintf(w, "%d  %s\n", b.ID, b.URI)
	if b.Name != nil {
		fmt.Fprintf(w, "    name:        %s\n", *b.Name)
	}
	if b.Description != nil {
		fmt.Fprintf(w, "    description: %s\n", *b.Description)
	}
	if b.ImageURI != nil {
		fmt.Fprintf(w, "    image:       %s\n", *b.ImageURI)
	}
	if len(b.Tags) > 0 {
		fmt.Fprintf(w, "    tags:        %s\n", chips(b.Tags))
	}
	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("    created %s, updated %s", ago(b.CreatedAt), agoPtr(b.UpdatedAt))))
}

func printLink(w io.Writer, l *types.Link) {
	fmt.Fprintf(w, "%d  %s\n", l.ID, l.URI)
	if l.Name != nil {
		fmt.Fprintf(w, "    name:        %s\n", *l.Name)
	}
	if l.Description != nil {
		fmt.Fprintf(w, "    description: %s\n", *l.Description)
	}
	if len(l.Tags) > 0 {
		fmt.Fprintf(w, "    tags:        %s\n", linkChips(l.Tags))
	}
	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("    created %s, updated %s", ago(l.CreatedAt), agoPtr(l.UpdatedAt))))
}

func printCounts(w io.Writer, label string, counts []types.Count) {
	rows := make([][]string, len(counts))
	for i, c := range counts {
		rows[i] = []string{fmt.Sprint(c.ID), fmt.Sprint(c.Count)}
	}
	table(w, []string{label, "COUNT"}, rows)
}
