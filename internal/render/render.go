// Package render prints pipeline reports as terminal text.
package render

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"

	"github.com/mwiater/chunkalign/internal/descriptors"
	"github.com/mwiater/chunkalign/internal/pipeline"
	"github.com/mwiater/chunkalign/internal/results"
	"github.com/mwiater/chunkalign/internal/similarity"
	"github.com/mwiater/chunkalign/internal/util"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	labelStyle  = lipgloss.NewStyle().Faint(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	regionStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
)

const (
	// sequenceWrap is the residues per line in region blocks.
	sequenceWrap = 60
	// idWidth bounds entity IDs in the listing.
	idWidth = 11
)

// Summary writes a human-readable overview of report to w.
func Summary(w io.Writer, report *pipeline.Report) error {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Run %s", report.ID())))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %s (%d aa, %d chunks)\n", labelStyle.Render("query: "), report.Inputs.Query.ID, report.Inputs.Query.LengthAA, report.Inputs.Query.NumChunks)
	fmt.Fprintf(&b, "%s %s (%d aa, %d chunks)\n", labelStyle.Render("target:"), report.Inputs.Target.ID, report.Inputs.Target.LengthAA, report.Inputs.Target.NumChunks)
	writeStats(&b, report.SimilarityStats)

	sum := report.Summary
	fmt.Fprintf(&b, "%s %d raw, %d kept\n", labelStyle.Render("alignments:"), sum.RawAlignments, sum.FilteredAlignments)
	if sum.BestScore == nil {
		b.WriteString("no alignment passed the score and length cut-offs\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	b.WriteString("\n")
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-4s %8s %6s %6s %6s %-13s %-13s", "#", "score", "chunks", "avg", "cont", "query", "target")))
	b.WriteString("\n")
	for _, a := range report.Alignments {
		fmt.Fprintf(&b, "%-4d %8.3f %6d %6.3f %6.3f %-13s %-13s\n",
			a.Rank, a.Score, a.NumChunks, a.AvgSimilarity, a.Continuity,
			fmt.Sprintf("%d-%d", a.QueryRegion.Start, a.QueryRegion.End),
			fmt.Sprintf("%d-%d", a.TargetRegion.Start, a.TargetRegion.End))
	}

	for _, a := range report.Alignments {
		b.WriteString("\n")
		b.WriteString(regionStyle.Render(alignmentBlock(a)))
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func alignmentBlock(a pipeline.AlignmentDetail) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("Alignment %d", a.Rank)))
	b.WriteString("\n")
	b.WriteString(regionLines("query ", a.QueryRegion))
	b.WriteString(regionLines("target", a.TargetRegion))
	fmt.Fprintf(&b, "descriptors: %s\n", a.Comparison)
	b.WriteString(comparisonLine(a.Comparison))
	return b.String()
}

// comparisonLine lists descriptor keys, green when similar and red otherwise.
func comparisonLine(c descriptors.Comparison) string {
	similar := color.New(color.FgGreen).SprintFunc()
	different := color.New(color.FgRed).SprintFunc()

	keys := make([]string, 0, len(c.Similar))
	for k := range c.Similar {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		label := fmt.Sprintf("%s Δ%.3f", k, c.Diff[k])
		if c.Similar[k] {
			parts = append(parts, similar(label))
		} else {
			parts = append(parts, different(label))
		}
	}
	return strings.Join(parts, "  ")
}

func regionLines(label string, r pipeline.Region) string {
	head := fmt.Sprintf("%s %d-%d  ", label, r.Start, r.End)
	pad := strings.Repeat(" ", len(head))
	return head + util.Indent(util.WrapSequence(r.Sequence, sequenceWrap), pad) + "\n"
}

func writeStats(b *strings.Builder, s similarity.Stats) {
	fmt.Fprintf(b, "%s %dx%d  min %.4f  max %.4f  mean %.4f  p95 %.4f\n",
		labelStyle.Render("similarity:"), s.Shape[0], s.Shape[1], s.Min, s.Max, s.Mean, s.Percentile95)
}

// Similarity writes the matrix statistics and top pairs.
func Similarity(w io.Writer, r *pipeline.SimilarityReport) error {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s vs %s", r.Query.ID, r.Target.ID)))
	b.WriteString("\n")
	writeStats(&b, r.Stats)
	fmt.Fprintf(&b, "%s %.4f  %s %.4f  %s %.4f (top %d)\n",
		labelStyle.Render("median"), r.Stats.Median,
		labelStyle.Render("p99"), r.Stats.Percentile99,
		labelStyle.Render("mean top-k"), r.Stats.MeanTopK, r.Stats.TopK)
	if len(r.TopPairs) > 0 {
		b.WriteString(headerStyle.Render(fmt.Sprintf("%-6s %-6s %s", "query", "target", "similarity")))
		b.WriteString("\n")
		for _, p := range r.TopPairs {
			fmt.Fprintf(&b, "%-6d %-6d %.4f\n", p.Row, p.Col, p.Value)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// Entries writes a stored-report listing.
func Entries(w io.Writer, entries []results.Entry) error {
	if len(entries) == 0 {
		_, err := io.WriteString(w, "no stored reports\n")
		return err
	}
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-36s  %-20s  %-24s  %4s  %8s", "run", "created", "query/target", "alns", "best")))
	b.WriteString("\n")
	for _, e := range entries {
		best := "-"
		if e.BestScore != nil {
			best = fmt.Sprintf("%.3f", *e.BestScore)
		}
		fmt.Fprintf(&b, "%-36s  %-20s  %-24s  %4d  %8s\n",
			e.RunID, e.CreatedAt.Format("2006-01-02 15:04:05"), util.TruncateRunes(e.Query, idWidth)+"/"+util.TruncateRunes(e.Target, idWidth), e.Alignments, best)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
