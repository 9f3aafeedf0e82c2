package main

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/Winter-Soldier02/FreQ/core"
	"github.com/Winter-Soldier02/FreQ/store"
)

var (
	okMark      = color.New(color.FgGreen).SprintFunc()
	failMark    = color.New(color.FgRed).SprintFunc()
	rankStyle   = color.New(color.Bold).SprintfFunc()
	countStyle  = color.New(color.FgCyan).SprintfFunc()
	variantLead = color.New(color.Faint).SprintFunc()
)

func printBatchReport(w io.Writer, report *core.BatchReport) {
	for _, doc := range report.Documents {
		if doc.OK() {
			fmt.Fprintf(w, "%s %s (%d candidates)\n", okMark("✓"), doc.Document.Name(), doc.Candidates)
			continue
		}
		fmt.Fprintf(w, "%s %s: %v\n", failMark("✗"), doc.Document.Name(), doc.Err)
	}
	fmt.Fprintf(w, "%d candidate questions, %d distinct\n\n", report.Candidates, report.Distinct)
}

func printSnapshotInfo(w io.Writer, info *store.SnapshotInfo) {
	fmt.Fprintf(w, "Saved %s: %d groups, %d occurrences\n\n",
		info.SavedAt.Local().Format(time.DateTime), info.Groups, info.Frequency)
}

// printGroups writes ranked groups. A limit of 0 prints them all.
func printGroups(w io.Writer, rs core.ResultSet, limit int, variants bool) {
	if limit > 0 && limit < len(rs) {
		rs = rs[:limit]
	}
	for i, g := range rs {
		fmt.Fprintf(w, "%s %s %s\n", rankStyle("%3d.", i+1), g.Question, countStyle("(x%d)", g.Frequency))
		if !variants || len(g.Variants) < 2 {
			continue
		}
		for _, v := range g.Variants[1:] {
			fmt.Fprintf(w, "     %s %s\n", variantLead("~"), v)
		}
	}
}
