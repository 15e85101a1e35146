package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/flemzord/modesync/internal/ordering"
	"github.com/flemzord/modesync/internal/syncer"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printOrder(w io.Writer, order []string) {
	for i, slug := range order {
		fmt.Fprintf(w, "  %2d. %s\n", i+1, slug)
	}
}

func printNotes(w io.Writer, warnings []ordering.ReferenceWarning, skipped []syncer.SkippedMode) {
	if len(warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range warnings {
			fmt.Fprintf(w, "  - %s\n", warn)
		}
	}
	if len(skipped) > 0 {
		fmt.Fprintln(w, "Skipped:")
		for _, s := range skipped {
			fmt.Fprintf(w, "  - %s: %s\n", s.Slug, s.Reason)
		}
	}
}

func printReport(w io.Writer, r *syncer.Report) {
	verb := "Synced"
	if r.DryRun {
		verb = "Would sync"
	}
	fmt.Fprintf(w, "%s %d modes to %s (strategy: %s)\n", verb, len(r.Modes), r.Target, r.Strategy)
	printOrder(w, r.Modes)
	printNotes(w, r.Warnings, r.Skipped)
	if r.Backup != "" {
		fmt.Fprintf(w, "Backup: %s\n", r.Backup)
	}
	if r.Archive != "" {
		fmt.Fprintf(w, "Archive: %s\n", r.Archive)
	}
}

func printStatus(w io.Writer, st *syncer.Status) error {
	fmt.Fprintf(w, "Modes directory: %s (%d modes)\n\n", st.ModesDir, st.ModeCount)

	byCategory := make(map[string][]syncer.ModeStatus)
	for _, m := range st.Modes {
		byCategory[string(m.Category)] = append(byCategory[string(m.Category)], m)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, c := range st.Categories {
		if c.Count == 0 {
			continue
		}
		fmt.Fprintf(tw, "%s %s (%d)\n", c.Icon, c.DisplayName, c.Count)
		for _, m := range byCategory[string(c.Name)] {
			mark := "ok"
			if !m.Valid {
				mark = "invalid: " + m.Error
			}
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", m.Slug, m.Name, mark)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(st.Skipped) > 0 {
		fmt.Fprintln(w, "\nSkipped files:")
		for _, s := range st.Skipped {
			fmt.Fprintf(w, "  - %s: %s\n", s.Path, s.Reason)
		}
	}
	return nil
}
