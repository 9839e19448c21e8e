package cli

import (
	"fmt"
	"io"
	"slices"
	"text/tabwriter"

	"github.com/at-ishikawa/reviewdeck/internal/srs"
	"github.com/at-ishikawa/reviewdeck/internal/statistics"
)

// PrintCards writes cards as a table.
func PrintCards(w io.Writer, cards []srs.Card) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ITEM\tKIND\tSTATUS\tEASE\tINTERVAL\tREPS\tNEXT REVIEW")
	for _, c := range cards {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\t%d\t%d\t%s\n",
			c.ItemID, c.ItemKind, c.Status, c.EaseFactor, c.IntervalDays, c.RepetitionCount, c.NextReviewDate)
	}
	return tw.Flush()
}

// PrintSummary writes the collection counts.
func PrintSummary(w io.Writer, s statistics.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "TOTAL\tNEW\tLEARNING\tREVIEW\tMASTERED\tDUE TODAY")
	_, _ = fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%d\t%d\n", s.Total, s.New, s.Learning, s.Review, s.Mastered, s.DueToday)
	return tw.Flush()
}

// PrintSummaryByKind writes one row per item kind in declaration order.
func PrintSummaryByKind(w io.Writer, byKind map[srs.ItemKind]statistics.Summary) error {
	kinds := make([]srs.ItemKind, 0, len(byKind))
	for kind := range byKind {
		kinds = append(kinds, kind)
	}
	slices.Sort(kinds)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "KIND\tTOTAL\tNEW\tLEARNING\tREVIEW\tMASTERED\tDUE TODAY")
	for _, kind := range kinds {
		s := byKind[kind]
		_, _ = fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\t%d\n", kind, s.Total, s.New, s.Learning, s.Review, s.Mastered, s.DueToday)
	}
	return tw.Flush()
}

// PrintForecast writes the number of cards due per day.
func PrintForecast(w io.Writer, loads []statistics.DayLoad) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "DATE\tDUE")
	for _, l := range loads {
		_, _ = fmt.Fprintf(tw, "%s\t%d\n", l.Date, l.Count)
	}
	return tw.Flush()
}
