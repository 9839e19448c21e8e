package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/at-ishikawa/reviewdeck/internal/catalog"
	"github.com/at-ishikawa/reviewdeck/internal/srs"
)

var errEnd = errors.New("end of review")

// Reviewer is the part of review.Service used by the interactive session.
type Reviewer interface {
	StartSession(ctx context.Context) (srs.SessionPlan, error)
	Preview(ctx context.Context, itemID string) (map[srs.Quality]int, error)
	Rate(ctx context.Context, itemID string, q srs.Quality) (srs.Card, srs.Session, error)
	Complete(ctx context.Context) (srs.Session, srs.Streak, error)
}

// ItemLookup resolves the prompt and answer of a card.
type ItemLookup interface {
	Lookup(id string) (catalog.Entry, bool)
}

// ReviewCLI runs today's review queue in the terminal.
type ReviewCLI struct {
	reviewer     Reviewer
	items        ItemLookup
	stdinReader  *bufio.Reader
	stdoutWriter io.Writer
	bold         *color.Color
	italic       *color.Color
	faint        *color.Color
}

// NewReviewCLI creates a ReviewCLI. items may be nil, in which case the item id is shown as the prompt.
func NewReviewCLI(reviewer Reviewer, items ItemLookup, stdin io.Reader, stdout io.Writer) *ReviewCLI {
	return &ReviewCLI{
		reviewer:     reviewer,
		items:        items,
		stdinReader:  bufio.NewReader(stdin),
		stdoutWriter: stdout,
		bold:         color.New(color.Bold),
		italic:       color.New(color.Italic),
		faint:        color.New(color.Faint),
	}
}

// Run reviews every card in today's queue until the queue is empty, the learner quits
// with "q", or ctx is cancelled. The session is completed only when the whole queue was reviewed;
// a run that stops early keeps the ratings given so far and leaves the streak untouched.
func (r *ReviewCLI) Run(ctx context.Context) error {
	plan, err := r.reviewer.StartSession(ctx)
	if err != nil {
		return fmt.Errorf("reviewer.StartSession > %w", err)
	}
	if len(plan.Queue) == 0 {
		_, _ = fmt.Fprintln(r.stdoutWriter, "Nothing to review today.")
		return nil
	}
	_, _ = fmt.Fprintf(r.stdoutWriter, "%d cards to review (%d new today)\n", len(plan.Queue), len(plan.Introduced))

	rated := 0
	for _, card := range plan.Queue {
		if ctx.Err() != nil {
			break
		}
		err := r.reviewCard(ctx, rated+1, len(plan.Queue), card)
		if errors.Is(err, errEnd) {
			break
		}
		if err != nil {
			return err
		}
		rated++
	}

	if rated < len(plan.Queue) || ctx.Err() != nil {
		if rated > 0 {
			_, _ = fmt.Fprintf(r.stdoutWriter, "\nStopped with %d of %d cards left. Today's session is not complete yet.\n",
				len(plan.Queue)-rated, len(plan.Queue))
		}
		return nil
	}

	session, streak, err := r.reviewer.Complete(ctx)
	if err != nil {
		return fmt.Errorf("reviewer.Complete > %w", err)
	}
	_, _ = fmt.Fprintf(r.stdoutWriter, "\nReviewed %d cards, %.0f%% correct. Streak: %d days\n",
		session.ReviewedCount,
		session.Accuracy()*100,
		streak.StreakDays,
	)
	return nil
}

func (r *ReviewCLI) reviewCard(ctx context.Context, position, total int, card srs.Card) error {
	entry := catalog.Entry{ID: card.ItemID, Prompt: card.ItemID}
	if r.items != nil {
		if e, ok := r.items.Lookup(card.ItemID); ok {
			entry = e
		}
	}

	_, _ = fmt.Fprintf(r.stdoutWriter, "\n[%d/%d] %s ", position, total, r.faint.Sprintf("(%s, %s)", card.ItemKind, card.Status))
	_, _ = r.bold.Fprintln(r.stdoutWriter, entry.Prompt)
	_, _ = fmt.Fprint(r.stdoutWriter, "Press Enter to show the answer (q to quit): ")
	input, err := r.readLine()
	if err != nil {
		return err
	}
	if input == "q" {
		return errEnd
	}

	if entry.Answer != "" {
		_, _ = fmt.Fprintf(r.stdoutWriter, "%s\n", entry.Answer)
	}
	if entry.Note != "" {
		_, _ = r.italic.Fprintln(r.stdoutWriter, entry.Note)
	}

	preview, err := r.reviewer.Preview(ctx, card.ItemID)
	if err != nil {
		return fmt.Errorf("reviewer.Preview(%s) > %w", card.ItemID, err)
	}
	q, err := r.askQuality(preview)
	if err != nil {
		return err
	}

	reviewed, _, err := r.reviewer.Rate(ctx, card.ItemID, q)
	if err != nil {
		return fmt.Errorf("reviewer.Rate(%s) > %w", card.ItemID, err)
	}
	printer := color.New(color.FgGreen)
	if !q.IsCorrect() {
		printer = color.New(color.FgRed)
	}
	_, _ = printer.Fprintf(r.stdoutWriter, "Next review on %s (in %s)\n", reviewed.NextReviewDate, formatDays(reviewed.IntervalDays))
	return nil
}

func (r *ReviewCLI) askQuality(preview map[srs.Quality]int) (srs.Quality, error) {
	options := make([]string, 0, len(preview))
	for _, q := range srs.Qualities() {
		options = append(options, fmt.Sprintf("%d) %s %s", int(q)+1, q, r.faint.Sprintf("[%s]", formatDays(preview[q]))))
	}

	for {
		_, _ = fmt.Fprintf(r.stdoutWriter, "%s: ", strings.Join(options, "  "))
		input, err := r.readLine()
		if err != nil {
			return 0, err
		}
		if input == "q" {
			return 0, errEnd
		}
		if q, ok := ParseRating(input); ok {
			return q, nil
		}
		_, _ = fmt.Fprintln(r.stdoutWriter, "Please enter 1-4 or q.")
	}
}

// readLine returns the trimmed next line. End of input ends the review.
func (r *ReviewCLI) readLine() (string, error) {
	line, err := r.stdinReader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			if line = strings.TrimSpace(line); line != "" {
				return line, nil
			}
			return "", errEnd
		}
		return "", fmt.Errorf("failed to read from stdin: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// ParseRating reads the grade a learner typed: 1-4 from worst to best, or a grade name.
func ParseRating(input string) (srs.Quality, bool) {
	input = strings.ToLower(strings.TrimSpace(input))
	if len(input) == 1 && input[0] >= '1' && input[0] <= '4' {
		return srs.Quality(input[0] - '1'), true
	}
	if input == "" || (input[0] >= '0' && input[0] <= '9') {
		return 0, false
	}
	q, err := srs.ParseQuality(input)
	if err != nil {
		return 0, false
	}
	return q, true
}

func formatDays(days int) string {
	if days == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", days)
}
