package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/epuerta/codeguard/internal/changeset"
	"github.com/epuerta/codeguard/internal/render"
)

// ReviewResult is the outcome of an interactive review
type ReviewResult struct {
	Approved []string
	Skipped  []string
	Aborted  bool
	// Applied is set when at least one file was approved
	Applied *changeset.ApplyResult
}

// ReviewItems renders one preview per pending change
func ReviewItems(cs *changeset.ChangeSet, opts render.Options) []ReviewItem {
	r := render.New(opts)
	diffs := cs.Diffs()
	items := make([]ReviewItem, 0, len(diffs))
	for _, d := range diffs {
		items = append(items, ReviewItem{Path: d.Path, Preview: r.RenderFile(d)})
	}
	return items
}

// RunReview walks the user through every pending change and applies the approved ones
func RunReview(cs *changeset.ChangeSet, opts render.Options, programOpts ...tea.ProgramOption) (ReviewResult, error) {
	if !cs.HasPendingChanges() {
		return ReviewResult{}, changeset.ErrNoPendingChanges
	}

	model := NewReviewModel(ReviewItems(cs, opts))
	p := tea.NewProgram(model, programOpts...)
	result, err := p.Run()
	if err != nil {
		return ReviewResult{}, fmt.Errorf("error running review UI: %w", err)
	}

	finalModel, ok := result.(ReviewModel)
	if !ok {
		return ReviewResult{}, fmt.Errorf("unexpected model type: %T", result)
	}

	return ApplyDecisions(cs, finalModel)
}

// ApplyDecisions carries out the choices recorded in a finished review.
// An aborted review leaves the changeset untouched. Otherwise skipped and
// undecided files are dropped and the approved ones applied.
func ApplyDecisions(cs *changeset.ChangeSet, m ReviewModel) (ReviewResult, error) {
	res := ReviewResult{
		Approved: m.Approved(),
		Skipped:  m.Skipped(),
		Aborted:  m.Aborted(),
	}
	if res.Aborted {
		return res, nil
	}

	keep := make(map[string]bool, len(res.Approved))
	for _, path := range res.Approved {
		keep[path] = true
	}
	for _, path := range cs.PendingFiles() {
		if keep[path] {
			continue
		}
		if err := cs.RemoveChange(path); err != nil {
			return res, err
		}
	}

	if !cs.HasPendingChanges() {
		return res, nil
	}
	applied, err := cs.ApplyChanges()
	if err != nil {
		return res, err
	}
	res.Applied = &applied
	return res, nil
}
