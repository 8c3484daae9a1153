package session

import (
	"fmt"
	"io"

	"github.com/companion-cli/companion/constants/lipgloss"
	"github.com/companion-cli/companion/differ"
)

// Confirmer asks the user a yes/no question and reports the answer.
type Confirmer func(prompt string) bool

// Applier applies a ChangeSet under a confirmation policy. The policy
// only gates whether and how Apply is invoked on each item, never what
// was parsed.
type Applier struct {
	Out     io.Writer
	Confirm Confirmer
}

// ApplyChangeSet walks the set once, honoring the execution mode:
//
//	plan         nothing is applied, ever
//	interactive  each item is individually confirmed; declined items are
//	             skipped, not retried
//	auto         every item is applied, modifications first
//
// Items are applied independently: one failure is reported next to its
// own label and does not block subsequent items.
func (a *Applier) ApplyChangeSet(changes *differ.ChangeSet, mode ExecutionMode) {
	if mode == ExecutionPlan {
		fmt.Fprintln(a.Out, lipgloss.Yellow.Render("(plan mode: no changes applied)"))
		return
	}

	for i := range changes.Modifications {
		change := &changes.Modifications[i]
		if mode == ExecutionInteractive {
			fmt.Fprint(a.Out, change.DisplayDiff())
			if !a.Confirm("Apply this modification?") {
				fmt.Fprintf(a.Out, "  %s %s\n", lipgloss.Yellow.Render("skipped"), change.Path)
				continue
			}
		}
		if err := change.Apply(); err != nil {
			fmt.Fprintf(a.Out, "  %s %v\n", lipgloss.Red.Render("✗"), err)
			continue
		}
		fmt.Fprintf(a.Out, "  %s %s\n", lipgloss.Green.Render("✓"), change.Path)
	}

	for i := range changes.NewFiles {
		newFile := &changes.NewFiles[i]
		if mode == ExecutionInteractive {
			fmt.Fprint(a.Out, newFile.Display())
			if !a.Confirm("Create this file?") {
				fmt.Fprintf(a.Out, "  %s %s\n", lipgloss.Yellow.Render("skipped"), newFile.Path)
				continue
			}
		}
		if err := newFile.Apply(); err != nil {
			fmt.Fprintf(a.Out, "  %s %v\n", lipgloss.Red.Render("✗"), err)
			continue
		}
		fmt.Fprintf(a.Out, "  %s %s (new)\n", lipgloss.Green.Render("✓"), newFile.Path)
	}
}
