package differ

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/companion-cli/companion/constants/lipgloss"
)

// FileChange is a proposed edit to an existing file. Original and
// Modified hold the full file text before and after the edit; a change
// is only ever recorded when the two differ.
type FileChange struct {
	Path        string
	Original    string
	Modified    string
	Description string
}

// DisplayDiff renders a colored line diff of the change for review.
func (change *FileChange) DisplayDiff() string {
	var output strings.Builder

	output.WriteString(fmt.Sprintf("\n%s\n", lipgloss.Gray.Render(strings.Repeat("─", 60))))
	output.WriteString(fmt.Sprintf("%s\n", lipgloss.Bold.Render(change.Path)))
	if change.Description != "" {
		output.WriteString(fmt.Sprintf("   %s\n", lipgloss.Gray.Render(change.Description)))
	}
	output.WriteString(fmt.Sprintf("%s\n", lipgloss.Gray.Render(strings.Repeat("─", 60))))

	for _, line := range ComputeLineDiff(change.Original, change.Modified) {
		switch line.Op {
		case DiffDelete:
			output.WriteString(lipgloss.Red.Render("-"+line.Text) + "\n")
		case DiffInsert:
			output.WriteString(lipgloss.Green.Render("+"+line.Text) + "\n")
		default:
			output.WriteString(" " + line.Text + "\n")
		}
	}

	return output.String()
}

// Apply overwrites the target path with the full modified text. There is
// no backup and no atomic rename; a failed write can leave a partial
// file, which the review-before-apply flow accepts.
func (change *FileChange) Apply() error {
	if err := os.WriteFile(change.Path, []byte(change.Modified), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", change.Path, err)
	}
	return nil
}

// NewFile is a proposed file creation. "New" is a label of intent from
// the AI response, not a uniqueness constraint: applying it overwrites
// an existing file at the same path.
type NewFile struct {
	Path        string
	Content     string
	Description string
}

// Display renders a preview of the file to create, truncated to 20 lines.
func (newFile *NewFile) Display() string {
	var output strings.Builder

	output.WriteString(fmt.Sprintf("\n%s\n", lipgloss.Gray.Render(strings.Repeat("─", 60))))
	output.WriteString(fmt.Sprintf("%s %s\n", lipgloss.Green.Render("[NEW]"), lipgloss.Bold.Render(newFile.Path)))
	if newFile.Description != "" {
		output.WriteString(fmt.Sprintf("   %s\n", lipgloss.Gray.Render(newFile.Description)))
	}
	output.WriteString(fmt.Sprintf("%s\n", lipgloss.Gray.Render(strings.Repeat("─", 60))))

	lines := strings.Split(newFile.Content, "\n")
	for i, line := range lines {
		if i >= 20 {
			output.WriteString(lipgloss.Gray.Render("... (truncated)") + "\n")
			break
		}
		output.WriteString(lipgloss.Green.Render("+"+line) + "\n")
	}

	return output.String()
}

// Apply creates any missing parent directories, then writes the content.
func (newFile *NewFile) Apply() error {
	if parent := filepath.Dir(newFile.Path); parent != "" && parent != "." {
		if err := os.MkdirAll(parent, 0755); err != nil {
			return fmt.Errorf("failed to create directories: %w", err)
		}
	}
	if err := os.WriteFile(newFile.Path, []byte(newFile.Content), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", newFile.Path, err)
	}
	return nil
}

// ChangeSet holds everything extracted from one model response. It is
// built once per model turn and never merged across turns.
//
// Deletions has display support but no producer: the response markup
// defines no deletion tag today, and none is invented here. The field
// stays for forward compatibility.
type ChangeSet struct {
	Plan          []string
	Modifications []FileChange
	NewFiles      []NewFile
	Deletions     []string
}

// IsEmpty reports whether the set contains any file operation. A plan
// alone does not count as having changes.
func (changes *ChangeSet) IsEmpty() bool {
	return len(changes.Modifications) == 0 && len(changes.NewFiles) == 0 && len(changes.Deletions) == 0
}

// RenderPlan renders the numbered plan steps, or nothing when no plan
// was parsed.
func (changes *ChangeSet) RenderPlan() string {
	if len(changes.Plan) == 0 {
		return ""
	}

	var output strings.Builder
	output.WriteString("\n" + lipgloss.Cyan.Render("PLAN") + "\n")
	output.WriteString(lipgloss.Gray.Render(strings.Repeat("─", 40)) + "\n")
	for i, step := range changes.Plan {
		output.WriteString(fmt.Sprintf("  %s %s\n", lipgloss.Bold.Render(fmt.Sprintf("%d.", i+1)), step))
	}
	return output.String()
}

// RenderAllChanges renders every modification diff, new-file preview and
// pending deletion.
func (changes *ChangeSet) RenderAllChanges() string {
	var output strings.Builder
	for _, change := range changes.Modifications {
		output.WriteString(change.DisplayDiff())
	}
	for _, newFile := range changes.NewFiles {
		output.WriteString(newFile.Display())
	}
	for _, deletion := range changes.Deletions {
		output.WriteString(fmt.Sprintf("\n%s %s\n", lipgloss.Red.Render("[DELETE]"), lipgloss.Bold.Render(deletion)))
	}
	return output.String()
}

// Summary renders the fixed-format count line. The wording is inherited
// from the tool this format originated in and is relied on verbatim by
// callers and tests; it is not pluralization-aware.
func (changes *ChangeSet) Summary() string {
	return fmt.Sprintf(
		"%d modifications, %d nouveaux fichiers, %d suppressions",
		len(changes.Modifications),
		len(changes.NewFiles),
		len(changes.Deletions),
	)
}
