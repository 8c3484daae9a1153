package session

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/companion-cli/companion/differ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestChangeSet(t *testing.T, tempDir string) *differ.ChangeSet {
	t.Helper()

	existing := filepath.Join(tempDir, "main.go")
	require.NoError(t, os.WriteFile(existing, []byte("package main\n"), 0644))

	return &differ.ChangeSet{
		Plan: []string{"Do the thing"},
		Modifications: []differ.FileChange{{
			Path:     existing,
			Original: "package main\n",
			Modified: "package main\n\nfunc main() {}\n",
		}},
		NewFiles: []differ.NewFile{{
			Path:    filepath.Join(tempDir, "new.go"),
			Content: "package main\n",
		}},
	}
}

func TestApplyChangeSet_PlanModeWritesNothing(t *testing.T) {
	tempDir := t.TempDir()
	changes := newTestChangeSet(t, tempDir)

	var out bytes.Buffer
	applier := &Applier{Out: &out, Confirm: func(string) bool {
		t.Fatal("plan mode must never ask for confirmation")
		return false
	}}

	applier.ApplyChangeSet(changes, ExecutionPlan)

	// The existing file is untouched and the new file was never created.
	content, err := os.ReadFile(filepath.Join(tempDir, "main.go"))
	require.NoError(t, err)
	assert.Equal(t, "package main\n", string(content))

	_, err = os.Stat(filepath.Join(tempDir, "new.go"))
	assert.True(t, os.IsNotExist(err))
}

func TestApplyChangeSet_AutoAppliesEverything(t *testing.T) {
	tempDir := t.TempDir()
	changes := newTestChangeSet(t, tempDir)

	var out bytes.Buffer
	applier := &Applier{Out: &out, Confirm: func(string) bool {
		t.Fatal("auto mode must never ask for confirmation")
		return false
	}}

	applier.ApplyChangeSet(changes, ExecutionAuto)

	content, err := os.ReadFile(filepath.Join(tempDir, "main.go"))
	require.NoError(t, err)
	assert.Equal(t, "package main\n\nfunc main() {}\n", string(content))

	created, err := os.ReadFile(filepath.Join(tempDir, "new.go"))
	require.NoError(t, err)
	assert.Equal(t, "package main\n", string(created))
}

func TestApplyChangeSet_InteractiveDeclinedItemsAreSkipped(t *testing.T) {
	tempDir := t.TempDir()
	changes := newTestChangeSet(t, tempDir)

	var out bytes.Buffer
	applier := &Applier{Out: &out, Confirm: func(string) bool { return false }}

	applier.ApplyChangeSet(changes, ExecutionInteractive)

	content, err := os.ReadFile(filepath.Join(tempDir, "main.go"))
	require.NoError(t, err)
	assert.Equal(t, "package main\n", string(content))

	_, err = os.Stat(filepath.Join(tempDir, "new.go"))
	assert.True(t, os.IsNotExist(err))
	assert.Contains(t, out.String(), "skipped")
}

func TestApplyChangeSet_InteractiveAcceptedItemsAreApplied(t *testing.T) {
	tempDir := t.TempDir()
	changes := newTestChangeSet(t, tempDir)

	asked := 0
	var out bytes.Buffer
	applier := &Applier{Out: &out, Confirm: func(string) bool {
		asked++
		return true
	}}

	applier.ApplyChangeSet(changes, ExecutionInteractive)

	assert.Equal(t, 2, asked)

	content, err := os.ReadFile(filepath.Join(tempDir, "main.go"))
	require.NoError(t, err)
	assert.Equal(t, "package main\n\nfunc main() {}\n", string(content))

	_, err = os.Stat(filepath.Join(tempDir, "new.go"))
	assert.NoError(t, err)
}

func TestApplyChangeSet_FailureDoesNotBlockLaterItems(t *testing.T) {
	tempDir := t.TempDir()

	// Writing over a directory fails; the following items must still apply.
	badPath := filepath.Join(tempDir, "iamadir")
	require.NoError(t, os.Mkdir(badPath, 0755))

	goodPath := filepath.Join(tempDir, "good.go")
	require.NoError(t, os.WriteFile(goodPath, []byte("before"), 0644))

	changes := &differ.ChangeSet{
		Modifications: []differ.FileChange{
			{Path: badPath, Original: "x", Modified: "y"},
			{Path: goodPath, Original: "before", Modified: "after"},
		},
	}

	var out bytes.Buffer
	applier := &Applier{Out: &out, Confirm: func(string) bool { return true }}

	applier.ApplyChangeSet(changes, ExecutionAuto)

	content, err := os.ReadFile(goodPath)
	require.NoError(t, err)
	assert.Equal(t, "after", string(content))
	assert.Contains(t, out.String(), "✗")
}
