package differ

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAIResponse_ModifiesExistingFile(t *testing.T) {
	tempDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "main.rs"), []byte("fn main() {}"), 0644))

	response := `<plan>
1. Add a print statement
</plan>

<file path="main.rs">
<<<<<<< ORIGINAL
fn main() {}
=======
fn main() { println!(); }
>>>>>>> MODIFIED
</file>`

	changes := ParseAIResponse(response, tempDir)

	require.Equal(t, []string{"Add a print statement"}, changes.Plan)
	require.Len(t, changes.Modifications, 1)
	change := changes.Modifications[0]
	assert.Equal(t, filepath.Join(tempDir, "main.rs"), change.Path)
	assert.Equal(t, "fn main() {}", change.Original)
	assert.Equal(t, "fn main() { println!(); }", change.Modified)
	assert.Empty(t, changes.NewFiles)
	assert.Empty(t, changes.Deletions)
}

func TestParseAIResponse_ReplacesEveryOccurrence(t *testing.T) {
	tempDir := t.TempDir()
	content := "let a = old();\nlet b = old();\n"
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "lib.rs"), []byte(content), 0644))

	response := `<file path="lib.rs">
<<<<<<< ORIGINAL
old()
=======
new()
>>>>>>> MODIFIED
</file>`

	changes := ParseAIResponse(response, tempDir)

	require.Len(t, changes.Modifications, 1)
	assert.Equal(t, "let a = new();\nlet b = new();\n", changes.Modifications[0].Modified)
}

func TestParseAIResponse_FragmentNotFoundIsDropped(t *testing.T) {
	tempDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "main.rs"), []byte("fn main() {}"), 0644))

	response := `<file path="main.rs">
<<<<<<< ORIGINAL
this fragment does not exist
=======
replacement
>>>>>>> MODIFIED
</file>`

	changes := ParseAIResponse(response, tempDir)
	assert.True(t, changes.IsEmpty())
}

func TestParseAIResponse_IdenticalReplacementIsDropped(t *testing.T) {
	tempDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "main.rs"), []byte("fn main() {}"), 0644))

	response := `<file path="main.rs">
<<<<<<< ORIGINAL
fn main() {}
=======
fn main() {}
>>>>>>> MODIFIED
</file>`

	changes := ParseAIResponse(response, tempDir)
	assert.True(t, changes.IsEmpty())
}

func TestParseAIResponse_MissingTargetFile(t *testing.T) {
	tempDir := t.TempDir()

	response := `<file path="does_not_exist.rs">
<<<<<<< ORIGINAL
something
=======
something else
>>>>>>> MODIFIED
</file>`

	// An absent file reads as empty, so the replacement is a no-op.
	changes := ParseAIResponse(response, tempDir)
	assert.True(t, changes.IsEmpty())
}

func TestParseAIResponse_OutOfOrderMarkersAreDropped(t *testing.T) {
	tempDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "main.rs"), []byte("fn main() {}"), 0644))

	response := `<file path="main.rs">
=======
<<<<<<< ORIGINAL
fn main() {}
>>>>>>> MODIFIED
</file>`

	changes := ParseAIResponse(response, tempDir)
	assert.True(t, changes.IsEmpty())
}

func TestParseAIResponse_MissingMarkerIsDropped(t *testing.T) {
	tempDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "main.rs"), []byte("fn main() {}"), 0644))

	response := `<file path="main.rs">
<<<<<<< ORIGINAL
fn main() {}
=======
fn main() { println!(); }
</file>`

	changes := ParseAIResponse(response, tempDir)
	assert.True(t, changes.IsEmpty())
}

func TestParseAIResponse_EarlyCloseTruncatesBlock(t *testing.T) {
	tempDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "main.rs"), []byte("fn main() {}"), 0644))

	// The first </file> wins; the markers after it belong to no block.
	response := `<file path="main.rs">
</file>
<<<<<<< ORIGINAL
fn main() {}
=======
fn main() { println!(); }
>>>>>>> MODIFIED
</file>`

	changes := ParseAIResponse(response, tempDir)
	assert.True(t, changes.IsEmpty())
}

func TestParseAIResponse_NewFile(t *testing.T) {
	tempDir := t.TempDir()

	response := `<new_file path="src/utils.rs">
pub fn helper() {}
</new_file>`

	changes := ParseAIResponse(response, tempDir)

	require.Len(t, changes.NewFiles, 1)
	assert.Equal(t, filepath.Join(tempDir, "src", "utils.rs"), changes.NewFiles[0].Path)
	assert.Equal(t, "pub fn helper() {}", changes.NewFiles[0].Content)
}

func TestParseAIResponse_UnterminatedNewFileIsDropped(t *testing.T) {
	tempDir := t.TempDir()

	response := `<new_file path="src/utils.rs">
pub fn helper() {}`

	changes := ParseAIResponse(response, tempDir)
	assert.Empty(t, changes.NewFiles)
}

func TestParseAIResponse_MultipleBlocks(t *testing.T) {
	tempDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "a.rs"), []byte("one"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "b.rs"), []byte("two"), 0644))

	response := `<file path="a.rs">
<<<<<<< ORIGINAL
one
=======
uno
>>>>>>> MODIFIED
</file>

<file path="b.rs">
<<<<<<< ORIGINAL
two
=======
dos
>>>>>>> MODIFIED
</file>

<new_file path="c.rs">
three
</new_file>`

	changes := ParseAIResponse(response, tempDir)

	require.Len(t, changes.Modifications, 2)
	assert.Equal(t, "uno", changes.Modifications[0].Modified)
	assert.Equal(t, "dos", changes.Modifications[1].Modified)
	require.Len(t, changes.NewFiles, 1)
}

func TestParseAIResponse_PlanNumberingStripped(t *testing.T) {
	response := `<plan>
1. First step
2. Second step
- Third step
</plan>`

	changes := ParseAIResponse(response, t.TempDir())

	assert.Equal(t, []string{"First step", "Second step", "Third step"}, changes.Plan)
	assert.True(t, changes.IsEmpty())
}

func TestParseAIResponse_PlainTextNeverFails(t *testing.T) {
	for _, response := range []string{
		"",
		"Just a normal explanation with no markup at all.",
		`<file path=">`,
		"<plan>unterminated",
		"<file path=\"x\">< garbage ======= >>>>>>>",
	} {
		changes := ParseAIResponse(response, t.TempDir())
		require.NotNil(t, changes)
		assert.True(t, changes.IsEmpty())
		assert.Empty(t, changes.Plan)
	}
}
