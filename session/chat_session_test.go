package session

import (
	"bufio"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/companion-cli/companion/providers/models"
	"github.com/companion-cli/companion/token_management"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	response string
}

func (p *stubProvider) Chat(ctx context.Context, messages []models.Message) (string, *models.Usage, error) {
	return p.response, &models.Usage{PromptTokens: 1, CompletionTokens: 1, TotalTokens: 2}, nil
}

// captureStdout redirects os.Stdout for the duration of fn.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	fn()

	_ = w.Close()
	os.Stdout = old
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(out)
}

const modifyMainResponse = `<plan>
1. Add a print statement
</plan>

<file path="main.rs">
<<<<<<< ORIGINAL
fn main() {}
=======
fn main() { println!(); }
>>>>>>> MODIFIED
</file>`

func TestChatSession_PlanModeShowsDiffsWithoutApplying(t *testing.T) {
	tempDir := t.TempDir()
	target := filepath.Join(tempDir, "main.rs")
	require.NoError(t, os.WriteFile(target, []byte("fn main() {}"), 0644))

	session := NewChatSession(ChatConfig{Cwd: tempDir, Theme: "dracula"},
		&stubProvider{response: modifyMainResponse}, token_management.NewTokenManager(), nil, nil)
	session.mode = ModePlan

	out := captureStdout(t, func() {
		session.turn(context.Background(), "add a print")
	})

	// Plan mode shows the plan, the summary and the full diff.
	assert.Contains(t, out, "Add a print statement")
	assert.Contains(t, out, "1 modifications, 0 nouveaux fichiers, 0 suppressions")
	assert.Contains(t, out, "+fn main() { println!(); }")
	assert.Contains(t, out, "no changes applied")

	// Without touching the file.
	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "fn main() {}", string(content))
}

func TestChatSession_AutoModeApplies(t *testing.T) {
	tempDir := t.TempDir()
	target := filepath.Join(tempDir, "main.rs")
	require.NoError(t, os.WriteFile(target, []byte("fn main() {}"), 0644))

	session := NewChatSession(ChatConfig{Cwd: tempDir, Theme: "dracula"},
		&stubProvider{response: modifyMainResponse}, token_management.NewTokenManager(), nil, nil)
	session.mode = ModeAuto

	captureStdout(t, func() {
		session.turn(context.Background(), "add a print")
	})

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "fn main() { println!(); }", string(content))
}

func TestChatSession_RunExitsOnExhaustedInput(t *testing.T) {
	tempDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "main.go"), []byte("package main\n"), 0644))

	session := NewChatSession(ChatConfig{Cwd: tempDir}, &stubProvider{},
		token_management.NewTokenManager(), nil, nil)
	session.reader = bufio.NewReader(strings.NewReader(""))

	done := make(chan error, 1)
	go func() {
		done <- session.Run(context.Background())
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("session did not exit on exhausted input")
	}
}
