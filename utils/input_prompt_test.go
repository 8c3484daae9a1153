package utils

import (
	"bufio"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInputPromptWithContext_ReadsLine(t *testing.T) {
	reader := bufio.NewReader(strings.NewReader("  hello world  \n"))

	input, err := InputPromptWithContext(context.Background(), reader)
	require.NoError(t, err)
	assert.Equal(t, "hello world", input)
}

func TestInputPromptWithContext_ExhaustedInputReturnsEOF(t *testing.T) {
	reader := bufio.NewReader(strings.NewReader(""))

	_, err := InputPromptWithContext(context.Background(), reader)
	assert.ErrorIs(t, err, io.EOF)
}

func TestInputPromptWithContext_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// A reader that never delivers a line.
	pr, _ := io.Pipe()
	_, err := InputPromptWithContext(ctx, bufio.NewReader(pr))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConfirmPrompt_Answers(t *testing.T) {
	cases := map[string]bool{
		"y\n":   true,
		"yes\n": true,
		"o\n":   true,
		"oui\n": true,
		"Y\n":   true,
		"n\n":   false,
		"no\n":  false,
		"\n":    false,
	}

	for answer, expected := range cases {
		accepted, err := ConfirmPrompt("Apply?", bufio.NewReader(strings.NewReader(answer)))
		require.NoError(t, err, answer)
		assert.Equal(t, expected, accepted, answer)
	}
}

func TestConfirmPrompt_EOFIsNo(t *testing.T) {
	accepted, err := ConfirmPrompt("Apply?", bufio.NewReader(strings.NewReader("")))
	require.NoError(t, err)
	assert.False(t, accepted)
}
