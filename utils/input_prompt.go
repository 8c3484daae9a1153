package utils

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/companion-cli/companion/constants/lipgloss"
)

// ConfirmPrompt asks a yes/no question and reads the answer. "y", "yes",
// "o" and "oui" count as yes; anything else is no.
func ConfirmPrompt(prompt string, reader *bufio.Reader) (bool, error) {
	fmt.Print(lipgloss.Yellow.Render(prompt + " [y/N] "))

	input, err := reader.ReadString('\n')
	if err != nil {
		if err == io.EOF {
			return false, nil
		}
		return false, fmt.Errorf("error reading input: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(input)) {
	case "y", "yes", "o", "oui":
		return true, nil
	default:
		return false, nil
	}
}

// InputPromptWithContext prompts the user for a line of input, returning
// early when the context is canceled (Ctrl+C). Exhausted input surfaces
// as io.EOF so callers can stop their read loop.
func InputPromptWithContext(ctx context.Context, reader *bufio.Reader) (string, error) {
	inputChan := make(chan string, 1)
	errChan := make(chan error, 1)

	go func() {
		fmt.Print(lipgloss.BlueSky.Render("> "))

		userInput, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				errChan <- io.EOF
				return
			}
			errChan <- fmt.Errorf("error reading input: %w", err)
			return
		}
		inputChan <- strings.TrimSpace(userInput)
	}()

	select {
	case <-ctx.Done():
		fmt.Println()
		return "", ctx.Err()
	case err := <-errChan:
		return "", err
	case input := <-inputChan:
		return input, nil
	}
}
