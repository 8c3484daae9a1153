package utils

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
)

// DetectLanguageFromCodeBlock returns the language tag of the first
// fenced code block in the content, or empty when there is none.
func DetectLanguageFromCodeBlock(content string) string {
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") && len(trimmed) > 3 {
			return strings.TrimPrefix(trimmed, "```")
		}
	}
	return ""
}

// RenderResponse prints a model response with fenced code blocks
// syntax-highlighted via chroma. Free text outside fences is printed
// verbatim.
func RenderResponse(content string, theme string) {
	language := DetectLanguageFromCodeBlock(content)
	insideCodeBlock := false

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			insideCodeBlock = !insideCodeBlock
			continue
		}

		if insideCodeBlock {
			if err := quick.Highlight(os.Stdout, line+"\n", language, "terminal256", theme); err != nil {
				fmt.Println(line)
			}
		} else {
			fmt.Println(line)
		}
	}
}
