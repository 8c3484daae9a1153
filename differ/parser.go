package differ

import (
	"os"
	"path/filepath"
	"strings"
)

// Markup literals recognized in model responses. The format is
// delimiter-based on purpose: the input is untrusted free text, so a
// small find-first-occurrence scanner with predictable failure modes
// beats a real parser. There is no escaping and no nesting; a content
// fragment containing one of these literals truncates its block early.
const (
	planOpenTag    = "<plan>"
	planCloseTag   = "</plan>"
	fileOpenTag    = `<file path="`
	fileCloseTag   = "</file>"
	newFileOpenTag = `<new_file path="`
	newFileClose   = "</new_file>"
	originalMarker = "<<<<<<< ORIGINAL"
	separator      = "======="
	modifiedMarker = ">>>>>>> MODIFIED"
)

// ParseAIResponse extracts a ChangeSet from a model response.
//
// Expected markup:
//
//	<plan>
//	1. Step one
//	2. Step two
//	</plan>
//
//	<file path="src/main.go">
//	<<<<<<< ORIGINAL
//	old code
//	=======
//	new code
//	>>>>>>> MODIFIED
//	</file>
//
//	<new_file path="src/new.go">
//	content
//	</new_file>
//
// It never fails: malformed markup degrades to "no change recorded for
// that block" and the surrounding free text is left to the caller.
func ParseAIResponse(response string, basePath string) *ChangeSet {
	changes := &ChangeSet{}

	parsePlan(response, changes)
	parseFileBlocks(response, basePath, changes)
	parseNewFileBlocks(response, basePath, changes)

	return changes
}

// parsePlan collects the plan steps between the first <plan> and the
// first following </plan>. Leading numbering ("1. ", "- ") is stripped.
func parsePlan(response string, changes *ChangeSet) {
	start := strings.Index(response, planOpenTag)
	if start < 0 {
		return
	}
	rest := response[start+len(planOpenTag):]
	end := strings.Index(rest, planCloseTag)
	if end < 0 {
		return
	}

	for _, line := range strings.Split(rest[:end], "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		cleaned := strings.TrimLeft(trimmed, "0123456789.- ")
		if cleaned != "" {
			changes.Plan = append(changes.Plan, cleaned)
		}
	}
}

// parseFileBlocks scans for <file path="..."> blocks. Block content runs
// to the next </file> literal, not a balanced match. Within a block the
// three markers must appear in order; a block missing any of them is
// silently dropped.
func parseFileBlocks(response string, basePath string, changes *ChangeSet) {
	pos := 0
	for {
		relPath, content, next, closed, ok := scanBlock(response[pos:], fileOpenTag, fileCloseTag)
		if !ok {
			return
		}
		pos += next

		if relPath == "" || !closed {
			continue
		}

		origIdx := strings.Index(content, originalMarker)
		sepIdx := strings.Index(content, separator)
		modIdx := strings.Index(content, modifiedMarker)
		if origIdx < 0 || sepIdx < 0 || modIdx < 0 {
			continue
		}
		if sepIdx < origIdx+len(originalMarker) || modIdx < sepIdx+len(separator) {
			continue
		}

		original := strings.TrimSpace(content[origIdx+len(originalMarker) : sepIdx])
		modified := strings.TrimSpace(content[sepIdx+len(separator) : modIdx])

		fullPath := filepath.Join(basePath, relPath)

		// Missing or unreadable files resolve to empty current content.
		currentBytes, _ := os.ReadFile(fullPath)
		current := string(currentBytes)

		// Global, content-based substitution: the original fragment is
		// replaced everywhere it occurs. When it occurs nowhere, the
		// replacement is a no-op and no change is recorded.
		newContent := strings.ReplaceAll(current, original, modified)
		if newContent == current {
			continue
		}

		changes.Modifications = append(changes.Modifications, FileChange{
			Path:     fullPath,
			Original: current,
			Modified: newContent,
		})
	}
}

// parseNewFileBlocks scans for <new_file path="..."> blocks. Content is
// trimmed and recorded as-is, with no existence check: an empty new file
// is legitimate.
func parseNewFileBlocks(response string, basePath string, changes *ChangeSet) {
	pos := 0
	for {
		relPath, content, next, closed, ok := scanBlock(response[pos:], newFileOpenTag, newFileClose)
		if !ok {
			return
		}
		pos += next

		if relPath == "" || !closed {
			continue
		}

		changes.NewFiles = append(changes.NewFiles, NewFile{
			Path:    filepath.Join(basePath, relPath),
			Content: strings.TrimSpace(content),
		})
	}
}

// scanBlock finds the next `openTag` + path + `">` opening in text and
// returns the quoted path, the content up to the next closeTag, and the
// offset at which scanning should resume (just past the opening tag, so
// tag-like text inside one block is still seen as a candidate opener,
// matching the per-occurrence semantics of the format).
//
// ok is false when no further opening tag exists. closed reports whether
// the block's closing tag was found; an unterminated block carries no
// content.
func scanBlock(text, openTag, closeTag string) (path, content string, next int, closed, ok bool) {
	openIdx := strings.Index(text, openTag)
	if openIdx < 0 {
		return "", "", 0, false, false
	}

	pathStart := openIdx + len(openTag)
	quoteIdx := strings.Index(text[pathStart:], `"`)
	if quoteIdx < 0 {
		return "", "", 0, false, false
	}

	path = text[pathStart : pathStart+quoteIdx]
	tagEnd := pathStart + quoteIdx + 1
	if !strings.HasPrefix(text[tagEnd:], ">") {
		// Not a well-formed opening tag; resume after the candidate.
		return "", "", pathStart, false, true
	}
	contentStart := tagEnd + 1

	closeIdx := strings.Index(text[contentStart:], closeTag)
	if closeIdx >= 0 {
		content = text[contentStart : contentStart+closeIdx]
		closed = true
	}

	return path, content, contentStart, closed, true
}
