package code_indexer

import (
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
)

// outlineQueries maps a capture tag to a tree-sitter query, per language.
var outlineQueries = map[string]map[string]string{
	"go": {
		"function": "(function_declaration name: (identifier) @name)",
		"method":   "(method_declaration name: (field_identifier) @name)",
		"type":     "(type_declaration (type_spec name: (type_identifier) @name))",
	},
	"python": {
		"function": "(function_definition name: (identifier) @name)",
		"class":    "(class_definition name: (identifier) @name)",
	},
	"javascript": {
		"function": "(function_declaration name: (identifier) @name)",
		"class":    "(class_declaration name: (identifier) @name)",
	},
}

// detectLanguage maps a file path to a supported outline language.
func detectLanguage(filePath string) string {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".go":
		return "go"
	case ".py":
		return "python"
	case ".js", ".jsx":
		return "javascript"
	default:
		return ""
	}
}

// ExtractOutline lists the top-level declarations of a source file as
// "tag: name" strings. Files in unsupported languages fall back to their
// first non-blank line, which is usually a package or module statement.
func ExtractOutline(filePath string, sourceCode []byte) []string {
	language := detectLanguage(filePath)
	if language == "" {
		return firstLineOutline(sourceCode)
	}

	var lang *sitter.Language
	switch language {
	case "go":
		lang = golang.GetLanguage()
	case "python":
		lang = python.GetLanguage()
	case "javascript":
		lang = javascript.GetLanguage()
	}

	parser := sitter.NewParser()
	parser.SetLanguage(lang)

	tree := parser.Parse(nil, sourceCode)
	if tree == nil {
		return firstLineOutline(sourceCode)
	}

	var elements []string
	for tag, queryStr := range outlineQueries[language] {
		query, err := sitter.NewQuery([]byte(queryStr), lang)
		if err != nil {
			continue
		}

		cursor := sitter.NewQueryCursor()
		cursor.Exec(query, tree.RootNode())

		for {
			match, ok := cursor.NextMatch()
			if !ok {
				break
			}
			for _, capture := range match.Captures {
				elements = append(elements, tag+": "+capture.Node.Content(sourceCode))
			}
		}
	}

	if len(elements) == 0 {
		return firstLineOutline(sourceCode)
	}
	return elements
}

func firstLineOutline(sourceCode []byte) []string {
	for _, line := range strings.Split(string(sourceCode), "\n") {
		if strings.TrimSpace(line) != "" {
			return []string{strings.TrimSpace(line)}
		}
	}
	return nil
}
