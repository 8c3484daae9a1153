package code_indexer

import (
	"os"
	"path/filepath"
	"strings"
)

// LoadIgnorePatterns collects ignore patterns for a project root: the
// repository-local .gitignore plus the repository exclude file
// (.git/info/exclude). A missing file simply contributes no patterns.
func LoadIgnorePatterns(root string) []string {
	var patterns []string
	patterns = append(patterns, readIgnoreFile(filepath.Join(root, ".gitignore"))...)
	patterns = append(patterns, readIgnoreFile(filepath.Join(root, ".git", "info", "exclude"))...)
	return patterns
}

// readIgnoreFile parses one gitignore-style file, dropping blank lines
// and comments.
func readIgnoreFile(path string) []string {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var patterns []string
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns
}

// IsIgnored reports whether a slash-separated relative path matches any
// of the given gitignore-style patterns.
func IsIgnored(relativePath string, patterns []string) bool {
	base := filepath.Base(relativePath)

	for _, pattern := range patterns {
		// "dir/" patterns ignore the whole directory subtree.
		if strings.HasSuffix(pattern, "/") {
			prefix := strings.TrimSuffix(pattern, "/")
			if relativePath == prefix || strings.HasPrefix(relativePath, prefix+"/") {
				return true
			}
			continue
		}

		if match, _ := filepath.Match(pattern, relativePath); match {
			return true
		}
		// Bare patterns like "*.log" also apply to the file name alone.
		if match, _ := filepath.Match(pattern, base); match {
			return true
		}
		// Patterns naming a directory anywhere in the tree.
		if !strings.ContainsAny(pattern, "*?[") {
			if relativePath == pattern || strings.HasPrefix(relativePath, pattern+"/") {
				return true
			}
		}
	}
	return false
}
