package code_indexer

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"
)

// DefaultExtensions lists the file extensions indexed when the caller
// provides no allow-list.
var DefaultExtensions = []string{
	"rs", "ts", "tsx", "js", "jsx", "py", "go", "java", "kt", "swift",
	"c", "cpp", "h", "hpp", "cs", "rb", "php", "vue", "svelte",
	"html", "css", "scss", "sass", "less", "json", "yaml", "yml",
	"toml", "md", "sql", "sh", "bash", "zsh", "fish",
}

// MaxFileSize is the per-file byte ceiling (100KB). Larger files are skipped.
const MaxFileSize = 100_000

// DefaultExcludeDirs are always excluded, in addition to caller-supplied
// exclusions. Matching is substring-based over the whole path string.
var DefaultExcludeDirs = []string{
	"node_modules", "target", "dist", "build", ".git", "__pycache__",
	"vendor", ".venv", "venv", ".idea", ".vscode", "coverage",
}

// IndexedFile holds one file captured during an indexing pass.
type IndexedFile struct {
	Path         string
	RelativePath string
	Content      string
	Extension    string
	Size         int64
}

// CodebaseIndex is the result of a single indexing pass. It is built once
// and read-only afterwards; re-indexing builds a fresh instance.
type CodebaseIndex struct {
	Root                string
	Files               []IndexedFile
	TotalTokensEstimate int
}

// ProgressSink receives cosmetic indexing progress. It is not part of the
// data contract; a nil sink disables reporting.
type ProgressSink interface {
	Step(indexed int)
	Finish(total int)
}

// Options controls an indexing pass.
type Options struct {
	// IncludeExtensions replaces DefaultExtensions when non-empty.
	// Entries are matched case-insensitively, without the dot.
	IncludeExtensions []string
	// ExcludeDirs is unioned with DefaultExcludeDirs.
	ExcludeDirs []string
	// MaxFiles caps how many eligible files are kept. The walk stops once
	// the cap is reached, so which files are kept depends on walk order.
	MaxFiles int
	// Progress receives per-file progress updates. Optional.
	Progress ProgressSink
	// Cache, when set, is consulted before reading file contents.
	Cache *CacheManager
}

// TokenEstimate approximates model-context units as one token per four
// characters. Every context-size bound in the tool uses this estimate.
func TokenEstimate(content string) int {
	return len(content) / 4
}

// Index walks root and builds a CodebaseIndex.
//
// Only the root canonicalization failure is an error. Every per-file
// problem (unreadable, binary, too large, excluded) is a silent skip.
func Index(root string, opts Options) (*CodebaseIndex, error) {
	canonical, err := canonicalize(root)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	index := &CodebaseIndex{Root: canonical}

	excludes := make([]string, 0, len(DefaultExcludeDirs)+len(opts.ExcludeDirs))
	excludes = append(excludes, DefaultExcludeDirs...)
	excludes = append(excludes, opts.ExcludeDirs...)

	var includeSet map[string]struct{}
	if len(opts.IncludeExtensions) > 0 {
		includeSet = make(map[string]struct{}, len(opts.IncludeExtensions))
		for _, ext := range opts.IncludeExtensions {
			includeSet[strings.ToLower(strings.TrimPrefix(ext, "."))] = struct{}{}
		}
	} else {
		includeSet = make(map[string]struct{}, len(DefaultExtensions))
		for _, ext := range DefaultExtensions {
			includeSet[ext] = struct{}{}
		}
	}

	ignorePatterns := LoadIgnorePatterns(canonical)

	walkErr := filepath.WalkDir(canonical, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, never fatal
		}
		if opts.MaxFiles > 0 && len(index.Files) >= opts.MaxFiles {
			return filepath.SkipAll
		}
		if d.IsDir() {
			return nil
		}

		// Coarse substring exclusion over the whole path string.
		for _, exc := range excludes {
			if strings.Contains(path, exc) {
				return nil
			}
		}

		relativePath, err := filepath.Rel(canonical, path)
		if err != nil {
			return nil
		}
		relativePath = filepath.ToSlash(relativePath)

		if IsIgnored(relativePath, ignorePatterns) {
			return nil
		}

		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
		if _, ok := includeSet[ext]; !ok {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.Size() > MaxFileSize {
			return nil
		}

		content, ok := readFileContent(path, opts.Cache)
		if !ok {
			return nil
		}

		index.TotalTokensEstimate += TokenEstimate(content)
		index.Files = append(index.Files, IndexedFile{
			Path:         path,
			RelativePath: relativePath,
			Content:      content,
			Extension:    ext,
			Size:         info.Size(),
		})

		if opts.Progress != nil {
			opts.Progress.Step(len(index.Files))
		}
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("invalid path: %w", walkErr)
	}

	if opts.Progress != nil {
		opts.Progress.Finish(len(index.Files))
	}

	return index, nil
}

// readFileContent loads a file as text, consulting the cache first.
// A file that is not valid UTF-8 is treated as binary and skipped.
func readFileContent(path string, cache *CacheManager) (string, bool) {
	if cache != nil {
		if cached, found := cache.GetFileContentCache(path); found {
			return string(cached), true
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	if !utf8.Valid(data) {
		return "", false
	}

	if cache != nil {
		_ = cache.SetFileContentCache(path, data)
	}
	return string(data), true
}

// canonicalize resolves root to a canonical absolute path, failing if the
// path does not exist or is inaccessible.
func canonicalize(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", err
	}
	return resolved, nil
}

// Summary renders a human-readable overview: file count, token estimate
// and the top 10 extensions by file count.
func (index *CodebaseIndex) Summary() string {
	type extCount struct {
		ext   string
		count int
	}

	counts := make(map[string]int)
	var order []string
	for _, file := range index.Files {
		if _, seen := counts[file.Extension]; !seen {
			order = append(order, file.Extension)
		}
		counts[file.Extension]++
	}

	sorted := make([]extCount, 0, len(order))
	for _, ext := range order {
		sorted = append(sorted, extCount{ext: ext, count: counts[ext]})
	}
	// Stable sort keeps encounter order for equal counts.
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].count > sorted[j].count
	})

	var summary strings.Builder
	summary.WriteString(fmt.Sprintf("Codebase: %s\n", index.Root))
	summary.WriteString(fmt.Sprintf("%d files indexed\n", len(index.Files)))
	summary.WriteString(fmt.Sprintf("~%d tokens estimated\n\n", index.TotalTokensEstimate))

	summary.WriteString("By type:\n")
	for i, entry := range sorted {
		if i >= 10 {
			break
		}
		summary.WriteString(fmt.Sprintf("  .%s: %d\n", entry.ext, entry.count))
	}

	return summary.String()
}

// BuildContext concatenates file contents into chunks whose estimated
// token count stays under maxTokens. The bound is soft: a single file
// whose own estimate exceeds maxTokens still lands whole in its own
// chunk, never split mid-file. Calling it again with a different budget
// recomputes from the same index.
func (index *CodebaseIndex) BuildContext(maxTokens int) []string {
	var chunks []string
	var current strings.Builder
	currentTokens := 0

	for _, file := range index.Files {
		header := fmt.Sprintf("\n--- %s ---\n", file.RelativePath)
		fileTokens := (len(header) + len(file.Content)) / 4

		if currentTokens+fileTokens > maxTokens && current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
			currentTokens = 0
		}

		current.WriteString(header)
		current.WriteString(file.Content)
		currentTokens += fileTokens
	}

	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}

	return chunks
}
