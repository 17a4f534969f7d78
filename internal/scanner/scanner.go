// Package scanner discovers source files under a project root, tags each
// with the language its extension maps to, and applies a layered ignore
// policy before handing files to the parser frontends.
package scanner

import (
	"bufio"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// File is a discovered source file ready for frontend parsing.
type File struct {
	Path     string // absolute
	RelPath  string // slash-separated, relative to the project root
	Language string // extension-derived language tag, e.g. "go", "python"
	Size     int64
}

// SkippedFile records a file the scanner declined to read, and why — used
// for fail-soft reporting rather than aborting the whole scan.
type SkippedFile struct {
	RelPath string
	Reason  string
}

// maxFileSize is the largest file the scanner will hand to a frontend.
const maxFileSize = 2 << 20 // 2 MiB

// builtinIgnores are always excluded, regardless of .knowcodeignore content.
var builtinIgnores = []string{
	".git", ".svn", ".hg",
	"node_modules", "vendor", "__pycache__",
	".idea", ".vscode", ".knowcode",
	"dist", "build",
}

// extToLanguage maps a recognized extension (no leading dot) to a language
// tag used to pick a parser frontend.
var extToLanguage = map[string]string{
	"go":   "go",
	"py":   "python",
	"js":   "javascript",
	"jsx":  "javascript",
	"ts":   "typescript",
	"tsx":  "typescript",
	"java": "java",
	"md":   "markdown",
	"yaml": "yaml",
	"yml":  "yaml",
}

// Scan walks root and sends each recognized, readable file on the returned
// channel, along with a channel of files it fail-softly skipped. Both
// channels close when the walk completes; a fatal error (root doesn't
// exist) is sent on errs.
func Scan(root string) (<-chan File, <-chan SkippedFile, <-chan error) {
	files := make(chan File, 64)
	skipped := make(chan SkippedFile, 64)
	errs := make(chan error, 1)

	go func() {
		defer close(files)
		defer close(skipped)
		defer close(errs)

		absRoot, err := filepath.Abs(root)
		if err != nil {
			errs <- err
			return
		}

		patterns := append(append([]string{}, builtinIgnores...), loadUserPatterns(absRoot)...)

		walkErr := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if path == absRoot {
					return err
				}
				rel, _ := filepath.Rel(absRoot, path)
				skipped <- SkippedFile{RelPath: filepath.ToSlash(rel), Reason: err.Error()}
				return nil
			}

			rel, _ := filepath.Rel(absRoot, path)
			rel = filepath.ToSlash(rel)

			if d.IsDir() {
				if path == absRoot {
					return nil
				}
				if matchesIgnore(d.Name(), rel, patterns) {
					return filepath.SkipDir
				}
				return nil
			}

			if d.Type()&fs.ModeSymlink != 0 {
				skipped <- SkippedFile{RelPath: rel, Reason: "symlink"}
				return nil
			}
			if matchesIgnore(d.Name(), rel, patterns) {
				return nil
			}

			lang, ok := extToLanguage[strings.TrimPrefix(filepath.Ext(path), ".")]
			if !ok {
				return nil
			}

			info, err := d.Info()
			if err != nil {
				skipped <- SkippedFile{RelPath: rel, Reason: err.Error()}
				return nil
			}
			if info.Size() == 0 {
				return nil
			}
			if info.Size() > maxFileSize {
				skipped <- SkippedFile{RelPath: rel, Reason: "exceeds max file size"}
				return nil
			}

			files <- File{Path: path, RelPath: rel, Language: lang, Size: info.Size()}
			return nil
		})
		if walkErr != nil {
			errs <- walkErr
		}
	}()

	return files, skipped, errs
}

// loadUserPatterns reads ignore patterns from .knowcodeignore (knowcode's
// own file) and falls back to .gitignore at the project root if present.
// Missing files yield no extra patterns; this never creates a file on disk
// since the scanner is a library, not a CLI with first-run side effects.
func loadUserPatterns(root string) []string {
	for _, name := range []string{".knowcodeignore", ".gitignore"} {
		p, err := readPatternFile(filepath.Join(root, name))
		if err == nil && len(p) > 0 {
			return p
		}
	}
	return nil
}

func readPatternFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var patterns []string
	s := bufio.NewScanner(f)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, strings.TrimSuffix(line, "/"))
	}
	return patterns, nil
}

// matchesIgnore applies gitignore-like semantics: exact name match, path
// prefix match (directory patterns), and glob match against both the bare
// name and the full relative path.
func matchesIgnore(name, relPath string, patterns []string) bool {
	for _, p := range patterns {
		if p == "" {
			continue
		}
		if name == p {
			return true
		}
		if strings.HasPrefix(relPath, p+"/") || relPath == p {
			return true
		}
		if matched, _ := filepath.Match(p, relPath); matched {
			return true
		}
		if matched, _ := filepath.Match(p, name); matched {
			return true
		}
	}
	return false
}

// Languages returns the set of language tags the scanner recognizes, used
// by the frontend registry to report which files it can claim.
func Languages() map[string]string {
	out := make(map[string]string, len(extToLanguage))
	for k, v := range extToLanguage {
		out[k] = v
	}
	return out
}
