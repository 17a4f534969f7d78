package languages

import (
	"github.com/deepakdgupta1/knowcode/internal/frontend"
)

// Default builds the Registry wired with every Frontend this module ships:
// the tree-sitter-backed frontends for the languages the scanner tags, plus
// the line-oriented frontends for Markdown and YAML, which have no tree-
// sitter grammar in the pack.
func Default() *frontend.Registry {
	r := frontend.NewRegistry()
	r.Register("go", frontend.NewTreeSitterFrontend(Go()))
	r.Register("python", frontend.NewTreeSitterFrontend(Python()))
	r.Register("javascript", frontend.NewTreeSitterFrontend(JavaScript()))
	r.Register("typescript", frontend.NewTreeSitterFrontend(TypeScript()))
	r.Register("java", frontend.NewTreeSitterFrontend(Java()))
	r.Register("markdown", frontend.MarkdownFrontend{})
	r.Register("yaml", frontend.YAMLFrontend{})
	return r
}
