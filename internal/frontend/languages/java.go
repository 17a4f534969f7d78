package languages

import (
	"github.com/smacker/go-tree-sitter/java"

	"github.com/deepakdgupta1/knowcode/internal/frontend"
)

// Java returns the LanguageSpec for Java source, enriching the pack beyond
// what the teacher covers: CodeMCP registers java alongside go/python/js/ts/
// kotlin/rust, and a semantic graph over a Java codebase exercises the same
// class/method/call extraction this frontend already generalizes.
func Java() *frontend.LanguageSpec {
	return &frontend.LanguageSpec{
		Language: java.GetLanguage(),
		FunctionQuery: `
			(method_declaration name: (identifier) @name) @def
			(constructor_declaration name: (identifier) @name) @def
		`,
		ClassQuery: `
			(class_declaration name: (identifier) @name) @def
			(interface_declaration name: (identifier) @name) @def
		`,
		ImportQuery: `(import_declaration (scoped_identifier) @path)`,
		CallQuery: `
			(method_invocation name: (identifier) @callee)
		`,
		ClassNodeTypes: []string{"class_declaration", "class_body", "interface_declaration", "interface_body"},
		Extensions:     []string{"java"},
	}
}
