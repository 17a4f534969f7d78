package languages

import (
	"github.com/smacker/go-tree-sitter/golang"

	"github.com/deepakdgupta1/knowcode/internal/frontend"
)

// Go returns the LanguageSpec for Go source, grounded on the teacher's
// chunker query for functions/methods/types, extended with receiver-based
// method qualification and call/import extraction.
func Go() *frontend.LanguageSpec {
	return &frontend.LanguageSpec{
		Language:      golang.GetLanguage(),
		FunctionQuery: `(function_declaration name: (identifier) @name) @def`,
		MethodQuery: `
			(method_declaration
				receiver: (parameter_list (parameter_declaration type: (_) @receiver))
				name: (field_identifier) @name) @def
		`,
		ClassQuery:  `(type_declaration (type_spec name: (type_identifier) @name)) @def`,
		ImportQuery: `(import_spec path: (interpreted_string_literal) @path)`,
		CallQuery: `
			(call_expression function: (identifier) @callee)
			(call_expression function: (selector_expression field: (field_identifier) @callee))
		`,
		Extensions: []string{"go"},
	}
}
