package languages

import (
	"github.com/smacker/go-tree-sitter/python"

	"github.com/deepakdgupta1/knowcode/internal/frontend"
)

// Python returns the LanguageSpec for Python source.
func Python() *frontend.LanguageSpec {
	return &frontend.LanguageSpec{
		Language: python.GetLanguage(),
		FunctionQuery: `
			(function_definition name: (identifier) @name) @def
			(decorated_definition definition: (function_definition name: (identifier) @name)) @def
		`,
		ClassQuery: `
			(class_definition name: (identifier) @name superclasses: (argument_list (identifier) @base)?) @def
			(decorated_definition definition: (class_definition name: (identifier) @name)) @def
		`,
		ImportQuery: `
			(import_statement name: (dotted_name) @path)
			(import_from_statement module_name: (dotted_name) @path)
		`,
		CallQuery: `
			(call function: (identifier) @callee)
			(call function: (attribute attribute: (identifier) @callee))
		`,
		ClassNodeTypes: []string{"class_definition"},
		Extensions:     []string{"py", "pyi"},
	}
}
