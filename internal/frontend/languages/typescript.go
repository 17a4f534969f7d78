package languages

import (
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/deepakdgupta1/knowcode/internal/frontend"
)

// TypeScript returns the LanguageSpec for TypeScript source.
func TypeScript() *frontend.LanguageSpec {
	return &frontend.LanguageSpec{
		Language: typescript.GetLanguage(),
		FunctionQuery: `
			(function_declaration name: (identifier) @name) @def
			(method_definition name: (property_identifier) @name) @def
			(export_statement (function_declaration name: (identifier) @name)) @def
			(lexical_declaration (variable_declarator name: (identifier) @name value: (arrow_function))) @def
		`,
		ClassQuery: `
			(class_declaration name: (type_identifier) @name (class_heritage (identifier) @base)?) @def
			(export_statement (class_declaration name: (type_identifier) @name)) @def
			(interface_declaration name: (type_identifier) @name) @def
		`,
		ImportQuery: `(import_statement source: (string) @path)`,
		CallQuery: `
			(call_expression function: (identifier) @callee)
			(call_expression function: (member_expression property: (property_identifier) @callee))
		`,
		ClassNodeTypes: []string{"class_declaration", "class_body"},
		Extensions:     []string{"ts", "tsx"},
	}
}
