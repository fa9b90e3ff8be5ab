// Package syntax defines the language-neutral syntax tree the extractors walk,
// and the registry of language parsers that produce it.
package syntax

// Language represents a supported programming language.
type Language string

const (
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangPython     Language = "python"
)

// FileExtensions maps each language to its recognized file extensions.
var FileExtensions = map[Language][]string{
	LangJavaScript: {".js", ".jsx", ".mjs", ".cjs"},
	LangTypeScript: {".ts", ".tsx", ".mts", ".cts"},
	LangPython:     {".py"},
}

// Parser defines the interface for language-specific parsers.
type Parser interface {
	// Language returns which language this parser handles.
	Language() Language

	// Extensions returns the file extensions this parser can handle.
	Extensions() []string

	// Parse parses the given file content into a generic tree.
	Parse(filePath string, content []byte) (*Tree, error)
}
