package parser

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"

	"pycheck/internal/pyast"
)

// ErrSyntax is wrapped by Parse when the source contains syntax errors.
// The returned module is still usable; broken regions are lowered as Other nodes.
var ErrSyntax = errors.New("syntax error")

// Extensions lists the file extensions treated as Python source.
var Extensions = []string{".py", ".pyi"}

func Language() *sitter.Language {
	return sitter.NewLanguage(tree_sitter_python.Language())
}

type Parser struct {
	pool *ParserPool
}

func New() *Parser {
	return &Parser{pool: NewParserPool(Language())}
}

// Parse parses Python source and lowers it into a pyast.Module.
func (p *Parser) Parse(path string, content []byte) (*pyast.Module, error) {
	sp := p.pool.Get()
	defer p.pool.Put(sp)

	tree := sp.Parse(content, nil)
	if tree == nil {
		return nil, fmt.Errorf("parse %s: parser returned no tree", path)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil, fmt.Errorf("parse %s: empty tree", path)
	}

	mod := newLowerer(content).module(root)
	if root.HasError() {
		return mod, fmt.Errorf("parse %s: %w", path, ErrSyntax)
	}
	return mod, nil
}

// IsPythonFile reports whether path has a Python source extension.
func IsPythonFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}
