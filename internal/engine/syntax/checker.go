// Package syntax reports whether a source file parses cleanly. It is a
// health signal attached to documentation output and never feeds the
// heuristic analyzer.
package syntax

import (
	"context"
	"path/filepath"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"logicdoc/internal/core/errors"
)

const (
	LangTypeScript = "typescript"
	LangTSX        = "tsx"
	LangJavaScript = "javascript"
)

// maxReportedErrors bounds Health.FirstErrorLines.
const maxReportedErrors = 5

// Health summarizes one parse.
type Health struct {
	Language        string
	Parsed          bool
	ErrorNodes      int
	MissingNodes    int
	FirstErrorLines []int
}

// Clean reports a successful parse with no error or missing nodes.
func (h Health) Clean() bool {
	return h.Parsed && h.ErrorNodes == 0 && h.MissingNodes == 0
}

type Checker struct {
	pools map[string]*parserPool
}

func NewChecker() *Checker {
	return &Checker{
		pools: map[string]*parserPool{
			LangTypeScript: newParserPool(sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript())),
			LangTSX:        newParserPool(sitter.NewLanguage(tree_sitter_typescript.LanguageTSX())),
			LangJavaScript: newParserPool(sitter.NewLanguage(tree_sitter_javascript.Language())),
		},
	}
}

// LanguageFor maps a path to a grammar name, or "" when unsupported.
// .jsx goes through the javascript grammar, which accepts JSX.
func LanguageFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ts", ".mts", ".cts":
		return LangTypeScript
	case ".tsx":
		return LangTSX
	case ".js", ".jsx", ".mjs", ".cjs":
		return LangJavaScript
	default:
		return ""
	}
}

func (c *Checker) Supports(path string) bool {
	return LanguageFor(path) != ""
}

// Check parses content with the grammar chosen from path.
func (c *Checker) Check(ctx context.Context, path string, content []byte) (Health, error) {
	if err := ctx.Err(); err != nil {
		return Health{}, err
	}
	lang := LanguageFor(path)
	pool, ok := c.pools[lang]
	if !ok {
		return Health{}, errors.AddContext(
			errors.New(errors.CodeNotSupported, "no grammar for file"),
			errors.CtxPath, path)
	}

	sp := pool.get()
	defer pool.put(sp)

	tree := sp.Parse(content, nil)
	if tree == nil {
		return Health{Language: lang}, nil
	}
	defer tree.Close()

	health := Health{Language: lang, Parsed: true}
	root := tree.RootNode()
	if root.HasError() {
		collect(root, &health)
	}
	return health, nil
}

func collect(node *sitter.Node, h *Health) {
	if node == nil {
		return
	}
	switch {
	case node.IsError():
		h.ErrorNodes++
		h.noteLine(node)
	case node.IsMissing():
		h.MissingNodes++
		h.noteLine(node)
	}
	if !node.HasError() {
		return
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		collect(node.Child(i), h)
	}
}

func (h *Health) noteLine(node *sitter.Node) {
	if len(h.FirstErrorLines) >= maxReportedErrors {
		return
	}
	h.FirstErrorLines = append(h.FirstErrorLines, int(node.StartPosition().Row)+1)
}
