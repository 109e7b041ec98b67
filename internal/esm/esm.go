// Package esm lists the export names of ES modules met while walking a
// package's reexports. It parses with tree-sitter, so unlike the CommonJS
// engine it sees real syntax, but it only ever reads top-level statements.
package esm

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
)

type Surface struct {
	Exports   []string
	Reexports []string
	// Module is true when the source has top-level import or export statements.
	Module bool
}

type Parser struct {
	js *sitter.Language
}

func NewParser() *Parser {
	return &Parser{js: javascript.GetLanguage()}
}

func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".js", ".mjs", ".cjs", ".jsx":
		return true
	default:
		return false
	}
}

func (p *Parser) Parse(ctx context.Context, path string, content []byte) (Surface, error) {
	if !Supported(path) {
		return Surface{}, fmt.Errorf("unsupported extension: %s", filepath.Ext(path))
	}
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(p.js)

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return Surface{}, fmt.Errorf("parse %s: %w", path, err)
	}
	defer tree.Close()
	return collectSurface(tree.RootNode(), content), nil
}

func collectSurface(root *sitter.Node, content []byte) Surface {
	surface := Surface{Exports: []string{}, Reexports: []string{}}
	seenExports := make(map[string]struct{})
	seenReexports := make(map[string]struct{})
	for i := 0; i < int(root.NamedChildCount()); i++ {
		node := root.NamedChild(i)
		switch node.Type() {
		case "import_statement":
			surface.Module = true
		case "export_statement":
			surface.Module = true
			names, reexport := parseExportStatement(node, content)
			for _, name := range names {
				if _, ok := seenExports[name]; !ok {
					seenExports[name] = struct{}{}
					surface.Exports = append(surface.Exports, name)
				}
			}
			if reexport != "" {
				if _, ok := seenReexports[reexport]; !ok {
					seenReexports[reexport] = struct{}{}
					surface.Reexports = append(surface.Reexports, reexport)
				}
			}
		}
	}
	return surface
}

func parseExportStatement(node *sitter.Node, content []byte) ([]string, string) {
	if ns := firstNamedChildOfType(node, "namespace_export"); ns != nil {
		name := nodeText(firstNamedChildOfType(ns, "identifier", "string"), content)
		if name != "" {
			return []string{strings.Trim(name, `"'`)}, ""
		}
	}

	clause := node.ChildByFieldName("export_clause")
	if clause == nil {
		clause = firstNamedChildOfType(node, "export_clause")
	}
	if clause != nil {
		return parseExportClause(clause, content), ""
	}

	if hasChildOfType(node, "default") {
		return []string{"default"}, ""
	}

	if decl := node.ChildByFieldName("declaration"); decl != nil {
		return parseExportDeclaration(decl, content), ""
	}

	if source, ok := extractStringLiteral(node.ChildByFieldName("source"), content); ok {
		return nil, source
	}
	return nil, ""
}

func parseExportClause(node *sitter.Node, content []byte) []string {
	names := make([]string, 0)
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() != "export_specifier" {
			continue
		}
		exportNode := child.ChildByFieldName("alias")
		if exportNode == nil {
			exportNode = child.ChildByFieldName("name")
		}
		if name := strings.Trim(nodeText(exportNode, content), `"'`); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func parseExportDeclaration(node *sitter.Node, content []byte) []string {
	switch node.Type() {
	case "function_declaration", "generator_function_declaration", "class_declaration":
		if name := nodeText(node.ChildByFieldName("name"), content); name != "" {
			return []string{name}
		}
	case "lexical_declaration", "variable_declaration":
		names := make([]string, 0)
		for i := 0; i < int(node.NamedChildCount()); i++ {
			child := node.NamedChild(i)
			if child.Type() != "variable_declarator" {
				continue
			}
			if nameNode := child.ChildByFieldName("name"); nameNode != nil {
				names = append(names, bindingNames(nameNode, content)...)
			}
		}
		return names
	}
	return nil
}

func bindingNames(node *sitter.Node, content []byte) []string {
	switch node.Type() {
	case "identifier", "shorthand_property_identifier_pattern":
		if name := nodeText(node, content); name != "" {
			return []string{name}
		}
	case "object_pattern", "array_pattern":
		names := make([]string, 0)
		for i := 0; i < int(node.NamedChildCount()); i++ {
			child := node.NamedChild(i)
			if child.Type() == "pair_pattern" {
				child = child.ChildByFieldName("value")
				if child == nil {
					continue
				}
			}
			names = append(names, bindingNames(child, content)...)
		}
		return names
	case "assignment_pattern", "object_assignment_pattern":
		if left := node.ChildByFieldName("left"); left != nil {
			return bindingNames(left, content)
		}
	case "rest_pattern":
		if node.NamedChildCount() > 0 {
			return bindingNames(node.NamedChild(0), content)
		}
	}
	return nil
}

func extractStringLiteral(node *sitter.Node, content []byte) (string, bool) {
	text := nodeText(node, content)
	if len(text) < 2 {
		return "", false
	}
	quote := text[0]
	if (quote == '"' || quote == '\'') && text[len(text)-1] == quote {
		return text[1 : len(text)-1], true
	}
	return "", false
}

func nodeText(node *sitter.Node, content []byte) string {
	if node == nil {
		return ""
	}
	return string(content[node.StartByte():node.EndByte()])
}

func hasChildOfType(node *sitter.Node, typ string) bool {
	for i := 0; i < int(node.ChildCount()); i++ {
		if node.Child(i).Type() == typ {
			return true
		}
	}
	return false
}

func firstNamedChildOfType(node *sitter.Node, types ...string) *sitter.Node {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		for _, typ := range types {
			if child.Type() == typ {
				return child
			}
		}
	}
	return nil
}
