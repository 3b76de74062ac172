package analyzer

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// ASTViteAnalyzer reads the config through a tree-sitter syntax tree, so
// formatting differences such as "build:{" or a shorthand "ssr" still count.
type ASTViteAnalyzer struct{}

func (ASTViteAnalyzer) AnalyzeVite(ctx context.Context, fileName, content string) (ViteSuggestions, error) {
	src := []byte(content)

	parser := sitter.NewParser()
	defer parser.Close()

	if strings.HasSuffix(fileName, ".ts") || strings.HasSuffix(fileName, ".mts") {
		parser.SetLanguage(typescript.GetLanguage())
	} else {
		parser.SetLanguage(javascript.GetLanguage())
	}

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return ViteSuggestions{}, fmt.Errorf("parsing %s: %w", fileName, err)
	}
	defer tree.Close()

	syn := configSyntax{
		keys:       make(map[string]bool),
		objectKeys: make(map[string]bool),
		shorthand:  make(map[string]bool),
	}
	syn.collect(tree.RootNode(), src)

	// A shorthand property points at a variable defined elsewhere; count it
	// as configured.
	set := func(name string) bool { return syn.objectKeys[name] || syn.shorthand[name] }
	facts := viteFacts{
		build:         set("build"),
		rollupOptions: syn.keys["rollupOptions"],
		server:        set("server"),
		optimizeDeps:  syn.keys["optimizeDeps"],
		ssr:           set("ssr"),
		define:        set("define"),
		envPrefix:     syn.keys["envPrefix"],
	}
	imports := syn.imports
	for _, imp := range imports {
		if imp == "@sveltejs/kit/vite" {
			facts.kitPlugin = true
		}
	}

	return facts.suggestions(), nil
}

type configSyntax struct {
	keys       map[string]bool
	objectKeys map[string]bool
	shorthand  map[string]bool
	imports    []string
}

// collect records every property key, the keys whose value is an object
// literal, shorthand properties, and every module source from import
// statements and require() calls.
func (c *configSyntax) collect(n *sitter.Node, src []byte) {
	if n == nil {
		return
	}

	switch n.Type() {
	case "pair":
		if key := n.ChildByFieldName("key"); key != nil {
			name := strings.Trim(key.Content(src), `"'`)
			c.keys[name] = true
			if v := n.ChildByFieldName("value"); v != nil && v.Type() == "object" {
				c.objectKeys[name] = true
			}
		}
	case "shorthand_property_identifier":
		c.keys[n.Content(src)] = true
		c.shorthand[n.Content(src)] = true
	case "import_statement":
		if s := n.ChildByFieldName("source"); s != nil {
			c.imports = append(c.imports, strings.Trim(s.Content(src), `"'`))
		}
	case "call_expression":
		fn := n.ChildByFieldName("function")
		args := n.ChildByFieldName("arguments")
		if fn != nil && args != nil && fn.Content(src) == "require" && args.NamedChildCount() > 0 {
			if arg := args.NamedChild(0); arg.Type() == "string" {
				c.imports = append(c.imports, strings.Trim(arg.Content(src), "\"'`"))
			}
		}
	}

	for i := 0; i < int(n.NamedChildCount()); i++ {
		c.collect(n.NamedChild(i), src)
	}
}
