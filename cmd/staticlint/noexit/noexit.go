// Package noexit defines an analyzer that forbids direct calls to os.Exit
// inside the main function of package main. Exiting there skips deferred
// cleanup such as flushing the storage file and the logger.
package noexit

import (
	"go/ast"

	"golang.org/x/tools/go/analysis"
)

// Analyzer reports direct os.Exit calls in main.main.
var Analyzer = &analysis.Analyzer{
	Name: "noexit",
	Doc:  "forbids direct use of os.Exit in main.main",
	Run:  run,
}

func run(pass *analysis.Pass) (interface{}, error) {
	if pass.Pkg.Name() != "main" {
		return nil, nil
	}

	for _, file := range pass.Files {
		for _, decl := range file.Decls {
			fn, ok := decl.(*ast.FuncDecl)
			if !ok || fn.Recv != nil || fn.Name.Name != "main" || fn.Body == nil {
				continue
			}
			inspectBody(pass, fn.Body)
		}
	}

	return nil, nil
}

func inspectBody(pass *analysis.Pass, body *ast.BlockStmt) {
	ast.Inspect(body, func(node ast.Node) bool {
		call, ok := node.(*ast.CallExpr)
		if !ok {
			return true
		}

		if isOsExit(call) {
			pass.Reportf(call.Pos(), "avoid direct os.Exit call in main.main")
		}

		return true
	})
}

func isOsExit(call *ast.CallExpr) bool {
	selector, ok := call.Fun.(*ast.SelectorExpr)
	if !ok || selector.Sel.Name != "Exit" {
		return false
	}

	pkg, ok := selector.X.(*ast.Ident)

	return ok && pkg.Name == "os"
}
