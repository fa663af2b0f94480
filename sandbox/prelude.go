package sandbox

import (
	"fmt"

	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/parser"
)

// runPrelude evaluates the top-level statements outside the phase functions
// Function declarations are always re-evaluated so edited helpers replace the old ones.
// A var, let, const or class declaration whose names were all bound by an earlier
// compile is skipped, keeping the program's globals. Other statements run every compile.
// Each statement runs on its own so one failure does not hide the rest.
func (x *Executor) runPrelude(prelude string) (problems []error) {
	prog, err := parser.ParseFile(nil, "prelude", prelude, 0)
	if err != nil {
		return []error{fmt.Errorf("prelude: %w", err)}
	}

	// Function declarations first so earlier statements can call later helpers
	order := make([]int, 0, len(prog.Body))
	for i, stmt := range prog.Body {
		if _, ok := stmt.(*ast.FunctionDeclaration); ok {
			order = append(order, i)
		}
	}
	for i, stmt := range prog.Body {
		if _, ok := stmt.(*ast.FunctionDeclaration); !ok {
			order = append(order, i)
		}
	}

	for _, i := range order {
		stmt := prog.Body[i]
		names, isDecl := declaredNames(stmt)
		if isDecl && x.allDeclared(names) {
			continue
		}

		// Idx is 1-based; a statement runs up to the next one so trailing semicolons stay
		from := int(stmt.Idx0()) - 1
		to := len(prelude)
		if i+1 < len(prog.Body) {
			to = int(prog.Body[i+1].Idx0()) - 1
		}
		if from < 0 || from > to || to > len(prelude) {
			continue
		}
		code := prelude[from:to]

		if perr := x.runGuarded(func() error {
			_, e := x.vm.RunString(code)
			return e
		}); perr != nil {
			problems = append(problems, fmt.Errorf("prelude: %w", perr))
		}
		// A failed lexical declaration still occupies its name
		for _, n := range names {
			x.declared[n] = true
		}
	}
	return problems
}

func (x *Executor) allDeclared(names []string) bool {
	if len(names) == 0 {
		return false
	}
	for _, n := range names {
		if !x.declared[n] {
			return false
		}
	}
	return true
}

// declaredNames lists the bindings a statement introduces
// Function declarations report false: they are re-evaluated on every compile.
func declaredNames(stmt ast.Statement) ([]string, bool) {
	var names []string
	switch s := stmt.(type) {
	case *ast.VariableStatement:
		for _, b := range s.List {
			names = bindingNames(b.Target, names)
		}
	case *ast.LexicalDeclaration:
		for _, b := range s.List {
			names = bindingNames(b.Target, names)
		}
	case *ast.ClassDeclaration:
		if s.Class != nil && s.Class.Name != nil {
			names = append(names, string(s.Class.Name.Name))
		}
	default:
		return nil, false
	}
	return names, true
}

func bindingNames(target ast.Expression, names []string) []string {
	switch t := target.(type) {
	case *ast.Identifier:
		names = append(names, string(t.Name))
	case *ast.AssignExpression:
		names = bindingNames(t.Left, names)
	case *ast.ArrayPattern:
		for _, el := range t.Elements {
			if el != nil {
				names = bindingNames(el, names)
			}
		}
		if t.Rest != nil {
			names = bindingNames(t.Rest, names)
		}
	case *ast.ObjectPattern:
		for _, p := range t.Properties {
			switch prop := p.(type) {
			case *ast.PropertyShort:
				names = append(names, string(prop.Name.Name))
			case *ast.PropertyKeyed:
				names = bindingNames(prop.Value, names)
			}
		}
		if t.Rest != nil {
			names = bindingNames(t.Rest, names)
		}
	}
	return names
}
