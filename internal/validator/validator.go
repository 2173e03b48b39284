// Package validator checks a parsed module graph for semantic violations:
// name uniqueness within records, variants and the whole accessible graph,
// and resolution of every reference. All violations are collected before
// returning; the validator never stops at the first failure.
package validator

import (
	"fmt"

	"github.com/theta-lang/theta/internal/ast"
	"github.com/theta-lang/theta/internal/theta"
)

// Graph is the validator's input: every parsed module, in load order.
// Module identity is positional (one entry per source file), so two files
// declaring the same module name are representable and detected.
type Graph []*ast.Module

// DuplicateRecordField reports a record listing the same field name twice.
type DuplicateRecordField struct {
	Record ast.Name
	Field  string
}

func (e *DuplicateRecordField) Error() string {
	return fmt.Sprintf("record %s declares field %q more than once", e.Record, e.Field)
}

func (e *DuplicateRecordField) Render() string { return "error: " + e.Error() }

// DuplicateCaseName reports a variant listing the same case name twice.
type DuplicateCaseName struct {
	Variant ast.Name
	Case    ast.Name
}

func (e *DuplicateCaseName) Error() string {
	return fmt.Sprintf("variant %s declares case %s more than once", e.Variant, e.Case)
}

func (e *DuplicateCaseName) Render() string { return "error: " + e.Error() }

// DuplicateCaseField reports one variant case listing the same field name
// twice.
type DuplicateCaseField struct {
	Variant ast.Name
	Case    ast.Name
	Field   string
}

func (e *DuplicateCaseField) Error() string {
	return fmt.Sprintf("case %s of variant %s declares field %q more than once", e.Case, e.Variant, e.Field)
}

func (e *DuplicateCaseField) Render() string { return "error: " + e.Error() }

// UndefinedType reports a reference that does not resolve to any definition
// reachable from its module.
type UndefinedType struct {
	Name ast.Name
}

func (e *UndefinedType) Error() string {
	return fmt.Sprintf("the type %s is not defined", e.Name)
}

func (e *UndefinedType) Render() string { return "error: " + e.Error() }

// DuplicateTypeName reports a fully-qualified name defined more than once
// anywhere in the accessible graph.
type DuplicateTypeName struct {
	Name ast.Name
}

func (e *DuplicateTypeName) Error() string {
	return fmt.Sprintf("the type %s is defined more than once", e.Name)
}

func (e *DuplicateTypeName) Render() string { return "error: " + e.Error() }

// Validate checks every module in the graph and aggregates all violations
// into a single InvalidModule error, or returns nil if the graph is valid.
// The resulting violation set does not depend on visit order.
func Validate(graph Graph) error {
	counts := make(map[ast.Name]int)
	byName := make(map[ast.ModuleName][]*ast.Module)
	for _, m := range graph {
		byName[m.Name] = append(byName[m.Name], m)
		for _, d := range m.Definitions {
			counts[d.Name]++
		}
	}

	// Violations from every file of a module merge into one entry, and a
	// duplicated name is reported once no matter how many files declare it.
	var order []ast.ModuleName
	perModule := make(map[ast.ModuleName][]theta.ModuleError)
	reported := make(map[ast.Name]bool)
	for _, m := range graph {
		v := &moduleCheck{
			module:    m,
			reachable: reachable(m.Name, byName),
			byName:    byName,
			counts:    counts,
			reported:  reported,
		}
		if errs := v.run(); len(errs) > 0 {
			if perModule[m.Name] == nil {
				order = append(order, m.Name)
			}
			perModule[m.Name] = append(perModule[m.Name], errs...)
		}
	}

	if len(order) == 0 {
		return nil
	}
	entries := make([]theta.ModuleErrors, 0, len(order))
	for _, name := range order {
		entries = append(entries, theta.ModuleErrors{Module: name, Errors: perModule[name]})
	}
	return &theta.InvalidModule{Modules: entries}
}

// reachable computes the transitive import closure of a module name,
// including the module itself. Every file sharing a module name contributes
// its imports.
func reachable(root ast.ModuleName, byName map[ast.ModuleName][]*ast.Module) map[ast.ModuleName]bool {
	seen := map[ast.ModuleName]bool{root: true}
	queue := []ast.ModuleName{root}
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		for _, m := range byName[name] {
			for _, imp := range m.Imports {
				if !seen[imp] {
					seen[imp] = true
					queue = append(queue, imp)
				}
			}
		}
	}
	return seen
}

// moduleCheck accumulates violations for one module.
type moduleCheck struct {
	module    *ast.Module
	reachable map[ast.ModuleName]bool
	byName    map[ast.ModuleName][]*ast.Module
	counts    map[ast.Name]int
	reported  map[ast.Name]bool // duplicate names reported once per graph
	errs      []theta.ModuleError
}

func (v *moduleCheck) run() []theta.ModuleError {
	for _, d := range v.module.Definitions {
		if v.counts[d.Name] > 1 && !v.reported[d.Name] {
			v.reported[d.Name] = true
			v.errs = append(v.errs, &DuplicateTypeName{Name: d.Name})
		}
		v.checkType(d.Type)
	}
	return v.errs
}

// resolves reports whether a reference resolves to a definition in the
// reachable part of the graph.
func (v *moduleCheck) resolves(name ast.Name) bool {
	if !v.reachable[name.Module] {
		return false
	}
	for _, m := range v.byName[name.Module] {
		if _, ok := m.Definition(name.Name); ok {
			return true
		}
	}
	return false
}

func (v *moduleCheck) checkType(t ast.Type) {
	switch t := t.(type) {
	case ast.Record:
		seen := make(map[string]bool)
		for _, f := range t.Fields {
			if seen[f.Name] {
				v.errs = append(v.errs, &DuplicateRecordField{Record: t.Name, Field: f.Name})
			}
			seen[f.Name] = true
			v.checkType(f.Type)
		}

	case ast.Variant:
		seenCases := make(map[ast.Name]bool)
		for _, c := range t.Cases {
			if seenCases[c.Name] {
				v.errs = append(v.errs, &DuplicateCaseName{Variant: t.Name, Case: c.Name})
			}
			seenCases[c.Name] = true

			seenFields := make(map[string]bool)
			for _, f := range c.Fields {
				if seenFields[f.Name] {
					v.errs = append(v.errs, &DuplicateCaseField{Variant: t.Name, Case: c.Name, Field: f.Name})
				}
				seenFields[f.Name] = true
				v.checkType(f.Type)
			}
		}

	case ast.Newtype:
		v.checkType(t.Underlying)
	case ast.Array:
		v.checkType(t.Element)
	case ast.Map:
		v.checkType(t.Value)
	case ast.Optional:
		v.checkType(t.Element)

	case ast.Reference:
		if !v.resolves(t.Name) {
			v.errs = append(v.errs, &UndefinedType{Name: t.Name})
		}
	}
}
