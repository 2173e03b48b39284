// Package theta provides the shared error model for the Theta frontend:
// a closed tagged union covering parsing, version, validation and resolution
// failures, one open extension point for target-specific errors, and a
// human-readable renderer for every variant.
package theta

import (
	"fmt"
	"strings"

	semver "github.com/Masterminds/semver/v3"

	"github.com/theta-lang/theta/internal/ast"
	"github.com/theta-lang/theta/internal/lexer"
)

// Renderable is the capability required of error payloads that cross the
// Target extension point: a short description via error and a multi-line
// pretty-printed form via Render.
type Renderable interface {
	error
	Render() string
}

// Error is the closed union of Theta failure kinds. Every variant is
// Renderable; the concrete types below enumerate the taxonomy.
type Error interface {
	Renderable
	thetaError()
}

// ModuleError is one semantic violation found by the validator inside a
// single module. Concrete types live in the validator package.
type ModuleError = Renderable

// ParseError wraps a grammar diagnostic with its source position.
type ParseError struct {
	Pos     lexer.Position
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %s: %s", e.Pos.String(), e.Message)
}

func (e *ParseError) Render() string {
	return fmt.Sprintf("error: parse error at %s:\n  %s", e.Pos.String(), e.Message)
}

func (e *ParseError) thetaError() {}

// IOError wraps a failure reading module source.
type IOError struct {
	Err error
}

func (e *IOError) Error() string  { return fmt.Sprintf("i/o error: %v", e.Err) }
func (e *IOError) Unwrap() error  { return e.Err }
func (e *IOError) Render() string { return fmt.Sprintf("error: i/o error:\n  %v", e.Err) }
func (e *IOError) thetaError()    {}

// UnsupportedVersion reports a versioned grammar feature used by a module
// whose declared language version is below the feature's minimum. The
// message is deterministic and fully specified, distinguishable from a
// plain syntax error.
type UnsupportedVersion struct {
	Metadata ast.Metadata
	Feature  string
	Required *semver.Version
	Actual   *semver.Version
}

func (e *UnsupportedVersion) Error() string {
	return fmt.Sprintf("feature %q requires language version %s, but module %s declares %s",
		e.Feature, e.Required, e.Metadata.ModuleName, e.Actual)
}

func (e *UnsupportedVersion) Render() string {
	return fmt.Sprintf("error: unsupported language version %s:\n"+
		"  feature %q requires language version %s or newer,\n"+
		"  but module %s declares language version %s",
		e.Actual, e.Feature, e.Required, e.Metadata.ModuleName, e.Actual)
}

func (e *UnsupportedVersion) thetaError() {}

// ModuleErrors pairs one module with every violation found in it.
type ModuleErrors struct {
	Module ast.ModuleName
	Errors []ModuleError
}

// InvalidModule aggregates validator violations across a module graph. It
// always carries the full list per module, never just the first violation.
type InvalidModule struct {
	Modules []ModuleErrors
}

func (e *InvalidModule) Error() string {
	total := 0
	for _, m := range e.Modules {
		total += len(m.Errors)
	}
	return fmt.Sprintf("invalid modules: %d violation(s) in %d module(s)", total, len(e.Modules))
}

func (e *InvalidModule) Render() string {
	var b strings.Builder
	for i, m := range e.Modules {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "error: module %s is invalid:", m.Module)
		for _, err := range m.Errors {
			fmt.Fprintf(&b, "\n  - %s", err.Error())
		}
	}
	return b.String()
}

func (e *InvalidModule) thetaError() {}

// InvalidName reports text that is not a legal Theta name.
type InvalidName struct {
	Text string
}

func (e *InvalidName) Error() string { return fmt.Sprintf("invalid name %q", e.Text) }

func (e *InvalidName) Render() string {
	return fmt.Sprintf("error: invalid name:\n  %q is not a valid Theta name", e.Text)
}

func (e *InvalidName) thetaError() {}

// UnqualifiedName reports a bare name where a fully-qualified one is
// required.
type UnqualifiedName struct {
	Text string
}

func (e *UnqualifiedName) Error() string { return fmt.Sprintf("unqualified name %q", e.Text) }

func (e *UnqualifiedName) Render() string {
	return fmt.Sprintf("error: unqualified name:\n  %q needs a module qualifier (module.Name)", e.Text)
}

func (e *UnqualifiedName) thetaError() {}

// MissingModule reports a module that could not be found on the loader's
// search path.
type MissingModule struct {
	Path []string
	Name ast.ModuleName
}

func (e *MissingModule) Error() string { return fmt.Sprintf("missing module %s", e.Name) }

func (e *MissingModule) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "error: could not find module %s\nsearched:", e.Name)
	if len(e.Path) == 0 {
		b.WriteString("\n  (empty search path)")
	}
	for _, p := range e.Path {
		fmt.Fprintf(&b, "\n  %s", p)
	}
	return b.String()
}

func (e *MissingModule) thetaError() {}

// MissingName reports a fully-qualified name that is not defined.
type MissingName struct {
	Name ast.Name
}

func (e *MissingName) Error() string { return fmt.Sprintf("missing name %s", e.Name) }

func (e *MissingName) Render() string {
	return fmt.Sprintf("error: the name %s is not defined in module %s", e.Name, e.Name.Module)
}

func (e *MissingName) thetaError() {}

// TargetError injects an independently-defined error from a target-specific
// subsystem (an encoder, a code generator) into the shared channel. The
// payload only needs to be Renderable; the core taxonomy does not enumerate
// targets.
type TargetError struct {
	Target string
	Err    Renderable
}

func (e *TargetError) Error() string {
	return fmt.Sprintf("target %s: %s", e.Target, e.Err.Error())
}

func (e *TargetError) Unwrap() error { return e.Err }

func (e *TargetError) Render() string {
	return fmt.Sprintf("error in target %s:\n%s", e.Target, e.Err.Render())
}

func (e *TargetError) thetaError() {}

// Render pretty-prints any error. Theta errors render through their own
// Render method; foreign errors fall back to their plain message.
func Render(err error) string {
	if r, ok := err.(Renderable); ok {
		return r.Render()
	}
	return "error: " + err.Error()
}
