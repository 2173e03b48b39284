package theta

import (
	"strings"
	"testing"

	semver "github.com/Masterminds/semver/v3"

	"github.com/theta-lang/theta/internal/ast"
	"github.com/theta-lang/theta/internal/lexer"
)

func TestParseErrorRender(t *testing.T) {
	err := &ParseError{
		Pos:     lexer.Position{File: "user.theta", Line: 7, Column: 3},
		Message: "expected ASSIGN in type definition, found \"Int\"",
	}

	rendered := err.Render()
	for _, want := range []string{"user.theta:7:3", "expected ASSIGN"} {
		if !strings.Contains(rendered, want) {
			t.Errorf("expected %q in:\n%s", want, rendered)
		}
	}
}

func TestUnsupportedVersionRender(t *testing.T) {
	err := &UnsupportedVersion{
		Metadata: ast.Metadata{
			LanguageVersion: semver.MustParse("1.0.0"),
			EncodingVersion: semver.MustParse("1.0.0"),
			ModuleName:      "test",
		},
		Feature:  "enum",
		Required: semver.MustParse("1.1.0"),
		Actual:   semver.MustParse("1.0.0"),
	}

	rendered := err.Render()
	// the message is fully specified: feature, required and actual versions
	for _, want := range []string{`"enum"`, "1.1.0", "1.0.0", "test"} {
		if !strings.Contains(rendered, want) {
			t.Errorf("expected %q in:\n%s", want, rendered)
		}
	}
}

func TestInvalidModuleRendersEveryViolation(t *testing.T) {
	err := &InvalidModule{Modules: []ModuleErrors{
		{Module: "a", Errors: []ModuleError{
			&InvalidName{Text: "first"},
			&InvalidName{Text: "second"},
		}},
		{Module: "b", Errors: []ModuleError{
			&InvalidName{Text: "third"},
		}},
	}}

	rendered := err.Render()
	for _, want := range []string{"module a", "module b", `"first"`, `"second"`, `"third"`} {
		if !strings.Contains(rendered, want) {
			t.Errorf("expected %q in:\n%s", want, rendered)
		}
	}
}

func TestMissingModuleRendersSearchPath(t *testing.T) {
	err := &MissingModule{Path: []string{"schemas", "vendor/schemas"}, Name: "com.example.user"}
	rendered := err.Render()
	for _, want := range []string{"com.example.user", "schemas", "vendor/schemas"} {
		if !strings.Contains(rendered, want) {
			t.Errorf("expected %q in:\n%s", want, rendered)
		}
	}
}

// demoError exercises the open extension point: any Renderable payload can
// cross the Target variant.
type demoError struct{ code int }

func (e *demoError) Error() string  { return "demo failure" }
func (e *demoError) Render() string { return "error: demo failure\n  code 42" }

func TestTargetErrorExtensionPoint(t *testing.T) {
	var err Error = &TargetError{Target: "avro", Err: &demoError{code: 42}}

	if !strings.Contains(err.Error(), "avro") {
		t.Errorf("short form must name the target: %q", err.Error())
	}
	rendered := err.Render()
	for _, want := range []string{"avro", "code 42"} {
		if !strings.Contains(rendered, want) {
			t.Errorf("expected %q in:\n%s", want, rendered)
		}
	}
}

func TestRenderFallsBackForForeignErrors(t *testing.T) {
	rendered := Render(&InvalidName{Text: "x y"})
	if !strings.Contains(rendered, "x y") {
		t.Errorf("unexpected render: %q", rendered)
	}

	plain := Render(errPlain{})
	if !strings.Contains(plain, "plain failure") {
		t.Errorf("unexpected fallback render: %q", plain)
	}
}

type errPlain struct{}

func (errPlain) Error() string { return "plain failure" }

func TestParseModuleName(t *testing.T) {
	tests := []struct {
		text string
		ok   bool
	}{
		{"test", true},
		{"com.example.foo", true},
		{"_private.mod1", true},
		{"", false},
		{"com..foo", false},
		{"1com.foo", false},
		{"com.exa mple", false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			name, err := ParseModuleName(tt.text)
			if tt.ok && err != nil {
				t.Errorf("expected %q to parse, got %v", tt.text, err)
			}
			if tt.ok && string(name) != tt.text {
				t.Errorf("expected %q, got %q", tt.text, name)
			}
			if !tt.ok && err == nil {
				t.Errorf("expected %q to fail", tt.text)
			}
		})
	}
}

func TestParseName(t *testing.T) {
	name, err := ParseName("com.example.foo.Bar")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := ast.Name{Module: "com.example.foo", Name: "Bar"}
	if name != expected {
		t.Errorf("expected %v, got %v", expected, name)
	}

	if _, err := ParseName("Bar"); err == nil {
		t.Error("expected an UnqualifiedName error")
	} else if _, ok := err.(*UnqualifiedName); !ok {
		t.Errorf("expected UnqualifiedName, got %T", err)
	}

	if _, err := ParseName("com.example..Bar"); err == nil {
		t.Error("expected an InvalidName error")
	} else if _, ok := err.(*InvalidName); !ok {
		t.Errorf("expected InvalidName, got %T", err)
	}
}
