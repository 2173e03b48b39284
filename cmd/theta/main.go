// Package main provides the theta CLI: parsing and validating Theta schema
// modules from the command line, with a watch mode for development.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/theta-lang/theta/internal/ast"
	"github.com/theta-lang/theta/internal/loader"
	"github.com/theta-lang/theta/internal/parser"
	"github.com/theta-lang/theta/internal/theta"
	"github.com/theta-lang/theta/internal/validator"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	sub := os.Args[1]
	args := os.Args[2:]

	switch sub {
	case "help", "-h", "--help":
		usage()
	case "version", "-v", "--version":
		fmt.Printf("theta %s\n", version)
	case "check":
		must(runCheck(args))
	case "parse":
		must(runParse(args))
	case "watch":
		must(runWatch(args))
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", sub)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println(`theta - Theta schema language tool

Usage:
  theta check [-path dirs] [-config file] <module>...   parse and validate modules
  theta parse <file>                                    parse one file and list definitions
  theta watch [-path dirs] [-config file] <module>...   revalidate on changes
  theta version                                         print version`)
}

func must(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, theta.Render(err))
		os.Exit(1)
	}
}

// resolveInputs combines -path/-config flags and positional module names
// into a loader and the root modules to operate on.
func resolveInputs(path, config string, args []string) (*loader.Loader, []ast.ModuleName, error) {
	roots := strings.Split(path, ",")
	modules := args

	if config != "" {
		cfg, err := loader.LoadConfig(config)
		if err != nil {
			return nil, nil, err
		}
		if len(cfg.Path) > 0 {
			roots = cfg.Path
		}
		if len(modules) == 0 {
			modules = cfg.Modules
		}
	}

	names := make([]ast.ModuleName, 0, len(modules))
	for _, m := range modules {
		name, err := theta.ParseModuleName(m)
		if err != nil {
			return nil, nil, err
		}
		names = append(names, name)
	}

	return loader.New(roots...), names, nil
}

func runCheck(args []string) error {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	path := fs.String("path", ".", "comma-separated module search path")
	config := fs.String("config", "", "optional theta.yaml project file")
	_ = fs.Parse(args)

	l, names, err := resolveInputs(*path, *config, fs.Args())
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return fmt.Errorf("no modules given: pass module names or a -config file")
	}

	graph, err := l.LoadAndValidate(names...)
	if err != nil {
		return err
	}

	defs := 0
	for _, m := range graph {
		defs += len(m.Definitions)
	}
	fmt.Printf("ok: %d module(s), %d definition(s)\n", len(graph), defs)
	return nil
}

func runParse(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("parse takes exactly one file")
	}
	file := args[0]

	source, err := os.ReadFile(file)
	if err != nil {
		return &theta.IOError{Err: err}
	}
	name, err := theta.ParseModuleName(strings.TrimSuffix(filepath.Base(file), loader.Extension))
	if err != nil {
		return err
	}

	module, err := parser.ParseModule(name, string(source), file)
	if err != nil {
		return err
	}

	fmt.Printf("module %s (language-version %s, encoding-version %s)\n",
		module.Name, module.Metadata.LanguageVersion, module.Metadata.EncodingVersion)
	for _, imp := range module.Imports {
		fmt.Printf("  import %s\n", imp)
	}
	for _, def := range module.Definitions {
		fmt.Printf("  %s\n", describeDefinition(def))
	}
	return nil
}

func describeDefinition(def ast.Definition) string {
	switch t := def.Type.(type) {
	case ast.Record:
		return fmt.Sprintf("record %s (%d fields)", def.Name, len(t.Fields))
	case ast.Variant:
		return fmt.Sprintf("variant %s (%d cases)", def.Name, len(t.Cases))
	case ast.Enum:
		return fmt.Sprintf("enum %s (%d symbols)", def.Name, len(t.Symbols))
	case ast.Newtype:
		return fmt.Sprintf("newtype %s = %s", def.Name, t.Underlying)
	default:
		return fmt.Sprintf("alias %s = %s", def.Name, def.Type)
	}
}

func runWatch(args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	path := fs.String("path", ".", "comma-separated module search path")
	config := fs.String("config", "", "optional theta.yaml project file")
	_ = fs.Parse(args)

	l, names, err := resolveInputs(*path, *config, fs.Args())
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return fmt.Errorf("no modules given: pass module names or a -config file")
	}

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	l.SetLogger(log)

	w, err := loader.NewWatcher(l, names, log)
	if err != nil {
		return err
	}
	defer w.Close()

	log.Info().Strs("path", l.Path()).Msg("watching for changes")
	w.Run(func(graph validator.Graph, err error) {
		if err != nil {
			fmt.Fprintln(os.Stderr, theta.Render(err))
			return
		}
		log.Info().Int("modules", len(graph)).Msg("all modules valid")
	})
	return nil
}
