// Command applyform-cli renders, validates and fills application forms from
// definition files.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-applyform/internal/logger"
	"github.com/goliatone/go-applyform/pkg/applications"
	"github.com/goliatone/go-applyform/pkg/formdata"
	"github.com/goliatone/go-applyform/pkg/jsonschema"
	"github.com/goliatone/go-applyform/pkg/orchestrator"
	"github.com/goliatone/go-applyform/pkg/render"
	"github.com/goliatone/go-applyform/pkg/renderers/tui"
	"github.com/goliatone/go-applyform/pkg/renderers/vanilla"
	"github.com/goliatone/go-applyform/pkg/validation"
)

const usage = `Usage: %s <command> [flags]

Commands:
  render    render a form definition to HTML
  validate  validate a response against a form definition
  shape     turn posted form values into a response document
  fill      answer a form in the terminal
  lint      check form definitions for problems that break rendering
`

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), usage, filepath.Base(os.Args[0]))
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	args := flag.Args()[1:]
	var err error
	switch flag.Arg(0) {
	case "render":
		err = runRender(ctx, args, os.Stdout)
	case "validate":
		err = runValidate(args, os.Stdout)
	case "shape":
		err = runShape(ctx, args, os.Stdin, os.Stdout)
	case "fill":
		err = runFill(ctx, args, os.Stdout)
	case "lint":
		err = runLint(ctx, args, os.Stderr)
	default:
		flag.Usage()
		os.Exit(2)
	}

	var exit exitError
	switch {
	case err == nil:
	case errors.As(err, &exit):
		os.Exit(int(exit))
	default:
		fmt.Fprintf(os.Stderr, "%s: %v\n", flag.Arg(0), err)
		os.Exit(1)
	}
}

// exitError ends the process with a status code and no message; the command
// already reported what went wrong.
type exitError int

func (e exitError) Error() string {
	return fmt.Sprintf("exit status %d", int(e))
}

// loadForm reads a definition file the way mock mode serves fixtures.
func loadForm(ctx context.Context, path string) (applications.Form, error) {
	if strings.TrimSpace(path) == "" {
		return applications.Form{}, errors.New("-form is required")
	}
	dir, file := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	id := strings.TrimSuffix(file, filepath.Ext(file))
	return applications.NewFixtureFetcher(os.DirFS(dir)).Form(ctx, id)
}

func loadData(path string) (map[string]any, error) {
	if path == "" {
		return map[string]any{}, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return data, nil
}

func writeOutput(out io.Writer, path string, payload []byte) error {
	if path == "" {
		_, err := out.Write(payload)
		return err
	}
	return os.WriteFile(path, payload, 0o644)
}

func runRender(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	formPath := fs.String("form", "", "form definition file (.json, .yaml)")
	dataPath := fs.String("data", "", "saved response JSON to prefill")
	printView := fs.Bool("print", false, "render the read-only print view")
	themeName := fs.String("theme", "", "theme name")
	variant := fs.String("variant", "", "theme variant")
	themesDir := fs.String("themes", "", "directory of extra theme manifests")
	output := fs.String("output", "", "output file (stdout if empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	definition, err := loadForm(ctx, *formPath)
	if err != nil {
		return err
	}
	data, err := loadData(*dataPath)
	if err != nil {
		return err
	}
	selector, err := themeSelector(*themesDir)
	if err != nil {
		return err
	}

	orch := orchestrator.New(orchestrator.WithThemeSelector(selector))
	html, err := orch.Generate(ctx, orchestrator.Request{
		FormID:       definition.FormID,
		Form:         &definition,
		FormData:     data,
		Print:        *printView,
		ThemeName:    *themeName,
		ThemeVariant: *variant,
	})
	if err != nil {
		return err
	}
	return writeOutput(out, *output, html)
}

func themeSelector(dir string) (*orchestrator.ManifestSelector, error) {
	manifests := []*theme.Manifest{orchestrator.DefaultManifest()}
	if dir != "" {
		extra, err := orchestrator.LoadManifests(os.DirFS(dir))
		if err != nil {
			return nil, err
		}
		manifests = append(manifests, extra...)
	}
	return orchestrator.NewManifestSelector("", "", manifests...)
}

func runValidate(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	formPath := fs.String("form", "", "form definition file")
	dataPath := fs.String("data", "", "response JSON to validate")
	strict := fs.Bool("strict", false, "exit with status 1 when warnings are found")
	if err := fs.Parse(args); err != nil {
		return err
	}

	definition, err := loadForm(context.Background(), *formPath)
	if err != nil {
		return err
	}
	data, err := loadData(*dataPath)
	if err != nil {
		return err
	}
	found, err := validation.Validate(definition.JSONSchema, data)
	if err != nil {
		return err
	}

	status := applications.StatusComplete
	if len(found) > 0 {
		status = applications.StatusInProgress
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(applications.SaveResult{ApplicationFormStatus: status, Warnings: found}); err != nil {
		return err
	}
	if *strict && len(found) > 0 {
		return exitError(1)
	}
	return nil
}

func runShape(ctx context.Context, args []string, in io.Reader, out io.Writer) error {
	fs := flag.NewFlagSet("shape", flag.ContinueOnError)
	formPath := fs.String("form", "", "form definition file; its schema drives type coercion")
	inputPath := fs.String("input", "", "urlencoded form body (stdin if empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var schema map[string]any
	if *formPath != "" {
		definition, err := loadForm(ctx, *formPath)
		if err != nil {
			return err
		}
		processed, err := jsonschema.Process(ctx, definition.JSONSchema)
		if err != nil {
			return err
		}
		schema = processed.FormSchema
	}

	if *inputPath != "" {
		file, err := os.Open(*inputPath)
		if err != nil {
			return err
		}
		defer file.Close()
		in = file
	}
	raw, err := io.ReadAll(in)
	if err != nil {
		return err
	}
	values, err := url.ParseQuery(strings.TrimSpace(string(raw)))
	if err != nil {
		return fmt.Errorf("parse form body: %w", err)
	}
	shaped, err := formdata.Shape(values, formdata.WithSchema(schema))
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(shaped)
}

func runFill(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("fill", flag.ContinueOnError)
	formPath := fs.String("form", "", "form definition file")
	dataPath := fs.String("data", "", "saved response JSON to start from")
	format := fs.String("format", string(tui.OutputFormatJSON), "output format: json, form or pretty")
	output := fs.String("output", "", "output file (stdout if empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	definition, err := loadForm(ctx, *formPath)
	if err != nil {
		return err
	}
	data, err := loadData(*dataPath)
	if err != nil {
		return err
	}
	processed, err := jsonschema.Process(ctx, definition.JSONSchema)
	if err != nil {
		return err
	}

	html, err := vanilla.New()
	if err != nil {
		return err
	}
	registry := render.NewRegistry()
	registry.MustRegister(html)
	registry.MustRegister(tui.New(
		tui.WithOutputFormat(tui.OutputFormat(*format)),
		tui.WithFormSchema(processed.FormSchema),
		tui.WithTheme(tui.Theme{SectionPrefix: "== ", ErrorPrefix: "! "}),
	))

	orch := orchestrator.New(
		orchestrator.WithRegistry(registry),
		orchestrator.WithLogger(logger.NewNoOpLogger()),
	)
	answers, err := orch.Generate(ctx, orchestrator.Request{
		FormID:   definition.FormID,
		Form:     &definition,
		FormData: data,
		Renderer: tui.Name,
	})
	if err != nil {
		return err
	}
	return writeOutput(out, *output, append(answers, '\n'))
}

type lintFinding struct {
	file    string
	message string
}

// runLint checks that each definition's schema compiles, its conditionals
// are well formed and its UI schema builds into a widget tree.
func runLint(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("lint", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	paths := fs.Args()
	if len(paths) == 0 {
		return errors.New("at least one form definition is required")
	}

	orch := orchestrator.New()
	var findings []lintFinding
	for _, path := range paths {
		definition, err := loadForm(ctx, path)
		if err != nil {
			findings = append(findings, lintFinding{file: path, message: err.Error()})
			continue
		}
		if result := validation.CheckSchema(definition.JSONSchema); !result.Valid {
			for _, issue := range result.Issues {
				findings = append(findings, lintFinding{file: path, message: issue.Message})
			}
		}
		prepared, err := orch.Prepare(ctx, orchestrator.Request{FormID: definition.FormID, Form: &definition})
		if err != nil {
			findings = append(findings, lintFinding{file: path, message: err.Error()})
			continue
		}
		for _, issue := range prepared.Processed.Issues {
			findings = append(findings, lintFinding{file: path, message: issue.String()})
		}
		if prepared.StructureError != nil {
			findings = append(findings, lintFinding{file: path, message: prepared.StructureError.Error()})
		}
	}

	if len(findings) == 0 {
		return nil
	}
	sort.SliceStable(findings, func(i, j int) bool { return findings[i].file < findings[j].file })
	for _, f := range findings {
		fmt.Fprintf(out, "%s: %s\n", f.file, f.message)
	}
	return exitError(1)
}
