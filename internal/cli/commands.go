package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/muesli/termenv"

	"github.com/aretw0/arbor/internal/adapters/file"
	"github.com/aretw0/arbor/internal/presentation/graph"
	"github.com/aretw0/arbor/internal/presentation/tui"
	"github.com/aretw0/arbor/internal/validator"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/intents"
)

// ErrNoDialog is returned when neither a flag nor the configuration names
// the dialog to compile.
var ErrNoDialog = errors.New("no dialog given (use --dialog or common_dialog_main)")

func (e *Environment) compile(ctx context.Context) (*domain.Result, error) {
	if e.Settings.DialogMain == "" {
		return nil, ErrNoDialog
	}
	res, err := e.Compiler.CompileFile(ctx, e.Settings.DialogMain)
	if err != nil {
		return nil, fmt.Errorf("compilation of %s failed: %w", e.Settings.DialogMain, err)
	}
	return res, nil
}

// RunCompile compiles the dialog, publishes it and optionally saves the
// merged configuration and prints a report.
func RunCompile(ctx context.Context, opts Options, stdout, stderr io.Writer) error {
	env, err := Setup(opts, stdout)
	if err != nil {
		return err
	}
	defer env.Close()

	res, err := env.compile(ctx)
	if err != nil {
		return err
	}
	printDiagnostics(stderr, res.Diagnostics)

	name := OutputsName(env.Settings)
	if err := env.Compiler.Publish(ctx, name, res); err != nil {
		return err
	}
	if store, ok := env.sink.(*file.Store); ok {
		fmt.Fprintf(stderr, "File %s created\n", filepath.Join(store.BasePath, name))
	}

	if env.Settings.OutputConfig != "" {
		if err := env.Config.Save(env.Settings.OutputConfig); err != nil {
			return err
		}
	}

	if opts.Report {
		return printReport(stderr, env.Settings.DialogMain, res)
	}
	return nil
}

// RunValidate compiles without publishing and prints the diagnostics.
func RunValidate(ctx context.Context, opts Options, w io.Writer) (*domain.Result, error) {
	opts.NoSink = true
	env, err := Setup(opts, w)
	if err != nil {
		return nil, err
	}

	res, err := env.compile(ctx)
	if err != nil {
		return nil, err
	}
	printDiagnostics(w, res.Diagnostics)
	if opts.Report {
		if err := printReport(w, env.Settings.DialogMain, res); err != nil {
			return nil, err
		}
	}
	if err := validator.ValidateRecords(res.Records); err != nil {
		return res, fmt.Errorf("dialog %s has broken links: %w", env.Settings.DialogMain, err)
	}
	return res, nil
}

// RunGraph compiles the dialog and writes its Mermaid flowchart.
func RunGraph(ctx context.Context, opts Options, w io.Writer) error {
	opts.NoSink = true
	env, err := Setup(opts, w)
	if err != nil {
		return err
	}

	res, err := env.compile(ctx)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, graph.GenerateMermaid(res.Records, graph.OverlayFromDiagnostics(res.Diagnostics)))
	return err
}

// IntentsOptions configures the spreadsheet converter.
type IntentsOptions struct {
	Input string
	// Output is the XML file; empty means stdout.
	Output string
	// Examples optionally receives the intent examples as CSV.
	Examples string
}

// RunIntents converts an intent spreadsheet into an XML dialog fragment.
func RunIntents(opts IntentsOptions, stdout, stderr io.Writer) error {
	in, err := os.Open(opts.Input)
	if err != nil {
		return fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer in.Close()

	dialog, diags, err := intents.ReadCSV(in)
	if err != nil {
		return err
	}

	out := stdout
	if opts.Output != "" {
		f, err := os.Create(opts.Output)
		if err != nil {
			return fmt.Errorf("failed to create output: %w", err)
		}
		defer f.Close()
		out = f
	}
	xmlDiags, err := intents.WriteXML(out, dialog)
	if err != nil {
		return fmt.Errorf("failed to write xml: %w", err)
	}
	printDiagnostics(stderr, append(diags, xmlDiags...))

	if opts.Examples != "" {
		f, err := os.Create(opts.Examples)
		if err != nil {
			return fmt.Errorf("failed to create examples file: %w", err)
		}
		defer f.Close()
		if err := intents.WriteExamples(f, dialog); err != nil {
			return fmt.Errorf("failed to write examples: %w", err)
		}
	}
	return nil
}

func colorProfile(w io.Writer) termenv.Profile {
	if f, ok := w.(*os.File); ok && tui.IsTerminal(f) {
		return termenv.EnvColorProfile()
	}
	return termenv.Ascii
}

func printDiagnostics(w io.Writer, diags []domain.Diagnostic) {
	p := colorProfile(w)
	for _, d := range diags {
		fmt.Fprintln(w, tui.FormatDiagnostic(p, d))
	}
}

func printReport(w io.Writer, source string, res *domain.Result) error {
	width, styled := tui.DefaultWidth, false
	if f, ok := w.(*os.File); ok && tui.IsTerminal(f) {
		width, styled = tui.Width(f), true
	}
	out, err := tui.NewRenderer(width, styled)(tui.Report(source, res))
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}
