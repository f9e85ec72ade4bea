package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/wudi/formfill/datasource"
	"github.com/wudi/formfill/document"
	"github.com/wudi/formfill/fill"
	"github.com/wudi/formfill/form"
	"github.com/wudi/formfill/observability"
	"github.com/wudi/formfill/recovery"
)

type options struct {
	input  string
	output string
	data   string

	logLevel    string
	logJSON     bool
	strict      bool
	noLock      bool
	keepBorders bool
	noRefresh   bool
	list        bool
}

// errUsage reports that usage was printed and nothing else should happen.
var errUsage = errors.New("usage")

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "formfill: %v\n", err)
		os.Exit(2)
	}
	if err := run(context.Background(), opts, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "formfill: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("formfill", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: formfill [flags] <input.pdf> <output.pdf> <data.json|data.yaml>\n")
		fmt.Fprintf(fs.Output(), "       formfill -list <input.pdf>\n")
		fs.PrintDefaults()
	}
	fs.StringVar(&opts.logLevel, "log-level", "info", "Log level: debug, info, warn, error or off")
	fs.BoolVar(&opts.logJSON, "log-json", false, "Write log lines as JSON")
	fs.BoolVar(&opts.strict, "strict", false, "Abort on the first field that cannot be filled")
	fs.BoolVar(&opts.noLock, "no-lock", false, "Leave filled fields editable")
	fs.BoolVar(&opts.keepBorders, "keep-borders", false, "Keep widget border styles")
	fs.BoolVar(&opts.noRefresh, "no-refresh", false, "Set /NeedAppearances instead of regenerating appearances")
	fs.BoolVar(&opts.list, "list", false, "Print the form fields of the input and exit")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	if opts.list {
		if fs.NArg() != 1 {
			fs.Usage()
			return options{}, errUsage
		}
		opts.input = fs.Arg(0)
		return opts, nil
	}
	if fs.NArg() != 3 {
		fs.Usage()
		return options{}, errUsage
	}
	opts.input, opts.output, opts.data = fs.Arg(0), fs.Arg(1), fs.Arg(2)
	return opts, nil
}

func run(ctx context.Context, opts options, stdout, stderr io.Writer) error {
	log, err := observability.NewPtermLogger(stderr, opts.logLevel, opts.logJSON)
	if err != nil {
		return err
	}
	if opts.list {
		return listFields(opts.input, stdout)
	}

	log.Info("processing file", observability.String("path", opts.input))

	mapping, err := datasource.Load(opts.data)
	if err != nil {
		log.Error("cannot load data source", observability.Error("error", err))
		return err
	}
	log.Debug("data source loaded",
		observability.String("path", opts.data),
		observability.Int("keys", len(mapping)))

	doc, err := document.Open(opts.input)
	if err != nil {
		log.Error("cannot load document", observability.Error("error", err))
		return err
	}
	log.Debug("first page", observability.Int("rotation", doc.Rotation()))

	f, err := doc.Form()
	switch {
	case errors.Is(err, form.ErrNoForm):
		log.Warn("document has no form, writing it unchanged")
	case err != nil:
		log.Error("cannot read form", observability.Error("error", err))
		return err
	default:
		report, err := fill.NewSession(f, config(opts, log)).Run(ctx, mapping)
		if err != nil {
			log.Error("fill aborted", observability.Error("error", err))
			return err
		}
		log.Debug("fill report",
			observability.Int("filled", report.Filled),
			observability.Int("fallback", report.Fallback),
			observability.Int("failed", report.Failed),
			observability.Int("not_found", report.NotFound),
			observability.Int("skipped", report.Skipped),
			observability.Int("borders", report.Borders),
			observability.Int("refreshed", report.Refreshed))
	}

	if err := doc.Save(opts.output); err != nil {
		log.Error("cannot save document", observability.Error("error", err))
		return err
	}
	log.Info("complete", observability.String("output", opts.output))
	return nil
}

func config(opts options, log observability.Logger) fill.Config {
	cfg := fill.DefaultConfig()
	cfg.Logger = log
	cfg.LockFields = !opts.noLock
	cfg.StripBorders = !opts.keepBorders
	cfg.RefreshAppearances = !opts.noRefresh
	if opts.strict {
		cfg.Strategy = recovery.NewStrictStrategy()
	}
	return cfg
}

func listFields(path string, w io.Writer) error {
	doc, err := document.Open(path)
	if err != nil {
		return err
	}
	f, err := doc.Form()
	if errors.Is(err, form.ErrNoForm) {
		fmt.Fprintln(w, "no form fields")
		return nil
	}
	if err != nil {
		return err
	}
	for _, field := range f.Fields() {
		fmt.Fprintf(w, "|--%s, type=%s\n", field.Name(), field.Kind())
	}
	fmt.Fprintf(w, "%d fields\n", len(f.Fields()))
	return nil
}
