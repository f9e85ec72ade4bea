package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wudi/formfill/document"
	"github.com/wudi/formfill/internal/pdftest"
)

func writeInput(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "form.pdf")
	doc := pdftest.Doc{
		DA: "/Helv 0 Tf 0 g",
		Fields: []pdftest.Field{
			{Name: "name", Type: "Tx", DA: "/Helv 12 Tf 0 g", Border: true},
			{Name: "signature", Type: "Sig"},
		},
	}
	if err := os.WriteFile(path, pdftest.PDF(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseFlags(t *testing.T) {
	var stderr bytes.Buffer
	opts, err := parseFlags([]string{"-strict", "-log-level", "debug", "in.pdf", "out.pdf", "data.json"}, &stderr)
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if opts.input != "in.pdf" || opts.output != "out.pdf" || opts.data != "data.json" {
		t.Fatalf("positional arguments %+v", opts)
	}
	if !opts.strict || opts.logLevel != "debug" {
		t.Fatalf("flags %+v", opts)
	}
}

func TestParseFlagsNoFontPaths(t *testing.T) {
	var stderr bytes.Buffer
	_, err := parseFlags([]string{"-font-broad", "/tmp/font.ttf", "in.pdf", "out.pdf", "data.json"}, &stderr)
	if err == nil || errors.Is(err, errUsage) {
		t.Fatalf("font path flag should be rejected, got %v", err)
	}
}

func TestParseFlagsUsage(t *testing.T) {
	for _, args := range [][]string{
		{},
		{"in.pdf", "out.pdf"},
		{"in.pdf", "out.pdf", "data.json", "extra"},
		{"-list"},
	} {
		var stderr bytes.Buffer
		_, err := parseFlags(args, &stderr)
		if !errors.Is(err, errUsage) {
			t.Fatalf("%v: expected usage, got %v", args, err)
		}
		if !strings.Contains(stderr.String(), "Usage: formfill") {
			t.Fatalf("%v: usage not printed: %q", args, stderr.String())
		}
	}
}

func TestRunFills(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir)
	data := filepath.Join(dir, "data.json")
	if err := os.WriteFile(data, []byte(`{"name": "Alice", "nickname": "Al"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	output := filepath.Join(dir, "out.pdf")

	var stdout, stderr bytes.Buffer
	opts := options{input: input, output: output, data: data, logLevel: "info", logJSON: true}
	if err := run(context.Background(), opts, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	logs := stderr.String()
	for _, want := range []string{"processing file", input, "field not found", "complete"} {
		if !strings.Contains(logs, want) {
			t.Errorf("log missing %q:\n%s", want, logs)
		}
	}

	doc, err := document.Open(output)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	f, err := doc.Form()
	if err != nil {
		t.Fatal(err)
	}
	name, err := f.Field("name")
	if err != nil {
		t.Fatal(err)
	}
	if name.Value() != "Alice" || !name.ReadOnly() {
		t.Fatalf("name: value %q read-only %v", name.Value(), name.ReadOnly())
	}
	if _, ok := name.Widgets()[0]["BS"]; ok {
		t.Fatalf("border style kept")
	}
	if _, ok := name.Widgets()[0]["AP"]; !ok {
		t.Fatalf("no appearance generated")
	}
	sig, err := f.Field("signature")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := sig.Widgets()[0]["AP"]; ok {
		t.Fatalf("signature got an appearance")
	}
}

func TestRunMissingDataSource(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir)
	output := filepath.Join(dir, "out.pdf")

	var stdout, stderr bytes.Buffer
	opts := options{input: input, output: output, data: filepath.Join(dir, "absent.json"), logLevel: "info"}
	if err := run(context.Background(), opts, &stdout, &stderr); err == nil {
		t.Fatalf("expected an error for a missing data source")
	}
	if _, err := os.Stat(output); !os.IsNotExist(err) {
		t.Fatalf("output written despite missing data source: %v", err)
	}
}

func TestListFields(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir)

	var stdout bytes.Buffer
	if err := listFields(input, &stdout); err != nil {
		t.Fatal(err)
	}
	want := "|--name, type=text\n|--signature, type=signature\n2 fields\n"
	if diff := cmp.Diff(want, stdout.String()); diff != "" {
		t.Fatalf("listing (-want +got):\n%s", diff)
	}
}
