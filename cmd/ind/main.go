// SPDX-License-Identifier: Apache-2.0
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"

	"indlang/internal/diag"
	"indlang/internal/elaborate"
	"indlang/internal/module"
	"indlang/repl"
)

func main() {
	replMode := flag.Bool("repl", false, "start an interactive read-elaborate-print loop instead of running main.ind")
	trace := flag.Bool("trace", false, "print each print directive's source position as it runs")
	colorMode := flag.String("color", "auto", "one of: auto, always, never")
	flag.Parse()

	switch *colorMode {
	case "always":
		color.NoColor = false
	case "never":
		color.NoColor = true
	case "auto":
	default:
		fmt.Fprintf(os.Stderr, "ind: invalid -color value %q (want auto, always, or never)\n", *colorMode)
		os.Exit(2)
	}

	if *replMode {
		repl.Start(os.Stdin, os.Stdout)
		return
	}

	dir, err := os.Getwd()
	if err != nil {
		fmt.Fprintln(os.Stderr, "ind:", err)
		os.Exit(1)
	}

	var mod *module.Module
	if *trace {
		mod, err = elaborate.RunTraced(dir, os.Stdout, os.Stderr)
	} else {
		mod, err = elaborate.Run(dir, os.Stdout)
	}
	if err != nil {
		reportFailure(mod, dir, err)
		os.Exit(1)
	}
	color.Green("ok")
}

// reportFailure renders err Rust-compiler-style via diag.Reporter, using
// the source file named in its position so the report can show the
// offending line (an include pulls in a second file, so this is not
// always main.ind). A "?" query form is not a malformed-program error:
// it dumps the module's declared families instead of a diagnostic, but
// still exits non-zero per the batch CLI's one-shot semantics.
func reportFailure(mod *module.Module, dir string, err error) {
	if errors.Is(err, elaborate.ErrQuery) {
		color.Cyan("%s", elaborate.HelpDump(mod))
		return
	}
	d := diag.FromError(err)
	path := d.Position.Filename
	if path == "" {
		path = filepath.Join(dir, "main.ind")
	}
	source := ""
	if src, readErr := os.ReadFile(path); readErr == nil {
		source = string(src)
	}
	fmt.Fprint(os.Stderr, diag.NewReporter(source).Format(d))
}
