// Package repl SPDX-License-Identifier: Apache-2.0
package repl

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"indlang/internal/elaborate"
	"indlang/internal/module"
)

const PROMPT = "ind> "

// Session is an interactive read-elaborate-print loop: a single
// accumulating Module that each line's declarations and print
// directives are evaluated against through elaborate.EvalLine, one line
// at a time where the batch driver works one file at a time.
type Session struct {
	Mod *module.Module
	Out io.Writer
}

func NewSession(out io.Writer) *Session {
	return &Session{Mod: module.New(), Out: out}
}

// Eval elaborates one line's worth of top-level statements against the
// session's Module.
func (s *Session) Eval(line string) error {
	return elaborate.EvalLine(s.Mod, line, s.Out)
}

// Start runs the loop, reading from in and writing prompts/results to
// out, until in is exhausted. A bare "?" line prints the module listing
// from elaborate.HelpDump instead of an error.
func Start(in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)
	session := NewSession(out)

	for {
		fmt.Fprint(out, PROMPT)
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		if line == "" {
			continue
		}
		if err := session.Eval(line); err != nil {
			if errors.Is(err, elaborate.ErrQuery) {
				fmt.Fprint(out, elaborate.HelpDump(session.Mod))
				continue
			}
			fmt.Fprintln(out, "error:", err)
		}
	}
}
