// Package diag formats interpreter diagnostics: one error code per
// error kind, rendered Rust-compiler-style with github.com/fatih/color.
package diag

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"indlang/token"
)

// Code is the error-kind tag.
type Code string

const (
	CodeIO         Code = "EIO"
	CodeLexical    Code = "ELEX"
	CodeResolution Code = "ERES"
	CodeType       Code = "ETYPE"
	CodeReduction  Code = "EREDUCE"
	CodeValidation Code = "EVALID"
	CodeQuery      Code = "EQUERY" // the "?" help form's non-error exit intent
)

// Diagnostic is one reported problem: a code, message, and the source
// position it occurred at.
type Diagnostic struct {
	Code     Code
	Message  string
	Position token.Position
	Notes    []string
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s: %s", d.Position, d.Code, d.Message)
}

// FromError recovers a Diagnostic from one of the elaborate/reduce/module
// packages' wrapped errors, which mostly carry a "file:line:col: message"
// prefix via token.Position's String method (the only structured part of
// an otherwise plain error chain); some, such as the unimplemented-rules
// report, carry none. Position defaults to the zero value
// when the prefix can't be parsed, and Code is classified from the
// message text against the known error kinds.
func FromError(err error) Diagnostic {
	msg := err.Error()
	pos, rest := splitPosition(msg)
	return Diagnostic{Code: classify(rest), Message: rest, Position: pos}
}

func splitPosition(msg string) (token.Position, string) {
	parts := strings.SplitN(msg, ": ", 2)
	if len(parts) != 2 {
		return token.Position{}, msg
	}
	locParts := strings.Split(parts[0], ":")
	if len(locParts) < 3 {
		return token.Position{}, msg
	}
	line, errL := strconv.Atoi(locParts[len(locParts)-2])
	col, errC := strconv.Atoi(locParts[len(locParts)-1])
	if errL != nil || errC != nil {
		return token.Position{}, msg
	}
	filename := strings.Join(locParts[:len(locParts)-2], ":")
	return token.Position{Filename: filename, Line: line, Column: col}, parts[1]
}

func classify(message string) Code {
	switch {
	case strings.Contains(message, "query form"):
		return CodeQuery
	case strings.Contains(message, "unimplemented rules"):
		return CodeValidation
	case strings.Contains(message, "lexer:"):
		return CodeLexical
	case strings.Contains(message, "reading ") || strings.Contains(message, "include "):
		return CodeIO
	case strings.Contains(message, "rule is unspecified"):
		return CodeReduction
	case strings.Contains(message, "not a constructor") ||
		strings.Contains(message, "not a destructor") ||
		strings.Contains(message, "unbound parameter") ||
		strings.Contains(message, "duplicate"):
		return CodeResolution
	default:
		return CodeType
	}
}

// Reporter formats Diagnostics against a known source so it can show
// the offending line and a caret, following
// internal/errors/reporter.go's layout.
type Reporter struct {
	lines []string
}

// NewReporter builds a Reporter over source's lines.
func NewReporter(source string) *Reporter {
	return &Reporter{lines: strings.Split(source, "\n")}
}

// Format renders a Diagnostic as a colored, multi-line report: a header
// naming the code and message, a "--> file:line:col" location line, the
// offending source line, and a caret pointing at the column.
func (r *Reporter) Format(d Diagnostic) string {
	var out strings.Builder

	levelColor := color.New(color.FgRed, color.Bold)
	if d.Code == CodeQuery {
		levelColor = color.New(color.FgCyan, color.Bold)
	}
	bold := color.New(color.Bold).SprintFunc()

	out.WriteString(levelColor.Sprintf("error[%s]", d.Code))
	out.WriteString(bold(": " + d.Message + "\n"))
	out.WriteString(fmt.Sprintf(" --> %s\n", d.Position))

	if d.Position.Line >= 1 && d.Position.Line <= len(r.lines) {
		line := r.lines[d.Position.Line-1]
		out.WriteString(fmt.Sprintf("  %s\n", line))
		col := d.Position.Column
		if col < 1 {
			col = 1
		}
		out.WriteString("  " + strings.Repeat(" ", col-1) + color.RedString("^") + "\n")
	}

	for _, n := range d.Notes {
		out.WriteString(color.CyanString("  note: ") + n + "\n")
	}

	return out.String()
}
