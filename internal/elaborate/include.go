package elaborate

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"indlang/internal/lexer"
	"indlang/internal/module"
	"indlang/token"
)

// parseInclude handles "< path >": path is resolved relative to
// basePath, an explicit argument threaded through the whole run rather
// than a process-wide os.Chdir, so nested includes from different
// directories never interfere with each other. A directory include
// descends into that directory and reads its own "main.ind"; a file
// include processes exactly the named file.
func (p *Parser) parseInclude(mod *module.Module, basePath string, depth int) error {
	p.advance() // <
	pathTok, err := p.expect(token.NAME)
	if err != nil {
		return err
	}
	if _, err := p.expect(token.RANGLE); err != nil {
		return err
	}
	resolved := filepath.Join(basePath, pathTok.Literal)

	info, err := os.Stat(resolved)
	if err != nil {
		return fmt.Errorf("%s: include %q: %w", pathTok.Pos, pathTok.Literal, err)
	}
	if info.IsDir() {
		return runFile(mod, filepath.Join(resolved, "main.ind"), depth, p.out, p.trace)
	}
	return runFile(mod, resolved, depth, p.out, p.trace)
}

// RunFile tokenizes and elaborates one source file's top-level
// statements into mod, at the given namespace depth, writing any print
// directive output to out.
func RunFile(mod *module.Module, path string, depth int, out io.Writer) error {
	return runFile(mod, path, depth, out, nil)
}

func runFile(mod *module.Module, path string, depth int, out io.Writer, trace io.Writer) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %q: %w", path, err)
	}
	tokens, err := lexer.Tokenize(path, string(src))
	if err != nil {
		return fmt.Errorf("lexing %q: %w", path, err)
	}
	p := NewParser(tokens, string(src))
	p.SetOutput(out)
	p.SetTrace(trace)
	return p.run(mod, filepath.Dir(path), depth)
}
