package plugin

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"

	"cssn/ast"
)

// Lint runs the rendered CSS through a standards CSS tokenizer and fails the
// pipeline if the output is not syntactically sound. The text passes through
// unchanged on success.
func Lint(out string, _ *ast.Tree) (string, error) {
	input := parse.NewInput(bytes.NewReader([]byte(out)))
	p := css.NewParser(input, false)

	for {
		gt, _, _ := p.Next()
		if gt != css.ErrorGrammar {
			continue
		}
		err := p.Err()
		if err == nil || errors.Is(err, io.EOF) {
			return out, nil
		}
		return "", fmt.Errorf("rendered CSS failed lint: %w", err)
	}
}
