package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alnah/go-productsheet/internal/content"
	"github.com/alnah/go-productsheet/internal/yamlutil"
)

// parseOutput is what parse prints.
type parseOutput struct {
	Document *content.Document `json:"document" yaml:"document"`
	Debug    content.Debug     `json:"debug" yaml:"debug"`
}

// runParse runs the content parser over a file or stdin.
func runParse(_ context.Context, args []string, env *Environment) error {
	flags, positional, err := parseParseFlags(args, env.Stderr)
	if err != nil {
		return usageError(err)
	}
	format := strings.ToLower(flags.format)
	if format != "json" && format != "yaml" {
		return fmt.Errorf("%w: --format %q (must be json or yaml)", ErrUsage, flags.format)
	}
	if len(positional) > 1 {
		return fmt.Errorf("%w: parse takes at most one input", ErrUsage)
	}

	raw, err := readInput(positional, env.Stdin)
	if err != nil {
		return err
	}

	res := content.Parse(raw)
	if !res.OK() {
		if !flags.common.quiet && res.RawSnippet != "" {
			fmt.Fprintf(env.Stderr, "raw response (start):\n%s\n", res.RawSnippet)
		}
		return res.Err
	}

	out := parseOutput{Document: res.Document, Debug: res.Debug}
	if format == "yaml" {
		return yamlutil.Encode(env.Stdout, out)
	}
	enc := json.NewEncoder(env.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(out)
}

// readInput reads the named file, or stdin for "-" or no argument.
func readInput(positional []string, stdin io.Reader) (string, error) {
	var (
		data []byte
		err  error
	)
	if len(positional) == 0 || positional[0] == "-" {
		data, err = io.ReadAll(io.LimitReader(stdin, int64(content.MaxInputSize)+1))
	} else {
		data, err = os.ReadFile(positional[0]) // #nosec G304 -- user-provided input path
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrReadInput, err)
	}
	return string(data), nil
}
