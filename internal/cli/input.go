package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// errInteractiveStdin is returned instead of blocking on a terminal.
var errInteractiveStdin = errors.New("no input: pass a file or pipe data on stdin")

// readInput reads a file, or stdin when path is empty or "-". Input is
// returned byte-for-byte so identity conversions stay exact.
func readInput(path string, stdin io.Reader) (string, error) {
	path = strings.TrimSpace(path)

	var r io.Reader
	if path == "" || path == "-" {
		if stdin == nil {
			stdin = os.Stdin
		}
		if isTerminal(stdin) {
			return "", errInteractiveStdin
		}
		r = stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return "", fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		r = f
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return string(data), nil
}

// writeOutput writes to path, or to stdout when path is empty or "-".
func writeOutput(path, data string, stdout io.Writer) error {
	path = strings.TrimSpace(path)
	if path == "" || path == "-" {
		_, err := io.WriteString(stdout, data)
		return err
	}
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
