// Package textio reads paste content and writes command results to files.
package textio

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrEmpty is returned when the resolved text is empty.
var ErrEmpty = errors.New("the supplied text is empty")

// Input describes where paste content comes from. Text wins over File;
// with neither, or with File set to "-", Stdin is read.
type Input struct {
	Text  *string
	File  string
	Stdin io.Reader
}

// Resolve returns the content. Inline text has surrounding newlines trimmed.
func Resolve(in Input) (string, error) {
	var content string
	switch {
	case in.Text != nil:
		content = strings.Trim(*in.Text, "\n")
	case in.File != "" && in.File != "-":
		data, err := os.ReadFile(expand(in.File))
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", in.File, err)
		}
		content = string(data)
	case in.Stdin != nil:
		data, err := io.ReadAll(in.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		content = string(data)
	default:
		return "", errors.New("provide text, a file or stdin to supply content")
	}

	if content == "" {
		return "", ErrEmpty
	}
	return content, nil
}

// EncodeJSON pretty prints v with two space indentation, keeping non-ASCII
// characters and HTML as they are.
func EncodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// WriteJSON writes v as pretty JSON to path, creating parent directories.
// It returns the absolute path written.
func WriteJSON(v any, path string) (string, error) {
	data, err := EncodeJSON(v)
	if err != nil {
		return "", fmt.Errorf("encoding JSON: %w", err)
	}
	return write(path, append(data, '\n'))
}

// WriteText writes text to path unchanged, creating parent directories.
func WriteText(text, path string) (string, error) {
	return write(path, []byte(text))
}

func write(path string, data []byte) (string, error) {
	target, err := filepath.Abs(expand(path))
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", filepath.Dir(target), err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", target, err)
	}
	return target, nil
}

func expand(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
