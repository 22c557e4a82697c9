package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/icakad/icakad-go/client"
	"github.com/icakad/icakad-go/internal/textio"
)

// renderPayload formats a response body for humans: JSON is indented in
// its original key order, anything else is printed as text.
func renderPayload(b *client.Body) string {
	if b == nil {
		return ""
	}
	if b.JSON {
		var buf bytes.Buffer
		if err := json.Indent(&buf, b.Raw, "", "  "); err == nil {
			return buf.String()
		}
	}
	return b.Text()
}

// render formats any command result.
func render(v any) (string, error) {
	switch v := v.(type) {
	case *client.Body:
		return renderPayload(v), nil
	case string:
		return v, nil
	default:
		data, err := textio.EncodeJSON(v)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
}

// emit prints v unless --quiet is set and writes it to --save-to.
func (a *App) emit(v any) error {
	if err := a.save(v); err != nil {
		return err
	}
	if a.flags.quiet {
		return nil
	}
	out, err := render(v)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.Stdout, out)
	return nil
}

func (a *App) save(v any) error {
	if a.flags.saveTo == "" {
		return nil
	}

	var (
		path string
		err  error
	)
	switch v := v.(type) {
	case string:
		path, err = textio.WriteText(v, a.flags.saveTo)
	case *client.Body:
		if v.JSON {
			path, err = textio.WriteJSON(v, a.flags.saveTo)
		} else {
			path, err = textio.WriteText(v.Text(), a.flags.saveTo)
		}
	default:
		path, err = textio.WriteJSON(v, a.flags.saveTo)
	}
	if err != nil {
		return err
	}
	a.logger.Debug().Str("path", path).Msg("saved result")
	return nil
}

// writeLinkTable prints one "slug  url" line per link, sorted by slug,
// padding slugs to the widest display width.
func writeLinkTable(w io.Writer, links client.Links) {
	entries := links.Entries()
	width := 0
	for _, e := range entries {
		if n := runewidth.StringWidth(e.Slug); n > width {
			width = n
		}
	}
	for _, e := range entries {
		line := runewidth.FillRight(e.Slug, width) + "\t" + e.URL
		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}
}
