package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/icakad/icakad-go/client"
	"github.com/icakad/icakad-go/internal/textio"
)

func (a *App) pasteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "paste",
		Short: "Paste service operations",
	}
	cmd.AddCommand(a.pasteCreateCommand(), a.pasteGetCommand(), a.pasteDeleteCommand(), a.pasteListCommand())
	return cmd
}

func (a *App) pasteCreateCommand() *cobra.Command {
	var (
		text string
		file string
		ttl  int
		opts client.CreateOptions
	)

	cmd := &cobra.Command{
		Use:   "create [content|-]",
		Short: "Create a paste from an argument, --text, --file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := textio.Input{File: file, Stdin: a.Stdin}
			switch {
			case cmd.Flags().Changed("text"):
				in.Text = &text
			case len(args) == 1 && args[0] != "-":
				in.Text = &args[0]
			}

			content, err := textio.Resolve(in)
			if err != nil {
				return err
			}

			c, err := a.pasteClient()
			if err != nil {
				return err
			}
			if ttl > 0 {
				opts.TTL = time.Duration(ttl) * time.Second
			}
			out, err := c.Create(cmd.Context(), content, opts)
			if err != nil {
				return err
			}
			return a.emit(out)
		},
	}

	f := cmd.Flags()
	f.StringVar(&text, "text", "", "paste content")
	f.StringVar(&file, "file", "", "read the content from a file ('-' for stdin)")
	f.StringVar(&opts.ID, "id", "", "requested paste id")
	f.IntVar(&ttl, "ttl", 0, "lifetime in seconds")
	f.BoolVar(&opts.Plaintext, "plain", false, "send the content as text/plain")
	f.StringVar(&opts.Title, "title", "", "paste title")
	f.StringVar(&opts.Syntax, "syntax", "", "syntax highlighting hint")
	f.StringVar(&opts.ExpiresIn, "expires-in", "", "expiry, e.g. 1h")
	f.StringVar(&opts.Password, "password", "", "protect the paste with a password")
	return cmd
}

func (a *App) pasteGetCommand() *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:     "get <id>",
		Aliases: []string{"show"},
		Short:   "Show a paste",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.pasteClient()
			if err != nil {
				return err
			}
			if raw {
				text, err := c.FetchRaw(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return a.emit(text)
			}
			record, err := c.Fetch(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.emit(record)
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print only the paste text")
	return cmd
}

func (a *App) pasteDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a paste",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.pasteClient()
			if err != nil {
				return err
			}
			out, err := c.Delete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.emit(out)
		},
	}
}

func (a *App) pasteListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List pastes as the server reports them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.pasteClient()
			if err != nil {
				return err
			}
			out, err := c.List(cmd.Context())
			if err != nil {
				return err
			}
			return a.emit(out)
		},
	}
}
