package cli

import (
	"github.com/spf13/cobra"
)

func (a *App) shortURLCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shorturl",
		Short: "Short-link operations",
	}

	add := &cobra.Command{
		Use:   "add <slug> <url>",
		Short: "Create or replace a slug",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.shortURLClient()
			if err != nil {
				return err
			}
			out, err := c.Add(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return a.emit(out)
		},
	}

	edit := &cobra.Command{
		Use:   "edit <slug> <url>",
		Short: "Point an existing slug somewhere else",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.shortURLClient()
			if err != nil {
				return err
			}
			out, err := c.Edit(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return a.emit(out)
		},
	}

	del := &cobra.Command{
		Use:   "delete <slug>",
		Short: "Delete a slug",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.shortURLClient()
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

	var asJSON bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List every slug",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.shortURLClient()
			if err != nil {
				return err
			}
			links, err := c.List(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return a.emit(links)
			}
			if err := a.save(links); err != nil {
				return err
			}
			if !a.flags.quiet {
				writeLinkTable(a.Stdout, links)
			}
			return nil
		},
	}
	list.Flags().BoolVar(&asJSON, "json", false, "print the links as JSON")

	cmd.AddCommand(add, edit, del, list)
	return cmd
}
