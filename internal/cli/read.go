package cli

import (
	"github.com/MarcoPoloResearchLab/codenotes/internal/view"
	"github.com/spf13/cobra"
)

func (a *app) newListCommand() *cobra.Command {
	var showCode bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every note, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cache.Refresh(cmd.Context()); err != nil {
				return err
			}
			return view.RenderText(a.streams.Out, a.cache.All(), view.TextOptions{ShowCode: showCode, Location: a.location})
		},
	}
	cmd.Flags().BoolVar(&showCode, "code", false, "Print each note's code under its header")
	return cmd
}

func (a *app) newSearchCommand() *cobra.Command {
	var showCode bool
	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "List notes whose name or code contains QUERY, ignoring case",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cache.Refresh(cmd.Context()); err != nil {
				return err
			}
			return view.RenderText(a.streams.Out, a.cache.Filter(args[0]), view.TextOptions{ShowCode: showCode, Location: a.location})
		},
	}
	cmd.Flags().BoolVar(&showCode, "code", false, "Print each note's code under its header")
	return cmd
}

func (a *app) newShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show one note in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseNoteID(args[0])
			if err != nil {
				return err
			}
			note, err := a.client.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			return view.RenderDetail(a.streams.Out, note, a.location)
		},
	}
}

// newCodeCommand prints only the stored code, suitable for piping into a
// clipboard tool.
func (a *app) newCodeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "code ID",
		Short: "Print a note's code exactly as stored",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseNoteID(args[0])
			if err != nil {
				return err
			}
			note, err := a.client.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			_, err = a.streams.Out.Write([]byte(note.Code))
			return err
		},
	}
}
