package cli

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/MarcoPoloResearchLab/codenotes/internal/client"
	"github.com/MarcoPoloResearchLab/codenotes/internal/view"
	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const pageTitle = "Code Notes"

func (a *app) newDownloadCommand() *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "download ID",
		Short: "Save a note's attachment into a directory",
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
			path, err := client.SaveAttachment(note, outDir)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.streams.Out, path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "Directory to write the file into")
	return cmd
}

type renderFlags struct {
	out   string
	query string
}

func (f *renderFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "Write the HTML page to this file instead of stdout")
	cmd.Flags().StringVarP(&f.query, "query", "q", "", "Only include notes matching this filter")
}

func (a *app) newRenderCommand() *cobra.Command {
	var flags renderFlags
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the note list as an HTML page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cache.Refresh(cmd.Context()); err != nil {
				return err
			}
			return a.writePage(flags)
		},
	}
	flags.register(cmd)
	return cmd
}

// writePage renders the cached notes. A file target is replaced atomically so
// a browser reloading it never sees a partial page.
func (a *app) writePage(flags renderFlags) error {
	var buffer bytes.Buffer
	page := view.Page{
		Title: pageTitle,
		Query: flags.query,
		Cards: view.NewCards(a.cache.Filter(flags.query), a.location),
	}
	if err := view.RenderPage(&buffer, page); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	if flags.out == "" {
		_, err := buffer.WriteTo(a.streams.Out)
		return err
	}
	target := filepath.Clean(flags.out)
	if err := atomic.WriteFile(target, &buffer); err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}
	a.logger.Debug("page written", zap.String("path", target), zap.Int("notes", len(page.Cards)))
	return nil
}
