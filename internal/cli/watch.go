package cli

import (
	"context"
	"errors"

	"github.com/MarcoPoloResearchLab/codenotes/internal/api"
	"github.com/MarcoPoloResearchLab/codenotes/internal/view"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (a *app) newWatchCommand() *cobra.Command {
	var flags renderFlags
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep the note list current, re-rendering after every change",
		Long: "Subscribes to the service's change stream. With --out the HTML page is " +
			"rewritten after each change; otherwise the terminal listing is printed again.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.refreshAndRender(ctx, flags); err != nil {
				return err
			}
			err := a.client.Watch(ctx, func(event api.ChangeEvent) {
				a.logger.Info("notes changed",
					zap.String("operation", event.Operation),
					zap.Int64s("note_ids", event.NoteIDs))
				if err := a.refreshAndRender(ctx, flags); err != nil {
					a.logger.Warn("refresh after change failed", zap.Error(err))
				}
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	flags.register(cmd)
	return cmd
}

func (a *app) refreshAndRender(ctx context.Context, flags renderFlags) error {
	if err := a.cache.Refresh(ctx); err != nil {
		return err
	}
	if flags.out != "" {
		return a.writePage(flags)
	}
	return view.RenderText(a.streams.Out, a.cache.Filter(flags.query), view.TextOptions{Location: a.location})
}
