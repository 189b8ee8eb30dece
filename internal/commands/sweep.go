package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/nikbrunner/chatfolders/internal/organizer"
	"github.com/nikbrunner/chatfolders/internal/sweep"
	"github.com/nikbrunner/chatfolders/internal/urlnorm"
)

func addCandidates(topLevel *cobra.Command, e *Env) {
	var folder string
	cmd := &cobra.Command{
		Use:   "candidates [filter]",
		Short: "List the conversations found in the sidebar snapshot.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			needle := ""
			if len(args) == 1 {
				needle = args[0]
			}
			target := ""
			if folder != "" {
				var err error
				if target, err = e.resolveFolder(folder); err != nil {
					return err
				}
			}
			opts, err := e.Org.PickerOptions(cmd.Context(), target, needle)
			if errors.Is(err, organizer.ErrNoBridge) {
				return errors.New("no sidebar snapshot configured (set harvest.snapshot)")
			}
			if err != nil {
				return err
			}
			if len(opts) == 0 {
				_, _ = fmt.Fprintln(e.Out(), "No conversations.")
				return nil
			}

			tbl := uitable.New()
			tbl.Separator = "  "
			tbl.MaxColWidth = titleWidth
			tbl.AddRow("TITLE", "URL", "FILED")
			for _, o := range opts {
				filed := o.InFolder
				if o.AlreadyHere {
					filed = target
				}
				tbl.AddRow(o.Title, o.URL, filed)
			}
			_, _ = fmt.Fprintln(e.Out(), tbl)
			return nil
		},
	}
	cmd.Flags().StringVar(&folder, "folder", "", "Mark conversations already in this folder.")
	topLevel.AddCommand(cmd)
}

func addSweep(topLevel *cobra.Command, e *Env) {
	var watch bool
	cmd := &cobra.Command{
		Use:   "sweep [url]...",
		Short: "Remove chats that were deleted from the sidebar.",
		Long: `Remove the given chat links from every folder in one batch. With --watch,
follow the sidebar snapshot and remove chats that disappear from it until
interrupted; links still listed in the snapshot are kept.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if watch {
				if len(args) > 0 {
					return errors.New("--watch takes no links")
				}
				return e.watchSweep(cmd.Context())
			}
			if len(args) == 0 {
				return errors.New("nothing to sweep: pass links or --watch")
			}

			sw := e.newSweeper(nil)
			defer sw.Stop()
			for _, arg := range args {
				if nurl := urlnorm.Normalize(arg); nurl != "" {
					sw.Report(nurl)
				}
			}
			r := sw.Flush(cmd.Context())
			if r.Err != nil {
				return r.Err
			}
			_, _ = fmt.Fprintf(e.Out(), "Removed %d chats\n", r.Removed)
			return nil
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "Follow the sidebar snapshot.")
	topLevel.AddCommand(cmd)
}

func (e *Env) watchSweep(ctx context.Context) error {
	if e.Snapshot == nil {
		return errors.New("no sidebar snapshot configured (set harvest.snapshot)")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	sw := e.newSweeper(func(r sweep.Result) {
		if r.Err == nil && r.Removed > 0 {
			_, _ = fmt.Fprintf(e.Out(), "Removed %d chats\n", r.Removed)
		}
	})
	defer sw.Stop()

	e.Logger.Info("watching sidebar snapshot", "path", e.Snapshot.Path())
	err := e.Snapshot.Watch(ctx, func(nurls []string) { sw.Report(nurls...) })
	if ctx.Err() != nil {
		sw.Flush(context.Background())
		return nil
	}
	return err
}
