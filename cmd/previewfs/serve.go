package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/brettbedarf/previewfs/internal/util"
	"github.com/brettbedarf/previewfs/server"
	"github.com/spf13/cobra"
)

func newServeCommand(a *app) *cobra.Command {
	var (
		addr string
		save string
	)

	cmd := &cobra.Command{
		Use:   "serve [project]",
		Short: "Run the live preview dev server",
		Long: `Serve the live preview page and the project API. The preview is rebuilt on
every change made through the API and pushed to open pages over a websocket.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := util.GetLogger("serve")

			tree, err := loadProject(cmd.Context(), firstArg(args))
			if err != nil {
				return err
			}
			if addr != "" {
				a.cfg.ListenAddr = addr
			}

			s, err := server.New(a.cfg, tree)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := s.Serve(ctx); err != nil {
				return err
			}

			if save != "" {
				if err := writeSnapshot(tree, save); err != nil {
					return err
				}
				logger.Info().Str("path", save).Uint64("revision", tree.Revision()).Msg("Saved project snapshot")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (default from config)")
	cmd.Flags().StringVar(&save, "save", "", "write the project snapshot to this file on exit")
	return cmd
}
