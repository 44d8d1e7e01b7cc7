package main

import (
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/brettbedarf/previewfs/internal/util"
	"github.com/brettbedarf/previewfs/mount"
	"github.com/spf13/cobra"
)

func newMountCommand(a *app) *cobra.Command {
	var umount bool

	cmd := &cobra.Command{
		Use:   "mount <mountpoint> [project]",
		Short: "Mount a project read-only over FUSE",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := util.GetLogger("mount")
			mnt := args[0]

			if umount {
				// Not being mounted already is fine
				_ = exec.Command("fusermount", "-u", mnt).Run()
			}

			tree, err := loadProject(cmd.Context(), firstArg(args[1:]))
			if err != nil {
				return err
			}

			opts := a.cfg.MountOptions
			opts.Debug = opts.Debug || a.cfg.LogLvl == util.TraceLevel

			m := mount.New(tree, opts)
			if err := m.Serve(mnt); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				if err := m.Unmount(); err != nil {
					logger.Error().Err(err).Str("mountPoint", mnt).Msg("Failed to unmount")
				}
			}()
			m.Wait()
			logger.Info().Str("mountPoint", mnt).Msg("Unmounted")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&umount, "umount", "u", false,
		"unmount the mount point first if needed; useful after a crash")
	return cmd
}
