package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/brettbedarf/previewfs/requests"
	"github.com/spf13/cobra"
)

func newApplyCommand(_ *app) *cobra.Command {
	var (
		out      string
		failFast bool
	)

	cmd := &cobra.Command{
		Use:   "apply <snapshot> [requests]",
		Short: "Apply tool call requests to a project snapshot",
		Long: `Apply agent tool calls, one JSON request per line, to a project snapshot and
write the result back. Requests are read from the given file or stdin. Each
request's result message is printed; failed requests are reported and skipped.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			snapPath := args[0]
			tree, err := loadProject(cmd.Context(), snapPath)
			if err != nil {
				return err
			}

			var in io.Reader = cmd.InOrStdin()
			if len(args) > 1 {
				f, err := os.Open(args[1])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			failed := 0
			scanner := bufio.NewScanner(in)
			scanner.Buffer(make([]byte, 0, 64*1024), 16<<20)
			for line := 1; scanner.Scan(); line++ {
				raw := bytes.TrimSpace(scanner.Bytes())
				if len(raw) == 0 {
					continue
				}
				msg, err := requests.Handle(tree, raw)
				if err != nil {
					failed++
					fmt.Fprintf(cmd.ErrOrStderr(), "request %d: %v\n", line, err)
					if failFast {
						return fmt.Errorf("request %d failed: %w", line, err)
					}
					continue
				}
				fmt.Fprintln(cmd.OutOrStdout(), msg)
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("failed to read requests: %w", err)
			}

			if out == "" {
				out = snapPath
			}
			if err := writeSnapshot(tree, out); err != nil {
				return err
			}
			if failed > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "%d request(s) failed\n", failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "", "write the snapshot here instead of in place")
	cmd.Flags().BoolVar(&failFast, "fail-fast", false, "stop at the first failed request without saving")
	return cmd
}
