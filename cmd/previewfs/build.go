package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/brettbedarf/previewfs/preview"
	"github.com/brettbedarf/previewfs/server"
	"github.com/spf13/cobra"
)

func newBuildCommand(a *app) *cobra.Command {
	var (
		out    string
		asJSON bool
		strict bool
	)

	cmd := &cobra.Command{
		Use:   "build [project]",
		Short: "Assemble a preview page",
		Long: `Assemble the preview page for a project snapshot file (.json, .yaml),
directory or snapshot URL and write it as HTML, or as the JSON document with --json.
Build problems are listed on stderr.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := loadProject(cmd.Context(), firstArg(args))
			if err != nil {
				return err
			}
			assembler, err := server.NewAssembler(a.cfg)
			if err != nil {
				return err
			}

			files, rev := tree.AllFiles()
			doc, err := assembler.Build(cmd.Context(), files, rev)
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}

			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				err = enc.Encode(doc)
			} else {
				err = doc.WriteHTML(w)
			}
			if err != nil {
				return fmt.Errorf("failed to write preview: %w", err)
			}

			for _, e := range doc.Errors {
				fmt.Fprintln(cmd.ErrOrStderr(), e.Error())
			}
			if strict && doc.State == preview.StateError {
				return fmt.Errorf("preview has %d error(s)", len(doc.Errors))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "", "write to file instead of stdout")
	cmd.Flags().BoolVar(&asJSON, "json", false, "write the preview document as JSON")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail when the preview has errors")
	return cmd
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
