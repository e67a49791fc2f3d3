package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/sudovim/sudovim/internal/mirror"
)

func init() {
	rootCmd.AddCommand(newListCmd())
}

type listOptions struct {
	JSON     bool
	Long     bool
	Patterns []string
}

func newListCmd() *cobra.Command {
	var opts listOptions

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List mirrored files in the shadow tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			cmd.SilenceUsage = true
			return printList(cmd.OutOrStdout(), cfg.ShadowRoot, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Print entries as JSON")
	cmd.Flags().BoolVarP(&opts.Long, "long", "L", false, "Show target, size and age")
	cmd.Flags().StringArrayVarP(&opts.Patterns, "match", "m", nil, "Only targets matching this glob (repeatable, ** allowed)")
	return cmd
}

type listEntry struct {
	mirror.Entry
	Size    int64  `json:"size,omitempty"`
	ModTime string `json:"mod_time,omitempty"`
}

func printList(w io.Writer, root string, opts listOptions) error {
	entries, err := mirror.List(root, opts.Patterns...)
	if err != nil {
		return err
	}

	switch {
	case opts.JSON:
		out := make([]listEntry, 0, len(entries))
		for _, e := range entries {
			le := listEntry{Entry: e}
			if info, err := os.Stat(e.Slot); err == nil {
				le.Size = info.Size()
				le.ModTime = info.ModTime().UTC().Format("2006-01-02T15:04:05Z")
			}
			out = append(out, le)
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)

	case opts.Long:
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		for _, e := range entries {
			size, age := "-", "missing"
			if info, err := os.Stat(e.Slot); err == nil {
				size = humanize.IBytes(uint64(info.Size()))
				age = humanize.Time(info.ModTime())
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Target, size, age)
		}
		return tw.Flush()

	default:
		for _, e := range entries {
			fmt.Fprintln(w, e.Slot)
		}
		return nil
	}
}
