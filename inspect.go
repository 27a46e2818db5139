package main

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"maptiler/internal/tilestore"
)

var optInspectTiles bool

var inspectCmd = &cobra.Command{
	Use:   "inspect [file]",
	Short: "Print the header and tile table of a tile file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			conf.Store.Path = args[0]
		}
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()
		return inspect(os.Stdout, store, optInspectTiles)
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().BoolVarP(&optInspectTiles, "tiles", "t", false, "list every tile with its feature count and extent")
}

func inspect(w io.Writer, store *tilestore.Store, tiles bool) error {
	fmt.Fprintf(w, "file:     %s\n", store.Path())
	fmt.Fprintf(w, "version:  %d\n", store.Version())
	fmt.Fprintf(w, "size:     %s\n", humanize.Bytes(uint64(store.Size())))
	fmt.Fprintf(w, "tiles:    %s\n", humanize.Comma(int64(store.TileCount())))

	total := 0
	for _, id := range store.Tiles() {
		n, ok := store.FeatureCount(id)
		if !ok {
			return fmt.Errorf("tile %d: unreadable block", id)
		}
		total += n
		if !tiles {
			continue
		}
		if b, ok := store.TileExtent(id); ok {
			fmt.Fprintf(w, "  %10d %8d features  [%.5f,%.5f %.5f,%.5f]\n", id, n, b.Min[0], b.Min[1], b.Max[0], b.Max[1])
		} else {
			fmt.Fprintf(w, "  %10d %8d features\n", id, n)
		}
	}
	fmt.Fprintf(w, "features: %s\n", humanize.Comma(int64(total)))
	return nil
}
