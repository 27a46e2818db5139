package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "maptiler",
	Short: "Render raster map tiles from a binary tile store",
	Long: `maptiler reads a memory-mapped binary tile file, classifies its features
and paints them as raster tiles, either in batch or through a small viewer.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := InitConf(configPath); err != nil {
			return err
		}
		return InitLog()
	},
}

func init() {
	var pFlags *pflag.FlagSet = rootCmd.PersistentFlags()
	pFlags.StringVarP(&configPath, "config", "c", "./conf/conf.toml", "set config `file`")
	pFlags.StringVarP(&logLevel, "log-level", "l", "info", "set log level")
}
