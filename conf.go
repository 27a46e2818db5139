package main

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

var conf *Conf

// Region is one area rendered over a zoom range.
type Region struct {
	Min     int    `mapstructure:"min"`
	Max     int    `mapstructure:"max"`
	Geojson string `mapstructure:"geojson"`
}

type Conf struct {
	App struct {
		Version string `mapstructure:"version"`
		Title   string `mapstructure:"title"`
	} `mapstructure:"app"`
	Output struct {
		Directory      string `mapstructure:"directory"`
		Format         string `mapstructure:"format"`
		LogDir         string `mapstructure:"logDir"`
		OutputTerminal bool   `mapstructure:"outputTerminal"`
	} `mapstructure:"output"`
	Task struct {
		Name    string `mapstructure:"name"`
		Workers int    `mapstructure:"workers"`
		BufSize int    `mapstructure:"bufSize"`
	} `mapstructure:"task"`
	Store struct {
		Path  string `mapstructure:"path"`
		Index string `mapstructure:"index"`
		Zoom  int    `mapstructure:"zoom"`
	} `mapstructure:"store"`
	Render struct {
		Width      int    `mapstructure:"width"`
		Height     int    `mapstructure:"height"`
		Fit        string `mapstructure:"fit"`
		Background string `mapstructure:"background"`
	} `mapstructure:"render"`
	BreakPoint struct {
		SaveFilePath string `mapstructure:"saveFilePath"`
	} `mapstructure:"breakPoint"`
	Serve struct {
		Address   string `mapstructure:"address"`
		CacheSize int    `mapstructure:"cacheSize"`
	} `mapstructure:"serve"`
	Lrs []Region `mapstructure:"lrs"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.version", "v0.1.0")
	v.SetDefault("app.title", "MapCloud Tiler")
	v.SetDefault("output.directory", "output")
	v.SetDefault("output.format", PNG)
	v.SetDefault("output.outputTerminal", true)
	v.SetDefault("task.name", "tiles")
	v.SetDefault("task.workers", 4)
	v.SetDefault("task.bufSize", 64)
	v.SetDefault("store.index", "grid")
	v.SetDefault("store.zoom", 14)
	v.SetDefault("render.width", TileSize)
	v.SetDefault("render.height", TileSize)
	v.SetDefault("render.fit", "tile")
	v.SetDefault("breakPoint.saveFilePath", "breakpoint")
	v.SetDefault("serve.address", ":8080")
	v.SetDefault("serve.cacheSize", 512)
}

// InitConf reads cfgFile into conf. A missing file is an error; an empty
// path uses the defaults only.
func InitConf(cfgFile string) error {
	v := viper.GetViper()
	setDefaults(v)
	v.SetConfigType("toml")
	v.AutomaticEnv() // read in environment variables that match

	if cfgFile != "" {
		if _, err := os.Stat(cfgFile); os.IsNotExist(err) {
			return fmt.Errorf("config file(%s) not exist", cfgFile)
		}
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config file(%s): %w", v.ConfigFileUsed(), err)
		}
	}

	c := new(Conf)
	if err := v.Unmarshal(c); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	if err := c.validate(); err != nil {
		return err
	}
	conf = c
	return nil
}

func (c *Conf) validate() error {
	switch c.Output.Format {
	case PNG, MBTILES:
	default:
		return fmt.Errorf("output.format %q: want %s or %s", c.Output.Format, PNG, MBTILES)
	}
	switch c.Store.Index {
	case "grid", "extent":
	default:
		return fmt.Errorf("store.index %q: want grid or extent", c.Store.Index)
	}
	if c.Task.Workers < 1 {
		c.Task.Workers = 1
	}
	for i, r := range c.Lrs {
		if r.Min < ZoomMin || r.Max > ZoomMax || r.Min > r.Max {
			return fmt.Errorf("lrs[%d]: zoom range [%d, %d] invalid", i, r.Min, r.Max)
		}
	}
	return nil
}
