package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
	"github.com/paulmach/orb/maptile/tilecover"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/teris-io/shortid"
	"golang.org/x/sync/errgroup"
	pb "gopkg.in/cheggaaa/pb.v1"

	"maptiler/internal/render"
	"maptiler/internal/tilestore"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Render every tile covering the configured regions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return InitTask(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
}

// InitTask renders all configured layers into the configured sink.
func InitTask(ctx context.Context) error {
	start := time.Now()
	if ctx == nil {
		ctx = context.Background()
	}

	layers, err := loadLayers(conf.Lrs)
	if err != nil {
		return err
	}
	if len(layers) == 0 {
		return errors.New("no regions configured (lrs)")
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	tm := TileMap{
		Name:   conf.Task.Name,
		Title:  conf.App.Title,
		Min:    layers[0].Zoom,
		Max:    layers[0].Zoom,
		Format: conf.Output.Format,
	}
	for _, l := range layers {
		if l.Zoom < tm.Min {
			tm.Min = l.Zoom
		}
		if l.Zoom > tm.Max {
			tm.Max = l.Zoom
		}
	}

	sink, err := openSink(&tm)
	if err != nil {
		return err
	}
	bp, err := NewBreakPoint(conf.BreakPoint.SaveFilePath, tm.Name, conf.Task.Workers)
	if err != nil {
		sink.Close()
		return err
	}
	log.Infof("break point %s: %d tiles already finished", tm.Name, bp.Len())

	renderer, frame, err := newRenderer(store)
	if err != nil {
		bp.Close()
		sink.Close()
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	SafeExitInst.Register(cancel)

	task := NewTask(layers, tm, renderer, sink, bp)
	task.frame = frame
	runErr := task.Run(ctx)

	if err := bp.Close(); err != nil {
		log.WithError(err).Warn("close break point")
	}
	if err := sink.Close(); err != nil && runErr == nil {
		runErr = fmt.Errorf("close sink: %w", err)
	}

	log.Infof("task %s: %d rendered, %d skipped, %.3fs",
		task.ID, task.rendered.Load(), task.skipped.Load(), time.Since(start).Seconds())
	return runErr
}

func loadLayers(regions []Region) ([]Layer, error) {
	var layers []Layer
	for _, lrs := range regions {
		c, err := loadCollection(lrs.Geojson)
		if err != nil {
			return nil, err
		}
		for z := lrs.Min; z <= lrs.Max; z++ {
			layers = append(layers, Layer{Zoom: z, Collection: c})
		}
	}
	return layers, nil
}

func openSink(tm *TileMap) (TileSink, error) {
	dir := conf.Output.Directory
	if tm.Format == MBTILES {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return nil, err
		}
		return newMBTilesSink(filepath.Join(dir, tm.Name+".mbtiles"), tm)
	}
	return newFileSink(dir, tm)
}

func newRenderer(store *tilestore.Store) (*render.Renderer, render.Frame, error) {
	frame, err := render.ParseFrame(conf.Render.Fit)
	if err != nil {
		return nil, frame, err
	}
	opts := []render.Option{render.WithLogger(log)}
	if conf.Render.Background != "" {
		opts = append(opts, render.WithBackground(render.ParseColor(conf.Render.Background)))
	}
	return render.New(store, opts...), frame, nil
}

// Task is one batch render run.
type Task struct {
	ID      string
	Name    string
	Layers  []Layer
	TileMap TileMap
	Total   int64

	workerCount int
	bufSize     int
	width       int
	height      int
	frame       render.Frame

	renderer *render.Renderer
	sink     TileSink
	bp       *BreakPoint

	rendered atomic.Int64
	skipped  atomic.Int64
}

// NewTask counts the tiles of every layer.
func NewTask(layers []Layer, m TileMap, r *render.Renderer, sink TileSink, bp *BreakPoint) *Task {
	id, _ := shortid.Generate()

	task := &Task{
		ID:       id,
		Name:     m.Name,
		Layers:   layers,
		TileMap:  m,
		renderer: r,
		sink:     sink,
		bp:       bp,
		frame:    render.FrameTile,
	}
	for i := range task.Layers {
		l := &task.Layers[i]
		l.Count = tilecover.CollectionCount(l.Collection, maptile.Zoom(l.Zoom))
		log.Infof("zoom: %d, tiles: %d", l.Zoom, l.Count)
		task.Total += l.Count
	}

	task.workerCount = conf.Task.Workers
	task.bufSize = conf.Task.BufSize
	task.width = conf.Render.Width
	task.height = conf.Render.Height
	return task
}

// Bound is the union of all layer geometries.
func (task *Task) Bound() orb.Bound {
	bound := orb.Bound{Min: orb.Point{1, 1}, Max: orb.Point{-1, -1}}
	for _, layer := range task.Layers {
		for _, g := range layer.Collection {
			if bound.Min[0] > bound.Max[0] {
				bound = g.Bound()
				continue
			}
			bound = bound.Union(g.Bound())
		}
	}
	return bound
}

// Run renders the layers in order and stops at the first error.
func (task *Task) Run(ctx context.Context) error {
	log.WithFields(logrus.Fields{"task": task.ID, "tiles": task.Total, "bound": task.Bound()}).Info("task starting")
	for _, layer := range task.Layers {
		if err := task.runLayer(ctx, layer); err != nil {
			return fmt.Errorf("zoom %d: %w", layer.Zoom, err)
		}
	}
	return nil
}

func (task *Task) runLayer(ctx context.Context, layer Layer) error {
	bar := pb.New64(layer.Count).Prefix(fmt.Sprintf("Zoom %d : ", layer.Zoom)).Postfix("\n")
	bar.SetRefreshRate(time.Second)
	bar.Start()

	tilelist := make(chan maptile.Tile, task.bufSize)
	go tilecover.CollectionChannel(layer.Collection, maptile.Zoom(layer.Zoom), tilelist)
	// unblock the producer if we stop early
	defer func() {
		go func() {
			for range tilelist {
			}
		}()
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(task.workerCount)
	for tile := range tilelist {
		if gctx.Err() != nil {
			break
		}
		if task.bp != nil && task.bp.IsSuccessed(tile) {
			task.skipped.Add(1)
			bar.Increment()
			continue
		}
		tile := tile
		g.Go(func() error {
			defer bar.Increment()
			return task.renderTile(gctx, tile)
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		bar.FinishPrint(fmt.Sprintf("Task %s Zoom %d stopped: %v", task.ID, layer.Zoom, err))
		return err
	}
	bar.FinishPrint(fmt.Sprintf("Task %s Zoom %d finished ~", task.ID, layer.Zoom))
	return nil
}

func (task *Task) renderTile(ctx context.Context, mt maptile.Tile) error {
	img, stats, err := task.renderer.Render(ctx, render.Request{
		Bound:  mt.Bound(),
		Width:  task.width,
		Height: task.height,
		Frame:  task.frame,
	})
	if err != nil {
		return fmt.Errorf("render %d/%d/%d: %w", mt.Z, mt.X, mt.Y, err)
	}

	var buf bytes.Buffer
	if err := render.EncodePNG(&buf, img); err != nil {
		return fmt.Errorf("encode %d/%d/%d: %w", mt.Z, mt.X, mt.Y, err)
	}
	if err := task.sink.Save(Tile{T: mt, C: buf.Bytes()}); err != nil {
		return fmt.Errorf("save %d/%d/%d: %w", mt.Z, mt.X, mt.Y, err)
	}
	if task.bp != nil {
		task.bp.SetSuccessed(mt)
	}
	task.rendered.Add(1)

	log.WithFields(logrus.Fields{
		"tile":   fmt.Sprintf("%d/%d/%d", mt.Z, mt.X, mt.Y),
		"shapes": stats.Shapes,
		"size":   humanize.Bytes(uint64(buf.Len())),
	}).Debugf("rendered in %s", stats.Elapsed)
	return nil
}
