package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
	"github.com/spf13/cobra"

	"maptiler/internal/render"
	"maptiler/internal/tilestore"
)

// maxViewerSize caps the canvas edge of /render.png.
const maxViewerSize = 4096

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve rendered tiles over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&optServeAddr, "address", "", "HTTP address to listen on (default serve.address)")
}

var optServeAddr string

func runServe(ctx context.Context) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	renderer, _, err := newRenderer(store)
	if err != nil {
		return err
	}
	v, err := NewViewer(store, renderer, conf.Serve.CacheSize)
	if err != nil {
		return err
	}

	addr := conf.Serve.Address
	if optServeAddr != "" {
		addr = optServeAddr
	}
	accessLog := log.Writer()
	defer accessLog.Close()
	srv := &http.Server{
		Addr:              addr,
		Handler:           handlers.RecoveryHandler()(handlers.LoggingHandler(accessLog, v.Router())),
		ReadHeaderTimeout: 10 * time.Second,
	}
	SafeExitInst.Register(func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	})

	log.Infof("serving %s on %s", store.Path(), addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Viewer renders tiles on request and keeps the encoded PNGs in an LRU.
type Viewer struct {
	store    *tilestore.Store
	renderer *render.Renderer
	cache    *lru.Cache[maptile.Tile, []byte]
	width    int
	height   int
}

func NewViewer(store *tilestore.Store, renderer *render.Renderer, cacheSize int) (*Viewer, error) {
	if cacheSize < 1 {
		cacheSize = 1
	}
	cache, err := lru.New[maptile.Tile, []byte](cacheSize)
	if err != nil {
		return nil, err
	}
	return &Viewer{
		store:    store,
		renderer: renderer,
		cache:    cache,
		width:    conf.Render.Width,
		height:   conf.Render.Height,
	}, nil
}

func (v *Viewer) Router() *mux.Router {
	router := mux.NewRouter().StrictSlash(false)
	router.Path("/tiles/{z:[0-9]+}/{x:[0-9]+}/{y:[0-9]+}.png").HandlerFunc(v.handleTile).Methods(http.MethodGet)
	router.Path("/render.png").HandlerFunc(v.handleRender).Methods(http.MethodGet)
	router.Path("/info").HandlerFunc(v.handleInfo).Methods(http.MethodGet)
	return router
}

func (v *Viewer) handleTile(w http.ResponseWriter, r *http.Request) {
	mt, err := tileFromVars(mux.Vars(r))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if data, ok := v.cache.Get(mt); ok {
		writePNG(w, data)
		return
	}

	data, err := v.render(r.Context(), render.Request{
		Bound:  mt.Bound(),
		Width:  v.width,
		Height: v.height,
		Frame:  render.FrameTile,
	})
	if err != nil {
		log.WithError(err).Errorf("render tile %d/%d/%d", mt.Z, mt.X, mt.Y)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	v.cache.Add(mt, data)
	writePNG(w, data)
}

func (v *Viewer) handleRender(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	bound, err := parseBBox(q.Get("bbox"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	width, err := sizeParam(q.Get("w"), v.width)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	height, err := sizeParam(q.Get("h"), v.height)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	data, err := v.render(r.Context(), render.Request{
		Bound:  bound,
		Width:  width,
		Height: height,
		Frame:  render.FrameContent,
	})
	if err != nil {
		log.WithError(err).Errorf("render %v", bound)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	writePNG(w, data)
}

// StoreInfo is the /info response.
type StoreInfo struct {
	Path      string `json:"path"`
	Version   uint32 `json:"version"`
	TileCount int    `json:"tileCount"`
	Size      int    `json:"size"`
	Cached    int    `json:"cached"`
}

func (v *Viewer) handleInfo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(StoreInfo{
		Path:      v.store.Path(),
		Version:   v.store.Version(),
		TileCount: v.store.TileCount(),
		Size:      v.store.Size(),
		Cached:    v.cache.Len(),
	})
}

func (v *Viewer) render(ctx context.Context, req render.Request) ([]byte, error) {
	img, _, err := v.renderer.Render(ctx, req)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := render.EncodePNG(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writePNG(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}

func tileFromVars(vars map[string]string) (maptile.Tile, error) {
	var n [3]uint64
	for i, key := range []string{"z", "x", "y"} {
		v, err := strconv.ParseUint(vars[key], 10, 32)
		if err != nil {
			return maptile.Tile{}, fmt.Errorf("invalid %s: %q", key, vars[key])
		}
		n[i] = v
	}
	z, x, y := n[0], n[1], n[2]
	if z > ZoomMax {
		return maptile.Tile{}, fmt.Errorf("zoom %d out of range [0, %d]", z, ZoomMax)
	}
	if last := uint64(1)<<z - 1; x > last || y > last {
		return maptile.Tile{}, fmt.Errorf("tile %d/%d/%d does not exist", z, x, y)
	}
	return maptile.Tile{X: uint32(x), Y: uint32(y), Z: maptile.Zoom(z)}, nil
}

// parseBBox parses "minLon,minLat,maxLon,maxLat".
func parseBBox(s string) (orb.Bound, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return orb.Bound{}, fmt.Errorf("bbox must be minLon,minLat,maxLon,maxLat")
	}
	var f [4]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return orb.Bound{}, fmt.Errorf("bbox: %w", err)
		}
		f[i] = v
	}
	if f[0] > f[2] || f[1] > f[3] {
		return orb.Bound{}, fmt.Errorf("bbox min exceeds max")
	}
	return orb.Bound{Min: orb.Point{f[0], f[1]}, Max: orb.Point{f[2], f[3]}}, nil
}

func sizeParam(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > maxViewerSize {
		return 0, fmt.Errorf("size %q must be in [1, %d]", s, maxViewerSize)
	}
	return n, nil
}
