package viewer

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"git.handmade.network/hmn/pngview/src/config"
	"git.handmade.network/hmn/pngview/src/jobs"
	"git.handmade.network/hmn/pngview/src/logging"
	"git.handmade.network/hmn/pngview/src/png"
	"git.handmade.network/hmn/pngview/src/utils"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

var addrFlag string

func init() {
	ViewerCommand.Flags().StringVar(&addrFlag, "addr", "", "address to serve the viewer on")
}

var ViewerCommand = &cobra.Command{
	Use:   "pngview <file.png>",
	Short: "Decode a PNG file and view it in the browser",
	Run: func(cmd *cobra.Command, args []string) {
		defer logging.LogPanics(nil)

		if len(args) < 1 {
			fmt.Printf("You must provide a PNG file to view.\n\n")
			cmd.Usage()
			os.Exit(1)
		}

		addr := utils.OrDefault(addrFlag, config.Config.Addr)
		v := NewViewer(args[0])
		v.Reload()

		var wg sync.WaitGroup

		wg.Add(1)
		backgroundJobs := jobs.Jobs{
			v.WatchFile(),
		}

		wg.Add(1)
		server := http.Server{
			Addr:    addr,
			Handler: v.Routes(),
		}
		go func() {
			logging.Info().Str("addr", addr).Str("file", v.Path).Msg("Serving the viewer")
			serverErr := server.ListenAndServe()
			if !errors.Is(serverErr, http.ErrServerClosed) {
				logging.Error().Err(serverErr).Msg("Server shut down unexpectedly")
			}
		}()

		signals := make(chan os.Signal, 1)
		signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-signals
			logging.Info().Msg("Shutting down the viewer")
			timeout := time.Duration(config.Config.Viewer.ShutdownTimeoutMs) * time.Millisecond

			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			server.Shutdown(ctx)
			wg.Done()

			unfinished := backgroundJobs.CancelAndWait(timeout)
			for _, name := range unfinished {
				logging.Warn().Str("job", name).Msg("Background job did not finish in time")
			}
			wg.Done()
		}()

		wg.Wait()
	},
}

// Viewer holds the most recent decode of the watched file and the set of
// browser sessions waiting to hear about the next one.
type Viewer struct {
	Path string

	mu        sync.Mutex
	img       *png.RgbaImage
	decodeErr error
	version   string

	subMu       sync.Mutex
	subscribers map[string]chan string
}

func NewViewer(path string) *Viewer {
	return &Viewer{
		Path:        path,
		version:     uuid.New().String(),
		subscribers: make(map[string]chan string),
	}
}

// Reload re-decodes the file and notifies every connected session. The
// decoder wants BGRA because the raster is served as a DIB-ordered
// bitmap, same as the original viewer fed to the display.
func (v *Viewer) Reload() {
	img, err := png.DecodeFile(v.Path,
		png.WithByteOrder(png.OrderBGRA),
		png.WithMaxChunkBytes(config.Config.Decoder.MaxChunkBytes),
	)

	v.mu.Lock()
	v.img = img
	v.decodeErr = err
	v.version = uuid.New().String()
	version := v.version
	v.mu.Unlock()

	if err != nil {
		logging.Error().Err(err).Str("file", v.Path).Msg("Failed to decode")
	} else {
		logging.Info().
			Str("file", v.Path).
			Uint32("width", img.Width).
			Uint32("height", img.Height).
			Msg("Decoded")
	}

	v.subMu.Lock()
	for _, sub := range v.subscribers {
		select {
		case sub <- version:
		default:
		}
	}
	v.subMu.Unlock()
}

func (v *Viewer) subscribe() (string, chan string) {
	id := uuid.New().String()
	ch := make(chan string, 4)
	v.subMu.Lock()
	v.subscribers[id] = ch
	v.subMu.Unlock()
	return id, ch
}

func (v *Viewer) unsubscribe(id string) {
	v.subMu.Lock()
	if ch, ok := v.subscribers[id]; ok {
		delete(v.subscribers, id)
		close(ch)
	}
	v.subMu.Unlock()
}

func (v *Viewer) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", v.servePage)
	mux.HandleFunc("/image.bmp", v.serveImage)
	mux.HandleFunc("/ws", v.serveWs)
	return mux
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head><title>{{.Title}}</title>
<style>
body { margin: 0; background: #222; color: #ddd; font-family: sans-serif; }
img { image-rendering: pixelated; display: block; margin: 2rem auto; background:
  repeating-conic-gradient(#555 0% 25%, #333 0% 50%) 0 0 / 16px 16px; }
p.error { text-align: center; margin-top: 4rem; }
</style>
</head>
<body>
{{if .Error}}<p class="error">{{.Error}}</p>{{else}}<img src="/image.bmp?v={{.Version}}">{{end}}
<script>
var ws = new WebSocket("ws://" + location.host + "/ws");
ws.onmessage = function() { location.reload(); };
</script>
</body>
</html>
`))

func (v *Viewer) servePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	v.mu.Lock()
	data := struct {
		Title   string
		Error   string
		Version string
	}{
		Title:   v.Path,
		Version: v.version,
	}
	if v.decodeErr != nil {
		data.Error = v.decodeErr.Error()
	}
	v.mu.Unlock()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	pageTemplate.Execute(w, data)
}

func (v *Viewer) serveImage(w http.ResponseWriter, r *http.Request) {
	v.mu.Lock()
	img := v.img
	v.mu.Unlock()

	if img == nil {
		http.Error(w, "no image decoded", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "image/bmp")
	w.Header().Set("Cache-Control", "no-store")
	if err := writeDib(w, img); err != nil {
		logging.Error().Err(err).Msg("Failed to write bitmap response")
	}
}

var upgrader = websocket.Upgrader{
	// The viewer binds to localhost; same-origin enforcement would only
	// get in the way of ad-hoc port forwards.
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (v *Viewer) serveWs(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	id, ch := v.subscribe()
	defer v.unsubscribe(id)
	logging.Debug().Str("session", id).Msg("Browser session connected")

	// Drain incoming frames so pings and close frames get processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				v.unsubscribe(id)
				return
			}
		}
	}()

	for version := range ch {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(version)); err != nil {
			return
		}
	}
}
