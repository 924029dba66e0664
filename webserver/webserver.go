package webserver

import (
	"context"
	"log"
	"net/http"
	"regexp"
	"sync"
	"time"

	"github.com/dh1tw/opusbridge/bridge"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

// WebServer exposes a bridge.Host through a REST API and websocket
// streaming endpoints.
type WebServer struct {
	sync.Mutex
	host       *bridge.Host
	router     *mux.Router
	server     *http.Server
	apiVersion string
	apiMatch   *regexp.Regexp
	wsClients  map[*wsClient]bool
}

// NewWebServer creates a WebServer for the given host.
func NewWebServer(host *bridge.Host) *WebServer {
	web := &WebServer{
		host:       host,
		router:     mux.NewRouter().StrictSlash(true),
		apiVersion: "1.0",
		apiMatch:   regexp.MustCompile(`api\/v\d\.\d\/`),
		wsClients:  make(map[*wsClient]bool),
	}
	web.routes()
	return web
}

// Handler returns the http.Handler serving the API.
func (web *WebServer) Handler() http.Handler {
	return web.apiRedirectRouter(web.router)
}

// ListenAndServe starts serving on addr (e.g. "localhost:9090") and blocks
// until the server is shut down.
func (web *WebServer) ListenAndServe(addr string) error {
	web.Lock()
	web.server = &http.Server{
		Addr:              addr,
		Handler:           web.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := web.server
	web.Unlock()

	log.Printf("webserver listening on %s\n", addr)
	err := srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops the http server and closes all websocket connections.
func (web *WebServer) Shutdown(ctx context.Context) error {
	web.Lock()
	srv := web.server
	for c := range web.wsClients {
		c.close()
	}
	web.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

func (web *WebServer) addWsClient(c *wsClient) {
	web.Lock()
	defer web.Unlock()
	web.wsClients[c] = true
}

func (web *WebServer) removeWsClient(c *wsClient) {
	web.Lock()
	defer web.Unlock()
	delete(web.wsClients, c)
}
