package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dh1tw/opusbridge/webserver"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var httpServerCmd = &cobra.Command{
	Use:   "http",
	Short: "HTTP / websocket server",
	Long: `HTTP server exposing opus encoders and decoders

Sessions are created through the REST API below /api/v1.0 and addressed
by the returned handle. Raw PCM is exchanged as 16 bit little endian
samples. For continuous streams, every session can also be driven through
a websocket (/ws/encoders/{handle} and /ws/decoders/{handle}).
`,
	Run: httpServer,
}

func init() {
	serveCmd.AddCommand(httpServerCmd)
	httpServerCmd.Flags().StringP("host", "w", "127.0.0.1", "Host (use '0.0.0.0' to listen on all network adapters)")
	httpServerCmd.Flags().IntP("port", "k", 9090, "Port to access the web interface")
}

func httpServer(cmd *cobra.Command, args []string) {

	// bind the pflags to viper settings
	viper.BindPFlag("http.host", cmd.Flags().Lookup("host"))
	viper.BindPFlag("http.port", cmd.Flags().Lookup("port"))

	_, backend, err := readOpusSettings()
	if err != nil {
		exit(err)
	}
	watchConfig(backend)

	addr := fmt.Sprintf("%s:%d", viper.GetString("http.host"), viper.GetInt("http.port"))

	host := newHost(backend)
	defer host.Close()

	web := webserver.NewWebServer(host)

	// Channel to handle OS signals
	osSignals := make(chan os.Signal, 1)
	signal.Notify(osSignals, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- web.ListenAndServe(addr)
	}()

	log.Printf("opus %s ready\n", host.Version())

	select {
	case err := <-errCh:
		if err != nil {
			exit(err)
		}
	case sig := <-osSignals:
		log.Printf("received signal %v, shutting down\n", sig)
		ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
		defer cancel()
		if err := web.Shutdown(ctx); err != nil {
			log.Println(err)
		}
	}

	log.Printf("closed %d remaining session(s)\n", host.Len())
}
