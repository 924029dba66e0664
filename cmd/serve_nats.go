package cmd

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dh1tw/opusbridge/comms"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var natsServerCmd = &cobra.Command{
	Use:   "nats",
	Short: "NATS server",
	Long: `NATS server exposing opus encoders and decoders

Every operation is a NATS request below the subject prefix, e.g.
'opusbridge.encoder.create' or 'opusbridge.decoder.decode'. Requests and
replies are JSON encoded. You need a NATS broker up and running to which
the server can connect to.
`,
	Run: natsServer,
}

func init() {
	serveCmd.AddCommand(natsServerCmd)
	natsServerCmd.Flags().StringP("broker-url", "u", "localhost", "Broker URL")
	natsServerCmd.Flags().IntP("broker-port", "p", 4222, "Broker Port")
	natsServerCmd.Flags().StringP("password", "P", "", "NATS Password")
	natsServerCmd.Flags().StringP("username", "U", "", "NATS Username")
	natsServerCmd.Flags().StringP("subject-prefix", "s", "opusbridge", "subject prefix of all requests")
}

func natsServer(cmd *cobra.Command, args []string) {

	// bind the pflags to viper settings
	viper.BindPFlag("nats.broker-url", cmd.Flags().Lookup("broker-url"))
	viper.BindPFlag("nats.broker-port", cmd.Flags().Lookup("broker-port"))
	viper.BindPFlag("nats.password", cmd.Flags().Lookup("password"))
	viper.BindPFlag("nats.username", cmd.Flags().Lookup("username"))
	viper.BindPFlag("nats.subject-prefix", cmd.Flags().Lookup("subject-prefix"))

	_, backend, err := readOpusSettings()
	if err != nil {
		exit(err)
	}
	watchConfig(backend)

	natsAddr := fmt.Sprintf("nats://%s:%v",
		viper.GetString("nats.broker-url"), viper.GetInt("nats.broker-port"))

	host := newHost(backend)
	defer host.Close()

	svr, err := comms.NewServer(host, viper.GetString("nats.subject-prefix"))
	if err != nil {
		exit(&parmError{parm: "nats.subject-prefix", msg: err.Error()})
	}

	// start from default nats config and add the common options
	nopts := nats.GetDefaultOptions()
	nopts.Servers = []string{natsAddr}
	nopts.User = viper.GetString("nats.username")
	nopts.Password = viper.GetString("nats.password")
	// the name allows to distinguish the connections of several instances
	// when monitoring the nats server with nats-top
	nopts.Name = fmt.Sprintf("%s:opusbridge:%s", svr.Prefix(), uuid.NewString())
	nopts.DisconnectedErrCB = func(_ *nats.Conn, err error) {
		log.Printf("disconnected from %s: %v\n", natsAddr, err)
	}
	nopts.ReconnectedCB = func(c *nats.Conn) {
		log.Printf("reconnected to %s\n", c.ConnectedUrl())
	}

	conn, err := nopts.Connect()
	if err != nil {
		exit(fmt.Errorf("unable to connect to %s: %v", natsAddr, err))
	}
	defer conn.Close()

	if err := svr.Start(conn); err != nil {
		exit(err)
	}

	log.Printf("opus %s ready\n", host.Version())

	// Channel to handle OS signals
	osSignals := make(chan os.Signal, 1)
	signal.Notify(osSignals, syscall.SIGINT, syscall.SIGTERM)

	sig := <-osSignals
	log.Printf("received signal %v, shutting down\n", sig)

	if err := svr.Stop(); err != nil {
		log.Println(err)
	}
	if err := conn.Drain(); err != nil {
		log.Println(err)
	}
}
