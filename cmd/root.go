package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "opusbridge",
	Short: "Host bridge for the opus audio codec",
	Long: `opusbridge exposes libopus encoders and decoders to other hosts.

Sessions are created and addressed through opaque handles, either locally
(encode / decode / roundtrip / capture) or remotely through HTTP or NATS
(serve http / serve nats).
`,
}

// Execute adds all child commands to the root command sets flags
// appropriately. This is called by main.main(). It only needs to happen
// once to the rootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.opusbridge.[yaml|toml|json])")

	RootCmd.PersistentFlags().BoolP("verbose", "v", false, "log the creation and destruction of codec sessions")
	RootCmd.PersistentFlags().Int("samplerate", 48000, "opus samplerate [8000, 12000, 16000, 24000, 48000]")
	RootCmd.PersistentFlags().Int("channels", 1, "opus channels [1 (Mono), 2 (Stereo)]")
	RootCmd.PersistentFlags().String("application", "voip", "opus application [voip, audio, restricted_lowdelay]")
	RootCmd.PersistentFlags().Int("bitrate", 32000, "opus bitrate in bit/s [6000...510000]")
	RootCmd.PersistentFlags().Int("complexity", 9, "opus encoder complexity [0...10]")
	RootCmd.PersistentFlags().String("max-bandwidth", "fullband", "opus max bandwidth [narrowband, mediumband, wideband, superwideband, fullband]")
	RootCmd.PersistentFlags().Float64("frame-length", 20, "opus frame length in ms [2.5, 5, 10, 20, 40, 60]")
	RootCmd.PersistentFlags().Int("max-payload-size", 1024, "maximum size of an encoded packet in bytes")
	RootCmd.PersistentFlags().Bool("inband-fec", false, "enable opus in-band forward error correction")
	RootCmd.PersistentFlags().Int("packet-loss", 0, "expected packet loss in percent [0...100]")

	viper.BindPFlag("verbose", RootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("opus.samplerate", RootCmd.PersistentFlags().Lookup("samplerate"))
	viper.BindPFlag("opus.channels", RootCmd.PersistentFlags().Lookup("channels"))
	viper.BindPFlag("opus.application", RootCmd.PersistentFlags().Lookup("application"))
	viper.BindPFlag("opus.bitrate", RootCmd.PersistentFlags().Lookup("bitrate"))
	viper.BindPFlag("opus.complexity", RootCmd.PersistentFlags().Lookup("complexity"))
	viper.BindPFlag("opus.max-bandwidth", RootCmd.PersistentFlags().Lookup("max-bandwidth"))
	viper.BindPFlag("opus.frame-length", RootCmd.PersistentFlags().Lookup("frame-length"))
	viper.BindPFlag("opus.max-payload-size", RootCmd.PersistentFlags().Lookup("max-payload-size"))
	viper.BindPFlag("opus.inband-fec", RootCmd.PersistentFlags().Lookup("inband-fec"))
	viper.BindPFlag("opus.packet-loss", RootCmd.PersistentFlags().Lookup("packet-loss"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" { // enable ability to specify config file via flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigName(".opusbridge") // name of config file (without extension)
	}

	viper.SetEnvPrefix("OPUSBRIDGE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	} else if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
		fmt.Fprintf(os.Stderr, "Error parsing config file %v: %v\n",
			viper.ConfigFileUsed(), err)
		os.Exit(1)
	}
}

// exit prints the error to stderr and returns with exit code 1
func exit(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
