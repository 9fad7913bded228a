package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path"
	"syscall"

	logxi "github.com/mgutz/logxi/v1"

	"github.com/karlmutch/envflag" // Forked copy of https://github.com/GoBike/envflag
	"github.com/karlmutch/errors"

	"github.com/TeamNorCal/ledmachine"
	"github.com/TeamNorCal/ledmachine/percent"
)

var (
	logger = logxi.New("ledmachine")

	verbose = flag.Bool("v", false, "When enabled will print internal logging for this tool")

	configFile   = flag.String("config", "", "A YAML file describing the strips, lamps and sources of the installation")
	opcServer    = flag.String("opc-server", "", "The host:port of the fadecandy server, overrides the server of every configured strip")
	pixels       = flag.Int("pixels", 0, "The number of pixels on a single strip, overrides the configured strips")
	initial      = flag.String("initial", "", "A command applied at startup")
	listen       = flag.String("listen", "", "The address on which commands can be posted over HTTP, for example :8080")
	wsURL        = flag.String("websocket", "", "A websocket URL from which chat commands are read")
	redisURL     = flag.String("redis", "", "A redis URL, for example redis://localhost:6379/0, whose pub/sub channel carries commands")
	redisChannel = flag.String("redis-channel", "", "The redis pub/sub channel carrying commands")
	pollURL      = flag.String("poll", "", "An HTTP endpoint polled every second for new commands")
	stdin        = flag.Bool("stdin", false, "Read commands from stdin, one per line")
	meter        = flag.Bool("meter", false, "Listen to the default audio input for the music reactive effects")
)

func usage() {
	fmt.Fprintln(os.Stderr, path.Base(os.Args[0]))
	fmt.Fprintln(os.Stderr, "usage: ", os.Args[0], "[options]       chat commands → OPC (ledmachine)")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "ledmachine drives addressable LED strips attached to fadecandy boards from free text commands")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Options:")
	fmt.Fprintln(os.Stderr, "")
	flag.PrintDefaults()
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Environment Variables:")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "options can also be extracted from environment variables by changing dashes '-' to underscores and using upper case.")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "log levels are handled by the LOGXI env variables, these are documented at https://github.com/mgutz/logxi")
}

func init() {
	flag.Usage = usage
}

// loadConfig layers the command line over the configuration file
func loadConfig() (cfg *ledmachine.Config, err errors.Error) {
	cfg = ledmachine.DefaultConfig()
	if *configFile != "" {
		if cfg, err = ledmachine.LoadConfig(*configFile); err != nil {
			return nil, err
		}
	}

	if *pixels > 0 {
		if len(cfg.Strips) == 0 {
			cfg.Strips = ledmachine.DefaultConfig().Strips
		}
		cfg.Strips = cfg.Strips[:1]
		cfg.Strips[0].Pixels = *pixels
	}
	if *opcServer != "" {
		for i := range cfg.Strips {
			cfg.Strips[i].Server = *opcServer
		}
	}
	if *initial != "" {
		cfg.Initial = *initial
	}
	if *listen != "" {
		cfg.Sources.Listen = *listen
	}
	if *wsURL != "" {
		cfg.Sources.Websocket = *wsURL
	}
	if *redisURL != "" {
		cfg.Sources.Redis = *redisURL
	}
	if *redisChannel != "" {
		cfg.Sources.RedisChannel = *redisChannel
	}
	if *pollURL != "" {
		cfg.Sources.Poll = *pollURL
	}
	if *stdin {
		cfg.Sources.Stdin = true
	}
	if *meter {
		cfg.Meter.Enabled = true
	}
	return cfg, cfg.Validate()
}

func main() {

	// Parse the CLI flags
	if !flag.Parsed() {
		envflag.Parse()
	}

	if *verbose {
		logger.SetLevel(logxi.LevelDebug)
	}

	cfg, err := loadConfig()
	if err != nil {
		logger.Error("configuration is not usable", "error", err.Error())
		os.Exit(-1)
	}

	quitC := make(chan struct{})
	errorC := make(chan errors.Error, 8)

	go watchErrors(errorC, quitC)

	var level percent.LevelSource
	if cfg.Meter.Enabled {
		level = ledmachine.StartMeter(cfg.Meter.SampleRate, errorC, quitC)
	}

	gw := &ledmachine.Gateway{}
	if err = gw.Start(cfg, cfg.OPCStrips(), level, errorC, quitC); err != nil {
		logger.Error("could not start", "error", err.Error())
		os.Exit(-1)
	}

	if *verbose {
		go runMonitoring(gw.SubscribeC, quitC)
	}

	logger.Info("started", "pixels", cfg.Pixels(), "strips", len(cfg.Strips))

	stopC := make(chan os.Signal, 1)
	signal.Notify(stopC, os.Interrupt, syscall.SIGTERM)
	<-stopC

	logger.Info("stopping")
	close(quitC)
}
