package main

import (
	"flag"
	"log"
	"os"
	"runtime/pprof"

	"github.com/go-logr/stdr"

	"github.com/hailam/chester/internal/book"
	"github.com/hailam/chester/internal/config"
	"github.com/hailam/chester/internal/uci"
)

var (
	configPath = flag.String("config", config.Path(), "JSON config file (default $"+config.EnvPath+")")
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	verbosity  = flag.Int("v", -1, "log verbosity (overrides the config file)")
)

func main() {
	flag.Parse()

	// stdout belongs to the protocol; logs go to stderr.
	std := log.New(os.Stderr, "chester-uci ", log.LstdFlags)
	logger := stdr.New(std)

	cfg, err := config.Load(*configPath)
	if err != nil {
		std.Fatal(err)
	}
	if *verbosity >= 0 {
		cfg.Log.Verbosity = *verbosity
	}
	stdr.SetVerbosity(cfg.Log.Verbosity)

	// Start CPU profiling if requested (via flag or environment variable)
	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			std.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			std.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
		logger.Info("CPU profiling enabled", "path", profilePath)
	}

	logger.Info("starting", "config", *configPath, "depth", cfg.Engine.Depth, "workers", cfg.Engine.Workers)

	protocol, err := uci.New(cfg.EngineConfig(logger), cfg.Limits(), os.Stdout)
	if err != nil {
		std.Fatal(err)
	}
	if cfg.Engine.Book != "" {
		bk, err := book.Load(cfg.Engine.Book)
		if err != nil {
			std.Fatal(err)
		}
		protocol.SetBook(bk, nil)
		logger.Info("opening book loaded", "path", cfg.Engine.Book, "positions", bk.Size())
	}
	if err := protocol.Run(os.Stdin); err != nil {
		logger.Error(err, "protocol loop failed")
	}
}
