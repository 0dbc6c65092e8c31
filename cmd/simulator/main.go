// Command simulator runs one route through the traversal simulator and writes
// the telemetry artifact. Usage:
//
//	simulator run <route.json> [output.json]
//
// Configuration comes from an optional YAML file named by SIM_CONFIG and from
// the environment (a .env file is honoured when present). Setting SIM_PUBLISH
// to a truthy value replays the finished run over MQTT.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/ukydev/route-dynamics/internal/config"
	"github.com/ukydev/route-dynamics/internal/models"
	"github.com/ukydev/route-dynamics/internal/sim"
	"github.com/ukydev/route-dynamics/internal/stream"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if err := godotenv.Load(); err != nil {
		log.WithError(err).Debug("No .env file loaded")
	}

	if len(args) < 1 || args[0] != "run" {
		usage()
		return exitUsage
	}
	if len(args) < 2 || len(args) > 3 {
		usage()
		return exitUsage
	}
	inputPath := args[1]
	outputPath := sim.DefaultOutputPath
	if len(args) == 3 {
		outputPath = args[2]
	}

	cfg, err := loadConfig()
	if err != nil {
		log.WithError(err).Error("Invalid configuration")
		return exitError
	}

	route, err := sim.LoadRoute(inputPath)
	if err != nil {
		log.WithError(err).WithField("path", inputPath).Error("Failed to load route")
		return exitError
	}

	result, err := sim.NewRunner(cfg).Run(route)
	if err != nil {
		log.WithError(err).Error("Simulation failed")
		return exitError
	}

	if err := sim.WriteResult(result, outputPath); err != nil {
		log.WithError(err).WithField("path", outputPath).Error("Failed to write result")
		return exitError
	}

	log.WithFields(log.Fields{
		"input":            inputPath,
		"output":           outputPath,
		"points":           result.Statistics.NumPoints,
		"total_distance_m": result.Statistics.TotalDistanceM,
	}).Info("Run complete")

	if publishEnabled() {
		if err := publish(result); err != nil {
			log.WithError(err).Error("Replay publish failed")
			return exitError
		}
	}
	return exitOK
}

func loadConfig() (config.Config, error) {
	if path := os.Getenv("SIM_CONFIG"); path != "" {
		return config.Load(path)
	}
	return config.Default(), nil
}

func publishEnabled() bool {
	v, err := strconv.ParseBool(os.Getenv("SIM_PUBLISH"))
	return err == nil && v
}

func publish(result *models.RunResult) error {
	pub, err := stream.NewPublisher(stream.FromEnv())
	if err != nil {
		return err
	}
	defer pub.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return pub.Replay(ctx, result)
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s run <route.json> [output.json]\n", os.Args[0])
}
