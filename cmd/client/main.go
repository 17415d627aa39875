package main

import (
	"flag"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"chessnet/internal/client"
	"chessnet/internal/network"
)

func main() {
	serverAddr := flag.String("server", "localhost:5555", "server address (host:port)")
	spectate := flag.Bool("spectate", false, "connect as a spectator")
	logLevel := flag.String("log-level", "warn", "log level (trace, debug, info, warn, error)")
	flag.Parse()

	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		level = zerolog.WarnLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})

	role := network.RolePlayer
	if *spectate {
		role = network.RoleSpectator
	}

	c := client.NewClient(*serverAddr, role)
	if err := c.Start(); err != nil {
		log.Fatal().Err(err).Msg("client failed")
	}
}
