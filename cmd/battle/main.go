package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	battlecmd "github.com/louisbranch/pocketduel/internal/cmd/battle"
	entrypoint "github.com/louisbranch/pocketduel/internal/platform/cmd"
)

// main runs one battle, or a batch, and prints the result.
func main() {
	cfg, err := battlecmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix(entrypoint.LogPrefix(entrypoint.ServiceBattle))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := battlecmd.Run(ctx, cfg); err != nil {
		log.Fatalf("battle failed: %v", err)
	}
}
