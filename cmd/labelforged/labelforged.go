package main

import (
	"fmt"
	"os"

	"github.com/akamensky/argparse"
	"github.com/cyclopcam/logs"

	"github.com/labelforge/labelforge/server"
)

func main() {
	parser := argparse.NewParser("labelforged", "Labeling project server")
	dbFile := parser.String("", "db", &argparse.Options{Help: "Path to the sqlite database", Required: false, Default: "labelforge.sqlite"})
	port := parser.Int("p", "port", &argparse.Options{Help: "HTTP listen port", Required: false, Default: 8080})
	err := parser.Parse(os.Args)
	if err != nil {
		fmt.Print(parser.Usage(err))
		os.Exit(1)
	}

	logger, err := logs.NewLog()
	if err != nil {
		fmt.Printf("Failed to create log: %v\n", err)
		os.Exit(1)
	}

	srv, err := server.NewServer(logger, *dbFile)
	if err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}

	if err := srv.SetupHTTP(fmt.Sprintf(":%v", *port)); err != nil {
		logger.Errorf("HTTP server exited: %v", err)
		os.Exit(1)
	}
}
