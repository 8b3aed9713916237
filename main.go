package main

import (
	"context"
	"log"
	"os"

	"metadactyl/internal/cli"
)

func main() {
	os.Exit(run())
}

func run() int {
	if err := cli.NewRootCommand().ExecuteContext(context.Background()); err != nil {
		log.Printf("Error: %v", err)
		return 1
	}
	return 0
}
