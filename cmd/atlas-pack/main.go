package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/hexaflex/atlas/optimize"
)

func main() {
	config := parseArgs()

	bc, err := config.batch()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log.Println(Version())

	results, err := optimize.RunBatch(context.Background(), bc)
	fmt.Println(optimize.Summary(results))

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
