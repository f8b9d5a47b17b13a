package main

import (
	"log"

	"github.com/ca-srg/rgmcp/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
