package main

import (
	"log"

	"github.com/vedank-s/job-scout/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
