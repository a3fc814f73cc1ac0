package main

import (
	"log"

	"github.com/jobhelper/jobhelper/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
