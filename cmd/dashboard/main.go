package main

import (
	"flag"
	"log"

	"mimac-sim/internal/dashboard"
)

func main() {
	out := flag.String("out", "build", "Directory for rendered dashboards")
	flag.Parse()
	if err := dashboard.Render(*out); err != nil {
		log.Fatal(err)
	}
}
