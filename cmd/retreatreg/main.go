package main

import (
	"context"
	"log"
	_ "time/tzdata" // event_timezone must resolve on hosts without zoneinfo

	"github.com/dalemusser/retreatreg/internal/app/bootstrap"
	"github.com/dalemusser/waffle/app"
)

func main() {
	if err := app.Run(context.Background(), bootstrap.Hooks); err != nil {
		log.Fatal(err)
	}
}
