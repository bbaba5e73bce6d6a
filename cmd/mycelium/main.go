//go:build ebiten

package main

import (
	"errors"
	"flag"
	"log"

	"mycelium/internal/app"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	cfg := app.NewConfig()
	cfg.Bind(flag.CommandLine)
	flag.Parse()

	world, err := app.NewWorld(cfg)
	if err != nil {
		log.Fatal(err)
	}

	game := app.New(world, cfg.Scale, cfg.HUDWidth, cfg.Seed)

	ebiten.SetWindowTitle("mycelium: " + world.Name())
	ebiten.SetTPS(cfg.TPS)
	ebiten.SetWindowSize(app.WindowSize(world.Size(), cfg.Scale, cfg.HUDWidth))

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal(err)
	}
}
