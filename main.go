package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/cubescene/prefabs"
)

func main() {
	configPath := flag.String("config", prefabs.DefaultScene, "scene description (path on disk or name under prefabs/); meshes may name a tengo script under prefabs/scripts/")
	watch := flag.Bool("watch", false, "reload the scene and scripts when their files change")
	showStats := flag.Bool("stats", true, "show the FPS overlay")
	baseMonitor := flag.Bool("m", false, "use base monitor instead of primary (for multi-monitor setups)")
	width := flag.Int("w", 0, "window width (0 = monitor width)")
	height := flag.Int("h", 0, "window height (0 = monitor height)")
	flag.Parse()

	if *baseMonitor {
		ebiten.SetMonitor(ebiten.AppendMonitors(nil)[0])
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	w, h := ebiten.Monitor().Size()
	if *width > 0 {
		w = *width
	}
	if *height > 0 {
		h = *height
	}
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle("cubescene")

	game, err := NewGame(*configPath, *watch, *showStats)
	if err != nil {
		log.Fatal(err)
	}
	defer game.Close()

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
