package main

import (
	"context"
	"errors"
	"image"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/iburimskiy/audio-boxes/internal/audio"
	"github.com/iburimskiy/audio-boxes/internal/config"
	"github.com/iburimskiy/audio-boxes/internal/game"
	"github.com/iburimskiy/audio-boxes/internal/pattern"
	"github.com/iburimskiy/audio-boxes/internal/render"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	path := config.Path()
	cfg, err := config.Load(path)
	if err != nil {
		log.Printf("config %s: %v, using defaults", path, err)
		cfg = config.Default()
	}

	out, err := audio.NewSpeaker(cfg.SampleRate(), cfg.Buffer())
	if err != nil {
		log.Fatalf("init speaker: %v", err)
	}

	player, err := audio.NewPlayer(out,
		audio.WithAnalyser(cfg.AnalyserParams()),
		audio.WithResampleQuality(cfg.Audio.ResampleQuality),
	)
	if err != nil {
		log.Fatalf("init player: %v", err)
	}
	defer player.Close()

	loop := render.NewLoop(player)
	g := game.New(ctx, cfg, loop, player, game.SelectAudioFile)

	if w, err := config.NewWatcher(path); err != nil {
		log.Printf("config watcher: %v", err)
	} else if err := w.Start(); err != nil {
		log.Printf("config watcher: %v", err)
		w.Stop()
	} else {
		defer w.Stop()
		g.WatchConfig(w.Events())
	}

	go func() {
		<-ctx.Done()
		loop.Stop()
	}()

	if len(os.Args) > 1 {
		g.Load(os.Args[1])
	}

	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowTitle(cfg.Window.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowIcon([]image.Image{pattern.Icon(64, 0.5)})

	err = ebiten.RunGame(g)
	stop()
	g.Wait()
	if err != nil && !errors.Is(err, ebiten.Termination) {
		var shaderErr *render.ShaderBuildError
		if errors.As(err, &shaderErr) {
			log.Printf("cannot draw: %v", shaderErr)
			player.Close()
			os.Exit(2)
		}
		log.Fatal(err)
	}
}
