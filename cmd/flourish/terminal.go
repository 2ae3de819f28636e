package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/phanxgames/flourish"
	"github.com/phanxgames/flourish/term"
	"go.uber.org/zap"
)

func runTerminal(cfg *flourish.Config, script *flourish.Script, log *zap.Logger) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer screen.Fini()
	screen.Clear()

	host := term.NewHost(screen)
	host.AddSurface(refSky, func(cols, rows int) (int, int, int, int) {
		return 0, 0, cols, rows / 2
	})
	host.AddSurface(refOrbit, func(cols, rows int) (int, int, int, int) {
		return 0, rows / 2, cols / 2, rows - rows/2
	})
	host.AddContainer(refBanner, func(cols, rows int) (int, int, int, int) {
		return cols / 2, rows / 2, cols - cols/2, rows - rows/2
	})

	stage, err := flourish.NewStageFromConfig(host, cfg, log)
	if err != nil {
		return err
	}
	stage.SetScript(script)
	startDefaults(stage, cfg)
	defer stage.StopAllAnimations()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// PollEvent blocks, so it gets its own goroutine. Everything else stays
	// on this one.
	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(cfg.FrameInterval())
	defer ticker.Stop()

	for {
		select {
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventResize:
				host.Resize()
				screen.Sync()
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q' {
					log.Info("quit")
					return nil
				}
				handleKey(stage, cfg, ev.Rune())
			}
		case <-ticker.C:
			stage.Update()
			screen.Show()
		}
	}
}
