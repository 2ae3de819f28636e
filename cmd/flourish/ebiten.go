package main

import (
	"errors"
	"fmt"
	"image"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/phanxgames/flourish"
	"go.uber.org/zap"
)

const (
	windowTitle = "Flourish"
	screenW     = 960
	screenH     = 640
)

var errQuit = errors.New("quit")

// layoutRegions splits the window: sky across the top, orbit bottom-left,
// banner bottom-right.
func layoutRegions(w, h int) map[string]image.Rectangle {
	split := h / 2
	return map[string]image.Rectangle{
		refSky:    image.Rect(0, 0, w, split),
		refOrbit:  image.Rect(0, split, w/2, h),
		refBanner: image.Rect(w/2, split, w, h),
	}
}

type game struct {
	stage   *flourish.Stage
	host    *flourish.ImageHost
	cfg     *flourish.Config
	log     *zap.Logger
	w, h    int
	shotDue bool
}

func (g *game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return errQuit
	}
	for _, k := range inpututil.AppendJustPressedKeys(nil) {
		r := keyRune(k)
		if r == 'p' {
			g.shotDue = true
			continue
		}
		handleKey(g.stage, g.cfg, r)
	}
	g.stage.Update()
	return nil
}

// keyRune maps letter and digit keys to the runes handleKey understands.
func keyRune(k ebiten.Key) rune {
	switch {
	case k >= ebiten.KeyA && k <= ebiten.KeyZ:
		return 'a' + rune(k-ebiten.KeyA)
	case k >= ebiten.KeyDigit0 && k <= ebiten.KeyDigit9:
		return '0' + rune(k-ebiten.KeyDigit0)
	}
	return 0
}

func (g *game) Draw(screen *ebiten.Image) {
	g.host.Draw(screen)
	ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %.1f  loops: %d", ebiten.ActualFPS(), g.stage.Registry().Len()))

	if g.shotDue {
		g.shotDue = false
		path, err := flourish.SavePNG(screen, *screenshotDir, fmt.Sprintf("frame %d", g.stage.Driver().Frame()))
		if err != nil {
			g.log.Warn("screenshot failed", zap.Error(err))
		} else {
			g.log.Info("screenshot saved", zap.String("path", path))
		}
	}
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.w || outsideHeight != g.h {
		g.w, g.h = outsideWidth, outsideHeight
		for ref, r := range layoutRegions(g.w, g.h) {
			g.host.SetBounds(ref, r)
		}
	}
	return g.w, g.h
}

func loadFont(path string) (*text.GoTextFaceSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font %s: %w", path, err)
	}
	return flourish.LoadFontSource(data)
}

func runEbiten(cfg *flourish.Config, script *flourish.Script, log *zap.Logger) error {
	host := flourish.NewImageHost()
	regions := layoutRegions(screenW, screenH)
	sky := host.AddSurface(refSky, regions[refSky])
	if cfg.Birds.Font != "" {
		source, err := loadFont(cfg.Birds.Font)
		if err != nil {
			return err
		}
		sky.SetFontSource(source)
		log.Info("bird font loaded", zap.String("path", cfg.Birds.Font))
	}
	host.AddSurface(refOrbit, regions[refOrbit])
	host.AddContainer(refBanner, regions[refBanner])

	stage, err := flourish.NewStageFromConfig(host, cfg, log)
	if err != nil {
		return err
	}
	stage.SetScript(script)
	startDefaults(stage, cfg)

	ebiten.SetWindowTitle(windowTitle)
	ebiten.SetWindowSize(screenW, screenH)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(cfg.Stage.FrameRate)

	g := &game{stage: stage, host: host, cfg: cfg, log: log, w: screenW, h: screenH}
	err = ebiten.RunGame(g)
	stage.StopAllAnimations()
	if errors.Is(err, errQuit) {
		return nil
	}
	return err
}
