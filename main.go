package main

import (
	"flag"
	"os"
	"runtime"

	"github.com/perlw/myrcube/config"
	"github.com/perlw/myrcube/hud"
	"github.com/perlw/myrcube/logger"
	"github.com/perlw/myrcube/myr"
	"github.com/perlw/myrcube/pompeii"
	"github.com/perlw/myrcube/window"
)

const validationLayer = "VK_LAYER_LUNARG_standard_validation"

func init() {
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "", "TOML config file")
	debug := flag.Bool("debug", false, "enable validation layers and trace logging")
	showHUD := flag.Bool("hud", false, "show frame statistics in the terminal")
	flag.Parse()

	os.Exit(run(*configPath, *debug, *showHUD))
}

func run(configPath string, debug, showHUD bool) int {
	log := logger.New("MAIN")

	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			log.Err(err, "config")
			return 1
		}
	}
	cfg.Validation = cfg.Validation || debug
	cfg.HUD = cfg.HUD || showHUD
	log = log.WithTrace(cfg.Trace || debug)

	win, err := window.New(cfg.Title, cfg.Width, cfg.Height)
	if err != nil {
		log.Err(err, "window")
		return 1
	}
	defer win.Destroy()

	if err := pompeii.Init(); err != nil {
		log.Err(err, "vulkan")
		return 1
	}

	var layers, extensions []string
	if cfg.Validation {
		layers = []string{validationLayer}
		extensions = []string{"VK_EXT_debug_report"}
	}
	instance, err := pompeii.NewInstance(cfg.Title, myr.EngineName, layers, extensions, log.Named("POMPEII"))
	if err != nil {
		log.Err(err, "instance")
		return 1
	}

	engine := myr.New(cfg.Options(), instance, log.Named(myr.EngineName))
	code := loop(engine, win, cfg, log)
	if err := engine.CleanUp(); err != nil {
		log.Err(err, "cleanup")
		code = 1
	}
	return code
}

func loop(engine *myr.Myr, win *window.Window, cfg config.Config, log logger.Logger) int {
	if err := engine.Init(win); err != nil {
		log.Err(err, "init")
		return 1
	}

	var overlay *hud.HUD
	if cfg.HUD {
		var err error
		if overlay, err = hud.Open(cfg.Title); err != nil {
			log.Warn("hud disabled: %s", err)
		} else {
			defer overlay.Close()
		}
	}

	for !win.ShouldClose() {
		for _, ev := range win.PollEvents() {
			engine.ReadInput(ev)
		}
		engine.Update()
		if err := engine.Render(); err != nil {
			log.Err(err, "render frame %d", engine.Stats().Frames)
			return 1
		}
		if overlay != nil {
			overlay.Update(engine.Stats())
		}
	}

	stats := engine.Stats()
	log.Log("Rendered %d frames, %d image alias waits", stats.Frames, stats.AliasWaits)
	return 0
}
