// Command warscan is the combined scanner server: it loads a device
// inventory and publish-sink configuration, polls every enabled device's
// identity on its own goroutine, fans decoded attribute readings out to the
// enabled MQTT/Kafka/Valkey sinks, and serves either the web dashboard or
// the terminal dashboard over the same live device state.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"enipgo/config"
	"enipgo/logging"
	"enipgo/objects"
	"enipgo/tui"
	"enipgo/web"
)

func main() {
	configPath := flag.String("config", config.DefaultPath(), "path to the YAML configuration file")
	ui := flag.String("ui", "web", "dashboard to run: web, tui, or none")
	debugLog := flag.String("log-debug", "", "comma-separated subsystems to debug-log (or \"all\"), empty disables")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("warscan: load config %s: %v", *configPath, err)
	}

	if *debugLog != "" {
		logger, err := logging.NewDebugLogger("warscan-debug.log")
		if err != nil {
			log.Fatalf("warscan: open debug log: %v", err)
		}
		if *debugLog != "all" {
			logger.SetFilter(*debugLog)
		}
		logging.SetGlobalDebugLogger(logger)
		defer logger.Close()
	}

	f := newFleet(cfg.Namespace, cfg)
	f.startSinks()
	defer f.stopSinks()

	ctx, cancel := context.WithCancel(context.Background())
	go f.run(ctx)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	switch *ui {
	case "web":
		if !cfg.Web.Enabled {
			log.Println("warscan: web dashboard disabled in config, running headless")
			<-sigCh
		} else {
			server := web.NewServer(cfg.Web, f)
			if err := server.Start(); err != nil {
				log.Fatalf("warscan: start web server: %v", err)
			}
			fmt.Printf("warscan: dashboard listening on %s\n", server.Address())
			<-sigCh
			_ = server.Stop()
		}
	case "tui":
		app := tui.NewApp(&tuiSource{fleet: f})
		go func() {
			<-sigCh
			app.Stop()
		}()
		if err := app.Run(); err != nil {
			log.Fatalf("warscan: tui: %v", err)
		}
	case "none":
		<-sigCh
	default:
		cancel()
		log.Fatalf("warscan: unknown -ui value %q (want web, tui, or none)", *ui)
	}

	cancel()
}

// tuiSource adapts fleet's web.DeviceStatus-shaped listing to tui's
// independently-defined DeviceStatus, keeping the tui package decoupled
// from the web package.
type tuiSource struct {
	fleet *fleet
}

func (s *tuiSource) ListDevices() []tui.DeviceStatus {
	in := s.fleet.ListDevices()
	out := make([]tui.DeviceStatus, len(in))
	for i, d := range in {
		out[i] = tui.DeviceStatus{Name: d.Name, Address: d.Address, Connected: d.Connected, LastError: d.LastError}
	}
	return out
}

func (s *tuiSource) Identity(ctx context.Context, device string) (objects.IdentityObject, error) {
	return s.fleet.Identity(ctx, device)
}
