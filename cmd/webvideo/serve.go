package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"webvideo/internal/config"
	"webvideo/internal/content"
	"webvideo/internal/frame"
	"webvideo/internal/hooks"
	"webvideo/internal/host"
	"webvideo/internal/httpapi"
	"webvideo/internal/input"
	"webvideo/internal/panel"
	"webvideo/internal/panelstate"
	"webvideo/internal/relay"
	"webvideo/internal/renderer"
	"webvideo/internal/renderer/headless"
	"webvideo/internal/renderer/synthetic"
)

const shutdownTimeout = 5 * time.Second

var background = color.RGBA{A: 0xff}

// app is one assembled process: renderer-backed panels drawn into a host
// canvas on a fixed tick, plus the HTTP surface.
type app struct {
	cfg     config.Config
	log     zerolog.Logger
	player  *host.Player
	layout  *host.Layout
	input   *host.Dispatcher
	manager *panel.Manager
	handler http.Handler
}

// service adapts the panel manager and the host player to httpapi.Service.
type service struct {
	*panel.Manager
	player *host.Player
	input  *host.Dispatcher
}

func (s service) Screen() *image.RGBA { return s.player.Snapshot() }

func (s service) DispatchInput(ev input.Event) bool { return s.input.Dispatch(ev) }

func runServe(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	factory, closeFactory, err := newFactory(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeFactory(); err != nil {
			log.Warn().Err(err).Msg("event=renderer_close_failed")
		}
	}()

	a, err := newApp(ctx, cfg, factory, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.close(); err != nil {
			log.Warn().Err(err).Msg("event=panels_close_failed")
		}
	}()
	return a.run(ctx)
}

func newFactory(ctx context.Context, cfg config.Config, log zerolog.Logger) (renderer.Factory, func() error, error) {
	switch cfg.Renderer {
	case config.RendererSynthetic:
		f := synthetic.NewFactory(synthetic.Options{FrameRate: cfg.FrameRate, Logger: log})
		return f, func() error { return nil }, nil
	case config.RendererHeadless:
		f, err := headless.NewFactory(ctx, headless.Options{ExecPath: cfg.ChromePath, Logger: log})
		if err != nil {
			return nil, nil, fmt.Errorf("start headless renderer: %w", err)
		}
		return f, f.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown renderer %q", cfg.Renderer)
}

func newApp(ctx context.Context, cfg config.Config, factory renderer.Factory, log zerolog.Logger) (*app, error) {
	screen := frame.Size{Width: cfg.Screen.Width, Height: cfg.Screen.Height}
	a := &app{
		cfg:    cfg,
		log:    log,
		player: host.NewPlayer(screen, log),
		layout: host.NewLayout(screen),
		input:  host.NewDispatcher(),
	}
	a.input.Handle(func(ev input.Event) {
		log.Debug().Str("kind", string(ev.Kind)).Int("x", ev.X).Int("y", ev.Y).Msg("event=host_input")
	})

	relays := relay.NewRegistry(log)
	bridge := panelstate.New()
	hk := hooks.New(log,
		host.SyntheticSourcePatch(a.player, relays),
		host.CapturePatch(a.input, bridge, log),
	)
	resolver := content.Resolver{Dir: cfg.ContentDir, Template: cfg.URLTemplate}
	mgr, err := panel.NewManager(panel.ManagerConfig{
		Shared: panel.Shared{
			Factory:   factory,
			Relays:    relays,
			Video:     a.player,
			Bridge:    bridge,
			Hooks:     hk,
			Publisher: panel.NewLogPublisher(log),
			Logger:    log,
			Fit:       host.FitAuto,
			Flags:     host.FlagLoop | host.FlagMuted,
		},
		URLFor: resolver.FormatIndexURL,
		Sink: func(name string, msg []byte) {
			log.Debug().Str("panel", name).Int("bytes", len(msg)).Msg("event=page_message")
		},
	})
	if err != nil {
		return nil, err
	}
	a.manager = mgr

	for _, p := range cfg.Panels {
		w := a.layout.Widget(p.Name, host.Area{X: p.X, Y: p.Y, Width: p.Width, Height: p.Height})
		if _, err := mgr.Add(ctx, p.Name, w.Rect); err != nil {
			_ = mgr.Close()
			return nil, fmt.Errorf("panel %s: %w", p.Name, err)
		}
	}

	httpapi.SetLogger(log)
	httpapi.SetCORSOptions(cfg.CORS.Enabled, cfg.CORS.Origins, nil, nil)
	a.handler = httpapi.NewMux(service{Manager: mgr, player: a.player, input: a.input})
	return a, nil
}

// tick runs one host frame.
func (a *app) tick() {
	a.player.BeginFrame(background)
	a.manager.Tick()
}

func (a *app) run(ctx context.Context) error {
	srv := &http.Server{Addr: a.cfg.Addr, Handler: a.handler, ReadHeaderTimeout: 5 * time.Second}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.log.Info().
			Str("addr", a.cfg.Addr).
			Str("renderer", a.cfg.Renderer).
			Int("panels", len(a.cfg.Panels)).
			Msg("event=listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error { return a.loop(gctx) })
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}

// loop ticks the host at cfg.TickRate until ctx ends.
func (a *app) loop(ctx context.Context) error {
	lim := rate.NewLimiter(rate.Limit(a.cfg.TickRate), 1)
	for {
		if err := lim.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		a.tick()
	}
}

func (a *app) close() error {
	return a.manager.Close()
}
