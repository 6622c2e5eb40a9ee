// Command vitrine-demo wires the terminal sink, input manager, and render
// orchestrator together into a minimal running program: one screen holding
// a moving rectangle, quit on 'q' or Ctrl-C.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/vitrineterm/vitrine/pkg/cellmodel"
	"github.com/vitrineterm/vitrine/pkg/drawable/shapes"
	"github.com/vitrineterm/vitrine/pkg/geom"
	"github.com/vitrineterm/vitrine/pkg/input"
	"github.com/vitrineterm/vitrine/pkg/orchestrator"
	"github.com/vitrineterm/vitrine/pkg/rconfig"
	"github.com/vitrineterm/vitrine/pkg/registry"
	"github.com/vitrineterm/vitrine/pkg/rlog"
	"github.com/vitrineterm/vitrine/pkg/screen"
	"github.com/vitrineterm/vitrine/pkg/sink/tcellsink"
	"github.com/vitrineterm/vitrine/pkg/termsrc"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "vitrine-demo:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := rconfig.Default()
	if path := os.Getenv("VITRINE_CONFIG"); path != "" {
		loaded, err := rconfig.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	logDir := os.Getenv("VITRINE_LOG_DIR")
	if logDir == "" {
		logDir = "."
	}
	logger, err := rlog.NewLogger(logDir, uuid.NewString())
	if err != nil {
		return fmt.Errorf("starting logger: %w", err)
	}
	defer logger.Close()

	backend, err := tcellsink.New()
	if err != nil {
		return fmt.Errorf("creating terminal backend: %w", err)
	}
	if err := backend.Init(); err != nil {
		return fmt.Errorf("initializing terminal: %w", err)
	}
	defer backend.Fini()

	width, height := backend.Size()
	source := tcellsink.NewEventSource(backend)

	mgr := input.New(input.Config{
		Source:        source,
		Logger:        logger,
		CommandBuffer: cfg.SinkChannelSize,
		TerminalWidth: width, TerminalHeight: height,
	})
	hook := input.NewHook(mgr)
	defer hook.Close()

	orch := orchestrator.New(orchestrator.Config{
		Sink:           backend,
		Logger:         logger,
		TerminalWidth:  width,
		TerminalHeight: height,
		ExpandAmount:   cfg.UpdateIntervalExpand,
		RenderMode:     cfg.RenderMode,
		CommandBuffer:  cfg.BufferedChannelSize,
		Hook:           hook,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return mgr.Run(gctx) })
	g.Go(func() error { return orch.Run(gctx) })

	if err := orch.CreateScreen("main", 0, screen.NewFullScreenArea()); err != nil {
		return fmt.Errorf("creating screen: %w", err)
	}

	rect := &shapes.Rect{
		P1:     geom.Point{X: 2, Y: 1},
		P2:     geom.Point{X: 12, Y: 5},
		Border: ptr(cellmodel.NewTerminalChar('#')),
	}
	handle, err := orch.RegisterDrawable("main", rect, 0, nil, registry.Lifetime{})
	if err != nil {
		return fmt.Errorf("registering rectangle: %w", err)
	}
	// Registration fits a Rect to the whole screen; place it back at its
	// starting corners so it has room to move.
	if err := orch.ReplacePoints(handle, []geom.Point{{X: 2, Y: 1}, {X: 12, Y: 5}}); err != nil {
		return fmt.Errorf("placing rectangle: %w", err)
	}

	quit := make(chan struct{})
	keyID, keyMsgs, err := mgr.SubscribeKey(input.KeyFilter{Action: input.KeyActionPressed})
	if err != nil {
		return fmt.Errorf("subscribing to key events: %w", err)
	}
	defer mgr.Unsubscribe(keyID)

	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case msg, ok := <-keyMsgs:
				if !ok {
					return nil
				}
				if msg.Code.Key == termsrc.KeyCtrlC || (msg.Code.Key == termsrc.KeyRune && msg.Code.Rune == 'q') {
					close(quit)
					return nil
				}
			}
		}
	})

	g.Go(func() error {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		dx := 1
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-quit:
				return nil
			case <-ticker.C:
				size := orch.GetTerminalSize()
				if rect.P2.X+dx >= size.X || rect.P1.X+dx <= 0 {
					dx = -dx
				}
				if err := orch.MoveBy(handle, dx, 0); err != nil {
					return err
				}
			}
		}
	})

	go func() {
		select {
		case <-quit:
			stop()
		case <-gctx.Done():
		}
	}()

	if err := g.Wait(); err != nil && gctx.Err() == nil {
		return err
	}
	return nil
}

func ptr[T any](v T) *T { return &v }
