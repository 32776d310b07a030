// Command gnb-cucp is the composition root for the CU-CP process: it loads
// configuration, wires the in-process F1/E1/NGAP transports, builds the
// cucp.Manager and rxbuffer.Pool, and drives the pool's housekeeping from a
// slot ticker, the
// same "load config, wire collaborators, run" shape as the teacher's own
// cmd entry points.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/srsran/gnb-cucp-go/internal/adapters"
	"github.com/srsran/gnb-cucp-go/internal/adapters/inproc"
	"github.com/srsran/gnb-cucp-go/internal/adapters/timer"
	"github.com/srsran/gnb-cucp-go/internal/config"
	"github.com/srsran/gnb-cucp-go/internal/cucp"
	"github.com/srsran/gnb-cucp-go/internal/obs"
	"github.com/srsran/gnb-cucp-go/internal/ran"
	"github.com/srsran/gnb-cucp-go/internal/rxbuffer"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML configuration file (optional)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "gnb-cucp:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log := obs.NewLogger(nil)

	ngapChannel := inproc.NewChannel(nil)
	ngLink := inproc.NewNGLink(ngapChannel)

	f1Link := inproc.NewF1Link()
	e1Link := inproc.NewE1Link()

	timerSvc := timer.NewService(ctx)

	manager := cucp.NewManager(ctx, cucp.Config{
		GNBCUName:             cfg.GNBCUName,
		MaxDUs:                cfg.Registries.MaxDUs,
		MaxCUUPs:              cfg.Registries.MaxCUUPs,
		MaxUEs:                cfg.Registries.MaxUEs,
		UEContextSetupTimeout: cfg.Timers.UEContextSetupTimeout,
	}, f1Link, e1Link, ngLink, log, timerSvc.NewTimer)

	registerNGAPInboundHandlers(ngapChannel, manager)

	pool := rxbuffer.NewPool(rxbuffer.Config{
		MaxCodeblockSize:   cfg.RxBuffer.MaxCodeblockSize,
		NofBuffers:         cfg.RxBuffer.NofBuffers,
		NofCodeblocks:      cfg.RxBuffer.NofCodeblocks,
		ExpireTimeoutSlots: cfg.RxBuffer.ExpireTimeoutSlots,
		ExternalSoftBits:   cfg.RxBuffer.ExternalSoftBits,
	})

	if err := manager.StartNGSetup(); err != nil {
		log.Warning().Err(err).Log("initial ng setup request failed")
	}

	runSlotLoop(ctx, pool)
	return nil
}

// runSlotLoop drives the rx-buffer pool's housekeeping tick (spec.md
// §4.3.5's "RunSlot") off a numerology-0 (15 kHz) slot clock (1ms/slot)
// until ctx is canceled.
func runSlotLoop(ctx context.Context, pool *rxbuffer.Pool) {
	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()

	now := ran.SlotPoint{Numerology: 0, Count: 0}
	for {
		select {
		case <-ctx.Done():
			pool.Stop()
			return
		case <-ticker.C:
			now = now.Add(1)
			pool.RunSlot(now)
		}
	}
}

// registerNGAPInboundHandlers binds the inproc NGAP channel's method names
// to cucp.Manager's inbound handlers (spec.md §6's "thin message-in/
// message-out shims" applied to the AMF-facing side of the boundary).
func registerNGAPInboundHandlers(ch *inproc.Channel, m *cucp.Manager) {
	ch.Register("NGSetupResponse", func(req any) (any, error) {
		m.HandleNGSetupResponse(req.(adapters.NGSetupResponse))
		return struct{}{}, nil
	})
	ch.Register("NGSetupFailure", func(req any) (any, error) {
		m.HandleNGSetupFailure(req.(adapters.NGSetupFailure))
		return struct{}{}, nil
	})
	ch.Register("InitialContextSetupRequest", func(req any) (any, error) {
		return struct{}{}, m.HandleInitialContextSetupRequest(req.(adapters.InitialContextSetupRequest))
	})
	ch.Register("PDUSessionResourceSetupRequest", func(req any) (any, error) {
		return struct{}{}, m.HandlePDUSessionResourceSetupRequest(req.(adapters.PDUSessionResourceSetupRequest))
	})
}
