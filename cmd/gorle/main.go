// This app demonstrates Return Link Encapsulation: it can run a
// self-contained transmit/receive loop over a loopback TCP link, or
// drive just one side of a real link against a separate process.
package main

import (
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pion/randutil"
	"go.uber.org/zap"

	"github.com/hnrck/gorle/internal/config"
	"github.com/hnrck/gorle/internal/logging"
	"github.com/hnrck/gorle/internal/rle"
	"github.com/hnrck/gorle/internal/transport"
)

var globalMathRandomGenerator = randutil.NewMathRandomGenerator()

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger := logging.New(cfg.LogLevel)

	rconf, err := cfg.RLEConfig()
	if err != nil {
		logger.Fatalf("rejected RLE configuration: %v", err)
	}

	switch cfg.Mode {
	case "demo":
		runDemo(cfg, rconf, logger)
	case "send":
		runSend(cfg, rconf, logger)
	case "recv":
		runRecv(cfg, rconf, logger)
	}
}

// randomSDU returns a pseudo-random payload between 1 and maxLen
// bytes, used by demo and send to exercise the codec without a real
// upper-layer data source.
func randomSDU(maxLen int) []byte {
	n := 1 + globalMathRandomGenerator.Intn(maxLen)
	sdu := make([]byte, n)
	for i := range sdu {
		sdu[i] = byte(globalMathRandomGenerator.Intn(256))
	}
	return sdu
}

// runDemo starts a recv listener and a send client against it in the
// same process, the self-contained round trip spec.md's external
// interfaces describe as a platform adaptation layer's job.
func runDemo(cfg *config.Config, rconf rle.Config, logger *zap.SugaredLogger) {
	rx, err := rle.NewReceiver(rconf)
	if err != nil {
		logger.Fatalf("failed to build receiver: %v", err)
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		logger.Fatalf("failed to listen: %v", err)
	}
	defer ln.Close()

	rxLog := logging.Component(logger, "rx")
	go acceptLoop(ln, rx, rxLog)

	tx, err := rle.NewTransmitter(rconf)
	if err != nil {
		logger.Fatalf("failed to build transmitter: %v", err)
	}
	conn, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		logger.Fatalf("failed to dial %s: %v", ln.Addr(), err)
	}
	defer conn.Close()
	link := transport.NewLink(conn)
	txLog := logging.Component(logger, "tx")

	const rounds = 32
	for i := 0; i < rounds; i++ {
		sdu := randomSDU(rle.MaxPDUSize / 4)
		if err := sendOneSDU(tx, link, sdu, cfg.BurstCapacity); err != nil {
			txLog.Errorf("round %d: %v", i, err)
			continue
		}
		txLog.Infow("round sent", "round", i, "bytes", len(sdu))
		time.Sleep(10 * time.Millisecond)
	}

	snap := tx.StatsSnapshot()
	var ok, dropped uint64
	for _, s := range snap {
		ok += s.CounterOK
		dropped += s.CounterDropped
	}
	txLog.Infow("demo finished", "contexts_completed", ok, "contexts_dropped", dropped)
}

func runSend(cfg *config.Config, rconf rle.Config, logger *zap.SugaredLogger) {
	tx, err := rle.NewTransmitter(rconf)
	if err != nil {
		logger.Fatalf("failed to build transmitter: %v", err)
	}

	conn, err := net.Dial("tcp", cfg.ListenAddr)
	if err != nil {
		logger.Fatalf("failed to dial %s: %v", cfg.ListenAddr, err)
	}
	defer conn.Close()
	link := transport.NewLink(conn)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case sig := <-sigCh:
			logger.Infof("signal received: %s, stopping send loop", sig)
			return
		default:
		}

		sdu := randomSDU(rle.MaxPDUSize / 4)
		if err := sendOneSDU(tx, link, sdu, cfg.BurstCapacity); err != nil {
			logger.Errorf("send failed: %v", err)
		}
		time.Sleep(50 * time.Millisecond)
	}
}

// sendOneSDU submits sdu, drives BuildFragment to completion, and
// writes every produced PPDU onto link.
func sendOneSDU(tx *rle.Transmitter, link *transport.Link, sdu []byte, capacity int) error {
	id, err := tx.Submit(sdu, rle.ProtoTypeUncompSignal)
	if err != nil {
		return err
	}
	for {
		frag, err := tx.BuildFragment(id, capacity)
		if e, ok := err.(*rle.Error); ok && e.Kind == rle.NoDataPending {
			return nil
		}
		if err != nil {
			return err
		}
		if err := link.WritePPDU(frag.Bytes); err != nil {
			return err
		}
	}
}

func runRecv(cfg *config.Config, rconf rle.Config, logger *zap.SugaredLogger) {
	rx, err := rle.NewReceiver(rconf)
	if err != nil {
		logger.Fatalf("failed to build receiver: %v", err)
	}

	ln, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		logger.Fatalf("failed to listen on %s: %v", cfg.ListenAddr, err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Infof("signal received: %s, shutting down listener", sig)
		ln.Close()
	}()

	logger.Infof("listening on %s", cfg.ListenAddr)
	acceptLoop(ln, rx, logger)
}

func acceptLoop(ln net.Listener, rx *rle.Receiver, logger *zap.SugaredLogger) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			logger.Infof("listener closed: %v", err)
			return
		}
		// Connections are served one at a time so the shared Receiver
		// is only ever driven from this goroutine.
		serveConn(conn, rx, logger)
	}
}

func serveConn(conn net.Conn, rx *rle.Receiver, logger *zap.SugaredLogger) {
	defer conn.Close()
	link := transport.NewLink(conn)
	connLog := logging.Component(logger, "recv")

	for {
		ppdu, err := link.ReadPPDU()
		if err != nil {
			connLog.Infof("connection closed: %v", err)
			return
		}
		sdu, err := rx.Deencapsulate(ppdu)
		if err != nil {
			connLog.Errorf("deencapsulate failed: %v", err)
			continue
		}
		if sdu != nil {
			connLog.Infow("reassembled SDU", "bytes", len(sdu.Bytes), "ptype", sdu.ProtoType)
		}
	}
}
