// Command server runs the gomoku match server: `server <ipv4:port> <cert>
// <key> <db_path>` (spec.md section 6.3). Grounded on the teacher's
// cmd/game/main.go for actor-system bring-up and the signal-driven
// graceful-shutdown sequence.
package main

import (
	"crypto/tls"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/asynkron/protoactor-go/actor"

	"github.com/wuziqi-io/gomoku-server/internal/config"
	"github.com/wuziqi-io/gomoku-server/internal/connection"
	"github.com/wuziqi-io/gomoku-server/internal/credstore"
	"github.com/wuziqi-io/gomoku-server/internal/lobby"
	"github.com/wuziqi-io/gomoku-server/internal/logging"
	"github.com/wuziqi-io/gomoku-server/internal/metrics"
)

const (
	exitOK = iota
	exitUsage
	exitCertLoad
	exitBind
	exitDBOpen
)

func main() {
	if len(os.Args) != 5 {
		fmt.Fprintln(os.Stderr, "usage: server <ipv4:port> <cert> <key> <db_path>")
		os.Exit(exitUsage)
	}
	bindAddr, certPath, keyPath, dbPath := os.Args[1], os.Args[2], os.Args[3], os.Args[4]

	config.WriteExample("config.json")
	cfg, err := config.Load("config.json")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(exitUsage)
	}
	logging.SetLevel(cfg.Server.LogLevel)
	log := logging.For("server")

	cert, err := tls.LoadX509KeyPair(certPath, keyPath)
	if err != nil {
		log.Error("failed to load TLS certificate/key", "err", err)
		os.Exit(exitCertLoad)
	}
	tlsConfig := &tls.Config{Certificates: []tls.Certificate{cert}, MinVersion: tls.VersionTLS12}

	creds, err := credstore.Open(dbPath)
	if err != nil {
		log.Error("failed to open credential store", "err", err)
		os.Exit(exitDBOpen)
	}
	defer creds.Close()

	ln, err := net.Listen("tcp", bindAddr)
	if err != nil {
		log.Error("failed to bind", "addr", bindAddr, "err", err)
		os.Exit(exitBind)
	}

	actorSystem := actor.NewActorSystem()
	reg := metrics.New()
	lb := lobby.New(actorSystem, creds, cfg, reg)
	lb.StartIdleReaper()

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
		log.Info("serving metrics", "addr", addr)
		if err := reg.Serve(addr); err != nil {
			log.Error("metrics server stopped", "err", err)
		}
	}()

	log.Info("accepting connections", "addr", bindAddr)
	go lb.Serve(ln, func(conn net.Conn, ip string, admitted bool) {
		connection.Handle(conn, ip, admitted, tlsConfig, lb, cfg)
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	lb.Stop(ln)
	actorSystem.Shutdown()
	time.Sleep(200 * time.Millisecond)
	log.Info("shut down gracefully")
}
