package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/ardanlabs/landledger/app/services/node/handlers"
	"github.com/ardanlabs/landledger/foundation/blockchain/database/storage/disk"
	"github.com/ardanlabs/landledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/landledger/foundation/blockchain/peer"
	"github.com/ardanlabs/landledger/foundation/blockchain/peergrpc"
	"github.com/ardanlabs/landledger/foundation/blockchain/signature"
	"github.com/ardanlabs/landledger/foundation/blockchain/state"
	"github.com/ardanlabs/landledger/foundation/blockchain/worker"
	"github.com/ardanlabs/landledger/foundation/events"
	"github.com/ardanlabs/landledger/foundation/logger"
	"github.com/ardanlabs/landledger/foundation/nameservice"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("NODE")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {

	// =========================================================================
	// Configuration

	cfg := struct {
		conf.Version
		Web struct {
			ReadTimeout     time.Duration `conf:"default:5s"`
			WriteTimeout    time.Duration `conf:"default:10s"`
			IdleTimeout     time.Duration `conf:"default:120s"`
			ShutdownTimeout time.Duration `conf:"default:20s"`
			DebugHost       string        `conf:"default:0.0.0.0:7080"`
			PublicHost      string        `conf:"default:0.0.0.0:8080"`
			PrivateHost     string        `conf:"default:0.0.0.0:9080"`
			GRPCHost        string        `conf:"default:0.0.0.0:9090"`
		}
		State struct {
			Beneficiary  string        `conf:"default:miner1"`
			GenesisPath  string        `conf:"default:zblock/genesis.json"`
			DBPath       string        `conf:"default:zblock/"`
			Transport    string        `conf:"default:http,help:http or grpc"`
			KnownPeers   []string      `conf:"default:0.0.0.0:9080;0.0.0.0:9180"`
			PeerTimeout  time.Duration `conf:"default:5s"`
			PeerMaxBytes int64         `conf:"default:67108864"`
			SyncInterval time.Duration `conf:"default:1m"`
			AutoSeal     bool          `conf:"default:true"`
		}
		NameService struct {
			Folder string `conf:"default:zblock/accounts/"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "land title ledger node",
		},
	}

	const prefix = "NODE"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	// =========================================================================
	// App Starting

	log.Infow("starting service", "version", build)
	defer log.Infow("shutdown complete")

	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	// =========================================================================
	// Name Service Support

	// The names come from the key file names in the accounts folder.
	ns, err := nameservice.New(cfg.NameService.Folder)
	if err != nil {
		return fmt.Errorf("unable to load account name service: %w", err)
	}

	for address, name := range ns.Copy() {
		log.Infow("startup", "status", "nameservice", "name", name, "address", address)
	}

	// =========================================================================
	// Ledger Support

	// The beneficiary key receives the mining reward of every sealed block.
	path := filepath.Join(cfg.NameService.Folder, cfg.State.Beneficiary+".ecdsa")
	privateKey, err := crypto.LoadECDSA(path)
	if err != nil {
		return fmt.Errorf("unable to load private key for node: %w", err)
	}

	gen, err := genesis.Load(cfg.State.GenesisPath)
	if err != nil {
		return fmt.Errorf("unable to load genesis: %w", err)
	}

	// Every node on the host keeps its own chain file named by its port.
	_, port, err := net.SplitHostPort(cfg.Web.PrivateHost)
	if err != nil {
		return fmt.Errorf("parsing private host: %w", err)
	}
	storage, err := disk.New(filepath.Join(cfg.State.DBPath, fmt.Sprintf("blocks_%s.json", port)))
	if err != nil {
		return fmt.Errorf("unable to open chain storage: %w", err)
	}

	// Known peers are addressed by the host of the transport in use, so the
	// node names itself the same way.
	var transport state.Transport
	host := cfg.Web.PrivateHost
	switch strings.ToLower(cfg.State.Transport) {
	case "http":
		transport = state.NewHTTPTransport(&http.Client{Timeout: cfg.State.PeerTimeout}, cfg.State.PeerMaxBytes)
	case "grpc":
		gt := peergrpc.NewTransport()
		defer gt.Close()
		transport = gt
		host = cfg.Web.GRPCHost
	default:
		return fmt.Errorf("unknown peer transport %q", cfg.State.Transport)
	}

	// The ledger packages log through this function. Every message is also
	// sent to the websocket clients connected through the events package.
	evts := events.New()
	ev := func(v string, args ...any) {
		s := fmt.Sprintf(v, args...)
		log.Infow(s, "traceid", "00000000-0000-0000-0000-000000000000")
		if strings.HasPrefix(s, "viewer:") {
			evts.Send(s)
		}
	}

	st, err := state.New(state.Config{
		BeneficiaryID: signature.PublicKeyToAddress(privateKey.PublicKey),
		Host:          host,
		Genesis:       gen,
		Storage:       storage,
		KnownPeers:    peer.NewPeerSet(cfg.State.KnownPeers...),
		Transport:     transport,
		PeerTimeout:   cfg.State.PeerTimeout,
		AutoSeal:      cfg.State.AutoSeal,
		EvHandler:     ev,
	})
	if err != nil {
		return err
	}
	defer st.Shutdown()

	// The worker runs sealing, sync and block sharing and registers itself
	// with the state.
	worker.Run(st, cfg.State.SyncInterval, ev)

	// =========================================================================
	// Start Debug Service

	log.Infow("startup", "status", "debug v1 router started", "host", cfg.Web.DebugHost)

	debugMux := handlers.DebugMux(build, log, st)

	// Not concerned with shutting this down with load shedding.
	go func() {
		if err := http.ListenAndServe(cfg.Web.DebugHost, debugMux); err != nil {
			log.Errorw("shutdown", "status", "debug v1 router closed", "host", cfg.Web.DebugHost, "ERROR", err)
		}
	}()

	// =========================================================================
	// Service Start/Stop Support

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	// =========================================================================
	// Start Public Service

	log.Infow("startup", "status", "initializing V1 public API support")

	publicMux := handlers.PublicMux(handlers.MuxConfig{
		Shutdown: shutdown,
		Log:      log,
		State:    st,
		NS:       ns,
		Evts:     evts,
	})

	public := http.Server{
		Addr:         cfg.Web.PublicHost,
		Handler:      publicMux,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	go func() {
		log.Infow("startup", "status", "public api router started", "host", public.Addr)
		serverErrors <- public.ListenAndServe()
	}()

	// =========================================================================
	// Start Private Service

	log.Infow("startup", "status", "initializing V1 private API support")

	privateMux := handlers.PrivateMux(handlers.MuxConfig{
		Shutdown: shutdown,
		Log:      log,
		State:    st,
	})

	private := http.Server{
		Addr:         cfg.Web.PrivateHost,
		Handler:      privateMux,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	go func() {
		log.Infow("startup", "status", "private api router started", "host", private.Addr)
		serverErrors <- private.ListenAndServe()
	}()

	// =========================================================================
	// Start gRPC Peer Service

	var stopGRPC func()
	if cfg.Web.GRPCHost != "" {
		lis, err := net.Listen("tcp", cfg.Web.GRPCHost)
		if err != nil {
			return fmt.Errorf("grpc listen: %w", err)
		}

		gs, grpcErrors := peergrpc.NewServer(st).Serve(lis)
		stopGRPC = gs.GracefulStop

		log.Infow("startup", "status", "grpc peer service started", "host", cfg.Web.GRPCHost)

		go func() {
			if err := <-grpcErrors; err != nil {
				serverErrors <- fmt.Errorf("grpc: %w", err)
			}
		}()
	}

	// =========================================================================
	// Shutdown

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Infow("shutdown", "status", "shutdown started", "signal", sig)
		defer log.Infow("shutdown", "status", "shutdown complete", "signal", sig)

		// Release any web sockets that are currently active.
		log.Infow("shutdown", "status", "shutdown web socket channels")
		evts.Shutdown()

		if stopGRPC != nil {
			log.Infow("shutdown", "status", "shutdown grpc peer service")
			stopGRPC()
		}

		ctx, cancelPri := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancelPri()

		log.Infow("shutdown", "status", "shutdown private API started")
		if err := private.Shutdown(ctx); err != nil {
			private.Close()
			return fmt.Errorf("could not stop private service gracefully: %w", err)
		}

		ctx, cancelPub := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancelPub()

		log.Infow("shutdown", "status", "shutdown public API started")
		if err := public.Shutdown(ctx); err != nil {
			public.Close()
			return fmt.Errorf("could not stop public service gracefully: %w", err)
		}
	}

	return nil
}
