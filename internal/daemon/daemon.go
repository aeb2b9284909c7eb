package daemon

import (
	"context"
	"errors"
	"github.com/ZilDuck/nft-marketplace/internal/api"
	"github.com/ZilDuck/nft-marketplace/internal/event"
	"github.com/ZilDuck/nft-marketplace/internal/indexer"
	"go.uber.org/zap"
	"net"
	"net/http"
	"time"
)

const shutdownTimeout = 5 * time.Second

type Daemon struct {
	server  api.Server
	indexer indexer.ActionIndexer
	events  *event.Manager
	port    string
}

func NewDaemon(server api.Server, indexer indexer.ActionIndexer, events *event.Manager, port string) *Daemon {
	return &Daemon{server, indexer, events, port}
}

// Execute indexes ledger events and serves the api until ctx is done.
func (d *Daemon) Execute(ctx context.Context) error {
	listener, err := net.Listen("tcp", ":"+d.port)
	if err != nil {
		return err
	}

	return d.Serve(ctx, listener)
}

func (d *Daemon) Serve(ctx context.Context, listener net.Listener) error {
	d.indexer.Subscribe(d.events)
	defer d.events.Close()

	srv := &http.Server{
		Handler:           d.server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		zap.L().With(zap.String("addr", listener.Addr().String())).Info("Marketplace api started")
		errs <- srv.Serve(listener)
	}()

	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		zap.L().With(zap.Error(err)).Error("Marketplace api failed")
		return err
	case <-ctx.Done():
	}

	zap.L().Info("Shutting down marketplace api")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
