package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli"
	"go.uber.org/zap"

	"github.com/bitfsorg/royaltyledger-go/ledger"
	"github.com/bitfsorg/royaltyledger-go/principal"
	"github.com/bitfsorg/royaltyledger-go/royalty"
)

const (
	shutdownTimeout = 5 * time.Second

	// maxSaleRequestSize bounds the body of POST /sales.
	maxSaleRequestSize = 4 << 10
)

func newServeCommand() cli.Command {
	return cli.Command{
		Name:      "serve",
		Usage:     "serve the ledger over HTTP with prometheus metrics",
		UsageText: "royaltyd serve [--listen :9102] [--allow-sales] [--settle chain --password <pass>]",
		Action:    serve,
		Flags: []cli.Flag{
			cli.StringFlag{Name: "listen, l", Usage: "listen address (defaults to the configured metrics address)"},
			cli.BoolFlag{Name: "allow-sales", Usage: "accept unauthenticated sale recording on POST /sales"},
			settleFlag,
			passwordFlag,
		},
	}
}

func serve(ctx *cli.Context) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	e, err := openEngine(ctx, reg)
	if err != nil {
		return err
	}
	defer e.Close()

	addr := ctx.String("listen")
	if addr == "" {
		addr = e.cfg.MetricsAddr
	}
	if addr == "" {
		return cli.NewExitError("no listen address, set --listen or metrics in the config", 1)
	}

	allowSales := ctx.Bool("allow-sales")
	if allowSales {
		e.log.Warn("sale recording is open to any client",
			zap.String("endpoint", addr),
			zap.String("settle", ctx.String("settle")))
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           newAPI(e.ledger, reg, e.log, allowSales),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		e.log.Info("service is running", zap.String("endpoint", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return cli.NewExitError(err, 1)
		}
		return nil
	case <-sigCtx.Done():
	}

	e.log.Info("shutting down service", zap.String("endpoint", addr))
	shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		e.log.Error("can't shut service down", zap.Error(err))
	}
	return nil
}

// saleRequest is the body of POST /sales.
type saleRequest struct {
	Asset  uint64 `json:"asset"`
	Seller string `json:"seller"`
	Buyer  string `json:"buyer"`
	Price  uint64 `json:"price"`
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// newAPI exposes the ledger reads and the metrics of reg. POST /sales is
// registered only when allowSales is set; it carries no authentication.
func newAPI(l *ledger.Ledger, reg *prometheus.Registry, log *zap.Logger, allowSales bool) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	mux.HandleFunc("GET /policies/{asset}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := assetParam(w, r)
		if !ok {
			return
		}
		p, found, err := l.GetPolicy(id)
		respond(w, log, p, found, err)
	})

	mux.HandleFunc("GET /policies/{asset}/splits", func(w http.ResponseWriter, r *http.Request) {
		id, ok := assetParam(w, r)
		if !ok {
			return
		}
		splits, err := l.GetSplits(id)
		respond(w, log, splits, true, err)
	})

	mux.HandleFunc("GET /policies/{asset}/quote", func(w http.ResponseWriter, r *http.Request) {
		id, ok := assetParam(w, r)
		if !ok {
			return
		}
		price, err := strconv.ParseUint(r.URL.Query().Get("price"), 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid price", Kind: "invalid_price"})
			return
		}
		q, found, err := l.RoyaltyInfo(r.Context(), id, price)
		respond(w, log, q, found, err)
	})

	mux.HandleFunc("GET /sales/{asset}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := assetParam(w, r)
		if !ok {
			return
		}
		sales, err := l.ListSales(id)
		respond(w, log, sales, true, err)
	})

	mux.HandleFunc("GET /sales/{asset}/{seq}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := assetParam(w, r)
		if !ok {
			return
		}
		seq, err := strconv.ParseUint(r.PathValue("seq"), 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid sequence"})
			return
		}
		sale, found, err := l.GetSale(id, seq)
		respond(w, log, sale, found, err)
	})

	if allowSales {
		mux.HandleFunc("POST /sales", func(w http.ResponseWriter, r *http.Request) {
			var req saleRequest
			r.Body = http.MaxBytesReader(w, r.Body, maxSaleRequestSize)
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				status := http.StatusBadRequest
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					status = http.StatusRequestEntityTooLarge
				}
				writeJSON(w, status, errorResponse{Error: err.Error()})
				return
			}
			res, err := l.RecordSale(r.Context(), royalty.AssetID(req.Asset),
				principal.Principal(req.Seller), principal.Principal(req.Buyer), req.Price)
			respond(w, log, res, true, err)
		})
	}

	mux.HandleFunc("GET /totals", func(w http.ResponseWriter, _ *http.Request) {
		total, err := l.GetTotalDistributed()
		if err != nil {
			respond(w, log, nil, false, err)
			return
		}
		paused, err := l.IsPaused()
		respond(w, log, map[string]interface{}{
			"totalDistributed": total,
			"paused":           paused,
		}, true, err)
	})

	return mux
}

func assetParam(w http.ResponseWriter, r *http.Request) (royalty.AssetID, bool) {
	id, err := strconv.ParseUint(r.PathValue("asset"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid asset id"})
		return 0, false
	}
	return royalty.AssetID(id), true
}

// respond maps a ledger result onto an HTTP reply.
func respond(w http.ResponseWriter, log *zap.Logger, v interface{}, found bool, err error) {
	switch {
	case err != nil:
		kind := ledger.ErrorKind(err)
		status := http.StatusUnprocessableEntity
		switch kind {
		case "not_authorized":
			status = http.StatusForbidden
		case "asset_not_found":
			status = http.StatusNotFound
		case "already_exists":
			status = http.StatusConflict
		case "transfer_failed":
			status = http.StatusBadGateway
		case "internal":
			status = http.StatusInternalServerError
			log.Error("request failed", zap.Error(err))
		}
		writeJSON(w, status, errorResponse{Error: err.Error(), Kind: kind})
	case !found:
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	default:
		writeJSON(w, http.StatusOK, v)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
