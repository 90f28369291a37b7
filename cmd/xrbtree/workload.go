package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/benz9527/xrbtree/lib/id"
	"github.com/benz9527/xrbtree/lib/tree"
	"github.com/benz9527/xrbtree/observability"
)

const (
	exporterConsole    = "console"
	exporterPrometheus = "prometheus"
)

type workloadOptions struct {
	total       int
	removeRatio float64
	maxStep     uint32
	checkEvery  int
	stats       bool
	exporter    string
	listen      string
}

var wlOpts = workloadOptions{}

var workloadCmd = &cobra.Command{
	Use:   "workload",
	Short: "Insert shuffled random keys, remove a part of them and validate",
	Args:  cobra.NoArgs,
	RunE:  runWorkload,
}

func init() {
	flags := workloadCmd.Flags()
	flags.IntVar(&wlOpts.total, "total", 100_000, "number of unique keys to insert")
	flags.Float64Var(&wlOpts.removeRatio, "remove-ratio", 0.2, "ratio of the inserted keys to remove, in [0, 1]")
	flags.Uint32Var(&wlOpts.maxStep, "max-step", 128, "max gap between two generated keys")
	flags.IntVar(&wlOpts.checkEvery, "check-every", 0, "validate the tree every N operations, 0 validates at the end only")
	flags.BoolVar(&wlOpts.stats, "stats", false, "record the tree metrics")
	flags.StringVar(&wlOpts.exporter, "exporter", exporterConsole, "metrics exporter: console or prometheus")
	flags.StringVar(&wlOpts.listen, "listen", ":9464", "prometheus metrics address, served until interrupted")
}

func initWorkloadStats(cmd *cobra.Command) (observability.ShutdownFunc, error) {
	var (
		shutdown observability.ShutdownFunc
		err      error
	)
	switch wlOpts.exporter {
	case exporterConsole:
		shutdown, err = observability.NewConsoleMetricsExporter(cmd.OutOrStdout(), time.Minute, 5*time.Second)
	case exporterPrometheus:
		shutdown, err = observability.NewPrometheusMetricsExporter()
	default:
		err = fmt.Errorf("[xrbtree] unknown metrics exporter %q", wlOpts.exporter)
	}
	if err != nil {
		return nil, err
	}
	if err = observability.InitAppStats("workload"); err != nil {
		_ = shutdown(context.Background())
		return nil, err
	}
	return shutdown, nil
}

func runWorkload(cmd *cobra.Command, _ []string) error {
	if wlOpts.total <= 0 {
		return fmt.Errorf("[xrbtree] total must be positive, got %d", wlOpts.total)
	}
	if wlOpts.removeRatio < 0 || wlOpts.removeRatio > 1 {
		return fmt.Errorf("[xrbtree] remove ratio must be in [0, 1], got %v", wlOpts.removeRatio)
	}

	opts := []tree.RBTreeOpt[uint64, uint64]{
		tree.WithRBTreeLogger[uint64, uint64](logger),
	}
	if wlOpts.stats {
		shutdown, err := initWorkloadStats(cmd)
		if err != nil {
			return err
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logger.Error(err, "[xrbtree] metrics exporter shutdown failed")
			}
		}()
		opts = append(opts, tree.WithRBTreeStats[uint64, uint64]("workload"))
	}

	gen, err := id.MonotonicRandomStepID(wlOpts.maxStep)
	if err != nil {
		return err
	}
	keys := lo.Shuffle(lo.Times(wlOpts.total, func(int) uint64 {
		return gen.Number()
	}))

	rbt := tree.NewRBTree[uint64, uint64](opts...)
	check := func(op string, n int) error {
		if wlOpts.checkEvery <= 0 || n%wlOpts.checkEvery != 0 {
			return nil
		}
		if err := tree.Validate(rbt); err != nil {
			return fmt.Errorf("[xrbtree] %s #%d: %w", op, n, err)
		}
		return nil
	}

	start := time.Now()
	for i, k := range keys {
		if _, _, err = rbt.Put(k, uint64(i)); err != nil {
			return err
		}
		if err = check("put", i+1); err != nil {
			return err
		}
	}
	insertElapsed := time.Since(start)

	removeTotal := int(float64(wlOpts.total) * wlOpts.removeRatio)
	start = time.Now()
	for i, k := range lo.Shuffle(keys)[:removeTotal] {
		_, removed, err := rbt.Remove(k)
		if err != nil {
			return err
		}
		if !removed {
			return fmt.Errorf("[xrbtree] key %d is lost before removal", k)
		}
		if err = check("remove", i+1); err != nil {
			return err
		}
	}
	removeElapsed := time.Since(start)

	if err = tree.Validate(rbt); err != nil {
		return err
	}
	if expected := int64(wlOpts.total - removeTotal); rbt.Len() != expected {
		return fmt.Errorf("[xrbtree] len is %d, expected %d", rbt.Len(), expected)
	}

	logger.Info("[xrbtree] workload done",
		zap.Int("total", wlOpts.total),
		zap.Int("removed", removeTotal),
		zap.Int64("len", rbt.Len()),
		zap.Duration("insert", insertElapsed),
		zap.Duration("remove", removeElapsed),
	)
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "total=%d removed=%d len=%d\n", wlOpts.total, removeTotal, rbt.Len())

	if wlOpts.stats && wlOpts.exporter == exporterPrometheus {
		return serveMetrics(cmd.Context(), wlOpts.listen)
	}
	return nil
}

func serveMetrics(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errC := make(chan error, 1)
	go func() {
		errC <- srv.ListenAndServe()
	}()
	logger.Info("[xrbtree] serving metrics", zap.String("addr", addr))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errC:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
