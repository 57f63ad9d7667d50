package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/iqbalbaharum/transitive-swap-router/internal/adapter"
	"github.com/iqbalbaharum/transitive-swap-router/internal/config"
	"github.com/iqbalbaharum/transitive-swap-router/internal/executor"
	"github.com/iqbalbaharum/transitive-swap-router/internal/generators"
	"github.com/iqbalbaharum/transitive-swap-router/internal/handler"
	"github.com/iqbalbaharum/transitive-swap-router/internal/instructions"
	"github.com/iqbalbaharum/transitive-swap-router/internal/logger"
	"github.com/iqbalbaharum/transitive-swap-router/internal/market"
	"github.com/iqbalbaharum/transitive-swap-router/internal/metrics"
	"github.com/iqbalbaharum/transitive-swap-router/internal/pool"
	"github.com/iqbalbaharum/transitive-swap-router/internal/router"
	"github.com/iqbalbaharum/transitive-swap-router/internal/rpc"
	"github.com/iqbalbaharum/transitive-swap-router/internal/storage"
	"github.com/iqbalbaharum/transitive-swap-router/internal/tracker"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

const migrationsDir = "migrations"

func main() {
	if err := config.InitEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Option{Level: config.LogLevel, File: config.LogFile, Compress: true})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("runtime",
		zap.Int("cpus", runtime.NumCPU()),
		zap.Int("gomaxprocs", runtime.GOMAXPROCS(0)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, log); err != nil {
		log.Error("router stopped", zap.Error(err))
		stop()
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, log *zap.Logger) error {
	if err := adapter.InitRedisClients(ctx, config.RedisAddr, config.RedisPassword); err != nil {
		return fmt.Errorf("failed to initialize Redis clients: %w", err)
	}
	defer adapter.CloseRedisClients()

	if err := adapter.InitMySQLClient(ctx, config.MySqlDsn, config.MySqlDbName, migrationsDir); err != nil {
		return fmt.Errorf("failed to initialize SQL client: %w", err)
	}

	mySqlClient, err := adapter.GetMySQLClient()
	if err != nil {
		return err
	}
	defer mySqlClient.Close()

	storage.Init(mySqlClient)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	if err := metrics.Register(reg); err != nil {
		return err
	}

	log.Info("initialized environment",
		zap.String("mode", config.ExecutionMode),
		zap.String("sender", config.Sender))

	rpcClient := rpc.NewClient(config.RpcHttpUrl)

	var grpcClient *generators.GrpcClient
	if config.GRPC.Addr != "" {
		grpcClient, err = generators.GrpcConnect(config.GRPC.Addr, config.GRPC.InsecureConnection, config.GrpcToken, log.Named("grpc"))
		if err != nil {
			return fmt.Errorf("error in GRPC connection: %w", err)
		}
		defer grpcClient.CloseConnection()
	}

	sender, closeSender := newSender(rpcClient, log)
	defer closeSender()

	exec, err := newExecutor(rpcClient, grpcClient, sender, log)
	if err != nil {
		return err
	}

	processor := router.NewProcessor(exec,
		router.WithExchangeRate(config.MinExchangeRate, config.StrictRate),
		router.WithLogger(log.Named("router")))

	marketCache, err := adapter.GetRedisClient(adapter.REDIS_DB_MARKET)
	if err != nil {
		return err
	}

	routes := handler.CreateRoutes(handler.Dependencies{
		Processor: processor,
		Resolver:  market.NewResolver(rpcClient, marketCache, config.DexProgramId, log.Named("market")),
		Store:     storage.Swap,
		RouterProgram: handler.RouterProgram{
			ID:          config.RouterProgramId,
			SwapProgram: config.SwapProgramId,
		},
		Gatherer: reg,
		Logger:   log.Named("http"),
	})

	var wg sync.WaitGroup

	if config.FlagTracker {
		if err := startTracker(ctx, &wg, grpcClient, rpcClient, log); err != nil {
			return err
		}
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", config.Port),
		Handler:           routes,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server running", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("server shutdown", zap.Error(err))
	}

	wg.Wait()
	return nil
}

func newSender(rpcClient *rpc.Client, log *zap.Logger) (rpc.Sender, func()) {
	switch config.Sender {
	case config.SENDER_JITO:
		return rpc.NewJitoClient(config.BLOCKENGINE_URL), func() {}
	case config.SENDER_BLOXROUTE:
		return rpc.NewBloxRouteClient(config.BloxRouteUrl, config.BloxRouteToken, true), func() {}
	case config.SENDER_ALL:
		senders := []rpc.Sender{rpcClient}
		if config.BLOCKENGINE_URL != "" {
			senders = append(senders, rpc.NewJitoClient(config.BLOCKENGINE_URL))
		}
		if config.BloxRouteUrl != "" {
			senders = append(senders, rpc.NewBloxRouteClient(config.BloxRouteUrl, config.BloxRouteToken, true))
		}
		broadcast := pool.NewBroadcastPool(senders, log.Named("broadcast"))
		return broadcast, broadcast.Close
	default:
		return rpcClient, func() {}
	}
}

func newExecutor(rpcClient *rpc.Client, grpcClient *generators.GrpcClient, sender rpc.Sender, log *zap.Logger) (*executor.Executor, error) {
	var blockhash executor.BlockhashSource = rpcClient
	if grpcClient != nil {
		blockhash = grpcClient
	}

	opts := []executor.Option{
		executor.WithRouterProgram(config.RouterProgramId),
		executor.WithCompute(instructions.ComputeUnit{
			Units:         config.ComputeLimit,
			MicroLamports: config.ComputePrice,
		}),
		executor.WithRecorder(storage.Swap),
		executor.WithLogger(log.Named("executor")),
	}

	if config.Authority != nil {
		opts = append(opts, executor.WithSigners(config.Authority.PrivateKey))
	}

	if config.Sender == config.SENDER_BLOXROUTE || config.Sender == config.SENDER_ALL {
		opts = append(opts, executor.WithMemo(config.BLOXROUTE_MEMO, config.BLOXROUTE_MEMO_TEXT))
	}

	if config.Simulate {
		opts = append(opts, executor.WithSimulator(rpcClient))
	}

	if config.AwaitConfirm && config.RpcWsUrl != "" {
		opts = append(opts, executor.WithConfirmer(rpc.NewWsRpc(config.RpcWsUrl)))
	}

	return executor.New(config.ExecutionMode, config.Payer.PrivateKey, blockhash, sender, opts...)
}

// startTracker subscribes to transactions mentioning the router program and
// records every decoded router instruction.
func startTracker(ctx context.Context, wg *sync.WaitGroup, grpcClient *generators.GrpcClient, rpcClient *rpc.Client, log *zap.Logger) error {
	lookupClient, err := adapter.GetRedisClient(adapter.REDIS_DB_LOOKUP)
	if err != nil {
		return err
	}

	lookups := tracker.NewLookupTables(storage.NewLookupTableStorage(lookupClient), rpcClient)
	t := tracker.New(config.RouterProgramId, lookups, storage.Swap, log.Named("tracker"))

	txChannel := make(chan generators.GeyserResponse)

	wg.Add(1)
	go func() {
		defer wg.Done()
		t.Run(ctx, txChannel, runtime.NumCPU()*2)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(txChannel)

		err := grpcClient.GrpcSubscribeByAddresses(ctx, "geyser",
			[]string{config.RouterProgramId.String()},
			nil,
			txChannel)
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Error("error in gRPC subscription", zap.Error(err))
		}
	}()

	return nil
}
