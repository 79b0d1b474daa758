// Command executor wires the on-chain order contract, the AMM adapter, the
// order/event store and the sweep loop together, mirroring the shape of
// the teacher's cmd/main.go (load config → dial RPC → build the tx
// listener → build the domain object → run it against a report channel).
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/Nilupul-byte/limitorderdex/configs"
	"github.com/Nilupul-byte/limitorderdex/internal/amm"
	"github.com/Nilupul-byte/limitorderdex/internal/ethutil"
	"github.com/Nilupul-byte/limitorderdex/internal/executor"
	"github.com/Nilupul-byte/limitorderdex/internal/statusapi"
	"github.com/Nilupul-byte/limitorderdex/internal/store"
	"github.com/Nilupul-byte/limitorderdex/pkg/contractclient"
	"github.com/Nilupul-byte/limitorderdex/pkg/txlistener"
)

func main() {
	conf, err := configs.LoadConfig(envOr("CONFIG_PATH", "configs/config.yml"))
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	client, err := ethclient.Dial(conf.RPC)
	if err != nil {
		log.Fatalf("dial rpc %s: %v", conf.RPC, err)
	}

	contractABI, err := ethutil.LoadABIFromHardhatArtifact(conf.Contract.ABI)
	if err != nil {
		log.Fatalf("load contract abi: %v", err)
	}
	contractAddr := common.HexToAddress(conf.Contract.Address)
	cc := contractclient.NewContractClient(client, contractAddr, contractABI)

	keyPath := conf.Executor.OperatorKeyPath
	passphrase := os.Getenv("OPERATOR_KEY_PASSPHRASE")
	operatorKey, err := ethutil.LoadOperatorKey(keyPath, passphrase)
	if err != nil {
		log.Fatalf("load operator key: %v", err)
	}
	operatorAddr := crypto.PubkeyToAddress(operatorKey.PublicKey)

	db, err := store.Open(fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		envOr("DB_USER", "root"), envOr("DB_PASSWORD", "root"),
		envOr("DB_ADDR", "127.0.0.1:3306"), envOr("DB_NAME", "limitorderdex")))
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer db.Close()

	decimals := amm.StaticDecimalsRegistry{
		"USDC":  6,
		"WEGLD": 18,
	}
	ammAdapter := amm.NewAdapter(cc, decimals)

	listener := txlistener.NewTxListener(client)
	remoteBook := executor.NewRemoteOrderBookClient(cc, operatorKey, operatorAddr, conf.ExecGasOrDefault(),
		executor.WithConfirmation(listener, db))

	index := store.NewIndex()
	book := executor.NewPersistingOrderBookClient(remoteBook, db, index)

	execCfg := conf.ToExecutorConfig()
	execCfg.PoolAddress = resolvePoolAddress(cc)

	pendingOrders, err := book.GetPendingOrders(context.Background())
	if err != nil {
		log.Printf("warning: initial getPendingOrders failed: %v", err)
	} else {
		log.Printf("executor: %d pending orders at startup", len(pendingOrders))
	}

	eng := executor.New(execCfg, book, ammAdapter, operatorAddr, contractAddr, time.Now)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	runDone := make(chan struct{})
	go func() {
		eng.Run(ctx)
		close(runDone)
	}()

	statusSrv := statusapi.New(func() statusapi.Status {
		s := eng.Status()
		return statusapi.Status{
			Running:         s.Running,
			OperatorAddress: s.OperatorAddress,
			CheckIntervalMs: s.CheckIntervalMs,
			CooldownMs:      s.CooldownMs,
			AttemptedCount:  s.AttemptedCount,
			ContractAddress: s.ContractAddress,
		}
	}, execCfg.Enabled)

	addr := envOr("STATUS_ADDR", ":8080")
	httpSrv := &http.Server{Addr: addr, Handler: statusSrv}

	go func() {
		log.Printf("status api listening on %s", addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("status api: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("shutdown signal received, draining in-flight sweep")
	<-runDone

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("status api shutdown: %v", err)
	}
}

// resolvePoolAddress reads the single configured pool (getPool) off the
// order contract at startup, per the spec's single-pair design — the AMM
// adapter never searches for pairs, so the executor must be told which
// pool to query reserves against.
func resolvePoolAddress(cc contractclient.ContractClient) common.Address {
	values, err := cc.Call(nil, "getPool")
	if err != nil || len(values) != 1 {
		log.Printf("warning: getPool failed, pool address unset: %v", err)
		return common.Address{}
	}
	addr, ok := values[0].(common.Address)
	if !ok {
		log.Printf("warning: getPool returned unexpected type %T", values[0])
		return common.Address{}
	}
	return addr
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
