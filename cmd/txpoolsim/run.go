package main

import (
	"context"
	"fmt"
	"io"
	"math/big"
	"os"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/NomicFoundation/hardhat-sub012/core"
	"github.com/NomicFoundation/hardhat-sub012/core/types"
	"github.com/NomicFoundation/hardhat-sub012/internal/cli"
	txpoolconfig "github.com/NomicFoundation/hardhat-sub012/internal/configs/txpool"
	"github.com/NomicFoundation/hardhat-sub012/internal/utils"
)

var runCmd = &cobra.Command{
	Use:   "run <scenario.toml>",
	Short: "run a scenario against a fresh transaction pool",
	Long: "run submits the transactions of the scenario in file order, prints the pool " +
		"and builds the requested number of blocks, applying each to the world state.",
	Args: cobra.ExactArgs(1),
	RunE: runScenario,
}

var (
	blocksFlag = cli.IntFlag{
		Name:     "blocks",
		Usage:    "number of blocks to build after submitting the transactions",
		DefValue: 1,
	}
	gasBudgetFlag = cli.Uint64Flag{
		Name:     "gas",
		Usage:    "gas budget of each block, 0 uses the pool block gas limit",
		DefValue: 0,
	}
	metricsFlag = cli.BoolFlag{
		Name:     "metrics",
		Usage:    "print the pool metrics after the run",
		DefValue: false,
	}
	jsonFlag = cli.BoolFlag{
		Name:     "json",
		Usage:    "print the final pool content as json",
		DefValue: false,
	}
)

func registerRunFlags() error {
	return cli.RegisterFlags(runCmd, []cli.Flag{blocksFlag, gasBudgetFlag, metricsFlag, jsonFlag})
}

type simOptions struct {
	blocks    int
	gasBudget uint64
	metrics   bool
	json      bool
}

// simResult summarizes a run for callers other than the terminal.
type simResult struct {
	accepted int
	rejected map[int]error // by transaction index in the scenario
	blocks   []types.PoolTransactions
	pending  map[common.Address]types.PoolTransactions
	queued   map[common.Address]types.PoolTransactions

	errorReports int // entries in the pool error sink at the end of the run
}

func runScenario(cmd *cobra.Command, args []string) error {
	config, err := getConfig(cmd)
	if err != nil {
		return err
	}
	setupLog(cmd, config)

	sc, err := loadScenario(args[0])
	if err != nil {
		return err
	}
	opts := simOptions{
		blocks:    cli.GetIntFlagValue(cmd, blocksFlag),
		gasBudget: cli.GetUint64FlagValue(cmd, gasBudgetFlag),
		metrics:   cli.GetBoolFlagValue(cmd, metricsFlag),
		json:      cli.GetBoolFlagValue(cmd, jsonFlag),
	}
	_, err = simulate(cmd.Context(), config, sc, opts, os.Stdout)
	return err
}

func simulate(ctx context.Context, config txpoolconfig.Config, sc *scenario, opts simOptions, w io.Writer) (*simResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	order, err := config.SelectionOrder()
	if err != nil {
		return nil, err
	}
	baseFee, err := config.BaseFee()
	if err != nil {
		return nil, err
	}
	accounts, err := sc.accounts()
	if err != nil {
		return nil, err
	}
	names := make(map[common.Address]string, len(accounts))
	ws := newMemWorldState()
	for _, acc := range accounts {
		ws.setAccount(acc.address, acc.nonce, acc.balance)
		names[acc.address] = acc.name
	}

	poolConfig := config.TxPoolConfig()
	pool := core.NewTxPool(poolConfig, ws, nil)
	service := core.NewTxPoolService(pool)
	service.Start()
	defer service.Stop()

	signer := ethtypes.LatestSignerForChainID(poolConfig.ChainID)
	result := &simResult{rejected: make(map[int]error)}

	for i, stx := range sc.Transactions {
		acc, ok := accounts[stx.From]
		if !ok && stx.Raw == "" {
			return nil, errors.Errorf("transaction %d: unknown account %q", i, stx.From)
		}
		tx, err := stx.build(acc, signer, poolConfig.ChainID)
		if err != nil {
			return nil, errors.Wrapf(err, "transaction %d", i)
		}
		var ptx *types.PoolTransaction
		err = service.Do(ctx, func(pool *core.TxPool) error {
			var err error
			ptx, err = pool.AddTransaction(ctx, tx)
			return err
		})
		if err != nil {
			result.rejected[i] = err
			fmt.Fprintf(w, "tx %d %s: rejected: %v\n", i, tx.Hash().Hex(), err)
			continue
		}
		result.accepted++
		fmt.Fprintf(w, "tx %d %s: accepted from %s nonce %d\n",
			i, ptx.Hash().Hex(), nameOf(names, ptx.Sender()), ptx.Nonce())
	}
	if err := printPool(ctx, service, names, w); err != nil {
		return nil, err
	}

	feePolicy := core.NewDefaultFeePolicy()
	for b := 1; b <= opts.blocks; b++ {
		var block types.PoolTransactions
		err := service.Do(ctx, func(pool *core.TxPool) error {
			budget := opts.gasBudget
			if budget == 0 {
				budget = pool.GetBlockGasLimit()
			}
			block = buildBlock(pool.BuildSelectionQueue(order, baseFee), budget, baseFee)
			return nil
		})
		if err != nil {
			return nil, err
		}
		result.blocks = append(result.blocks, block)

		fmt.Fprintf(w, "block %d: %d transactions\n", b, len(block))
		for _, tx := range block {
			fmt.Fprintf(w, "  %s nonce %d gas %d order %d\n",
				nameOf(names, tx.Sender()), tx.Nonce(), tx.GasLimit(), tx.OrderID())
			ws.charge(tx.Sender(), blockFee(feePolicy, tx, baseFee), tx.Value())
		}
		err = service.Do(ctx, func(pool *core.TxPool) error {
			for _, tx := range block {
				pool.RemoveTransaction(tx.Hash())
			}
			return pool.UpdatePendingAndQueued(ctx)
		})
		if err != nil {
			return nil, err
		}
		if err := printPool(ctx, service, names, w); err != nil {
			return nil, err
		}
	}

	err = service.Do(ctx, func(pool *core.TxPool) error {
		result.pending, result.queued = pool.Content()
		result.errorReports = pool.TxErrorSink().Count()
		return nil
	})
	if err != nil {
		return nil, err
	}
	if opts.json {
		if err := printJSON(w, result, names); err != nil {
			return nil, err
		}
	}
	if opts.metrics {
		if err := printMetrics(w); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// buildBlock drains q into a block of at most gasBudget gas. A transaction
// that does not fit, or cannot pay the base fee, excludes every later
// transaction of its sender.
func buildBlock(q *core.TxSelectionQueue, gasBudget uint64, baseFee *big.Int) types.PoolTransactions {
	var block types.PoolTransactions
	remaining := gasBudget
	for tx := q.NextTransaction(); tx != nil; tx = q.NextTransaction() {
		if tx.GasLimit() > remaining || (baseFee != nil && tx.GasFeeCap().Cmp(baseFee) < 0) {
			q.RemoveLastSenderTransactions()
			continue
		}
		remaining -= tx.GasLimit()
		block = append(block, tx)
	}
	return block
}

// blockFee is the amount charged for including tx: its full gas limit at the
// price paid under baseFee.
func blockFee(feePolicy core.FeePolicy, tx *types.PoolTransaction, baseFee *big.Int) *big.Int {
	price := tx.GasFeeCap()
	if baseFee != nil {
		fee, _ := uint256.FromBig(baseFee)
		tip := feePolicy.EffectiveTip(tx, fee)
		price = new(big.Int).Add(baseFee, tip.ToBig())
	}
	return new(big.Int).Mul(price, new(big.Int).SetUint64(tx.GasLimit()))
}

func printPool(ctx context.Context, service *core.TxPoolService, names map[common.Address]string, w io.Writer) error {
	var pending, queued map[common.Address]types.PoolTransactions
	err := service.Do(ctx, func(pool *core.TxPool) error {
		pending, queued = pool.Content()
		return nil
	})
	if err != nil {
		return err
	}
	printContent(w, "pending", pending, names)
	printContent(w, "queued", queued, names)
	return nil
}

func printContent(w io.Writer, label string, content map[common.Address]types.PoolTransactions, names map[common.Address]string) {
	addrs := make([]common.Address, 0, len(content))
	for addr := range content {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool {
		return nameOf(names, addrs[i]) < nameOf(names, addrs[j])
	})
	for _, addr := range addrs {
		fmt.Fprintf(w, "%s %s: %v\n", label, nameOf(names, addr), content[addr].Nonces())
	}
}

type jsonTx struct {
	Hash    common.Hash `json:"hash"`
	Nonce   uint64      `json:"nonce"`
	OrderID uint64      `json:"orderId"`
	Gas     uint64      `json:"gas"`
}

type jsonContent struct {
	Blocks  [][]jsonTx          `json:"blocks"`
	Pending map[string][]jsonTx `json:"pending"`
	Queued  map[string][]jsonTx `json:"queued"`
}

func toJSONTxs(txs types.PoolTransactions) []jsonTx {
	out := make([]jsonTx, len(txs))
	for i, tx := range txs {
		out[i] = jsonTx{Hash: tx.Hash(), Nonce: tx.Nonce(), OrderID: tx.OrderID(), Gas: tx.GasLimit()}
	}
	return out
}

func printJSON(w io.Writer, result *simResult, names map[common.Address]string) error {
	content := jsonContent{
		Blocks:  make([][]jsonTx, len(result.blocks)),
		Pending: make(map[string][]jsonTx, len(result.pending)),
		Queued:  make(map[string][]jsonTx, len(result.queued)),
	}
	for i, block := range result.blocks {
		content.Blocks[i] = toJSONTxs(block)
	}
	for addr, txs := range result.pending {
		content.Pending[nameOf(names, addr)] = toJSONTxs(txs)
	}
	for addr, txs := range result.queued {
		content.Queued[nameOf(names, addr)] = toJSONTxs(txs)
	}
	var jsonIter = jsoniter.ConfigCompatibleWithStandardLibrary
	b, err := jsonIter.MarshalIndent(content, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func printMetrics(w io.Writer) error {
	families, err := utils.PromRegistry().Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

func nameOf(names map[common.Address]string, addr common.Address) string {
	if name, ok := names[addr]; ok {
		return name
	}
	return addr.Hex()
}
