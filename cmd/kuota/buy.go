package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Veraticus/kuota/internal/cli"
	"github.com/Veraticus/kuota/internal/common"
	"github.com/Veraticus/kuota/internal/engsel"
	"github.com/Veraticus/kuota/internal/model"
	"github.com/Veraticus/kuota/internal/purchase"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func buyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "buy <option-code>",
		Short: "Buy a package, optionally several times",
		Long: `Buy a package by its option code.

With --count the purchase is repeated sequentially, waiting --delay seconds
between attempts. Every attempt runs even if an earlier one fails. When the
backend rejects the total of a decoy bundle and reports the amount it
expects, the attempt is retried once with that amount.

Methods:
  balance, qris                      pay for the package alone (--decoy adds one)
  balance-decoy, qris-decoy          bundle a decoy, signed by the package
  balance-decoy-v2, qris-decoy-v2    bundle a decoy, signed by the decoy
  ewallet                            pay with --wallet (DANA, OVO, GOPAY, SHOPEEPAY);
                                     DANA and OVO also need --wallet-number`,
		Args: cobra.ExactArgs(1),
		RunE: runBuy,
	}

	cmd.Flags().String("method", "balance", "payment method")
	cmd.Flags().String("count", "", "number of purchases (prompted when omitted)")
	cmd.Flags().String("delay", "", "seconds to wait between purchases; non-numeric means 0")
	cmd.Flags().Bool("decoy", false, "bundle a decoy with every purchase")
	cmd.Flags().Bool("no-prompt", false, "never prompt; use flags, config, or defaults")
	cmd.Flags().String("wallet", "", "e-wallet provider for --method ewallet")
	cmd.Flags().String("wallet-number", "", "phone number registered with the e-wallet")

	_ = viper.BindPFlag("buy.count", cmd.Flags().Lookup("count"))
	_ = viper.BindPFlag("buy.delay", cmd.Flags().Lookup("delay"))
	_ = viper.BindPFlag("buy.decoy", cmd.Flags().Lookup("decoy"))

	return cmd
}

func runBuy(cmd *cobra.Command, args []string) error {
	optionCode := args[0]
	console := cli.NewConsole(cmd.OutOrStdout())

	methodName, _ := cmd.Flags().GetString("method")
	method, err := lookupMethod(methodName)
	if err != nil {
		return common.NewUserError(err.Error(), err)
	}

	var wallet engsel.EWallet
	if method.strategy.Method == purchase.MethodEWallet {
		provider, _ := cmd.Flags().GetString("wallet")
		number, _ := cmd.Flags().GetString("wallet-number")
		wallet, err = engsel.NewEWallet(provider, number)
		if err != nil {
			return common.NewUserError(err.Error(), err)
		}
		if viper.GetBool("buy.decoy") {
			return common.NewUserError("E-wallet purchases cannot carry a decoy", common.ErrDecoyUnavailable)
		}
	}

	interrupts := cli.NewInterruptHandler(console, "Finished attempts were recorded. Review them with: kuota history")
	ctx := interrupts.Watch(cmd.Context())
	defer interrupts.Stop()

	noPrompt, _ := cmd.Flags().GetBool("no-prompt")
	canDecoy := method.strategy.Method != purchase.MethodEWallet
	settings := buySettings{
		count:    viper.GetString("buy.count"),
		delay:    viper.GetString("buy.delay"),
		decoy:    viper.GetBool("buy.decoy") || method.decoy,
		askCount: !noPrompt && !viper.IsSet("buy.count") && !cmd.Flags().Changed("count"),
		askDelay: !noPrompt && !viper.IsSet("buy.delay") && !cmd.Flags().Changed("delay"),
		askDecoy: !noPrompt && canDecoy && !method.decoy && !viper.IsSet("buy.decoy") && !cmd.Flags().Changed("decoy"),
	}
	opts, err := settings.resolve(ctx, cli.NewPrompter(cmd.InOrStdin(), console))
	if err != nil {
		if interrupts.Interrupted() {
			return nil
		}
		return err
	}

	client, _, err := initClient()
	if err != nil {
		return err
	}
	defer client.Close()

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer closeStorage(store)

	purchaser := newPurchaser(client, method.strategy, wallet)
	job := &batchJob{
		out:        console,
		store:      store,
		optionCode: optionCode,
		method:     methodName,
		opts:       opts,
		attempt:    purchaser.Attempt(optionCode, opts.UseDecoy),
	}
	if method.strategy.Method == purchase.MethodQRIS {
		job.qris = client
	}

	run, err := job.run(ctx)
	if run != nil {
		console.Exclusive(func(w io.Writer) {
			if renderErr := cli.RenderBatchSummary(w, run); renderErr != nil {
				slog.Warn("Failed to write batch summary", "error", renderErr)
			}
		})
	}
	if err != nil && interrupts.Interrupted() && errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// buySettings collects the batch parameters from flags, config, and prompts.
type buySettings struct {
	count    string
	delay    string
	decoy    bool
	askCount bool
	askDelay bool
	askDecoy bool
}

func (s buySettings) resolve(ctx context.Context, p *cli.Prompter) (purchase.BatchOptions, error) {
	countText := s.count
	if s.askCount {
		answer, err := p.Ask(ctx, "Jumlah pembelian", "1")
		if err != nil {
			return purchase.BatchOptions{}, err
		}
		countText = answer
	}
	if countText == "" {
		countText = "1"
	}
	count, err := purchase.ParseCount(countText)
	if err != nil {
		return purchase.BatchOptions{}, common.NewUserError(
			fmt.Sprintf("Purchase count must be a whole number of at least 1, got %q", countText), err)
	}

	delayText := s.delay
	if s.askDelay && count > 1 {
		answer, err := p.Ask(ctx, "Jeda antar pembelian dalam detik", "0")
		if err != nil {
			return purchase.BatchOptions{}, err
		}
		delayText = answer
	}

	useDecoy := s.decoy
	if s.askDecoy {
		useDecoy, err = p.Confirm(ctx, "Gunakan decoy?", false)
		if err != nil {
			return purchase.BatchOptions{}, err
		}
	}

	return purchase.BatchOptions{
		Count:    count,
		Delay:    purchase.ParseDelay(delayText),
		UseDecoy: useDecoy,
	}, nil
}

type recordSaver interface {
	SavePurchaseRecord(ctx context.Context, record *model.PurchaseRecord) error
}

type qrisFetcher interface {
	GetQRISCode(ctx context.Context, transactionID string) (string, error)
}

// batchJob runs one buy command: the attempts, their on-screen report, and
// their history records.
type batchJob struct {
	out        *cli.Console
	store      recordSaver
	qris       qrisFetcher
	sleeper    purchase.Sleeper
	attempt    purchase.AttemptFunc
	batchID    string
	optionCode string
	method     string
	opts       purchase.BatchOptions
}

func (j *batchJob) run(ctx context.Context) (*model.BatchRun, error) {
	var reporter *cli.BatchReporter
	defer func() {
		if reporter != nil {
			reporter.Close()
		}
	}()

	runnerOpts := []purchase.RunnerOption{
		purchase.WithStart(func(run *model.BatchRun) {
			j.batchID = run.ID
			reporter = cli.NewBatchReporter(j.out, run.Count, fmt.Sprintf("Membeli %s...", j.optionCode))
		}),
		purchase.WithObserver(func(attempt int, result model.SettlementResult, err error) {
			reporter.Observe(attempt, result, err)
			j.record(ctx, attempt, result)
			j.showQRIS(ctx, result)
		}),
	}
	if j.batchID != "" {
		id := j.batchID
		runnerOpts = append(runnerOpts, purchase.WithIDGenerator(func() string { return id }))
	}
	if j.sleeper != nil {
		runnerOpts = append(runnerOpts, purchase.WithSleeper(j.sleeper))
	}

	return purchase.NewRunner(runnerOpts...).Run(ctx, j.opts, j.attempt)
}

// record persists an attempt. History is best effort and never stops a batch.
func (j *batchJob) record(ctx context.Context, attempt int, result model.SettlementResult) {
	err := j.store.SavePurchaseRecord(context.WithoutCancel(ctx), &model.PurchaseRecord{
		BatchID:     j.batchID,
		Attempt:     attempt,
		OptionCode:  j.optionCode,
		Method:      j.method,
		Status:      result.Status,
		Message:     result.Message,
		TotalAmount: result.Amount,
		Retried:     result.Retried,
		CreatedAt:   time.Now(),
	})
	if err != nil {
		common.LogError(err, "Failed to record purchase attempt", common.Fields{
			"batch_id": j.batchID,
			"attempt":  attempt,
		})
	}
}

func (j *batchJob) showQRIS(ctx context.Context, result model.SettlementResult) {
	if j.qris == nil || !result.Succeeded() || result.TransactionID == "" {
		return
	}
	code, err := j.qris.GetQRISCode(ctx, result.TransactionID)
	if err != nil {
		common.LogError(err, "Failed to fetch QRIS code", common.Fields{"transaction_id": result.TransactionID})
		return
	}
	j.out.Print(cli.RenderBox("QRIS "+result.TransactionID, code))
}
