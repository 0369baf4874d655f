package main

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/Veraticus/kuota/internal/config"
	"github.com/Veraticus/kuota/internal/decoy"
	"github.com/Veraticus/kuota/internal/engsel"
	"github.com/Veraticus/kuota/internal/model"
	"github.com/Veraticus/kuota/internal/purchase"
	"github.com/Veraticus/kuota/internal/service"
	"github.com/Veraticus/kuota/internal/storage"
)

// initStorage opens the database and brings its schema up to date.
func initStorage(ctx context.Context) (service.Storage, error) {
	store, err := storage.NewSQLiteStorage(config.DatabasePath())
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

func closeStorage(store service.Storage) {
	if err := store.Close(); err != nil {
		slog.Error("failed to close storage", "error", err)
	}
}

// initClient builds a backend client for the configured session.
func initClient() (*engsel.Client, model.Session, error) {
	apiCfg, err := config.LoadAPIConfig()
	if err != nil {
		return nil, model.Session{}, err
	}
	session, err := config.LoadSession()
	if err != nil {
		return nil, model.Session{}, err
	}
	return engsel.NewClient(*apiCfg, session), session, nil
}

// purchaseMethod describes one value of buy --method.
type purchaseMethod struct {
	strategy purchase.DecoyStrategy
	decoy    bool
}

var purchaseMethods = map[string]purchaseMethod{
	"balance":          {strategy: purchase.BalanceDecoyV2},
	"qris":             {strategy: purchase.QRISDecoyV2},
	"balance-decoy":    {strategy: purchase.BalanceDecoy, decoy: true},
	"balance-decoy-v2": {strategy: purchase.BalanceDecoyV2, decoy: true},
	"qris-decoy":       {strategy: purchase.QRISDecoy, decoy: true},
	"qris-decoy-v2":    {strategy: purchase.QRISDecoyV2, decoy: true},
	"ewallet":          {strategy: purchase.DecoyStrategy{Name: "ewallet", Method: purchase.MethodEWallet}},
}

func methodNames() []string {
	names := make([]string, 0, len(purchaseMethods))
	for name := range purchaseMethods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookupMethod(name string) (purchaseMethod, error) {
	m, ok := purchaseMethods[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return purchaseMethod{}, fmt.Errorf("unknown method %q (expected one of: %s)", name, strings.Join(methodNames(), ", "))
	}
	return m, nil
}

// settlerFor picks the settlement endpoint matching the strategy's method.
// wallet is only read for e-wallet purchases.
func settlerFor(client *engsel.Client, strategy purchase.DecoyStrategy, wallet engsel.EWallet) service.SettlementInvoker {
	switch strategy.Method {
	case purchase.MethodQRIS:
		return client.QRISSettler()
	case purchase.MethodEWallet:
		return client.EWalletSettler(wallet)
	default:
		return client.BalanceSettler()
	}
}

// newPurchaser wires the purchase procedure to the backend and the
// configured decoy table.
func newPurchaser(client *engsel.Client, strategy purchase.DecoyStrategy, wallet engsel.EWallet) *purchase.Purchaser {
	resolver := decoy.NewConfigResolver(config.LoadDecoyChannels())
	bundler := purchase.NewBundler(resolver, client)
	return purchase.NewPurchaser(client, settlerFor(client, strategy, wallet), bundler, strategy)
}
