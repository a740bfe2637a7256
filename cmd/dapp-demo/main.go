package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"moff.io/dapp-demo/internal/config"
	"moff.io/dapp-demo/internal/databus"
	"moff.io/dapp-demo/internal/http"
	"moff.io/dapp-demo/internal/i18n"
	"moff.io/dapp-demo/internal/panels"
	"moff.io/dapp-demo/internal/provider/rpcnode"
	"moff.io/dapp-demo/internal/provider/simulated"
	"moff.io/dapp-demo/internal/starter"
	"moff.io/dapp-demo/internal/wallet"
	"moff.io/dapp-demo/internal/walletconnect"
	"moff.io/dapp-demo/pkg/errors"
	"moff.io/dapp-demo/pkg/log"
)

func main() {
	log.Infof("Starting app")
	startApp()
}

func startApp() {
	defer func() {
		if i := recover(); i != nil {
			log.Fatal(errors.ErrorfAndReport("%v", i))
		}
	}()
	config.Read()
	cfg := config.Global
	log.SetLevel(cfg.LogLevel)
	installReporters(cfg)
	defer errors.FlushSentry(2 * time.Second)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tr := i18n.New(cfg.Locale)
	provider, err := newProvider(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	session := wallet.NewSession(provider,
		wallet.WithTranslator(tr),
		wallet.WithRequestTimeout(cfg.Wallet.RequestTimeout))

	registrar, err := panels.NewRegistrar(cfg.Panels.NodeID, tr)
	if err != nil {
		log.Fatal(err)
	}
	bus, err := databus.New(cfg.Kafka.Servers)
	if err != nil {
		log.Fatal(err)
	}
	server := http.NewServer(cfg.Server, session, registrar,
		panels.NewUploader(cfg.Panels.Upload, tr),
		panels.NewRegistry(cfg.Panels.Registry.Delay, tr))

	var elems []starter.Startable
	if startable, ok := provider.(starter.Startable); ok {
		elems = append(elems, startable)
	}
	elems = append(elems,
		session,
		databus.NewSessionSink(bus, cfg.Kafka.Topic, session),
		server,
	)
	if err := starter.Start(ctx, elems...); err != nil {
		log.Fatal(err)
	}

	<-ctx.Done()
	log.Info("Shutting down")
	starter.Stop(elems...)
}

func installReporters(cfg *config.Configuration) {
	r := cfg.Reporters
	if err := errors.NewSentryReporter(r.SentryDSN, cfg.Environment); err != nil {
		log.Error(err)
	}
	errors.NewLarkReporter(r.LarkWebhook, r.SilentPerStack)
	errors.NewDingTalkReporter(r.DingTalkWebhook, r.DingTalkSecret, r.SilentPerStack)
}

// newProvider returns a nil interface for the none provider.
func newProvider(ctx context.Context, cfg *config.Configuration) (wallet.Provider, error) {
	switch cfg.Wallet.Provider {
	case config.ProviderSimulated:
		return simulated.New(cfg.Wallet.Simulated), nil
	case config.ProviderRPC:
		p, err := rpcnode.Dial(ctx, cfg.Wallet.RPC)
		if err != nil {
			return nil, err
		}
		return p, nil
	case config.ProviderWalletConnect:
		return walletconnect.New(cfg.Wallet.WalletConnect, nil), nil
	default:
		return nil, nil
	}
}
