package payment

import (
	"github.com/Tijo-11/Vector-Ecom-sub001/internal/config"
	"github.com/Tijo-11/Vector-Ecom-sub001/internal/payment/adapters"
	"github.com/Tijo-11/Vector-Ecom-sub001/internal/payment/adapters/cardgate"
	"github.com/Tijo-11/Vector-Ecom-sub001/internal/payment/adapters/paypal"
	"github.com/Tijo-11/Vector-Ecom-sub001/internal/payment/domain"
	"github.com/Tijo-11/Vector-Ecom-sub001/internal/payment/reconcile"
	"github.com/Tijo-11/Vector-Ecom-sub001/internal/payment/repository"
	"github.com/Tijo-11/Vector-Ecom-sub001/internal/payment/verify"
	"go.uber.org/fx"
)

var Module = fx.Module("payment",
	fx.Provide(repository.Provide),
	fx.Provide(func() *adapters.Registry {
		return adapters.NewRegistry(
			cardgate.NewFactory(),
			paypal.NewFactory(),
		)
	}),
	fx.Provide(ProvideAdapterConfigs),
	fx.Provide(ProvideReconcileConfig),
	fx.Provide(verify.NewService),
	fx.Provide(func(s *verify.Service) domain.Verifier { return s }),
	fx.Provide(reconcile.NewEngine),
	fx.Provide(func(e *reconcile.Engine) domain.Starter { return e }),
)

// ProvideAdapterConfigs maps provider names onto their webhook secrets.
func ProvideAdapterConfigs(cfg config.Config) map[string]domain.AdapterConfig {
	return map[string]domain.AdapterConfig{
		"cardgate": {WebhookSecret: cfg.Webhook.CardGateSecret},
		"paypal":   {WebhookSecret: cfg.Webhook.PayPalSecret},
	}
}

// ProvideReconcileConfig applies environment overrides on top of policy
// defaults.
func ProvideReconcileConfig(cfg config.Config) reconcile.Config {
	return reconcile.Config{
		MaxAttempts:  cfg.Reconcile.MaxAttempts,
		InitialDelay: cfg.Reconcile.InitialDelay,
		RetryDelay:   cfg.Reconcile.RetryDelay,
		LockTTL:      cfg.Reconcile.LockTTL,
	}
}
