package cart

import (
	cartdomain "github.com/Tijo-11/Vector-Ecom-sub001/internal/cart/domain"
	cartservice "github.com/Tijo-11/Vector-Ecom-sub001/internal/cart/service"
	"go.uber.org/fx"
)

var Module = fx.Module("cart",
	fx.Provide(
		cartservice.NewService,
		func(s *cartservice.Service) cartdomain.Reconciler { return s },
		func(s *cartservice.Service) cartdomain.IdentityMinter { return s },
	),
)
