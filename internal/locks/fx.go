package locks

import "go.uber.org/fx"

// Module provides the Redis-backed locker.
var Module = fx.Module("locks",
	fx.Provide(NewLocker),
)
