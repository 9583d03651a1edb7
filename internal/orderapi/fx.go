package orderapi

import "go.uber.org/fx"

// Module wires the order service client.
var Module = fx.Module("orderapi",
	fx.Provide(
		NewClient,
		func(c *Client) Service { return c },
	),
)
