package fx

import (
	"forge-build-publisher/internal/pkg/amqpclient"

	"go.uber.org/fx"
)

var Module = fx.Module(
	"amqp",
	fx.Provide(amqpclient.NewAMQP),
)
