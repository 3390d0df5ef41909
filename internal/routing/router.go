package routing

import (
	cliffAdapter "github.com/futurehomeno/cliffhanger/adapter"
	"github.com/futurehomeno/cliffhanger/adapter/thing"
	"github.com/futurehomeno/cliffhanger/app"
	cliffConfig "github.com/futurehomeno/cliffhanger/config"
	"github.com/futurehomeno/cliffhanger/lifecycle"
	"github.com/futurehomeno/cliffhanger/router"

	"github.com/futurehomeno/edge-evsewifi-adapter/internal/config"
)

const (
	// ServiceName is the name of the adapter service on the message bus.
	ServiceName = "evsewifi"
	// ResourceName is the default source of messages published by the adapter.
	ResourceName = "evsewifi"
)

// New returns a new routing table.
func New(
	cfgSrv *config.Service,
	appLifecycle *lifecycle.Lifecycle,
	application app.App,
	adapter cliffAdapter.Adapter,
) []*router.Routing {
	return router.Combine(
		[]*router.Routing{
			cliffConfig.RouteCmdLogSetLevel(ServiceName, cfgSrv.SetLogLevel),
			cliffConfig.RouteCmdConfigSetDuration(ServiceName, "polling_interval", cfgSrv.SetPollingInterval),
			cliffConfig.RouteCmdConfigSetDuration(ServiceName, "sign_of_life_interval", cfgSrv.SetSignOfLifeInterval),
			cliffConfig.RouteCmdConfigSetDuration(ServiceName, "http_timeout", cfgSrv.SetHTTPTimeout),
			cliffConfig.RouteCmdConfigSetString(ServiceName, "host", cfgSrv.SetHost),
			cliffConfig.RouteCmdConfigSetString(ServiceName, "mode", cfgSrv.SetMode),
		},
		app.RouteApp(ServiceName, appLifecycle, cfgSrv, config.Factory, nil, application),
		cliffAdapter.RouteAdapter(adapter),
		thing.RouteCarCharger(adapter),
	)
}
