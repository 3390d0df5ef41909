package cmd

import (
	"net/http"
	"strconv"

	"github.com/futurehomeno/cliffhanger/adapter"
	"github.com/futurehomeno/cliffhanger/bootstrap"
	cliffCfg "github.com/futurehomeno/cliffhanger/config"
	"github.com/futurehomeno/cliffhanger/event"
	"github.com/futurehomeno/cliffhanger/lifecycle"
	"github.com/futurehomeno/cliffhanger/manifest"
	cliffRouter "github.com/futurehomeno/cliffhanger/router"
	"github.com/futurehomeno/cliffhanger/task"
	"github.com/futurehomeno/fimpgo"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/futurehomeno/edge-evsewifi-adapter/internal/app"
	"github.com/futurehomeno/edge-evsewifi-adapter/internal/bus"
	"github.com/futurehomeno/edge-evsewifi-adapter/internal/config"
	"github.com/futurehomeno/edge-evsewifi-adapter/internal/evcharger"
	"github.com/futurehomeno/edge-evsewifi-adapter/internal/evse"
	"github.com/futurehomeno/edge-evsewifi-adapter/internal/evsewifi"
	"github.com/futurehomeno/edge-evsewifi-adapter/internal/metrics"
	"github.com/futurehomeno/edge-evsewifi-adapter/internal/routing"
	"github.com/futurehomeno/edge-evsewifi-adapter/internal/tasks"
)

// services is a container for services that are common dependencies.
var services = &serviceContainer{}

// serviceContainer is a type representing a dependency injection container to be used during bootstrap of the application.
type serviceContainer struct {
	configService *config.Service
	lifecycle     *lifecycle.Lifecycle
	mqtt          *fimpgo.MqttTransport

	application    app.Application
	manifestLoader manifest.Loader
	store          *bus.Store
	mirror         *bus.Mirror
	charger        *evcharger.Adapter
	eventManager   event.Manager
	adapter        adapter.Adapter
	thingFactory   adapter.ThingFactory
	adapterState   adapter.State
	httpClient     *http.Client
	evseClient     evse.Client
	metricsServer  *metrics.Server
}

func resetContainer() {
	services = &serviceContainer{}
}

// getConfigService initiates a configuration service and loads the config.
func getConfigService() *config.Service {
	if services.configService == nil {
		workDir := bootstrap.GetConfigurationDirectory()
		cfg := config.New(workDir)
		services.configService = config.NewService(cliffCfg.NewStorage[interface{}](cfg, workDir))

		err := services.configService.Load()
		if err != nil {
			log.WithError(err).Fatal("failed to load configuration")
		}
	}

	return services.configService
}

// getConfig returns the configuration model held by the configuration service.
func getConfig() *config.Config {
	return getConfigService().Model().(*config.Config) //nolint:forcetypeassert
}

// getLifecycle creates or returns existing lifecycle service.
func getLifecycle() *lifecycle.Lifecycle {
	if services.lifecycle == nil {
		services.lifecycle = lifecycle.New()
	}

	return services.lifecycle
}

// getMQTT creates or returns existing MQTT broker service.
func getMQTT(cfg *config.Config) *fimpgo.MqttTransport {
	if services.mqtt == nil {
		services.mqtt = fimpgo.NewMqttTransport(
			cfg.MQTTServerURI,
			cfg.MQTTClientIDPrefix,
			cfg.MQTTUsername,
			cfg.MQTTPassword,
			true,
			1,
			1,
		)
	}

	services.mqtt.SetDefaultSource(routing.ResourceName)

	return services.mqtt
}

// getApplication creates or returns existing application.
func getApplication() app.Application {
	if services.application == nil {
		services.application = app.New(
			getAdapter(),
			getConfigService(),
			getLifecycle(),
			getManifestLoader(),
			getEVSEClient(),
		)
	}

	return services.application
}

// getManifestLoader creates or returns existing application manifestLoader.
func getManifestLoader() manifest.Loader {
	if services.manifestLoader == nil {
		services.manifestLoader = manifest.NewLoader(getConfigService().GetWorkDir())
	}

	return services.manifestLoader
}

// getStore creates or returns existing bus value store of the charger service.
func getStore() *bus.Store {
	if services.store == nil {
		services.store = bus.NewStore(evcharger.ServiceName(getConfigService().GetDeviceInstance()))
	}

	return services.store
}

// getMirror creates or returns existing FIMP mirror of the value store.
func getMirror(cfg *config.Config) *bus.Mirror {
	if services.mirror == nil {
		services.mirror = bus.NewMirror(
			getMQTT(cfg),
			getStore(),
			routing.ResourceName,
			strconv.Itoa(getConfigService().GetDeviceInstance()),
		)
	}

	return services.mirror
}

// getCharger creates or returns existing charger adapter.
func getCharger() *evcharger.Adapter {
	if services.charger == nil {
		services.charger = evcharger.New(
			getConfigService(),
			getEVSEClient(),
			getStore(),
		)
	}

	return services.charger
}

// getAdapter creates or returns existing adapter service.
func getAdapter() adapter.Adapter {
	if services.adapter == nil {
		services.adapter = adapter.NewAdapter(
			getMQTT(getConfig()),
			getEventManager(),
			getThingFactory(),
			getAdapterState(),
			routing.ServiceName,
			"1",
		)
	}

	return services.adapter
}

// getEventManager creates or returns existing event manager service.
func getEventManager() event.Manager {
	if services.eventManager == nil {
		services.eventManager = event.NewManager()
	}

	return services.eventManager
}

// getAdapterState creates or returns existing adapter state service.
func getAdapterState() adapter.State {
	if services.adapterState == nil {
		var err error

		services.adapterState, err = adapter.NewState(getConfigService().GetWorkDir())
		if err != nil {
			log.WithError(err).Fatal("failed to initialize adapter state")
		}
	}

	return services.adapterState
}

// getThingFactory creates or returns existing thing factory service.
func getThingFactory() adapter.ThingFactory {
	if services.thingFactory == nil {
		services.thingFactory = evsewifi.NewThingFactory(
			getCharger(),
			getEVSEClient(),
			getConfigService(),
		)
	}

	return services.thingFactory
}

// getHTTPClient creates or returns existing HTTP client.
// Request timeouts are applied per call by the EVSE-WiFi client, so configuration changes take effect immediately.
func getHTTPClient() *http.Client {
	if services.httpClient == nil {
		services.httpClient = &http.Client{}
	}

	return services.httpClient
}

// getEVSEClient creates or returns existing EVSE-WiFi HTTP client.
func getEVSEClient() evse.Client {
	if services.evseClient == nil {
		services.evseClient = evse.NewHTTPClient(
			getHTTPClient(),
			getConfigService(),
		)
	}

	return services.evseClient
}

// getMetricsServer creates or returns existing diagnostics server.
func getMetricsServer() *metrics.Server {
	if services.metricsServer == nil {
		services.metricsServer = metrics.NewServer(
			getConfigService().GetMetricsAddress(),
			func() error {
				if getLifecycle().ConnectionState() != lifecycle.ConnStateConnected {
					return errors.New("charger is not connected")
				}

				return nil
			},
		)
	}

	return services.metricsServer
}

// newRouting creates new set of routing.
func newRouting() []*cliffRouter.Routing {
	return routing.New(
		getConfigService(),
		getLifecycle(),
		getApplication(),
		getAdapter(),
	)
}

// newTasks creates new set of tasks.
func newTasks() []*task.Task {
	return tasks.New(
		getConfigService(),
		getLifecycle(),
		getApplication(),
		getAdapter(),
	)
}
