package app

import (
	"github.com/futurehomeno/cliffhanger/adapter"
	cliffApp "github.com/futurehomeno/cliffhanger/app"
	"github.com/futurehomeno/cliffhanger/lifecycle"
	"github.com/futurehomeno/cliffhanger/manifest"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/futurehomeno/edge-evsewifi-adapter/internal/config"
	"github.com/futurehomeno/edge-evsewifi-adapter/internal/evse"
	"github.com/futurehomeno/edge-evsewifi-adapter/internal/evsewifi"
)

// Application is an interface representing a service responsible for preparing an application manifest and configuring app.
type Application interface {
	cliffApp.App
	cliffApp.CheckableApp
	cliffApp.InitializableApp
}

// New creates new instance of an Application.
func New(
	ad adapter.Adapter,
	cfgService *config.Service,
	lc *lifecycle.Lifecycle,
	mfLoader manifest.Loader,
	client evse.Client,
) Application {
	return &application{
		ad:         ad,
		mfLoader:   mfLoader,
		lifecycle:  lc,
		cfgService: cfgService,
		client:     client,
	}
}

type application struct {
	ad         adapter.Adapter
	cfgService *config.Service
	lifecycle  *lifecycle.Lifecycle
	mfLoader   manifest.Loader
	client     evse.Client
}

func (a *application) GetManifest() (*manifest.Manifest, error) {
	mf, err := a.mfLoader.Load()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load manifest")
	}

	return mf, nil
}

// Configure applies the charger host of the submitted configuration.
func (a *application) Configure(c interface{}) error {
	cfg, ok := c.(*config.Config)
	if !ok {
		return errors.Errorf("unsupported configuration type %T", c)
	}

	if err := a.cfgService.SetHost(cfg.Host); err != nil {
		return errors.Wrap(err, "failed to set charger host")
	}

	if err := a.registerCharger(); err != nil {
		a.setConfigured(false)

		return err
	}

	a.setConfigured(a.cfgService.GetHost() != "")

	return a.Check()
}

func (a *application) Uninstall() error {
	err := a.ad.DestroyAllThings()
	if err != nil {
		log.Info("app: failed to destroy all things")

		return errors.New("failed to destroy all things")
	}

	err = a.cfgService.Reset()
	if err != nil {
		log.Info("app: failed to reset config")

		return errors.New("failed to reset configuration")
	}

	a.lifecycle.SetAppState(lifecycle.AppStateNotConfigured, nil)
	a.lifecycle.SetConfigState(lifecycle.ConfigStateNotConfigured)
	a.lifecycle.SetConnectionState(lifecycle.ConnStateDisconnected)

	return nil
}

func (a *application) Check() error {
	if a.cfgService.GetHost() == "" {
		a.lifecycle.SetConnectionState(lifecycle.ConnStateDisconnected)

		return nil
	}

	if err := a.client.Ping(); err != nil {
		log.WithError(err).Debug("app: charger is not reachable")
		a.lifecycle.SetConnectionState(lifecycle.ConnStateDisconnected)

		return nil //nolint:nilerr
	}

	a.lifecycle.SetConnectionState(lifecycle.ConnStateConnected)

	return nil
}

func (a *application) Initialize() error {
	defer a.Check() //nolint:errcheck

	if err := a.ad.InitializeThings(); err != nil {
		return errors.Wrap(err, "failed to initialize things")
	}

	if err := a.cfgService.Save(); err != nil {
		return errors.Wrap(err, "failed to save configs at application initialization")
	}

	if err := a.registerCharger(); err != nil {
		a.setConfigured(false)

		return err
	}

	a.setConfigured(a.cfgService.GetHost() != "")

	return nil
}

// registerCharger ensures the charger thing exists while a host is configured.
func (a *application) registerCharger() error {
	if a.cfgService.GetHost() == "" {
		if err := a.ad.DestroyAllThings(); err != nil {
			return errors.Wrap(err, "application: failed to destroy things")
		}

		return nil
	}

	if err := a.ad.EnsureThings(adapter.ThingSeeds{evsewifi.Seed(a.cfgService)}); err != nil {
		return errors.Wrap(err, "application: failed to ensure things")
	}

	return nil
}

func (a *application) setConfigured(configured bool) {
	if !configured {
		a.lifecycle.SetAppState(lifecycle.AppStateNotConfigured, nil)
		a.lifecycle.SetConfigState(lifecycle.ConfigStateNotConfigured)

		return
	}

	a.lifecycle.SetAppState(lifecycle.AppStateRunning, nil)
	a.lifecycle.SetConfigState(lifecycle.ConfigStateConfigured)
}
