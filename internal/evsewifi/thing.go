package evsewifi

import (
	"fmt"
	"strconv"
	"time"

	"github.com/futurehomeno/cliffhanger/adapter"
	cliffCache "github.com/futurehomeno/cliffhanger/adapter/cache"
	"github.com/futurehomeno/cliffhanger/adapter/service/chargepoint"
	"github.com/futurehomeno/cliffhanger/adapter/service/numericmeter"
	"github.com/futurehomeno/fimpgo/fimptype"

	"github.com/futurehomeno/edge-evsewifi-adapter/internal/config"
	"github.com/futurehomeno/edge-evsewifi-adapter/internal/evcharger"
	"github.com/futurehomeno/edge-evsewifi-adapter/internal/evse"
)

// Info is an object representing charger persisted information.
type Info struct {
	DeviceInstance int    `json:"deviceInstance"`
	Host           string `json:"host"`
}

// Seed returns the thing seed of the configured charger.
func Seed(cfgService *config.Service) *adapter.ThingSeed {
	instance := cfgService.GetDeviceInstance()

	return &adapter.ThingSeed{
		ID: strconv.Itoa(instance),
		Info: Info{
			DeviceInstance: instance,
			Host:           cfgService.GetHost(),
		},
	}
}

type thingFactory struct {
	charger    Charger
	client     evse.Client
	cfgService *config.Service
}

// NewThingFactory returns a new instance of adapter.ThingFactory.
func NewThingFactory(charger Charger, client evse.Client, cfgService *config.Service) adapter.ThingFactory {
	return &thingFactory{
		charger:    charger,
		client:     client,
		cfgService: cfgService,
	}
}

func (t *thingFactory) Create(ad adapter.Adapter, publisher adapter.Publisher, thingState adapter.ThingState) (adapter.Thing, error) {
	info := &Info{}

	if err := thingState.Info(info); err != nil {
		return nil, fmt.Errorf("factory: failed to retrieve information: %w", err)
	}

	controller := NewController(t.charger)

	groups := []string{"ch_0"}
	services := []adapter.Service{
		t.newChargepointService(publisher, ad, thingState, groups, controller),
		t.newMeterElecService(publisher, ad, thingState, groups, controller),
	}

	return adapter.NewThing(publisher, thingState, &adapter.ThingConfig{
		Connector:       NewConnector(t.charger, t.client),
		InclusionReport: t.inclusionReport(info, thingState, groups),
	}, services...), nil
}

func (t *thingFactory) inclusionReport(info *Info, thingState adapter.ThingState, groups []string) *fimptype.ThingInclusionReport {
	product := t.cfgService.GetProductName()

	return &fimptype.ThingInclusionReport{
		Address:        thingState.Address(),
		ProductHash:    "EVSE-WiFi - " + product,
		ProductName:    t.cfgService.GetCustomName(),
		DeviceId:       strconv.Itoa(info.DeviceInstance),
		CommTechnology: "wifi",
		ManufacturerId: "EVSE-WiFi",
		PowerSource:    "ac",
		WakeUpInterval: "-1",
		Groups:         groups,
	}
}

func (t *thingFactory) chargepointSpecification(ad adapter.Adapter, thingState adapter.ThingState, groups []string) *fimptype.Service {
	options := []adapter.SpecificationOption{
		chargepoint.WithPhases(evcharger.Phases),
	}

	if maxCurrent, err := numeric(t.charger, evcharger.PathMaxCurrent); err == nil && maxCurrent > 0 {
		options = append(options, chargepoint.WithSupportedMaxCurrent(int64(maxCurrent)))
	}

	return chargepoint.Specification(
		ad.Name(),
		ad.Address(),
		thingState.Address(),
		groups,
		supportedStates(),
		options...,
	)
}

func (t *thingFactory) meterElecSpecification(ad adapter.Adapter, thingState adapter.ThingState, groups []string) *fimptype.Service {
	return numericmeter.Specification(
		numericmeter.MeterElec,
		ad.Name(),
		ad.Address(),
		thingState.Address(),
		groups,
		[]numericmeter.Unit{numericmeter.UnitW, numericmeter.UnitKWh},
	)
}

func (t *thingFactory) newChargepointService(
	publisher adapter.ServicePublisher,
	ad adapter.Adapter,
	thingState adapter.ThingState,
	groups []string,
	controller Controller,
) adapter.Service {
	return chargepoint.NewService(publisher, &chargepoint.Config{
		Specification: t.chargepointSpecification(ad, thingState, groups),
		Controller:    controller,
	})
}

func (t *thingFactory) newMeterElecService(
	publisher adapter.ServicePublisher,
	ad adapter.Adapter,
	thingState adapter.ThingState,
	groups []string,
	controller Controller,
) adapter.Service {
	return numericmeter.NewService(publisher, &numericmeter.Config{
		Specification:     t.meterElecSpecification(ad, thingState, groups),
		Reporter:          controller,
		ReportingStrategy: cliffCache.ReportAtLeastEvery(time.Minute),
	})
}
