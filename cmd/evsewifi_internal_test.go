package cmd

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/futurehomeno/cliffhanger/bootstrap"
	cliffConfig "github.com/futurehomeno/cliffhanger/config"
	"github.com/futurehomeno/cliffhanger/lifecycle"
	"github.com/futurehomeno/cliffhanger/test/suite"

	"github.com/futurehomeno/edge-evsewifi-adapter/internal/config"
	"github.com/futurehomeno/edge-evsewifi-adapter/internal/evcharger"
	"github.com/futurehomeno/edge-evsewifi-adapter/internal/test"
)

var (
	cmdEVChargerTopic = fmt.Sprintf("pt:j1/mt:cmd/rt:dev/rn:evsewifi/ad:1/sv:evcharger/ad:%d", test.DeviceInstance)
	evtEVChargerTopic = fmt.Sprintf("pt:j1/mt:evt/rt:dev/rn:evsewifi/ad:1/sv:evcharger/ad:%d", test.DeviceInstance)

	cmdChargepointTopic = "pt:j1/mt:cmd/rt:dev/rn:evsewifi/ad:1/sv:chargepoint/ad:1"
	evtChargepointTopic = "pt:j1/mt:evt/rt:dev/rn:evsewifi/ad:1/sv:chargepoint/ad:1"
	cmdMeterElecTopic   = "pt:j1/mt:cmd/rt:dev/rn:evsewifi/ad:1/sv:meter_elec/ad:1"
	evtMeterElecTopic   = "pt:j1/mt:evt/rt:dev/rn:evsewifi/ad:1/sv:meter_elec/ad:1"
)

func TestEVSEWiFiAdapter(t *testing.T) { //nolint:paralleltest
	if testing.Short() {
		t.Skip("skipping MQTT broker test in short mode")
	}

	mqttAddr := test.SetupMQTTContainer(t)

	s := &suite.Suite{
		Config: suite.Config{
			MQTTServerURI: mqttAddr,
		},
		Cases: []*suite.Case{
			{
				Name:     "Adapter publishes the charger state on the bus",
				Setup:    serviceSetup(mqttAddr, newFakeCharger(2, 7, 4.83)),
				TearDown: []suite.Callback{tearDown()},
				Nodes: []*suite.Node{
					{
						InitCallbacks: []suite.Callback{waitForRunning()},
						Expectations: []*suite.Expectation{
							suite.ExpectFloat(evtEVChargerTopic, "evt.value.report", "evcharger", 4830).ExpectProperty("path", evcharger.PathPower),
							suite.ExpectFloat(evtEVChargerTopic, "evt.value.report", "evcharger", 2.5).ExpectProperty("path", evcharger.PathEnergyForward),
							suite.ExpectInt(evtEVChargerTopic, "evt.value.report", "evcharger", 3).ExpectProperty("path", evcharger.PathStatus),
						},
					},
				},
			},
			{
				Name:     "Adapter answers a report request with the full state",
				Setup:    serviceSetup(mqttAddr, newFakeCharger(3, 16, 11.04)),
				TearDown: []suite.Callback{tearDown()},
				Nodes: []*suite.Node{
					suite.SleepNode(200 * time.Millisecond),
					{
						InitCallbacks: []suite.Callback{waitForRunning()},
						Command:       suite.NullMessage(cmdEVChargerTopic, "cmd.value.get_report", "evcharger"),
						Expectations: []*suite.Expectation{
							suite.ExpectInt(evtEVChargerTopic, "evt.value.report", "evcharger", 16).ExpectProperty("path", evcharger.PathMaxCurrent),
							suite.ExpectInt(evtEVChargerTopic, "evt.value.report", "evcharger", 2).ExpectProperty("path", evcharger.PathStatus),
						},
					},
				},
			},
			{
				Name:     "Adapter reports an error for a write without a path",
				Setup:    serviceSetup(mqttAddr, newFakeCharger(1, 0, 0)),
				TearDown: []suite.Callback{tearDown()},
				Nodes: []*suite.Node{
					{
						InitCallbacks: []suite.Callback{waitForRunning()},
						Command:       suite.IntMessage(cmdEVChargerTopic, "cmd.value.set", "evcharger", 6),
						Expectations: []*suite.Expectation{
							suite.ExpectError(evtEVChargerTopic, "evcharger"),
						},
					},
				},
			},
			{
				Name:     "Charger thing is controlled through the car charger services",
				Setup:    serviceSetup(mqttAddr, newFakeCharger(2, 7, 4.83)),
				TearDown: []suite.Callback{tearDown()},
				Nodes: []*suite.Node{
					suite.SleepNode(300 * time.Millisecond),
					{
						Name:          "state report",
						InitCallbacks: []suite.Callback{waitForRunning()},
						Command:       suite.NullMessage(cmdChargepointTopic, "cmd.state.get_report", "chargepoint"),
						Expectations: []*suite.Expectation{
							suite.ExpectString(evtChargepointTopic, "evt.state.report", "chargepoint", "finished"),
						},
					},
					{
						Name:    "meter report",
						Command: suite.StringMessage(cmdMeterElecTopic, "cmd.meter.get_report", "meter_elec", "W"),
						Expectations: []*suite.Expectation{
							suite.ExpectFloat(evtMeterElecTopic, "evt.meter.report", "meter_elec", 4830).ExpectProperty("unit", "W"),
						},
					},
					{
						Name:    "stop charging",
						Command: suite.NullMessage(cmdChargepointTopic, "cmd.charge.stop", "chargepoint"),
						Expectations: []*suite.Expectation{
							suite.ExpectInt(evtEVChargerTopic, "evt.value.report", "evcharger", 0).ExpectProperty("path", evcharger.PathStartStop),
							suite.ExpectString(evtChargepointTopic, "evt.state.report", "chargepoint", "finished"),
						},
					},
				},
			},
		},
	}

	s.Run(t)
}

// fakeCharger serves the parameter endpoint of an EVSE-WiFi module.
type fakeCharger struct {
	vehicleState  int
	actualCurrent int
	actualPower   float64
}

func newFakeCharger(vehicleState, actualCurrent int, actualPower float64) *fakeCharger {
	return &fakeCharger{vehicleState: vehicleState, actualCurrent: actualCurrent, actualPower: actualPower}
}

func (c *fakeCharger) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/getParameters":
		_, _ = fmt.Fprintf(w, `{"type":"parameters","list":[{"vehicleState":%d,"actualCurrent":%d,"actualPower":%g,"maximumCurrent":16,"energy":2.5,"duration":125999}]}`,
			c.vehicleState, c.actualCurrent, c.actualPower)
	case "/setCurrent":
		_, _ = fmt.Fprintf(w, `{"current":%q}`, r.URL.Query().Get("current"))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func serviceSetup(mqttAddr string, charger *fakeCharger) suite.ServiceSetup {
	return func(t *testing.T) (service suite.Service, _ []suite.Mock) {
		t.Helper()

		tearDown()(t)

		server := httptest.NewServer(charger)
		t.Cleanup(server.Close)

		cfg := configSetup(t, mqttAddr, server.URL)
		loggerSetup(t)

		app, err := Build(cfg)
		if err != nil {
			t.Fatalf("failed to build app: %s", err)
		}

		return app, nil
	}
}

func tearDown() suite.Callback {
	return func(t *testing.T) {
		t.Helper()

		resetContainer()
	}
}

func configSetup(t *testing.T, mqttAddr, host string) *config.Config {
	t.Helper()

	cfgDir := t.TempDir()
	cfg := config.New(cfgDir)
	cfg.MQTTServerURI = mqttAddr
	cfg.Host = host
	cfg.DeviceInstance = test.DeviceInstance
	cfg.Mode = config.ModeAuto
	cfg.PollingInterval = "100ms"
	cfg.SignOfLifeInterval = "0s"

	services.configService = config.NewService(cliffConfig.NewStorage[interface{}](cfg, cfgDir))

	return cfg
}

func loggerSetup(t *testing.T) {
	t.Helper()

	cfg := getConfig()
	bootstrap.InitializeLogger(cfg.LogFile, cfg.LogLevel, cfg.LogFormat)
}

func waitForRunning() suite.Callback {
	return func(t *testing.T) {
		t.Helper()

		getLifecycle().WaitFor("test_suite", lifecycle.StateTypeAppState, lifecycle.AppStateRunning)
	}
}
