package bus

import (
	"fmt"
	"sync"

	"github.com/futurehomeno/fimpgo"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	// ServiceName is the FIMP service under which all registry paths are mirrored.
	ServiceName = "evcharger"

	CmdValueSet       = "cmd.value.set"
	CmdValueGetReport = "cmd.value.get_report"
	EvtValueReport    = "evt.value.report"
	EvtErrorReport    = "evt.error.report"

	PropertyPath = "path"
	PropertyText = "text"

	channelID = "evsewifi-mirror"
)

// Transport is the part of the FIMP MQTT transport used by the mirror.
type Transport interface {
	Subscribe(topic string) error
	Unsubscribe(topic string) error
	RegisterChannel(channelID string, messageCh fimpgo.MessageCh)
	UnregisterChannel(channelID string)
	Publish(addr *fimpgo.Address, fimpMsg *fimpgo.FimpMessage) error
}

// Mirror exposes a Store on the FIMP bus: every change is published as an event and
// value commands coming from the bus are turned into external writes.
type Mirror struct {
	mu sync.Mutex

	transport    Transport
	store        *Store
	resourceName string
	address      string

	running bool
	inbound fimpgo.MessageCh
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewMirror creates a new mirror of the store. The address identifies the device instance on the bus.
func NewMirror(transport Transport, store *Store, resourceName, address string) *Mirror {
	m := &Mirror{
		transport:    transport,
		store:        store,
		resourceName: resourceName,
		address:      address,
	}

	store.Observe(m.onChange)

	return m
}

// Start subscribes to commands and publishes the full state of the store.
func (m *Mirror) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return nil
	}

	m.inbound = make(fimpgo.MessageCh, 10)
	m.done = make(chan struct{})

	m.transport.RegisterChannel(channelID, m.inbound)

	if err := m.transport.Subscribe(m.commandTopic()); err != nil {
		m.transport.UnregisterChannel(channelID)

		return errors.Wrap(err, "mirror: failed to subscribe to command topic")
	}

	m.running = true

	m.wg.Add(1)

	go m.run(m.inbound, m.done)

	for _, path := range m.store.Paths() {
		m.report(path, nil)
	}

	return nil
}

// Stop unsubscribes from commands and stops publishing changes.
func (m *Mirror) Stop() error {
	m.mu.Lock()

	if !m.running {
		m.mu.Unlock()

		return nil
	}

	m.running = false
	close(m.done)
	m.mu.Unlock()

	m.wg.Wait()

	m.transport.UnregisterChannel(channelID)

	if err := m.transport.Unsubscribe(m.commandTopic()); err != nil {
		return errors.Wrap(err, "mirror: failed to unsubscribe from command topic")
	}

	return nil
}

func (m *Mirror) run(inbound fimpgo.MessageCh, done chan struct{}) {
	defer m.wg.Done()

	for {
		select {
		case <-done:
			return
		case msg := <-inbound:
			m.handle(msg)
		}
	}
}

func (m *Mirror) handle(msg *fimpgo.Message) {
	if msg == nil || msg.Payload == nil || !m.isOwnCommand(msg.Addr) {
		return
	}

	path := msg.Payload.Properties[PropertyPath]

	switch msg.Payload.Type {
	case CmdValueGetReport:
		if path == "" {
			for _, p := range m.store.Paths() {
				m.report(p, msg.Payload)
			}

			return
		}

		m.report(path, msg.Payload)
	case CmdValueSet:
		value, err := messageValue(msg.Payload)
		if err != nil {
			log.WithError(err).WithField("path", path).Warn("mirror: unsupported value in set command")
			m.reportError(path, err.Error(), msg.Payload)

			return
		}

		accepted, err := m.store.Write(path, value)
		if err != nil {
			log.WithError(err).WithField("path", path).Warn("mirror: write rejected")
			m.reportError(path, err.Error(), msg.Payload)

			return
		}

		if !accepted {
			m.reportError(path, fmt.Sprintf("value %v rejected", value), msg.Payload)

			return
		}

		m.report(path, msg.Payload)
	default:
		log.WithField("type", msg.Payload.Type).Debug("mirror: unsupported command")
	}
}

func (m *Mirror) onChange(path string, value interface{}, text string) {
	m.mu.Lock()
	running := m.running
	m.mu.Unlock()

	if !running {
		return
	}

	m.publish(newValueMessage(path, value, text, nil))
}

func (m *Mirror) report(path string, request *fimpgo.FimpMessage) {
	value, ok := m.store.Get(path)
	if !ok {
		m.reportError(path, ErrUnknownPath.Error(), request)

		return
	}

	text, _ := m.store.Text(path)

	m.publish(newValueMessage(path, value, text, request))
}

func (m *Mirror) reportError(path, reason string, request *fimpgo.FimpMessage) {
	m.publish(fimpgo.NewStringMessage(EvtErrorReport, ServiceName, reason, fimpgo.Props{PropertyPath: path}, nil, request))
}

func (m *Mirror) publish(msg *fimpgo.FimpMessage) {
	msg.Source = m.resourceName

	addr := &fimpgo.Address{
		MsgType:         fimpgo.MsgTypeEvt,
		ResourceType:    fimpgo.ResourceTypeDevice,
		ResourceName:    m.resourceName,
		ResourceAddress: "1",
		ServiceName:     ServiceName,
		ServiceAddress:  m.address,
	}

	if err := m.transport.Publish(addr, msg); err != nil {
		log.WithError(err).WithField("path", msg.Properties[PropertyPath]).Error("mirror: failed to publish value")
	}
}

func (m *Mirror) isOwnCommand(addr *fimpgo.Address) bool {
	return addr != nil &&
		addr.MsgType == fimpgo.MsgTypeCmd &&
		addr.ResourceName == m.resourceName &&
		addr.ServiceName == ServiceName &&
		addr.ServiceAddress == m.address
}

func (m *Mirror) commandTopic() string {
	return fmt.Sprintf("pt:j1/mt:cmd/rt:dev/rn:%s/ad:1/sv:%s/ad:%s", m.resourceName, ServiceName, m.address)
}

func newValueMessage(path string, value interface{}, text string, request *fimpgo.FimpMessage) *fimpgo.FimpMessage {
	props := fimpgo.Props{PropertyPath: path, PropertyText: text}

	switch v := value.(type) {
	case int:
		return fimpgo.NewIntMessage(EvtValueReport, ServiceName, int64(v), props, nil, request)
	case int64:
		return fimpgo.NewIntMessage(EvtValueReport, ServiceName, v, props, nil, request)
	case float64:
		return fimpgo.NewFloatMessage(EvtValueReport, ServiceName, v, props, nil, request)
	case bool:
		return fimpgo.NewBoolMessage(EvtValueReport, ServiceName, v, props, nil, request)
	case nil:
		return fimpgo.NewStringMessage(EvtValueReport, ServiceName, "", props, nil, request)
	default:
		return fimpgo.NewStringMessage(EvtValueReport, ServiceName, fmt.Sprint(v), props, nil, request)
	}
}

func messageValue(msg *fimpgo.FimpMessage) (interface{}, error) {
	switch msg.ValueType {
	case fimpgo.VTypeInt:
		v, err := msg.GetIntValue()
		if err != nil {
			return nil, err
		}

		return int(v), nil
	case fimpgo.VTypeFloat:
		return msg.GetFloatValue()
	case fimpgo.VTypeString:
		return msg.GetStringValue()
	case fimpgo.VTypeBool:
		return msg.GetBoolValue()
	default:
		return nil, errors.Errorf("unsupported value type: %s", msg.ValueType)
	}
}
