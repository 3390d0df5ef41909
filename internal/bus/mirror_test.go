package bus //nolint:testpackage

import (
	"sync"
	"testing"
	"time"

	"github.com/futurehomeno/fimpgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const commandTopic = "pt:j1/mt:cmd/rt:dev/rn:evsewifi/ad:1/sv:evcharger/ad:40"

func TestMirror_StartPublishesState(t *testing.T) {
	t.Parallel()

	store, transport := NewStore("test"), newFakeTransport()
	require.NoError(t, store.Register(Item{Path: "/Ac/Power", Initial: 0.0, Formatter: Watt}))
	require.NoError(t, store.Register(Item{Path: "/ProductName", Initial: "EVSE-WiFi"}))

	m := NewMirror(transport, store, "evsewifi", "40")

	require.NoError(t, store.Set("/Ac/Power", 10.0))
	assert.Empty(t, transport.messages(), "nothing is published before start")

	require.NoError(t, m.Start())
	t.Cleanup(func() { _ = m.Stop() })

	assert.Equal(t, []string{commandTopic}, transport.subscriptions())

	msgs := transport.messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, EvtValueReport, msgs[0].Type)
	assert.Equal(t, "/Ac/Power", msgs[0].Properties[PropertyPath])
	assert.Equal(t, "10W", msgs[0].Properties[PropertyText])
	assert.Equal(t, fimpgo.VTypeFloat, msgs[0].ValueType)
	assert.Equal(t, "/ProductName", msgs[1].Properties[PropertyPath])
	assert.Equal(t, fimpgo.VTypeString, msgs[1].ValueType)

	require.NoError(t, store.Set("/Ac/Power", 20.0))

	msgs = transport.messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, "20W", msgs[2].Properties[PropertyText])
	assert.Equal(t, "evsewifi", transport.addresses()[2].ResourceName)
	assert.Equal(t, "40", transport.addresses()[2].ServiceAddress)
}

func TestMirror_Handle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		msg         *fimpgo.Message
		wantType    string
		wantStored  interface{}
		wantNothing bool
	}{
		{
			name:       "accepted set",
			msg:        command(fimpgo.NewIntMessage(CmdValueSet, ServiceName, 6, fimpgo.Props{PropertyPath: "/SetCurrent"}, nil, nil), "40"),
			wantType:   EvtValueReport,
			wantStored: 6,
		},
		{
			name:       "rejected set",
			msg:        command(fimpgo.NewIntMessage(CmdValueSet, ServiceName, 7, fimpgo.Props{PropertyPath: "/SetCurrent"}, nil, nil), "40"),
			wantType:   EvtErrorReport,
			wantStored: 0,
		},
		{
			name:       "set of a read-only path",
			msg:        command(fimpgo.NewFloatMessage(CmdValueSet, ServiceName, 1, fimpgo.Props{PropertyPath: "/Ac/Power"}, nil, nil), "40"),
			wantType:   EvtErrorReport,
			wantStored: 0,
		},
		{
			name:       "get report",
			msg:        command(fimpgo.NewStringMessage(CmdValueGetReport, ServiceName, "", fimpgo.Props{PropertyPath: "/SetCurrent"}, nil, nil), "40"),
			wantType:   EvtValueReport,
			wantStored: 0,
		},
		{
			name:        "command for another device",
			msg:         command(fimpgo.NewIntMessage(CmdValueSet, ServiceName, 6, fimpgo.Props{PropertyPath: "/SetCurrent"}, nil, nil), "41"),
			wantNothing: true,
			wantStored:  0,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store, transport := NewStore("test"), newFakeTransport()
			require.NoError(t, store.Register(Item{
				Path: "/SetCurrent", Initial: 0, Formatter: Ampere, Writeable: true,
				OnChange: func(_ string, value interface{}) bool { return value == 6 },
			}))
			require.NoError(t, store.Register(Item{Path: "/Ac/Power", Initial: 0, Formatter: Watt}))

			m := NewMirror(transport, store, "evsewifi", "40")
			m.running = true

			m.handle(tt.msg)

			stored, _ := store.Get("/SetCurrent")
			assert.Equal(t, tt.wantStored, stored)

			if tt.wantNothing {
				assert.Empty(t, transport.messages())

				return
			}

			msgs := transport.messages()
			require.NotEmpty(t, msgs)
			assert.Equal(t, tt.wantType, msgs[len(msgs)-1].Type)
		})
	}
}

func TestMirror_InboundChannel(t *testing.T) {
	t.Parallel()

	store, transport := NewStore("test"), newFakeTransport()
	require.NoError(t, store.Register(Item{Path: "/StartStop", Initial: 0, Writeable: true}))

	m := NewMirror(transport, store, "evsewifi", "40")
	require.NoError(t, m.Start())

	transport.deliver(command(fimpgo.NewIntMessage(CmdValueSet, ServiceName, 1, fimpgo.Props{PropertyPath: "/StartStop"}, nil, nil), "40"))

	assert.Eventually(t, func() bool {
		v, _ := store.Get("/StartStop")

		return v == 1
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, m.Stop())
	assert.Empty(t, transport.subscriptions())
}

func command(msg *fimpgo.FimpMessage, address string) *fimpgo.Message {
	return &fimpgo.Message{
		Topic: "pt:j1/mt:cmd/rt:dev/rn:evsewifi/ad:1/sv:evcharger/ad:" + address,
		Addr: &fimpgo.Address{
			MsgType:         fimpgo.MsgTypeCmd,
			ResourceType:    fimpgo.ResourceTypeDevice,
			ResourceName:    "evsewifi",
			ResourceAddress: "1",
			ServiceName:     ServiceName,
			ServiceAddress:  address,
		},
		Payload: msg,
	}
}

type fakeTransport struct {
	mu sync.Mutex

	topics    []string
	channels  map[string]fimpgo.MessageCh
	published []*fimpgo.FimpMessage
	addrs     []*fimpgo.Address
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{channels: make(map[string]fimpgo.MessageCh)}
}

func (f *fakeTransport) Subscribe(topic string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.topics = append(f.topics, topic)

	return nil
}

func (f *fakeTransport) Unsubscribe(topic string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, t := range f.topics {
		if t == topic {
			f.topics = append(f.topics[:i], f.topics[i+1:]...)

			break
		}
	}

	return nil
}

func (f *fakeTransport) RegisterChannel(channelID string, messageCh fimpgo.MessageCh) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.channels[channelID] = messageCh
}

func (f *fakeTransport) UnregisterChannel(channelID string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.channels, channelID)
}

func (f *fakeTransport) Publish(addr *fimpgo.Address, fimpMsg *fimpgo.FimpMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.published = append(f.published, fimpMsg)
	f.addrs = append(f.addrs, addr)

	return nil
}

func (f *fakeTransport) deliver(msg *fimpgo.Message) {
	f.mu.Lock()
	channels := make([]fimpgo.MessageCh, 0, len(f.channels))

	for _, ch := range f.channels {
		channels = append(channels, ch)
	}
	f.mu.Unlock()

	for _, ch := range channels {
		ch <- msg
	}
}

func (f *fakeTransport) messages() []*fimpgo.FimpMessage {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]*fimpgo.FimpMessage(nil), f.published...)
}

func (f *fakeTransport) addresses() []*fimpgo.Address {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]*fimpgo.Address(nil), f.addrs...)
}

func (f *fakeTransport) subscriptions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.topics...)
}
