package subscriber

import (
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/eclipse/paho.mqtt.golang/packets"
)

type fakeToken struct {
	err     error
	timeout bool
}

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return !t.timeout }
func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t *fakeToken) Error() error { return t.err }

type fakeClient struct {
	connectErrs     []error
	connectTimeouts []bool
	connects        int

	subscribes   []string
	publishes    []string
	unsubscribes []string
	connected    bool
	disconnects  int
}

func (c *fakeClient) Connect() mqtt.Token {
	token := &fakeToken{}
	if c.connects < len(c.connectErrs) {
		token.err = c.connectErrs[c.connects]
	}
	if c.connects < len(c.connectTimeouts) {
		token.timeout = c.connectTimeouts[c.connects]
	}
	c.connects++
	if token.err == nil && !token.timeout {
		c.connected = true
	}
	return token
}

func (c *fakeClient) Disconnect(uint) {
	c.connected = false
	c.disconnects++
}

func (c *fakeClient) Subscribe(topic string, _ byte, _ mqtt.MessageHandler) mqtt.Token {
	c.subscribes = append(c.subscribes, topic)
	return &fakeToken{}
}

func (c *fakeClient) Unsubscribe(topics ...string) mqtt.Token {
	c.unsubscribes = append(c.unsubscribes, topics...)
	return &fakeToken{}
}

func (c *fakeClient) Publish(topic string, _ byte, _ bool, _ interface{}) mqtt.Token {
	c.publishes = append(c.publishes, topic)
	return &fakeToken{}
}

func (c *fakeClient) IsConnected() bool { return c.connected }

type fakeStore struct {
	resets int
}

func (s *fakeStore) Reset() { s.resets++ }

func testPolicy(attempts int) RetryPolicy {
	return RetryPolicy{MaxAttempts: attempts, Delay: time.Millisecond, ConnectTimeout: time.Second}
}

func newTestSession(client *fakeClient, attempts int) (*Session, *fakeStore) {
	store := &fakeStore{}
	session := NewSession("H1", NewEventSubscriber(&mockTracker{}), store, testPolicy(attempts))
	session.SetClient(client)
	return session, store
}

func TestConnect_Success(t *testing.T) {
	client := &fakeClient{}
	session, _ := newTestSession(client, 5)

	if err := session.Connect(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.State() != StateConnected {
		t.Errorf("expected connected, got %s", session.State())
	}
	if len(client.subscribes) != 1 || client.subscribes[0] != "hospital/H1/#" {
		t.Errorf("expected room subscription, got %v", client.subscribes)
	}
	if len(client.publishes) != 1 || client.publishes[0] != "hospital/join" {
		t.Errorf("expected join request, got %v", client.publishes)
	}
}

func TestConnect_RetriesThenSucceeds(t *testing.T) {
	client := &fakeClient{
		connectErrs: []error{errors.New("broker down"), errors.New("broker down")},
	}
	session, _ := newTestSession(client, 5)

	if err := session.Connect(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.connects != 3 {
		t.Errorf("expected 3 attempts, got %d", client.connects)
	}
	if session.State() != StateConnected {
		t.Errorf("expected connected, got %s", session.State())
	}
}

func TestConnect_RetriesExhausted(t *testing.T) {
	client := &fakeClient{
		connectErrs: []error{
			errors.New("broker down"), errors.New("broker down"), errors.New("broker down"),
			errors.New("broker down"), errors.New("broker down"),
		},
	}
	session, _ := newTestSession(client, 5)

	err := session.Connect()
	if !errors.Is(err, ErrRetriesExhausted) {
		t.Fatalf("expected ErrRetriesExhausted, got %v", err)
	}
	if client.connects != 5 {
		t.Errorf("expected exactly 5 attempts, got %d", client.connects)
	}
	if session.State() != StateGaveUp {
		t.Errorf("expected gave_up, got %s", session.State())
	}
}

func TestConnect_TimeoutCountsAsAttempt(t *testing.T) {
	client := &fakeClient{
		connectTimeouts: []bool{true},
	}
	session, _ := newTestSession(client, 2)

	if err := session.Connect(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.connects != 2 {
		t.Errorf("expected timed-out attempt plus retry, got %d attempts", client.connects)
	}
}

func TestConnect_AuthRejectedNoRetry(t *testing.T) {
	client := &fakeClient{
		connectErrs: []error{packets.ErrorRefusedNotAuthorised},
	}
	session, _ := newTestSession(client, 5)

	err := session.Connect()
	if !errors.Is(err, ErrAuthRejected) {
		t.Fatalf("expected ErrAuthRejected, got %v", err)
	}
	if client.connects != 1 {
		t.Errorf("expected no retry on auth rejection, got %d attempts", client.connects)
	}
	if session.State() != StateDisconnected {
		t.Errorf("expected disconnected, got %s", session.State())
	}
}

func TestConnectionLost_RejoinsRoom(t *testing.T) {
	client := &fakeClient{}
	session, _ := newTestSession(client, 5)

	if err := session.Connect(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	client.connected = false
	session.ConnectionLost(errors.New("transport dropped"))

	if session.State() != StateConnected {
		t.Errorf("expected reconnected, got %s", session.State())
	}
	if len(client.subscribes) != 2 {
		t.Errorf("expected room re-subscription after reconnect, got %d", len(client.subscribes))
	}
	if len(client.publishes) != 2 {
		t.Errorf("expected join re-issued after reconnect, got %d", len(client.publishes))
	}
}

func TestDisconnect_ResetsStore(t *testing.T) {
	client := &fakeClient{}
	session, store := newTestSession(client, 5)

	if err := session.Connect(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	session.Disconnect()

	if store.resets != 1 {
		t.Errorf("expected store reset, got %d resets", store.resets)
	}
	if client.disconnects != 1 {
		t.Errorf("expected client disconnect, got %d", client.disconnects)
	}
	if len(client.unsubscribes) != 1 || client.unsubscribes[0] != "hospital/H1/#" {
		t.Errorf("expected room unsubscribe, got %v", client.unsubscribes)
	}
	if session.State() != StateDisconnected {
		t.Errorf("expected disconnected, got %s", session.State())
	}
}

func TestReconnect_AfterGaveUp(t *testing.T) {
	client := &fakeClient{
		connectErrs: []error{errors.New("down"), errors.New("down")},
	}
	session, _ := newTestSession(client, 2)

	if err := session.Connect(); !errors.Is(err, ErrRetriesExhausted) {
		t.Fatalf("expected ErrRetriesExhausted, got %v", err)
	}

	if err := session.Reconnect(); err != nil {
		t.Fatalf("unexpected error on manual reconnect: %v", err)
	}
	if session.State() != StateConnected {
		t.Errorf("expected connected, got %s", session.State())
	}
}

func TestStateObserver(t *testing.T) {
	client := &fakeClient{}
	session, _ := newTestSession(client, 5)

	var states []State
	session.SetOnStateChange(func(s State) { states = append(states, s) })

	if err := session.Connect(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(states) != 2 || states[0] != StateConnecting || states[1] != StateConnected {
		t.Errorf("expected [connecting connected], got %v", states)
	}
}
