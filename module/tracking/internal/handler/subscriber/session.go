package subscriber

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/eclipse/paho.mqtt.golang/packets"
)

// State is the connection lifecycle state surfaced to the dashboard.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateReconnecting State = "reconnecting"
	StateGaveUp       State = "gave_up"
)

var (
	// ErrAuthRejected means the broker refused our credentials. Fatal,
	// never retried.
	ErrAuthRejected = errors.New("connection credentials rejected")
	// ErrRetriesExhausted means the bounded retry sequence failed; a
	// manual reconnect is required.
	ErrRetriesExhausted = errors.New("reconnect attempts exhausted")
)

const joinTopic = "hospital/join"

// RetryPolicy bounds connection attempts. A timed-out attempt counts
// against MaxAttempts.
type RetryPolicy struct {
	MaxAttempts    int
	Delay          time.Duration
	ConnectTimeout time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    5,
		Delay:          time.Second,
		ConnectTimeout: 10 * time.Second,
	}
}

// mqttConn is the slice of mqtt.Client the session needs.
type mqttConn interface {
	Connect() mqtt.Token
	Disconnect(quiesce uint)
	Subscribe(topic string, qos byte, callback mqtt.MessageHandler) mqtt.Token
	Unsubscribe(topics ...string) mqtt.Token
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	IsConnected() bool
}

type store interface {
	Reset()
}

type joinRequest struct {
	HospitalID string `json:"hospitalId"`
	Role       string `json:"role"`
}

// Session manages one hospital's persistent room-scoped connection. Room
// membership does not survive a transport-level reconnect, so the join is
// re-issued on every successful (re)connect.
type Session struct {
	hospitalID string
	events     *EventSubscriber
	store      store
	policy     RetryPolicy
	client     mqttConn

	mu      sync.Mutex
	state   State
	onState func(State)
}

func NewSession(hospitalID string, events *EventSubscriber, store store, policy RetryPolicy) *Session {
	return &Session{
		hospitalID: hospitalID,
		events:     events,
		store:      store,
		policy:     policy,
		state:      StateDisconnected,
	}
}

// SetClient binds the transport. Separate from the constructor because
// the client's connection-lost handler must point back at this session.
func (s *Session) SetClient(client mqttConn) {
	s.client = client
}

// SetOnStateChange registers a state observer. Must be set before Connect.
func (s *Session) SetOnStateChange(fn func(State)) {
	s.onState = fn
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	s.state = state
	fn := s.onState
	s.mu.Unlock()

	if fn != nil {
		fn(state)
	}
}

// Connect establishes the session, retrying per the policy. An auth
// rejection aborts immediately.
func (s *Session) Connect() error {
	s.setState(StateConnecting)
	return s.connectWithRetry()
}

// Reconnect is the manual recovery path after the session gave up.
func (s *Session) Reconnect() error {
	if s.client.IsConnected() {
		return nil
	}
	s.setState(StateConnecting)
	return s.connectWithRetry()
}

// ConnectionLost is wired as the transport's connection-lost handler.
func (s *Session) ConnectionLost(err error) {
	log.Printf("tracking session: connection lost: %v", err)
	s.setState(StateReconnecting)
	if rerr := s.connectWithRetry(); rerr != nil {
		log.Printf("tracking session: %v", rerr)
	}
}

// Disconnect cleanly shuts the session down and tears the tracked set
// down with it.
func (s *Session) Disconnect() {
	if s.client.IsConnected() {
		if token := s.client.Unsubscribe(s.roomTopic()); token != nil {
			token.WaitTimeout(time.Second)
		}
		s.client.Disconnect(250)
	}
	s.store.Reset()
	s.setState(StateDisconnected)
}

func (s *Session) connectWithRetry() error {
	var lastErr error
	for attempt := 1; attempt <= s.policy.MaxAttempts; attempt++ {
		if attempt > 1 {
			time.Sleep(s.policy.Delay)
		}

		err := s.attempt()
		if err == nil {
			s.setState(StateConnected)
			return nil
		}
		if isAuthRejected(err) {
			s.setState(StateDisconnected)
			return fmt.Errorf("%w: %v", ErrAuthRejected, err)
		}
		lastErr = err
		log.Printf("tracking session: attempt %d/%d failed: %v", attempt, s.policy.MaxAttempts, err)
	}

	s.setState(StateGaveUp)
	return fmt.Errorf("%w after %d attempts: %v", ErrRetriesExhausted, s.policy.MaxAttempts, lastErr)
}

func (s *Session) attempt() error {
	token := s.client.Connect()
	if !token.WaitTimeout(s.policy.ConnectTimeout) {
		return fmt.Errorf("connect: timed out after %s", s.policy.ConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	return s.joinRoom()
}

func (s *Session) joinRoom() error {
	token := s.client.Subscribe(s.roomTopic(), 1, s.events.HandleMessage)
	if !token.WaitTimeout(s.policy.ConnectTimeout) {
		return fmt.Errorf("subscribe room: timed out")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("subscribe room: %w", err)
	}

	payload, err := json.Marshal(joinRequest{HospitalID: s.hospitalID, Role: "hospital"})
	if err != nil {
		return fmt.Errorf("marshal join request: %w", err)
	}
	token = s.client.Publish(joinTopic, 1, false, payload)
	if !token.WaitTimeout(s.policy.ConnectTimeout) {
		return fmt.Errorf("join request: timed out")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("join request: %w", err)
	}
	return nil
}

func (s *Session) roomTopic() string {
	return "hospital/" + s.hospitalID + "/#"
}

func isAuthRejected(err error) bool {
	return errors.Is(err, packets.ErrorRefusedNotAuthorised) ||
		errors.Is(err, packets.ErrorRefusedBadUsernameOrPassword) ||
		errors.Is(err, packets.ErrorRefusedIDRejected)
}
