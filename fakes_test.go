package main

import (
	"context"
	"errors"
	"strings"
	"sync"
)

var errFake = errors.New("device unavailable")

type fakeFan struct {
	mutex sync.Mutex
	calls []string
	on    bool
	speed FanSpeed
	fail  map[string]bool
}

func (f *fakeFan) do(call string, apply func()) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.calls = append(f.calls, call)
	if f.fail[strings.SplitN(call, ":", 2)[0]] {
		return errFake
	}
	apply()
	return nil
}

func (f *fakeFan) TurnOn(ctx context.Context) error {
	return f.do("on", func() { f.on = true })
}

func (f *fakeFan) TurnOff(ctx context.Context) error {
	return f.do("off", func() { f.on = false })
}

func (f *fakeFan) SetSpeed(ctx context.Context, speed FanSpeed) error {
	return f.do("speed:"+fanSpeedToString(speed), func() { f.speed = speed })
}

func (f *fakeFan) Calls() []string {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return append([]string(nil), f.calls...)
}

// fakeSwitches fails every multi-switch call when failBatch is set and any
// call that touches a switch listed in broken.
type fakeSwitches struct {
	mutex     sync.Mutex
	calls     []string
	state     map[string]bool
	failBatch bool
	broken    map[string]bool
}

func newFakeSwitches() *fakeSwitches {
	return &fakeSwitches{state: make(map[string]bool), broken: make(map[string]bool)}
}

func (s *fakeSwitches) set(op string, on bool, ids []string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.calls = append(s.calls, op+" "+strings.Join(ids, ","))
	if s.failBatch && len(ids) > 1 {
		return errFake
	}
	for _, id := range ids {
		if s.broken[id] {
			return errFake
		}
	}
	for _, id := range ids {
		s.state[id] = on
	}
	return nil
}

func (s *fakeSwitches) TurnOn(ctx context.Context, ids ...string) error {
	return s.set("on", true, ids)
}

func (s *fakeSwitches) TurnOff(ctx context.Context, ids ...string) error {
	return s.set("off", false, ids)
}

func (s *fakeSwitches) Calls() []string {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *fakeSwitches) State() map[string]bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	n := make(map[string]bool, len(s.state))
	for k, v := range s.state {
		n[k] = v
	}
	return n
}

type memStore struct {
	mutex sync.Mutex
	ps    PersistedState
	saved int
	has   bool
}

func (m *memStore) Load() (PersistedState, bool, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.ps, m.has, nil
}

func (m *memStore) Save(ps PersistedState) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.ps = ps
	m.has = true
	m.saved++
	return nil
}

func (m *memStore) Saved() (PersistedState, int) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.ps, m.saved
}

type fakeSender struct {
	mutex    sync.Mutex
	commands []string
	retained map[string]string
	fail     map[string]bool
}

func newFakeSender() *fakeSender {
	return &fakeSender{retained: make(map[string]string), fail: make(map[string]bool)}
}

func (s *fakeSender) Command(topic string, value string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.commands = append(s.commands, topic+"="+value)
	if s.fail[topic] {
		return errFake
	}
	return nil
}

func (s *fakeSender) Publish(topic string, value string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.retained[topic] = value
	return nil
}

func (s *fakeSender) Retained(topic string) (string, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	v, ok := s.retained[topic]
	return v, ok
}
