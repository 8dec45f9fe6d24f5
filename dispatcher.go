package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
)

const mqttSourcePrefix = "mqtt/"

type EventListener struct {
	ch chan []byte
}

// Publisher sends one retained value to a bus topic.
type Publisher interface {
	Publish(topic string, value string) error
}

// EventDispatcher fans events out to websocket listeners. Sources with the
// "mqtt/" prefix are published to the bus instead.
type EventDispatcher struct {
	listeners  map[*EventListener]bool
	broadcast  chan []byte
	register   chan *EventListener
	deregister chan *EventListener
	publisher  Publisher
	done       chan struct{}
}

func newEventDispatcher() *EventDispatcher {
	return &EventDispatcher{
		broadcast:  make(chan []byte, 64),
		register:   make(chan *EventListener),
		deregister: make(chan *EventListener),
		listeners:  make(map[*EventListener]bool),
		done:       make(chan struct{}),
	}
}

func (d *EventDispatcher) attach(l *EventListener) bool {
	select {
	case d.register <- l:
		return true
	case <-d.done:
		return false
	}
}

func (d *EventDispatcher) detach(l *EventListener) {
	select {
	case d.deregister <- l:
	case <-d.done:
	}
}

type broadcastEvent struct {
	Source string      `json:"source"`
	Data   interface{} `json:"data"`
}

func serializeEvent(source string, data interface{}) []byte {
	msg, err := json.Marshal(&broadcastEvent{Source: source, Data: data})
	if err != nil {
		log.Errorf("unable to serialize event %s: %s", source, err)
	}
	return msg
}

func (d *EventDispatcher) setPublisher(p Publisher) {
	d.publisher = p
}

func (d *EventDispatcher) broadcastEvent(source string, data interface{}) {
	if strings.HasPrefix(source, mqttSourcePrefix) {
		if d.publisher != nil {
			topic := source[len(mqttSourcePrefix):]
			value := fmt.Sprintf("%v", data)
			log.Infof("MQTT PUB: %s -> %s", topic, value)
			if err := d.publisher.Publish(topic, value); err != nil {
				log.Errorf("MQTT: publish to %s failed: %s", topic, err)
			}
		}
		return
	}

	select {
	case d.broadcast <- serializeEvent(source, data):
	default:
		log.Warnf("event queue full, dropping %s event", source)
	}
}

func (d *EventDispatcher) run(ctx context.Context) {
	defer close(d.done)
	for {
		select {
		case <-ctx.Done():
			for listener := range d.listeners {
				close(listener.ch)
				delete(d.listeners, listener)
			}
			return
		case listener := <-d.register:
			d.listeners[listener] = true
		case listener := <-d.deregister:
			if _, ok := d.listeners[listener]; ok {
				delete(d.listeners, listener)
				close(listener.ch)
			}
		case message := <-d.broadcast:
			for listener := range d.listeners {
				select {
				case listener.ch <- message:
				default:
					close(listener.ch)
					delete(d.listeners, listener)
				}
			}
		}
	}
}
