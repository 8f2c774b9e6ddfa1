package server

import (
	"encoding/json"
	"sync"
)

// AwardEvent is the payload published to a user's SSE subscribers when
// one of their locations is recorded.
type AwardEvent struct {
	Type           string `json:"type"`
	LocationKey    string `json:"locationKey,omitempty"`
	TotalPoints    int    `json:"totalPoints"`
	LocationsFound int    `json:"locationsFound"`
	IsCompletion   bool   `json:"isCompletion,omitempty"`
}

// Broker is an in-process pub/sub for award events, keyed by username.
type Broker struct {
	mu   sync.RWMutex
	subs map[string]map[chan []byte]struct{}
}

func NewBroker() *Broker {
	return &Broker{
		subs: make(map[string]map[chan []byte]struct{}),
	}
}

// Subscribe returns a channel receiving JSON-encoded events for username.
func (b *Broker) Subscribe(username string) chan []byte {
	ch := make(chan []byte, 16)
	b.mu.Lock()
	if b.subs[username] == nil {
		b.subs[username] = make(map[chan []byte]struct{})
	}
	b.subs[username][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a channel from the username's subscribers.
func (b *Broker) Unsubscribe(username string, ch chan []byte) {
	b.mu.Lock()
	delete(b.subs[username], ch)
	if len(b.subs[username]) == 0 {
		delete(b.subs, username)
	}
	b.mu.Unlock()
}

// Publish sends an event to all subscribers of the given username.
func (b *Broker) Publish(username string, event AwardEvent) {
	data, _ := json.Marshal(event)
	b.mu.RLock()
	for ch := range b.subs[username] {
		select {
		case ch <- data:
		default:
			// Drop if subscriber is slow.
		}
	}
	b.mu.RUnlock()
}
