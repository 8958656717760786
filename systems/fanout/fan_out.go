// Package fanout contains implementation of pub-sub fanout channels.
package fanout

import (
	"math/rand"
	"sync"

	"github.com/go-home-io/wled-effects/providers"
	"github.com/go-home-io/wled-effects/utils"
)

// Subscriber channel size.
const bufferSize = 10

// Implements IFanOutProvider.
type provider struct {
	status sync.Mutex
	event  sync.Mutex

	inStatusUpdates  chan *providers.EffectStatus
	outStatusUpdates map[int64]chan *providers.EffectStatus

	inEventUpdates  chan string
	outEventUpdates map[int64]chan string

	stop chan struct{}
	once sync.Once
}

// NewFanOut constructs new FanOut provider.
func NewFanOut() providers.IFanOutProvider {
	p := &provider{
		inStatusUpdates:  make(chan *providers.EffectStatus, bufferSize),
		outStatusUpdates: make(map[int64]chan *providers.EffectStatus),
		inEventUpdates:   make(chan string, bufferSize),
		outEventUpdates:  make(map[int64]chan string),
		stop:             make(chan struct{}),
	}

	go p.internalCycle()
	return p
}

// SubscribeStatusUpdates allows to subscribe to the effect status updates.
func (p *provider) SubscribeStatusUpdates() (int64, chan *providers.EffectStatus) {
	p.status.Lock()
	defer p.status.Unlock()

	c := make(chan *providers.EffectStatus, bufferSize)
	id := p.getID()
	for _, ok := p.outStatusUpdates[id]; ok; _, ok = p.outStatusUpdates[id] {
		id = p.getID()
	}

	p.outStatusUpdates[id] = c
	return id, c
}

// UnSubscribeStatusUpdates allows to un-subscribe from the effect status updates.
// nolint:dupl
func (p *provider) UnSubscribeStatusUpdates(id int64) {
	p.status.Lock()
	defer p.status.Unlock()

	c, ok := p.outStatusUpdates[id]
	if !ok {
		return
	}

	close(c)
	delete(p.outStatusUpdates, id)
}

// ChannelInStatusUpdates returns input channel for the effect status updates.
func (p *provider) ChannelInStatusUpdates() chan *providers.EffectStatus {
	return p.inStatusUpdates
}

// SubscribeEventUpdates allows to subscribe for the fired events and triggers.
func (p *provider) SubscribeEventUpdates() (int64, chan string) {
	p.event.Lock()
	defer p.event.Unlock()

	c := make(chan string, bufferSize)
	id := p.getID()
	for _, ok := p.outEventUpdates[id]; ok; _, ok = p.outEventUpdates[id] {
		id = p.getID()
	}

	p.outEventUpdates[id] = c
	return id, c
}

// UnSubscribeEventUpdates allows to un-subscribe from the events.
// nolint:dupl
func (p *provider) UnSubscribeEventUpdates(id int64) {
	p.event.Lock()
	defer p.event.Unlock()

	c, ok := p.outEventUpdates[id]
	if !ok {
		return
	}

	close(c)
	delete(p.outEventUpdates, id)
}

// ChannelInEventUpdates returns input channel for the events.
func (p *provider) ChannelInEventUpdates() chan string {
	return p.inEventUpdates
}

// Close stops broadcasting and closes all subscribers.
func (p *provider) Close() {
	p.once.Do(func() {
		close(p.stop)

		p.status.Lock()
		for k, v := range p.outStatusUpdates {
			close(v)
			delete(p.outStatusUpdates, k)
		}
		p.status.Unlock()

		p.event.Lock()
		for k, v := range p.outEventUpdates {
			close(v)
			delete(p.outEventUpdates, k)
		}
		p.event.Unlock()
	})
}

// Returns random ID.
func (p *provider) getID() int64 {
	return utils.TimeNow() + rand.Int63() // nolint: gosec
}

func (p *provider) internalCycle() {
	for {
		select {
		case <-p.stop:
			return
		case u := <-p.inStatusUpdates:
			p.statusUpdates(u)
		case u := <-p.inEventUpdates:
			p.eventUpdates(u)
		}
	}
}

// Broadcasts status updates.
// Slow subscribers miss updates instead of blocking the others.
func (p *provider) statusUpdates(update *providers.EffectStatus) {
	p.status.Lock()
	defer p.status.Unlock()

	for _, v := range p.outStatusUpdates {
		select {
		case v <- update:
		default:
		}
	}
}

// Broadcasts events.
func (p *provider) eventUpdates(update string) {
	p.event.Lock()
	defer p.event.Unlock()

	for _, v := range p.outEventUpdates {
		select {
		case v <- update:
		default:
		}
	}
}
