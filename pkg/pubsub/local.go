package pubsub

import (
	"context"
	"sync"
	"time"

	"github.com/questx-lab/social-discord/pkg/xcontext"
)

// localPublisher delivers packs to in-process handlers. It is used when no broker is configured.
type localPublisher struct {
	mu       sync.RWMutex
	handlers map[string][]SubscribeHandler
	wg       sync.WaitGroup
}

func NewLocalPublisher() *localPublisher {
	return &localPublisher{handlers: make(map[string][]SubscribeHandler)}
}

func (p *localPublisher) Register(topic string, handler SubscribeHandler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers[topic] = append(p.handlers[topic], handler)
}

// Publish runs the handlers of topic on a new goroutine, the caller never waits for them.
func (p *localPublisher) Publish(ctx context.Context, topic string, pack *Pack) error {
	p.mu.RLock()
	handlers := p.handlers[topic]
	p.mu.RUnlock()

	if len(handlers) == 0 {
		xcontext.Logger(ctx).Warnf("No handler for topic %s", topic)
		return nil
	}

	// The request context is canceled when the response is written.
	handlerCtx := xcontext.WithoutCancel(ctx)
	now := time.Now()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		for _, handler := range handlers {
			handler(handlerCtx, pack, now)
		}
	}()

	return nil
}

// Wait blocks until every published pack has been handled.
func (p *localPublisher) Wait() {
	p.wg.Wait()
}
