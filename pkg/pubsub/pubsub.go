package pubsub

import (
	"context"
	"encoding/json"
	"time"
)

// Pack is a single message on a topic. Messages with the same Key keep their order.
type Pack struct {
	Key []byte
	Msg []byte
}

func NewJSONPack(key string, v any) (*Pack, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	return &Pack{Key: []byte(key), Msg: b}, nil
}

func (p *Pack) Decode(v any) error {
	return json.Unmarshal(p.Msg, v)
}

type Publisher interface {
	Publish(context.Context, string, *Pack) error
}

type SubscribeHandler func(context.Context, *Pack, time.Time)

type Subscriber interface {
	Subscribe(context.Context)
	Stop(ctx context.Context) error
}
