package service

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/dlcs/iiif-presentation-sub002/internal/domain"
)

const ingestChannel = "manifests:ingest"

type SignalService struct {
	rdb *redis.Client
}

func NewSignalService(redisClient *redis.Client) *SignalService {
	return &SignalService{
		rdb: redisClient,
	}
}

func (s *SignalService) Publish(ctx context.Context, event domain.IngestEvent) error {
	jsonstr, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = s.rdb.Publish(ctx, ingestChannel, jsonstr).Err()
	if err != nil {
		return err
	}

	return nil
}

// Subscribe delivers ingest events until cancel is called or the context
// ends. The returned channel closes on teardown.
func (s *SignalService) Subscribe(ctx context.Context) (<-chan domain.IngestEvent, func()) {
	pubsub := s.rdb.Subscribe(ctx, ingestChannel)
	out := make(chan domain.IngestEvent)

	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			var event domain.IngestEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				continue
			}
			select {
			case out <- event:
			case <-ctx.Done():
				return
			}
		}
	}()

	cancel := func() {
		_ = pubsub.Close()
	}
	return out, cancel
}
