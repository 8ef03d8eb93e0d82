package redis

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"
)

// DefaultScoreChannel is the pub/sub channel score changes are announced on.
const DefaultScoreChannel = "quiz:scores:changed"

// ScoreNotifier fans score changes out to every instance over Redis pub/sub,
// so each one can refresh the live leaderboard for its own websocket clients.
type ScoreNotifier struct {
	client  *redis.Client
	channel string
}

func NewScoreNotifier(client *redis.Client, channel string) *ScoreNotifier {
	if channel == "" {
		channel = DefaultScoreChannel
	}
	return &ScoreNotifier{client: client, channel: channel}
}

// ScoresChanged is best effort; a lost notification only delays the next push.
func (n *ScoreNotifier) ScoresChanged(ctx context.Context) {
	if err := n.client.Publish(ctx, n.channel, "changed").Err(); err != nil {
		log.Printf("publish score change: %v", err)
	}
}

// Listen calls onChange for every announcement until ctx is cancelled.
// ready, if non-nil, is closed once the subscription is confirmed.
func (n *ScoreNotifier) Listen(ctx context.Context, ready chan<- struct{}, onChange func(context.Context)) error {
	sub := n.client.Subscribe(ctx, n.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	if ready != nil {
		close(ready)
	}

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-messages:
			if !ok {
				return nil
			}
			onChange(ctx)
		}
	}
}
