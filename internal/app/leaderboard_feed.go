package app

import (
	"context"
	"log"
	"sync"

	"quiz-api/internal/domain"
)

// LeaderboardFeed pushes the public ranking to live subscribers whenever
// scores change. It implements ScoreNotifier for in-process delivery.
type LeaderboardFeed struct {
	board *LeaderboardService

	mu          sync.Mutex
	subscribers map[chan []domain.LeaderboardEntry]struct{}
}

func NewLeaderboardFeed(board *LeaderboardService) *LeaderboardFeed {
	return &LeaderboardFeed{
		board:       board,
		subscribers: make(map[chan []domain.LeaderboardEntry]struct{}),
	}
}

// Subscribe returns a channel primed with the current ranking. The caller
// must invoke the returned cancel function to avoid leaks.
func (f *LeaderboardFeed) Subscribe(ctx context.Context) (<-chan []domain.LeaderboardEntry, func(), error) {
	initial, err := f.board.Public(ctx, 0)
	if err != nil {
		return nil, nil, err
	}

	ch := make(chan []domain.LeaderboardEntry, 8)
	f.mu.Lock()
	f.subscribers[ch] = struct{}{}
	ch <- initial
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		if _, ok := f.subscribers[ch]; ok {
			delete(f.subscribers, ch)
			close(ch)
		}
		f.mu.Unlock()
	}
	return ch, cancel, nil
}

// Subscribers reports how many live connections are attached.
func (f *LeaderboardFeed) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subscribers)
}

// ScoresChanged recomputes the ranking and broadcasts it. With nobody
// listening it does no work at all.
func (f *LeaderboardFeed) ScoresChanged(ctx context.Context) {
	if f.Subscribers() == 0 {
		return
	}
	entries, err := f.board.Public(ctx, 0)
	if err != nil {
		log.Printf("leaderboard feed refresh failed: %v", err)
		return
	}
	f.broadcast(entries)
}

func (f *LeaderboardFeed) broadcast(entries []domain.LeaderboardEntry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subscribers {
		select {
		case ch <- entries:
		default:
			// Slow reader: drop its oldest snapshot so the newest always lands.
			select {
			case <-ch:
			default:
			}
			ch <- entries
		}
	}
}
