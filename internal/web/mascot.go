// pattern: Imperative Shell

package web

import (
	"context"
	"slices"
	"sync"
	"time"

	"meowdash/internal/logging"
	"meowdash/internal/mascot"
)

const mascotWidth = 100

// mascotFeed runs one cat for every connected page and pushes frames when
// the drawing changes.
type mascotFeed struct {
	mu     sync.Mutex
	cat    *mascot.Cat
	width  int
	subs   map[*browserHost]struct{}
	last   []string
	logger *logging.ScopedLogger
	now    func() time.Time
}

func newMascotFeed(msgs mascot.Messages, width int, logger *logging.ScopedLogger) *mascotFeed {
	return &mascotFeed{
		cat:    mascot.New(msgs, nil, width, time.Now()),
		width:  width,
		subs:   make(map[*browserHost]struct{}),
		logger: logger,
		now:    time.Now,
	}
}

func (f *mascotFeed) subscribe(h *browserHost) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs[h] = struct{}{}
	if f.last != nil {
		h.send(HostMessage{Type: "mascot", Lines: f.last})
	}
}

func (f *mascotFeed) unsubscribe(h *browserHost) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.subs, h)
}

func (f *mascotFeed) poke() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cat.Poke(f.now())
	f.logger.Debug("mascot poked", "clicks", f.cat.Clicks())
}

func (f *mascotFeed) touch() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cat.Touch(f.now())
}

// step advances the cat and broadcasts the frame if it changed.
func (f *mascotFeed) step() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cat.Step(f.now())
	lines := mascot.Render(f.cat.State(), f.width)
	if slices.Equal(lines, f.last) {
		return
	}
	f.last = lines
	for h := range f.subs {
		// frames never take the room navigations need
		if len(h.out) < hostQueueSize/2 {
			h.send(HostMessage{Type: "mascot", Lines: lines})
		}
	}
}

func (f *mascotFeed) run(ctx context.Context) {
	ticker := time.NewTicker(mascot.DefaultInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			f.step()
		}
	}
}
