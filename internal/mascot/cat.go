// pattern: Functional Core

// Package mascot animates the dashboard cat. The cat is advanced one frame
// at a time with an explicit clock and random source, and knows nothing
// about panels or tools.
package mascot

import (
	"math/rand/v2"
	"slices"
	"time"
)

// Pose is what the cat is doing.
type Pose string

const (
	PoseRunning  Pose = "running"
	PoseSitting  Pose = "sitting"
	PoseLicking  Pose = "licking"
	PoseSleeping Pose = "sleeping"
	PoseHappy    Pose = "happy"
	PoseExcited  Pose = "excited"
	PoseCurious  Pose = "curious"
	PosePlaying  Pose = "playing"
	PoseSpecial  Pose = "special"
)

// RestPoses are the poses the cat may pick when it stops running.
var RestPoses = []Pose{PoseSitting, PoseLicking, PoseSleeping, PoseHappy, PoseExcited, PoseCurious, PosePlaying}

var chattyPoses = []Pose{PoseLicking, PoseHappy, PoseExcited, PoseCurious}

const (
	// SpriteWidth is the cat's width in cells.
	SpriteWidth = 8

	stopChance    = 0.005
	reverseChance = 0.1
	pokeStopOdds  = 0.5
	specialEvery  = 10

	messageFor      = 3500 * time.Millisecond
	chattyDelay     = 500 * time.Millisecond
	pauseMin        = time.Second
	pauseSpread     = 4 * time.Second
	specialFor      = 1500 * time.Millisecond
	blinkFor        = 200 * time.Millisecond
	blinkMin        = 2 * time.Second
	blinkSpread     = 4 * time.Second
	touchCooldown   = 2 * time.Second
	welcomeDelay    = 2 * time.Second
	DefaultInterval = 50 * time.Millisecond
)

// Rand is the random source. *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

// State is a read-only copy of the cat for rendering.
type State struct {
	X       int
	Dir     int
	Pose    Pose
	Blink   bool
	Message string
	Visible bool
}

// Cat is the animation state machine.
type Cat struct {
	rng   Rand
	msgs  Messages
	width int

	x       int
	dir     int
	pose    Pose
	running bool
	visible bool
	blink   bool
	message string
	clicks  int

	welcomeAt    time.Time
	messageUntil time.Time
	chattyAt     time.Time
	resumeAt     time.Time
	specialUntil time.Time
	blinkUntil   time.Time
	nextBlink    time.Time
	touchUntil   time.Time
}

// New creates a cat that enters from the left edge of a strip width cells
// wide. A nil rng uses a time-seeded source.
func New(msgs Messages, rng Rand, width int, now time.Time) *Cat {
	if rng == nil {
		seed := uint64(now.UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1))
	}
	c := &Cat{
		rng:       rng,
		msgs:      msgs,
		width:     width,
		x:         -SpriteWidth,
		dir:       1,
		pose:      PoseRunning,
		running:   true,
		welcomeAt: now.Add(welcomeDelay),
	}
	c.startBlink(now)
	return c
}

// Resize changes the strip width.
func (c *Cat) Resize(width int) {
	c.width = width
}

// State returns the current frame.
func (c *Cat) State() State {
	return State{
		X:       c.x,
		Dir:     c.dir,
		Pose:    c.pose,
		Blink:   c.blink,
		Message: c.message,
		Visible: c.visible,
	}
}

// Step advances the cat by one frame.
func (c *Cat) Step(now time.Time) {
	if !c.visible && !now.Before(c.welcomeAt) {
		c.visible = true
		c.say(c.msgs.Welcome, now)
	}
	if !c.chattyAt.IsZero() && !now.Before(c.chattyAt) {
		c.chattyAt = time.Time{}
		c.say(c.pick(c.msgs.Idle), now)
	}
	if c.message != "" && !now.Before(c.messageUntil) {
		c.message = ""
	}

	switch {
	case c.blink && !now.Before(c.blinkUntil):
		c.blink = false
	case !c.blink && !now.Before(c.nextBlink):
		c.startBlink(now)
	}

	switch {
	case c.pose == PoseSpecial && !now.Before(c.specialUntil):
		c.resume()
	case !c.running && c.pose != PoseSpecial && !c.resumeAt.IsZero() && !now.Before(c.resumeAt):
		if c.rng.Float64() < reverseChance {
			c.dir = -c.dir
		}
		c.resume()
	}

	if !c.running {
		return
	}
	c.x += c.dir
	switch {
	case c.dir > 0 && c.x > c.width-SpriteWidth:
		c.dir = -1
	case c.dir < 0 && c.x < -SpriteWidth:
		c.dir = 1
	}
	if c.rng.Float64() < stopChance {
		c.stopAndPose(now)
	}
}

// Poke is a click on the cat. Every tenth poke performs the special trick.
func (c *Cat) Poke(now time.Time) {
	c.clicks++
	if c.clicks%specialEvery == 0 {
		c.special(now)
	} else {
		c.say(c.pick(c.msgs.Idle), now)
	}
	if c.running && c.rng.Float64() < pokeStopOdds {
		c.stopAndPose(now)
	}
}

// Touch is the pointer brushing the cat. It reports false while the
// cooldown from the previous touch is active.
func (c *Cat) Touch(now time.Time) bool {
	if now.Before(c.touchUntil) {
		return false
	}
	c.touchUntil = now.Add(touchCooldown)
	c.say(c.pick(c.msgs.Touch), now)
	if c.running && c.rng.Float64() < pokeStopOdds {
		c.stopAndPose(now)
	}
	return true
}

// Clicks returns how many times the cat has been poked.
func (c *Cat) Clicks() int {
	return c.clicks
}

func (c *Cat) stopAndPose(now time.Time) {
	c.running = false
	c.pose = RestPoses[c.rng.IntN(len(RestPoses))]
	if slices.Contains(chattyPoses, c.pose) {
		c.chattyAt = now.Add(chattyDelay)
	}
	pause := pauseMin + time.Duration(c.rng.Float64()*float64(pauseSpread))
	c.resumeAt = now.Add(pause)
}

func (c *Cat) special(now time.Time) {
	c.running = false
	c.resumeAt = time.Time{}
	c.pose = PoseSpecial
	c.specialUntil = now.Add(specialFor)
	c.say(c.msgs.Special, now)
}

func (c *Cat) resume() {
	c.pose = PoseRunning
	c.running = true
	c.resumeAt = time.Time{}
}

func (c *Cat) say(text string, now time.Time) {
	if text == "" {
		return
	}
	c.message = text
	c.messageUntil = now.Add(messageFor)
}

func (c *Cat) startBlink(now time.Time) {
	c.blink = true
	c.blinkUntil = now.Add(blinkFor)
	c.nextBlink = now.Add(blinkMin + time.Duration(c.rng.Float64()*float64(blinkSpread)))
}

func (c *Cat) pick(list []string) string {
	if len(list) == 0 {
		return ""
	}
	return list[c.rng.IntN(len(list))]
}
