// pattern: Functional Core

package mascot

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// sprites are drawn facing right. Every row is SpriteWidth cells wide and
// "o" marks the eyes.
var sprites = map[Pose][3]string{
	PoseRunning:  {` /\_/\  `, `( o.o )~`, ` /   \  `},
	PoseSitting:  {` /\_/\  `, `( o.o ) `, ` (" ")  `},
	PoseLicking:  {` /\_/\  `, `( o.o )~`, ` (" )\  `},
	PoseSleeping: {` /\_/\  `, `( -.- )z`, ` (___)  `},
	PoseHappy:    {` /\_/\  `, `( o.o )♪`, ` (" ")  `},
	PoseExcited:  {`\/\_/\/ `, `( o.o )!`, ` (" ")  `},
	PoseCurious:  {` /\_/\  `, `( o.o )?`, ` (" ")  `},
	PosePlaying:  {` /\_/\ o`, `( o.o )/`, ` (" ")  `},
	PoseSpecial:  {`\ /\_/\/`, ` ( o.o )`, `  \v v/ `},
}

var mirror = strings.NewReplacer(
	"/", `\`, `\`, "/",
	"(", ")", ")", "(",
	"<", ">", ">", "<",
)

// Sprite returns the three rows for pose, mirrored when dir is negative,
// with the eyes closed when blink is set.
func Sprite(pose Pose, dir int, blink bool) [3]string {
	rows, ok := sprites[pose]
	if !ok {
		rows = sprites[PoseSitting]
	}
	var out [3]string
	for i, row := range rows {
		if blink {
			row = strings.ReplaceAll(row, "o.o", "-.-")
		}
		if dir < 0 {
			row = mirror.Replace(reverse(row))
		}
		out[i] = row
	}
	return out
}

// Render draws the cat into a strip of the given width: a speech line
// followed by the three sprite rows. The strip is empty until the cat
// becomes visible.
func Render(s State, width int) []string {
	lines := make([]string, 4)
	if !s.Visible || width <= 0 {
		return lines
	}
	sprite := Sprite(s.Pose, s.Dir, s.Blink)
	for i, row := range sprite {
		lines[i+1] = place(row, s.X, width)
	}
	if s.Message != "" {
		bubble := "「" + s.Message + "」"
		x := max(0, min(s.X, width-ansi.StringWidth(bubble)))
		lines[0] = place(bubble, x, width)
	}
	return lines
}

// place positions text at column x of a width-cell line, clipping whatever
// falls outside.
func place(text string, x, width int) string {
	w := ansi.StringWidth(text)
	if x >= width || x+w <= 0 {
		return ""
	}
	if x < 0 {
		text = ansi.TruncateLeft(text, -x, "")
		x = 0
	}
	return strings.Repeat(" ", x) + ansi.Truncate(text, width-x, "")
}

func reverse(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}
