// pattern: Functional Core

package mascot

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed messages.yaml
var defaultMessages []byte

// Messages is the cat's speech text.
type Messages struct {
	Welcome string   `yaml:"welcome"`
	Special string   `yaml:"special"`
	Idle    []string `yaml:"idle"`
	Touch   []string `yaml:"touch"`
}

// ParseMessages decodes YAML message data. Idle messages are required;
// touch falls back to idle.
func ParseMessages(data []byte) (Messages, error) {
	var m Messages
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Messages{}, fmt.Errorf("parse mascot messages: %w", err)
	}
	if len(m.Idle) == 0 {
		return Messages{}, errors.New("parse mascot messages: no idle messages")
	}
	if len(m.Touch) == 0 {
		m.Touch = m.Idle
	}
	return m, nil
}

// DefaultMessages returns the built-in messages.
func DefaultMessages() Messages {
	m, err := ParseMessages(defaultMessages)
	if err != nil {
		panic(err)
	}
	return m
}

// LoadMessages reads messages from path. Fields missing from the file keep
// their built-in values.
func LoadMessages(path string) (Messages, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Messages{}, fmt.Errorf("read mascot messages: %w", err)
	}
	var override Messages
	if err := yaml.Unmarshal(data, &override); err != nil {
		return Messages{}, fmt.Errorf("parse mascot messages %s: %w", path, err)
	}
	m := DefaultMessages()
	if override.Welcome != "" {
		m.Welcome = override.Welcome
	}
	if override.Special != "" {
		m.Special = override.Special
	}
	if len(override.Idle) > 0 {
		m.Idle = override.Idle
	}
	if len(override.Touch) > 0 {
		m.Touch = override.Touch
	}
	return m, nil
}
