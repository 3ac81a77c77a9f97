package chat

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

//go:embed knowledge.yaml
var defaultKnowledge []byte

// ErrInvalidKnowledge is returned when a knowledge table fails validation.
var ErrInvalidKnowledge = errors.New("invalid knowledge table")

// Entry is one canned answer.
type Entry struct {
	Topic    string   `yaml:"topic"`
	Keywords []string `yaml:"keywords"`
	Advice   string   `yaml:"advice"`
}

// Knowledge holds the two ordered sections of canned answers.
type Knowledge struct {
	FirstAid         []Entry `yaml:"first_aid"`
	CommonConditions []Entry `yaml:"common_conditions"`
}

// DefaultKnowledge returns the table compiled into the binary.
func DefaultKnowledge() (Knowledge, error) {
	return ParseKnowledge(defaultKnowledge)
}

// ParseKnowledge decodes a YAML table and lower-cases its keywords.
func ParseKnowledge(b []byte) (Knowledge, error) {
	var k Knowledge
	if err := yaml.Unmarshal(b, &k); err != nil {
		return Knowledge{}, fmt.Errorf("%w: %v", ErrInvalidKnowledge, err)
	}
	for _, section := range [][]Entry{k.FirstAid, k.CommonConditions} {
		for i := range section {
			e := &section[i]
			if strings.TrimSpace(e.Topic) == "" || strings.TrimSpace(e.Advice) == "" {
				return Knowledge{}, fmt.Errorf("%w: entry %d needs a topic and advice", ErrInvalidKnowledge, i)
			}
			if len(e.Keywords) == 0 {
				return Knowledge{}, fmt.Errorf("%w: %q has no keywords", ErrInvalidKnowledge, e.Topic)
			}
			for j, kw := range e.Keywords {
				kw = strings.ToLower(strings.TrimSpace(kw))
				if kw == "" {
					return Knowledge{}, fmt.Errorf("%w: %q has an empty keyword", ErrInvalidKnowledge, e.Topic)
				}
				e.Keywords[j] = kw
			}
		}
	}
	return k, nil
}

// Lookup returns the formatted canned answer for message, if any.
func (k Knowledge) Lookup(message string) (string, bool) {
	text := strings.ToLower(message)
	if e, ok := firstMatch(k.FirstAid, text); ok {
		return fmt.Sprintf("For %s, here's what you should do: %s\n\n"+
			"Remember, this is general advice. For serious conditions, always call emergency services immediately.",
			e.Topic, e.Advice), true
	}
	if e, ok := firstMatch(k.CommonConditions, text); ok {
		return fmt.Sprintf("For %s, here are some general recommendations: %s\n\n"+
			"If symptoms persist or worsen, please consult a healthcare professional.",
			e.Topic, e.Advice), true
	}
	return "", false
}

func firstMatch(entries []Entry, text string) (Entry, bool) {
	for _, e := range entries {
		for _, kw := range e.Keywords {
			if containsWordPrefix(text, kw) {
				return e, true
			}
		}
	}
	return Entry{}, false
}

// containsWordPrefix reports whether kw occurs in text at the start of a
// word, so "burn" matches "burns" but "cut" does not match "acute".
func containsWordPrefix(text, kw string) bool {
	for offset := 0; offset <= len(text); {
		i := strings.Index(text[offset:], kw)
		if i < 0 {
			return false
		}
		at := offset + i
		if at == 0 {
			return true
		}
		prev, _ := utf8.DecodeLastRuneInString(text[:at])
		if !unicode.IsLetter(prev) && !unicode.IsDigit(prev) {
			return true
		}
		offset = at + 1
	}
	return false
}
