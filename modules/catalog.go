package modules

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
)

var (
	ErrConfig          = errors.New("invalid config")
	ErrEmptyCatalog    = errors.New("no challenges configured")
	ErrIndexOutOfRange = errors.New("challenge index out of range")
	ErrTooManyDecoys   = errors.New("too many wrong answers")
)

// maxDecoys bounds the fingerprint digest length so callback payloads
// stay within Telegram's 64-byte limit.
const maxDecoys = 19

// Challenge is one question with a correct answer and decoy answers.
type Challenge struct {
	Question string   `yaml:"question"`
	Answer   string   `yaml:"answer"`
	Wrong    []string `yaml:"wrong"`
}

func (c Challenge) Validate() error {
	if c.Question == "" {
		return fmt.Errorf("%w: empty question", ErrConfig)
	}
	if c.Answer == "" {
		return fmt.Errorf("%w: empty answer for question %q", ErrConfig, c.Question)
	}
	if len(c.Wrong) == 0 {
		return fmt.Errorf("%w: no wrong answers for question %q", ErrConfig, c.Question)
	}
	if len(c.Wrong) > maxDecoys {
		return fmt.Errorf("%w: question %q has %d", ErrTooManyDecoys, c.Question, len(c.Wrong))
	}
	seen := map[string]bool{c.Answer: true}
	for _, w := range c.Wrong {
		if w == "" {
			return fmt.Errorf("%w: empty wrong answer for question %q", ErrConfig, c.Question)
		}
		if seen[w] {
			return fmt.Errorf("%w: duplicate answer %q for question %q", ErrConfig, w, c.Question)
		}
		seen[w] = true
	}
	return nil
}

func (c Challenge) clone() Challenge {
	cp := c
	cp.Wrong = append([]string(nil), c.Wrong...)
	return cp
}

// Catalog holds the configured challenges. Mutations do not persist by
// themselves; callers flush the new snapshot back to the config file.
type Catalog struct {
	mu         sync.RWMutex
	challenges []Challenge
}

func NewCatalog(challenges []Challenge) *Catalog {
	c := &Catalog{}
	c.Load(challenges)
	return c
}

// Load replaces the whole challenge list, e.g. after a config reload.
func (c *Catalog) Load(challenges []Challenge) {
	cp := make([]Challenge, len(challenges))
	for i, ch := range challenges {
		cp[i] = ch.clone()
	}
	c.mu.Lock()
	c.challenges = cp
	c.mu.Unlock()
}

func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.challenges)
}

func (c *Catalog) PickRandom() (int, Challenge, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.challenges) == 0 {
		return 0, Challenge{}, ErrEmptyCatalog
	}
	i := rand.Intn(len(c.challenges))
	return i, c.challenges[i].clone(), nil
}

func (c *Catalog) Get(index int) (Challenge, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if index < 0 || index >= len(c.challenges) {
		return Challenge{}, ErrIndexOutOfRange
	}
	return c.challenges[index].clone(), nil
}

func (c *Catalog) Add(ch Challenge) (int, error) {
	if err := ch.Validate(); err != nil {
		return 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.challenges = append(c.challenges, ch.clone())
	return len(c.challenges) - 1, nil
}

func (c *Catalog) Replace(index int, ch Challenge) error {
	if err := ch.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index >= len(c.challenges) {
		return ErrIndexOutOfRange
	}
	c.challenges[index] = ch.clone()
	return nil
}

// Delete removes the challenge at index and re-indexes the rest. Callers
// holding stale indices should re-fetch after a delete.
func (c *Catalog) Delete(index int) (Challenge, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index >= len(c.challenges) {
		return Challenge{}, ErrIndexOutOfRange
	}
	removed := c.challenges[index]
	c.challenges = append(c.challenges[:index], c.challenges[index+1:]...)
	return removed, nil
}

// Snapshot returns a copy of the current challenge list.
func (c *Catalog) Snapshot() []Challenge {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cp := make([]Challenge, len(c.challenges))
	for i, ch := range c.challenges {
		cp[i] = ch.clone()
	}
	return cp
}
