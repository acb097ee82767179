package modules

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"gopkg.in/yaml.v3"
)

// Config is an immutable snapshot of the gate configuration. Handlers
// grab one snapshot per invocation via CurrentConfig; /reload swaps the
// whole pointer so in-flight handlers keep a consistent view.
type Config struct {
	Chat          int64       `yaml:"chat"`
	SuperAdmin    int64       `yaml:"super_admin"`
	ChallengeTime int         `yaml:"challenge_time"`
	BanTime       int         `yaml:"ban_time"`
	Messages      Messages    `yaml:"messages"`
	Challenges    []Challenge `yaml:"challenges"`
}

type Messages struct {
	Greet        string `yaml:"greet,omitempty"`
	Success      string `yaml:"success,omitempty"`
	Retry        string `yaml:"retry,omitempty"`
	Pass         string `yaml:"pass,omitempty"`
	Kick         string `yaml:"kick,omitempty"`
	NotKick      string `yaml:"not_kick,omitempty"`
	PassBtn      string `yaml:"pass_btn,omitempty"`
	KickBtn      string `yaml:"kick_btn,omitempty"`
	AdminPass    string `yaml:"admin_pass,omitempty"`
	AdminKick    string `yaml:"admin_kick,omitempty"`
	Other        string `yaml:"other,omitempty"`
	Reload       string `yaml:"reload,omitempty"`
	Pending      string `yaml:"pending,omitempty"`
	Start        string `yaml:"start,omitempty"`
	Unauthorized string `yaml:"unauthorized,omitempty"`
}

var defaultMessages = Messages{
	Greet:        "Hi {user}, please answer within {time} seconds:\n\n<b>{question}</b>",
	Success:      "Correct!",
	Retry:        "Wrong answer. You may rejoin after {time} seconds.",
	Pass:         "{user} passed the verification.\n\nQ: {question}\nA: <b>{answer}</b>",
	Kick:         "{user} failed the verification and was removed.\n\nQ: {question}\nA: <b>{answer}</b>",
	NotKick:      "{user} failed the verification but I lack the rights to remove them.\n\nQ: {question}\nA: <b>{answer}</b>",
	PassBtn:      "Pass",
	KickBtn:      "Kick",
	AdminPass:    "{admin} let {user} in.",
	AdminKick:    "{admin} removed {user}.",
	Other:        "This button is not for you.",
	Reload:       "Reloaded {num} challenges.",
	Pending:      "Verifications in flight, reload queued.",
	Start:        "Chat ID: <code>{chat}</code>\nYour ID: <code>{id}</code>",
	Unauthorized: "You are not allowed to use this command.",
}

var currentConfig atomic.Pointer[Config]

func CurrentConfig() *Config { return currentConfig.Load() }

func SwapConfig(cfg *Config) { currentConfig.Store(cfg) }

func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	d := defaultMessages
	m := &c.Messages
	fill := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	fill(&m.Greet, d.Greet)
	fill(&m.Success, d.Success)
	fill(&m.Retry, d.Retry)
	fill(&m.Pass, d.Pass)
	fill(&m.Kick, d.Kick)
	fill(&m.NotKick, d.NotKick)
	fill(&m.PassBtn, d.PassBtn)
	fill(&m.KickBtn, d.KickBtn)
	fill(&m.AdminPass, d.AdminPass)
	fill(&m.AdminKick, d.AdminKick)
	fill(&m.Other, d.Other)
	fill(&m.Reload, d.Reload)
	fill(&m.Pending, d.Pending)
	fill(&m.Start, d.Start)
	fill(&m.Unauthorized, d.Unauthorized)
}

func (c *Config) Validate() error {
	if c.ChallengeTime <= 0 {
		return fmt.Errorf("%w: challenge_time must be positive", ErrConfig)
	}
	if c.BanTime <= 0 {
		return fmt.Errorf("%w: ban_time must be positive", ErrConfig)
	}
	if len(c.Challenges) == 0 {
		return fmt.Errorf("%w: no challenges configured", ErrConfig)
	}
	for i, ch := range c.Challenges {
		if err := ch.Validate(); err != nil {
			return fmt.Errorf("challenge %d: %w", i, err)
		}
	}
	return nil
}

func (c *Config) Save(path string) error {
	raw, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0644)
}

// Clone returns a deep copy suitable for building the next snapshot.
func (c *Config) Clone() *Config {
	cp := *c
	cp.Challenges = make([]Challenge, len(c.Challenges))
	for i, ch := range c.Challenges {
		cp.Challenges[i] = ch.clone()
	}
	return &cp
}

// renderTemplate substitutes {name} placeholders, the same way the
// welcome formatter does.
func renderTemplate(tpl string, repl map[string]string) string {
	out := tpl
	for placeholder, value := range repl {
		out = strings.ReplaceAll(out, "{"+placeholder+"}", value)
	}
	return out
}
