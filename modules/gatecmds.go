package modules

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tg "github.com/amarnathcjd/gogram/telegram"

	"github.com/simonsmh/telegram-group-easyauth/modules/db"
)

func StartHandle(m *tg.NewMessage) error {
	cfg := CurrentConfig()
	m.Reply(renderTemplate(cfg.Messages.Start, map[string]string{
		"chat": strconv.FormatInt(m.ChatID(), 10),
		"id":   strconv.FormatInt(m.SenderID(), 10),
	}))
	return nil
}

func GateToggleHandler(m *tg.NewMessage) error {
	if m.IsPrivate() {
		m.Reply("The gate can only be toggled in groups")
		return nil
	}

	cfg := CurrentConfig()
	if !isOperator(cfg, m.SenderID()) {
		m.Reply(cfg.Messages.Unauthorized)
		return nil
	}

	switch strings.ToLower(strings.TrimSpace(m.Args())) {
	case "on", "yes", "enable", "1":
		db.SetGateEnabled(m.ChatID(), true)
		m.Reply("Join gate enabled")
	case "off", "no", "disable", "0":
		db.SetGateEnabled(m.ChatID(), false)
		m.Reply("Join gate disabled")
	default:
		status := "disabled"
		if db.GateEnabled(m.ChatID()) {
			status = "enabled"
		}
		m.Reply(fmt.Sprintf("Join gate is currently <b>%s</b>\n\nUsage: /gate on/off", status))
	}
	return nil
}

func GateStatsHandler(m *tg.NewMessage) error {
	if m.IsPrivate() {
		m.Reply("Stats can only be checked in groups")
		return nil
	}

	stats, err := db.GetGateStats(m.ChatID())
	if err != nil {
		m.Reply("Failed to load stats")
		return nil
	}

	m.Reply(fmt.Sprintf(`<b>Verification stats</b>

Passed: %d
Kicked (wrong answer): %d
Admin pass: %d
Admin kick: %d
Timed out: %d
Pending now: %d`,
		stats.Passed, stats.Kicked, stats.AdminPassed, stats.AdminKicked,
		stats.TimedOut, gate.PendingCount()))
	return nil
}

// ReloadHandler re-validates and hot-swaps the config. While a
// verification is in flight the reload is queued instead, so challenge
// indices never shift under a pending instance.
func ReloadHandler(m *tg.NewMessage) error {
	cfg := CurrentConfig()
	if !isOperator(cfg, m.SenderID()) {
		m.Reply(cfg.Messages.Unauthorized)
		return nil
	}

	if gate.PendingCount() > 0 {
		queueReload(cfg)
		m.Reply(cfg.Messages.Pending)
		return nil
	}

	fresh, err := LoadConfig(cfgPath)
	if err != nil {
		m.Reply(fmt.Sprintf("Reload failed: %v", err))
		return nil
	}
	SwapConfig(fresh)
	catalog.Load(fresh.Challenges)
	admins.Invalidate(fresh.Chat)

	m.Reply(renderTemplate(fresh.Messages.Reload, map[string]string{
		"num": strconv.Itoa(len(fresh.Challenges)),
	}))
	return nil
}

// queueReload retries the swap once the current verification window has
// drained. Re-queues itself while instances are still pending.
func queueReload(cfg *Config) {
	delay := time.Duration(cfg.ChallengeTime) * time.Second
	sched.Schedule(TimerKey{Purpose: purposeReload}, delay, func() {
		if gate.PendingCount() > 0 {
			queueReload(CurrentConfig())
			return
		}
		fresh, err := LoadConfig(cfgPath)
		if err != nil {
			gate.log.Warn(fmt.Sprintf("Reload: %v", err))
			return
		}
		SwapConfig(fresh)
		catalog.Load(fresh.Challenges)
		admins.Invalidate(fresh.Chat)
		gate.log.Info(fmt.Sprintf("Reload: swapped in %d challenges from %s", len(fresh.Challenges), cfgPath))
	})
}

func registerGateCommands() {
	c := Client
	c.On("cmd:start", StartHandle)
	c.On("cmd:gate", GateToggleHandler)
	c.On("cmd:gatestats", GateStatsHandler)
	c.On("cmd:reload", ReloadHandler)
}

func init() {
	QueueHandlerRegistration(registerGateCommands)
}
