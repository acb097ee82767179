package modules

import (
	"fmt"
	"math/rand"
	"strconv"
	"sync"
	"time"

	tg "github.com/amarnathcjd/gogram/telegram"
	"github.com/google/uuid"

	"github.com/simonsmh/telegram-group-easyauth/modules/db"
)

// JoinedUser is the joining account as seen by the gate.
type JoinedUser struct {
	ID   int64
	Name string
	Bot  bool
}

type pendingKey struct {
	Chat int64
	User int64
}

// Instance is one issued, not yet resolved verification. Immutable once
// issued; resolution removes it from the pending set.
type Instance struct {
	ID           uuid.UUID
	ChatID       int64
	UserID       int64
	UserName     string
	Index        int
	Question     string
	CorrectText  string
	CorrectToken string
	Decoys       map[string]string
	JoinMsgID    int32
	PromptMsgID  int32
	IssuedAt     time.Time
}

// Outcome of a resolution attempt, used to pick the callback toast.
type Outcome int

const (
	OutcomePass Outcome = iota
	OutcomeKicked
	OutcomeKickFailed
	OutcomeAdminPass
	OutcomeAdminKick
	OutcomeStale
	OutcomeNotYours
	OutcomeNotAdmin
)

// Gate runs the verification state machine: one pending instance per
// (chat, user), claimed exactly once by whichever of answer, admin
// override or timeout gets there first.
type Gate struct {
	ops    ChatOps
	sched  *Scheduler
	admins *AdminCache
	log    Logger

	mu      sync.Mutex
	pending map[pendingKey]*Instance
}

func NewGate(ops ChatOps, sched *Scheduler, admins *AdminCache, log Logger) *Gate {
	return &Gate{
		ops:     ops,
		sched:   sched,
		admins:  admins,
		log:     log,
		pending: make(map[pendingKey]*Instance),
	}
}

func (g *Gate) PendingCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.pending)
}

// take claims the pending instance for (chat, user). The first caller
// wins; everyone after gets nil. All resolution paths go through here,
// which is what makes resolution exactly-once.
func (g *Gate) take(chatID, userID int64) *Instance {
	key := pendingKey{Chat: chatID, User: userID}
	g.mu.Lock()
	defer g.mu.Unlock()
	inst := g.pending[key]
	delete(g.pending, key)
	return inst
}

func (g *Gate) peek(chatID, userID int64) *Instance {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pending[pendingKey{Chat: chatID, User: userID}]
}

func (g *Gate) cancelTimers(inst *Instance, purposes ...string) {
	for _, p := range purposes {
		g.sched.Cancel(TimerKey{Chat: inst.ChatID, User: inst.UserID, Purpose: p})
	}
}

// Issue mutes the joining user, sends the challenge prompt and arms the
// kick and cleanup timers. Admins and bots are let through untouched. A
// prior pending instance for the same (chat, user) is superseded.
func (g *Gate) Issue(cfg *Config, cat *Catalog, chatID int64, user JoinedUser, joinMsgID int32) error {
	if user.Bot {
		return nil
	}
	if g.admins.IsAdmin(g.ops, chatID, user.ID, cfg.SuperAdmin) {
		return nil
	}
	if !db.GateEnabled(chatID) {
		return nil
	}

	index, ch, err := cat.PickRandom()
	if err != nil {
		return err
	}
	correct, decoys, err := issueTokens(ch)
	if err != nil {
		return err
	}

	if old := g.take(chatID, user.ID); old != nil {
		g.cancelTimers(old, purposeKick, purposeCleanJoin, purposeCleanQuestion)
		g.log.Info(fmt.Sprintf("Gate: superseded pending instance %s for user %d in chat %d", old.ID, user.ID, chatID))
	}

	if res := g.ops.Restrict(chatID, user.ID, true); res != ResultOK {
		g.log.Warn(fmt.Sprintf("Gate: could not restrict user %d in chat %d: %s", user.ID, chatID, res))
	}

	rows := make([][]Button, 0, len(decoys)+2)
	rows = append(rows, []Button{{
		Text: ch.Answer,
		Data: AnswerCallback{UserID: user.ID, Index: index, Token: correct}.encode(),
	}})
	for token, text := range decoys {
		rows = append(rows, []Button{{
			Text: text,
			Data: AnswerCallback{UserID: user.ID, Index: index, Token: token}.encode(),
		}})
	}
	rand.Shuffle(len(rows), func(i, j int) { rows[i], rows[j] = rows[j], rows[i] })
	rows = append(rows, []Button{
		{Text: cfg.Messages.PassBtn, Data: AdminCallback{Pass: true, UserID: user.ID}.encode()},
		{Text: cfg.Messages.KickBtn, Data: AdminCallback{Pass: false, UserID: user.ID}.encode()},
	})

	greet := renderTemplate(cfg.Messages.Greet, map[string]string{
		"user":     mention(user.ID, user.Name),
		"question": ch.Question,
		"time":     strconv.Itoa(cfg.ChallengeTime),
	})
	promptID, err := g.ops.SendKeyboard(chatID, greet, rows)
	if err != nil {
		g.ops.Restrict(chatID, user.ID, false)
		return fmt.Errorf("send challenge prompt: %w", err)
	}

	inst := &Instance{
		ID:           uuid.New(),
		ChatID:       chatID,
		UserID:       user.ID,
		UserName:     user.Name,
		Index:        index,
		Question:     ch.Question,
		CorrectText:  ch.Answer,
		CorrectToken: correct,
		Decoys:       decoys,
		JoinMsgID:    joinMsgID,
		PromptMsgID:  promptID,
		IssuedAt:     time.Now(),
	}
	g.mu.Lock()
	g.pending[pendingKey{Chat: chatID, User: user.ID}] = inst
	g.mu.Unlock()

	delay := time.Duration(cfg.ChallengeTime) * time.Second
	ban := time.Duration(cfg.BanTime) * time.Second
	g.sched.Schedule(TimerKey{Chat: chatID, User: user.ID, Purpose: purposeKick}, delay, func() {
		g.resolveTimeout(chatID, user.ID, ban)
	})
	if joinMsgID > 0 {
		g.sched.Schedule(TimerKey{Chat: chatID, User: user.ID, Purpose: purposeCleanJoin}, delay, func() {
			g.clean(chatID, user.ID, joinMsgID)
		})
	}
	g.sched.Schedule(TimerKey{Chat: chatID, User: user.ID, Purpose: purposeCleanQuestion}, delay, func() {
		g.clean(chatID, user.ID, promptID)
	})

	g.log.Info(fmt.Sprintf("Gate: issued challenge %d to user %d in chat %d (instance %s)", index, user.ID, chatID, inst.ID))
	return nil
}

// ResolveAnswer handles a press on an answer button. Presses by anyone
// but the challenged user change nothing; a press on the wrong answer
// kicks immediately instead of waiting out the clock.
func (g *Gate) ResolveAnswer(cfg *Config, chatID, actorID int64, cb AnswerCallback) Outcome {
	if inst := g.peek(chatID, cb.UserID); inst == nil {
		return OutcomeStale
	}
	if actorID != cb.UserID {
		return OutcomeNotYours
	}
	inst := g.take(chatID, cb.UserID)
	if inst == nil {
		return OutcomeStale
	}

	g.cancelTimers(inst, purposeKick)

	var verdict string
	var outcome Outcome
	if cb.Token == inst.CorrectToken {
		if res := g.ops.Restrict(chatID, inst.UserID, false); res != ResultOK {
			g.log.Warn(fmt.Sprintf("Gate: could not restore user %d in chat %d: %s", inst.UserID, chatID, res))
		}
		g.cancelTimers(inst, purposeCleanJoin)
		verdict = cfg.Messages.Pass
		outcome = OutcomePass
		g.record(inst, "pass")
	} else {
		until := time.Now().Add(time.Duration(cfg.BanTime) * time.Second)
		if res := g.ops.Kick(chatID, inst.UserID, until); res == ResultOK {
			verdict = cfg.Messages.Kick
			outcome = OutcomeKicked
		} else {
			g.log.Warn(fmt.Sprintf("Gate: could not kick user %d in chat %d: %s", inst.UserID, chatID, res))
			verdict = cfg.Messages.NotKick
			outcome = OutcomeKickFailed
		}
		g.record(inst, "kick")
	}

	g.editVerdict(inst, renderTemplate(verdict, map[string]string{
		"user":     mention(inst.UserID, inst.UserName),
		"question": inst.Question,
		"answer":   inst.CorrectText,
	}))
	g.log.Info(fmt.Sprintf("Gate: instance %s resolved by answer, outcome %d", inst.ID, outcome))
	return outcome
}

// ResolveAdmin handles the pass/kick override row. Only the super admin
// and current chat admins may use it.
func (g *Gate) ResolveAdmin(cfg *Config, chatID, actorID int64, actorName string, cb AdminCallback) Outcome {
	if !g.admins.IsAdmin(g.ops, chatID, actorID, cfg.SuperAdmin) {
		return OutcomeNotAdmin
	}
	inst := g.take(chatID, cb.UserID)
	if inst == nil {
		return OutcomeStale
	}

	g.cancelTimers(inst, purposeKick)

	var verdict string
	var outcome Outcome
	if cb.Pass {
		if res := g.ops.Restrict(chatID, inst.UserID, false); res != ResultOK {
			g.log.Warn(fmt.Sprintf("Gate: could not restore user %d in chat %d: %s", inst.UserID, chatID, res))
		}
		g.cancelTimers(inst, purposeCleanJoin)
		verdict = cfg.Messages.AdminPass
		outcome = OutcomeAdminPass
		g.record(inst, "admin_pass")
	} else {
		until := time.Now().Add(time.Duration(cfg.BanTime) * time.Second)
		if res := g.ops.Kick(chatID, inst.UserID, until); res != ResultOK {
			g.log.Warn(fmt.Sprintf("Gate: could not kick user %d in chat %d: %s", inst.UserID, chatID, res))
		}
		verdict = cfg.Messages.AdminKick
		outcome = OutcomeAdminKick
		g.record(inst, "admin_kick")
	}

	g.editVerdict(inst, renderTemplate(verdict, map[string]string{
		"admin": mention(actorID, actorName),
		"user":  mention(inst.UserID, inst.UserName),
	}))
	g.log.Info(fmt.Sprintf("Gate: instance %s resolved by admin %d, outcome %d", inst.ID, actorID, outcome))
	return outcome
}

// resolveTimeout fires when the kick timer was never cancelled. The
// prompt is not edited here: the cleanup timers delete both messages in
// the same window, so a verdict edit would never be seen.
func (g *Gate) resolveTimeout(chatID, userID int64, ban time.Duration) {
	inst := g.take(chatID, userID)
	if inst == nil {
		return
	}
	if res := g.ops.Kick(chatID, userID, time.Now().Add(ban)); res != ResultOK {
		g.log.Warn(fmt.Sprintf("Gate: timeout kick of user %d in chat %d failed: %s", userID, chatID, res))
	}
	g.record(inst, "timeout")
	g.log.Info(fmt.Sprintf("Gate: instance %s timed out", inst.ID))
}

// clean deletes an expired join or prompt message. Hygiene only; the
// message may already be gone.
func (g *Gate) clean(chatID, userID int64, msgID int32) {
	if res := g.ops.DeleteMessage(chatID, msgID); res != ResultOK && res != ResultNotFound {
		g.log.Warn(fmt.Sprintf("Gate: could not delete message %d for user %d in chat %d: %s", msgID, userID, chatID, res))
	}
}

func (g *Gate) editVerdict(inst *Instance, text string) {
	if err := g.ops.EditMessage(inst.ChatID, inst.PromptMsgID, text); err != nil {
		g.log.Warn(fmt.Sprintf("Gate: could not edit prompt %d in chat %d: %v", inst.PromptMsgID, inst.ChatID, err))
	}
}

func (g *Gate) record(inst *Instance, outcome string) {
	if err := db.RecordOutcome(inst.ChatID, inst.UserID, inst.ID.String(), outcome); err != nil {
		g.log.Info(fmt.Sprintf("Gate: could not record outcome for instance %s: %v", inst.ID, err))
	}
}

func NewMemberHandler(p *tg.ParticipantUpdate) error {
	if !p.IsJoined() && !p.IsAdded() {
		return nil
	}
	if p.User == nil {
		return nil
	}

	cfg := CurrentConfig()
	chatID := p.ChatID()
	if cfg.Chat != 0 && chatID != cfg.Chat {
		return nil
	}

	user := JoinedUser{ID: p.User.ID, Name: p.User.FirstName, Bot: p.User.Bot}
	// Channel participant updates carry no join service message, so
	// there is nothing to schedule under clean_join here.
	return gate.Issue(cfg, catalog, chatID, user, 0)
}

func ChallengeCallbackHandler(c *tg.CallbackQuery) error {
	cfg := CurrentConfig()
	cb, err := parseAnswerCallback(c.DataString())
	if err != nil {
		c.Answer(cfg.Messages.Other, &tg.CallbackOptions{Alert: true})
		return nil
	}

	switch gate.ResolveAnswer(cfg, c.ChatID, c.SenderID, cb) {
	case OutcomePass:
		c.Answer(cfg.Messages.Success)
	case OutcomeKicked, OutcomeKickFailed:
		c.Answer(renderTemplate(cfg.Messages.Retry, map[string]string{
			"time": strconv.Itoa(cfg.BanTime),
		}), &tg.CallbackOptions{Alert: true})
	default:
		c.Answer(cfg.Messages.Other, &tg.CallbackOptions{Alert: true})
	}
	return nil
}

func AdminCallbackHandler(c *tg.CallbackQuery) error {
	cfg := CurrentConfig()
	cb, err := parseAdminCallback(c.DataString())
	if err != nil {
		c.Answer(cfg.Messages.Other, &tg.CallbackOptions{Alert: true})
		return nil
	}

	actorName := ""
	if c.Sender != nil {
		actorName = c.Sender.FirstName
	}

	switch gate.ResolveAdmin(cfg, c.ChatID, c.SenderID, actorName, cb) {
	case OutcomeAdminPass:
		c.Answer(cfg.Messages.PassBtn)
	case OutcomeAdminKick:
		c.Answer(cfg.Messages.KickBtn)
	default:
		c.Answer(cfg.Messages.Other, &tg.CallbackOptions{Alert: true})
	}
	return nil
}

func registerGateHandlers() {
	c := Client
	c.On(tg.OnParticipant, NewMemberHandler)
	c.On("callback:challenge", ChallengeCallbackHandler)
	c.On("callback:admin", AdminCallbackHandler)
}

func init() {
	QueueHandlerRegistration(registerGateHandlers)

	Mods.AddModule("Gate", `<b>Gate Module</b>

New members must answer a question before they can talk. Wrong answer
or silence within the time limit removes them; admins can override with
the pass/kick buttons on the prompt.

<b>Commands:</b>
 - /gate on/off - Toggle the join gate for this chat
 - /gatestats - Verification counters for this chat
 - /reload - Re-validate and hot-swap the config file`)
}
