package modules

import (
	"fmt"
	"strconv"
	"strings"

	tg "github.com/amarnathcjd/gogram/telegram"
)

// saveCatalog flushes the current challenge list into a fresh config
// snapshot, persists it and swaps it in.
func saveCatalog() error {
	cfg := CurrentConfig().Clone()
	cfg.Challenges = catalog.Snapshot()
	if err := cfg.Save(cfgPath); err != nil {
		return err
	}
	SwapConfig(cfg)
	return nil
}

// parseChallengeSpec turns "Question | Correct | Wrong1 | Wrong2" into a
// Challenge. Validation happens at the catalog.
func parseChallengeSpec(spec string) (Challenge, error) {
	parts := strings.Split(spec, "|")
	if len(parts) < 3 {
		return Challenge{}, fmt.Errorf("need at least question, answer and one wrong answer")
	}
	ch := Challenge{
		Question: strings.TrimSpace(parts[0]),
		Answer:   strings.TrimSpace(parts[1]),
	}
	for _, w := range parts[2:] {
		ch.Wrong = append(ch.Wrong, strings.TrimSpace(w))
	}
	return ch, nil
}

func questionListMarkup() [][]tg.KeyboardButton {
	var rows [][]tg.KeyboardButton
	for i, ch := range catalog.Snapshot() {
		rows = append(rows, []tg.KeyboardButton{
			tg.Button.Data(fmt.Sprintf("%d. %s", i+1, ch.Question), fmt.Sprintf("qdetail|%d", i)),
		})
	}
	return rows
}

func ListQuestionsHandler(m *tg.NewMessage) error {
	cfg := CurrentConfig()
	if !isOperator(cfg, m.SenderID()) {
		m.Reply(cfg.Messages.Unauthorized)
		return nil
	}

	rows := questionListMarkup()
	if len(rows) == 0 {
		m.Reply("No challenges configured")
		return nil
	}

	kb := tg.NewKeyboard()
	for _, row := range rows {
		kb.AddRow(row...)
	}
	m.Reply(fmt.Sprintf("<b>%d challenges</b> - pick one for details:", catalog.Len()),
		&tg.SendOptions{ReplyMarkup: kb.Build()})
	return nil
}

func QuestionDetailCallback(c *tg.CallbackQuery) error {
	cfg := CurrentConfig()
	if !isOperator(cfg, c.SenderID) {
		c.Answer(cfg.Messages.Other, &tg.CallbackOptions{Alert: true})
		return nil
	}

	index, err := strconv.Atoi(strings.TrimPrefix(c.DataString(), "qdetail|"))
	if err != nil {
		c.Answer("Bad index", &tg.CallbackOptions{Alert: true})
		return nil
	}
	ch, err := catalog.Get(index)
	if err != nil {
		c.Answer("Challenge is gone, list again", &tg.CallbackOptions{Alert: true})
		return nil
	}

	c.Answer("")
	c.Edit(fmt.Sprintf("<b>Q:</b> %s\n<b>A:</b> %s\n<b>Wrong:</b>\n%s", ch.Question, ch.Answer, strings.Join(ch.Wrong, "\n")),
		&tg.SendOptions{ReplyMarkup: tg.NewKeyboard().AddRow(
			tg.Button.Data("Back", "qlist"),
			tg.Button.Data("Delete", fmt.Sprintf("qdel|%d", index)),
		).Build()})
	return nil
}

func QuestionListCallback(c *tg.CallbackQuery) error {
	cfg := CurrentConfig()
	if !isOperator(cfg, c.SenderID) {
		c.Answer(cfg.Messages.Other, &tg.CallbackOptions{Alert: true})
		return nil
	}

	c.Answer("")
	kb := tg.NewKeyboard()
	for _, row := range questionListMarkup() {
		kb.AddRow(row...)
	}
	c.Edit(fmt.Sprintf("<b>%d challenges</b> - pick one for details:", catalog.Len()),
		&tg.SendOptions{ReplyMarkup: kb.Build()})
	return nil
}

func QuestionDeleteCallback(c *tg.CallbackQuery) error {
	cfg := CurrentConfig()
	if !isOperator(cfg, c.SenderID) {
		c.Answer(cfg.Messages.Other, &tg.CallbackOptions{Alert: true})
		return nil
	}

	index, err := strconv.Atoi(strings.TrimPrefix(c.DataString(), "qdel|"))
	if err != nil {
		c.Answer("Bad index", &tg.CallbackOptions{Alert: true})
		return nil
	}
	if catalog.Len() <= 1 {
		c.Answer("Cannot delete the last challenge", &tg.CallbackOptions{Alert: true})
		return nil
	}
	removed, err := catalog.Delete(index)
	if err != nil {
		c.Answer("Challenge is gone, list again", &tg.CallbackOptions{Alert: true})
		return nil
	}
	if err := saveCatalog(); err != nil {
		c.Answer(fmt.Sprintf("Save failed: %v", err), &tg.CallbackOptions{Alert: true})
		return nil
	}

	c.Answer("Deleted")
	c.Edit(fmt.Sprintf("Deleted challenge: %s\n%d remain. Indices have shifted.", removed.Question, catalog.Len()))
	return nil
}

func AddQuestionHandler(m *tg.NewMessage) error {
	cfg := CurrentConfig()
	if !isOperator(cfg, m.SenderID()) {
		m.Reply(cfg.Messages.Unauthorized)
		return nil
	}

	if m.Args() == "" {
		m.Reply("Usage: /addquestion Question | Correct answer | Wrong 1 | Wrong 2 ...")
		return nil
	}
	ch, err := parseChallengeSpec(m.Args())
	if err != nil {
		m.Reply("Invalid challenge: " + err.Error())
		return nil
	}
	index, err := catalog.Add(ch)
	if err != nil {
		m.Reply("Invalid challenge: " + err.Error())
		return nil
	}
	if err := saveCatalog(); err != nil {
		m.Reply(fmt.Sprintf("Save failed: %v", err))
		return nil
	}

	m.Reply(fmt.Sprintf("Added challenge %d: %s", index+1, ch.Question))
	return nil
}

func EditQuestionHandler(m *tg.NewMessage) error {
	cfg := CurrentConfig()
	if !isOperator(cfg, m.SenderID()) {
		m.Reply(cfg.Messages.Unauthorized)
		return nil
	}

	args := strings.SplitN(m.Args(), " ", 2)
	if len(args) < 2 {
		m.Reply("Usage: /editquestion <number> Question | Correct answer | Wrong 1 ...")
		return nil
	}
	number, err := strconv.Atoi(args[0])
	if err != nil {
		m.Reply("First argument must be the challenge number from /questions")
		return nil
	}
	ch, err := parseChallengeSpec(args[1])
	if err != nil {
		m.Reply("Invalid challenge: " + err.Error())
		return nil
	}
	if err := catalog.Replace(number-1, ch); err != nil {
		m.Reply("Invalid challenge: " + err.Error())
		return nil
	}
	if err := saveCatalog(); err != nil {
		m.Reply(fmt.Sprintf("Save failed: %v", err))
		return nil
	}

	m.Reply(fmt.Sprintf("Replaced challenge %d: %s", number, ch.Question))
	return nil
}

func registerQuestionHandlers() {
	c := Client
	c.On("cmd:questions", ListQuestionsHandler)
	c.On("cmd:addquestion", AddQuestionHandler)
	c.On("cmd:editquestion", EditQuestionHandler)
	c.On("callback:qdetail", QuestionDetailCallback)
	c.On("callback:qlist", QuestionListCallback)
	c.On("callback:qdel", QuestionDeleteCallback)
}

func init() {
	QueueHandlerRegistration(registerQuestionHandlers)

	Mods.AddModule("Questions", `<b>Questions Module</b>

Manage the challenge catalog. Changes are validated, written back to
the config file and hot-swapped immediately.

<b>Commands:</b>
 - /questions - List challenges with detail/delete buttons
 - /addquestion Question | Correct | Wrong 1 | Wrong 2 ... - Add a challenge
 - /editquestion <n> Question | Correct | Wrong 1 ... - Replace challenge n`)
}
