package modules

import (
	"fmt"
	"sort"
	"strings"

	"github.com/amarnathcjd/gogram/telegram"
)

type Modules struct {
	Mod []Mod
}

type Mod struct {
	Name string
	Help string
}

func (m *Modules) AddModule(name, help string) {
	m.Mod = append(m.Mod, Mod{name, help})
}

func (m *Modules) Init(c *telegram.Client) {
	for _, v := range m.Mod {
		modName := v.Name
		modHelp := v.Help
		c.On("callback:help_"+strings.ToLower(modName), func(c *telegram.CallbackQuery) error {
			return HelpModuleCallback(modName, modHelp)(c)
		})
	}
	c.On("callback:help_back", HelpBackCallback)
}

var Mods = Modules{}

func helpMenu() (string, *telegram.ReplyInlineMarkup) {
	b := telegram.Button

	sortedMods := make([]Mod, len(Mods.Mod))
	copy(sortedMods, Mods.Mod)
	sort.Slice(sortedMods, func(i, j int) bool {
		return sortedMods[i].Name < sortedMods[j].Name
	})

	var buttons []telegram.KeyboardButton
	for _, v := range sortedMods {
		buttons = append(buttons, b.Data(v.Name, "help_"+strings.ToLower(v.Name)))
	}

	text := `<b>Group Easyauth</b>
<i>A join gate: new members answer a question or they are shown out.</i>

Select a module below to view its commands.

<b>Available Modules:</b> ` + fmt.Sprintf("%d", len(Mods.Mod))

	return text, telegram.NewKeyboard().NewColumn(2, buttons...).Build()
}

func HelpHandle(m *telegram.NewMessage) error {
	text, markup := helpMenu()
	m.Reply(text, &telegram.SendOptions{ReplyMarkup: markup})
	return nil
}

func HelpModuleCallback(name, help string) func(*telegram.CallbackQuery) error {
	return func(c *telegram.CallbackQuery) error {
		c.Answer("Loading " + name + "...")

		b := telegram.Button
		c.Edit(help+"\n\n<i>Use /help to see all modules</i>", &telegram.SendOptions{
			ReplyMarkup: telegram.NewKeyboard().AddRow(
				b.Data("Back to Menu", "help_back"),
			).Build(),
		})
		return nil
	}
}

func HelpBackCallback(c *telegram.CallbackQuery) error {
	text, markup := helpMenu()
	c.Edit(text, &telegram.SendOptions{ReplyMarkup: markup})
	return nil
}

func registerHelpHandlers() {
	Client.On("cmd:help", HelpHandle)
}

func init() {
	QueueHandlerRegistration(registerHelpHandlers)
}
