package modules

import (
	"fmt"

	tg "github.com/amarnathcjd/gogram/telegram"
)

var (
	Client       *tg.Client
	handlerQueue []func()

	cfgPath string
	catalog *Catalog
	sched   *Scheduler
	admins  *AdminCache
	gate    *Gate
)

func InitClient(c *tg.Client) {
	Client = c
}

// Setup wires the gate components against the loaded config. Must run
// after InitClient and before RegisterHandlers.
func Setup(cfg *Config, path string) {
	cfgPath = path
	SwapConfig(cfg)

	catalog = NewCatalog(cfg.Challenges)
	sched = NewScheduler()
	admins = NewAdminCache(adminCacheTTL)
	gate = NewGate(&gogramOps{}, sched, admins, clientLogger{})
}

func QueueHandlerRegistration(fn func()) {
	handlerQueue = append(handlerQueue, fn)
}

func RegisterHandlers() {
	if Client == nil {
		panic("Client not initialized")
	}

	_, _ = Client.UpdatesGetState()
	Client.SetCommandPrefixes("/!")

	for _, registerFn := range handlerQueue {
		registerFn()
	}

	Mods.Init(Client)
}

// Logger is the small logging surface the gate components need. The live
// implementation forwards to gogram's client logger.
type Logger interface {
	Info(msg string)
	Warn(msg string)
}

type clientLogger struct{}

func (clientLogger) Info(msg string) {
	if Client != nil {
		Client.Logger.Info(msg)
	}
}

func (clientLogger) Warn(msg string) {
	if Client != nil {
		Client.Logger.Warn(msg)
	}
}

type nopLogger struct{}

func (nopLogger) Info(string) {}
func (nopLogger) Warn(string) {}

func mention(id int64, name string) string {
	if name == "" {
		name = fmt.Sprintf("%d", id)
	}
	return fmt.Sprintf("<a href=\"tg://user?id=%d\">%s</a>", id, name)
}

// isOperator reports whether the user may run management commands:
// the configured super admin or a live admin of the guarded chat.
func isOperator(cfg *Config, userID int64) bool {
	if cfg.SuperAdmin != 0 && userID == cfg.SuperAdmin {
		return true
	}
	if cfg.Chat == 0 {
		return false
	}
	return admins.IsAdmin(gate.ops, cfg.Chat, userID, cfg.SuperAdmin)
}
