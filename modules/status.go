package modules

import (
	"fmt"
	"os"
	"runtime"
	"time"

	tg "github.com/amarnathcjd/gogram/telegram"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
)

var startTime = time.Now()

func SysInfoHandler(m *tg.NewMessage) error {
	info := "<b>System Info</b>\n\n"

	if percs, err := cpu.Percent(0, false); err == nil && len(percs) > 0 {
		info += fmt.Sprintf("<b>CPU:</b> %.2f%%\n", percs[0])
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		info += fmt.Sprintf("<b>Memory:</b> %s / %s (%.2f%%)\n",
			humanBytes(vm.Used), humanBytes(vm.Total), vm.UsedPercent)
	}
	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if mi, err := proc.MemoryInfo(); err == nil {
			info += fmt.Sprintf("<b>Process Mem:</b> %s\n", humanBytes(mi.RSS))
		}
	}
	if up, err := host.Uptime(); err == nil {
		info += fmt.Sprintf("<b>Host Uptime:</b> %s\n", time.Duration(up)*time.Second)
	}

	info += fmt.Sprintf("<b>Bot Uptime:</b> %s\n", time.Since(startTime).Round(time.Second))
	info += fmt.Sprintf("<b>OS:</b> %s | <b>Arch:</b> %s\n", runtime.GOOS, runtime.GOARCH)
	info += fmt.Sprintf("<b>CPUs:</b> %d | <b>Goroutines:</b> %d\n", runtime.NumCPU(), runtime.NumGoroutine())
	info += fmt.Sprintf("<b>Pending Verifications:</b> %d", gate.PendingCount())

	m.Reply(info)
	return nil
}

func humanBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func registerStatusHandlers() {
	Client.On("cmd:sys", SysInfoHandler)
}

func init() {
	QueueHandlerRegistration(registerStatusHandlers)

	Mods.AddModule("Misc", `<b>Misc Module</b>

<b>Commands:</b>
 - /start - Show chat and user ids
 - /sys - System and process status
 - /help - This help`)
}
