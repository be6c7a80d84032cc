package system

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// Info describes the tool and the host it runs on, for the info command.
type Info struct {
	Version          string
	SupportedFormats []string
	Classifiers      []string

	OS       string
	Platform string
	CPUModel string
	CPUCount int
	MemTotal uint64
}

// Collect gathers host facts. Probe failures degrade to empty fields rather
// than failing the command; the tool facts are always present.
func Collect(version string, classifiers []string) Info {
	info := Info{
		Version:          version,
		SupportedFormats: []string{"JPEG", "PNG", "BMP", "TIFF", "PDF (scanned plates)"},
		Classifiers:      classifiers,
		OS:               runtime.GOOS,
		CPUCount:         runtime.NumCPU(),
	}

	if h, err := host.Info(); err == nil {
		info.Platform = fmt.Sprintf("%s %s", h.Platform, h.PlatformVersion)
	}
	if cpus, err := cpu.Info(); err == nil && len(cpus) > 0 {
		info.CPUModel = cpus[0].ModelName
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		info.MemTotal = vm.Total
	}

	return info
}

// String renders the report the way the CLI prints it.
func (i Info) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "fossilscan %s\n", i.Version)
	fmt.Fprintf(&b, "Supported formats: %s\n", strings.Join(i.SupportedFormats, ", "))
	fmt.Fprintf(&b, "Classifiers: %s\n", strings.Join(i.Classifiers, ", "))
	fmt.Fprintf(&b, "Host: %s (%s), %d CPUs", i.OS, i.Platform, i.CPUCount)
	if i.CPUModel != "" {
		fmt.Fprintf(&b, " (%s)", i.CPUModel)
	}
	if i.MemTotal > 0 {
		fmt.Fprintf(&b, ", %.1f GiB memory", float64(i.MemTotal)/(1<<30))
	}
	b.WriteByte('\n')
	return b.String()
}
