package shells

import (
	"os"
	"sort"

	"github.com/Coffigny94/pymanager/internal/host"
)

// Detector priorities. Explicit configuration beats the terminal's own
// name, which beats environment inference, which beats the OS default.
const (
	PrioritySetting      = 100
	PriorityTerminalName = 90
	PriorityEnvironment  = 80
	PriorityDefault      = 10
)

// Signals are the facts available to shell detection. Detectors are pure
// functions over this struct; none may assume another detector ran.
type Signals struct {
	// ConfiguredShell is the user's explicit shell setting, if any.
	ConfiguredShell string

	// TerminalName is the host terminal's display name, if any.
	TerminalName string

	// Family is the OS family.
	Family host.OSFamily

	// Getenv overrides environment lookup. Nil means the process
	// environment.
	Getenv func(string) string
}

func (s Signals) env(key string) string {
	if s.Getenv != nil {
		return s.Getenv(key)
	}
	return os.Getenv(key)
}

// Detector guesses a shell dialect from the available signals.
type Detector interface {
	// Priority orders detectors; higher runs first.
	Priority() int

	// Identify returns a dialect guess, or Unknown to pass.
	Identify(sig Signals) Dialect
}

// Chain runs detectors from highest to lowest priority and returns the
// first non-Unknown guess. Lower-priority detectors are never invoked
// once a guess lands.
type Chain struct {
	detectors []Detector
}

// NewChain builds a chain, sorting detectors by descending priority.
// Registration order breaks ties.
func NewChain(detectors ...Detector) *Chain {
	sorted := make([]Detector, len(detectors))
	copy(sorted, detectors)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority() > sorted[j].Priority()
	})
	return &Chain{detectors: sorted}
}

// DefaultChain returns the standard detector set.
func DefaultChain() *Chain {
	return NewChain(
		SettingDetector{},
		TerminalNameDetector{},
		EnvironmentDetector{},
		DefaultDetector{},
	)
}

// Identify returns the highest-priority dialect guess, or Unknown when
// every detector passes.
func (c *Chain) Identify(sig Signals) Dialect {
	for _, d := range c.detectors {
		if dialect := d.Identify(sig); dialect != Unknown {
			return dialect
		}
	}
	return Unknown
}

// SettingDetector trusts the user's explicit shell setting.
type SettingDetector struct{}

func (SettingDetector) Priority() int { return PrioritySetting }

func (SettingDetector) Identify(sig Signals) Dialect {
	return ParseDialect(sig.ConfiguredShell)
}

// TerminalNameDetector reads the terminal's display name, which hosts
// usually derive from the running shell.
type TerminalNameDetector struct{}

func (TerminalNameDetector) Priority() int { return PriorityTerminalName }

func (TerminalNameDetector) Identify(sig Signals) Dialect {
	return ParseDialect(sig.TerminalName)
}

// EnvironmentDetector infers the shell from process environment
// variables: WSL and MSYS markers first, then SHELL on POSIX systems and
// COMSPEC on Windows.
type EnvironmentDetector struct{}

func (EnvironmentDetector) Priority() int { return PriorityEnvironment }

func (EnvironmentDetector) Identify(sig Signals) Dialect {
	if sig.env("WSL_DISTRO_NAME") != "" {
		return Wsl
	}
	if sig.env("MSYSTEM") != "" {
		return GitBash
	}

	if sig.Family == host.FamilyWindows {
		return ParseDialect(sig.env("COMSPEC"))
	}
	return ParseDialect(sig.env("SHELL"))
}

// DefaultDetector always answers with the OS family's stock shell.
type DefaultDetector struct{}

func (DefaultDetector) Priority() int { return PriorityDefault }

func (DefaultDetector) Identify(sig Signals) Dialect {
	if sig.Family == host.FamilyWindows {
		return Cmd
	}
	return Bash
}
