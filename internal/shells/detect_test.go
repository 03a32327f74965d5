package shells

import (
	"testing"

	"github.com/Coffigny94/pymanager/internal/host"
)

func TestParseDialect(t *testing.T) {
	tests := []struct {
		in   string
		want Dialect
	}{
		{"/bin/bash", Bash},
		{"/usr/bin/zsh", Zsh},
		{"/bin/sh", Bash},
		{"fish", Fish},
		{"/bin/tcsh", Tcsh},
		{"/bin/csh", Csh},
		{"/bin/ksh", Ksh},
		{`C:\Windows\System32\cmd.exe`, Cmd},
		{`C:\Windows\System32\WindowsPowerShell\v1.0\powershell.exe`, PowerShell},
		{"pwsh", PowerShellCore},
		{"pwsh.exe", PowerShellCore},
		{"Windows PowerShell", PowerShell},
		{"Git Bash", GitBash},
		{"wsl.exe", Wsl},
		{"nu", Nushell},
		{"xonsh", Xonsh},
		{"", Unknown},
		{"totally-novel", Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseDialect(tt.in); got != tt.want {
				t.Errorf("ParseDialect(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

// fixedDetector returns a canned guess at a fixed priority and records
// whether it ran.
type fixedDetector struct {
	priority int
	guess    Dialect
	invoked  *bool
}

func (d fixedDetector) Priority() int { return d.priority }

func (d fixedDetector) Identify(Signals) Dialect {
	if d.invoked != nil {
		*d.invoked = true
	}
	return d.guess
}

func TestChainPriorityOrder(t *testing.T) {
	var lowRan bool
	chain := NewChain(
		fixedDetector{priority: 5, guess: Fish, invoked: &lowRan},
		fixedDetector{priority: 10, guess: Zsh},
	)

	if got := chain.Identify(Signals{}); got != Zsh {
		t.Errorf("chain result = %v, want higher-priority guess", got)
	}
	if lowRan {
		t.Error("lower-priority detector ran after a match")
	}
}

func TestChainFallsThroughUnknown(t *testing.T) {
	chain := NewChain(
		fixedDetector{priority: 10, guess: Unknown},
		fixedDetector{priority: 5, guess: Fish},
	)
	if got := chain.Identify(Signals{}); got != Fish {
		t.Errorf("chain result = %v, want lower-priority fallback", got)
	}

	empty := NewChain(fixedDetector{priority: 10, guess: Unknown})
	if got := empty.Identify(Signals{}); got != Unknown {
		t.Errorf("all-pass chain = %v, want Unknown", got)
	}
}

func TestDefaultChainDetection(t *testing.T) {
	env := func(vars map[string]string) func(string) string {
		return func(key string) string { return vars[key] }
	}

	tests := []struct {
		name string
		sig  Signals
		want Dialect
	}{
		{
			"setting beats everything",
			Signals{
				ConfiguredShell: "/usr/bin/fish",
				TerminalName:    "zsh",
				Getenv:          env(map[string]string{"SHELL": "/bin/bash"}),
			},
			Fish,
		},
		{
			"terminal name beats environment",
			Signals{
				TerminalName: "Windows PowerShell",
				Family:       host.FamilyWindows,
				Getenv:       env(map[string]string{"COMSPEC": `C:\Windows\System32\cmd.exe`}),
			},
			PowerShell,
		},
		{
			"SHELL on posix",
			Signals{
				Family: host.FamilyUnix,
				Getenv: env(map[string]string{"SHELL": "/usr/bin/zsh"}),
			},
			Zsh,
		},
		{
			"WSL marker",
			Signals{
				Family: host.FamilyUnix,
				Getenv: env(map[string]string{"WSL_DISTRO_NAME": "Ubuntu", "SHELL": "/bin/bash"}),
			},
			Wsl,
		},
		{
			"MSYS marker",
			Signals{
				Family: host.FamilyWindows,
				Getenv: env(map[string]string{"MSYSTEM": "MINGW64"}),
			},
			GitBash,
		},
		{
			"windows default",
			Signals{Family: host.FamilyWindows, Getenv: env(nil)},
			Cmd,
		},
		{
			"posix default",
			Signals{Family: host.FamilyUnix, Getenv: env(nil)},
			Bash,
		},
	}

	chain := DefaultChain()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := chain.Identify(tt.sig); got != tt.want {
				t.Errorf("Identify = %v, want %v", got, tt.want)
			}
		})
	}
}
