package shells

import (
	"path/filepath"
	"strings"
)

// Dialect is a terminal shell dialect.
type Dialect int

const (
	Unknown Dialect = iota
	Bash
	Zsh
	Ksh
	Fish
	Csh
	Tcsh
	Cmd
	PowerShell
	PowerShellCore
	Wsl
	Nushell
	Xonsh
	GitBash
	Other
)

var dialectNames = map[Dialect]string{
	Unknown:        "unknown",
	Bash:           "bash",
	Zsh:            "zsh",
	Ksh:            "ksh",
	Fish:           "fish",
	Csh:            "csh",
	Tcsh:           "tcsh",
	Cmd:            "cmd",
	PowerShell:     "powershell",
	PowerShellCore: "pwsh",
	Wsl:            "wsl",
	Nushell:        "nushell",
	Xonsh:          "xonsh",
	GitBash:        "gitbash",
	Other:          "other",
}

// String returns the dialect name.
func (d Dialect) String() string {
	if name, ok := dialectNames[d]; ok {
		return name
	}
	return "unknown"
}

// Posix reports whether the dialect follows POSIX-style quoting.
func (d Dialect) Posix() bool {
	switch d {
	case Bash, Zsh, Ksh, Fish, Csh, Tcsh, Wsl, GitBash, Xonsh:
		return true
	}
	return false
}

// dialectTokens are matched in order against lowercased shell names and
// paths. More specific tokens come first: tcsh before csh, pwsh before
// the bare sh fallback.
var dialectTokens = []struct {
	token   string
	dialect Dialect
}{
	{"pwsh", PowerShellCore},
	{"powershell", PowerShell},
	{"git bash", GitBash},
	{"git-bash", GitBash},
	{"gitbash", GitBash},
	{"wsl", Wsl},
	{"cmd", Cmd},
	{"command prompt", Cmd},
	{"nushell", Nushell},
	{"xonsh", Xonsh},
	{"tcsh", Tcsh},
	{"csh", Csh},
	{"zsh", Zsh},
	{"ksh", Ksh},
	{"fish", Fish},
	{"bash", Bash},
}

// ParseDialect identifies a dialect from a shell name, terminal title,
// or executable path. Unrecognized input yields Unknown.
func ParseDialect(name string) Dialect {
	s := strings.ToLower(strings.TrimSpace(name))
	if s == "" {
		return Unknown
	}

	base := filepath.Base(filepath.FromSlash(s))
	base = strings.TrimSuffix(base, ".exe")
	switch base {
	case "sh", "dash", "ash":
		return Bash
	case "nu":
		return Nushell
	}

	for _, entry := range dialectTokens {
		if strings.Contains(s, entry.token) {
			return entry.dialect
		}
	}
	return Unknown
}
