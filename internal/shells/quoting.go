package shells

import "strings"

// quoteStyle is one dialect family's quoting behavior.
type quoteStyle struct {
	quote func(string) string

	// callOperator prefixes the command with "& " when the command
	// itself needed quoting. PowerShell treats a bare quoted string as
	// an expression, not an invocation.
	callOperator bool
}

var (
	posixStyle      = quoteStyle{quote: quotePosix}
	cmdStyle        = quoteStyle{quote: quoteCmd}
	powershellStyle = quoteStyle{quote: quotePowerShell, callOperator: true}
)

// styleFor maps a dialect to its quoting style. POSIX quoting is the
// fallback for anything not explicitly a Windows shell.
func styleFor(d Dialect) quoteStyle {
	switch d {
	case Cmd:
		return cmdStyle
	case PowerShell, PowerShellCore:
		return powershellStyle
	default:
		return posixStyle
	}
}

// QuoteArg quotes one argument for a dialect. Arguments that need no
// quoting pass through unchanged.
func QuoteArg(d Dialect, arg string) string {
	return styleFor(d).quote(arg)
}

// BuildCommand composes a terminal-submittable command line from a
// command name and arguments, quoted per the dialect's rules.
func BuildCommand(d Dialect, command string, args ...string) string {
	style := styleFor(d)

	var b strings.Builder
	quoted := style.quote(command)
	if style.callOperator && quoted != command {
		b.WriteString("& ")
	}
	b.WriteString(quoted)

	for _, arg := range args {
		b.WriteByte(' ')
		b.WriteString(style.quote(arg))
	}
	return b.String()
}

// posixSpecial are the characters that force single-quoting in POSIX
// shells.
const posixSpecial = " \t\n\"'`$&|;<>()*?[]#~%{}\\!"

func quotePosix(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, posixSpecial) {
		return s
	}
	// Single quotes preserve everything except a single quote itself,
	// which is closed, escaped, and reopened.
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}

const cmdSpecial = " \t\"&|<>^%()"

func quoteCmd(s string) string {
	if s == "" {
		return `""`
	}
	if !strings.ContainsAny(s, cmdSpecial) {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

const powershellSpecial = " \t\"'`$&|;<>(){}@#,"

func quotePowerShell(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, powershellSpecial) {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
