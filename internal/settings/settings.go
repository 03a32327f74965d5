package settings

// Namespace is the top-level settings namespace this engine tracks.
const Namespace = "python"

// DefaultInterpreter is the fallback interpreter name when no default
// interpreter path is configured.
const DefaultInterpreter = "python"

// Tracked raw settings keys.
const (
	keyInterpreterPath          = "python.interpreterPath"
	keyDefaultInterpreterPath   = "python.defaultInterpreterPath"
	keyCondaPath                = "python.condaPath"
	keyPipenvPath               = "python.pipenvPath"
	keyPoetryPath               = "python.poetryPath"
	keyEnvFile                  = "python.envFile"
	keyVenvFolders              = "python.venvFolders"
	keyDevOptions               = "python.devOptions"
	keyTerminal                 = "python.terminal"
	keyGlobalModuleInstallation = "python.globalModuleInstallation"
	keyAutoUpdate               = "python.autoUpdate"
)

// TerminalSettings are the terminal-activation sub-settings. The snapshot
// merges updates into the same instance, so holders of the pointer
// observe changes without re-fetching.
type TerminalSettings struct {
	// ActivateEnvironment controls whether new terminals get environment
	// activation commands.
	ActivateEnvironment bool

	// ExecuteInFileDir runs files from their containing directory.
	ExecuteInFileDir bool

	// LaunchArgs are extra arguments for interpreter launches.
	LaunchArgs []string
}

// Resolved is the plain data view of a snapshot's fields.
type Resolved struct {
	InterpreterPath          string
	DefaultInterpreterPath   string
	CondaPath                string
	PipenvPath               string
	PoetryPath               string
	EnvFile                  string
	VenvFolders              []string
	DevOptions               []string
	Terminal                 *TerminalSettings
	GlobalModuleInstallation bool
	AutoUpdate               bool
}

// Defaults returns the built-in defaults layer for the settings store.
func Defaults() map[string]any {
	return map[string]any{
		"python": map[string]any{
			"defaultInterpreterPath": DefaultInterpreter,
			"autoUpdate":             true,
			"venvFolders":            []any{},
			"terminal": map[string]any{
				"activateEnvironment": true,
			},
		},
	}
}
