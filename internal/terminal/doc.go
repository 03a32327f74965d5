// Package terminal resolves the commands needed to activate a Python
// environment inside an interactive terminal.
//
// A Helper combines the detected shell dialect with a chain of
// activation providers, each covering one environment flavor (venv,
// conda, pipenv, pyenv). Providers are queried in registration order;
// the first non-empty command sequence wins. A nil sequence means no
// activation is needed or possible.
package terminal
