package settings

import (
	"os"
	"regexp"
	"strings"
)

// maxVarDepth bounds recursive placeholder expansion so a replacement
// that contains another placeholder cannot loop forever.
const maxVarDepth = 8

var varPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// VarTable maps placeholder names to replacement text for ${name}-style
// substitution in raw settings values.
type VarTable struct {
	vars map[string]string
}

// NewVarTable builds a table seeded from the workspace root, the working
// directory, and the given environment in KEY=VALUE form (exposed as
// "env:KEY").
func NewVarTable(root string, environ []string) *VarTable {
	vars := make(map[string]string, len(environ)+4)

	if root != "" {
		vars["workspaceFolder"] = root
		vars["workspaceRoot"] = root
	}
	if cwd, err := os.Getwd(); err == nil {
		vars["cwd"] = cwd
	}
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok && k != "" {
			vars["env:"+k] = v
		}
	}
	return &VarTable{vars: vars}
}

// Set adds or replaces one variable.
func (t *VarTable) Set(name, value string) {
	t.vars[name] = value
}

// ResolveString replaces every ${name} whose name is in the table,
// re-scanning the result up to maxVarDepth times so replacements that
// themselves contain placeholders get expanded. Unknown placeholders are
// left verbatim.
func (t *VarTable) ResolveString(in string) string {
	out := in
	for depth := 0; depth < maxVarDepth; depth++ {
		replaced := false
		out = varPattern.ReplaceAllStringFunc(out, func(match string) string {
			name := match[2 : len(match)-1]
			if v, ok := t.vars[name]; ok {
				replaced = true
				return v
			}
			return match
		})
		if !replaced {
			break
		}
	}
	return out
}

// Resolve substitutes placeholders throughout a raw value: strings are
// resolved, lists and objects are walked, and everything else passes
// through unchanged. A nil input stays nil.
func (t *VarTable) Resolve(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		return t.ResolveString(v)
	case []string:
		out := make([]string, len(v))
		for i, item := range v {
			out[i] = t.ResolveString(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = t.Resolve(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[k] = t.Resolve(item)
		}
		return out
	default:
		return value
	}
}
