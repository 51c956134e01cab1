package codegen

import "fmt"

// Target is the closed enumeration of output dialects. There is no emitter
// hierarchy: a single generator walks the AST once and branches on the target
// only at the points where the dialects genuinely diverge.
type Target int

const (
	Shell Target = iota // POSIX-style shell (bash)
	Batch               // Windows cmd.exe batch
)

func (t Target) String() string {
	switch t {
	case Shell:
		return "shell"
	case Batch:
		return "batch"
	default:
		return fmt.Sprintf("Target(%d)", int(t))
	}
}

// Ext returns the conventional output file extension for the target.
func (t Target) Ext() string {
	if t == Batch {
		return ".bat"
	}
	return ".sh"
}

// ParseTarget maps a user-supplied name to a Target.
func ParseTarget(name string) (Target, error) {
	switch name {
	case "shell", "sh", "bash":
		return Shell, nil
	case "batch", "bat", "cmd":
		return Batch, nil
	default:
		return Shell, fmt.Errorf("unknown target %q (want shell or batch)", name)
	}
}

// matchesOS reports whether a `with <os>` block applies to the target.
func (t Target) matchesOS(os string) bool {
	switch t {
	case Batch:
		return os == "windows"
	case Shell:
		return os == "linux"
	default:
		return false
	}
}
