package hooks

// Hook is a shell command attached to a flow step or to flow completion.
type Hook struct {
	Command string `yaml:"command" json:"command"`
	Timeout int    `yaml:"timeout,omitempty" json:"timeout,omitempty"` // seconds, default 30

	// Message replaces the hook output as the validation error shown when
	// the hook rejects.
	Message string `yaml:"message,omitempty" json:"message,omitempty"`
}

// Result is the outcome of running a hook.
type Result struct {
	Output   string
	ExitCode int
	TimedOut bool
}

// OK reports whether the hook exited with status zero in time.
func (r Result) OK() bool {
	return r.ExitCode == 0 && !r.TimedOut
}

// DefaultTimeout is the default timeout for hook execution in seconds.
const DefaultTimeout = 30

// EnvPrefix prefixes the environment variables that carry flow values.
const EnvPrefix = "WIZFLOW_"
