package installer

// InstallState collects answers as environment variables.
type InstallState struct {
	Runtime string
	EnvVars map[string]string
}

func NewInstallState(runtime string) *InstallState {
	return &InstallState{
		Runtime: runtime,
		EnvVars: make(map[string]string),
	}
}

func (s *InstallState) provider() string {
	return s.EnvVars["LOBUG_LLM_PROVIDER"]
}
