package engine

// ServiceSpec is one launchable service.
type ServiceSpec struct {
	Name    string            `json:"name"`
	Command string            `json:"command"`
	LogPath string            `json:"log_path"`
	Cwd     string            `json:"cwd,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
}

// PlannedService is a command as handed out by the configuration resolver.
type PlannedService struct {
	Description string `json:"description" yaml:"description" toml:"description"`
	Command     string `json:"command" yaml:"command" toml:"command"`
	Terminal    int    `json:"terminal" yaml:"terminal" toml:"terminal"`
}

// LaunchPlan lists the services to start, in order, and the dev server port.
type LaunchPlan struct {
	Port     int              `json:"port" yaml:"port" toml:"port"`
	Services []PlannedService `json:"services" yaml:"services" toml:"services"`
}
