package config

// RunnerFile represents the structure of the just-run.yaml settings file.
type RunnerFile struct {
	Watch       []string          `yaml:"watch"`
	Ignore      []string          `yaml:"ignore"`
	Extensions  []string          `yaml:"extensions"`
	Debounce    string            `yaml:"debounce"`
	KillTimeout string            `yaml:"killTimeout"`
	EnvFile     string            `yaml:"envFile"`
	Env         map[string]string `yaml:"env"`
}
