package models

// Profile is one configured gatherer: where to read, what to keep and where to write.
type Profile struct {
	Name       string   `mapstructure:"name"`
	Root       string   `mapstructure:"root"`
	Output     string   `mapstructure:"output"`
	Extensions []string `mapstructure:"extensions"`
	IgnoreDirs []string `mapstructure:"ignore_dirs"`
}
