package config

type Config interface {
	EnvConfig
	AuthConfig
	StoreConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
}

type mainConfig struct {
	EnvVars
	Auth
	Store
}

func New() Config {
	return mainConfig{}
}
