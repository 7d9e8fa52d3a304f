package constants

const (
	Version        = `0.1.0`
	AppName        = `insight`
	ConfigFile     = `config`
	ConfigFileType = `yaml`
	ConfigDir      = `.insight`
	EnvFile        = `.env`
	EnvPrefix      = `INSIGHT`
)
