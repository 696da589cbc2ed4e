package config

import (
	"github.com/knadh/koanf/providers/confmap"
)

func DefaultConfig() map[string]interface{} {
	return map[string]interface{}{
		"store": map[string]interface{}{
			"driver": DriverSQLite,
			"path":   "~/.medimind/medimind.db",
		},
		"scheduler": map[string]interface{}{
			"interval": 60,
			"debounce": 5,
			"lookback": 12 * 60 * 60,
		},
		"telegram": map[string]interface{}{
			"bot_token":    "",
			"chat_id":      "",
			"base_url":     "https://api.telegram.org",
			"poll_timeout": 30,
		},
		"extract": map[string]interface{}{
			"provider": ProviderNone,
			"ollama": map[string]interface{}{
				"base_url": "http://localhost:11434",
				"model":    "llava",
				"timeout":  120,
			},
		},
		"ui": map[string]interface{}{
			"colored_output": true,
		},
		"runtime": map[string]interface{}{
			"pid_file": "~/.medimind/medimind.pid",
		},
	}
}

func NewDefaultProvider() *confmap.Confmap {
	return confmap.Provider(DefaultConfig(), ".")
}

func GetDefaultConfigPath() string {
	return "~/.medimind/config.yaml"
}
