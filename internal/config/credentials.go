package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const apiKeyEnv = "OPENROUTER_API_KEY"

// APIKey resolves the OpenRouter bearer token. The environment variable
// wins; a .env file in the config directory is the fallback. A missing key
// is a fatal configuration error surfaced before any network activity.
func APIKey() (string, error) {
	if key := os.Getenv(apiKeyEnv); key != "" {
		return key, nil
	}

	envFile := filepath.Join(Dir(), ".env")
	if _, err := os.Stat(envFile); err == nil {
		v := viper.New()
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err == nil {
			if key := v.GetString(apiKeyEnv); key != "" {
				return key, nil
			}
		}
	}

	return "", fmt.Errorf(
		"%s not found.\n\nEither export it:\n  export %s=\"your-key-here\"\n\nor create %s with:\n  %s=your-key-here\n\nGet an API key from https://openrouter.ai/keys",
		apiKeyEnv, apiKeyEnv, envFile, apiKeyEnv)
}
