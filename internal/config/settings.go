package config

import (
	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/domain"
)

// Load reads the .env file, then parses process settings from the environment.
func Load() (domain.Settings, error) {
	var s domain.Settings

	if err := LoadDotenv(); err != nil {
		return s, err
	}
	if err := ParseEnv(&s); err != nil {
		return s, err
	}
	return s, nil
}
