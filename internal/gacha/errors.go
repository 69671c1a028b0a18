package gacha

import (
	"errors"
	"strings"
)

var (
	ErrConfig            = errors.New("invalid rarity config")
	ErrInvalidProb       = errors.New("invalid probability p; must be in (0,1]")
	ErrInvalidRequest    = errors.New("invalid pack request")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// ConfigError collects every problem found while validating a rarity table or catalog.
// It is only ever returned at construction time.
type ConfigError struct {
	Problems []string
}

func (e *ConfigError) Error() string {
	return ErrConfig.Error() + ": " + strings.Join(e.Problems, "; ")
}

func (e *ConfigError) Unwrap() error { return ErrConfig }

func configErr(problems []string) error {
	if len(problems) == 0 {
		return nil
	}
	return &ConfigError{Problems: problems}
}
