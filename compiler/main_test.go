package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xiaobogaga/djc/compiler/internal"
)

func TestOverrideLogLevel(t *testing.T) {
	testData := []struct {
		name        string
		fileLevel   string
		loglevel    interface{}
		hasLoglevel bool
		want        string
	}{
		{"no config no flag", internal.LogLevelVerboseName, nil, false, internal.LogLevelVerboseName},
		{"config without flag", internal.LogLevelSilentName, nil, false, internal.LogLevelSilentName},
		{"explicit verbose beats config", internal.LogLevelSilentName, internal.LogLevelVerboseName, true,
			internal.LogLevelVerboseName},
		{"explicit error beats config", internal.LogLevelWarningName, internal.LogLevelErrorName, true,
			internal.LogLevelErrorName},
	}
	for _, data := range testData {
		cfg := internal.DefaultConfig()
		cfg.Compiler.LogLevel = data.fileLevel
		overrideLogLevel(cfg, data.loglevel, data.hasLoglevel)
		assert.Equal(t, data.want, cfg.Compiler.LogLevel, data.name)
	}
}
