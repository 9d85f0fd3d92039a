package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
)

func TestOptions_GraphsResolve(t *testing.T) {
	for _, mode := range []string{modeConsole, modeStub} {
		t.Run(mode, func(t *testing.T) {
			opts, ok := options(mode)
			require.True(t, ok)
			assert.NoError(t, fx.ValidateApp(opts))
		})
	}
}

func TestOptions_UnknownMode(t *testing.T) {
	_, ok := options("idp")
	assert.False(t, ok)
}
