package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "narrowest board", mutate: func(c *Config) { c.Width = 8 }},
		{name: "widest board", mutate: func(c *Config) { c.Width = 28 }},
		{name: "too narrow", mutate: func(c *Config) { c.Width = 7 }, wantErr: true},
		{name: "too wide", mutate: func(c *Config) { c.Width = 29 }, wantErr: true},
		{name: "shortest board", mutate: func(c *Config) { c.Height = 10 }},
		{name: "tallest board", mutate: func(c *Config) { c.Height = 40 }},
		{name: "too short", mutate: func(c *Config) { c.Height = 9 }, wantErr: true},
		{name: "too tall", mutate: func(c *Config) { c.Height = 41 }, wantErr: true},
		{name: "no boards", mutate: func(c *Config) { c.Boards = 0 }, wantErr: true},
		{name: "too many boards", mutate: func(c *Config) { c.Boards = 6 }, wantErr: true},
		{name: "zero delay", mutate: func(c *Config) { c.BaseDelay = 0 }, wantErr: true},
		{name: "ratio above one", mutate: func(c *Config) { c.SpeedupRatio = 1.1 }, wantErr: true},
		{name: "zero lines per speedup", mutate: func(c *Config) { c.LinesPerSpeedup = 0 }, wantErr: true},
		{name: "zero drop speedup", mutate: func(c *Config) { c.DropSpeedup = 0 }, wantErr: true},
		{name: "fixture with wrong row count", mutate: func(c *Config) { c.Fixture = make([]uint32, 3) }, wantErr: true},
		{name: "fixture with right row count", mutate: func(c *Config) { c.Fixture = make([]uint32, c.Height+4) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrOutOfRange)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateJoinsErrors(t *testing.T) {
	c := Default()
	c.Width = 2
	c.Height = 2
	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "width 2")
	assert.Contains(t, err.Error(), "height 2")
}
