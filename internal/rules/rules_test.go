package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rmaran/assetflow/internal/config"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		patterns []string
		want     bool
	}{
		{"CharacterMatches", "/drop/Hero_Character.foo", []string{"*character*"}, true},
		{"PropDoesNotMatch", "/drop/Prop_Barrel.foo", []string{"*character*"}, false},
		{"CaseInsensitivePattern", "/drop/hero_CHARACTER.foo", []string{"*Character*"}, true},
		{"SecondPatternMatches", "/drop/env_forest.foo", []string{"*character*", "*env*"}, true},
		{"EmptyListMatchesAll", "/drop/anything.bin", nil, true},
		{"BasenameOnly", "/character/Prop_Barrel.foo", []string{"*character*"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Match(tt.path, tt.patterns))
		})
	}
}

func TestResolve(t *testing.T) {
	policy := config.DefaultPolicy()

	rule, ok := Resolve("characters", policy)
	assert.True(t, ok)
	assert.Equal(t, "/Game/Characters/", rule.Destination)

	_, ok = Resolve("vehicles", policy)
	assert.False(t, ok)
}
