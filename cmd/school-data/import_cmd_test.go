package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akdemia/akdemia/modules/importer/domain/importsession"
)

func TestParseMapping(t *testing.T) {
	mapping, err := parseMapping([]string{"code=0", "name=1", " credits = 2"})
	require.NoError(t, err)
	assert.Equal(t, importsession.Mapping{"code": 0, "name": 1, "credits": 2}, mapping)
}

func TestParseMapping_Invalid(t *testing.T) {
	for _, pair := range []string{"code", "code=x", "code=-1"} {
		t.Run(pair, func(t *testing.T) {
			_, err := parseMapping([]string{pair})
			require.Error(t, err)
		})
	}
}
