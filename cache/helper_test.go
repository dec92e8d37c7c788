package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCitiesKey(t *testing.T) {
	assert.Equal(t, "cities:unique", citiesKey)
	assert.Equal(t, "cities:host", constructKeyCities("host"))
}
