package nota

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func TestMustRegisterRulePanics(t *testing.T) {
	ok := func(validator.FieldLevel) bool { return true }
	assert.Panics(t, func() { mustRegisterRule("", ok, "{0} is invalid") })
	assert.Error(t, registerRule("", ok, "{0} is invalid"))
}
