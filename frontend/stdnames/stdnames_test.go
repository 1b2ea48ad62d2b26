package stdnames_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tessel-lang/tessel/frontend/stdnames"
)

func TestDefaultNames(t *testing.T) {
	reg := stdnames.Default()
	assert.Equal(t, "Int2048", reg.MaxBuiltinIntegerType)
	assert.Equal(t, "IntegerLiteralConvertible", reg.IntegerLiteral.Protocol)
	assert.Equal(t, "_convertFromBuiltinIntegerLiteral", reg.IntegerLiteral.BuiltinRequirement)
	assert.Equal(t, "getLogicValue", reg.LogicValueRequirement)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "names.yaml")
	content := "maxBuiltinIntegerType: Int1024\nintegerLiteral:\n  protocol: FromIntegerLiteral\n"
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	reg, err := stdnames.Load(path)
	assert.NoError(t, err)
	assert.Equal(t, "Int1024", reg.MaxBuiltinIntegerType)
	assert.Equal(t, "FromIntegerLiteral", reg.IntegerLiteral.Protocol)
	// untouched fields keep their defaults
	assert.Equal(t, "Float64", reg.MaxBuiltinFloatType)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := stdnames.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
