// Package stdnames is the registry of stdlib identifiers the application
// stage needs to spell: literal protocol names, their requirement names,
// and the interim builtin literal types. Defaults are compiled in and can
// be overridden from a YAML file, so embedders with a renamed stdlib do
// not have to patch the compiler.
package stdnames

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// LiteralNames describes one two-level literal protocol pair.
type LiteralNames struct {
	Protocol           string `yaml:"protocol"`
	Requirement        string `yaml:"requirement"`
	BuiltinProtocol    string `yaml:"builtinProtocol"`
	BuiltinRequirement string `yaml:"builtinRequirement"`
	AssocType          string `yaml:"assocType"`
	BuiltinAssocType   string `yaml:"builtinAssocType"`
}

type Registry struct {
	MaxBuiltinIntegerType string `yaml:"maxBuiltinIntegerType"`
	MaxBuiltinFloatType   string `yaml:"maxBuiltinFloatType"`

	IntegerLiteral   LiteralNames `yaml:"integerLiteral"`
	FloatLiteral     LiteralNames `yaml:"floatLiteral"`
	CharacterLiteral LiteralNames `yaml:"characterLiteral"`
	StringLiteral    LiteralNames `yaml:"stringLiteral"`

	InterpolationProtocol    string `yaml:"interpolationProtocol"`
	InterpolationRequirement string `yaml:"interpolationRequirement"`

	ArrayLiteralProtocol         string `yaml:"arrayLiteralProtocol"`
	ArrayLiteralRequirement      string `yaml:"arrayLiteralRequirement"`
	DictionaryLiteralProtocol    string `yaml:"dictionaryLiteralProtocol"`
	DictionaryLiteralRequirement string `yaml:"dictionaryLiteralRequirement"`

	LogicValueProtocol           string `yaml:"logicValueProtocol"`
	LogicValueRequirement        string `yaml:"logicValueRequirement"`
	BuiltinLogicValueRequirement string `yaml:"builtinLogicValueRequirement"`

	ArrayBoundProtocol           string `yaml:"arrayBoundProtocol"`
	ArrayBoundRequirement        string `yaml:"arrayBoundRequirement"`
	BuiltinArrayBoundRequirement string `yaml:"builtinArrayBoundRequirement"`
}

// Default is the compiled-in stdlib spelling.
func Default() *Registry {
	return &Registry{
		MaxBuiltinIntegerType: "Int2048",
		MaxBuiltinFloatType:   "Float64",
		IntegerLiteral: LiteralNames{
			Protocol:           "IntegerLiteralConvertible",
			Requirement:        "convertFromIntegerLiteral",
			BuiltinProtocol:    "BuiltinIntegerLiteralConvertible",
			BuiltinRequirement: "_convertFromBuiltinIntegerLiteral",
			AssocType:          "IntegerLiteralType",
			BuiltinAssocType:   "BuiltinIntegerLiteralType",
		},
		FloatLiteral: LiteralNames{
			Protocol:           "FloatLiteralConvertible",
			Requirement:        "convertFromFloatLiteral",
			BuiltinProtocol:    "BuiltinFloatLiteralConvertible",
			BuiltinRequirement: "_convertFromBuiltinFloatLiteral",
			AssocType:          "FloatLiteralType",
			BuiltinAssocType:   "BuiltinFloatLiteralType",
		},
		CharacterLiteral: LiteralNames{
			Protocol:           "CharacterLiteralConvertible",
			Requirement:        "convertFromCharacterLiteral",
			BuiltinProtocol:    "BuiltinCharacterLiteralConvertible",
			BuiltinRequirement: "_convertFromBuiltinCharacterLiteral",
			AssocType:          "CharacterLiteralType",
			BuiltinAssocType:   "BuiltinCharacterLiteralType",
		},
		StringLiteral: LiteralNames{
			Protocol:           "StringLiteralConvertible",
			Requirement:        "convertFromStringLiteral",
			BuiltinProtocol:    "BuiltinStringLiteralConvertible",
			BuiltinRequirement: "_convertFromBuiltinStringLiteral",
			AssocType:          "StringLiteralType",
			BuiltinAssocType:   "BuiltinStringLiteralType",
		},
		InterpolationProtocol:    "StringInterpolationConvertible",
		InterpolationRequirement: "convertFromStringInterpolation",

		ArrayLiteralProtocol:         "ArrayLiteralConvertible",
		ArrayLiteralRequirement:      "convertFromArrayLiteral",
		DictionaryLiteralProtocol:    "DictionaryLiteralConvertible",
		DictionaryLiteralRequirement: "convertFromDictionaryLiteral",

		LogicValueProtocol:           "LogicValue",
		LogicValueRequirement:        "getLogicValue",
		BuiltinLogicValueRequirement: "_getBuiltinLogicValue",

		ArrayBoundProtocol:           "ArrayBound",
		ArrayBoundRequirement:        "getArrayBoundValue",
		BuiltinArrayBoundRequirement: "_getBuiltinArrayBoundValue",
	}
}

// Load reads overrides from a YAML file on top of the defaults.
func Load(path string) (*Registry, error) {
	reg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading stdlib name registry %s", path)
	}
	if err := yaml.Unmarshal(raw, reg); err != nil {
		return nil, errors.Wrapf(err, "parsing stdlib name registry %s", path)
	}
	return reg, nil
}
