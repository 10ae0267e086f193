package report

import (
	"io"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"

	"github.com/xraph/kiln/internal/compiler"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// JSON writes results as indented JSON.
func JSON(w io.Writer, results compiler.Results) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

// YAML writes results as a YAML document.
func YAML(w io.Writer, results compiler.Results) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(results); err != nil {
		return err
	}
	return enc.Close()
}
