package utils

import (
	"os"
	"path/filepath"
	"testing"

	"go.viam.com/test"
)

type sampleAttrs struct {
	Name   string    `json:"name"`
	Count  int       `json:"count"`
	Scale  float64   `json:"scale"`
	Values []float64 `json:"values"`
	Expr   string    `json:"expr"`
}

func TestDecodeAttributes(t *testing.T) {
	out, err := DecodeAttributes[sampleAttrs](AttributeMap{
		"name":   "img",
		"count":  " 3 ",
		"scale":  "2.5",
		"values": []interface{}{1, 2.5, "4"},
		"expr":   0,
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, *out, test.ShouldResemble, sampleAttrs{
		Name:   "img",
		Count:  3,
		Scale:  2.5,
		Values: []float64{1, 2.5, 4},
		Expr:   "0",
	})

	_, err = DecodeAttributes[sampleAttrs](AttributeMap{"scale": "wide"})
	test.That(t, err, test.ShouldNotBeNil)

	_, err = DecodeAttributes[sampleAttrs](AttributeMap{"unknown": 1})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "unknown")
}

func TestReadAttributesFile(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		test.That(t, os.WriteFile(path, []byte(content), 0o600), test.ShouldBeNil)
		return path
	}

	attrs, err := ReadAttributesFile(write("a.json", `{"name": "img", "count": 2, "nested": {"x": 1}}`))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, attrs["name"], test.ShouldEqual, "img")
	test.That(t, attrs["count"], test.ShouldEqual, 2.0)
	test.That(t, attrs["nested"], test.ShouldResemble, map[string]interface{}{"x": 1.0})

	attrs, err = ReadAttributesFile(write("a.yml", "name: img\ncount: 2\nnested:\n  x: 1\n"))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, attrs["name"], test.ShouldEqual, "img")
	test.That(t, attrs["count"], test.ShouldEqual, 2)
	test.That(t, attrs["nested"], test.ShouldResemble, map[string]interface{}{"x": 1})

	_, err = ReadAttributesFile(write("list.yaml", "- 1\n- 2\n"))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "expected map[string]interface {} but got []interface {}")

	_, err = ReadAttributesFile(write("a.toml", "name = 1"))
	test.That(t, err, test.ShouldNotBeNil)

	_, err = ReadAttributesFile(write("bad.json", "{"))
	test.That(t, err, test.ShouldNotBeNil)

	_, err = ReadAttributesFile(filepath.Join(dir, "missing.json"))
	test.That(t, err, test.ShouldNotBeNil)
}
