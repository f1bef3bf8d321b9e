package tipitaka

import (
	_ "embed"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed nikaya_hierarchy.yaml
var nikayaHierarchyYAML []byte

// nikayaDef is one row of the embedded hierarchy table, grounded on
// nikaya_structure.rs's NikayaStructure.
type nikayaDef struct {
	Key     string   `yaml:"key"`
	Aliases []string `yaml:"aliases"`
	Levels  []string `yaml:"levels"`
}

var nikayaDefs = mustLoadNikayaDefs()

func mustLoadNikayaDefs() []nikayaDef {
	var table struct {
		Nikayas []nikayaDef `yaml:"nikayas"`
	}
	if err := yaml.Unmarshal(nikayaHierarchyYAML, &table); err != nil {
		panic("tipitaka: invalid embedded nikaya hierarchy table: " + err.Error())
	}
	return table.Nikayas
}

// normalizeNikayaName maps a raw nikaya heading (either the "-o" or "-e"
// Pali genitive ending, with or without diacritics) to one of the
// canonical nikaya keys, matching
// nikaya_structure.rs's NikayaStructure::normalize_name.
func normalizeNikayaName(name string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(name))
	for _, def := range nikayaDefs {
		for _, alias := range def.Aliases {
			if strings.Contains(lower, alias) {
				return def.Key, true
			}
		}
	}
	return "", false
}

// nikayaLevels returns the group-type hierarchy for a normalized nikaya
// key, e.g. ["nikaya","book","vagga","sutta"] for majjhima, matching
// nikaya_structure.rs's NikayaStructure::from_nikaya_name. The flat
// book/vagga/sutta tree parseXML builds doesn't need to consult this to
// parse correctly (it reads the div/head tags directly off the XML), but
// ImportResult carries it through for breadcrumb/hierarchy display.
func nikayaLevels(key string) ([]string, bool) {
	for _, def := range nikayaDefs {
		if def.Key == key {
			return def.Levels, true
		}
	}
	return nil, false
}
