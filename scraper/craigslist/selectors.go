package craigslist

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Selectors are the extraction rules applied to a rendered search page.
type Selectors struct {
	ResultRow string `yaml:"result_row"` // one element per listing
	IDAttr    string `yaml:"id_attr"`    // attribute on the row holding the listing id
	TitleLink string `yaml:"title_link"` // <a> carrying href and title text
	Price     string `yaml:"price"`
	Date      string `yaml:"date"`
	DateAttr  string `yaml:"date_attr"` // machine-readable timestamp attribute on Date
}

// DefaultSelectors matches craigslist's classic search result markup.
func DefaultSelectors() Selectors {
	return Selectors{
		ResultRow: "li.result-row",
		IDAttr:    "data-pid",
		TitleLink: ".result-title",
		Price:     ".result-price",
		Date:      ".result-date",
		DateAttr:  "datetime",
	}
}

// LoadSelectors reads selector overrides from a YAML file. Keys left out of
// the file keep their default value.
func LoadSelectors(path string) (Selectors, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Selectors{}, fmt.Errorf("selectors: read %q: %w", path, err)
	}
	return LoadSelectorsFromBytes(data)
}

// LoadSelectorsFromBytes parses YAML selector overrides.
func LoadSelectorsFromBytes(data []byte) (Selectors, error) {
	sel := DefaultSelectors()
	if err := yaml.Unmarshal(data, &sel); err != nil {
		return Selectors{}, fmt.Errorf("selectors: parse yaml: %w", err)
	}
	return sel, nil
}
