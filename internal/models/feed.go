package models

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// FeedDocument is the hierarchical shop catalog feed:
// shop → categories → products → product infos → parameters.
// Entries missing required fields are skipped by the importer with a warning;
// only a document that fails to parse as a top-level mapping is fatal.
type FeedDocument struct {
	Categories []FeedCategory `yaml:"categories"`
}

// FeedCategory is one category entry in the feed
type FeedCategory struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Products    []FeedProduct `yaml:"products"`
}

// FeedProduct is one product entry nested under a category
type FeedProduct struct {
	Name         string            `yaml:"name"`
	ProductInfos []FeedProductInfo `yaml:"product_infos"`
}

// FeedProductInfo is one sellable offer entry nested under a product
type FeedProductInfo struct {
	Name       string          `yaml:"name"`
	Price      float64         `yaml:"price"`
	PriceRRC   float64         `yaml:"price_rrc"`
	Quantity   int             `yaml:"quantity"`
	Parameters []FeedParameter `yaml:"parameters"`
}

// FeedParameter is one attribute entry nested under a product info
type FeedParameter struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

// Complete reports whether the entry carries every field required for an
// upsert; incomplete entries are skipped, not fatal.
func (i FeedProductInfo) Complete() bool {
	return i.Name != "" && i.Price > 0 && i.PriceRRC > 0 && i.Quantity > 0
}

// Complete reports whether the parameter entry can be bound
func (p FeedParameter) Complete() bool {
	return p.Name != "" && p.Value != ""
}

// ParseFeed decodes a YAML feed document. A document that is not a mapping at
// the top level (or is not valid YAML at all) yields ErrMalformedFeed.
func ParseFeed(data []byte) (*FeedDocument, error) {
	var probe map[string]yaml.Node
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFeed, err)
	}
	if probe == nil {
		return nil, fmt.Errorf("%w: document is empty", ErrMalformedFeed)
	}

	var doc FeedDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFeed, err)
	}
	return &doc, nil
}
