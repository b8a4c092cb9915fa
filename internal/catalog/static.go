package catalog

import (
	"context"
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var dataFS embed.FS

var dataFiles = map[Category]string{
	CategoryProperty:   "data/properties.yaml",
	CategoryElectronic: "data/electronics.yaml",
	CategoryVehicle:    "data/vehicles.yaml",
}

// LoadStatic decodes the embedded sample catalogs.
func LoadStatic() (map[Category][]Item, error) {
	out := make(map[Category][]Item, len(dataFiles))
	for cat, path := range dataFiles {
		raw, err := dataFS.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		items, err := decodeItems(raw, cat)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		out[cat] = items
	}
	return out, nil
}

func decodeItems(raw []byte, cat Category) ([]Item, error) {
	var items []Item
	if err := yaml.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	seen := make(map[int]struct{}, len(items))
	for i := range items {
		if _, dup := seen[items[i].ID]; dup {
			return nil, fmt.Errorf("duplicate id %d", items[i].ID)
		}
		seen[items[i].ID] = struct{}{}
		if items[i].Price <= 0 {
			return nil, fmt.Errorf("item %d: price must be positive", items[i].ID)
		}
		items[i].Category = cat
	}
	return items, nil
}

// StaticProvider serves the embedded catalogs from memory.
type StaticProvider struct {
	items map[Category][]Item
}

func NewStaticProvider(items map[Category][]Item) *StaticProvider {
	return &StaticProvider{items: items}
}

func (p *StaticProvider) List(_ context.Context, cat Category) ([]Item, error) {
	items, ok := p.items[cat]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, cat)
	}
	out := make([]Item, len(items))
	copy(out, items)
	return out, nil
}

func (p *StaticProvider) Get(_ context.Context, cat Category, id int) (Item, error) {
	items, ok := p.items[cat]
	if !ok {
		return Item{}, fmt.Errorf("%w: %q", ErrUnknownCategory, cat)
	}
	for _, it := range items {
		if it.ID == id {
			return it, nil
		}
	}
	return Item{}, ErrNotFound
}
