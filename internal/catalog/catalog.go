// Package catalog holds the curated list of known OECD dataflows.
//
// The remote service cannot enumerate its own catalog reliably, so the
// server ships a fixed list and optionally merges a JSON override file on
// top of it. Lookups are pure and synchronous.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"oecdmcp/internal/domain"
)

// builtinDatasets is the shipped catalog. IDs are the short handles callers
// use; the remaining fields are the canonical SDMX identifiers.
var builtinDatasets = []domain.DatasetRef{
	{
		ID: "QNA", Agency: "OECD.SDD.NAD", FlowID: "DSD_NAMAIN1@DF_QNA", Version: "1.1",
		Name:        "Quarterly national accounts",
		Description: "Quarterly GDP and expenditure components for OECD countries",
	},
	{
		ID: "GDP_GROWTH", Agency: "OECD.SDD.NAD", FlowID: "DSD_NAMAIN10@DF_TABLE1_EXPENDITURE_GRW", Version: "1.0",
		Name:        "GDP growth rates",
		Description: "Annual growth rates of gross domestic product, expenditure approach",
	},
	{
		ID: "CPI", Agency: "OECD.SDD.TPS", FlowID: "DSD_PRICES@DF_PRICES_ALL", Version: "1.0",
		Name:        "Consumer price indices",
		Description: "Consumer price indices including headline, core, food and energy",
	},
	{
		ID: "UNEMP", Agency: "OECD.SDD.TPS", FlowID: "DSD_LFS@DF_IALFS_UNE_M", Version: "1.0",
		Name:        "Unemployment rates",
		Description: "Monthly harmonised unemployment rates by sex and age group",
	},
	{
		ID: "HOUSE_PRICES", Agency: "OECD.ECO.MPD", FlowID: "DSD_AN_HOUSE_PRICES@DF_HOUSE_PRICES", Version: "1.0",
		Name:        "Housing prices",
		Description: "Real and nominal house price indices and price-to-income ratios",
	},
	{
		ID: "TRADE_GOODS", Agency: "OECD.SDD.TPS", FlowID: "DSD_TRADE_GOODS@DF_TRADE_GOODS", Version: "1.0",
		Name:        "International trade in goods",
		Description: "Monthly imports and exports of goods by partner country",
	},
	{
		ID: "POPULATION", Agency: "OECD.ELS.SAE", FlowID: "DSD_POPULATION@DF_POP_HIST", Version: "1.0",
		Name:        "Historical population",
		Description: "Population by sex and five-year age groups",
	},
	{
		ID: "EO_OUTLOOK", Agency: "OECD.ECO.MAD", FlowID: "DSD_EO@DF_EO", Version: "1.2",
		Name:        "Economic Outlook",
		Description: "Projections from the OECD Economic Outlook, annual and quarterly",
	},
}

// Catalog is an in-memory dataset registry, safe for concurrent reads while
// the override file reloads in the background.
type Catalog struct {
	mu      sync.RWMutex
	entries map[string]domain.DatasetRef
}

// New creates a catalog holding the built-in datasets.
func New() *Catalog {
	c := &Catalog{entries: make(map[string]domain.DatasetRef, len(builtinDatasets))}
	for _, ref := range builtinDatasets {
		c.entries[ref.ID] = ref
	}
	return c
}

// Lookup resolves a short dataset id to its canonical reference.
func (c *Catalog) Lookup(id string) (domain.DatasetRef, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ref, ok := c.entries[id]
	return ref, ok
}

// All returns every entry, sorted by id.
func (c *Catalog) All() []domain.DatasetRef {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.DatasetRef, 0, len(c.entries))
	for _, ref := range c.entries {
		out = append(out, ref)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Search returns entries whose id, name, or description contains the text,
// case-insensitive. Empty text matches everything.
func (c *Catalog) Search(text string) []domain.DatasetRef {
	needle := strings.ToLower(text)
	out := []domain.DatasetRef{}
	for _, ref := range c.All() {
		if strings.Contains(strings.ToLower(ref.ID), needle) ||
			strings.Contains(strings.ToLower(ref.Name), needle) ||
			strings.Contains(strings.ToLower(ref.Description), needle) {
			out = append(out, ref)
		}
	}
	return out
}

// LoadFile merges a JSON array of dataset references over the built-ins.
// Entries sharing an id replace the built-in; new ids are added. The
// built-ins are never removed, so a bad override cannot empty the catalog.
func (c *Catalog) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read catalog file: %w", err)
	}

	var overrides []domain.DatasetRef
	if err := json.Unmarshal(data, &overrides); err != nil {
		return fmt.Errorf("parse catalog file: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ref := range overrides {
		if ref.ID == "" || ref.Agency == "" || ref.FlowID == "" {
			continue
		}
		if ref.Version == "" {
			ref.Version = "1.0"
		}
		c.entries[ref.ID] = ref
	}
	return nil
}
