package pipeline

import (
	"context"

	"github.com/jwulff/groqscribe/internal/api"
)

// Getter is the part of the gateway the catalog needs.
type Getter interface {
	Get(ctx context.Context, path string, out any) error
}

// Catalog loads the selectable analysis models.
type Catalog struct {
	gw Getter
}

// NewCatalog returns a Catalog reading through gw.
func NewCatalog(gw Getter) *Catalog {
	return &Catalog{gw: gw}
}

// Load returns the models in backend order. On failure it returns an empty,
// non-nil slice together with the error.
func (c *Catalog) Load(ctx context.Context) ([]string, error) {
	var resp api.ModelsResponse
	if err := c.gw.Get(ctx, api.PathModels, &resp); err != nil {
		return []string{}, err
	}
	models := make([]string, 0, len(resp.Models))
	for _, m := range resp.Models {
		if m != "" {
			models = append(models, m)
		}
	}
	return models, nil
}
