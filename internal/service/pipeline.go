package service

import (
	"context"
	"errors"

	"github.com/dcsim/rack-planner/internal/store"
	"github.com/dcsim/rack-planner/internal/store/model"
	"github.com/thoas/go-funk"
)

// composition is a component list after it went through the pipeline.
type composition struct {
	components           []string
	totalPrice           float64
	totalMaintenanceCost float64
	// operatingSystem is the name of the first OS component, empty when there is none.
	operatingSystem string
}

// compose normalizes refs, sums their costs and checks them against the catalog.
// Costs are summed before existence is checked so unknown components count as 0
// until validate rejects them.
func compose(ctx context.Context, components store.Component, refs []model.ComponentRef) (*composition, error) {
	refs = normalize(refs)

	catalog, err := components.Resolve(ctx, refNames(refs))
	if err != nil {
		return nil, err
	}

	c := &composition{
		components:      refNames(refs),
		operatingSystem: operatingSystemOf(refs, catalog),
	}
	c.totalPrice, c.totalMaintenanceCost = sumCosts(c.components, catalog)

	if err := validateComposition(refs, catalog); err != nil {
		return nil, err
	}
	return c, nil
}

// normalize keeps only the {name, type} pair of every reference.
func normalize(refs []model.ComponentRef) []model.ComponentRef {
	normalized := make([]model.ComponentRef, 0, len(refs))
	for _, r := range refs {
		normalized = append(normalized, model.ComponentRef{Name: r.Name, Type: r.Type})
	}
	return normalized
}

func refNames(refs []model.ComponentRef) []string {
	names := make([]string, 0, len(refs))
	for _, r := range refs {
		names = append(names, r.Name)
	}
	return names
}

// typeOf prefers the catalog type over the one supplied by the client.
func typeOf(ref model.ComponentRef, catalog map[string]model.Component) string {
	if c, ok := catalog[ref.Name]; ok && c.Type != "" {
		return c.Type
	}
	return ref.Type
}

func operatingSystemOf(refs []model.ComponentRef, catalog map[string]model.Component) string {
	for _, r := range refs {
		if typeOf(r, catalog) == model.ComponentTypeOS {
			return r.Name
		}
	}
	return ""
}

func sumCosts(names []string, catalog map[string]model.Component) (price float64, maintenance float64) {
	for _, n := range names {
		c, ok := catalog[n]
		if !ok {
			continue
		}
		price += c.Price
		maintenance += c.MaintenanceCost
	}
	return price, maintenance
}

// validateComposition runs the mandatory type gate, then the existence check,
// then the pairwise compatibility check.
func validateComposition(refs []model.ComponentRef, catalog map[string]model.Component) error {
	types := make([]string, 0, len(refs))
	for _, r := range refs {
		types = append(types, typeOf(r, catalog))
	}
	for _, mandatory := range model.MandatoryTypes {
		if !funk.ContainsString(types, mandatory) {
			return NewErrMandatoryComponentMissing(mandatory)
		}
	}

	for _, r := range refs {
		if _, ok := catalog[r.Name]; !ok {
			return NewErrUnknownComponent(r.Name)
		}
	}

	return checkCompatibility(refNames(refs), catalog)
}

func checkCompatibility(names []string, catalog map[string]model.Component) error {
	for i := 0; i < len(names); i++ {
		a, ok := catalog[names[i]]
		if !ok {
			continue
		}
		for j := i + 1; j < len(names); j++ {
			b, ok := catalog[names[j]]
			if !ok {
				continue
			}
			if !a.IsCompatibleWith(b) {
				return NewErrIncompatibleComponents(a.Name, b.Name)
			}
		}
	}
	return nil
}

// inferNetwork resolves the network of a server through the workspace owning its rack.
func inferNetwork(ctx context.Context, s store.Store, rackName string) (string, error) {
	if rackName == "" {
		return "", NewErrValidation("network cannot be determined: rackName is required")
	}

	workspace, err := s.Workspace().FindByRack(ctx, rackName)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return "", NewErrValidation("network cannot be determined: no workspace owns rack %s", rackName)
		}
		return "", err
	}

	if _, err := s.Network().Get(ctx, workspace.Network); err != nil {
		return "", mapStoreError(err, "network", workspace.Network)
	}
	return workspace.Network, nil
}
