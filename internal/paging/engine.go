// Package paging layers fixed-size pages and totals over store queries.
package paging

import (
	"context"

	"github.com/jacentio/stevedore/internal/model"
	"github.com/jacentio/stevedore/store"
)

// DefaultPageSize is the listing page size.
const DefaultPageSize = 5

// Store is the query access the engine needs.
type Store interface {
	QueryPage(ctx context.Context, input store.QueryInput) (store.QueryPage, error)
	Count(ctx context.Context, kind string, filter *store.Condition) (int, error)
}

// Engine wraps store queries with the page size and cursor propagation.
// Cursors pass through opaque in both directions; the engine never
// inspects them.
type Engine struct {
	store    Store
	pageSize int32
}

// NewEngine creates an Engine. pageSize <= 0 selects DefaultPageSize.
func NewEngine(s Store, pageSize int) *Engine {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Engine{store: s, pageSize: int32(pageSize)}
}

// VesselPage is one page of an owner-scoped vessel listing.
type VesselPage struct {
	Items []*model.Vessel

	// TotalItems counts every vessel matching the owner filter, not just
	// this page. Computed by re-running the filtered query unbounded so
	// it always reflects the same filter as the page.
	TotalItems int

	// NextCursor is set only when more results exist beyond this page.
	NextCursor string
}

// CargoPage is one page of the unscoped cargo listing.
type CargoPage struct {
	Items      []*model.CargoItem
	TotalItems int
	NextCursor string
}

// ListVessels returns the page of vessels owned by owner at cursorToken.
func (e *Engine) ListVessels(ctx context.Context, owner, cursorToken string) (*VesselPage, error) {
	filter := &store.Condition{Attr: "owner", Equals: owner}

	result, err := e.store.QueryPage(ctx, store.QueryInput{
		Kind:   model.KindVessel,
		Filter: filter,
		Limit:  e.pageSize,
		Cursor: cursorToken,
	})
	if err != nil {
		return nil, err
	}

	page := &VesselPage{
		Items:      make([]*model.Vessel, 0, len(result.Items)),
		NextCursor: result.NextCursor,
	}
	for _, rec := range result.Items {
		v, err := model.VesselFromRecord(rec)
		if err != nil {
			return nil, err
		}
		page.Items = append(page.Items, v)
	}

	page.TotalItems, err = e.store.Count(ctx, model.KindVessel, filter)
	if err != nil {
		return nil, err
	}
	return page, nil
}

// ListCargo returns the page of all cargo items at cursorToken.
func (e *Engine) ListCargo(ctx context.Context, cursorToken string) (*CargoPage, error) {
	result, err := e.store.QueryPage(ctx, store.QueryInput{
		Kind:   model.KindCargo,
		Limit:  e.pageSize,
		Cursor: cursorToken,
	})
	if err != nil {
		return nil, err
	}

	page := &CargoPage{
		Items:      make([]*model.CargoItem, 0, len(result.Items)),
		NextCursor: result.NextCursor,
	}
	for _, rec := range result.Items {
		c, err := model.CargoFromRecord(rec)
		if err != nil {
			return nil, err
		}
		page.Items = append(page.Items, c)
	}

	page.TotalItems, err = e.store.Count(ctx, model.KindCargo, nil)
	if err != nil {
		return nil, err
	}
	return page, nil
}
