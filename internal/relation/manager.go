// Package relation maintains the bidirectional link between vessels and
// cargo items.
//
// A vessel holds an ordered list of child refs; each cargo item holds at
// most one carrier back-reference. The store offers no write that spans
// both records, so every link change is two independent single-key writes
// in a fixed order: the vessel's children list first, then the cargo's
// carrier. A crash between the two leaves a detectable inconsistency that
// is never silently masked; a failed second write surfaces to the caller
// so the operation can be retried. Callers must never write the children
// or carrier attributes directly.
package relation

import (
	"context"
	"errors"

	"github.com/jacentio/stevedore/internal/apierr"
	"github.com/jacentio/stevedore/internal/auth"
	"github.com/jacentio/stevedore/internal/model"
	"github.com/jacentio/stevedore/internal/platform/logger"
	"github.com/jacentio/stevedore/store"
)

// Store is the record access the manager needs.
type Store interface {
	Get(ctx context.Context, kind string, id int64) (store.Record, error)
	Put(ctx context.Context, kind string, id int64, rec store.Record) error
	Delete(ctx context.Context, kind string, id int64) error
	BatchGet(ctx context.Context, kind string, ids []int64) ([]store.Record, error)
	AllocateID(ctx context.Context, kind string) (int64, error)
}

// Manager owns all reads and writes of the vessel/cargo relationship.
type Manager struct {
	store   Store
	vessels auth.Guard
	cargo   auth.Guard
	log     *logger.Logger
}

// NewManager creates a Manager with the standard policy pair: vessels are
// owner-scoped, cargo items are open to every identity.
func NewManager(s Store, log *logger.Logger) *Manager {
	return &Manager{
		store:   s,
		vessels: auth.OwnerGuard{},
		cargo:   auth.OpenGuard{},
		log:     log,
	}
}

// --- Vessels ---

// CreateVessel allocates an id and writes a new vessel owned by subject,
// with an empty children list.
func (m *Manager) CreateVessel(ctx context.Context, subject string, f *model.VesselFields) (*model.Vessel, error) {
	id, err := m.store.AllocateID(ctx, model.KindVessel)
	if err != nil {
		return nil, err
	}

	v := &model.Vessel{
		ID:       id,
		Name:     *f.Name,
		Category: *f.Category,
		Length:   *f.Length,
		Owner:    subject,
		Children: []model.Ref{},
	}
	if err := m.putVessel(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// GetVessel returns a vessel if it exists and subject may see it.
func (m *Manager) GetVessel(ctx context.Context, subject string, id int64) (*model.Vessel, error) {
	v, err := m.getVessel(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := m.vessels.Authorize(subject, v.Owner); err != nil {
		return nil, err
	}
	return v, nil
}

// ReplaceVessel overwrites name/category/length and takes ownership for
// subject. Replacement is destructive to the relationship: the children
// list resets to empty and every previously attached cargo item has its
// carrier cleared first, one awaited write per child.
func (m *Manager) ReplaceVessel(ctx context.Context, subject string, id int64, f *model.VesselFields) error {
	v, err := m.GetVessel(ctx, subject, id)
	if err != nil {
		return err
	}

	for _, child := range v.Children {
		if err := m.clearCarrier(ctx, child.ID, id); err != nil {
			return err
		}
	}

	replaced := &model.Vessel{
		ID:       id,
		Name:     *f.Name,
		Category: *f.Category,
		Length:   *f.Length,
		Owner:    subject,
		Children: []model.Ref{},
	}
	return m.putVessel(ctx, replaced)
}

// PatchVessel overwrites only the fields present. Never touches children.
func (m *Manager) PatchVessel(ctx context.Context, subject string, id int64, f *model.VesselFields) error {
	v, err := m.GetVessel(ctx, subject, id)
	if err != nil {
		return err
	}

	if f.Name != nil {
		v.Name = *f.Name
	}
	if f.Category != nil {
		v.Category = *f.Category
	}
	if f.Length != nil {
		v.Length = *f.Length
	}
	return m.putVessel(ctx, v)
}

// DeleteVessel detaches every attached cargo item, awaiting each write,
// then deletes the vessel record. A detach failure aborts before the
// vessel is removed; already-cleared children are skipped.
func (m *Manager) DeleteVessel(ctx context.Context, subject string, id int64) error {
	v, err := m.GetVessel(ctx, subject, id)
	if err != nil {
		return err
	}

	for _, child := range v.Children {
		if err := m.clearCarrier(ctx, child.ID, id); err != nil {
			m.log.Error("vessel delete cascade aborted",
				"vessel", id, "cargo", child.ID, "error", err)
			return err
		}
	}

	return m.store.Delete(ctx, model.KindVessel, id)
}

// VesselCargo returns the cargo items attached to a vessel via one batch
// read. Children whose record has vanished are omitted.
func (m *Manager) VesselCargo(ctx context.Context, subject string, id int64) ([]*model.CargoItem, error) {
	v, err := m.GetVessel(ctx, subject, id)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(v.Children))
	for _, child := range v.Children {
		ids = append(ids, child.ID)
	}

	recs, err := m.store.BatchGet(ctx, model.KindCargo, ids)
	if err != nil {
		return nil, err
	}

	items := make([]*model.CargoItem, 0, len(recs))
	for _, rec := range recs {
		c, err := model.CargoFromRecord(rec)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, nil
}

// Assign attaches a cargo item to a vessel. Preconditions are checked
// before any write: both records exist, subject owns the vessel, and the
// cargo has no carrier. The vessel's children list is written first, then
// the cargo's carrier; a failed second write is surfaced with no rollback.
func (m *Manager) Assign(ctx context.Context, subject string, vesselID, cargoID int64) error {
	v, c, err := m.getPair(ctx, vesselID, cargoID,
		"The specified vessel and/or cargo item does not exist")
	if err != nil {
		return err
	}
	if err := m.vessels.Authorize(subject, v.Owner); err != nil {
		return err
	}
	if c.Carrier != nil {
		return apierr.AlreadyAttached()
	}

	v.Children = append(v.Children, model.Ref{ID: cargoID})
	if err := m.putVessel(ctx, v); err != nil {
		return err
	}

	c.Carrier = &model.Ref{ID: vesselID}
	if err := m.putCargo(ctx, c); err != nil {
		m.log.Error("assign left vessel and cargo inconsistent",
			"vessel", vesselID, "cargo", cargoID, "error", err)
		return err
	}
	return nil
}

// Unassign detaches a cargo item from a vessel. Idempotent on both sides:
// removing an absent child entry is a no-op and the carrier is cleared
// only while it still references this vessel, because the vessel-initiated
// and cargo-initiated detach paths can race.
func (m *Manager) Unassign(ctx context.Context, subject string, vesselID, cargoID int64) error {
	v, c, err := m.getPair(ctx, vesselID, cargoID,
		"No vessel with this vessel_id is loaded with the cargo item with this item_id")
	if err != nil {
		return err
	}
	if err := m.vessels.Authorize(subject, v.Owner); err != nil {
		return err
	}

	if children, removed := removeChild(v.Children, cargoID); removed {
		v.Children = children
		if err := m.putVessel(ctx, v); err != nil {
			return err
		}
	}

	if c.Carrier != nil && c.Carrier.ID == vesselID {
		c.Carrier = nil
		if err := m.putCargo(ctx, c); err != nil {
			m.log.Error("unassign left vessel and cargo inconsistent",
				"vessel", vesselID, "cargo", cargoID, "error", err)
			return err
		}
	}
	return nil
}

// --- Cargo items ---

// CreateCargo allocates an id and writes a new unattached cargo item.
func (m *Manager) CreateCargo(ctx context.Context, subject string, f *model.CargoFields) (*model.CargoItem, error) {
	if err := m.cargo.Authorize(subject, ""); err != nil {
		return nil, err
	}

	id, err := m.store.AllocateID(ctx, model.KindCargo)
	if err != nil {
		return nil, err
	}

	c := &model.CargoItem{
		ID:           id,
		Volume:       *f.Volume,
		Item:         *f.Item,
		CreationDate: *f.CreationDate,
		Carrier:      nil,
	}
	if err := m.putCargo(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// GetCargo returns a cargo item by id.
func (m *Manager) GetCargo(ctx context.Context, subject string, id int64) (*model.CargoItem, error) {
	if err := m.cargo.Authorize(subject, ""); err != nil {
		return nil, err
	}
	return m.getCargo(ctx, id)
}

// ReplaceCargo overwrites volume/item/creation_date and resets the
// carrier to null, detaching from the current vessel first if attached.
func (m *Manager) ReplaceCargo(ctx context.Context, subject string, id int64, f *model.CargoFields) error {
	c, err := m.GetCargo(ctx, subject, id)
	if err != nil {
		return err
	}

	if c.Carrier != nil {
		if err := m.dropChild(ctx, c.Carrier.ID, id); err != nil {
			return err
		}
	}

	replaced := &model.CargoItem{
		ID:           id,
		Volume:       *f.Volume,
		Item:         *f.Item,
		CreationDate: *f.CreationDate,
		Carrier:      nil,
	}
	return m.putCargo(ctx, replaced)
}

// PatchCargo overwrites only the fields present. Any subset is accepted;
// the carrier is never touched.
func (m *Manager) PatchCargo(ctx context.Context, subject string, id int64, f *model.CargoFields) error {
	c, err := m.GetCargo(ctx, subject, id)
	if err != nil {
		return err
	}

	if f.Volume != nil {
		c.Volume = *f.Volume
	}
	if f.Item != nil {
		c.Item = *f.Item
	}
	if f.CreationDate != nil {
		c.CreationDate = *f.CreationDate
	}
	return m.putCargo(ctx, c)
}

// DeleteCargo removes the cargo item, first dropping its entry from the
// carrier vessel's children when attached.
func (m *Manager) DeleteCargo(ctx context.Context, subject string, id int64) error {
	c, err := m.GetCargo(ctx, subject, id)
	if err != nil {
		return err
	}

	if c.Carrier != nil {
		if err := m.dropChild(ctx, c.Carrier.ID, id); err != nil {
			return err
		}
	}

	return m.store.Delete(ctx, model.KindCargo, id)
}

// --- helpers ---

func (m *Manager) getVessel(ctx context.Context, id int64) (*model.Vessel, error) {
	rec, err := m.store.Get(ctx, model.KindVessel, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apierr.NotFound("No vessel with this vessel_id exists")
	}
	if err != nil {
		return nil, err
	}
	return model.VesselFromRecord(rec)
}

func (m *Manager) getCargo(ctx context.Context, id int64) (*model.CargoItem, error) {
	rec, err := m.store.Get(ctx, model.KindCargo, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apierr.NotFound("No cargo item with this item_id exists")
	}
	if err != nil {
		return nil, err
	}
	return model.CargoFromRecord(rec)
}

// getPair fetches both halves of the relationship before any write,
// collapsing either missing record into one not-found message.
func (m *Manager) getPair(ctx context.Context, vesselID, cargoID int64, missing string) (*model.Vessel, *model.CargoItem, error) {
	v, err := m.getVessel(ctx, vesselID)
	if err != nil {
		return nil, nil, resolveMissing(err, missing)
	}
	c, err := m.getCargo(ctx, cargoID)
	if err != nil {
		return nil, nil, resolveMissing(err, missing)
	}
	return v, c, nil
}

func resolveMissing(err error, missing string) error {
	var apiErr *apierr.Error
	if errors.As(err, &apiErr) && apiErr.Status == 404 {
		return apierr.NotFound(missing)
	}
	return err
}

func (m *Manager) putVessel(ctx context.Context, v *model.Vessel) error {
	rec, err := v.Record()
	if err != nil {
		return err
	}
	return m.store.Put(ctx, model.KindVessel, v.ID, rec)
}

func (m *Manager) putCargo(ctx context.Context, c *model.CargoItem) error {
	rec, err := c.Record()
	if err != nil {
		return err
	}
	return m.store.Put(ctx, model.KindCargo, c.ID, rec)
}

// clearCarrier nulls a cargo item's carrier while it references vesselID.
// Used by the vessel-side cascades; a vanished or re-assigned cargo item
// is left alone.
func (m *Manager) clearCarrier(ctx context.Context, cargoID, vesselID int64) error {
	c, err := m.getCargo(ctx, cargoID)
	if err != nil {
		var apiErr *apierr.Error
		if errors.As(err, &apiErr) && apiErr.Status == 404 {
			return nil
		}
		return err
	}
	if c.Carrier == nil || c.Carrier.ID != vesselID {
		return nil
	}
	c.Carrier = nil
	return m.putCargo(ctx, c)
}

// dropChild removes cargoID from a vessel's children list. Used by the
// cargo-side cascades; a vanished vessel or absent entry is a no-op.
func (m *Manager) dropChild(ctx context.Context, vesselID, cargoID int64) error {
	v, err := m.getVessel(ctx, vesselID)
	if err != nil {
		var apiErr *apierr.Error
		if errors.As(err, &apiErr) && apiErr.Status == 404 {
			return nil
		}
		return err
	}
	children, removed := removeChild(v.Children, cargoID)
	if !removed {
		return nil
	}
	v.Children = children
	return m.putVessel(ctx, v)
}

// removeChild drops the entry with the given id, preserving order.
func removeChild(refs []model.Ref, id int64) ([]model.Ref, bool) {
	for i, ref := range refs {
		if ref.ID == id {
			return append(refs[:i:i], refs[i+1:]...), true
		}
	}
	return refs, false
}
