// Package stream provides DynamoDB Streams handlers for relationship repair.
//
// Assign, unassign and the delete cascades are pairs of independent
// single-key writes, so a crash can leave a cargo item pointing at a
// vessel that no longer exists. This handler watches the vessel table's
// stream and clears any carrier reference a removed vessel left behind.
package stream

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/aws/aws-lambda-go/events"

	"github.com/jacentio/stevedore/internal/model"
	"github.com/jacentio/stevedore/store"
)

// Store is the record access the repair handler needs.
type Store interface {
	Get(ctx context.Context, kind string, id int64) (store.Record, error)
	Put(ctx context.Context, kind string, id int64, rec store.Record) error
}

// Handler processes vessel-table stream events.
type Handler struct {
	store  Store
	logger *slog.Logger
}

// NewHandler creates a new stream handler.
func NewHandler(s Store, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		store:  s,
		logger: logger,
	}
}

// HandleVesselRemove clears carrier references left behind by removed
// vessels. Designed to be used as an AWS Lambda handler.
func (h *Handler) HandleVesselRemove(ctx context.Context, event events.DynamoDBEvent) error {
	for _, record := range event.Records {
		if err := h.processRecord(ctx, record); err != nil {
			h.logger.Error("failed to process record",
				"eventID", record.EventID,
				"error", err,
			)
			return err // Will retry, eventually DLQ
		}
	}
	return nil
}

// processRecord processes a single vessel-table stream record.
func (h *Handler) processRecord(ctx context.Context, record events.DynamoDBEventRecord) error {
	if record.EventName != "REMOVE" {
		return nil
	}

	old := record.Change.OldImage
	vesselID := getNumberAttr(old, "id")
	if vesselID == 0 {
		return nil
	}

	children := getRefIDs(old, "children")
	if len(children) == 0 {
		return nil
	}

	h.logger.Info("repairing carrier references",
		"vessel", vesselID,
		"childCount", len(children),
	)

	for _, cargoID := range children {
		if err := h.clearCarrier(ctx, cargoID, vesselID); err != nil {
			h.logger.Warn("failed to clear carrier",
				"cargo", cargoID,
				"vessel", vesselID,
				"error", err,
			)
			// Continue - idempotent, will retry
		}
	}

	return nil
}

// clearCarrier nulls a cargo item's carrier while it still references the
// removed vessel. A vanished or re-assigned cargo item is left alone.
func (h *Handler) clearCarrier(ctx context.Context, cargoID, vesselID int64) error {
	rec, err := h.store.Get(ctx, model.KindCargo, cargoID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	c, err := model.CargoFromRecord(rec)
	if err != nil {
		return err
	}
	if c.Carrier == nil || c.Carrier.ID != vesselID {
		return nil
	}

	c.Carrier = nil
	cleared, err := c.Record()
	if err != nil {
		return err
	}
	return h.store.Put(ctx, model.KindCargo, cargoID, cleared)
}

// getNumberAttr extracts a number attribute from a DynamoDB stream image.
func getNumberAttr(image map[string]events.DynamoDBAttributeValue, key string) int64 {
	if v, ok := image[key]; ok {
		if v.DataType() == events.DataTypeNumber {
			n, _ := strconv.ParseInt(v.Number(), 10, 64)
			return n
		}
	}
	return 0
}

// getRefIDs extracts the ids from a list of {id} maps in a stream image.
func getRefIDs(image map[string]events.DynamoDBAttributeValue, key string) []int64 {
	v, ok := image[key]
	if !ok || v.DataType() != events.DataTypeList {
		return nil
	}

	var ids []int64
	for _, item := range v.List() {
		if item.DataType() != events.DataTypeMap {
			continue
		}
		if id := getNumberAttr(item.Map(), "id"); id != 0 {
			ids = append(ids, id)
		}
	}
	return ids
}
