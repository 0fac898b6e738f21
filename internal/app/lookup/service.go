package lookup

import (
	"context"
	"encoding/json"

	"github.com/cukaracha/hrspwr-sub000/internal/domain/lookup"
	"github.com/cukaracha/hrspwr-sub000/pkg/tracer"
	"go.opentelemetry.io/otel/attribute"
)

type Service interface {
	DecodeVIN(ctx context.Context, vin string) (json.RawMessage, error)
	Categories(ctx context.Context, vehicleID int) ([]lookup.CategoryGroup, error)
}

type service struct {
	domainService *lookup.Service
}

func NewService(domainService *lookup.Service) Service {
	return &service{
		domainService: domainService,
	}
}

func (s *service) DecodeVIN(ctx context.Context, vin string) (json.RawMessage, error) {
	ctx, span := tracer.Start(ctx, "app.lookup.DecodeVIN")
	defer span.End()

	span.SetAttributes(attribute.String("lookup.vin_prefix", vinPrefix(vin)))

	doc, err := s.domainService.DecodeVIN(ctx, vin)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return doc, nil
}

func (s *service) Categories(ctx context.Context, vehicleID int) ([]lookup.CategoryGroup, error) {
	ctx, span := tracer.Start(ctx, "app.lookup.Categories")
	defer span.End()

	span.SetAttributes(attribute.Int("lookup.vehicle_id", vehicleID))

	groups, err := s.domainService.Categories(ctx, vehicleID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("lookup.groups", len(groups)))
	return groups, nil
}

// The full VIN encodes the serial number; only the world-manufacturer prefix
// goes on the span.
const vinPrefixLength = 3

func vinPrefix(vin string) string {
	if len(vin) > vinPrefixLength {
		return vin[:vinPrefixLength] + "..."
	}
	return "***"
}
