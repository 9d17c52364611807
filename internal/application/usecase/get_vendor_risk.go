package usecase

import (
	"context"
	"fmt"

	"github.com/opengrc/grc/internal/application/dto"
	"github.com/opengrc/grc/internal/domain/port"
)

// GetVendorRisk is the use case for reading a vendor's stored risk.
type GetVendorRisk struct {
	vendors port.VendorRepository
}

// NewGetVendorRisk creates a new GetVendorRisk use case.
func NewGetVendorRisk(vendors port.VendorRepository) *GetVendorRisk {
	return &GetVendorRisk{vendors: vendors}
}

// Execute retrieves the vendor risk by vendor ID.
func (uc *GetVendorRisk) Execute(ctx context.Context, req dto.GetVendorRiskRequest) (dto.VendorRiskResponse, error) {
	vendor, err := uc.vendors.FindByID(ctx, req.VendorID)
	if err != nil {
		return dto.VendorRiskResponse{}, fmt.Errorf("failed to find vendor: %w", err)
	}
	return dto.FromVendor(vendor), nil
}
