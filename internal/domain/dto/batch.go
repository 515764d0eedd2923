package dto

import "github.com/servease/payout-service/internal/domain/model"

// CreateBatchRequest groups pending payouts into a draft batch
type CreateBatchRequest struct {
	BatchName string   `json:"batch_name" validate:"required"`
	PayoutIDs []string `json:"payout_ids" validate:"required,min=1,dive,required"`
	CreatedBy string   `json:"created_by" validate:"required"`
}

// BatchFilters narrows batch list queries
type BatchFilters struct {
	Status model.BatchStatus
	Limit  int
	Offset int
}

// SetDefaults applies default pagination values
func (f *BatchFilters) SetDefaults() {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
}

// BatchListResponse is the paginated batch listing
type BatchListResponse struct {
	Batches    []model.PayoutBatch `json:"batches"`
	Pagination PaginationInfo      `json:"pagination"`
}
