package domain

import (
	"time"

	lifecycledomain "github.com/smallbiznis/snackbar/internal/lifecycle/domain"
)

// Receipt is the proof of payment attached to a sale, at most one per sale.
type Receipt struct {
	SaleID     string    `json:"saleId"`
	FileName   string    `json:"fileName"`
	FileType   string    `json:"fileType"`
	FileData   string    `json:"fileData"`
	UploadedAt time.Time `json:"uploadedAt"`
	lifecycledomain.State
}

func (r *Receipt) EntityID() string { return r.SaleID }

func (r *Receipt) DisplayName() string { return r.FileName }

func (r *Receipt) Clone() *Receipt {
	out := *r
	out.State = r.State.CloneState()
	return &out
}
