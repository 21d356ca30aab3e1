package service

import (
	"bytes"
	"context"
	"strings"
	"testing"

	lifecycledomain "github.com/smallbiznis/snackbar/internal/lifecycle/domain"
	"github.com/smallbiznis/snackbar/internal/receipt/domain"
	saledomain "github.com/smallbiznis/snackbar/internal/sale/domain"
	"github.com/smallbiznis/snackbar/internal/store"
	"github.com/smallbiznis/snackbar/internal/testkit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func setup(t *testing.T) (*testkit.Env, domain.Service) {
	env := testkit.New(t)
	require.NoError(t, env.Store.Update(context.Background(), func(tx *store.Tx) error {
		return tx.Sales().Upsert(&saledomain.Sale{
			ID:            "sale-1",
			OrderNumber:   "3IR001",
			PaymentMethod: saledomain.PaymentPix,
			Timestamp:     testkit.Now,
			State:         lifecycledomain.State{Status: lifecycledomain.StatusActive},
		})
	}))
	return env, New(Params{Store: env.Store, Log: env.Log, Clock: env.Clock, Config: env.Config})
}

func TestSaveDetectsTypeAndEncodes(t *testing.T) {
	_, svc := setup(t)
	ctx := context.Background()

	receipt, err := svc.Save(ctx, domain.SaveRequest{SaleID: "sale-1", FileName: "uploads/pix.png", Content: bytes.NewReader(pngHeader)})
	require.NoError(t, err)
	assert.Equal(t, "pix.png", receipt.FileName)
	assert.Equal(t, "image/png", receipt.FileType)
	assert.True(t, strings.HasPrefix(receipt.FileData, "data:image/png;base64,"))

	raw, err := Decode(receipt)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, raw)

	got, err := svc.Get(ctx, "sale-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, testkit.Now, got.UploadedAt)
}

func TestSaveKeepsGivenType(t *testing.T) {
	_, svc := setup(t)
	receipt, err := svc.Save(context.Background(), domain.SaveRequest{
		SaleID:   "sale-1",
		FileName: "nota.txt",
		FileType: "application/pdf",
		Content:  strings.NewReader("%PDF-1.4"),
	})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", receipt.FileType)
}

func TestSaveValidation(t *testing.T) {
	env, svc := setup(t)
	ctx := context.Background()

	_, err := svc.Save(ctx, domain.SaveRequest{FileName: "a.png", Content: bytes.NewReader(pngHeader)})
	assert.ErrorIs(t, err, domain.ErrInvalidSale)

	_, err = svc.Save(ctx, domain.SaveRequest{SaleID: "sale-1", FileName: " ", Content: bytes.NewReader(pngHeader)})
	assert.ErrorIs(t, err, domain.ErrInvalidFileName)

	_, err = svc.Save(ctx, domain.SaveRequest{SaleID: "sale-1", FileName: "a.png", Content: strings.NewReader("")})
	assert.ErrorIs(t, err, domain.ErrEmptyFile)

	big := bytes.Repeat([]byte{'x'}, int(env.Config.MaxReceiptBytes)+1)
	_, err = svc.Save(ctx, domain.SaveRequest{SaleID: "sale-1", FileName: "a.png", Content: bytes.NewReader(big)})
	assert.ErrorIs(t, err, domain.ErrReceiptTooLarge)

	_, err = svc.Save(ctx, domain.SaveRequest{SaleID: "sale-404", FileName: "a.png", Content: bytes.NewReader(pngHeader)})
	assert.ErrorIs(t, err, domain.ErrInvalidSale)

	require.NoError(t, env.Store.Update(ctx, func(tx *store.Tx) error {
		sale, err := tx.Sales().Get("sale-1")
		if err != nil {
			return err
		}
		sale.MarkDeleted(testkit.Now)
		return tx.Sales().Upsert(sale)
	}))
	_, err = svc.Save(ctx, domain.SaveRequest{SaleID: "sale-1", FileName: "a.png", Content: bytes.NewReader(pngHeader)})
	assert.ErrorIs(t, err, domain.ErrInvalidSale)
}

func TestGetHidesDeletedAndMissing(t *testing.T) {
	env, svc := setup(t)
	ctx := context.Background()

	got, err := svc.Get(ctx, "sale-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = svc.Save(ctx, domain.SaveRequest{SaleID: "sale-1", FileName: "a.png", Content: bytes.NewReader(pngHeader)})
	require.NoError(t, err)
	require.NoError(t, env.Store.Update(ctx, func(tx *store.Tx) error {
		r, err := tx.Receipts().Get("sale-1")
		if err != nil {
			return err
		}
		r.MarkDeleted(testkit.Now)
		return tx.Receipts().Upsert(r)
	}))

	got, err = svc.Get(ctx, "sale-1")
	require.NoError(t, err)
	assert.Nil(t, got)
	require.NoError(t, env.Store.View(ctx, func(tx *store.Tx) error {
		assert.False(t, Has(tx, "sale-1"))
		return nil
	}))
}
