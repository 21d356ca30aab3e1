package service

import (
	"sort"

	"github.com/smallbiznis/snackbar/internal/lifecycle/domain"
	"github.com/smallbiznis/snackbar/internal/store"
)

type record interface {
	domain.Deletable
	EntityID() string
}

type tableRecord[T any] interface {
	store.Record[T]
	domain.Deletable
}

// binding erases the record type of one store table so every kind can share
// the same transition code.
type binding struct {
	get     func(id string) (record, error)
	put     func(v record) error
	remove  func(id string) error
	deleted func() []record
}

func bind[T tableRecord[T]](t *store.Table[T]) binding {
	return binding{
		get: func(id string) (record, error) {
			v, err := t.Get(id)
			if err != nil {
				return nil, err
			}
			return v, nil
		},
		put: func(v record) error {
			return t.Upsert(v.(T))
		},
		remove: t.Remove,
		deleted: func() []record {
			items := t.List(func(v T) bool {
				return v.LifecycleStatus() == domain.StatusDeleted
			})
			out := make([]record, 0, len(items))
			for _, v := range items {
				out = append(out, v)
			}
			return out
		},
	}
}

func tableFor(tx *store.Tx, kind domain.Kind) (binding, error) {
	switch kind {
	case domain.KindProduct:
		return bind(tx.Products()), nil
	case domain.KindIngredient:
		return bind(tx.Ingredients()), nil
	case domain.KindSale:
		return bind(tx.Sales()), nil
	case domain.KindReport:
		return bind(tx.Reports()), nil
	case domain.KindReceipt:
		return bind(tx.Receipts()), nil
	}
	return binding{}, domain.ErrInvalidKind
}

// deletedItems lists soft-deleted records of kind, most recently deleted
// first.
func deletedItems(tx *store.Tx, kind domain.Kind) ([]domain.DeletedItem, error) {
	b, err := tableFor(tx, kind)
	if err != nil {
		return nil, err
	}
	records := b.deleted()
	out := make([]domain.DeletedItem, 0, len(records))
	for _, r := range records {
		item := domain.DeletedItem{Kind: kind, ID: r.EntityID(), Name: r.DisplayName()}
		if at := r.DeletedTime(); at != nil {
			item.DeletedAt = *at
		}
		out = append(out, item)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DeletedAt.After(out[j].DeletedAt)
	})
	return out, nil
}
