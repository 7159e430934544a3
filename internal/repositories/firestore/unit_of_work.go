package firestore

import (
	"context"
	"errors"

	pfirestore "github.com/fr4ncode/order-system/internal/platform/firestore"
)

// UnitOfWork coordinates multi-document writes through a single Firestore
// transaction. Repository calls made with the context passed to fn detect the
// transaction and route their reads and writes through it.
type UnitOfWork struct {
	provider *pfirestore.Provider
}

// NewUnitOfWork constructs a Firestore backed unit of work.
func NewUnitOfWork(provider *pfirestore.Provider) (*UnitOfWork, error) {
	if provider == nil {
		return nil, errors.New("unit of work requires firestore provider")
	}
	return &UnitOfWork{provider: provider}, nil
}

// RunInTx executes fn inside a Firestore transaction. Firestore requires all
// reads inside fn to happen before the first write.
func (u *UnitOfWork) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if u == nil || u.provider == nil {
		return errors.New("unit of work not initialised")
	}
	return u.provider.RunTransaction(ctx, fn)
}
