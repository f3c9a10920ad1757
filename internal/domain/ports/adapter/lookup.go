package adapter

import (
	"context"

	"telegram-upi-lookup/internal/domain/model"
)

// IFSCClient fetches branch details for a normalized IFSC code.
// Implementations return domain.ErrNotFound when the service does not know the
// code and wrap domain.ErrUpstream for every other failure.
type IFSCClient interface {
	Fetch(ctx context.Context, ifsc string) (*model.IFSCDetails, error)
}

// HandleResolver maps a UPI handle to its bank. Unknown handles yield domain.ErrUnknownHandle.
type HandleResolver interface {
	Resolve(ctx context.Context, handle string) (*model.BankHandle, error)
}
