package usecase

import (
	"context"
	"errors"
	"fmt"

	"telegram-upi-lookup/internal/domain"
	"telegram-upi-lookup/internal/domain/model"
	"telegram-upi-lookup/internal/domain/ports/adapter"
	"telegram-upi-lookup/internal/infra/logging"
	"telegram-upi-lookup/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ LookupUseCase = (*lookupUC)(nil)

// LookupUseCase answers /upi and /ifsc.
type LookupUseCase interface {
	LookupUPI(ctx context.Context, raw string) (*model.UPIResult, error)
	LookupIFSC(ctx context.Context, raw string) (*model.IFSCDetails, error)
}

type lookupUC struct {
	resolver adapter.HandleResolver
	ifsc     adapter.IFSCClient
	log      *zerolog.Logger
}

func NewLookupUseCase(resolver adapter.HandleResolver, ifsc adapter.IFSCClient, logger *zerolog.Logger) *lookupUC {
	return &lookupUC{
		resolver: resolver,
		ifsc:     ifsc,
		log:      logger,
	}
}

// LookupUPI validates raw, resolves its handle to a bank and enriches the result
// with branch details. A failed branch lookup is not an error: the result is
// returned with nil Details.
func (u *lookupUC) LookupUPI(ctx context.Context, raw string) (*model.UPIResult, error) {
	defer logging.TraceDuration(u.log, "LookupUC.LookupUPI")()
	log := logging.With(ctx, u.log)

	addr, err := model.ParseUPI(raw)
	if err != nil {
		metrics.IncLookup(string(model.LookupUPI), model.OutcomeInvalid)
		return nil, err
	}

	handle, err := u.resolver.Resolve(ctx, addr.Handle)
	if err != nil {
		outcome := Outcome(err)
		metrics.IncLookup(string(model.LookupUPI), outcome)
		log.Info().Str("handle", addr.Handle).Str("outcome", outcome).Msg("upi handle not resolved")
		if errors.Is(err, domain.ErrUpstream) {
			return nil, fmt.Errorf("resolve %s: %w", addr.Handle, domain.ErrUnknownHandle)
		}
		return nil, err
	}

	res := &model.UPIResult{Address: addr, Handle: *handle}
	details, err := u.ifsc.Fetch(ctx, handle.IFSC)
	if err != nil {
		log.Warn().Err(err).Str("ifsc", handle.IFSC).Msg("branch details unavailable, replying without them")
		metrics.IncLookup(string(model.LookupUPI), model.OutcomePartial)
		return res, nil
	}
	res.Details = details
	metrics.IncLookup(string(model.LookupUPI), model.OutcomeFound)
	return res, nil
}

func (u *lookupUC) LookupIFSC(ctx context.Context, raw string) (*model.IFSCDetails, error) {
	defer logging.TraceDuration(u.log, "LookupUC.LookupIFSC")()

	code, err := model.NormalizeIFSC(raw)
	if err != nil {
		metrics.IncLookup(string(model.LookupIFSC), model.OutcomeInvalid)
		return nil, err
	}

	details, err := u.ifsc.Fetch(ctx, code)
	if err != nil {
		outcome := Outcome(err)
		metrics.IncLookup(string(model.LookupIFSC), outcome)
		logging.With(ctx, u.log).Info().Err(err).Str("ifsc", code).Str("outcome", outcome).Msg("ifsc lookup failed")
		return nil, err
	}
	metrics.IncLookup(string(model.LookupIFSC), model.OutcomeFound)
	return details, nil
}

// Outcome classifies a lookup error into a history/metric label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return model.OutcomeFound
	case errors.Is(err, domain.ErrInvalidUPI), errors.Is(err, domain.ErrInvalidIFSC):
		return model.OutcomeInvalid
	case errors.Is(err, domain.ErrUnknownHandle):
		return model.OutcomeUnknown
	case errors.Is(err, domain.ErrNotFound):
		return model.OutcomeNotFound
	default:
		return model.OutcomeError
	}
}

// UPIOutcome is Outcome for a successful UPI lookup, distinguishing degraded replies.
func UPIOutcome(res *model.UPIResult) string {
	if res != nil && res.Details == nil {
		return model.OutcomePartial
	}
	return model.OutcomeFound
}
