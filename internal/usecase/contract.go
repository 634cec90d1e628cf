package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/courseforge/commerce/internal/adapter/api"
	domainErrors "github.com/courseforge/commerce/internal/domain/errors"
	"github.com/courseforge/commerce/internal/domain/model"
	"github.com/courseforge/commerce/internal/polling"
	"github.com/courseforge/commerce/internal/session"
)

// Signature progress labels derived from the two signature timestamps.
const (
	SignatureProgressUnsigned    = "Unsigned"
	SignatureProgressStudent     = "Signed by student, awaiting organization"
	SignatureProgressFullySigned = "Fully signed"
)

const archiveStoreKey = "commerce.contracts-archive"

const (
	defaultSignaturePollInterval = 1500 * time.Millisecond
	defaultSignaturePollLimit    = 45
	defaultArchivePollInterval   = time.Second
	defaultArchiveValidityWindow = 10 * time.Minute
)

// ContractOptions bounds the signature and archive polls.
type ContractOptions struct {
	SignaturePollInterval time.Duration
	SignaturePollLimit    int
	ArchivePollInterval   time.Duration
	ArchiveValidity       time.Duration
}

func (o ContractOptions) withDefaults() ContractOptions {
	if o.SignaturePollInterval <= 0 {
		o.SignaturePollInterval = defaultSignaturePollInterval
	}
	if o.SignaturePollLimit <= 0 {
		o.SignaturePollLimit = defaultSignaturePollLimit
	}
	if o.ArchivePollInterval <= 0 {
		o.ArchivePollInterval = defaultArchivePollInterval
	}
	if o.ArchiveValidity <= 0 {
		o.ArchiveValidity = defaultArchiveValidityWindow
	}
	return o
}

// ContractUseCase drives training-contract signature: requesting the
// signature-provider link, confirming completion by polling, and generating
// the bulk download archive.
type ContractUseCase struct {
	api    api.ResourceAPI
	store  session.Store
	opts   ContractOptions
	logger *slog.Logger
}

// NewContractUseCase constructs the contract lifecycle component.
func NewContractUseCase(resourceAPI api.ResourceAPI, store session.Store, opts ContractOptions, logger *slog.Logger) *ContractUseCase {
	return &ContractUseCase{api: resourceAPI, store: store, opts: opts.withDefaults(), logger: logger}
}

// SignatureProgress maps the signature timestamps to a display label.
func (u *ContractUseCase) SignatureProgress(contract model.Contract) string {
	switch {
	case contract.FullySigned():
		return SignatureProgressFullySigned
	case contract.StudentSignedOn != nil:
		return SignatureProgressStudent
	default:
		return SignatureProgressUnsigned
	}
}

// RequestSignature asks the backend for a signature-provider invitation link.
// The returned link is rendered in an embedded cross-origin frame; the
// transition to signed is confirmed separately with ConfirmSignature.
func (u *ContractUseCase) RequestSignature(ctx context.Context, order model.Order) (string, error) {
	if order.Contract == nil {
		return "", domainErrors.ErrNoContract
	}
	link, err := u.api.SignatureInvitationLink(ctx, order.Contract.ID)
	if err != nil {
		return "", fmt.Errorf("request signature link: %w", err)
	}
	return link, nil
}

// ConfirmSignature polls the contract until the learner's signature lands or
// the attempt budget runs out. Timing out is not a failure; the caller shows
// "check again later" messaging and may confirm again.
func (u *ContractUseCase) ConfirmSignature(ctx context.Context, contractID string) (polling.Outcome, error) {
	return polling.Confirm(ctx, func(ctx context.Context) (bool, error) {
		contract, err := u.api.Contract(ctx, contractID)
		if err != nil {
			if domainErrors.IsAuthorization(err) {
				return false, polling.Permanent(err)
			}
			return false, err
		}
		return contract.State() == model.ContractStateSigned, nil
	}, polling.Options{
		Interval: u.opts.SignaturePollInterval,
		Limit:    u.opts.SignaturePollLimit,
	})
}

// archiveWindow is the persisted validity window of a requested archive, so
// a reload resumes the same server job instead of requesting a new one.
type archiveWindow struct {
	ArchiveID  string    `json:"archive_id"`
	ValidUntil time.Time `json:"valid_until"`
}

// RequestArchive returns the archive id to poll, reusing a still-valid
// previously requested archive when one exists.
func (u *ContractUseCase) RequestArchive(ctx context.Context) (string, error) {
	if raw, ok := u.store.Get(archiveStoreKey); ok {
		var w archiveWindow
		if err := json.Unmarshal(raw, &w); err == nil && time.Now().Before(w.ValidUntil) {
			return w.ArchiveID, nil
		}
	}

	archiveID, err := u.api.CreateContractsArchive(ctx)
	if err != nil {
		return "", fmt.Errorf("request contracts archive: %w", err)
	}

	w := archiveWindow{ArchiveID: archiveID, ValidUntil: time.Now().Add(u.opts.ArchiveValidity)}
	raw, err := json.Marshal(w)
	if err == nil {
		u.store.Set(archiveStoreKey, raw, w.ValidUntil)
	}
	return archiveID, nil
}

// ConfirmArchive polls archive readiness inside the persisted validity
// window. The window, not an attempt count, bounds this long-running job.
func (u *ContractUseCase) ConfirmArchive(ctx context.Context, archiveID string) (polling.Outcome, error) {
	deadline := time.Now().Add(u.opts.ArchiveValidity)
	if raw, ok := u.store.Get(archiveStoreKey); ok {
		var w archiveWindow
		if err := json.Unmarshal(raw, &w); err == nil && w.ArchiveID == archiveID {
			deadline = w.ValidUntil
		}
	}

	outcome, err := polling.ConfirmUntil(ctx, func(ctx context.Context) (bool, error) {
		exists, err := u.api.ContractsArchiveExists(ctx, archiveID)
		if err != nil {
			if domainErrors.IsAuthorization(err) {
				return false, polling.Permanent(err)
			}
			return false, err
		}
		return exists, nil
	}, u.opts.ArchivePollInterval, deadline)

	if outcome == polling.OutcomeConfirmed {
		u.store.Delete(archiveStoreKey)
	}
	return outcome, err
}
