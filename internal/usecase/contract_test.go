package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	domainErrors "github.com/courseforge/commerce/internal/domain/errors"
	"github.com/courseforge/commerce/internal/domain/model"
	"github.com/courseforge/commerce/internal/polling"
	"github.com/courseforge/commerce/internal/session"
	testhelpers "github.com/courseforge/commerce/internal/test"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func signedContract() *model.Contract {
	now := time.Now()
	return &model.Contract{ID: "ctr-1", StudentSignedOn: &now}
}

func newContractForTest(api *testhelpers.ResourceAPIStub, opts ContractOptions) (*ContractUseCase, *session.MemoryStore) {
	store := session.NewMemoryStore()
	return NewContractUseCase(api, store, opts, discardLogger()), store
}

func TestSignatureProgressLabels(t *testing.T) {
	u, _ := newContractForTest(&testhelpers.ResourceAPIStub{}, ContractOptions{})
	now := time.Now()

	cases := []struct {
		name     string
		contract model.Contract
		want     string
	}{
		{"no signatures", model.Contract{}, SignatureProgressUnsigned},
		{"organization alone is not progress", model.Contract{OrganizationSignedOn: &now}, SignatureProgressUnsigned},
		{"student signed", model.Contract{StudentSignedOn: &now}, SignatureProgressStudent},
		{"both signed", model.Contract{StudentSignedOn: &now, OrganizationSignedOn: &now}, SignatureProgressFullySigned},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := u.SignatureProgress(tc.contract); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestRequestSignatureWithoutContract(t *testing.T) {
	u, _ := newContractForTest(&testhelpers.ResourceAPIStub{}, ContractOptions{})

	_, err := u.RequestSignature(context.Background(), model.Order{ID: "o-1"})
	if !errors.Is(err, domainErrors.ErrNoContract) {
		t.Fatalf("expected ErrNoContract, got %v", err)
	}
}

func TestRequestSignatureReturnsInvitationLink(t *testing.T) {
	stub := &testhelpers.ResourceAPIStub{}
	u, _ := newContractForTest(stub, ContractOptions{})

	order := model.Order{ID: "o-1", Contract: &model.Contract{ID: "ctr-9"}}
	link, err := u.RequestSignature(context.Background(), order)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if link != "https://sign.example.com/invite/ctr-9" {
		t.Fatalf("unexpected link %q", link)
	}
}

func TestConfirmSignatureConfirmsOnceStudentSigned(t *testing.T) {
	now := time.Now()
	stub := &testhelpers.ResourceAPIStub{}
	stub.ContractFn = func(ctx context.Context, id string) (*model.Contract, error) {
		contract := &model.Contract{ID: id}
		if stub.ContractCalls.Load() >= 3 {
			contract.StudentSignedOn = &now
		}
		return contract, nil
	}
	u, _ := newContractForTest(stub, ContractOptions{
		SignaturePollInterval: time.Millisecond,
		SignaturePollLimit:    10,
	})

	outcome, err := u.ConfirmSignature(context.Background(), "ctr-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != polling.OutcomeConfirmed {
		t.Fatalf("expected Confirmed, got %s", outcome)
	}
	if calls := stub.ContractCalls.Load(); calls != 3 {
		t.Errorf("expected 3 contract fetches, got %d", calls)
	}
}

func TestConfirmSignatureTimesOutWithoutError(t *testing.T) {
	stub := &testhelpers.ResourceAPIStub{}
	u, _ := newContractForTest(stub, ContractOptions{
		SignaturePollInterval: time.Millisecond,
		SignaturePollLimit:    4,
	})

	outcome, err := u.ConfirmSignature(context.Background(), "ctr-1")
	if err != nil {
		t.Fatalf("timing out must not report an error, got %v", err)
	}
	if outcome != polling.OutcomeTimedOut {
		t.Fatalf("expected TimedOut, got %s", outcome)
	}
	if calls := stub.ContractCalls.Load(); calls != 4 {
		t.Errorf("expected the attempt budget to be consumed, got %d calls", calls)
	}
}

func TestConfirmSignatureStopsOnAuthorizationError(t *testing.T) {
	stub := &testhelpers.ResourceAPIStub{}
	stub.ContractFn = func(ctx context.Context, id string) (*model.Contract, error) {
		return nil, domainErrors.AuthorizationError{Status: 401}
	}
	u, _ := newContractForTest(stub, ContractOptions{
		SignaturePollInterval: time.Millisecond,
		SignaturePollLimit:    10,
	})

	outcome, err := u.ConfirmSignature(context.Background(), "ctr-1")
	if outcome != polling.OutcomeStopped {
		t.Fatalf("expected Stopped, got %s", outcome)
	}
	if !domainErrors.IsAuthorization(err) {
		t.Fatalf("expected the authorization error as cause, got %v", err)
	}
	if calls := stub.ContractCalls.Load(); calls != 1 {
		t.Errorf("authorization failure must stop after the first check, got %d calls", calls)
	}
}

func TestRequestArchiveReusesValidWindow(t *testing.T) {
	created := 0
	stub := &testhelpers.ResourceAPIStub{
		CreateContractsArchiveFn: func(ctx context.Context) (string, error) {
			created++
			return "arch-1", nil
		},
	}
	u, _ := newContractForTest(stub, ContractOptions{ArchiveValidity: time.Hour})

	first, err := u.RequestArchive(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := u.RequestArchive(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first != "arch-1" || second != "arch-1" {
		t.Fatalf("expected the same archive id, got %q and %q", first, second)
	}
	if created != 1 {
		t.Fatalf("a valid window must be reused, got %d archive creations", created)
	}
}

func TestRequestArchiveExpiredWindowRequestsNewArchive(t *testing.T) {
	created := 0
	stub := &testhelpers.ResourceAPIStub{
		CreateContractsArchiveFn: func(ctx context.Context) (string, error) {
			created++
			return "arch-" + string(rune('0'+created)), nil
		},
	}
	u, store := newContractForTest(stub, ContractOptions{ArchiveValidity: time.Hour})

	if _, err := u.RequestArchive(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	store.Delete("commerce.contracts-archive")

	second, err := u.RequestArchive(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second != "arch-2" {
		t.Fatalf("expected a fresh archive after the window vanished, got %q", second)
	}
	if created != 2 {
		t.Fatalf("expected 2 archive creations, got %d", created)
	}
}

func TestConfirmArchiveDeletesWindowOnSuccess(t *testing.T) {
	stub := &testhelpers.ResourceAPIStub{}
	u, store := newContractForTest(stub, ContractOptions{
		ArchivePollInterval: time.Millisecond,
		ArchiveValidity:     time.Hour,
	})

	archiveID, err := u.RequestArchive(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	outcome, err := u.ConfirmArchive(context.Background(), archiveID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != polling.OutcomeConfirmed {
		t.Fatalf("expected Confirmed, got %s", outcome)
	}
	if _, ok := store.Get("commerce.contracts-archive"); ok {
		t.Errorf("confirmed archive must clear the persisted window")
	}
}

func TestConfirmArchiveNotReadyTimesOut(t *testing.T) {
	stub := &testhelpers.ResourceAPIStub{
		ContractsArchiveExistsFn: func(ctx context.Context, id string) (bool, error) {
			return false, nil
		},
	}
	u, store := newContractForTest(stub, ContractOptions{
		ArchivePollInterval: time.Millisecond,
		ArchiveValidity:     time.Hour,
	})

	archiveID, err := u.RequestArchive(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Shrink the persisted window so the poll elapses quickly.
	w := archiveWindow{ArchiveID: archiveID, ValidUntil: time.Now().Add(20 * time.Millisecond)}
	raw, _ := json.Marshal(w)
	store.Set("commerce.contracts-archive", raw, w.ValidUntil)

	outcome, err := u.ConfirmArchive(context.Background(), archiveID)
	if err != nil {
		t.Fatalf("elapsing the window must not report an error, got %v", err)
	}
	if outcome != polling.OutcomeTimedOut {
		t.Fatalf("expected TimedOut, got %s", outcome)
	}
}
