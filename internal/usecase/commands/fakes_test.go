//go:build unit

package commands_test

import (
	"context"
	"strings"
	"time"

	"redemption-engine/internal/domain/fraud"
	"redemption-engine/internal/domain/redemption"
	"redemption-engine/internal/usecase/commands"

	"github.com/google/uuid"
)

// Hand-written in-memory fakes for the command-side ports. Each fake
// exposes the knobs the scenarios need and nothing more.

type fakeVouchers struct {
	vouchers map[uuid.UUID]*commands.VoucherSnapshot
	err      error
}

func newFakeVouchers(vs ...*commands.VoucherSnapshot) *fakeVouchers {
	f := &fakeVouchers{vouchers: make(map[uuid.UUID]*commands.VoucherSnapshot)}
	for _, v := range vs {
		f.vouchers[v.ID] = v
	}
	return f
}

func (f *fakeVouchers) VoucherForRedemption(_ context.Context, voucherID uuid.UUID) (*commands.VoucherSnapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.vouchers[voucherID], nil
}

type fakeRedemptionReads struct {
	now                  time.Time
	existing             *commands.RedemptionSnapshot
	voucherCount         int64
	customerVoucherCount int64
	customerHourCount    int64
	customerDayCount     int64
	providerHourCount    int64
	lastLocated          *commands.RedemptionSnapshot
	err                  error
}

func (f *fakeRedemptionReads) FindByCredential(_ context.Context, _, _ uuid.UUID, _ string) (*commands.RedemptionSnapshot, error) {
	return f.existing, f.err
}

func (f *fakeRedemptionReads) CountForVoucher(_ context.Context, _ uuid.UUID) (int64, error) {
	return f.voucherCount, f.err
}

func (f *fakeRedemptionReads) CountForCustomer(_ context.Context, _, _ uuid.UUID) (int64, error) {
	return f.customerVoucherCount, f.err
}

func (f *fakeRedemptionReads) CountCustomerSince(_ context.Context, _ uuid.UUID, since time.Time) (int64, error) {
	// Distinguish the 1h window from the 24h window by the cutoff.
	if f.now.Sub(since) < 2*time.Hour {
		return f.customerHourCount, f.err
	}
	return f.customerDayCount, f.err
}

func (f *fakeRedemptionReads) CountProviderSince(_ context.Context, _ uuid.UUID, _ time.Time) (int64, error) {
	return f.providerHourCount, f.err
}

func (f *fakeRedemptionReads) LastLocatedForCustomer(_ context.Context, _ uuid.UUID) (*commands.RedemptionSnapshot, error) {
	return f.lastLocated, f.err
}

type fakeRedemptionWrites struct {
	created   []*redemption.Redemption
	createErr error
	synced    []uuid.UUID
}

func (f *fakeRedemptionWrites) Create(_ context.Context, r *redemption.Redemption) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, r)
	return nil
}

func (f *fakeRedemptionWrites) MarkSynced(_ context.Context, id uuid.UUID, _ time.Time) error {
	f.synced = append(f.synced, id)
	return nil
}

type fakeShortCodes struct {
	codes   map[string]*commands.ShortCodeSnapshot
	static  map[uuid.UUID]*commands.ShortCodeSnapshot
	created []commands.ShortCodeSnapshot
}

func newFakeShortCodes(scs ...*commands.ShortCodeSnapshot) *fakeShortCodes {
	f := &fakeShortCodes{
		codes:  make(map[string]*commands.ShortCodeSnapshot),
		static: make(map[uuid.UUID]*commands.ShortCodeSnapshot),
	}
	for _, sc := range scs {
		f.codes[sc.Code] = sc
		if sc.Type == redemption.CodeTypeStatic {
			f.static[sc.VoucherID] = sc
		}
	}
	return f
}

func (f *fakeShortCodes) ByCode(_ context.Context, code string) (*commands.ShortCodeSnapshot, error) {
	return f.codes[strings.ToUpper(code)], nil
}

func (f *fakeShortCodes) StaticForVoucher(_ context.Context, voucherID uuid.UUID) (*commands.ShortCodeSnapshot, error) {
	return f.static[voucherID], nil
}

func (f *fakeShortCodes) Create(_ context.Context, sc commands.ShortCodeSnapshot, _ time.Time) error {
	f.created = append(f.created, sc)
	f.codes[sc.Code] = &sc
	if sc.Type == redemption.CodeTypeStatic {
		f.static[sc.VoucherID] = &sc
	}
	return nil
}

// fakeReplay mirrors the SetNX semantics of the Redis store.
type fakeReplay struct {
	consumed   map[string]bool
	rejections map[uuid.UUID]int
	err        error
}

func newFakeReplay() *fakeReplay {
	return &fakeReplay{
		consumed:   make(map[string]bool),
		rejections: make(map[uuid.UUID]int),
	}
}

func (f *fakeReplay) ConsumeIfAbsent(_ context.Context, key string, _ time.Duration) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if f.consumed[key] {
		return false, nil
	}
	f.consumed[key] = true
	return true, nil
}

func (f *fakeReplay) NoteRejection(_ context.Context, customerID uuid.UUID) error {
	f.rejections[customerID]++
	return nil
}

func (f *fakeReplay) Rejections(_ context.Context, customerID uuid.UUID) (int, error) {
	return f.rejections[customerID], nil
}

// fakeCaseRepo covers both the reader and writer ports.
type fakeCaseRepo struct {
	seq       int64
	cases     map[uuid.UUID]*fraud.Case
	createErr error
	updated   []*fraud.Case
}

func newFakeCaseRepo(cs ...*fraud.Case) *fakeCaseRepo {
	f := &fakeCaseRepo{cases: make(map[uuid.UUID]*fraud.Case)}
	for _, c := range cs {
		f.cases[c.ID()] = c
	}
	return f
}

func (f *fakeCaseRepo) NextCaseNumber(_ context.Context, _ int) (int64, error) {
	f.seq++
	return f.seq, nil
}

func (f *fakeCaseRepo) Create(_ context.Context, c *fraud.Case) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.cases[c.ID()] = c
	return nil
}

func (f *fakeCaseRepo) Update(_ context.Context, c *fraud.Case) error {
	f.cases[c.ID()] = c
	f.updated = append(f.updated, c)
	return nil
}

func (f *fakeCaseRepo) ByID(_ context.Context, id uuid.UUID) (*fraud.Case, error) {
	return f.cases[id], nil
}

// fakeKnownBad covers both the reader the scoring engine uses and the
// writer the review remediation path uses.
type fakeKnownBad struct {
	bad     map[uuid.UUID]bool
	reasons map[uuid.UUID]string
}

func newFakeKnownBad(ids ...uuid.UUID) *fakeKnownBad {
	f := &fakeKnownBad{bad: make(map[uuid.UUID]bool), reasons: make(map[uuid.UUID]string)}
	for _, id := range ids {
		f.bad[id] = true
	}
	return f
}

func (f *fakeKnownBad) IsKnownBad(_ context.Context, customerID uuid.UUID) (bool, error) {
	return f.bad[customerID], nil
}

func (f *fakeKnownBad) Block(_ context.Context, customerID uuid.UUID, reason string) error {
	if !f.bad[customerID] {
		f.bad[customerID] = true
		f.reasons[customerID] = reason
	}
	return nil
}

func (f *fakeKnownBad) Unblock(_ context.Context, customerID uuid.UUID) error {
	delete(f.bad, customerID)
	delete(f.reasons, customerID)
	return nil
}
