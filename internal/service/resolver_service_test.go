package service_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"secure-doc-gateway/internal/model"
	"secure-doc-gateway/internal/security"
	"secure-doc-gateway/internal/service"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func newTestResolver() (*service.ResolverService, *MockShareRepository, *MockDocumentRepository, *MockQuarantineRepository, *security.CookieSigner) {
	shares := new(MockShareRepository)
	docs := new(MockDocumentRepository)
	overrides := new(MockQuarantineRepository)
	signer := security.NewCookieSigner("cookie-secret", time.Hour)
	return service.NewResolverService(shares, docs, overrides, signer, &fakeTx{}), shares, docs, overrides, signer
}

func activeDocument() *model.Document {
	return &model.Document{
		ID:               "doc1",
		ModerationStatus: model.ModerationActive,
		ScanStatus:       model.ScanClean,
		RiskLevel:        model.RiskLow,
	}
}

func TestResolveToken_Precedence(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	tests := []struct {
		name        string
		share       *model.Share
		document    *model.Document
		hasOverride bool
		country     string
		want        model.Verdict
	}{
		{
			name:  "revoked wins over expired and maxed",
			share: &model.Share{RevokedAt: &past, ExpiresAt: &past, MaxViews: ptr(1), ViewsCount: 1},
			want:  model.VerdictRevoked,
		},
		{
			name:  "expired wins over maxed",
			share: &model.Share{ExpiresAt: &past, MaxViews: ptr(1), ViewsCount: 1},
			want:  model.VerdictExpired,
		},
		{
			name:  "maxed",
			share: &model.Share{ExpiresAt: &future, MaxViews: ptr(2), ViewsCount: 2},
			want:  model.VerdictMaxed,
		},
		{
			name:     "disabled document",
			share:    &model.Share{},
			document: &model.Document{ID: "doc1", ModerationStatus: model.ModerationDisabled, ScanStatus: model.ScanError},
			want:     model.VerdictModerationBlocked,
		},
		{
			name:     "quarantined without override",
			share:    &model.Share{},
			document: &model.Document{ID: "doc1", ModerationStatus: model.ModerationQuarantined, ScanStatus: model.ScanClean},
			want:     model.VerdictModerationBlocked,
		},
		{
			name:        "quarantined with override",
			share:       &model.Share{},
			document:    &model.Document{ID: "doc1", ModerationStatus: model.ModerationQuarantined, ScanStatus: model.ScanClean},
			hasOverride: true,
			want:        model.VerdictOK,
		},
		{
			name:     "scan error",
			share:    &model.Share{PasswordHash: ptr("hash")},
			document: &model.Document{ID: "doc1", ModerationStatus: model.ModerationActive, ScanStatus: model.ScanError},
			want:     model.VerdictScanBlocked,
		},
		{
			name:     "risky high",
			share:    &model.Share{},
			document: &model.Document{ID: "doc1", ModerationStatus: model.ModerationActive, ScanStatus: model.ScanRisky, RiskLevel: model.RiskHigh},
			want:     model.VerdictScanBlocked,
		},
		{
			name:     "risky medium is served",
			share:    &model.Share{},
			document: &model.Document{ID: "doc1", ModerationStatus: model.ModerationActive, ScanStatus: model.ScanRisky, RiskLevel: model.RiskMedium},
			want:     model.VerdictOK,
		},
		{
			name:    "geo block before password",
			share:   &model.Share{BlockCountries: []string{"RU"}, PasswordHash: ptr("hash")},
			country: "RU",
			want:    model.VerdictGeoBlocked,
		},
		{
			name:  "allow list with unknown country",
			share: &model.Share{AllowCountries: []string{"DE"}},
			want:  model.VerdictGeoBlocked,
		},
		{
			name:  "password required",
			share: &model.Share{PasswordHash: ptr("hash"), RecipientEmail: ptr("a@b.c")},
			want:  model.VerdictPasswordRequired,
		},
		{
			name:  "email required",
			share: &model.Share{RecipientEmail: ptr("a@b.c")},
			want:  model.VerdictEmailRequired,
		},
		{
			name:    "ok",
			share:   &model.Share{MaxViews: ptr(3), ViewsCount: 2, ExpiresAt: &future, AllowCountries: []string{"DE"}},
			country: "DE",
			want:    model.VerdictOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver, shares, docs, overrides, _ := newTestResolver()
			ctx := context.Background()

			tt.share.ID = "share1"
			tt.share.Token = "tok"
			tt.share.DocumentID = "doc1"
			document := tt.document
			if document == nil {
				document = activeDocument()
			}

			shares.On("GetByToken", ctx, mock.Anything, "tok").Return(tt.share, nil)
			docs.On("GetByID", ctx, mock.Anything, "doc1").Return(document, nil)
			overrides.On("HasActive", ctx, mock.Anything, "doc1").Return(tt.hasOverride, nil)

			resolution := resolver.ResolveToken(ctx, "tok", model.Credentials{Country: tt.country})
			assert.Equal(t, tt.want, resolution.Verdict)
			if tt.want == model.VerdictOK {
				assert.NotNil(t, resolution.Document)
				assert.NotNil(t, resolution.Share)
			}
		})
	}
}

func TestResolveToken_NotFoundAndStoreErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("missing share", func(t *testing.T) {
		resolver, shares, _, _, _ := newTestResolver()
		shares.On("GetByToken", ctx, mock.Anything, "tok").Return(nil, model.ErrNotFound)
		assert.Equal(t, model.VerdictNotFound, resolver.ResolveToken(ctx, "tok", model.Credentials{}).Verdict)
	})

	t.Run("share store error fails closed", func(t *testing.T) {
		resolver, shares, _, _, _ := newTestResolver()
		shares.On("GetByToken", ctx, mock.Anything, "tok").Return(nil, errors.New("connection reset"))
		resolution := resolver.ResolveToken(ctx, "tok", model.Credentials{})
		assert.Equal(t, model.VerdictNotFound, resolution.Verdict)
		assert.Nil(t, resolution.Share)
	})

	t.Run("document store error fails closed", func(t *testing.T) {
		resolver, shares, docs, _, _ := newTestResolver()
		shares.On("GetByToken", ctx, mock.Anything, "tok").Return(&model.Share{ID: "s", Token: "tok", DocumentID: "doc1"}, nil)
		docs.On("GetByID", ctx, mock.Anything, "doc1").Return(nil, errors.New("timeout"))
		assert.Equal(t, model.VerdictNotFound, resolver.ResolveToken(ctx, "tok", model.Credentials{}).Verdict)
	})

	t.Run("override store error fails closed", func(t *testing.T) {
		resolver, shares, docs, overrides, _ := newTestResolver()
		shares.On("GetByToken", ctx, mock.Anything, "tok").Return(&model.Share{ID: "s", Token: "tok", DocumentID: "doc1"}, nil)
		docs.On("GetByID", ctx, mock.Anything, "doc1").Return(&model.Document{ID: "doc1", ModerationStatus: model.ModerationQuarantined}, nil)
		overrides.On("HasActive", ctx, mock.Anything, "doc1").Return(false, errors.New("timeout"))
		assert.Equal(t, model.VerdictNotFound, resolver.ResolveToken(ctx, "tok", model.Credentials{}).Verdict)
	})

	t.Run("empty token", func(t *testing.T) {
		resolver, _, _, _, _ := newTestResolver()
		assert.Equal(t, model.VerdictNotFound, resolver.ResolveToken(ctx, "", model.Credentials{}).Verdict)
	})
}

func TestResolve_DeviceTrustCookieUnlocksGate(t *testing.T) {
	resolver, shares, docs, _, signer := newTestResolver()
	ctx := context.Background()

	share := &model.Share{ID: "share1", Token: "tok", DocumentID: "doc1", Alias: ptr("report"), PasswordHash: ptr("hash")}
	shares.On("GetByAlias", ctx, mock.Anything, "report").Return(share, nil)
	docs.On("GetByID", ctx, mock.Anything, "doc1").Return(activeDocument(), nil)

	value, _ := signer.Issue(security.KindDeviceTrust, "tok", time.Now())
	credentials := model.Credentials{Cookies: map[string]string{
		security.CookieName(security.KindDeviceTrust, "tok"): value,
	}}
	assert.Equal(t, model.VerdictOK, resolver.ResolveAlias(ctx, "report", credentials).Verdict)

	// cookie другой шары не подходит
	foreign, _ := signer.Issue(security.KindDeviceTrust, "other", time.Now())
	credentials = model.Credentials{Cookies: map[string]string{
		security.CookieName(security.KindDeviceTrust, "tok"): foreign,
	}}
	assert.Equal(t, model.VerdictPasswordRequired, resolver.ResolveAlias(ctx, "report", credentials).Verdict)

	// email-proof не заменяет device-trust
	proof, _ := signer.Issue(security.KindEmailProof, "tok", time.Now())
	credentials = model.Credentials{Cookies: map[string]string{
		security.CookieName(security.KindEmailProof, "tok"): proof,
	}}
	assert.Equal(t, model.VerdictPasswordRequired, resolver.ResolveAlias(ctx, "report", credentials).Verdict)
}

// memoryShareRepository : условный инкремент под мьютексом, как один UPDATE в БД
type memoryShareRepository struct {
	mu    sync.Mutex
	share model.Share
}

func (r *memoryShareRepository) GetByToken(_ context.Context, _ sqlx.ExtContext, token string) (*model.Share, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if token != r.share.Token {
		return nil, model.ErrNotFound
	}
	copied := r.share
	return &copied, nil
}

func (r *memoryShareRepository) GetByAlias(context.Context, sqlx.ExtContext, string) (*model.Share, error) {
	return nil, model.ErrNotFound
}

func (r *memoryShareRepository) Revoke(context.Context, sqlx.ExtContext, string) (*model.Share, error) {
	return nil, model.ErrNotFound
}

func (r *memoryShareRepository) ConsumeView(_ context.Context, _ sqlx.ExtContext, _ string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.share.Revoked() || r.share.Expired(time.Now()) || r.share.Maxed() {
		return 0, model.ErrMaxed
	}
	r.share.ViewsCount++
	return r.share.ViewsCount, nil
}

func TestConsumeView_ConcurrentNeverExceedsMaxViews(t *testing.T) {
	const maxViews, extra = 5, 7
	repo := &memoryShareRepository{share: model.Share{ID: "share1", MaxViews: ptr(maxViews)}}
	resolver := service.NewResolverService(repo, nil, nil, nil, &fakeTx{})

	var ok, maxed atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < maxViews+extra; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := resolver.ConsumeView(context.Background(), &model.Share{ID: "share1"})
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, model.ErrMaxed):
				maxed.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(maxViews), ok.Load())
	assert.Equal(t, int32(extra), maxed.Load())
}

func TestConsumeView_StoreError(t *testing.T) {
	resolver, shares, _, _, _ := newTestResolver()
	ctx := context.Background()
	share := &model.Share{ID: "share1"}

	shares.On("ConsumeView", ctx, mock.Anything, "share1").Return(0, errors.New("deadlock")).Once()
	assert.True(t, errors.Is(resolver.ConsumeView(ctx, share), model.ErrStoreUnavailable))

	shares.On("ConsumeView", ctx, mock.Anything, "share1").Return(4, nil).Once()
	require.NoError(t, resolver.ConsumeView(ctx, share))
	assert.Equal(t, 4, share.ViewsCount)
}

// Сценарий: max_views = 1, два последовательных запроса
func TestResolveThenConsume_SecondFetchIsMaxed(t *testing.T) {
	repo := &memoryShareRepository{share: model.Share{ID: "share1", Token: "tok", DocumentID: "doc1", MaxViews: ptr(1)}}
	docs := new(MockDocumentRepository)
	resolver := service.NewResolverService(repo, docs, nil, security.NewCookieSigner("s", time.Hour), &fakeTx{})
	ctx := context.Background()

	docs.On("GetByID", ctx, mock.Anything, "doc1").Return(activeDocument(), nil)

	first := resolver.ResolveToken(ctx, "tok", model.Credentials{})
	require.Equal(t, model.VerdictOK, first.Verdict)
	require.NoError(t, resolver.ConsumeView(ctx, first.Share))

	second := resolver.ResolveToken(ctx, "tok", model.Credentials{})
	assert.Equal(t, model.VerdictMaxed, second.Verdict)
}
