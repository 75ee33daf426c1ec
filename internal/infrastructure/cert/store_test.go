package cert

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locagora/fiscal-api/internal/domain"
	"github.com/locagora/fiscal-api/internal/domain/entity"
	"github.com/locagora/fiscal-api/internal/domain/repository"
	"github.com/locagora/fiscal-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes
// ──────────────────────────────────────────────────────────────────────────────

type fakeProfileRepo struct {
	profile     *entity.TenantFiscalProfile
	updated     bool
	cleared     int
	expiring    []repository.CertificateExpiry
	updateErr   error
	lastUpdated struct {
		container []byte
		password  string
		expiresAt time.Time
	}
}

func (f *fakeProfileRepo) GetByTenantID(_ context.Context, _ string) (*entity.TenantFiscalProfile, error) {
	if f.profile == nil {
		return nil, domain.ErrNotFound
	}
	return f.profile, nil
}

func (f *fakeProfileRepo) UpdateCertificate(_ context.Context, _ string, container []byte, encryptedPassword string, expiresAt time.Time) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updated = true
	f.lastUpdated.container = container
	f.lastUpdated.password = encryptedPassword
	f.lastUpdated.expiresAt = expiresAt
	return nil
}

func (f *fakeProfileRepo) ClearCertificate(_ context.Context, _ string) error {
	f.cleared++
	return nil
}

func (f *fakeProfileRepo) ListCertificatesExpiringBefore(_ context.Context, _ time.Time) ([]repository.CertificateExpiry, error) {
	return f.expiring, nil
}

type fakeEncryptor struct{}

func (fakeEncryptor) Encrypt(plaintext string) (string, error) { return "enc:" + plaintext, nil }
func (fakeEncryptor) Decrypt(encoded string) (string, error) {
	if len(encoded) < 4 || encoded[:4] != "enc:" {
		return "", errors.New("ciphertext desconhecido")
	}
	return encoded[4:], nil
}

func newTestStore(repo *fakeProfileRepo, now time.Time) *Store {
	s := NewStore(repo, fakeEncryptor{}, logger.New(logger.Config{Env: "production", Level: "error"}))
	s.now = func() time.Time { return now }
	return s
}

// ──────────────────────────────────────────────────────────────────────────────
// Avaliação de validade (pura)
// ──────────────────────────────────────────────────────────────────────────────

func TestEvaluateExpiry_VencidoOntem(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	notAfter := now.Add(-24 * time.Hour)

	_, err := EvaluateExpiry(notAfter, now)
	require.Error(t, err)

	var certErr *domain.CertificateError
	require.ErrorAs(t, err, &certErr)
	assert.Equal(t, domain.CertReasonExpired, certErr.Reason)
	assert.Equal(t, 1, certErr.DaysOverdue)
	assert.Contains(t, err.Error(), "vencido há 1 dia(s)")
}

func TestEvaluateExpiry_VencidoHaPoucasHoras(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	_, err := EvaluateExpiry(now.Add(-1*time.Hour), now)
	var certErr *domain.CertificateError
	require.ErrorAs(t, err, &certErr)
	assert.Equal(t, 1, certErr.DaysOverdue, "vencimento parcial conta como um dia")
}

func TestEvaluateExpiry_AindaValido(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	days, err := EvaluateExpiry(now.Add(30*24*time.Hour), now)
	require.NoError(t, err)
	assert.Equal(t, 30, days)
}

// ──────────────────────────────────────────────────────────────────────────────
// Decodificação do container
// ──────────────────────────────────────────────────────────────────────────────

func TestParseContainer_ContainerInvalido(t *testing.T) {
	_, err := ParseContainer([]byte("isto não é um PKCS#12"), "qualquer")
	require.Error(t, err)

	var certErr *domain.CertificateError
	require.ErrorAs(t, err, &certErr)
	assert.Equal(t, domain.CertReasonMalformed, certErr.Reason)
	assert.NotContains(t, err.Error(), "qualquer", "a senha nunca aparece na mensagem de erro")
}

func TestSplitSubjectCN(t *testing.T) {
	name, taxID := splitSubjectCN("LOCAGORA EQUIPAMENTOS LTDA:12345678000195")
	assert.Equal(t, "LOCAGORA EQUIPAMENTOS LTDA", name)
	assert.Equal(t, "12345678000195", taxID)

	name, taxID = splitSubjectCN("Certificado sem padrão ICP")
	assert.Equal(t, "Certificado sem padrão ICP", name)
	assert.Empty(t, taxID)
}

// ──────────────────────────────────────────────────────────────────────────────
// Guarda
// ──────────────────────────────────────────────────────────────────────────────

func TestSave_ContainerInvalidoNaoPersiste(t *testing.T) {
	repo := &fakeProfileRepo{}
	store := newTestStore(repo, time.Now())

	_, err := store.Save(context.Background(), "tenant-1", []byte("lixo"), "senha")
	require.Error(t, err)
	assert.False(t, repo.updated, "nada deve ser persistido quando a validação falha")
}

func TestStatus_SemCertificado(t *testing.T) {
	repo := &fakeProfileRepo{profile: &entity.TenantFiscalProfile{TenantID: "tenant-1"}}
	store := newTestStore(repo, time.Now())

	st, err := store.Status(context.Background(), "tenant-1")
	require.NoError(t, err)
	assert.False(t, st.HasCertificate)
	assert.False(t, st.Expired)
}

func TestStatus_CertificadoVencido(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	expiresAt := now.Add(-24 * time.Hour)
	repo := &fakeProfileRepo{profile: &entity.TenantFiscalProfile{
		TenantID:             "tenant-1",
		CertificateFile:      []byte{1, 2, 3},
		CertificatePassword:  "enc:senha",
		CertificateExpiresAt: &expiresAt,
	}}
	store := newTestStore(repo, now)

	st, err := store.Status(context.Background(), "tenant-1")
	require.NoError(t, err)
	assert.True(t, st.HasCertificate)
	assert.True(t, st.Expired)
	assert.Equal(t, -1, st.DaysRemaining)
}

func TestStatus_CertificadoValido(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	expiresAt := now.Add(45 * 24 * time.Hour)
	repo := &fakeProfileRepo{profile: &entity.TenantFiscalProfile{
		TenantID:             "tenant-1",
		CertificateFile:      []byte{1, 2, 3},
		CertificatePassword:  "enc:senha",
		CertificateExpiresAt: &expiresAt,
	}}
	store := newTestStore(repo, now)

	st, err := store.Status(context.Background(), "tenant-1")
	require.NoError(t, err)
	assert.True(t, st.HasCertificate)
	assert.False(t, st.Expired)
	assert.Equal(t, 45, st.DaysRemaining)
}

func TestRetrieveForSigning_SemCertificado(t *testing.T) {
	repo := &fakeProfileRepo{profile: &entity.TenantFiscalProfile{TenantID: "tenant-1"}}
	store := newTestStore(repo, time.Now())

	_, err := store.RetrieveForSigning(context.Background(), "tenant-1")
	assert.ErrorIs(t, err, domain.ErrCertificateMissing)
}

func TestRemove_Idempotente(t *testing.T) {
	repo := &fakeProfileRepo{}
	store := newTestStore(repo, time.Now())

	require.NoError(t, store.Remove(context.Background(), "tenant-1"))
	require.NoError(t, store.Remove(context.Background(), "tenant-1"))
	assert.Equal(t, 2, repo.cleared)
}

func TestListExpiringSoon_CalculaDiasRestantes(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	repo := &fakeProfileRepo{expiring: []repository.CertificateExpiry{
		{TenantID: "tenant-1", ExpiresAt: now.Add(20 * 24 * time.Hour)},
		{TenantID: "tenant-2", ExpiresAt: now.Add(-48 * time.Hour)},
	}}
	store := newTestStore(repo, now)

	rows, err := store.ListExpiringSoon(context.Background(), 30*24*time.Hour)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "tenant-1", rows[0].TenantID)
	assert.Equal(t, 20, rows[0].DaysRemaining)
	assert.Equal(t, -2, rows[1].DaysRemaining, "certificado já vencido sai com dias negativos")
}
