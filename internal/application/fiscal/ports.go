// Portas de saída do orquestrador fiscal. As implementações concretas vivem
// em internal/infrastructure; para testes injetam-se fakes.

package fiscal

import (
	"context"
	"time"

	"github.com/locagora/fiscal-api/internal/domain/entity"
	"github.com/locagora/fiscal-api/internal/domain/nfe"
	"github.com/locagora/fiscal-api/internal/domain/repository"
	"github.com/locagora/fiscal-api/internal/infrastructure/cert"
	"github.com/locagora/fiscal-api/internal/infrastructure/gateway"
)

// Gateway é a porta para o intermediário fiscal. Toda chamada leva a
// credencial e o ambiente do tenant; o Response volta com o status cru.
type Gateway interface {
	Submit(ctx context.Context, auth gateway.Auth, ref string, doc *nfe.Document) (*gateway.Response, error)
	Query(ctx context.Context, auth gateway.Auth, ref string) (*gateway.Response, error)
	Cancel(ctx context.Context, auth gateway.Auth, ref, justification string) (*gateway.Response, error)
	Correct(ctx context.Context, auth gateway.Auth, ref, correction string) (*gateway.Response, error)
}

// TxRunner executa um callback com repositório de documentos atado a uma
// transação. Usado para criar documento + itens atomicamente.
type TxRunner interface {
	RunFiscal(ctx context.Context, fn func(docs repository.FiscalDocumentRepository) error) error
}

// Encryptor decifra segredos em repouso (credencial do gateway).
type Encryptor interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(encoded string) (string, error)
}

// CertificateStore é a porta para a guarda de certificados digitais.
type CertificateStore interface {
	Save(ctx context.Context, tenantID string, container []byte, passphrase string) (*cert.Certificate, error)
	Status(ctx context.Context, tenantID string) (*cert.Status, error)
	Remove(ctx context.Context, tenantID string) error
	RetrieveForSigning(ctx context.Context, tenantID string) (*cert.Certificate, error)
	ListExpiringSoon(ctx context.Context, within time.Duration) ([]repository.CertificateExpiry, error)
}

// XMLRenderer gera o XML da nota no leiaute NF-e a partir do documento
// autorizado e do perfil do emitente.
type XMLRenderer interface {
	Render(doc *entity.FiscalDocument, items []*entity.FiscalDocumentItem, profile *entity.TenantFiscalProfile) ([]byte, error)
}

// XMLSigner aplica a assinatura digital enveloped ao XML.
type XMLSigner interface {
	Sign(xmlData []byte, certificate *cert.Certificate) ([]byte, error)
}

// PDFGenerator gera a representação impressa (DANFE) do documento autorizado.
type PDFGenerator interface {
	Generate(doc *entity.FiscalDocument, items []*entity.FiscalDocumentItem, profile *entity.TenantFiscalProfile) ([]byte, error)
}
