// Decodificação do container PKCS#12 (certificado A1) em memória.

package cert

import (
	"crypto/rsa"
	"crypto/x509"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/pkcs12"

	"github.com/locagora/fiscal-api/internal/domain"
	pkgnfe "github.com/locagora/fiscal-api/pkg/nfe"
)

// Certificate é o resultado da decodificação de um container A1.
type Certificate struct {
	Leaf      *x509.Certificate
	Key       *rsa.PrivateKey
	NotBefore time.Time
	NotAfter  time.Time
	// TaxID e LegalName extraídos do CN quando seguem o padrão ICP-Brasil
	// "RAZAO SOCIAL:CNPJ". Melhor esforço: ficam vazios se o CN fugir do padrão.
	TaxID     string
	LegalName string
}

// ParseContainer decodifica o .pfx/.p12 com a senha informada. Os erros de
// decodificação são classificados em CertificateError para a camada de
// aplicação distinguir senha errada de container corrompido. A senha nunca
// aparece em mensagens de erro.
func ParseContainer(container []byte, passphrase string) (*Certificate, error) {
	priv, leaf, err := pkcs12.Decode(container, passphrase)
	if err != nil {
		if errors.Is(err, pkcs12.ErrIncorrectPassword) {
			return nil, domain.NewCertificateError(domain.CertReasonInvalidPassphrase, 0, err)
		}
		return nil, domain.NewCertificateError(domain.CertReasonMalformed, 0, err)
	}

	key, ok := priv.(*rsa.PrivateKey)
	if !ok {
		return nil, domain.NewCertificateError(domain.CertReasonMalformed, 0,
			errors.New("chave privada não é RSA"))
	}

	cert := &Certificate{
		Leaf:      leaf,
		Key:       key,
		NotBefore: leaf.NotBefore,
		NotAfter:  leaf.NotAfter,
	}
	cert.LegalName, cert.TaxID = splitSubjectCN(leaf.Subject.CommonName)
	return cert, nil
}

// splitSubjectCN separa "RAZAO SOCIAL:12345678000195" em nome e CNPJ.
func splitSubjectCN(cn string) (name, taxID string) {
	idx := strings.LastIndex(cn, ":")
	if idx < 0 {
		return strings.TrimSpace(cn), ""
	}
	candidate := pkgnfe.NormalizeTaxID(cn[idx+1:])
	if len(candidate) != 14 && len(candidate) != 11 {
		return strings.TrimSpace(cn), ""
	}
	return strings.TrimSpace(cn[:idx]), candidate
}
