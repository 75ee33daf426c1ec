// Assinatura digital enveloped (XMLDSig) da NF-e: digest C14N do documento,
// SignedInfo assinado com RSA-SHA256 e ds:Signature anexado à raiz.

package nfe

import (
	"bytes"
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"github.com/ucarion/c14n"

	"github.com/locagora/fiscal-api/internal/infrastructure/cert"
)

const (
	namespaceDS        = "http://www.w3.org/2000/09/xmldsig#"
	algC14N            = "http://www.w3.org/TR/2001/REC-xml-c14n-20010315"
	algRSASHA256       = "http://www.w3.org/2001/04/xmldsig-more#rsa-sha256"
	algSHA256          = "http://www.w3.org/2001/04/xmlenc#sha256"
	transformEnveloped = "http://www.w3.org/2000/09/xmldsig#enveloped-signature"
)

// Signer aplica a assinatura XMLDSig com o certificado A1 do tenant.
type Signer struct{}

// NewSigner cria o serviço de assinatura.
func NewSigner() *Signer {
	return &Signer{}
}

// Sign assina o XML da nota. A referência aponta para o Id do infNFe
// (atributo gerado pelo XMLBuilder); o nó ds:Signature entra como último
// filho da raiz NFe.
func (s *Signer) Sign(xmlData []byte, certificate *cert.Certificate) ([]byte, error) {
	if len(xmlData) == 0 {
		return nil, fmt.Errorf("nfe: XML vazio")
	}
	if certificate == nil || certificate.Key == nil {
		return nil, fmt.Errorf("nfe: certificado sem chave privada")
	}

	referenceID, err := extractInfNFeID(xmlData)
	if err != nil {
		return nil, err
	}

	// 1) Digest do documento canônico.
	canonicalDoc, err := canonicalizeXML(xmlData)
	if err != nil {
		canonicalDoc = xmlData
	}
	docDigest := sha256.Sum256(canonicalDoc)
	docDigestB64 := base64.StdEncoding.EncodeToString(docDigest[:])

	// 2) SignedInfo canônico assinado com a chave do certificado.
	signedInfoXML := buildSignedInfo(referenceID, docDigestB64)
	canonicalSignedInfo, err := canonicalizeXML([]byte(signedInfoXML))
	if err != nil {
		canonicalSignedInfo = []byte(signedInfoXML)
	}
	signHash := sha256.Sum256(canonicalSignedInfo)
	signatureValue, err := rsa.SignPKCS1v15(nil, certificate.Key, crypto.SHA256, signHash[:])
	if err != nil {
		return nil, fmt.Errorf("nfe: assinar SignedInfo: %w", err)
	}

	// 3) Nó completo com o certificado embutido.
	signatureXML := buildSignature(signedInfoXML,
		base64.StdEncoding.EncodeToString(signatureValue),
		base64.StdEncoding.EncodeToString(certificate.Leaf.Raw))

	return injectSignature(xmlData, signatureXML)
}

func canonicalizeXML(data []byte) ([]byte, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Entity = map[string]string{}
	return c14n.Canonicalize(dec)
}

func extractInfNFeID(xmlData []byte) (string, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(xmlData); err != nil {
		return "", fmt.Errorf("nfe: parsear XML: %w", err)
	}
	inf := doc.FindElement("//infNFe")
	if inf == nil {
		return "", fmt.Errorf("nfe: infNFe não encontrado")
	}
	id := inf.SelectAttrValue("Id", "")
	if id == "" {
		return "", fmt.Errorf("nfe: infNFe sem atributo Id")
	}
	return id, nil
}

func buildSignedInfo(referenceID, docDigestB64 string) string {
	var sb strings.Builder
	sb.WriteString(`<ds:SignedInfo xmlns:ds="` + namespaceDS + `">`)
	sb.WriteString(`<ds:CanonicalizationMethod Algorithm="` + algC14N + `"/>`)
	sb.WriteString(`<ds:SignatureMethod Algorithm="` + algRSASHA256 + `"/>`)
	sb.WriteString(`<ds:Reference URI="#` + referenceID + `">`)
	sb.WriteString(`<ds:Transforms><ds:Transform Algorithm="` + transformEnveloped + `"/>`)
	sb.WriteString(`<ds:Transform Algorithm="` + algC14N + `"/></ds:Transforms>`)
	sb.WriteString(`<ds:DigestMethod Algorithm="` + algSHA256 + `"/>`)
	sb.WriteString(`<ds:DigestValue>` + docDigestB64 + `</ds:DigestValue>`)
	sb.WriteString(`</ds:Reference>`)
	sb.WriteString(`</ds:SignedInfo>`)
	return sb.String()
}

func buildSignature(signedInfoXML, signatureValueB64, certB64 string) string {
	var sb strings.Builder
	sb.WriteString(`<ds:Signature xmlns:ds="` + namespaceDS + `">`)
	sb.WriteString(signedInfoXML)
	sb.WriteString(`<ds:SignatureValue>` + signatureValueB64 + `</ds:SignatureValue>`)
	sb.WriteString(`<ds:KeyInfo><ds:X509Data><ds:X509Certificate>` + certB64 + `</ds:X509Certificate></ds:X509Data></ds:KeyInfo>`)
	sb.WriteString(`</ds:Signature>`)
	return sb.String()
}

func injectSignature(xmlData []byte, signatureXML string) ([]byte, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(xmlData); err != nil {
		return nil, fmt.Errorf("nfe: parsear XML: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("nfe: documento sem raiz")
	}

	sigDoc := etree.NewDocument()
	if err := sigDoc.ReadFromString(signatureXML); err != nil {
		return nil, fmt.Errorf("nfe: parsear Signature: %w", err)
	}
	if sigRoot := sigDoc.Root(); sigRoot != nil {
		root.AddChild(sigRoot)
	}

	var out bytes.Buffer
	if _, err := doc.WriteTo(&out); err != nil {
		return nil, fmt.Errorf("nfe: serializar XML assinado: %w", err)
	}
	return out.Bytes(), nil
}
