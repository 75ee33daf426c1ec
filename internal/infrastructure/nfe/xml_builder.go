// Geração do XML da nota no leiaute NF-e 4.00 para exportação de auditoria.
// O gateway emite a nota oficial; este XML é a cópia local assinável,
// independente da disponibilidade do gateway.

package nfe

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"

	"github.com/locagora/fiscal-api/internal/domain/entity"
	pkgnfe "github.com/locagora/fiscal-api/pkg/nfe"
)

const nfeNamespace = "http://www.portalfiscal.inf.br/nfe"

// XMLBuilder gera o XML da nota a partir do documento persistido.
type XMLBuilder struct{}

// NewXMLBuilder cria o gerador.
func NewXMLBuilder() *XMLBuilder {
	return &XMLBuilder{}
}

// Render monta o XML. Exige documento com chave de acesso (autorizado ou
// cancelado); o Id do infNFe é "NFe" + chave, que a assinatura referencia.
func (b *XMLBuilder) Render(doc *entity.FiscalDocument, items []*entity.FiscalDocumentItem, profile *entity.TenantFiscalProfile) ([]byte, error) {
	if doc.AccessKey == "" {
		return nil, fmt.Errorf("nfe: documento sem chave de acesso")
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("nfe: documento sem itens")
	}

	xml := etree.NewDocument()
	xml.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	nfe := xml.CreateElement("NFe")
	nfe.CreateAttr("xmlns", nfeNamespace)

	inf := nfe.CreateElement("infNFe")
	inf.CreateAttr("Id", "NFe"+doc.AccessKey)
	inf.CreateAttr("versao", "4.00")

	b.buildIde(inf, doc)
	b.buildEmit(inf, profile)
	b.buildDest(inf, doc)
	for _, item := range items {
		b.buildDet(inf, item)
	}
	b.buildTotal(inf, doc)
	b.buildInfAdic(inf, doc)

	xml.Indent(2)
	return xml.WriteToBytes()
}

func (b *XMLBuilder) buildIde(inf *etree.Element, doc *entity.FiscalDocument) {
	ide := inf.CreateElement("ide")
	setText(ide, "natOp", doc.OperationNature)
	setText(ide, "serie", doc.Series)
	setText(ide, "nNF", doc.Number)
	direction := pkgnfe.DocumentDirectionOutbound
	if doc.MovementType == entity.MovementReturn {
		direction = pkgnfe.DocumentDirectionInbound
	}
	setText(ide, "tpNF", direction)
	if doc.AuthorizedAt != nil {
		setText(ide, "dhEmi", doc.AuthorizedAt.Format("2006-01-02T15:04:05-07:00"))
	}
	// Retorno referencia a remessa pela chave de acesso.
	if doc.ReferencedAccessKey != "" {
		nfRef := ide.CreateElement("NFref")
		setText(nfRef, "refNFe", doc.ReferencedAccessKey)
	}
}

func (b *XMLBuilder) buildEmit(inf *etree.Element, profile *entity.TenantFiscalProfile) {
	emit := inf.CreateElement("emit")
	setText(emit, "CNPJ", pkgnfe.NormalizeTaxID(profile.TaxID))
	setText(emit, "xNome", profile.CorporateName)
	b.buildAddress(emit, "enderEmit", profile.Address)
	setText(emit, "IE", profile.StateRegistration)
}

func (b *XMLBuilder) buildDest(inf *etree.Element, doc *entity.FiscalDocument) {
	dest := inf.CreateElement("dest")
	taxID := pkgnfe.NormalizeTaxID(doc.CounterpartyTaxID)
	if len(taxID) == 11 {
		setText(dest, "CPF", taxID)
	} else {
		setText(dest, "CNPJ", taxID)
	}
	setText(dest, "xNome", doc.CounterpartyName)
	b.buildAddress(dest, "enderDest", doc.CounterpartyAddress)
	if doc.CounterpartyStateReg != "" {
		setText(dest, "IE", doc.CounterpartyStateReg)
	}
}

func (b *XMLBuilder) buildAddress(parent *etree.Element, tag string, addr entity.Address) {
	ender := parent.CreateElement(tag)
	setText(ender, "xLgr", addr.Street)
	setText(ender, "nro", addr.Number)
	setText(ender, "xBairro", addr.District)
	if addr.CityCode != "" {
		setText(ender, "cMun", addr.CityCode)
	}
	setText(ender, "xMun", addr.City)
	setText(ender, "UF", strings.ToUpper(addr.State))
	setText(ender, "CEP", pkgnfe.NormalizeTaxID(addr.ZipCode))
}

func (b *XMLBuilder) buildDet(inf *etree.Element, item *entity.FiscalDocumentItem) {
	det := inf.CreateElement("det")
	det.CreateAttr("nItem", fmt.Sprintf("%d", item.Sequence))

	prod := det.CreateElement("prod")
	setText(prod, "cProd", item.ProductCode)
	setText(prod, "xProd", item.Description)
	setText(prod, "NCM", pkgnfe.NormalizeTaxID(item.NCM))
	setText(prod, "CFOP", item.CFOP)
	setText(prod, "qCom", item.Quantity.StringFixed(4))
	setText(prod, "vUnCom", item.UnitValue.StringFixed(2))
	setText(prod, "vProd", item.TotalValue.StringFixed(2))

	// Movimentação de bens do ativo: ICMS não tributado (grupo ICMS40).
	imposto := det.CreateElement("imposto")
	icms := imposto.CreateElement("ICMS")
	icms40 := icms.CreateElement("ICMS40")
	setText(icms40, "orig", "0")
	setText(icms40, "CST", item.TaxSituation)
}

func (b *XMLBuilder) buildTotal(inf *etree.Element, doc *entity.FiscalDocument) {
	total := inf.CreateElement("total")
	icmsTot := total.CreateElement("ICMSTot")
	setText(icmsTot, "vBC", "0.00")
	setText(icmsTot, "vICMS", "0.00")
	setText(icmsTot, "vProd", doc.GrossValue.StringFixed(2))
	setText(icmsTot, "vNF", doc.TotalValue.StringFixed(2))
}

func (b *XMLBuilder) buildInfAdic(inf *etree.Element, doc *entity.FiscalDocument) {
	infAdic := inf.CreateElement("infAdic")
	info := "Locação " + doc.BookingID + ". Movimentação de bens sem incidência de ICMS."
	if doc.ReferencedAccessKey != "" {
		info += " Retorno referente à NF-e de remessa, chave de acesso " + doc.ReferencedAccessKey + "."
	}
	setText(infAdic, "infCpl", info)
}

func setText(parent *etree.Element, tag, value string) {
	parent.CreateElement(tag).SetText(value)
}
