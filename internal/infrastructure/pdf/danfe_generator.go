// Package pdf gera a representação impressa simplificada (DANFE) de uma nota
// de movimentação autorizada.
//
// Layout da página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Razão social + CNPJ  │  Nº/Série + Natureza         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  EMITENTE: endereço completo                                 │
//	│  DESTINATÁRIO: nome + CNPJ/CPF + endereço                    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABELA: Qtd | Descrição | NCM | CFOP | V.Unit | V.Total     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTAIS: Valor dos produtos / Valor total da nota            │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RODAPÉ: Chave de acesso + QR + informações adicionais       │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/locagora/fiscal-api/internal/domain/entity"
)

// ── Paleta ────────────────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 16, Green: 78, Blue: 66}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// DANFEGenerator implementa fiscal.PDFGenerator usando Maroto v2.
type DANFEGenerator struct{}

// NewDANFEGenerator constrói o gerador.
func NewDANFEGenerator() *DANFEGenerator { return &DANFEGenerator{} }

// Generate gera o PDF e devolve seus bytes.
func (g *DANFEGenerator) Generate(
	doc *entity.FiscalDocument,
	items []*entity.FiscalDocumentItem,
	profile *entity.TenantFiscalProfile,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("DANFE Simplificado", true).
		WithAuthor(profile.CorporateName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(doc, profile))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(emitenteRow(profile))
	m.AddRows(destinatarioRow(doc))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, r := range tableItemRows(items) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(doc))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	for _, r := range footerRows(doc) {
		m.AddRows(r)
	}

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: gerar documento: %w", err)
	}
	return out.GetBytes(), nil
}

// ── Seções ────────────────────────────────────────────────────────────────────

func headerRow(doc *entity.FiscalDocument, profile *entity.TenantFiscalProfile) core.Row {
	title := "NF-e DE REMESSA PARA LOCAÇÃO"
	if doc.MovementType == entity.MovementReturn {
		title = "NF-e DE RETORNO DE LOCAÇÃO"
	}
	numero := fmt.Sprintf("Nº %s  Série %s", doc.Number, doc.Series)

	return row.New(18).Add(
		col.New(7).Add(
			text.New(profile.CorporateName, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("CNPJ: "+profile.TaxID, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(title, props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(numero, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Natureza: "+doc.OperationNature, props.Text{
				Size: 7, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func emitenteRow(profile *entity.TenantFiscalProfile) core.Row {
	a := profile.Address
	return row.New(12).Add(
		col.New(12).Add(
			text.New("EMITENTE", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("%s, %s - %s, %s/%s  CEP %s   |   IE: %s",
				a.Street, a.Number, a.District, a.City, a.State, a.ZipCode,
				profile.StateRegistration,
			), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

func destinatarioRow(doc *entity.FiscalDocument) core.Row {
	a := doc.CounterpartyAddress
	return row.New(14).Add(
		col.New(12).Add(
			text.New("DESTINATÁRIO", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(doc.CounterpartyName, props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(fmt.Sprintf("CNPJ/CPF: %s   |   %s, %s - %s, %s/%s",
				doc.CounterpartyTaxID, a.Street, a.Number, a.District, a.City, a.State,
			), props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Qtd", 1, align.Center),
		h("Descrição do equipamento", 4, align.Left),
		h("NCM", 2, align.Center),
		h("CFOP", 1, align.Center),
		h("V. Unit.", 2, align.Right),
		h("V. Total", 2, align.Right),
	)
}

func tableItemRows(items []*entity.FiscalDocumentItem) []core.Row {
	result := make([]core.Row, 0, len(items))
	for _, it := range items {
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(
				it.Quantity.StringFixed(0),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(4).Add(text.New(
				it.Description,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(
				it.NCM,
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(1).Add(text.New(
				it.CFOP,
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(2).Add(text.New(
				"R$ "+it.UnitValue.StringFixed(2),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(2).Add(text.New(
				"R$ "+it.TotalValue.StringFixed(2),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

func totalsRow(doc *entity.FiscalDocument) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2,
		})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	grandLabel := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 2,
		})
	}
	grandValue := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 1,
		})
	}

	return row.New(20).Add(
		col.New(3),
		col.New(3).Add(
			label("Valor dos produtos:"),
			grandLabel("VALOR TOTAL DA NOTA:"),
		),
		col.New(3).Add(
			value("R$ "+doc.GrossValue.StringFixed(2)),
			grandValue("R$ "+doc.TotalValue.StringFixed(2)),
		),
		col.New(3),
	)
}

func footerRows(doc *entity.FiscalDocument) []core.Row {
	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(
			text.New("CHAVE DE ACESSO", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
		)),
		row.New(5).Add(col.New(12).Add(
			text.New(formatAccessKey(doc.AccessKey), props.Text{
				Size: 8, Color: colorGray, Top: 0.5, Left: 2,
			}),
		)),
		row.New(3),
	}

	if doc.AccessKey != "" {
		rows = append(rows, row.New(45).Add(
			col.New(4).Add(code.NewQr(doc.AccessKey, props.Rect{
				Percent: 95,
				Center:  true,
			})),
			col.New(8).Add(
				text.New("Consulte pela chave de acesso no portal nacional da NF-e.", props.Text{
					Size: 8, Top: 4, Left: 3, Color: colorGray,
				}),
				text.New("Movimentação de bens para locação\nsem incidência de ICMS", props.Text{
					Style: fontstyle.Bold, Size: 10, Top: 20,
					Left: 3, Color: colorPrimary,
				}),
			),
		))
	}

	if doc.Status == entity.StatusCancelled {
		rows = append(rows, row.New(10).Add(col.New(12).Add(
			text.New("DOCUMENTO CANCELADO — protocolo "+doc.CancelProtocol, props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Center, Top: 2,
			}),
		)))
	}

	rows = append(rows, row.New(8).Add(col.New(12).Add(
		text.New(
			"Representação simplificada da NF-e; não substitui o DANFE oficial emitido pela SEFAZ. "+
				"Conserve este documento junto ao contrato de locação.",
			props.Text{Size: 6.5, Color: colorGray, Top: 2},
		),
	)))

	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

// formatAccessKey agrupa a chave de 44 dígitos em blocos de 4.
func formatAccessKey(key string) string {
	if key == "" {
		return "—"
	}
	var out []byte
	for i := 0; i < len(key); i += 4 {
		end := i + 4
		if end > len(key) {
			end = len(key)
		}
		if i > 0 {
			out = append(out, ' ')
		}
		out = append(out, key[i:end]...)
	}
	return string(out)
}
