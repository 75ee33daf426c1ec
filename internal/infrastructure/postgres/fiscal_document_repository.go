package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/locagora/fiscal-api/internal/domain"
	"github.com/locagora/fiscal-api/internal/domain/entity"
	"github.com/locagora/fiscal-api/internal/domain/repository"
)

var _ repository.FiscalDocumentRepository = (*FiscalDocumentRepo)(nil)

// FiscalDocumentRepo implementação de FiscalDocumentRepository (usável com
// pool ou tx).
//
// A unicidade de documento ativo por (booking_id, movement_type) é garantida
// pelo índice único parcial:
//
//	CREATE UNIQUE INDEX uq_fiscal_documents_active_booking
//	  ON fiscal_documents (booking_id, movement_type)
//	  WHERE status IN ('PENDING','PROCESSING','AUTHORIZED');
//
// A verificação na aplicação é o caminho rápido; o índice fecha a corrida.
type FiscalDocumentRepo struct {
	q Querier
}

// NewFiscalDocumentRepository constrói o adaptador. Passar pool ou tx (Querier).
func NewFiscalDocumentRepository(q Querier) *FiscalDocumentRepo {
	return &FiscalDocumentRepo{q: q}
}

const fiscalDocumentColumns = `
	id, tenant_id, booking_id, internal_ref, movement_type,
	status, COALESCE(gateway_status, ''),
	COALESCE(number, ''), COALESCE(series, ''), COALESCE(access_key, ''),
	operation_nature, cfop, gross_value, total_value,
	counterparty_name, counterparty_tax_id, COALESCE(counterparty_state_reg, ''),
	counterparty_street, counterparty_number, counterparty_district,
	counterparty_city, COALESCE(counterparty_city_code, ''), counterparty_state, counterparty_zip_code,
	COALESCE(referenced_doc_id, ''), COALESCE(referenced_access_key, ''),
	authorized_at, cancelled_at, COALESCE(cancel_protocol, ''), COALESCE(cancel_reason, ''),
	COALESCE(error_message, ''), COALESCE(xml_url, ''), COALESCE(pdf_url, ''),
	created_at, updated_at`

// Create persiste o cabeçalho do documento. Uma violação do índice único
// parcial (dois ativos para a mesma locação/movimento) vira
// InvariantViolationError para a aplicação tratar como conflito de negócio.
func (r *FiscalDocumentRepo) Create(ctx context.Context, doc *entity.FiscalDocument) error {
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	if doc.InternalRef == "" {
		doc.InternalRef = "fd-" + doc.ID
	}
	now := time.Now()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	query := `
		INSERT INTO fiscal_documents (
			id, tenant_id, booking_id, internal_ref, movement_type,
			status, gateway_status, number, series, access_key,
			operation_nature, cfop, gross_value, total_value,
			counterparty_name, counterparty_tax_id, counterparty_state_reg,
			counterparty_street, counterparty_number, counterparty_district,
			counterparty_city, counterparty_city_code, counterparty_state, counterparty_zip_code,
			referenced_doc_id, referenced_access_key,
			authorized_at, cancelled_at, cancel_protocol, cancel_reason,
			error_message, xml_url, pdf_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
		        $11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
		        $21, $22, $23, $24, $25, $26, $27, $28, $29, $30,
		        $31, $32, $33, $34, $35)`
	_, err := r.q.Exec(ctx, query,
		doc.ID, doc.TenantID, doc.BookingID, doc.InternalRef, doc.MovementType,
		doc.Status, nullIfEmpty(doc.GatewayStatus), nullIfEmpty(doc.Number), nullIfEmpty(doc.Series), nullIfEmpty(doc.AccessKey),
		doc.OperationNature, doc.CFOP, doc.GrossValue, doc.TotalValue,
		doc.CounterpartyName, doc.CounterpartyTaxID, nullIfEmpty(doc.CounterpartyStateReg),
		doc.CounterpartyAddress.Street, doc.CounterpartyAddress.Number, doc.CounterpartyAddress.District,
		doc.CounterpartyAddress.City, nullIfEmpty(doc.CounterpartyAddress.CityCode), doc.CounterpartyAddress.State, doc.CounterpartyAddress.ZipCode,
		nullIfEmpty(doc.ReferencedDocID), nullIfEmpty(doc.ReferencedAccessKey),
		doc.AuthorizedAt, doc.CancelledAt, nullIfEmpty(doc.CancelProtocol), nullIfEmpty(doc.CancelReason),
		nullIfEmpty(doc.ErrorMessage), nullIfEmpty(doc.XMLURL), nullIfEmpty(doc.PDFURL),
		doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.InvariantViolationError{
				Message: fmt.Sprintf("já existe documento ativo de %s para a locação %s", doc.MovementType, doc.BookingID),
			}
		}
		return fmt.Errorf("insert fiscal document: %w", err)
	}
	return nil
}

// CreateItem persiste uma linha do documento.
func (r *FiscalDocumentRepo) CreateItem(ctx context.Context, item *entity.FiscalDocumentItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	query := `
		INSERT INTO fiscal_document_items (
			id, document_id, sequence, equipment_id, product_code, description,
			ncm, cfop, tax_situation, quantity, unit_value, total_value)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		item.ID, item.DocumentID, item.Sequence, item.EquipmentID, item.ProductCode, item.Description,
		item.NCM, item.CFOP, item.TaxSituation, item.Quantity, item.UnitValue, item.TotalValue,
	)
	if err != nil {
		return fmt.Errorf("insert fiscal document item: %w", err)
	}
	return nil
}

// Update persiste os campos mutáveis do ciclo de vida.
func (r *FiscalDocumentRepo) Update(ctx context.Context, doc *entity.FiscalDocument) error {
	doc.UpdatedAt = time.Now()
	query := `
		UPDATE fiscal_documents
		SET status                = $2,
		    gateway_status        = COALESCE($3, gateway_status),
		    number                = COALESCE($4, number),
		    series                = COALESCE($5, series),
		    access_key            = COALESCE($6, access_key),
		    authorized_at         = COALESCE($7, authorized_at),
		    cancelled_at          = COALESCE($8, cancelled_at),
		    cancel_protocol       = COALESCE($9, cancel_protocol),
		    cancel_reason         = COALESCE($10, cancel_reason),
		    error_message         = $11,
		    xml_url               = COALESCE($12, xml_url),
		    pdf_url               = COALESCE($13, pdf_url),
		    updated_at            = $14
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		doc.ID,
		doc.Status,
		nullIfEmpty(doc.GatewayStatus),
		nullIfEmpty(doc.Number),
		nullIfEmpty(doc.Series),
		nullIfEmpty(doc.AccessKey),
		doc.AuthorizedAt,
		doc.CancelledAt,
		nullIfEmpty(doc.CancelProtocol),
		nullIfEmpty(doc.CancelReason),
		nullIfEmpty(doc.ErrorMessage),
		nullIfEmpty(doc.XMLURL),
		nullIfEmpty(doc.PDFURL),
		doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update fiscal document: %w", err)
	}
	return nil
}

// GetByID obtém um documento completo por ID. ErrNotFound quando não existe.
func (r *FiscalDocumentRepo) GetByID(ctx context.Context, id string) (*entity.FiscalDocument, error) {
	query := `SELECT ` + fiscalDocumentColumns + ` FROM fiscal_documents WHERE id = $1`
	doc, err := r.scanDocument(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get fiscal document: %w", err)
	}
	return doc, nil
}

// GetItems obtém as linhas de um documento na ordem de emissão.
func (r *FiscalDocumentRepo) GetItems(ctx context.Context, documentID string) ([]*entity.FiscalDocumentItem, error) {
	query := `
		SELECT id, document_id, sequence, equipment_id, product_code, description,
		       ncm, cfop, tax_situation, quantity, unit_value, total_value
		FROM fiscal_document_items WHERE document_id = $1 ORDER BY sequence`
	rows, err := r.q.Query(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("list fiscal document items: %w", err)
	}
	defer rows.Close()
	var list []*entity.FiscalDocumentItem
	for rows.Next() {
		var it entity.FiscalDocumentItem
		if err := rows.Scan(&it.ID, &it.DocumentID, &it.Sequence, &it.EquipmentID, &it.ProductCode, &it.Description,
			&it.NCM, &it.CFOP, &it.TaxSituation, &it.Quantity, &it.UnitValue, &it.TotalValue); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}

// FindActiveByBooking busca em uma única ida ao banco o documento ativo da
// locação para o movimento. nil sem erro quando não há.
func (r *FiscalDocumentRepo) FindActiveByBooking(ctx context.Context, bookingID string, movement entity.MovementType, statuses []entity.DocumentStatus) (*entity.FiscalDocument, error) {
	query := `SELECT ` + fiscalDocumentColumns + `
		FROM fiscal_documents
		WHERE booking_id = $1 AND movement_type = $2 AND status = ANY($3)
		ORDER BY created_at DESC
		LIMIT 1`
	doc, err := r.scanDocument(r.q.QueryRow(ctx, query, bookingID, movement, statusStrings(statuses)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find active by booking: %w", err)
	}
	return doc, nil
}

// FindActiveByReference busca o retorno ativo que referencia a remessa dada.
func (r *FiscalDocumentRepo) FindActiveByReference(ctx context.Context, referencedDocID string, movement entity.MovementType, statuses []entity.DocumentStatus) (*entity.FiscalDocument, error) {
	query := `SELECT ` + fiscalDocumentColumns + `
		FROM fiscal_documents
		WHERE referenced_doc_id = $1 AND movement_type = $2 AND status = ANY($3)
		ORDER BY created_at DESC
		LIMIT 1`
	doc, err := r.scanDocument(r.q.QueryRow(ctx, query, referencedDocID, movement, statusStrings(statuses)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find active by reference: %w", err)
	}
	return doc, nil
}

// ListByBooking lista todos os documentos de uma locação, mais recente primeiro.
func (r *FiscalDocumentRepo) ListByBooking(ctx context.Context, bookingID string) ([]*entity.FiscalDocument, error) {
	query := `SELECT ` + fiscalDocumentColumns + `
		FROM fiscal_documents
		WHERE booking_id = $1
		ORDER BY created_at DESC`
	rows, err := r.q.Query(ctx, query, bookingID)
	if err != nil {
		return nil, fmt.Errorf("list by booking: %w", err)
	}
	defer rows.Close()
	var list []*entity.FiscalDocument
	for rows.Next() {
		doc, err := r.scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		list = append(list, doc)
	}
	return list, rows.Err()
}

func (r *FiscalDocumentRepo) scanDocument(row pgx.Row) (*entity.FiscalDocument, error) {
	var doc entity.FiscalDocument
	err := row.Scan(
		&doc.ID, &doc.TenantID, &doc.BookingID, &doc.InternalRef, &doc.MovementType,
		&doc.Status, &doc.GatewayStatus,
		&doc.Number, &doc.Series, &doc.AccessKey,
		&doc.OperationNature, &doc.CFOP, &doc.GrossValue, &doc.TotalValue,
		&doc.CounterpartyName, &doc.CounterpartyTaxID, &doc.CounterpartyStateReg,
		&doc.CounterpartyAddress.Street, &doc.CounterpartyAddress.Number, &doc.CounterpartyAddress.District,
		&doc.CounterpartyAddress.City, &doc.CounterpartyAddress.CityCode, &doc.CounterpartyAddress.State, &doc.CounterpartyAddress.ZipCode,
		&doc.ReferencedDocID, &doc.ReferencedAccessKey,
		&doc.AuthorizedAt, &doc.CancelledAt, &doc.CancelProtocol, &doc.CancelReason,
		&doc.ErrorMessage, &doc.XMLURL, &doc.PDFURL,
		&doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func statusStrings(statuses []entity.DocumentStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
