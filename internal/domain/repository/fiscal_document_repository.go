package repository

import (
	"context"

	"github.com/locagora/fiscal-api/internal/domain/entity"
)

// FiscalDocumentRepository define a porta de persistência de documentos
// fiscais e seus itens. Documentos nunca são removidos fisicamente.
type FiscalDocumentRepository interface {
	Create(ctx context.Context, doc *entity.FiscalDocument) error
	CreateItem(ctx context.Context, item *entity.FiscalDocumentItem) error
	// Update persiste os campos mutáveis do ciclo de vida: status, status cru
	// do gateway, número/série/chave, URLs, timestamps e dados de cancelamento.
	Update(ctx context.Context, doc *entity.FiscalDocument) error
	GetByID(ctx context.Context, id string) (*entity.FiscalDocument, error)
	GetItems(ctx context.Context, documentID string) ([]*entity.FiscalDocumentItem, error)
	// FindActiveByBooking retorna o documento ativo (status em statuses) da
	// locação para o tipo de movimento, em uma única ida ao banco — minimiza a
	// janela do check-then-act. nil quando não há.
	FindActiveByBooking(ctx context.Context, bookingID string, movement entity.MovementType, statuses []entity.DocumentStatus) (*entity.FiscalDocument, error)
	// FindActiveByReference é a consulta reversa da cadeia de referência:
	// retorno ativo apontando para a remessa informada. nil quando não há.
	FindActiveByReference(ctx context.Context, referencedDocID string, movement entity.MovementType, statuses []entity.DocumentStatus) (*entity.FiscalDocument, error)
	ListByBooking(ctx context.Context, bookingID string) ([]*entity.FiscalDocument, error)
}
