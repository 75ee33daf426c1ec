// Tipos do protocolo REST do intermediário fiscal (emissor de NF-e).

package gateway

// Auth identifica o tenant perante o gateway em cada chamada. O token chega
// já decifrado da camada de aplicação; o ambiente decide a URL base.
type Auth struct {
	Token       string
	Environment string // homologacao | producao
}

// Response é a resposta crua do gateway. O campo Status é preservado
// verbatim; a tradução para o vocabulário interno acontece na aplicação.
type Response struct {
	Status        string `json:"status"`
	StatusReason  string `json:"mensagem_sefaz"`
	Number        string `json:"numero"`
	Series        string `json:"serie"`
	AccessKey     string `json:"chave_nfe"`
	Protocol      string `json:"protocolo"`
	XMLPath       string `json:"caminho_xml_nota_fiscal"`
	PDFPath       string `json:"caminho_danfe"`
	CancelXMLPath string `json:"caminho_xml_cancelamento"`
	// Erros de validação devolvidos pelo gateway antes de chegar à SEFAZ.
	Errors []ResponseError `json:"erros,omitempty"`
}

// ResponseError é um item da lista de erros de validação do gateway.
type ResponseError struct {
	Code    string `json:"codigo"`
	Message string `json:"mensagem"`
}

// ErrorMessage concatena a mensagem da SEFAZ com os erros de validação,
// para persistir no documento quando a emissão falha.
func (r *Response) ErrorMessage() string {
	msg := r.StatusReason
	for _, e := range r.Errors {
		if msg != "" {
			msg += "; "
		}
		msg += e.Message
	}
	return msg
}

type cancelRequest struct {
	Justification string `json:"justificativa"`
}

type correctionRequest struct {
	Correction string `json:"correcao"`
}

type errorBody struct {
	Code    string `json:"codigo"`
	Message string `json:"mensagem"`
}
