package nfe

import (
	"fmt"
	"unicode"
)

// Pesos dos dígitos verificadores do CNPJ (módulo 11, Receita Federal).
var (
	cnpjWeightsFirst  = [12]int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	cnpjWeightsSecond = [13]int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
)

// ValidateCNPJ valida os dois dígitos verificadores do CNPJ. Aceita o número
// com ou sem máscara ("12.345.678/0001-95" ou "12345678000195").
func ValidateCNPJ(taxID string) error {
	digits := extractDigits(taxID)
	if len(digits) != 14 {
		return fmt.Errorf("nfe: CNPJ deve ter 14 dígitos, foram encontrados %d", len(digits))
	}
	if allEqual(digits) {
		return fmt.Errorf("nfe: CNPJ com todos os dígitos iguais é inválido")
	}
	if d := checkDigit(digits[:12], cnpjWeightsFirst[:]); digits[12] != d {
		return fmt.Errorf("nfe: primeiro dígito verificador do CNPJ inválido: esperado %c, recebido %c", d, digits[12])
	}
	if d := checkDigit(digits[:13], cnpjWeightsSecond[:]); digits[13] != d {
		return fmt.Errorf("nfe: segundo dígito verificador do CNPJ inválido: esperado %c, recebido %c", d, digits[13])
	}
	return nil
}

// NormalizeTaxID remove a máscara, deixando apenas dígitos.
func NormalizeTaxID(taxID string) string {
	return string(extractDigits(taxID))
}

func checkDigit(base []byte, weights []int) byte {
	var sum int
	for i, d := range base {
		sum += int(d-'0') * weights[i]
	}
	remainder := sum % 11
	if remainder < 2 {
		return '0'
	}
	return byte('0' + (11 - remainder))
}

func allEqual(digits []byte) bool {
	for _, d := range digits[1:] {
		if d != digits[0] {
			return false
		}
	}
	return true
}

func extractDigits(s string) []byte {
	var out []byte
	for _, r := range s {
		if unicode.IsDigit(r) {
			out = append(out, byte(r))
		}
	}
	return out
}
