package middleware

import (
	"strings"

	"github.com/kelibin/secretaria/internal/pkg/apperrors"
)

// DuplicateMessage names a duplicated field in user-facing terms; it returns
// "" for fields it does not know
type DuplicateMessage func(field string) string

// genericDuplicate is shown for duplicates on fields without a specific message
const genericDuplicate = "Dado duplicado. Por favor, verifique as informações."

// DescribeStoreError translates a store error into a flash message.
// fallback is used for store failures and errors outside the store taxonomy.
func DescribeStoreError(err error, fallback string, duplicate DuplicateMessage) string {
	se, ok := apperrors.AsStoreError(err)
	if !ok {
		return fallback
	}

	switch se.Kind {
	case apperrors.KindValidation:
		return "Erro de validação: " + strings.Join(se.Details, ", ")
	case apperrors.KindDuplicateKey:
		if duplicate != nil {
			if msg := duplicate(se.Field); msg != "" {
				return msg
			}
		}
		return genericDuplicate
	case apperrors.KindNotFound, apperrors.KindStore:
		return fallback
	default:
		return fallback
	}
}
