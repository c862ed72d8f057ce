package repository

import (
	"errors"

	"github.com/amirasaad/banking/pkg/domain"
	"gorm.io/gorm"
)

// translateError maps GORM storage errors onto the stable domain taxonomy.
// notFound is the sentinel surfaced for a missing row.
func translateError(err error, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return notFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return domain.ErrIntegrityConflict
	default:
		return err
	}
}
