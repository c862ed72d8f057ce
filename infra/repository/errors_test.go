package repository

import (
	"errors"
	"testing"

	"github.com/amirasaad/banking/pkg/domain"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestTranslateError(t *testing.T) {
	assert.NoError(t, translateError(nil, domain.ErrAccountNotFound))

	assert.ErrorIs(t,
		translateError(gorm.ErrRecordNotFound, domain.ErrAccountNotFound),
		domain.ErrAccountNotFound)
	assert.ErrorIs(t,
		translateError(gorm.ErrRecordNotFound, domain.ErrUserNotFound),
		domain.ErrUserNotFound)

	assert.ErrorIs(t,
		translateError(gorm.ErrDuplicatedKey, domain.ErrTransactionNotFound),
		domain.ErrIntegrityConflict)

	opaque := errors.New("connection reset")
	assert.Equal(t, opaque, translateError(opaque, domain.ErrAccountNotFound))
}
