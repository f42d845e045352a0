package tickets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateStatus(t *testing.T) {
	assert.NoError(t, ValidateStatus(StatusOpen, ""))
	assert.NoError(t, ValidateStatus(StatusInProgress, ""))
	assert.NoError(t, ValidateStatus(StatusClosed, "решено на месте"))

	// закрыть без комментария нельзя
	assert.ErrorIs(t, ValidateStatus(StatusClosed, ""), ErrInvalidInput)
	assert.ErrorIs(t, ValidateStatus(StatusClosed, "   "), ErrInvalidInput)

	assert.ErrorIs(t, ValidateStatus(Status("потеряна"), ""), ErrInvalidInput)
}

func TestStatusMessage(t *testing.T) {
	assert.Equal(t, "Статус заявки #7 изменён на 'в работе'",
		StatusMessage(7, StatusInProgress, ""))
	assert.Equal(t, "Статус заявки #7 изменён на 'закрыта'\nКомментарий: кондиционер починили",
		StatusMessage(7, StatusClosed, "кондиционер починили"))
}
