package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	Matricula string `label:"matricula" validate:"notblank"`
	Nome      string `label:"nome" validate:"required"`
	Status    string `label:"status" validate:"enrollment_status"`
}

func TestStructValid(t *testing.T) {
	msgs, err := Default().Struct(record{Matricula: "S1", Nome: "Ana", Status: "Pendente"})
	require.NoError(t, err)
	assert.Nil(t, msgs)
}

func TestStructReportsEachFieldInPortuguese(t *testing.T) {
	msgs, err := Default().Struct(record{Matricula: "   ", Status: "Aprovada"})
	require.NoError(t, err)
	require.Len(t, msgs, 3)

	assert.Equal(t, "matricula não pode ficar em branco", msgs[0])
	assert.Contains(t, msgs[1], "nome")
	assert.Contains(t, msgs[1], "obrigatório")
	assert.Equal(t, "status não é um status de matrícula válido", msgs[2])
}

func TestStructRejectsNonStruct(t *testing.T) {
	_, err := Default().Struct(42)
	assert.Error(t, err)
}
