package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/kelibin/secretaria/internal/app/models"
)

func TestWriteStudents(t *testing.T) {
	students := []*models.Student{
		{RegistrationNumber: "S1", Name: "Ana", Subject: &models.Subject{Name: "Math"}},
		{RegistrationNumber: "S2", Name: "Bruno"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteStudents(&buf, students))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Matrícula", "Nome", "Disciplina"}, rows[0])
	assert.Equal(t, []string{"S1", "Ana", "Math"}, rows[1])
	// trailing empty cells are trimmed by GetRows
	assert.Equal(t, []string{"S2", "Bruno"}, rows[2])
}

func TestWriteStudentsEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteStudents(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
