package quizbank

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeBank(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "questions.json")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadValidBank(t *testing.T) {
	path := writeBank(t, `{
		"questions": [
			{
				"id": "q1",
				"category": "Science",
				"question": "What planet is known as the Red Planet?",
				"options": ["Venus", "Mars", "Jupiter", "Saturn"],
				"timeLimit": 15,
				"correctAnswer": 1
			}
		]
	}`)

	bank, err := Load(path)
	require.NoError(t, err)
	require.Len(t, bank, 1)

	q := bank[0]
	assert.Equal(t, "q1", q.ID)
	assert.Equal(t, "Science", q.Category)
	assert.Equal(t, "What planet is known as the Red Planet?", q.Prompt)
	assert.Equal(t, []string{"Venus", "Mars", "Jupiter", "Saturn"}, q.Options)
	assert.Equal(t, 15, q.TimeLimitSec)
	assert.Equal(t, 1, q.CorrectOption)
}

func TestLoadMissingFile(t *testing.T) {
	bank, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
	assert.Empty(t, bank)
}

func TestLoadMalformedFile(t *testing.T) {
	path := writeBank(t, `{"questions": [`)
	bank, err := Load(path)
	assert.Error(t, err)
	assert.Empty(t, bank)
}

func TestLoadEmptyBank(t *testing.T) {
	path := writeBank(t, `{"questions": []}`)
	bank, err := Load(path)
	assert.NoError(t, err)
	assert.Empty(t, bank)
}
