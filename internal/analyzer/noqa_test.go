package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pycheck/internal/models"
	"pycheck/internal/source"
)

func TestParseNoqa(t *testing.T) {
	src := "a = 1  # noqa\n" +
		"b = 2  # noqa: PLE1141\n" +
		"c = 3  # noqa:E501,ple1141\n" +
		"d = 4  # just a comment\n" +
		"e = '#'\n"
	d := parseNoqa(source.NewLineIndex([]byte(src)))

	assert.Equal(t, []string{}, d[1])
	assert.Equal(t, []string{"PLE1141"}, d[2])
	assert.Equal(t, []string{"E501", "PLE1141"}, d[3])
	assert.NotContains(t, d, 4)
	assert.NotContains(t, d, 5)

	rule := models.RuleDictIterMissingItems
	assert.True(t, d.suppresses(1, rule))
	assert.True(t, d.suppresses(2, rule))
	assert.True(t, d.suppresses(3, rule))
	assert.False(t, d.suppresses(4, rule))
	assert.False(t, d.suppresses(2, "E501"))
}
