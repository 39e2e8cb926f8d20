package cli

import (
	"testing"

	"github.com/dmitrijs2005/gophupload/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMetadata(t *testing.T) {
	md, err := parseMetadata([]string{"title=Site plan", "issue_date=2025-03-01", "title=Final", "note="})
	require.NoError(t, err)
	assert.Equal(t, models.Metadata{
		{Name: "title", Value: "Final"},
		{Name: "issue_date", Value: "2025-03-01"},
		{Name: "note", Value: ""},
	}, md)

	md, err = parseMetadata(nil)
	require.NoError(t, err)
	assert.Empty(t, md)

	_, err = parseMetadata([]string{"novalue"})
	assert.Error(t, err)
	_, err = parseMetadata([]string{"=x"})
	assert.Error(t, err)
}
