package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSub_Interleaving(t *testing.T) {
	frags, err := ParseSub("${A}-x-${B}")
	require.NoError(t, err)
	assert.Equal(t, []Fragment{Variable("A"), Literal("-x-"), Variable("B")}, frags)
}

func TestParseSub_LeadingAndTrailingLiterals(t *testing.T) {
	frags, err := ParseSub("arn:${AWS::Partition}:s3:::${Bucket}/key")
	require.NoError(t, err)
	assert.Equal(t, []Fragment{
		Literal("arn:"),
		Variable("AWS::Partition"),
		Literal(":s3:::"),
		Variable("Bucket"),
		Literal("/key"),
	}, frags)
}

func TestParseSub_NoVariables(t *testing.T) {
	frags, err := ParseSub("plain text")
	require.NoError(t, err)
	assert.Equal(t, []Fragment{Literal("plain text")}, frags)
}

func TestParseSub_Empty(t *testing.T) {
	frags, err := ParseSub("")
	require.NoError(t, err)
	assert.Empty(t, frags)
}

func TestParseSub_Escape(t *testing.T) {
	frags, err := ParseSub("cost is ${!Price} for ${Item}")
	require.NoError(t, err)
	assert.Equal(t, []Fragment{
		Literal("cost is "),
		Literal("${Price}"),
		Literal(" for "),
		Variable("Item"),
	}, frags)
}

func TestParseSub_Unterminated(t *testing.T) {
	_, err := ParseSub("prefix ${Oops")
	require.Error(t, err)

	var subErr *SubParseError
	require.ErrorAs(t, err, &subErr)
	assert.Equal(t, "prefix ${Oops", subErr.Template)
	assert.Equal(t, 7, subErr.Offset)
}
