package spec

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProperty_Complexity(t *testing.T) {
	tests := []struct {
		name string
		prop Property
		want Complexity
	}{
		{"primitive", Property{PrimitiveType: "String"}, Simple("String")},
		{"list of primitives", Property{Type: "List", PrimitiveItemType: "String"}, Simple("String")},
		{"map of primitives", Property{Type: "Map", PrimitiveItemType: "Integer"}, Simple("Integer")},
		{"list of structures", Property{Type: "List", ItemType: "Tag"}, Complex("Tag")},
		{"map of structures", Property{Type: "Map", ItemType: "Rule"}, Complex("Rule")},
		{"structure", Property{Type: "VersioningConfiguration"}, Complex("VersioningConfiguration")},
		{"untyped", Property{}, Simple("Json")},
		{"untyped list", Property{Type: "List"}, Simple("Json")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.prop.Complexity())
		})
	}
}

func TestFullPropertyTypeName(t *testing.T) {
	assert.Equal(t, "AWS::S3::Bucket.VersioningConfiguration",
		FullPropertyTypeName(Complex("VersioningConfiguration"), "AWS::S3::Bucket"))
	assert.Equal(t, "Tag", FullPropertyTypeName(Complex("Tag"), "AWS::S3::Bucket"))
	assert.Equal(t, "", FullPropertyTypeName(Simple("String"), "AWS::S3::Bucket"))
}

func TestBuiltin(t *testing.T) {
	s, err := Builtin()
	require.NoError(t, err)

	c, err := s.ComplexityOf("AWS::S3::Bucket", "BucketName")
	require.NoError(t, err)
	assert.Equal(t, Simple("String"), c)

	c, err = s.ComplexityOf("AWS::S3::Bucket", "VersioningConfiguration")
	require.NoError(t, err)
	assert.Equal(t, Complex("VersioningConfiguration"), c)

	c, err = s.ComplexityOf("AWS::S3::Bucket", "Tags")
	require.NoError(t, err)
	assert.Equal(t, Complex("Tag"), c)

	props, err := s.PropertiesOf("AWS::S3::Bucket.VersioningConfiguration")
	require.NoError(t, err)
	assert.Contains(t, props, "Status")

	props, err = s.PropertiesOf("Tag")
	require.NoError(t, err)
	assert.Contains(t, props, "Key")
	assert.Contains(t, props, "Value")
}

func TestLookupErrors(t *testing.T) {
	s, err := Builtin()
	require.NoError(t, err)

	_, err = s.ComplexityOf("AWS::Nope::Missing", "Anything")
	var lookupErr *LookupError
	require.ErrorAs(t, err, &lookupErr)
	assert.Equal(t, "AWS::Nope::Missing", lookupErr.ResourceType)
	assert.Empty(t, lookupErr.PropertyPath)

	_, err = s.ComplexityOf("AWS::S3::Bucket", "NoSuchProperty")
	require.ErrorAs(t, err, &lookupErr)
	assert.Equal(t, "AWS::S3::Bucket", lookupErr.ResourceType)
	assert.Equal(t, "NoSuchProperty", lookupErr.PropertyPath)
	assert.Contains(t, err.Error(), "NoSuchProperty")

	_, err = s.PropertiesOf("AWS::S3::Bucket.NoSuchType")
	require.ErrorAs(t, err, &lookupErr)
}

func TestLoad(t *testing.T) {
	doc := `{
  "ResourceTypes": {
    "Custom::Widget": {
      "Properties": {
        "Size": {"PrimitiveType": "Integer"},
        "Shape": {"Type": "Shape"}
      }
    }
  },
  "PropertyTypes": {
    "Custom::Widget.Shape": {
      "Properties": {
        "Sides": {"PrimitiveType": "Integer", "Required": true}
      }
    }
  }
}`
	s, err := Load(strings.NewReader(doc))
	require.NoError(t, err)

	c, err := s.ComplexityOf("Custom::Widget", "Shape")
	require.NoError(t, err)
	assert.Equal(t, Complex("Shape"), c)

	props, err := s.PropertiesOf("Custom::Widget.Shape")
	require.NoError(t, err)
	assert.True(t, props["Sides"].Required)
}

func TestLoad_Malformed(t *testing.T) {
	_, err := Load(strings.NewReader("{not json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse specification")
}
