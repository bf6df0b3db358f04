package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roblaks/noctilucent/spec"
	"github.com/roblaks/noctilucent/template"
)

func testSpec() *spec.Spec {
	return &spec.Spec{
		ResourceTypes: map[string]*spec.TypeDef{
			"X": {Properties: map[string]spec.Property{
				"P":     {Type: "XProp"},
				"Name":  {PrimitiveType: "String"},
				"Count": {PrimitiveType: "Integer"},
				"Blob":  {PrimitiveType: "Json"},
				"Items": {Type: "List", PrimitiveItemType: "String"},
			}},
		},
		PropertyTypes: map[string]*spec.TypeDef{
			"X.XProp": {Properties: map[string]spec.Property{
				"Q":      {PrimitiveType: "String"},
				"Nested": {Type: "XProp"},
			}},
		},
	}
}

func testTree() *template.ParseTree {
	return &template.ParseTree{
		Parameters: map[string]template.Parameter{
			"Param1": {Name: "Param1", Type: "String"},
		},
		Resources: []template.Resource{
			{Name: "Other", Type: "X"},
		},
	}
}

func simpleCtx() Context {
	return NewContext(testTree(), testSpec(), "X", spec.Simple("String"))
}

func complexCtx() Context {
	return NewContext(testTree(), testSpec(), "X", spec.Complex("XProp"))
}

func TestTranslate_Leaves(t *testing.T) {
	ctx := simpleCtx()

	tests := []struct {
		in   template.Value
		want Node
	}{
		{template.Null{}, Null{}},
		{template.Bool(true), Bool(true)},
		{template.Long(42), Number(42)},
		{template.Double(1.5), Double(1.5)},
		{template.String("v"), String("v")},
	}
	for _, tt := range tests {
		got, err := Translate(tt.in, ctx)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestTranslate_ArrayInheritsComplexity(t *testing.T) {
	ctx := complexCtx()
	got, err := Translate(template.Sequence{
		template.Mapping{"Q": template.String("a")},
		template.Mapping{"Q": template.String("b")},
	}, ctx)
	require.NoError(t, err)

	arr, ok := got.(Array)
	require.True(t, ok)
	assert.Equal(t, spec.Complex("XProp"), arr.Complexity)
	require.Len(t, arr.Items, 2)
	// Every element was classified against XProp, not against X.
	first := arr.Items[0].(Object)
	assert.Equal(t, spec.Complex("XProp"), first.Complexity)
	assert.Equal(t, String("a"), first.Props["Q"])
}

func TestTranslate_SimpleObjectIsSchemaFree(t *testing.T) {
	ctx := NewContext(testTree(), testSpec(), "X", spec.Simple("Json"))
	got, err := Translate(template.Mapping{
		"anything": template.Mapping{"nested": template.Long(1)},
	}, ctx)
	require.NoError(t, err)

	obj := got.(Object)
	assert.Equal(t, spec.Simple("Json"), obj.Complexity)
	inner := obj.Props["anything"].(Object)
	assert.Equal(t, Number(1), inner.Props["nested"])
}

func TestTranslate_ComplexObjectReclassifiesEveryKey(t *testing.T) {
	got, err := Translate(template.Mapping{"Q": template.String("v")}, complexCtx())
	require.NoError(t, err)

	obj := got.(Object)
	assert.Equal(t, spec.Complex("XProp"), obj.Complexity)
	assert.Equal(t, String("v"), obj.Props["Q"])
}

func TestTranslate_NestedComplexDescends(t *testing.T) {
	got, err := Translate(template.Mapping{
		"Nested": template.Mapping{"Q": template.String("deep")},
	}, complexCtx())
	require.NoError(t, err)

	outer := got.(Object)
	inner := outer.Props["Nested"].(Object)
	assert.Equal(t, spec.Complex("XProp"), inner.Complexity)
	assert.Equal(t, String("deep"), inner.Props["Q"])
}

func TestTranslate_UnknownKeyUnderComplexType(t *testing.T) {
	_, err := Translate(template.Mapping{"Bogus": template.String("v")}, complexCtx())
	require.Error(t, err)

	var lookupErr *spec.LookupError
	require.ErrorAs(t, err, &lookupErr)
	assert.Equal(t, "X.XProp", lookupErr.ResourceType)
	assert.Equal(t, "Bogus", lookupErr.PropertyPath)
}

func TestTranslate_If(t *testing.T) {
	got, err := Translate(template.If{
		Predicate: template.String("InProd"),
		WhenTrue:  template.String("yes"),
		WhenFalse: template.String("no"),
	}, simpleCtx())
	require.NoError(t, err)
	assert.Equal(t, If{Condition: "InProd", WhenTrue: String("yes"), WhenFalse: String("no")}, got)
}

func TestTranslate_IfConditionMustBeString(t *testing.T) {
	_, err := Translate(template.If{
		Predicate: template.Long(1),
		WhenTrue:  template.String("yes"),
		WhenFalse: template.String("no"),
	}, simpleCtx())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Fn::If")
}

func TestTranslate_JoinIdentity(t *testing.T) {
	got, err := Translate(template.Join{template.String(",")}, simpleCtx())
	require.NoError(t, err)
	assert.Equal(t, Join{Delimiter: ",", Values: []Node{}}, got)
}

func TestTranslate_Join(t *testing.T) {
	got, err := Translate(template.Join{
		template.String("-"),
		template.String("a"),
		template.Ref("Param1"),
	}, simpleCtx())
	require.NoError(t, err)

	join := got.(Join)
	assert.Equal(t, "-", join.Delimiter)
	require.Len(t, join.Values, 2)
	assert.Equal(t, String("a"), join.Values[0])
	assert.Equal(t, Reference{Name: "Param1", Origin: Origin{Kind: OriginParameter}}, join.Values[1])
}

func TestTranslate_JoinSeparatorMustBeString(t *testing.T) {
	_, err := Translate(template.Join{template.Long(1), template.String("a")}, simpleCtx())
	require.Error(t, err)

	var intrinsicErr *IntrinsicError
	require.ErrorAs(t, err, &intrinsicErr)
	assert.Equal(t, "Fn::Join", intrinsicErr.Fn)
	assert.Contains(t, err.Error(), "Fn::Join")
}

func TestTranslate_GetAtt(t *testing.T) {
	got, err := Translate(template.GetAtt{
		LogicalName: template.String("Db"),
		Attribute:   template.String("Endpoint.Address"),
	}, simpleCtx())
	require.NoError(t, err)
	assert.Equal(t, GetAtt{LogicalName: "Db", Attribute: "Endpoint.Address"}, got)
}

func TestTranslate_GetAttOperandsMustBeStrings(t *testing.T) {
	_, err := Translate(template.GetAtt{
		LogicalName: template.Long(1),
		Attribute:   template.String("Arn"),
	}, simpleCtx())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Fn::GetAtt")

	_, err = Translate(template.GetAtt{
		LogicalName: template.String("Db"),
		Attribute:   template.Null{},
	}, simpleCtx())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Fn::GetAtt")
}

func TestTranslate_FindInMapTranslatesAllOperands(t *testing.T) {
	got, err := Translate(template.FindInMap{
		MapName:   template.String("RegionMap"),
		TopKey:    template.Ref("AWS::Region"),
		SecondKey: template.String("AMI"),
	}, simpleCtx())
	require.NoError(t, err)

	fim := got.(FindInMap)
	assert.Equal(t, String("RegionMap"), fim.MapName)
	ref := fim.TopKey.(Reference)
	assert.Equal(t, OriginPseudoParameter, ref.Origin.Kind)
	assert.Equal(t, PseudoRegion, ref.Origin.Pseudo)
	assert.Equal(t, String("AMI"), fim.SecondKey)
}

func TestTranslate_SubOrderPreserved(t *testing.T) {
	got, err := Translate(template.Sub{template.String("${A}-x-${B}")}, simpleCtx())
	require.NoError(t, err)

	assert.Equal(t, Sub{
		Reference{Name: "A", Origin: Origin{Kind: OriginLogicalID}},
		String("-x-"),
		Reference{Name: "B", Origin: Origin{Kind: OriginLogicalID}},
	}, got)
}

func TestTranslate_SubOverridePrecedence(t *testing.T) {
	got, err := Translate(template.Sub{
		template.String("${A}"),
		template.Mapping{"A": template.String("literal")},
	}, simpleCtx())
	require.NoError(t, err)
	assert.Equal(t, Sub{String("literal")}, got)
}

func TestTranslate_SubLaterOverrideWins(t *testing.T) {
	got, err := Translate(template.Sub{
		template.String("${A}"),
		template.Mapping{"A": template.String("first")},
		template.Mapping{"A": template.String("second")},
	}, simpleCtx())
	require.NoError(t, err)
	assert.Equal(t, Sub{String("second")}, got)
}

func TestTranslate_SubTemplateMustBeString(t *testing.T) {
	_, err := Translate(template.Sub{template.Long(1)}, simpleCtx())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Fn::Sub")
	assert.Contains(t, err.Error(), "template must be a string")
}

func TestTranslate_SubOverridesMustBeObjects(t *testing.T) {
	_, err := Translate(template.Sub{
		template.String("${A}"),
		template.String("not an object"),
	}, simpleCtx())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overrides must be an object")
}

func TestTranslate_SubParseErrorPropagates(t *testing.T) {
	_, err := Translate(template.Sub{template.String("${Broken")}, simpleCtx())
	require.Error(t, err)

	var subErr *template.SubParseError
	require.ErrorAs(t, err, &subErr)
}

func TestTranslate_Deterministic(t *testing.T) {
	value := template.Mapping{
		"Q": template.String("v"),
		"Nested": template.Mapping{
			"Q": template.Sub{template.String("${Param1}-${AWS::Region}")},
		},
	}

	first, err := Translate(value, complexCtx())
	require.NoError(t, err)
	second, err := Translate(value, complexCtx())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestNode_MarshalJSON(t *testing.T) {
	tests := []struct {
		node Node
		want string
	}{
		{String("v"), `"v"`},
		{Number(3), `3`},
		{Null{}, `null`},
		{Reference{Name: "MyBucket"}, `{"Ref": "MyBucket"}`},
		{GetAtt{LogicalName: "Db", Attribute: "Arn"}, `{"Fn::GetAtt": ["Db", "Arn"]}`},
		{If{Condition: "C", WhenTrue: String("a"), WhenFalse: String("b")}, `{"Fn::If": ["C", "a", "b"]}`},
		{Join{Delimiter: ",", Values: []Node{String("a")}}, `{"Fn::Join": [",", ["a"]]}`},
		{Join{Delimiter: ","}, `{"Fn::Join": [",", []]}`},
		{Sub{String("a-"), Reference{Name: "B"}}, `{"Fn::Sub": ["a-", {"Ref": "B"}]}`},
		{
			FindInMap{MapName: String("M"), TopKey: String("k1"), SecondKey: String("k2")},
			`{"Fn::FindInMap": ["M", "k1", "k2"]}`,
		},
	}

	for _, tt := range tests {
		data, err := json.Marshal(tt.node)
		require.NoError(t, err)
		assert.JSONEq(t, tt.want, string(data))
	}
}
