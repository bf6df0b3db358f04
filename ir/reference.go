package ir

import (
	"encoding/json"

	"github.com/roblaks/noctilucent/template"
)

// PseudoParameter identifies one of CloudFormation's built-in parameters,
// resolvable without consulting the template's own declarations.
type PseudoParameter int

const (
	PseudoAccountID PseudoParameter = iota
	PseudoNotificationARNs
	PseudoNoValue
	PseudoPartition
	PseudoRegion
	PseudoStackID
	PseudoStackName
	PseudoURLSuffix
)

var pseudoNames = map[PseudoParameter]string{
	PseudoAccountID:        "AWS::AccountId",
	PseudoNotificationARNs: "AWS::NotificationARNs",
	PseudoNoValue:          "AWS::NoValue",
	PseudoPartition:        "AWS::Partition",
	PseudoRegion:           "AWS::Region",
	PseudoStackID:          "AWS::StackId",
	PseudoStackName:        "AWS::StackName",
	PseudoURLSuffix:        "AWS::URLSuffix",
}

// pseudoParameters is the reverse table used during resolution.
var pseudoParameters = func() map[string]PseudoParameter {
	m := make(map[string]PseudoParameter, len(pseudoNames))
	for p, name := range pseudoNames {
		m[name] = p
	}
	return m
}()

func (p PseudoParameter) String() string { return pseudoNames[p] }

// OriginKind classifies what a referenced symbol names.
type OriginKind int

const (
	// OriginPseudoParameter is a CloudFormation built-in such as AWS::Region.
	OriginPseudoParameter OriginKind = iota
	// OriginParameter matches a declared template parameter name.
	OriginParameter
	// OriginLogicalID is the fallback: the symbol is assumed to name another
	// resource in the same template. The assumption is not verified against
	// the resource list.
	OriginLogicalID
)

func (k OriginKind) String() string {
	switch k {
	case OriginPseudoParameter:
		return "pseudo parameter"
	case OriginParameter:
		return "parameter"
	default:
		return "logical id"
	}
}

// Origin is a resolved symbol's classification. Pseudo is meaningful only
// when Kind is OriginPseudoParameter.
type Origin struct {
	Kind   OriginKind
	Pseudo PseudoParameter
}

// Reference is a resolved symbol: the original name plus its origin. It is
// also the Ref variant of the IR.
type Reference struct {
	Name   string
	Origin Origin
}

// MarshalJSON renders {"Ref": name}; the origin is a translation artifact.
func (r Reference) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{"Ref": r.Name})
}

// Resolve classifies a bare symbol used in a Ref or substitution context.
// The order is fixed and semantically significant: pseudo-parameter names
// win over template parameters of the same name, and anything else falls
// through to a logical ID.
func Resolve(name string, tree *template.ParseTree) Reference {
	if pseudo, ok := pseudoParameters[name]; ok {
		return Reference{Name: name, Origin: Origin{Kind: OriginPseudoParameter, Pseudo: pseudo}}
	}
	if tree != nil && tree.HasParameter(name) {
		return Reference{Name: name, Origin: Origin{Kind: OriginParameter}}
	}
	return Reference{Name: name, Origin: Origin{Kind: OriginLogicalID}}
}
