package ir

import (
	"runtime"
	"sync"

	"go.uber.org/zap"

	"github.com/roblaks/noctilucent/spec"
	"github.com/roblaks/noctilucent/template"
)

// Instruction is everything the code generator needs to emit one resource
// assignment. Instructions are constructed once per translation pass and are
// immutable afterwards.
type Instruction struct {
	Name         string          `json:"Name"`
	Condition    string          `json:"Condition,omitempty"`
	ResourceType string          `json:"Type"`
	Properties   map[string]Node `json:"Properties"`
}

// References returns every symbol the instruction's IR refers to: Ref nodes
// (including those synthesized from substitution fragments) and GetAtt
// targets, which are reported with a logical-id origin.
func (inst *Instruction) References() []Reference {
	var refs []Reference
	for _, node := range inst.Properties {
		refs = appendReferences(refs, node)
	}
	return refs
}

func appendReferences(refs []Reference, node Node) []Reference {
	switch n := node.(type) {
	case Reference:
		refs = append(refs, n)
	case GetAtt:
		refs = append(refs, Reference{Name: n.LogicalName, Origin: Origin{Kind: OriginLogicalID}})
	case Array:
		for _, item := range n.Items {
			refs = appendReferences(refs, item)
		}
	case Object:
		for _, prop := range n.Props {
			refs = appendReferences(refs, prop)
		}
	case If:
		refs = appendReferences(refs, n.WhenTrue)
		refs = appendReferences(refs, n.WhenFalse)
	case Join:
		for _, v := range n.Values {
			refs = appendReferences(refs, v)
		}
	case Sub:
		for _, part := range n {
			refs = appendReferences(refs, part)
		}
	case FindInMap:
		refs = appendReferences(refs, n.MapName)
		refs = appendReferences(refs, n.TopKey)
		refs = appendReferences(refs, n.SecondKey)
	}
	return refs
}

// Options configures a translation pass.
type Options struct {
	// MaxParallel bounds the number of resources translated concurrently.
	// Zero or negative selects the CPU count, capped at 32.
	MaxParallel int

	// Logger receives per-resource diagnostics. Nil means no logging; the
	// engine itself never logs.
	Logger *zap.Logger
}

// TranslateResources runs the whole pass: every declared resource is
// translated independently, in parallel, and the instruction list comes back
// in document declaration order regardless of completion order.
//
// A failed resource does not abort the batch. Successes are returned
// alongside a *Report error enumerating every failed resource with its
// specific cause and location.
func TranslateResources(tree *template.ParseTree, db *spec.Spec, opts Options) ([]Instruction, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	maxParallel := opts.MaxParallel
	if maxParallel <= 0 {
		maxParallel = runtime.NumCPU()
	}
	if maxParallel > 32 {
		maxParallel = 32
	}

	instructions := make([]*Instruction, len(tree.Resources))
	failures := make([]*ResourceError, len(tree.Resources))

	var wg sync.WaitGroup
	sem := make(chan struct{}, maxParallel)
	for i := range tree.Resources {
		wg.Add(1)
		go func(slot int, res *template.Resource) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			instructions[slot], failures[slot] = translateResource(res, tree, db)
		}(i, &tree.Resources[i])
	}
	wg.Wait()

	out := make([]Instruction, 0, len(tree.Resources))
	var report Report
	for i := range tree.Resources {
		if failures[i] != nil {
			logger.Warn("resource failed translation",
				zap.String("resource", failures[i].Resource),
				zap.String("property", failures[i].Property),
				zap.Error(failures[i].Err),
			)
			report.Errors = append(report.Errors, failures[i])
			continue
		}
		inst := instructions[i]
		for _, ref := range inst.References() {
			// The logical-id fallback is an unchecked assumption; surface it
			// at debug level without changing resolution semantics.
			if ref.Origin.Kind == OriginLogicalID && tree.Resource(ref.Name) == nil {
				logger.Debug("reference assumed to be a logical id",
					zap.String("resource", inst.Name),
					zap.String("target", ref.Name),
				)
			}
		}
		out = append(out, *inst)
	}

	if len(report.Errors) > 0 {
		return out, &report
	}
	return out, nil
}

// translateResource builds the initial per-property context from the
// specification and translates each declared property.
func translateResource(res *template.Resource, tree *template.ParseTree, db *spec.Spec) (*Instruction, *ResourceError) {
	typeDef, err := db.ResourceType(res.Type)
	if err != nil {
		return nil, &ResourceError{Resource: res.Name, Err: err}
	}

	props := make(map[string]Node, len(res.Properties))
	for name, value := range res.Properties {
		rule, ok := typeDef.Properties[name]
		if !ok {
			return nil, &ResourceError{
				Resource: res.Name,
				Property: name,
				Err:      &spec.LookupError{ResourceType: res.Type, PropertyPath: name},
			}
		}
		ctx := NewContext(tree, db, res.Type, rule.Complexity())
		node, err := Translate(value, ctx)
		if err != nil {
			return nil, &ResourceError{Resource: res.Name, Property: name, Err: err}
		}
		props[name] = node
	}

	return &Instruction{
		Name:         res.Name,
		Condition:    res.Condition,
		ResourceType: res.Type,
		Properties:   props,
	}, nil
}
