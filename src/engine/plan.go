package engine

import (
	"github.com/tsotimus/monkko/src/schemas"
)

// Strategy selects how a populate request resolves its references.
type Strategy string

const (
	// StrategyMultiple issues one batched lookup per populated field.
	StrategyMultiple Strategy = "multiple"
	// StrategyAggregation is accepted for forward compatibility. It currently
	// runs through the multiple lookup path.
	StrategyAggregation Strategy = "aggregation"
)

// PopulateRequest asks the engine to resolve the reference fields listed in
// Fields. Select restricts the fields returned for referenced documents;
// _id is always returned.
type PopulateRequest struct {
	Fields   []string `json:"fields" yaml:"fields"`
	Strategy Strategy `json:"strategy" yaml:"strategy"`
	Select   []string `json:"select,omitempty" yaml:"select,omitempty"`
}

type PopulateOption func(*PopulateRequest)

func WithStrategy(s Strategy) PopulateOption {
	return func(r *PopulateRequest) {
		r.Strategy = s
	}
}

func WithSelect(fieldNames ...string) PopulateOption {
	return func(r *PopulateRequest) {
		r.Select = append([]string(nil), fieldNames...)
	}
}

// NewPopulateRequest builds a request with StrategyMultiple unless an option
// says otherwise.
func NewPopulateRequest(fieldNames []string, opts ...PopulateOption) PopulateRequest {
	req := PopulateRequest{
		Fields:   append([]string(nil), fieldNames...),
		Strategy: StrategyMultiple,
	}
	for _, opt := range opts {
		opt(&req)
	}
	return req
}

// Plan is the pure-data description of a query: what to fetch and which
// references to resolve, in order. An Executor runs it.
type Plan struct {
	Schema    schemas.Definition
	Filter    interface{}
	Single    bool
	Populates []PopulateRequest
}

// Clone returns a copy whose populate list can be changed independently.
func (p Plan) Clone() Plan {
	out := p
	out.Populates = make([]PopulateRequest, len(p.Populates))
	for i, req := range p.Populates {
		out.Populates[i] = PopulateRequest{
			Fields:   append([]string(nil), req.Fields...),
			Strategy: req.Strategy,
			Select:   append([]string(nil), req.Select...),
		}
	}
	return out
}

// PopulatedFields lists every field named by the plan's populate requests,
// in request order, without duplicates.
func (p Plan) PopulatedFields() []string {
	seen := make(map[string]bool)
	var out []string
	for _, req := range p.Populates {
		for _, f := range req.Fields {
			if !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
	}
	return out
}
