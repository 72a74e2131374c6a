package entities

// DescriptorVersion is the current descriptor layout version.
const DescriptorVersion = 1

// ArgDescriptor records the observed type of one call argument.
type ArgDescriptor struct {
	Name     string `json:"name"`
	Kind     Kind   `json:"kind"`
	DType    DType  `json:"dtype,omitempty"`
	TypeName string `json:"type_name,omitempty"`
	Shape    []int  `json:"shape,omitempty"`
	Rank     int    `json:"rank"`
}

// Type returns the (kind, dtype, rank) triple the descriptor encodes.
func (a ArgDescriptor) Type() ArgType {
	return ArgType{Kind: a.Kind, DType: a.DType, Rank: a.Rank}
}

// Descriptor describes the actual arguments of a call no specialization
// accepted. It is built fresh per mismatched call and handed to the factory.
type Descriptor struct {
	Function string          `json:"function"`
	Args     []ArgDescriptor `json:"args"`
	Compiled []string        `json:"compiled,omitempty"`
	Version  int             `json:"version"`
}

// TypeTuple returns the type triples of all described arguments in order.
func (d Descriptor) TypeTuple() []ArgType {
	out := make([]ArgType, len(d.Args))
	for i, a := range d.Args {
		out[i] = a.Type()
	}
	return out
}

// Signature returns the signature a specialization would need to accept
// exactly the described arguments. Arguments of kinds no kernel can take
// (str, object, none) are kept as is and make the signature invalid.
func (d Descriptor) Signature(returns ReturnType) Signature {
	params := make([]Param, len(d.Args))
	for i, a := range d.Args {
		params[i] = Param{Name: a.Name, Kind: a.Kind, DType: a.DType, Rank: a.Rank}
	}
	return Signature{Function: d.Function, Params: params, Returns: returns}
}
