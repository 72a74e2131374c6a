package kernel

import (
	"github.com/reglet-dev/kernelbridge/domain/entities"
)

// Signatures returns the compiled signatures of the benchmark kernels, keyed
// by kernel name.
func Signatures() map[string]entities.Signature {
	return map[string]entities.Signature{
		FibName: {
			Function: "fib",
			Params:   []entities.Param{entities.IntParam("n")},
			Returns:  entities.ReturnsInt(),
		},
		QsortName: {
			Function: "qsort_kernel",
			Params: []entities.Param{
				entities.ArrayParam("a", entities.Float64, 1),
				entities.IntParam("lo"),
				entities.IntParam("hi"),
			},
			Returns: entities.ReturnsArray(entities.Float64, 1),
		},
		PisumName: {
			Function: "pisum",
			Returns:  entities.ReturnsFloat(),
		},
	}
}

// Specializations binds every benchmark signature whose kernel is present in
// reg. The result is keyed by logical function name.
func Specializations(reg *Registry) (map[string][]*entities.Specialization, error) {
	out := make(map[string][]*entities.Specialization)
	sigs := Signatures()
	for _, name := range reg.Names() {
		sig, ok := sigs[name]
		if !ok {
			continue
		}
		k, err := reg.Kernel(name)
		if err != nil {
			return nil, err
		}
		spec, err := entities.NewSpecialization(sig, k)
		if err != nil {
			return nil, err
		}
		out[sig.Function] = append(out[sig.Function], spec)
	}
	return out, nil
}
