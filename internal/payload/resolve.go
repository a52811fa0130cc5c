// Package payload turns the loosely shaped webhook bodies sent by the
// automation platform into candidate fields and a decoded document.
//
// Payloads are decoded JSON values (map[string]any, []any, string, float64,
// bool, nil). Nothing in this package mutates them.
package payload

// UnwrapStep names one envelope layer peeled off a payload.
type UnwrapStep string

const (
	// StepArray takes the first element of a non-empty array.
	StepArray UnwrapStep = "array"
	// StepData descends into an object-valued "data" key.
	StepData UnwrapStep = "data"
	// StepJSON descends into an object-valued "json" key.
	StepJSON UnwrapStep = "json"
)

// maxUnwrapDepth bounds resolution of self-similar payloads.
const maxUnwrapDepth = 8

// candidateKeys mark an object as the candidate record itself. Wrapper steps
// never descend out of such an object.
var candidateKeys = []string{"fullName", "email", "jobTitle"}

type unwrapper struct {
	step  UnwrapStep
	apply func(v any) (any, bool)
}

// unwrapSteps is tried in order on every round; the first applicable step wins
// and the round restarts from the top.
var unwrapSteps = []unwrapper{
	{StepArray, unwrapArray},
	{StepData, objectKey("data")},
	{StepJSON, objectKey("json")},
}

func unwrapArray(v any) (any, bool) {
	arr, ok := v.([]any)
	if !ok || len(arr) == 0 {
		return nil, false
	}
	return arr[0], true
}

func objectKey(key string) func(any) (any, bool) {
	return func(v any) (any, bool) {
		obj, ok := v.(map[string]any)
		if !ok || hasCandidateFields(obj) {
			return nil, false
		}
		inner, ok := obj[key].(map[string]any)
		if !ok {
			return nil, false
		}
		return inner, true
	}
}

func hasCandidateFields(obj map[string]any) bool {
	for _, k := range candidateKeys {
		if _, ok := obj[k]; ok {
			return true
		}
	}
	return false
}

// Resolution is the result of peeling every envelope off a payload.
type Resolution struct {
	// Object is the innermost object reached, or nil when the payload does
	// not resolve to an object.
	Object map[string]any
	// Steps lists the unwrap steps applied, outermost first.
	Steps []UnwrapStep
	// Path holds every object passed through, outermost first and ending
	// with Object. Siblings of the candidate record (an n8n item's "binary"
	// next to its "json") stay reachable through it.
	Path []map[string]any
}

// Resolve applies the unwrap steps until none matches.
func Resolve(payload any) Resolution {
	var res Resolution
	cur := payload
	if obj, ok := cur.(map[string]any); ok {
		res.Path = append(res.Path, obj)
	}

	for depth := 0; depth < maxUnwrapDepth; depth++ {
		applied := false
		for _, u := range unwrapSteps {
			next, ok := u.apply(cur)
			if !ok {
				continue
			}
			cur = next
			res.Steps = append(res.Steps, u.step)
			if obj, ok := cur.(map[string]any); ok {
				res.Path = append(res.Path, obj)
			}
			applied = true
			break
		}
		if !applied {
			break
		}
	}

	if obj, ok := cur.(map[string]any); ok {
		res.Object = obj
	}
	return res
}

// innermostFirst walks the resolution path from the candidate record outwards.
func (r Resolution) innermostFirst(fn func(obj map[string]any) bool) {
	for i := len(r.Path) - 1; i >= 0; i-- {
		if fn(r.Path[i]) {
			return
		}
	}
}
