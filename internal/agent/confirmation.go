package agent

// dangerousKinds always need a human review before the front-end applies them.
var dangerousKinds = map[string]bool{
	KindDeleteTask:       true,
	KindDeleteBucket:     true,
	KindRemoveDependency: true,
}

// IsDangerous reports whether kind is a destructive operation.
func IsDangerous(kind string) bool {
	return dangerousKinds[kind]
}

// EnforceConfirmation applies the confirmation policy to r in place.
// Dangerous actions are always flagged, any flagged action flags the
// result, and batches of more than one action always need confirmation.
// Model output cannot relax any of these.
func EnforceConfirmation(r *Result) {
	for i := range r.Actions {
		if IsDangerous(r.Actions[i].Type) {
			r.Actions[i].RequiresConfirmation = true
		}
		if r.Actions[i].RequiresConfirmation {
			r.RequiresConfirmation = true
		}
	}
	if len(r.Actions) > 1 {
		r.RequiresConfirmation = true
	}
}
