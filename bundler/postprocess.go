package bundler

import "regexp"

// The unparser renders generic constructor calls like array.new<line>(500)
// as the comparison chain array.new < line > 500, because < and > are
// plain operators in the expression grammar. genericCallPattern recognizes
// that shape and restores the call form. The spacing is deliberate:
// already-correct generics carry no whitespace around the brackets and
// must not be rewritten.
var genericCallPattern = regexp.MustCompile(`([A-Za-z_][\w.]*\.new)\s+<\s+([A-Za-z_]\w*)\s+>\s+([^\n]+)`)

// postprocess repairs generic constructor calls in the emitted document.
// Replacement runs until a fixed point so nested occurrences on one line
// are all restored.
func postprocess(output string) string {
	for {
		fixed := genericCallPattern.ReplaceAllString(output, "$1<$2>($3)")
		if fixed == output {
			return output
		}
		output = fixed
	}
}
