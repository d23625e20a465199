package algebra

// TermCounts describes how far an expression is from being combined
type TermCounts struct {
	Raw             int // summands as written, after expansion
	Combined        int // summands after merging like terms and dropping zeros
	Constants       int // constant summands as written
	RepeatedLikeVar bool
}

// Comparison is the structural relation between a student answer and the
// expected one.
type Comparison struct {
	// Identical means both print the same
	Identical bool
	// Equivalent means the fully canonical forms are equal
	Equivalent bool
	// Commutative means the same uncombined terms appear in another order
	Commutative bool
	Student     TermCounts
	Expected    TermCounts
}

// Compare relates student to expected. Equations are compared side by side.
func Compare(student, expected Node) Comparison {
	sorted := CanonicalOptions{Sort: true}
	return Comparison{
		Identical:   Flatten(student) == Flatten(expected),
		Equivalent:  Canonical(student) == Canonical(expected),
		Commutative: Flatten(Canonicalize(student, sorted)) == Flatten(Canonicalize(expected, sorted)),
		Student:     countTerms(student),
		Expected:    countTerms(expected),
	}
}

func countTerms(n Node) TermCounts {
	if eq, ok := n.(*Equation); ok {
		l, r := countTerms(eq.Left), countTerms(eq.Right)
		return TermCounts{
			Raw:             l.Raw + r.Raw,
			Combined:        l.Combined + r.Combined,
			Constants:       l.Constants + r.Constants,
			RepeatedLikeVar: l.RepeatedLikeVar || r.RepeatedLikeVar,
		}
	}

	terms := Terms(n)
	counts := TermCounts{
		Raw:      len(terms),
		Combined: len(NormalizeTerms(terms, CanonicalOptions{Combine: true, RemoveZeros: true})),
	}
	seen := make(map[string]bool)
	for _, t := range terms {
		if t.IsConstant() {
			counts.Constants++
			continue
		}
		if seen[t.Variable] {
			counts.RepeatedLikeVar = true
		}
		seen[t.Variable] = true
	}
	return counts
}

// ConstantsUncombined reports more than one constant summand
func (t TermCounts) ConstantsUncombined() bool {
	return t.Constants > 1
}

// signature lists the canonical terms of n by monomial
func signature(n Node) map[string]int64 {
	out := make(map[string]int64)
	var add func(Node, int64)
	add = func(n Node, side int64) {
		if eq, ok := n.(*Equation); ok {
			add(eq.Left, 1)
			add(eq.Right, -1)
			return
		}
		for _, t := range NormalizeTerms(Terms(n), CanonicalOptions{Combine: true, RemoveZeros: true}) {
			out[t.Variable] += side * t.Coefficient
		}
	}
	add(n, 1)
	return out
}

// variableSet returns the letters that survive canonicalization
func variableSet(n Node) map[string]bool {
	return Variables(Canonicalize(n, Full))
}
