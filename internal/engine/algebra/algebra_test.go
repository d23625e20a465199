package algebra

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Duly330AI/Matheheftt-sub000/internal/models"
)

func TestParseAndFlatten(t *testing.T) {
	cases := []struct {
		in, out string
	}{
		{"3(x+2)", "3(x+2)"},
		{"3 * (x + 2)", "3·(x+2)"},
		{"2x+3y", "2x+3y"},
		{"a-(b-c)", "a-(b-c)"},
		{"(a-b)-c", "a-b-c"},
		{"x^2", "x^2"},
		{"2*3", "2·3"},
		{"-x+1", "-x+1"},
		{"a=b+1", "a=b+1"},
		{"12:4", "12:4"},
		{"√(x+1)", "√(x+1)"},
		{"-2(x-4)", "-2(x-4)"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			n, err := Parse(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.out, Flatten(n))

			again, err := Parse(Flatten(n))
			require.NoError(t, err)
			assert.Equal(t, tc.out, Flatten(again))
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, in := range []string{"", "3x+", "2(x+1", "(", "-"} {
		_, err := Parse(in)
		assert.ErrorIs(t, err, ErrIncomplete, "input %q", in)
	}
	for _, in := range []string{"3)", "x+*2", "3$", "2(x+1]"} {
		_, err := Parse(in)
		assert.ErrorIs(t, err, ErrSyntax, "input %q", in)
	}
}

func TestLayoutGlyphs(t *testing.T) {
	glyphs := Layout(MustParse("8n+3"))
	texts := make([]string, len(glyphs))
	for i, g := range glyphs {
		texts[i] = g.Text
	}
	assert.Equal(t, []string{"8", "n", "+", "3"}, texts)
	assert.Equal(t, GlyphVariable, glyphs[1].Kind)

	grouped := Add(Var("a"), Grouped(Implicit(Num(2), Var("b"))))
	assert.Equal(t, "a+(2b)", Flatten(grouped))
	assert.Equal(t, "x-(-3)", Flatten(Sub(Var("x"), Num(-3))))
}

func TestCloneBreaksAliasing(t *testing.T) {
	orig := MustParse("3(x+2)")
	cp := Clone(orig)
	require.True(t, Equal(orig, cp))

	cp.(*BinaryOp).Left.(*Number).Value = 5
	assert.Equal(t, "3(x+2)", Flatten(orig))
	assert.False(t, Equal(orig, cp))

	expanded := Expand(orig)
	assert.Equal(t, "3(x+2)", Flatten(orig))
	assert.Equal(t, "3x+6", Flatten(expanded))
}

func TestExpand(t *testing.T) {
	cases := map[string]string{
		"3(x+2)":     "3x+6",
		"-2(x-4)":    "-2x+8",
		"x(x+3)":     "x^2+3x",
		"-(a+b)":     "-a-b",
		"a-(b+c)":    "a-b-c",
		"a-(b-c)":    "a-b+c",
		"2(3x+4)":    "6x+8",
		"(x+1)·2":    "2x+2",
		"x·3":        "3x",
		"a(b+c)":     "ab+ac",
		"3(x+2x)":    "3x+6x",
		"2(a+b-c)":   "2a+2b-2c",
		"-3(-x+2)":   "3x-6",
		"4(2a-3b)":   "8a-12b",
		"y=2(x+1)":   "y=2x+2",
		"5":          "5",
		"x+(-3)":     "x-3",
		"2·(-x)":     "-2x",
		"(a+b)(a-b)": "a^2+ba-ab-b^2",
	}
	for in, want := range cases {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, Flatten(Expand(MustParse(in))))
		})
	}
}

func TestCanonicalize(t *testing.T) {
	combine := CanonicalOptions{Combine: true, RemoveZeros: true}
	cases := []struct {
		in       string
		opts     CanonicalOptions
		expected string
	}{
		{"3x+2-x+5", combine, "2x+7"},
		{"3x+2-x+5", Full, "7+2x"},
		{"3x+2-x+5", CanonicalOptions{Sort: true}, "2+5-x+3x"},
		{"x-x", Full, "0"},
		{"x-x", CanonicalOptions{Combine: true}, "0x"},
		{"ba+2ab", combine, "3ab"},
		{"2a*3b", Full, "6ab"},
		{"-x+4", Full, "4-x"},
		{"-5+x", combine, "-5+x"},
		{"3(x+2)-6", Full, "3x"},
		{"y+x+1", Full, "1+x+y"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.expected, Flatten(Canonicalize(MustParse(tc.in), tc.opts)))
		})
	}
}

func TestCanonicalizeIdempotent(t *testing.T) {
	inputs := []string{
		"3x+2-x+5", "-x+4", "x-x", "2a*3b-ab", "-2(x-4)+3x", "a-(b+c)+5",
		"x^2+x·x-3", "1/x+1/x", "-7", "0", "a+b+c-a-b-c", "y=2(x+1)-x",
		"√x+2√x", "-(a-b)", "3-3+x-x+2y",
	}
	options := []CanonicalOptions{
		{},
		{Combine: true},
		{RemoveZeros: true},
		{Sort: true},
		{Combine: true, RemoveZeros: true},
		{Combine: true, Sort: true},
		Full,
	}
	for _, in := range inputs {
		for _, opts := range options {
			once := Canonicalize(MustParse(in), opts)
			twice := Canonicalize(once, opts)
			assert.True(t, Equal(once, twice), "%q %+v: %s vs %s", in, opts, Flatten(once), Flatten(twice))
			assert.Equal(t, Flatten(once), Flatten(twice))
		}
	}
}

func TestCompare(t *testing.T) {
	c := Compare(MustParse("7+2x"), MustParse("2x+7"))
	assert.False(t, c.Identical)
	assert.True(t, c.Equivalent)
	assert.True(t, c.Commutative)
	assert.Equal(t, 2, c.Student.Raw)

	c = Compare(MustParse("2x+2+5"), MustParse("2x+7"))
	assert.True(t, c.Equivalent)
	assert.False(t, c.Commutative)
	assert.Equal(t, 3, c.Student.Raw)
	assert.Equal(t, 2, c.Student.Combined)
	assert.True(t, c.Student.ConstantsUncombined())
	assert.False(t, c.Student.RepeatedLikeVar)

	c = Compare(MustParse("3x+1"), MustParse("2x+7"))
	assert.False(t, c.Equivalent)
}

func TestDiagnose(t *testing.T) {
	original := MustParse("3x+2-x+5")
	expected := MustParse("2x+7")
	cases := []struct {
		student string
		want    models.ErrorType
		sev     models.Severity
	}{
		{"2x+7", models.ErrorNone, models.SeverityNone},
		{"7+2x", models.ErrorNone, models.SeverityNone},
		{"3x+2-x+5", models.ErrorIncomplete, models.SeverityProcedural},
		{"2x+2+5", models.ErrorConstantNotCombined, models.SeverityMinor},
		{"3x-x+7", models.ErrorLikeTermNotCombined, models.SeverityProcedural},
		{"3x-x+2+5", models.ErrorPartialSimplification, models.SeverityProcedural},
		{"2y+7", models.ErrorVariableMismatch, models.SeverityConceptual},
		{"-2x-7", models.ErrorSignMisapplication, models.SeverityProcedural},
		{"2x-7", models.ErrorSignMisapplication, models.SeverityProcedural},
		{"3x+7", models.ErrorConceptual, models.SeverityConceptual},
	}
	for _, tc := range cases {
		t.Run(tc.student, func(t *testing.T) {
			d := Diagnose(MustParse(tc.student), expected, original)
			assert.Equal(t, tc.want, d.ErrorType)
			assert.Equal(t, tc.sev, d.Severity)
			assert.Equal(t, tc.want == models.ErrorNone, d.Correct)
		})
	}
}

func TestEvaluate(t *testing.T) {
	v, err := Evaluate("(2+3)*4")
	require.NoError(t, err)
	assert.True(t, equalsInt(v, 20))

	v, err = Evaluate("2 + 3 · 4")
	require.NoError(t, err)
	assert.True(t, equalsInt(v, 14))

	v, err = Evaluate("7:2")
	require.NoError(t, err)
	assert.False(t, v.IsInt())
	assert.Equal(t, "7/2", v.RatString())

	_, err = Evaluate("1/0")
	assert.ErrorIs(t, err, ErrDivideByZero)
	_, err = Evaluate("2+")
	assert.ErrorIs(t, err, ErrSyntax)
	_, err = Evaluate("2x")
	assert.Error(t, err)
}
