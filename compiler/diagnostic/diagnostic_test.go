package diagnostic

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindString(t *testing.T) {
	assert.Equal(t, "syntax", KindSyntax.String())
	assert.Equal(t, "resolution", KindResolution.String())
	assert.Equal(t, "consistency", KindConsistency.String())
	assert.Equal(t, "unknown", Kind(42).String())
}

func TestDiagnosticString(t *testing.T) {
	d := Diagnostic{
		Kind:    KindSyntax,
		File:    "app/post.via",
		Line:    3,
		Column:  10,
		Message: `expected "{", found "]"`,
	}
	assert.Equal(t, `error[app/post.via:3:10]: expected "{", found "]"`, d.String())

	d.Hint = `close the model block before "controller"`
	assert.Equal(t,
		"error[app/post.via:3:10]: expected \"{\", found \"]\"\n  hint: close the model block before \"controller\"",
		d.String())

	noFile := Diagnostic{Line: 1, Column: 2, Message: "boom"}
	assert.Equal(t, "error[1:2]: boom", noFile.String())
}

func TestListCollect(t *testing.T) {
	l := New()
	assert.False(t, l.HasErrors())
	assert.NoError(t, l.Err())

	l.Syntaxf("a.via", 1, 1, "unexpected token %q", "]")
	l.Resolutionf("a.via", 4, 9, "unknown type %q", "varchar")
	l.Consistencyf("b.via", 2, 3, "duplicate resource name %q", "Post")

	assert.True(t, l.HasErrors())
	assert.Equal(t, 3, l.Len())
	require.Error(t, l.Err())

	assert.Len(t, l.ByKind(KindSyntax), 1)
	assert.Len(t, l.ByKind(KindResolution), 1)
	assert.Len(t, l.ByKind(KindConsistency), 1)
	assert.Equal(t, `unknown type "varchar"`, l.ByKind(KindResolution)[0].Message)
}

func TestListMergeAndSort(t *testing.T) {
	a := New()
	a.Syntaxf("b.via", 5, 1, "second file")
	a.Syntaxf("b.via", 2, 8, "earlier line")

	b := New()
	b.Resolutionf("a.via", 9, 1, "first file")

	a.Merge(b)
	a.Merge(nil)
	require.Equal(t, 3, a.Len())

	a.Sort()
	all := a.All()
	assert.Equal(t, "a.via", all[0].File)
	assert.Equal(t, "b.via", all[1].File)
	assert.Equal(t, 2, all[1].Line)
	assert.Equal(t, 5, all[2].Line)
}

func TestListFormat(t *testing.T) {
	l := New()
	assert.Empty(t, l.Format())

	l.Syntaxf("a.via", 1, 2, "one")
	l.Add(Diagnostic{Kind: KindResolution, File: "a.via", Line: 3, Column: 4, Message: "two", Hint: "a hint"})

	want := "error[a.via:1:2]: one\nerror[a.via:3:4]: two\n  hint: a hint"
	assert.Equal(t, want, l.Format())
}

func TestListAsError(t *testing.T) {
	l := New()
	l.Syntaxf("a.via", 1, 2, "only one")
	assert.Equal(t, "error[a.via:1:2]: only one", l.Error())

	l.Resolutionf("a.via", 3, 4, "another")
	assert.Contains(t, l.Error(), "2 errors:")
	assert.Contains(t, l.Error(), "only one")
	assert.Contains(t, l.Error(), "another")

	var list *List
	err := l.Err()
	require.True(t, errors.As(err, &list))
	assert.Equal(t, 2, list.Len())
}
