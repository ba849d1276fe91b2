package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/stretchr/testify/require"
)

const testSchema = `
table "tblTodo" {
  name = "Todo"

  field "fldTitle" {
    name = "Title"
    type = "singleLineText"
  }
  field "fldDone" {
    name = "Done"
    type = "checkbox"
  }
  field "fldRank" {
    name     = "Rank"
    type     = "number"
    editable = false
  }
  field "fldOwner" {
    name = "Owner Name"
    type = "singleLineText"
  }

  view "viwAll" {
    name = "Everything"
  }
  view "viwMine" {
    name   = "Mine"
    filter = fields["Owner Name"] == "ada" && !fields.Done
    sort {
      field     = "fldRank"
      direction = "desc"
    }
  }
}
`

func TestParse(t *testing.T) {
	t.Parallel()

	s, err := Parse([]byte(testSchema), "test.hcl")
	require.NoError(t, err)
	require.Len(t, s.Tables, 1)

	tbl := s.TableByIDIfExists("tblTodo")
	require.NotNil(t, tbl)
	require.Equal(t, "fldTitle", tbl.PrimaryFieldID, "primary field should default to the first field")
	require.Equal(t, Checkbox, tbl.FieldByIDIfExists("fldDone").Type)
	require.False(t, tbl.FieldByIDIfExists("fldRank").Editable)
	require.True(t, tbl.FieldByIDIfExists("fldTitle").Editable)

	mine := tbl.ViewByIDIfExists("viwMine")
	require.NotNil(t, mine)
	require.Equal(t, []model.Sort{{FieldID: "fldRank", Direction: model.Descending}}, mine.Sorts)
}

func TestResolverToleratesDanglingIDs(t *testing.T) {
	t.Parallel()

	s, err := Parse([]byte(testSchema), "test.hcl")
	require.NoError(t, err)

	require.Nil(t, s.TableByIDIfExists("tblGone"))
	require.Nil(t, s.TableByIDIfExists(""))

	var missing *Table
	require.Nil(t, missing.ViewByIDIfExists("viwAll"))
	require.Nil(t, missing.FieldByIDIfExists("fldDone"))
	require.Nil(t, missing.FieldsOfType(Checkbox))

	var none *Schema
	require.Nil(t, none.TableByIDIfExists("tblTodo"))
}

func TestFind(t *testing.T) {
	t.Parallel()

	s, err := Parse([]byte(testSchema), "test.hcl")
	require.NoError(t, err)

	tbl := s.FindTable("todo")
	require.NotNil(t, tbl)
	require.Equal(t, "fldOwner", tbl.FindField("owner name").ID)
	require.Equal(t, "viwMine", tbl.FindView("MINE").ID)
	require.Nil(t, tbl.FindField("nope"))

	texts := tbl.FieldsOfType(SingleLineText)
	require.Len(t, texts, 2)
	require.Len(t, tbl.FieldsOfType(), 4)
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "syntax",
			src:  `table "x" {`,
			want: "failed to parse",
		},
		{
			name: "unknown type",
			src: `
table "t" {
  name = "T"
  field "f" {
    name = "F"
    type = "rainbow"
  }
}`,
			want: "Unknown field type",
		},
		{
			name: "missing primary",
			src: `
table "t" {
  name          = "T"
  primary_field = "nope"
  field "f" {
    name = "F"
    type = "checkbox"
  }
}`,
			want: "Missing primary field",
		},
		{
			name: "bad sort field",
			src: `
table "t" {
  name = "T"
  field "f" {
    name = "F"
    type = "checkbox"
  }
  view "v" {
    name = "V"
    sort {
      field = "g"
    }
  }
}`,
			want: "Unknown sort field",
		},
		{
			name: "foreign variable in filter",
			src: `
table "t" {
  name = "T"
  field "f" {
    name = "F"
    type = "checkbox"
  }
  view "v" {
    name   = "V"
    filter = env.HOME
  }
}`,
			want: "Unknown variable",
		},
		{
			name: "unknown field in filter",
			src: `
table "t" {
  name = "T"
  field "f" {
    name = "F"
    type = "checkbox"
  }
  view "v" {
    name   = "V"
    filter = fields.G
  }
}`,
			want: "Unknown field in filter",
		},
		{
			name: "no tables",
			src:  ``,
			want: "No tables",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), "bad.hcl")
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadFallsBackToDefault(t *testing.T) {
	t.Parallel()

	s, err := Load(filepath.Join(t.TempDir(), "missing.hcl"))
	require.NoError(t, err)
	tbl := s.TableByIDIfExists("tblTasks")
	require.NotNil(t, tbl)
	require.Equal(t, "fldName", tbl.PrimaryField().ID)
	require.Len(t, tbl.FieldsOfType(Checkbox), 1)
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "base.hcl")
	require.NoError(t, os.WriteFile(path, []byte(testSchema), 0o600))

	s, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, s.TableByIDIfExists("tblTodo"))
}

func TestViewMatch(t *testing.T) {
	t.Parallel()

	s, err := Parse([]byte(testSchema), "test.hcl")
	require.NoError(t, err)
	tbl := s.TableByIDIfExists("tblTodo")
	mine := tbl.ViewByIDIfExists("viwMine")
	all := tbl.ViewByIDIfExists("viwAll")

	rec := func(owner string, done bool) model.Record {
		return model.Record{ID: "rec1", Fields: model.Fields{"fldOwner": owner, "fldDone": done}}
	}

	ok, err := mine.Match(tbl, rec("ada", false))
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = mine.Match(tbl, rec("ada", true))
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = mine.Match(tbl, rec("bob", false))
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = mine.Match(tbl, model.Record{ID: "rec2"})
	require.NoError(t, err)
	require.False(t, ok, "empty owner should not match")

	ok, err = all.Match(tbl, rec("bob", true))
	require.NoError(t, err)
	require.True(t, ok, "a view without filter matches everything")
}

func TestFieldTypeValues(t *testing.T) {
	t.Parallel()

	require.NoError(t, Checkbox.Validate(true))
	require.NoError(t, Checkbox.Validate(nil))
	require.ErrorIs(t, Checkbox.Validate("yes"), ErrInvalidValue)
	require.ErrorIs(t, Number.Validate("1"), ErrInvalidValue)
	require.NoError(t, SingleLineText.Validate(""))

	v, err := Checkbox.ParseValue("yes")
	require.NoError(t, err)
	require.Equal(t, true, v)

	v, err = Number.ParseValue("2.5")
	require.NoError(t, err)
	require.Equal(t, 2.5, v)

	v, err = Number.ParseValue("")
	require.NoError(t, err)
	require.Nil(t, v)

	_, err = Number.ParseValue("two")
	require.ErrorIs(t, err, ErrInvalidValue)

	v, err = SingleLineText.ParseValue("")
	require.NoError(t, err)
	require.Equal(t, "", v)
}
