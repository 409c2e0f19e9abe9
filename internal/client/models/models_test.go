package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserProfile_RoundTripKeepsUnknownFields(t *testing.T) {
	in := `{"id":7,"first_name":"Ada","last_name":"Lovelace","email":"ada@example.com","role":"admin","avatar":"a.png"}`

	var u UserProfile
	require.NoError(t, json.Unmarshal([]byte(in), &u))
	assert.Equal(t, int64(7), u.ID)
	assert.Equal(t, "admin", u.Role)
	assert.Equal(t, "Ada Lovelace", u.DisplayName())

	out, err := json.Marshal(u)
	require.NoError(t, err)
	assert.JSONEq(t, in, string(out))
}

func TestUserProfile_MarshalWithoutRaw(t *testing.T) {
	out, err := json.Marshal(UserProfile{ID: 1, Email: "a@b.c"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"email":"a@b.c"}`, string(out))
}

func TestUserProfile_DisplayNameFallbacks(t *testing.T) {
	assert.Equal(t, "Root", UserProfile{Name: "Root", Email: "r@x"}.DisplayName())
	assert.Equal(t, "r@x", UserProfile{Email: "r@x"}.DisplayName())
	assert.Equal(t, "+100", UserProfile{Phone: "+100"}.DisplayName())
}

func TestSession_Authenticated(t *testing.T) {
	assert.False(t, Session{}.Authenticated())
	assert.False(t, Session{Token: "t"}.Authenticated())
	assert.False(t, Session{User: &UserProfile{ID: 1}}.Authenticated())
	assert.True(t, Session{User: &UserProfile{ID: 1}, Token: "t"}.Authenticated())
}

func TestDecimal_Parse(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "19.90", want: "19.90"},
		{in: " 5 ", want: "5"},
		{in: "007.5", want: "7.5"},
		{in: "-0.00", want: "-0.00"},
		{in: "1e3", want: "1000"},
		{in: "1.5E-1", want: "0.15"},
		{in: "-2e2", want: "-200"},
		{in: "1e", wantErr: true},
		{in: "1e400", wantErr: true},
		{in: "NaN", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d, err := ParseDecimal(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidDecimal)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.String())
		})
	}
}

func TestDecimal_JSONAcceptsNumberAndString(t *testing.T) {
	var p struct {
		A Decimal `json:"a"`
		B Decimal `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"12.50","b":3}`), &p))
	assert.Equal(t, "12.50", p.A.String())
	assert.Equal(t, "3", p.B.String())

	var products []Product
	require.NoError(t, json.Unmarshal([]byte(`[{"id":1,"name":"Bulk","price":1.2e2,"stock":1,"category_id":1}]`), &products))
	assert.Equal(t, "120", products[0].Price.String())

	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":12.50,"b":3}`, string(out))
}

func TestDecimal_IsNegative(t *testing.T) {
	assert.True(t, MustDecimal("-1.5").IsNegative())
	assert.False(t, MustDecimal("-0.00").IsNegative())
	assert.False(t, MustDecimal("2").IsNegative())
	assert.InDelta(t, 2.25, MustDecimal("2.25").Float64(), 1e-9)
}

func TestProduct_DecodeAndEmbeddedCategory(t *testing.T) {
	in := `{"id":3,"name":"Phone","description":null,"price":"199.00","stock":4,"category_id":2,"category":{"id":2,"name":"Mobiles","description":"x"}}`

	var p Product
	require.NoError(t, json.Unmarshal([]byte(in), &p))
	assert.Equal(t, "", p.GetDescription())
	assert.Equal(t, "Mobiles", p.EmbeddedCategoryName())
	assert.Equal(t, ProductFields{Name: "Phone", Price: MustDecimal("199.00"), Stock: 4, CategoryID: 2}, p.Fields())

	p.CategoryName = "Phones"
	assert.Equal(t, "Phones", p.EmbeddedCategoryName())
}

func TestParseFieldPairs(t *testing.T) {
	m, err := ParseFieldPairs([]string{"name=Shoes", " description = a=b"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"name": "Shoes", "description": " a=b"}, m)

	_, err = ParseFieldPairs([]string{"justname"})
	require.ErrorIs(t, err, ErrIncorrectField)
}

func TestProductFields_Apply(t *testing.T) {
	var f ProductFields
	require.NoError(t, f.Apply(map[string]string{
		"name": " Lamp ", "price": "9.99", "stock": "12", "category_id": "4",
	}))
	assert.Equal(t, ProductFields{Name: "Lamp", Price: MustDecimal("9.99"), Stock: 12, CategoryID: 4}, f)

	err := f.Apply(map[string]string{"stock": "many"})
	var fe *FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "stock", fe.Field)

	require.ErrorIs(t, f.Apply(map[string]string{"colour": "red"}), ErrUnknownField)
}

func TestCategoryFields_Apply(t *testing.T) {
	f := Category{Name: "Old"}.Fields()
	require.NoError(t, f.Apply(map[string]string{"description": "new"}))
	assert.Equal(t, CategoryFields{Name: "Old", Description: "new"}, f)
	require.ErrorIs(t, f.Apply(map[string]string{"price": "1"}), ErrUnknownField)
}

func TestParseWindow(t *testing.T) {
	w, err := ParseWindow(" Month ")
	require.NoError(t, err)
	assert.Equal(t, WindowMonth, w)

	_, err = ParseWindow("decade")
	require.ErrorIs(t, err, ErrUnknownWindow)
	assert.Len(t, Windows(), 3)
}

func TestPoint_FlexibleDecoding(t *testing.T) {
	var pts []Point
	require.NoError(t, json.Unmarshal([]byte(`[{"label":"Mon","value":3},{"label":2024,"value":"10.5"},{"label":"Sun","value":null}]`), &pts))
	assert.Equal(t, []Point{{"Mon", 3}, {"2024", 10.5}, {"Sun", 0}}, pts)

	require.Error(t, json.Unmarshal([]byte(`[{"label":"x","value":"lots"}]`), &pts))
}
