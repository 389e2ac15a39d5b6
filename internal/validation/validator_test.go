package validation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Nome     string    `json:"nome" validate:"required,min=2,max=10"`
	Email    *string   `json:"email" validate:"omitempty,email"`
	Tipo     string    `json:"tipo" validate:"required,oneof=buraco lixo"`
	Latitude FlexFloat `json:"latitude" validate:"set,number,gte=-90,lte=90"`
	Ignored  string    `json:"-"`
}

func TestStructAggregatesMessages(t *testing.T) {
	bad := "nope"
	s := sample{Nome: " a ", Email: &bad, Tipo: "x", Latitude: Float(120)}
	err := Struct(&s)
	require.Error(t, err)

	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"nome", "email", "tipo", "latitude"}, verr.Fields)
	assert.Equal(t,
		"Campo 'nome' deve ter pelo menos 2 caracteres, Campo 'email' deve ser um email válido, "+
			"Campo 'tipo' contém valor inválido, Campo 'latitude' deve ser menor ou igual a 90",
		err.Error())
}

func TestStructTrimsAndPasses(t *testing.T) {
	mail := "  ana@example.com "
	s := sample{Nome: "  Ana  ", Email: &mail, Tipo: "buraco", Latitude: Float(-2.42)}
	require.NoError(t, Struct(&s))
	assert.Equal(t, "Ana", s.Nome)
	assert.Equal(t, "ana@example.com", *s.Email)
}

func TestStructRequiredReportsMissing(t *testing.T) {
	err := Struct(&sample{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Campo 'nome' é obrigatório")
	assert.Contains(t, err.Error(), "Campo 'latitude' é obrigatório")
}

func TestZeroCoordinateIsAccepted(t *testing.T) {
	s := sample{Nome: "Ana", Tipo: "lixo", Latitude: Float(0)}
	assert.NoError(t, Struct(&s))
}

func TestFlexFloatDecoding(t *testing.T) {
	var in struct {
		A FlexFloat `json:"a"`
		B FlexFloat `json:"b"`
		C FlexFloat `json:"c"`
		D FlexFloat `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": -2.42, "b": "-54.71", "c": "", "d": "abc"}`), &in))
	assert.Equal(t, Float(-2.42), in.A)
	assert.Equal(t, Float(-54.71), in.B)
	assert.False(t, in.C.Set)
	assert.True(t, in.D.Set)
	assert.False(t, in.D.Valid)
}

func TestNonNumericCoordinate(t *testing.T) {
	s := sample{Nome: "Ana", Tipo: "lixo", Latitude: ParseFlexFloat("norte")}
	err := Struct(&s)
	require.Error(t, err)
	assert.Equal(t, "Campo 'latitude' deve ser um número válido", err.Error())
}

func TestFlexID(t *testing.T) {
	var in struct {
		A FlexID `json:"a"`
		B FlexID `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 12, "b": "34"}`), &in))
	assert.Equal(t, FlexID(12), in.A)
	assert.Equal(t, FlexID(34), in.B)
	assert.Equal(t, uint64(9), ParseID(" 9 "))
	assert.Equal(t, uint64(0), ParseID("x"))
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "Buraco na rua", Sanitize("<b>Buraco</b> na rua<script>alert(1)</script>"))
	assert.Equal(t, "a &amp; b", Sanitize("a & b"))
}

func TestNormalizeSanitizesTaggedFields(t *testing.T) {
	obs := "  <i></i>  "
	in := struct {
		Texto string  `sanitize:"html"`
		Obs   *string `sanitize:"html"`
		Cru   string
	}{Texto: " <b>Poste</b> caído ", Obs: &obs, Cru: " <b>x</b> "}
	Normalize(&in)
	assert.Equal(t, "Poste caído", in.Texto)
	assert.Equal(t, "", *in.Obs)
	assert.Equal(t, "<b>x</b>", in.Cru)
}

func TestLengthRulesSeeSanitizedText(t *testing.T) {
	in := struct {
		Descricao string `json:"descricao" validate:"required,min=10" sanitize:"html"`
	}{Descricao: "<b></b><i></i>"}
	err := Struct(&in)
	require.Error(t, err)
	assert.Equal(t, "Campo 'descricao' é obrigatório", err.Error())
}
