package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type articleInput struct {
	Modele string `json:"modele" validate:"required,min=1,max=50"`
	Prix   string `json:"prix" validate:"required,decimal"`
	Site   string `json:"site" validate:"nullable,url"`
	Tri    string `json:"tri" validate:"nullable,in=prix,date,modele"`
}

func TestStructValid(t *testing.T) {
	errs := Struct(&articleInput{Modele: "iPhone 15", Prix: "799.99"})
	assert.Empty(t, errs)
}

func TestStructRequired(t *testing.T) {
	errs := Struct(&articleInput{Prix: "10"})
	assert.Contains(t, errs, "modele")
	assert.NotContains(t, errs, "prix")
}

func TestStructDecimal(t *testing.T) {
	cases := map[string]bool{
		"799":      true,
		"799.99":   true,
		"-10.5":    true,
		"12,50":    false,
		"dix":      false,
		"10.":      false,
	}
	for raw, ok := range cases {
		errs := Struct(&articleInput{Modele: "x", Prix: raw})
		if ok {
			assert.NotContains(t, errs, "prix", "prix=%q should pass", raw)
		} else {
			assert.Contains(t, errs, "prix", "prix=%q should fail", raw)
		}
	}
}

func TestStructNullableSkipsWhenEmpty(t *testing.T) {
	errs := Struct(&articleInput{Modele: "x", Prix: "1"})
	assert.NotContains(t, errs, "site")

	errs = Struct(&articleInput{Modele: "x", Prix: "1", Site: "not a url"})
	assert.Contains(t, errs, "site")

	errs = Struct(&articleInput{Modele: "x", Prix: "1", Site: "https://shop.example.com"})
	assert.NotContains(t, errs, "site")
}

func TestStructInRule(t *testing.T) {
	errs := Struct(&articleInput{Modele: "x", Prix: "1", Tri: "prix"})
	assert.NotContains(t, errs, "tri")

	errs = Struct(&articleInput{Modele: "x", Prix: "1", Tri: "couleur"})
	assert.Contains(t, errs, "tri")
}

func TestStructMaxLength(t *testing.T) {
	long := make([]byte, 51)
	for i := range long {
		long[i] = 'a'
	}
	errs := Struct(&articleInput{Modele: string(long), Prix: "1"})
	assert.Contains(t, errs, "modele")
}
