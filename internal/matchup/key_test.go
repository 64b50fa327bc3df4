package matchup

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDerive_Deterministic(t *testing.T) {
	a := Derive("Jon Jones", "Alex Pereira")
	b := Derive("Jon Jones", "Alex Pereira")
	assert.Equal(t, a, b)
	assert.Len(t, a.Hash(), 16)
}

func TestDerive_Normalization(t *testing.T) {
	tests := []struct {
		name      string
		red, blue string
	}{
		{"upper case", "JON JONES", "ALEX PEREIRA"},
		{"padding", "  jon jones ", "\talex pereira\n"},
		{"mixed", "Jon JONES", "alex Pereira"},
	}

	want := Derive("jon jones", "alex pereira")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, want.Result(), Derive(tt.red, tt.blue).Result())
		})
	}
}

func TestDerive_OrderSensitive(t *testing.T) {
	ab := Derive("Jon Jones", "Alex Pereira")
	ba := Derive("Alex Pereira", "Jon Jones")
	assert.NotEqual(t, ab.Result(), ba.Result())
}

func TestDerive_InnerWhitespaceKept(t *testing.T) {
	assert.NotEqual(t, Derive("jon  jones", "x").Hash(), Derive("jon jones", "x").Hash())
}

func TestKey_Namespaces(t *testing.T) {
	k := Derive("a", "b")
	assert.True(t, strings.HasPrefix(k.Result(), "predict:"))
	assert.Equal(t, k.Result()+":lock", k.Lock())
	assert.NotEqual(t, k.Result(), k.Lock())
	assert.Equal(t, k.Result(), k.String())
}

// The API and the worker each call Derive from their own build; the digest
// for a fixed pair must therefore never change between releases.
func TestDerive_StableAcrossCallSites(t *testing.T) {
	pairs := [][2]string{
		{"Jon Jones", "Alex Pereira"},
		{"Israel Adesanya", "Sean Strickland"},
		{"", ""},
	}
	for _, p := range pairs {
		producer := Derive(p[0], p[1])
		consumer := Derive(strings.ToUpper(p[0])+" ", " "+p[1])
		assert.Equal(t, producer.Result(), consumer.Result())
		assert.Equal(t, producer.Lock(), consumer.Lock())
	}
}
