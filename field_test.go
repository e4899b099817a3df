package graphstreams

import (
	"math/rand"
	"testing"

	"github.com/matryer/is"
)

func TestFieldForUniverse(t *testing.T) {
	is := is.New(t)

	// p must exceed n^3 for the fingerprint collision bound
	is.Equal(FieldForUniverse(10).Order(), uint64(1<<13-1))
	is.Equal(FieldForUniverse(100).Order(), uint64(1<<31-1))
	is.Equal(FieldForUniverse(1<<40).Order(), uint64(1<<61-1))

	// 2^20 is the last universe with a cubic bound: (2^20)^3 = 2^60 < 2^61-1;
	// anything larger falls back to the top ladder prime
	is.Equal(FieldForUniverse(1<<20).Order(), uint64(1<<61-1))
	is.Equal(FieldForUniverse(1<<20+1).Order(), uint64(1<<61-1))
	is.Equal(FieldForUniverse(1<<22).Order(), uint64(1<<61-1))
}

func TestFieldArithmetic(t *testing.T) {
	is := is.New(t)

	field := FieldForUniverse(10)
	p := field.Order()

	is.Equal(field.Add(p-1, 1), uint64(0))
	is.Equal(field.Add(p-1, p-1), p-2)
	is.Equal(field.Sub(0, 1), p-1)
	is.Equal(field.Neg(0), uint64(0))
	is.Equal(field.Mul(p-1, p-1), uint64(1)) // (-1)^2
}

func TestFieldMul_LargePrime(t *testing.T) {
	is := is.New(t)

	field := PrimeField{p: 1<<61 - 1}
	p := field.Order()

	// (p-1)^2 = p^2 - 2p + 1 ≡ 1 mod p; exercises the 128-bit reduction
	is.Equal(field.Mul(p-1, p-1), uint64(1))
	is.Equal(field.Mul(p-1, 2), p-2)
}

func TestFieldPow(t *testing.T) {
	is := is.New(t)

	field := FieldForUniverse(10)

	is.Equal(field.Pow(2, 0), uint64(1))
	is.Equal(field.Pow(2, 10), uint64(1024))
	is.Equal(field.Pow(0, 5), uint64(0))

	// Fermat: a^(p-1) = 1 for a != 0
	is.Equal(field.Pow(3, field.Order()-1), uint64(1))
}

func TestFieldFromInt64(t *testing.T) {
	is := is.New(t)

	field := FieldForUniverse(10)
	p := field.Order()

	is.Equal(field.FromInt64(5), uint64(5))
	is.Equal(field.FromInt64(-5), p-5)
	is.Equal(field.FromInt64(0), uint64(0))
	is.Equal(field.FromInt64(int64(p)), uint64(0))
}

func TestFieldRand_InRange(t *testing.T) {
	is := is.New(t)

	field := FieldForUniverse(10)
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 1000; i++ {
		is.True(field.Rand(rng) < field.Order())
	}
}
