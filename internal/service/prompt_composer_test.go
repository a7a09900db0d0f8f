package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFlexibilityDirectiveBands(t *testing.T) {
	cases := []struct {
		level int
		want  string
	}{
		{0, flexibilityRigid},
		{1, flexibilityRigid},
		{2, flexibilityRigid},
		{3, flexibilityBalanced},
		{5, flexibilityBalanced},
		{7, flexibilityBalanced},
		{8, flexibilityHolistic},
		{9, flexibilityHolistic},
		{10, flexibilityHolistic},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, FlexibilityDirective(tc.level), "level %d", tc.level)
	}
}

func TestDetectContextFamilies(t *testing.T) {
	cases := []struct {
		curso     string
		actividad string
		want      string
	}{
		{"3° Básico Diferenciada", "", ContextAccommodation},
		{"Lenguaje", "Adecuación de contenidos", ContextAccommodation},
		{"Programa PIE", "", ContextAccommodation},
		{"Educación Superior", "", ContextAdvanced},
		{"Seminario", "Tesis de grado", ContextAdvanced},
		{"Universidad de Chile", "Investigación avanzada", ContextAdvanced},
		{"Prekinder A", "", ContextEarlyChildhood},
		{"Kinder B", "Actividad lúdica", ContextEarlyChildhood},
		{"NT1", "Juego de roles", ContextEarlyChildhood},
		{"4° Medio", "Ensayo PSU", ""},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, DetectContext(tc.curso, tc.actividad), "curso=%q actividad=%q", tc.curso, tc.actividad)
	}
}

func TestDetectContextPriorityOnOverlap(t *testing.T) {
	// Matches both the accommodation and early-childhood families; the
	// accommodation family has priority.
	require.Equal(t, ContextAccommodation, DetectContext("Taller Inicial Diferenciada", ""))

	// Advanced beats early-childhood.
	require.Equal(t, ContextAdvanced, DetectContext("Educación Superior Inicial", ""))
}

func TestComposePromptAssemblyOrder(t *testing.T) {
	directive := ComposePrompt(PromptInput{
		Estudiante:    "Ana Pérez",
		Curso:         "Lenguaje 7B",
		Profesor:      "R. Soto",
		Departamento:  "Humanidades",
		Actividad:     "Ensayo",
		Instrucciones: "- General: sé amable",
		Rubrica:       "Coherencia 40%, Ortografía 60%",
		Texto:         "Name: Ana\nScore: good",
		Flexibilidad:  5,
	})

	positions := []int{
		strings.Index(directive, "CALIBRACIÓN"),
		strings.Index(directive, "- General: sé amable"),
		strings.Index(directive, "ESTILO DE CORRECCIÓN"),
		strings.Index(directive, "Coherencia 40%"),
		strings.Index(directive, "Name: Ana\nScore: good"),
		strings.Index(directive, "FORMATO DE SALIDA OBLIGATORIO"),
	}

	for i, pos := range positions {
		require.GreaterOrEqual(t, pos, 0, "segment %d missing", i)
		if i > 0 {
			require.Greater(t, pos, positions[i-1], "segment %d out of order", i)
		}
	}
}

func TestComposePromptIsPure(t *testing.T) {
	input := PromptInput{
		Estudiante:   "Ana",
		Curso:        "Historia",
		Rubrica:      "r",
		Texto:        "t",
		Flexibilidad: 1,
	}

	require.Equal(t, ComposePrompt(input), ComposePrompt(input))
}

func TestComposePromptOmitsEmptyOptionalBlocks(t *testing.T) {
	directive := ComposePrompt(PromptInput{
		Estudiante:   "Ana",
		Curso:        "Historia",
		Rubrica:      "r",
		Texto:        "t",
		Flexibilidad: 5,
	})

	require.NotContains(t, directive, "INSTRUCCIONES DEL PROFESOR")
	require.NotContains(t, directive, "CONTEXTO DETECTADO")
	require.NotContains(t, directive, "Profesor:")
}

func TestComposePromptIncludesContextDirective(t *testing.T) {
	directive := ComposePrompt(PromptInput{
		Estudiante:   "Ana",
		Curso:        "Kinder A",
		Rubrica:      "r",
		Texto:        "t",
		Flexibilidad: 5,
	})

	require.Contains(t, directive, contextDirectives[ContextEarlyChildhood])
}
