package service

import (
	"strings"
)

// Pedagogical contexts detected from the course and activity names.
const (
	ContextAccommodation  = "adecuación curricular"
	ContextAdvanced       = "educación superior"
	ContextEarlyChildhood = "educación inicial"
)

// contextFamilies maps each detectable context to its keyword family.
// Order is the tie-break: when a name matches several families, the first
// one here wins.
var contextFamilies = []struct {
	name     string
	keywords []string
}{
	{ContextAccommodation, []string{"diferenciada", "pie", "adecuación"}},
	{ContextAdvanced, []string{"superior", "universidad", "tesis", "investigación avanzada"}},
	{ContextEarlyChildhood, []string{"inicial", "prekinder", "kinder", "juego", "actividad lúdica"}},
}

var contextDirectives = map[string]string{
	ContextAccommodation: "CONTEXTO DETECTADO: evaluación diferenciada. El estudiante cuenta con adecuaciones curriculares. " +
		"Prioriza el logro de los objetivos esenciales por sobre la forma, y valora explícitamente el progreso individual.",
	ContextAdvanced: "CONTEXTO DETECTADO: educación superior. Aplica un estándar académico riguroso: exige precisión conceptual, " +
		"uso de evidencia y profundidad argumentativa propias del nivel universitario.",
	ContextEarlyChildhood: "CONTEXTO DETECTADO: educación inicial. Evalúa con criterios apropiados a la primera infancia: " +
		"valora la participación, la expresión y el proceso por sobre el producto terminado.",
}

// Flexibility directive bands. Boundaries are inclusive and the three
// bands cover 0 through 10 without overlap.
const (
	flexibilityRigid = "ESTILO DE CORRECCIÓN: rígido. Aplica la rúbrica de forma literal y estricta; " +
		"descuenta cada incumplimiento sin conceder el beneficio de la duda."
	flexibilityBalanced = "ESTILO DE CORRECCIÓN: equilibrado. Aplica la rúbrica con criterio profesional, " +
		"ponderando logros y carencias en su justa medida."
	flexibilityHolistic = "ESTILO DE CORRECCIÓN: holístico. Privilegia la visión de conjunto y la intención comunicativa " +
		"del estudiante por sobre los detalles formales."
)

const calibrationBlock = `Eres un profesor experimentado que corrige una evaluación escrita.

CALIBRACIÓN:
- Primero fórmate una impresión global del trabajo completo; recién después asigna puntajes, y estos deben ser coherentes con esa impresión.
- Usa la escala chilena de 1.0 a 7.0. El 4.0 es el piso de cumplimiento básico. El 7.0 se reserva para trabajos excepcionales, poco comunes.
- Justifica cada juicio cualitativo con una cita textual breve (5 a 15 palabras) tomada del propio texto del estudiante.`

const outputSchemaBlock = `FORMATO DE SALIDA OBLIGATORIO: responde únicamente con un objeto JSON con estos campos:
- "nota": número entre 1.0 y 7.0
- "retroalimentacion": texto con el informe narrativo para el estudiante
- "analisis_por_criterio": lista de objetos {"criterio": texto, "analisis": texto}
- "fortalezas": lista de objetos {"comentario": texto, "cita": cita textual del estudiante}
- "sugerencias": lista de objetos {"comentario": texto, "cita": cita textual del estudiante}`

// PromptInput gathers everything that goes into one composed directive.
type PromptInput struct {
	Estudiante    string
	Curso         string
	Profesor      string
	Departamento  string
	Actividad     string
	Instrucciones string
	Rubrica       string
	Texto         string
	Flexibilidad  int
}

// DetectContext inspects the course and activity names for the keyword
// families and returns the matching context name, or "" when none match.
func DetectContext(curso, actividad string) string {
	haystack := strings.ToLower(curso + " " + actividad)

	for _, family := range contextFamilies {
		for _, keyword := range family.keywords {
			if strings.Contains(haystack, keyword) {
				return family.name
			}
		}
	}

	return ""
}

// FlexibilityDirective maps the 0-10 flexibility setting onto one of three
// categorical correction styles.
func FlexibilityDirective(level int) string {
	switch {
	case level <= 2:
		return flexibilityRigid
	case level <= 7:
		return flexibilityBalanced
	default:
		return flexibilityHolistic
	}
}

// ComposePrompt assembles the directive sent to the evaluation engine. It
// is pure: same input, same directive.
func ComposePrompt(input PromptInput) string {
	builder := strings.Builder{}
	builder.WriteString(calibrationBlock)

	if input.Instrucciones != "" {
		builder.WriteString("\n\nINSTRUCCIONES DEL PROFESOR (acumuladas de evaluaciones anteriores):\n")
		builder.WriteString(input.Instrucciones)
	}

	if context := DetectContext(input.Curso, input.Actividad); context != "" {
		builder.WriteString("\n\n")
		builder.WriteString(contextDirectives[context])
	}

	builder.WriteString("\n\n")
	builder.WriteString(FlexibilityDirective(input.Flexibilidad))

	builder.WriteString("\n\nDATOS DE LA EVALUACIÓN:\n")
	builder.WriteString("Estudiante: ")
	builder.WriteString(input.Estudiante)
	builder.WriteString("\nCurso: ")
	builder.WriteString(input.Curso)
	if input.Profesor != "" {
		builder.WriteString("\nProfesor: ")
		builder.WriteString(input.Profesor)
	}
	if input.Departamento != "" {
		builder.WriteString("\nDepartamento: ")
		builder.WriteString(input.Departamento)
	}
	if input.Actividad != "" {
		builder.WriteString("\nActividad: ")
		builder.WriteString(input.Actividad)
	}

	builder.WriteString("\n\nRÚBRICA:\n")
	builder.WriteString(input.Rubrica)

	builder.WriteString("\n\nTEXTO DEL ESTUDIANTE:\n")
	builder.WriteString(input.Texto)

	builder.WriteString("\n\n")
	builder.WriteString(outputSchemaBlock)

	return builder.String()
}
