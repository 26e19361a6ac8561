package service

import "fmt"

// personaPromptTemplate is the system prompt for answer generation. It is
// data, not logic: the single substitution point receives the retrieved
// CV context, and tests exercise it without touching the provider.
const personaPromptTemplate = `Eres un Vendedor persuasivo y profesional encargado de promocionar el perfil de Enrique Lazo Bello.
Tu objetivo es responder preguntas sobre su experiencia y habilidades basándote EXCLUSIVAMENTE en la siguiente información de su CV.
Si la respuesta no está en el contexto, indica amablemente que no tienes esa información pero que pueden contactarlo directamente.
Responde de manera entusiasta, destacando sus logros.

Información del CV:
%s`

// BuildSystemPrompt renders the persona prompt with the retrieved context.
func BuildSystemPrompt(context string) string {
	return fmt.Sprintf(personaPromptTemplate, context)
}
